package store

import (
	"database/sql"
	"fmt"

	"github.com/takasakimo/kirei/internal/model"
)

type ServiceStore struct {
	db *sql.DB
}

func NewServiceStore(db *sql.DB) *ServiceStore {
	return &ServiceStore{db: db}
}

func scanService(scanner interface{ Scan(...any) error }) (*model.Service, error) {
	var sv model.Service
	err := scanner.Scan(&sv.ID, &sv.TenantID, &sv.Name, &sv.DurationMin, &sv.PriceYen, &sv.IsActive, &sv.CreatedAt, &sv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sv, nil
}

const serviceCols = `id, tenant_id, name, duration_min, price_yen, is_active, created_at, updated_at`

func (s *ServiceStore) Create(tenantID int64, name string, durationMin int, priceYen int64) (*model.Service, error) {
	result, err := s.db.Exec(
		`INSERT INTO services (tenant_id, name, duration_min, price_yen) VALUES (?, ?, ?, ?)`,
		tenantID, name, durationMin, priceYen,
	)
	if err != nil {
		return nil, fmt.Errorf("insert service: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(tenantID, id)
}

// GetByID is tenant-scoped: a service id from another tenant is a miss.
func (s *ServiceStore) GetByID(tenantID, id int64) (*model.Service, error) {
	row := s.db.QueryRow(`SELECT `+serviceCols+` FROM services WHERE tenant_id = ? AND id = ?`, tenantID, id)
	sv, err := scanService(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	return sv, nil
}

func (s *ServiceStore) ListByTenant(tenantID int64, activeOnly bool) ([]*model.Service, error) {
	query := `SELECT ` + serviceCols + ` FROM services WHERE tenant_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []*model.Service
	for rows.Next() {
		sv, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, sv)
	}
	return services, rows.Err()
}

func (s *ServiceStore) Update(tenantID, id int64, name string, durationMin int, priceYen int64, isActive bool) (*model.Service, error) {
	_, err := s.db.Exec(
		`UPDATE services SET name = ?, duration_min = ?, price_yen = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE tenant_id = ? AND id = ?`,
		name, durationMin, priceYen, isActive, tenantID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	return s.GetByID(tenantID, id)
}

func (s *ServiceStore) Delete(tenantID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM services WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	return nil
}
