package store

import (
	"database/sql"
	"fmt"

	"github.com/takasakimo/kirei/internal/model"
)

type TenantStore struct {
	db *sql.DB
}

func NewTenantStore(db *sql.DB) *TenantStore {
	return &TenantStore{db: db}
}

func scanTenant(scanner interface{ Scan(...any) error }) (*model.Tenant, error) {
	var t model.Tenant
	err := scanner.Scan(&t.ID, &t.Code, &t.SalonName, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const tenantCols = `id, code, salon_name, is_active, created_at, updated_at`

func (s *TenantStore) Create(code, salonName string) (*model.Tenant, error) {
	result, err := s.db.Exec(
		`INSERT INTO tenants (code, salon_name) VALUES (?, ?)`,
		code, salonName,
	)
	if err != nil {
		return nil, fmt.Errorf("insert tenant: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TenantStore) GetByID(id int64) (*model.Tenant, error) {
	row := s.db.QueryRow(`SELECT `+tenantCols+` FROM tenants WHERE id = ?`, id)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

// GetByCode looks a tenant up by its customer-facing short code.
func (s *TenantStore) GetByCode(code string) (*model.Tenant, error) {
	row := s.db.QueryRow(`SELECT `+tenantCols+` FROM tenants WHERE code = ?`, code)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant by code: %w", err)
	}
	return t, nil
}

func (s *TenantStore) List() ([]*model.Tenant, error) {
	rows, err := s.db.Query(`SELECT ` + tenantCols + ` FROM tenants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*model.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (s *TenantStore) Update(id int64, salonName string, isActive bool) (*model.Tenant, error) {
	_, err := s.db.Exec(
		`UPDATE tenants SET salon_name = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		salonName, isActive, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update tenant: %w", err)
	}
	return s.GetByID(id)
}
