package store

import (
	"database/sql"
	"fmt"

	"github.com/takasakimo/kirei/internal/model"
)

type StaffStore struct {
	db *sql.DB
}

func NewStaffStore(db *sql.DB) *StaffStore {
	return &StaffStore{db: db}
}

func scanStaff(scanner interface{ Scan(...any) error }) (*model.Staff, error) {
	var st model.Staff
	err := scanner.Scan(&st.ID, &st.TenantID, &st.Name, &st.IsActive, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

const staffCols = `id, tenant_id, name, is_active, created_at, updated_at`

func (s *StaffStore) Create(tenantID int64, name string) (*model.Staff, error) {
	result, err := s.db.Exec(
		`INSERT INTO staff (tenant_id, name) VALUES (?, ?)`,
		tenantID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert staff: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(tenantID, id)
}

func (s *StaffStore) GetByID(tenantID, id int64) (*model.Staff, error) {
	row := s.db.QueryRow(`SELECT `+staffCols+` FROM staff WHERE tenant_id = ? AND id = ?`, tenantID, id)
	st, err := scanStaff(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get staff: %w", err)
	}
	return st, nil
}

func (s *StaffStore) ListByTenant(tenantID int64, activeOnly bool) ([]*model.Staff, error) {
	query := `SELECT ` + staffCols + ` FROM staff WHERE tenant_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var staff []*model.Staff
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staff: %w", err)
		}
		staff = append(staff, st)
	}
	return staff, rows.Err()
}

func (s *StaffStore) Update(tenantID, id int64, name string, isActive bool) (*model.Staff, error) {
	_, err := s.db.Exec(
		`UPDATE staff SET name = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE tenant_id = ? AND id = ?`,
		name, isActive, tenantID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update staff: %w", err)
	}
	return s.GetByID(tenantID, id)
}

func (s *StaffStore) Delete(tenantID, id int64) error {
	_, err := s.db.Exec(`DELETE FROM staff WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	return nil
}
