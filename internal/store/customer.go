package store

import (
	"database/sql"
	"fmt"

	"github.com/takasakimo/kirei/internal/model"
)

type CustomerStore struct {
	db *sql.DB
}

func NewCustomerStore(db *sql.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

func scanCustomer(scanner interface{ Scan(...any) error }) (*model.Customer, error) {
	var c model.Customer
	err := scanner.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const customerCols = `id, tenant_id, name, email, phone, password_hash, created_at, updated_at`

func (s *CustomerStore) Create(tenantID int64, name, email, phone, passwordHash string) (*model.Customer, error) {
	result, err := s.db.Exec(
		`INSERT INTO customers (tenant_id, name, email, phone, password_hash) VALUES (?, ?, ?, ?, ?)`,
		tenantID, name, email, phone, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CustomerStore) GetByID(id int64) (*model.Customer, error) {
	row := s.db.QueryRow(`SELECT `+customerCols+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// GetByIdentifier finds a customer by email or phone within one tenant.
// Identifiers are only unique per tenant, so the tenant id is mandatory.
func (s *CustomerStore) GetByIdentifier(tenantID int64, identifier string) (*model.Customer, error) {
	row := s.db.QueryRow(
		`SELECT `+customerCols+` FROM customers WHERE tenant_id = ? AND (email = ? OR phone = ?)`,
		tenantID, identifier, identifier,
	)
	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get customer by identifier: %w", err)
	}
	return c, nil
}

func (s *CustomerStore) ListByTenant(tenantID int64) ([]*model.Customer, error) {
	rows, err := s.db.Query(
		`SELECT `+customerCols+` FROM customers WHERE tenant_id = ? ORDER BY name`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []*model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
