package store

import (
	"database/sql"
	"fmt"

	"github.com/takasakimo/kirei/internal/model"
)

type AdminStore struct {
	db *sql.DB
}

func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

func scanAdmin(scanner interface{ Scan(...any) error }) (*model.Admin, error) {
	var a model.Admin
	var role string
	err := scanner.Scan(&a.ID, &a.Username, &a.PasswordHash, &role, &a.TenantID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Role, err = model.ParseActorKind(role)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const adminCols = `id, username, password_hash, role, tenant_id, created_at, updated_at`

// Create inserts a staff login. role must be admin (tenantID set) or
// super_admin (tenantID nil); the schema rejects other combinations.
func (s *AdminStore) Create(username, passwordHash string, role model.ActorKind, tenantID *int64) (*model.Admin, error) {
	result, err := s.db.Exec(
		`INSERT INTO admins (username, password_hash, role, tenant_id) VALUES (?, ?, ?, ?)`,
		username, passwordHash, string(role), tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert admin: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AdminStore) GetByID(id int64) (*model.Admin, error) {
	row := s.db.QueryRow(`SELECT `+adminCols+` FROM admins WHERE id = ?`, id)
	a, err := scanAdmin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return a, nil
}

func (s *AdminStore) GetByUsername(username string) (*model.Admin, error) {
	row := s.db.QueryRow(`SELECT `+adminCols+` FROM admins WHERE username = ?`, username)
	a, err := scanAdmin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	return a, nil
}

// CountSuperAdmins reports how many super_admin rows exist; used by the
// startup bootstrap to decide whether to create the first one.
func (s *AdminStore) CountSuperAdmins() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM admins WHERE role = 'super_admin'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count super admins: %w", err)
	}
	return count, nil
}
