package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/condo-maintenance/internal/auth"
	"github.com/iliyamo/condo-maintenance/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,password_hash,name,role,status,complex_id,complement,created_at,updated_at"

// Create inserts a user and returns it with the generated ID. The caller
// supplies an already-hashed password; new accounts always start as
// NAO_VALIDADO and active.
func (r *UserRepo) Create(ctx context.Context, username, passwordHash, name string, complexID uint64, complement string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, name, role, status, complex_id, complement) VALUES (?,?,?,?,?,?,?)",
		username, passwordHash, name, int(auth.RoleNaoValidado), true, complexID, complement)
	if err != nil {
		// MySQL 1062 = duplicate entry on the unique username key.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrUsernameExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{
		ID:         uint64(id),
		Username:   username,
		Name:       name,
		Role:       auth.RoleNaoValidado,
		Status:     true,
		ComplexID:  complexID,
		Complement: complement,
	}, nil
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateRole persists a role change for the target user.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role auth.Role) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=? WHERE id=?", int(role), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	var role int
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &role,
		&u.Status, &u.ComplexID, &u.Complement, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.Role = auth.Role(role)
	return u, nil
}
