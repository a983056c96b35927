package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/condo-maintenance/internal/model"
)

type ComplexRepo struct{ DB *sql.DB }

func NewComplexRepo(db *sql.DB) *ComplexRepo { return &ComplexRepo{DB: db} }

// GetByNameSubstring resolves a complex by case-insensitive substring match,
// the lookup registration uses ("Primavera" finds "Residencial Primavera").
func (r *ComplexRepo) GetByNameSubstring(ctx context.Context, name string) (model.Complex, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"
	var c model.Complex
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name FROM complexes WHERE LOWER(name) LIKE ? LIMIT 1",
		pattern).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Complex{}, ErrNotFound
	}
	if err != nil {
		return model.Complex{}, err
	}
	return c, nil
}

// ListNames returns every complex name for the registration picker.
func (r *ComplexRepo) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT name FROM complexes ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
