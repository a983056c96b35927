// Package handler contains the Echo HTTP handlers. Handlers depend on the
// small store interfaces below rather than concrete repositories, so tests
// substitute in-memory fakes; internal/repository provides the SQL
// implementations.
package handler

import (
	"context"

	"github.com/iliyamo/condo-maintenance/internal/auth"
	"github.com/iliyamo/condo-maintenance/internal/model"
)

// UserStore is the user persistence contract handlers need.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash, name string, complexID uint64, complement string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateRole(ctx context.Context, id uint64, role auth.Role) error
	Delete(ctx context.Context, id uint64) error
}

// ComplexStore resolves and lists housing complexes.
type ComplexStore interface {
	GetByNameSubstring(ctx context.Context, name string) (model.Complex, error)
	ListNames(ctx context.Context) ([]string, error)
}

// RequisitionStore persists and lists maintenance requisitions.
type RequisitionStore interface {
	Create(ctx context.Context, req model.Requisition) (model.Requisition, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Requisition, error)
	ListAll(ctx context.Context) ([]model.Requisition, error)
}
