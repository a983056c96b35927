// Package model holds structs mirroring the database tables. The json tags
// are omitted on purpose: these types belong to the repository layer and
// handlers define their own response shapes.
package model

import (
	"time"

	"github.com/iliyamo/condo-maintenance/internal/auth"
)

// User represents a row of the `users` table.
//
// Fields:
//
//	ID           – primary key.
//	Username     – unique login name.
//	PasswordHash – bcrypt hash of the password.
//	Name         – display name of the resident.
//	Role         – ordered role value (see internal/auth).
//	Status       – whether the account is active.
//	ComplexID    – the housing complex the user belongs to.
//	Complement   – free-text unit/address qualifier ("Bloco B, ap 302").
type User struct {
	ID           uint64
	Username     string
	PasswordHash string
	Name         string
	Role         auth.Role
	Status       bool
	ComplexID    uint64
	Complement   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
