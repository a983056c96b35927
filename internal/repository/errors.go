// Package repository implements the SQL persistence layer. Sentinel errors
// defined here let handlers distinguish failure scenarios without inspecting
// driver errors: ErrNotFound maps to HTTP 404 and ErrUsernameExists to 409.
package repository

import "errors"

// ErrNotFound is returned when a looked-up row does not exist. Handlers
// must check for it before touching any field of the result.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when an insert violates the unique
// username constraint. Handlers should translate this into HTTP 409.
var ErrUsernameExists = errors.New("username already exists")
