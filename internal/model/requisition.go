package model

import "time"

// Requisition statuses. Tickets are created PENDING and are immutable
// afterwards in the current scope, so only the initial value is ever
// written by this service.
const (
	RequisitionStatusPending = "PENDING"
)

// Requisition is a maintenance ticket filed by a resident. ComplexID is
// denormalized from the creator's user row at creation time; any value a
// client supplies is ignored.
type Requisition struct {
	ID        uint64
	UserID    uint64
	ComplexID uint64
	Title     string
	Content   string
	Location  string
	ImgURL    *string // nullable
	Priority  string
	Status    string
	CreatedAt time.Time
}
