// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into a notification feed.
package queue

// RequisitionCreatedQueue is the durable queue carrying new-requisition
// events for maintenance staff.
const RequisitionCreatedQueue = "requisition.created"

// RequisitionCreatedEvent is published when a resident files a requisition.
// It carries enough information for downstream consumers to notify the
// maintenance team without querying the primary database.
type RequisitionCreatedEvent struct {
	RequisitionID uint64 `json:"requisition_id"`
	UserID        uint64 `json:"user_id"`
	Username      string `json:"username"`
	ComplexID     uint64 `json:"complex_id"`
	Title         string `json:"title"`
	Location      string `json:"location"`
	Priority      string `json:"priority"`
	CreatedAt     string `json:"created_at"`
}
