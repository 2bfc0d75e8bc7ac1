// Package queue defines the message payloads exchanged over the
// broker and the background consumer that processes them.
package queue

// Event types carried in ReservationEvent.Type.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published when a reservation is created or
// cancelled. It contains enough information for downstream consumers
// to log, notify, or feed analytics without querying the primary
// database. TotalAmount is a decimal string and is empty on
// cancellation events.
type ReservationEvent struct {
	Type          string `json:"type"`
	ReservationID uint64 `json:"reservation_id"`
	OrderNumber   string `json:"order_number"`
	UserID        uint64 `json:"user_id"`
	CarID         uint64 `json:"car_id"`
	CarSlug       string `json:"car_slug"`
	TotalAmount   string `json:"total_amount,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}
