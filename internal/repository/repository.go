package repository

import (
	"context"

	"github.com/ozautos/car-marketplace/internal/model"
)

// ReservationStore is the persistence surface consumed by the
// reservation workflow service. Both mutating operations run their
// dependent writes inside a single database transaction so the
// car-status/reservation pairing can never be observed half applied.
type ReservationStore interface {
	// Reserve atomically checks the car is AVAILABLE, snapshots its
	// price into the reservation, inserts the reservation and flips
	// the car to RESERVED. Returns the reserved car's display summary.
	Reserve(ctx context.Context, res *model.Reservation) (*CarSummary, error)
	// Cancel atomically marks the reservation CANCELLED and restores
	// the car to AVAILABLE after ownership and status checks.
	Cancel(ctx context.Context, reservationID, userID uint64) (*CancelledReservation, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*ConfirmationView, error)
	ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error)
}

// FavoriteStore is the persistence surface consumed by the favorites
// service.
type FavoriteStore interface {
	Add(ctx context.Context, userID, carID uint64) error
	Remove(ctx context.Context, userID, carID uint64) error
	Exists(ctx context.Context, userID, carID uint64) (bool, error)
	ListByUser(ctx context.Context, userID uint64) ([]FavoriteDetail, error)
}

var (
	_ ReservationStore = (*ReservationRepo)(nil)
	_ FavoriteStore    = (*FavoriteRepo)(nil)
)
