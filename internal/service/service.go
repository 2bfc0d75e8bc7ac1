// Package service implements the business workflows on top of the
// repository layer: the reservation workflow with its atomicity and
// no-double-booking guarantees, and the favorites bookmark service.
// Services return sentinel errors from the repository package for
// expected failures; anything unexpected is logged with detail and
// downgraded to ErrInternal so raw datastore errors never cross the
// service boundary.
package service

import (
	"context"
	"errors"

	"github.com/ozautos/car-marketplace/internal/model"
	"github.com/ozautos/car-marketplace/internal/queue"
	"github.com/ozautos/car-marketplace/internal/repository"
)

// ErrInternal replaces unexpected errors (datastore down, transport
// failure) at the service boundary. Handlers render it as a generic
// 500; the logged detail stays server-side.
var ErrInternal = errors.New("internal error")

// CreatedReservation is the result of a successful reservation
// create: the persisted reservation plus the denormalized car summary
// for the confirmation view.
type CreatedReservation struct {
	Reservation *model.Reservation
	Car         *repository.CarSummary
}

// ReservationService orchestrates the reservation workflow across the
// inventory and reservation tables.
type ReservationService interface {
	Create(ctx context.Context, carID, userID uint64, details model.CustomerDetails) (*CreatedReservation, error)
	Cancel(ctx context.Context, reservationID, userID uint64) error
	GetByOrderNumber(ctx context.Context, orderNumber string) (*repository.ConfirmationView, error)
	ListForUser(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error)
}

// FavoritesService manages the user/car bookmark relation.
type FavoritesService interface {
	Add(ctx context.Context, userID, carID uint64) error
	Remove(ctx context.Context, userID, carID uint64) error
	Toggle(ctx context.Context, userID, carID uint64) (bool, error)
	List(ctx context.Context, userID uint64) ([]repository.FavoriteDetail, error)
}

// EventPublisher delivers domain events to the message broker. The
// services treat publishing as best-effort: a publish failure is
// logged by the publisher and never fails the request.
type EventPublisher interface {
	PublishReservationEvent(ctx context.Context, event queue.ReservationEvent) error
}

// ViewInvalidator tells the presentation layer which cached views (by
// logical route) must be refreshed after a mutation. Invalidation is
// best-effort by contract.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, routes ...string)
}
