package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ozautos/car-marketplace/internal/model"
	"github.com/ozautos/car-marketplace/internal/queue"
	"github.com/ozautos/car-marketplace/internal/repository"
	"github.com/ozautos/car-marketplace/internal/view"
)

// maxOrderNumberAttempts bounds regeneration when a freshly generated
// order number collides with an existing one. The space is 100k per
// year, so a second collision in a row is already very unlikely.
const maxOrderNumberAttempts = 3

// reservationService implements ReservationService.
type reservationService struct {
	reservations repository.ReservationStore
	events       EventPublisher
	views        ViewInvalidator
	logger       zerolog.Logger
}

// NewReservationService creates the reservation workflow service.
// events and views may be nil-valued implementations; both side
// effects are best-effort.
func NewReservationService(
	reservations repository.ReservationStore,
	events EventPublisher,
	views ViewInvalidator,
	logger zerolog.Logger,
) ReservationService {
	return &reservationService{
		reservations: reservations,
		events:       events,
		views:        views,
		logger:       logger.With().Str("service", "reservation").Logger(),
	}
}

// Create reserves the car for the user. The store performs the
// availability check, price snapshot, reservation insert and car
// status flip as one transaction; this layer supplies the order
// number (regenerating on collision), converts unexpected failures,
// and fires the post-commit side effects.
func (s *reservationService) Create(ctx context.Context, carID, userID uint64, details model.CustomerDetails) (*CreatedReservation, error) {
	res := &model.Reservation{
		UserID:        userID,
		CarID:         carID,
		CustomerName:  details.Name,
		CustomerEmail: details.Email,
		CustomerPhone: details.Phone,
		StreetAddress: details.StreetAddress,
		Suburb:        details.Suburb,
		State:         details.State,
		Postcode:      details.Postcode,
		PreferredDate: details.PreferredDate,
		PaymentMethod: details.PaymentMethod,
		CardLast4:     details.CardLast4,
	}

	var car *repository.CarSummary
	for attempt := 1; ; attempt++ {
		orderNumber, err := NewOrderNumber(time.Now())
		if err != nil {
			s.logger.Error().Err(err).Msg("order number generation failed")
			return nil, ErrInternal
		}
		res.OrderNumber = orderNumber

		car, err = s.reservations.Reserve(ctx, res)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicateOrderNumber) && attempt < maxOrderNumberAttempts {
			s.logger.Warn().Str("order_number", orderNumber).Int("attempt", attempt).Msg("order number collision, regenerating")
			continue
		}
		switch {
		case errors.Is(err, repository.ErrCarNotFound), errors.Is(err, repository.ErrCarUnavailable):
			return nil, err
		default:
			s.logger.Error().Err(err).Uint64("car_id", carID).Uint64("user_id", userID).Msg("failed to create reservation")
			return nil, ErrInternal
		}
	}

	s.logger.Info().
		Str("order_number", res.OrderNumber).
		Uint64("car_id", carID).
		Uint64("user_id", userID).
		Str("total_amount", res.TotalAmount.String()).
		Msg("reservation created")

	s.publish(ctx, queue.ReservationEvent{
		Type:          queue.EventReservationCreated,
		ReservationID: res.ID,
		OrderNumber:   res.OrderNumber,
		UserID:        userID,
		CarID:         carID,
		CarSlug:       car.Slug,
		TotalAmount:   res.TotalAmount.String(),
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
	s.invalidate(ctx)

	return &CreatedReservation{Reservation: res, Car: car}, nil
}

// Cancel cancels the user's reservation and restores the car to
// AVAILABLE. The ownership, status and atomicity rules live in the
// store; see repository.ReservationRepo.Cancel.
func (s *reservationService) Cancel(ctx context.Context, reservationID, userID uint64) error {
	cancelled, err := s.reservations.Cancel(ctx, reservationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReservationNotFound),
			errors.Is(err, repository.ErrForbidden),
			errors.Is(err, repository.ErrNotCancellable):
			return err
		default:
			s.logger.Error().Err(err).Uint64("reservation_id", reservationID).Msg("failed to cancel reservation")
			return ErrInternal
		}
	}

	s.logger.Info().
		Str("order_number", cancelled.OrderNumber).
		Uint64("car_id", cancelled.CarID).
		Uint64("user_id", userID).
		Msg("reservation cancelled")

	s.publish(ctx, queue.ReservationEvent{
		Type:          queue.EventReservationCancelled,
		ReservationID: cancelled.ID,
		OrderNumber:   cancelled.OrderNumber,
		UserID:        userID,
		CarID:         cancelled.CarID,
		CarSlug:       cancelled.CarSlug,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
	s.invalidate(ctx)
	return nil
}

// GetByOrderNumber looks up the public confirmation view.
func (s *reservationService) GetByOrderNumber(ctx context.Context, orderNumber string) (*repository.ConfirmationView, error) {
	v, err := s.reservations.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to load confirmation")
		return nil, ErrInternal
	}
	return v, nil
}

// ListForUser returns the user's reservations, newest first.
func (s *reservationService) ListForUser(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error) {
	details, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Uint64("user_id", userID).Msg("failed to list reservations")
		return nil, ErrInternal
	}
	return details, nil
}

// publish sends a reservation event without letting broker trouble
// surface to the caller; the reservation is already committed.
func (s *reservationService) publish(ctx context.Context, event queue.ReservationEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishReservationEvent(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("type", event.Type).Str("order_number", event.OrderNumber).Msg("event publish failed")
	}
}

// invalidate refreshes every view that displays car availability:
// the home listing, car detail pages, and the user's favorites and
// reservation lists.
func (s *reservationService) invalidate(ctx context.Context) {
	if s.views == nil {
		return
	}
	s.views.Invalidate(ctx, view.Cars, view.CarDetail, view.Favorites, view.Reservations)
}
