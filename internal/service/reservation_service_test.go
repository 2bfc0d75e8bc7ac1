package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ozautos/car-marketplace/internal/model"
	"github.com/ozautos/car-marketplace/internal/queue"
	"github.com/ozautos/car-marketplace/internal/repository"
)

// MockReservationStore is a mock implementation of repository.ReservationStore.
type MockReservationStore struct {
	mock.Mock
}

func (m *MockReservationStore) Reserve(ctx context.Context, res *model.Reservation) (*repository.CarSummary, error) {
	args := m.Called(ctx, res)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.CarSummary), args.Error(1)
}

func (m *MockReservationStore) Cancel(ctx context.Context, reservationID, userID uint64) (*repository.CancelledReservation, error) {
	args := m.Called(ctx, reservationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.CancelledReservation), args.Error(1)
}

func (m *MockReservationStore) GetByOrderNumber(ctx context.Context, orderNumber string) (*repository.ConfirmationView, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ConfirmationView), args.Error(1)
}

func (m *MockReservationStore) ListByUser(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ReservationDetail), args.Error(1)
}

// MockEventPublisher records published reservation events.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishReservationEvent(ctx context.Context, event queue.ReservationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockViewInvalidator records view invalidation requests.
type MockViewInvalidator struct {
	mock.Mock
}

func (m *MockViewInvalidator) Invalidate(ctx context.Context, routes ...string) {
	m.Called(ctx, routes)
}

func testDetails() model.CustomerDetails {
	return model.CustomerDetails{
		Name:          "Ada Lovelace",
		Email:         "ada@example.com",
		Phone:         "0400000000",
		StreetAddress: "1 Example St",
		Suburb:        "Richmond",
		State:         "VIC",
		Postcode:      "3121",
		PreferredDate: "2026-09-15",
		PaymentMethod: "card",
		CardLast4:     "1234",
	}
}

func TestReservationService_Create_Success(t *testing.T) {
	ctx := context.Background()
	store := new(MockReservationStore)
	events := new(MockEventPublisher)
	views := new(MockViewInvalidator)

	car := &repository.CarSummary{ID: 7, Slug: "2021-toyota-camry-ascent"}
	store.On("Reserve", ctx, mock.AnythingOfType("*model.Reservation")).
		Run(func(args mock.Arguments) {
			res := args.Get(1).(*model.Reservation)
			res.ID = 101
			res.Status = model.ReservationStatusPending
			res.CarPrice = decimal.RequireFromString("34990.00")
			res.TotalAmount = decimal.RequireFromString("34990.00")
		}).
		Return(car, nil).Once()
	events.On("PublishReservationEvent", ctx, mock.MatchedBy(func(e queue.ReservationEvent) bool {
		return e.Type == queue.EventReservationCreated && e.ReservationID == 101 && e.CarID == 7
	})).Return(nil).Once()
	views.On("Invalidate", ctx, mock.Anything).Return().Once()

	svc := NewReservationService(store, events, views, zerolog.Nop())
	created, err := svc.Create(ctx, 7, 42, testDetails())

	require.NoError(t, err)
	assert.Equal(t, uint64(101), created.Reservation.ID)
	assert.Equal(t, model.ReservationStatusPending, created.Reservation.Status)
	assert.Regexp(t, `^ORD-\d{4}-\d{5}$`, created.Reservation.OrderNumber)
	assert.Equal(t, car, created.Car)
	store.AssertExpectations(t)
	events.AssertExpectations(t)
	views.AssertExpectations(t)
}

func TestReservationService_Create_CarUnavailable(t *testing.T) {
	ctx := context.Background()
	store := new(MockReservationStore)
	store.On("Reserve", ctx, mock.Anything).Return(nil, repository.ErrCarUnavailable).Once()

	svc := NewReservationService(store, nil, nil, zerolog.Nop())
	created, err := svc.Create(ctx, 7, 42, testDetails())

	assert.Nil(t, created)
	assert.ErrorIs(t, err, repository.ErrCarUnavailable)
	store.AssertExpectations(t)
}

func TestReservationService_Create_CarNotFound(t *testing.T) {
	ctx := context.Background()
	store := new(MockReservationStore)
	store.On("Reserve", ctx, mock.Anything).Return(nil, repository.ErrCarNotFound).Once()

	svc := NewReservationService(store, nil, nil, zerolog.Nop())
	_, err := svc.Create(ctx, 7, 42, testDetails())

	assert.ErrorIs(t, err, repository.ErrCarNotFound)
}

func TestReservationService_Create_RetriesOrderNumberCollision(t *testing.T) {
	ctx := context.Background()
	store := new(MockReservationStore)
	var attempts []string
	store.On("Reserve", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			attempts = append(attempts, args.Get(1).(*model.Reservation).OrderNumber)
		}).
		Return(nil, repository.ErrDuplicateOrderNumber).Twice()
	store.On("Reserve", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			attempts = append(attempts, args.Get(1).(*model.Reservation).OrderNumber)
		}).
		Return(&repository.CarSummary{ID: 7}, nil).Once()

	svc := NewReservationService(store, nil, nil, zerolog.Nop())
	created, err := svc.Create(ctx, 7, 42, testDetails())

	require.NoError(t, err)
	require.Len(t, attempts, 3)
	for _, n := range attempts {
		assert.Regexp(t, `^ORD-\d{4}-\d{5}$`, n, "each retry carries a freshly generated number")
	}
	assert.Equal(t, attempts[2], created.Reservation.OrderNumber)
	store.AssertExpectations(t)
}

func TestReservationService_Create_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	store := new(MockReservationStore)
	store.On("Reserve", ctx, mock.Anything).
		Return(nil, repository.ErrDuplicateOrderNumber).Times(maxOrderNumberAttempts)

	svc := NewReservationService(store, nil, nil, zerolog.Nop())
	created, err := svc.Create(ctx, 7, 42, testDetails())

	assert.Nil(t, created)
	assert.ErrorIs(t, err, ErrInternal)
	store.AssertExpectations(t)
}

func TestReservationService_Create_UnexpectedErrorBecomesInternal(t *testing.T) {
	ctx := context.Background()
	store := new(MockReservationStore)
	store.On("Reserve", ctx, mock.Anything).Return(nil, errors.New("connection reset")).Once()

	svc := NewReservationService(store, nil, nil, zerolog.Nop())
	_, err := svc.Create(ctx, 7, 42, testDetails())

	assert.ErrorIs(t, err, ErrInternal)
}

func TestReservationService_Create_PublishFailureDoesNotFailCreate(t *testing.T) {
	ctx := context.Background()
	store := new(MockReservationStore)
	events := new(MockEventPublisher)
	views := new(MockViewInvalidator)

	store.On("Reserve", ctx, mock.Anything).Return(&repository.CarSummary{ID: 7}, nil).Once()
	events.On("PublishReservationEvent", ctx, mock.Anything).Return(errors.New("broker down")).Once()
	views.On("Invalidate", ctx, mock.Anything).Return().Once()

	svc := NewReservationService(store, events, views, zerolog.Nop())
	created, err := svc.Create(ctx, 7, 42, testDetails())

	require.NoError(t, err)
	assert.NotNil(t, created)
	events.AssertExpectations(t)
}

func TestReservationService_Cancel(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		storeErr error
		want     error
	}{
		{"not found passes through", repository.ErrReservationNotFound, repository.ErrReservationNotFound},
		{"forbidden passes through", repository.ErrForbidden, repository.ErrForbidden},
		{"not cancellable passes through", repository.ErrNotCancellable, repository.ErrNotCancellable},
		{"unexpected becomes internal", errors.New("deadlock"), ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockReservationStore)
			store.On("Cancel", ctx, uint64(5), uint64(42)).Return(nil, tt.storeErr).Once()

			svc := NewReservationService(store, nil, nil, zerolog.Nop())
			err := svc.Cancel(ctx, 5, 42)

			assert.ErrorIs(t, err, tt.want)
			store.AssertExpectations(t)
		})
	}
}

func TestReservationService_Cancel_Success(t *testing.T) {
	ctx := context.Background()
	store := new(MockReservationStore)
	events := new(MockEventPublisher)
	views := new(MockViewInvalidator)

	cancelled := &repository.CancelledReservation{
		ID:          5,
		OrderNumber: "ORD-2026-00042",
		CarID:       7,
		CarSlug:     "2021-toyota-camry-ascent",
	}
	store.On("Cancel", ctx, uint64(5), uint64(42)).Return(cancelled, nil).Once()
	events.On("PublishReservationEvent", ctx, mock.MatchedBy(func(e queue.ReservationEvent) bool {
		return e.Type == queue.EventReservationCancelled && e.OrderNumber == "ORD-2026-00042"
	})).Return(nil).Once()
	views.On("Invalidate", ctx, mock.Anything).Return().Once()

	svc := NewReservationService(store, events, views, zerolog.Nop())
	err := svc.Cancel(ctx, 5, 42)

	require.NoError(t, err)
	store.AssertExpectations(t)
	events.AssertExpectations(t)
	views.AssertExpectations(t)
}

func TestReservationService_GetByOrderNumber(t *testing.T) {
	ctx := context.Background()
	store := new(MockReservationStore)
	want := &repository.ConfirmationView{OrderNumber: "ORD-2026-00042"}
	store.On("GetByOrderNumber", ctx, "ORD-2026-00042").Return(want, nil).Once()
	store.On("GetByOrderNumber", ctx, "ORD-2026-99999").Return(nil, repository.ErrReservationNotFound).Once()

	svc := NewReservationService(store, nil, nil, zerolog.Nop())

	got, err := svc.GetByOrderNumber(ctx, "ORD-2026-00042")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = svc.GetByOrderNumber(ctx, "ORD-2026-99999")
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
}

func TestReservationService_ListForUser(t *testing.T) {
	ctx := context.Background()
	store := new(MockReservationStore)
	store.On("ListByUser", ctx, uint64(42)).
		Return([]repository.ReservationDetail{{ID: 1}, {ID: 2}}, nil).Once()

	svc := NewReservationService(store, nil, nil, zerolog.Nop())
	got, err := svc.ListForUser(ctx, 42)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}
