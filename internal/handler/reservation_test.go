package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ozautos/car-marketplace/internal/model"
	"github.com/ozautos/car-marketplace/internal/repository"
	"github.com/ozautos/car-marketplace/internal/service"
)

// MockReservationService is a mock implementation of service.ReservationService.
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) Create(ctx context.Context, carID, userID uint64, details model.CustomerDetails) (*service.CreatedReservation, error) {
	args := m.Called(ctx, carID, userID, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CreatedReservation), args.Error(1)
}

func (m *MockReservationService) Cancel(ctx context.Context, reservationID, userID uint64) error {
	args := m.Called(ctx, reservationID, userID)
	return args.Error(0)
}

func (m *MockReservationService) GetByOrderNumber(ctx context.Context, orderNumber string) (*repository.ConfirmationView, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ConfirmationView), args.Error(1)
}

func (m *MockReservationService) ListForUser(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ReservationDetail), args.Error(1)
}

func TestReservationHandler_Cancel(t *testing.T) {
	tests := []struct {
		name           string
		serviceErr     error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "success",
			serviceErr:     nil,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "missing reservation",
			serviceErr:     repository.ErrReservationNotFound,
			expectedStatus: http.StatusNotFound,
			expectedError:  "reservation not found",
		},
		{
			// Someone else's reservation must be indistinguishable
			// from a missing one.
			name:           "foreign reservation",
			serviceErr:     repository.ErrForbidden,
			expectedStatus: http.StatusNotFound,
			expectedError:  "reservation not found",
		},
		{
			name:           "past the cancellation window",
			serviceErr:     repository.ErrNotCancellable,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "internal error",
			serviceErr:     service.ErrInternal,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReservationService)
			svc.On("Cancel", mock.Anything, uint64(5), uint64(42)).Return(tt.serviceErr).Once()

			e := echo.New()
			req := httptest.NewRequest(http.MethodDelete, "/v1/reservations/5", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetPath("/v1/reservations/:id")
			c.SetParamNames("id")
			c.SetParamValues("5")
			c.Set("user_id", float64(42)) // JWT claims arrive as float64

			h := NewReservationHandler(svc)
			require.NoError(t, h.Cancel(c))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedError != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedError, body["error"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestReservationHandler_Cancel_Unauthenticated(t *testing.T) {
	svc := new(MockReservationService)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/reservations/5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	h := NewReservationHandler(svc)
	require.NoError(t, h.Cancel(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Cancel")
}

func TestReservationHandler_GetByOrderNumber(t *testing.T) {
	svc := new(MockReservationService)
	svc.On("GetByOrderNumber", mock.Anything, "ORD-2026-00042").
		Return(&repository.ConfirmationView{OrderNumber: "ORD-2026-00042", Status: "PENDING"}, nil).Once()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/orders/ORD-2026-00042", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("orderNumber")
	c.SetParamValues("ORD-2026-00042")

	h := NewReservationHandler(svc)
	require.NoError(t, h.GetByOrderNumber(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ORD-2026-00042", body["order_number"])
	svc.AssertExpectations(t)
}

func TestReservationHandler_GetByOrderNumber_BadFormat(t *testing.T) {
	svc := new(MockReservationService)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/orders/whatever", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("orderNumber")
	c.SetParamValues("whatever")

	h := NewReservationHandler(svc)
	require.NoError(t, h.GetByOrderNumber(c))

	// Malformed numbers short-circuit to 404 without a lookup.
	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertNotCalled(t, "GetByOrderNumber")
}
