package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"github.com/ozautos/car-marketplace/internal/repository"
	"github.com/ozautos/car-marketplace/internal/service"
)

// orderNumberPattern matches the shareable order number format.
var orderNumberPattern = regexp.MustCompile(`^ORD-\d{4}-\d{5}$`)

// ReservationHandler exposes the confirmation lookup and the
// customer-facing reservation endpoints.
type ReservationHandler struct {
	Reservations service.ReservationService
}

func NewReservationHandler(reservations service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Reservations: reservations}
}

// GetByOrderNumber handles GET /v1/orders/:orderNumber.  The lookup is
// public: anyone holding the order number may view the confirmation,
// which carries no payment details beyond the masked card suffix.
func (h *ReservationHandler) GetByOrderNumber(c echo.Context) error {
	orderNumber := c.Param("orderNumber")
	if !orderNumberPattern.MatchString(orderNumber) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	view, err := h.Reservations.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, view)
}

// List handles GET /v1/reservations and returns the caller's
// reservations, newest first.
func (h *ReservationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	reservations, err := h.Reservations.ListForUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": reservations, "count": len(reservations)})
}

// Cancel handles DELETE /v1/reservations/:id.  A reservation that
// exists but belongs to someone else is reported exactly like one
// that does not exist, so the endpoint cannot be used to probe for
// valid reservation IDs.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Reservations.Cancel(ctx, reservationID, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrReservationNotFound), errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, repository.ErrNotCancellable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation can no longer be cancelled"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
