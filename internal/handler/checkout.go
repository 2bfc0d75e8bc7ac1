package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ozautos/car-marketplace/internal/checkout"
	"github.com/ozautos/car-marketplace/internal/repository"
	"github.com/ozautos/car-marketplace/internal/service"
)

// checkoutCookie names the cookie carrying the wizard session ID.
const checkoutCookie = "checkout_session"

// CheckoutHandler drives the three-step reservation wizard.  Wizard
// state lives server-side in Redis keyed by an opaque session cookie;
// the client only ever holds the session ID.  Submitting hands the
// collected details to the reservation workflow and clears the
// session only after the reservation commits.
type CheckoutHandler struct {
	Sessions     checkout.Store
	SessionTTL   time.Duration
	Cars         *repository.CarRepo
	Reservations service.ReservationService
}

func NewCheckoutHandler(sessions checkout.Store, ttl time.Duration, cars *repository.CarRepo, reservations service.ReservationService) *CheckoutHandler {
	return &CheckoutHandler{Sessions: sessions, SessionTTL: ttl, Cars: cars, Reservations: reservations}
}

// sessionID returns the wizard session ID from the request cookie,
// minting a fresh one (and setting the cookie) when absent.
func (h *CheckoutHandler) sessionID(c echo.Context) string {
	if ck, err := c.Cookie(checkoutCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     checkoutCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type checkoutStateResp struct {
	CarID       uint64            `json:"car_id"`
	CurrentStep int               `json:"current_step"`
	FormData    map[string]string `json:"form_data"`
}

func stateResp(s *checkout.State) checkoutStateResp {
	return checkoutStateResp{CarID: s.CarID, CurrentStep: s.CurrentStep, FormData: s.FormData}
}

// load fetches the wizard state for the session, binding it to the
// requested car.  Starting a checkout for a different car discards
// whatever the previous wizard had collected.
func (h *CheckoutHandler) load(ctx context.Context, sessionID string, carID uint64) (*checkout.State, error) {
	state, err := h.Sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.CarID != carID {
		state = checkout.NewState(carID)
	}
	return state, nil
}

// unavailable guards every endpoint: without Redis there is no place
// to keep wizard state, so checkout is down.
func (h *CheckoutHandler) unavailable(c echo.Context) bool {
	if h.Sessions == nil {
		_ = c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "checkout unavailable"})
		return true
	}
	return false
}

// Get handles GET /v1/checkout/:carId.  It verifies the car is still
// open for reservation and returns the wizard state, creating a fresh
// session when none exists.
func (h *CheckoutHandler) Get(c echo.Context) error {
	if h.unavailable(c) {
		return nil
	}
	carID, err := pathID(c, "carId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	car, err := h.Cars.GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	sid := h.sessionID(c)
	state, err := h.load(ctx, sid, carID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load session failed"})
	}
	if err := h.Sessions.Save(ctx, sid, state); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"state":      stateResp(state),
		"car_status": car.Status,
	})
}

// UpdateForm handles PUT /v1/checkout/:carId/form.  The body is a partial
// form; provided fields are merged over the stored ones so each wizard
// screen can save just its own inputs.
func (h *CheckoutHandler) UpdateForm(c echo.Context) error {
	if h.unavailable(c) {
		return nil
	}
	carID, err := pathID(c, "carId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}
	var form map[string]string
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sid := h.sessionID(c)
	state, err := h.load(ctx, sid, carID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load session failed"})
	}
	state.SetFormData(form)
	if err := h.Sessions.Save(ctx, sid, state); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}
	return c.JSON(http.StatusOK, stateResp(state))
}

// Next handles POST /v1/checkout/:carId/next.  The current step must
// validate before the wizard advances; on validation failure the step
// does not move and the field errors come back with a 422.
func (h *CheckoutHandler) Next(c echo.Context) error {
	if h.unavailable(c) {
		return nil
	}
	carID, err := pathID(c, "carId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sid := h.sessionID(c)
	state, err := h.load(ctx, sid, carID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load session failed"})
	}
	if problems := checkout.ValidateStep(state.CurrentStep, state.FormData); len(problems) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"errors": problems,
			"state":  stateResp(state),
		})
	}
	state.Next()
	if err := h.Sessions.Save(ctx, sid, state); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}
	return c.JSON(http.StatusOK, stateResp(state))
}

// Previous handles POST /v1/checkout/:carId/previous.  Going back
// never validates and never loses entered data.
func (h *CheckoutHandler) Previous(c echo.Context) error {
	if h.unavailable(c) {
		return nil
	}
	carID, err := pathID(c, "carId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sid := h.sessionID(c)
	state, err := h.load(ctx, sid, carID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load session failed"})
	}
	state.Previous()
	if err := h.Sessions.Save(ctx, sid, state); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}
	return c.JSON(http.StatusOK, stateResp(state))
}

// Submit handles POST /v1/checkout/:carId/submit.  The whole form is
// re-validated, then the reservation workflow runs.  The wizard
// session survives every failure path so the customer never loses
// their progress; it is cleared only after the reservation commits.
func (h *CheckoutHandler) Submit(c echo.Context) error {
	if h.unavailable(c) {
		return nil
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	carID, err := pathID(c, "carId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	sid := h.sessionID(c)
	state, err := h.load(ctx, sid, carID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load session failed"})
	}
	if problems := checkout.ValidateSubmit(state.FormData); len(problems) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"errors": problems,
			"state":  stateResp(state),
		})
	}

	created, err := h.Reservations.Create(ctx, carID, userID, state.CustomerDetails())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCarNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		case errors.Is(err, repository.ErrCarUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "car no longer available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}

	// Reservation is committed; dropping the session is best-effort.
	if err := h.Sessions.Clear(ctx, sid); err == nil {
		c.SetCookie(&http.Cookie{
			Name:     checkoutCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"order_number": created.Reservation.OrderNumber,
		"status":       created.Reservation.Status,
		"total_amount": created.Reservation.TotalAmount,
		"car":          created.Car,
	})
}
