package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ozautos/car-marketplace/internal/repository"
	"github.com/ozautos/car-marketplace/internal/service"
)

// FavoriteHandler exposes the authenticated favorites endpoints.  All
// methods assume JWT authentication has already run.
type FavoriteHandler struct {
	Favorites service.FavoritesService
}

func NewFavoriteHandler(favorites service.FavoritesService) *FavoriteHandler {
	return &FavoriteHandler{Favorites: favorites}
}

// List handles GET /v1/favorites and returns the caller's saved cars,
// newest first.
func (h *FavoriteHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	favorites, err := h.Favorites.List(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"favorites": favorites, "count": len(favorites)})
}

// Add handles POST /v1/favorites/:carId.  Saving a car twice is a
// conflict, not a silent no-op, so clients can tell the two apart.
func (h *FavoriteHandler) Add(c echo.Context) error {
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

	if err := h.Favorites.Add(ctx, userID, carID); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyFavorited):
			return c.JSON(http.StatusConflict, echo.Map{"error": "already favorited"})
		case errors.Is(err, repository.ErrCarNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"favorited": true})
}

// Remove handles DELETE /v1/favorites/:carId.
func (h *FavoriteHandler) Remove(c echo.Context) error {
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

	if err := h.Favorites.Remove(ctx, userID, carID); err != nil {
		if errors.Is(err, repository.ErrFavoriteNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "favorite not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Toggle handles POST /v1/favorites/:carId/toggle and reports the
// resulting state so the client can render the heart without a second
// round trip.
func (h *FavoriteHandler) Toggle(c echo.Context) error {
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

	favorited, err := h.Favorites.Toggle(ctx, userID, carID)
	if err != nil {
		if errors.Is(err, repository.ErrCarNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "toggle failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"favorited": favorited})
}
