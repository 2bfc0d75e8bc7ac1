package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ozautos/car-marketplace/internal/repository"
)

// CarHandler serves the public vehicle catalogue.  Listings and
// detail pages are guest-visible; responses flow through the Redis
// response cache, so handlers here must stay side-effect free.
type CarHandler struct {
	Cars *repository.CarRepo
}

func NewCarHandler(cars *repository.CarRepo) *CarHandler {
	return &CarHandler{Cars: cars}
}

// List handles GET /v1/cars.  Pass ?featured=true to restrict the
// result to the featured subset shown on the landing page.  DRAFT
// inventory never appears.
func (h *CarHandler) List(c echo.Context) error {
	featuredOnly := c.QueryParam("featured") == "true"

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cars, err := h.Cars.List(ctx, featuredOnly)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"cars": cars, "count": len(cars)})
}

// GetBySlug handles GET /v1/cars/:slug.  The detail view includes the
// full image gallery; a DRAFT car is indistinguishable from a missing
// one.
func (h *CarHandler) GetBySlug(c echo.Context) error {
	slug := c.Param("slug")
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slug"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	car, err := h.Cars.GetBySlug(ctx, slug)
	if err != nil {
		if err == repository.ErrCarNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, car)
}
