package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ozautos/car-marketplace/internal/handler"
	"github.com/ozautos/car-marketplace/internal/middleware"
	"github.com/ozautos/car-marketplace/internal/model"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth; the protected /me
// endpoint is registered by RegisterCustomer alongside the other
// JWT-guarded routes.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts a refresh token in the body and needs no JWT.
	g.POST("/logout", a.Logout)
}

// RegisterPublic registers the guest-visible catalogue and the order
// confirmation lookup.  Each of the extra middlewares (response cache,
// rate limiter) is optional; pass only the ones that are enabled.
// These routes never see a JWT, so cached responses are identical for
// every caller.
func RegisterPublic(e *echo.Echo, cars *handler.CarHandler, reservations *handler.ReservationHandler, mw ...echo.MiddlewareFunc) {
	e.GET("/v1/cars", cars.List, mw...)
	e.GET("/v1/cars/:slug", cars.GetBySlug, mw...)
	// The confirmation page is public by order number; the number
	// itself is the capability.
	e.GET("/v1/orders/:orderNumber", reservations.GetByOrderNumber, mw...)
}

// RegisterCustomer registers customer-scoped endpoints under /v1.
// All routes require a valid JWT; both roles are accepted since an
// admin browsing the storefront behaves like any customer here.
func RegisterCustomer(e *echo.Echo, a *handler.AuthHandler, f *handler.FavoriteHandler, ck *handler.CheckoutHandler, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleAdmin),
	)

	g.GET("/me", a.Me)
	// With a JWT and no body, logout revokes every session for the
	// user; the /v1/auth variant revokes a single presented token.
	g.POST("/logout", a.Logout)

	g.GET("/favorites", f.List)
	g.POST("/favorites/:carId", f.Add)
	g.DELETE("/favorites/:carId", f.Remove)
	g.POST("/favorites/:carId/toggle", f.Toggle)

	g.GET("/checkout/:carId", ck.Get)
	g.PUT("/checkout/:carId/form", ck.UpdateForm)
	g.POST("/checkout/:carId/next", ck.Next)
	g.POST("/checkout/:carId/previous", ck.Previous)
	g.POST("/checkout/:carId/submit", ck.Submit)

	g.GET("/reservations", r.List)
	g.DELETE("/reservations/:id", r.Cancel)
}
