package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ozautos/car-marketplace/internal/checkout"
	"github.com/ozautos/car-marketplace/internal/config"
	"github.com/ozautos/car-marketplace/internal/database"
	"github.com/ozautos/car-marketplace/internal/handler"
	"github.com/ozautos/car-marketplace/internal/middleware"
	"github.com/ozautos/car-marketplace/internal/queue"
	"github.com/ozautos/car-marketplace/internal/repository"
	"github.com/ozautos/car-marketplace/internal/router"
	"github.com/ozautos/car-marketplace/internal/service"
	"github.com/ozautos/car-marketplace/internal/view"
)

func main() {
	_ = godotenv.Load() // optional .env for local development

	cfg := config.Load()
	logger := config.NewLogger(cfg)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}
	defer func() { _ = db.Close() }()

	// Redis backs the response cache, the checkout sessions and the
	// rate limiter.  A nil client degrades all three: caching and
	// limiting switch off, checkout answers 503.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn().Msg("redis unavailable; response cache, rate limiting and checkout disabled")
	}

	cars := repository.NewCarRepo(db)
	reservations := repository.NewReservationRepo(db)
	favorites := repository.NewFavoriteRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	cacheCfg := config.LoadCacheConfig()
	invalidator := view.NewInvalidator(rdb, cacheCfg.Prefix, logger)
	publisher := queue.NewPublisher()

	reservationSvc := service.NewReservationService(reservations, publisher, invalidator, logger)
	favoritesSvc := service.NewFavoritesService(favorites, invalidator, logger)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	carHandler := handler.NewCarHandler(cars)
	favoriteHandler := handler.NewFavoriteHandler(favoritesSvc)
	reservationHandler := handler.NewReservationHandler(reservationSvc)
	checkoutHandler := newCheckoutHandler(cfg, rdb, cars, reservationSvc)

	e := echo.New()
	e.HideBanner = true

	// Rate limiting applies everywhere; the response cache wraps only
	// the public catalogue routes.
	rlCfg := config.LoadRateLimitConfig()
	if rlCfg.Enabled && rdb != nil {
		e.Use(middleware.NewTokenBucket(rlCfg, rdb))
	}
	var publicMW []echo.MiddlewareFunc
	if cacheCfg.Enabled && rdb != nil {
		publicMW = append(publicMW, middleware.NewRedisCache(cacheCfg, rdb))
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler)
	router.RegisterPublic(e, carHandler, reservationHandler, publicMW...)
	router.RegisterCustomer(e, authHandler, favoriteHandler, checkoutHandler, reservationHandler, cfg.JWTSecret)

	// Consumer writes the reservation audit trail; it reconnects on
	// its own, so a broker outage never blocks startup.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			logger.Error().Err(err).Msg("reservation consumer stopped")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// newCheckoutHandler wires the wizard against Redis when available.
// A nil store (not a typed nil) keeps the handler's degradation check
// working.
func newCheckoutHandler(cfg config.Config, rdb *redis.Client, cars *repository.CarRepo, reservations service.ReservationService) *handler.CheckoutHandler {
	var sessions checkout.Store
	if rdb != nil {
		sessions = checkout.NewRedisStore(rdb, cfg.CheckoutTTL)
	}
	return handler.NewCheckoutHandler(sessions, cfg.CheckoutTTL, cars, reservations)
}
