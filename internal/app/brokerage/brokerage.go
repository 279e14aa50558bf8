// Package brokerage собирает приложение: хранилище, кэш, почту,
// платёжный шлюз, генератор счетов, сервисы и HTTP-сервер.
package brokerage

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/campusvitality/brokerage/internal/cache"
	"github.com/campusvitality/brokerage/internal/config"
	"github.com/campusvitality/brokerage/internal/invoice"
	"github.com/campusvitality/brokerage/internal/lib/jwt"
	"github.com/campusvitality/brokerage/internal/lib/smtp"
	"github.com/campusvitality/brokerage/internal/migrations"
	"github.com/campusvitality/brokerage/internal/paymentprovider"
	authservice "github.com/campusvitality/brokerage/internal/services/auth"
	bookingservice "github.com/campusvitality/brokerage/internal/services/booking"
	checkoutservice "github.com/campusvitality/brokerage/internal/services/checkout"
	planservice "github.com/campusvitality/brokerage/internal/services/plan"
	userservice "github.com/campusvitality/brokerage/internal/services/user"
	"github.com/campusvitality/brokerage/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	invoices, err := invoice.NewGenerator(cfg.InvoicesDir)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	mailer := smtp.NewSender(smtp.NewTransport(cfg.SMTP, logger), logger)
	providerClient := paymentprovider.NewClient(cfg.Stripe)

	authService := authservice.NewAuthService(db, jwtMaker, mailer, cfg.FrontendURL, logger)
	planService := planservice.NewPlanService(db, cacheRedis, logger)
	userService := userservice.NewUserService(db, planService, logger)
	bookingService := bookingservice.NewBookingService(db, logger)
	checkoutService := checkoutservice.NewCheckoutService(db, db, db, providerClient, invoices, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, &Services{
		Auth:     authService,
		Users:    userService,
		Plans:    planService,
		Bookings: bookingService,
		Checkout: checkoutService,
		Provider: providerClient,
	}, cfg.UploadsDir, cfg.InvoicesDir)

	router.Get("/docs/*", httpSwagger.WrapHandler)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
