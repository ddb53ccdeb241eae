package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/printhubhq/printhub-backend/api/routes"
	"github.com/printhubhq/printhub-backend/internal/customers"
	"github.com/printhubhq/printhub-backend/internal/earnings"
	"github.com/printhubhq/printhub-backend/internal/notifications"
	"github.com/printhubhq/printhub-backend/internal/orders"
	"github.com/printhubhq/printhub-backend/internal/payments"
	"github.com/printhubhq/printhub-backend/internal/staff"
	"github.com/printhubhq/printhub-backend/pkg/config"
	"github.com/printhubhq/printhub-backend/pkg/db"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/migrate"
	"github.com/printhubhq/printhub-backend/pkg/outbox"
	"github.com/printhubhq/printhub-backend/pkg/redis"
	"github.com/printhubhq/printhub-backend/pkg/square"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	// The gateway is optional in local setups; without credentials online
	// payment links fall back to a dependency error at request time.
	var linker payments.GatewayLinker
	if cfg.Square.AccessToken != "" {
		squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap square", err)
			os.Exit(1)
		}
		linker = payments.NewSquareLinker(squareClient)
	} else {
		logg.Warn(context.Background(), "square credentials absent, payment links disabled")
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	staffService, err := staff.NewService(staff.NewRepository(dbClient.DB()), cfg.JWT, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create staff service", err)
		os.Exit(1)
	}

	customersService, err := customers.NewService(customers.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create customers service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	earningsService, err := earnings.NewService(earnings.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create earnings service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.NewRepository(dbClient.DB()), dbClient, outboxService, linker, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	commissionEngine, err := earnings.NewCommissionEngine(cfg.FeatureFlags.CreditCommissionOnCompletion, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create commission engine", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		outboxService,
		paymentsService,
		commissionEngine,
		rand.New(rand.NewSource(time.Now().UnixNano())),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, nil, routes.Services{
			Staff:         staffService,
			Orders:        ordersService,
			Payments:      paymentsService,
			Earnings:      earningsService,
			Customers:     customersService,
			Notifications: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
