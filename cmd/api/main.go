package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/helpdesk-io/ticketdesk/internal/api/http"
	"github.com/helpdesk-io/ticketdesk/internal/api/http/handlers"
	"github.com/helpdesk-io/ticketdesk/internal/classify"
	"github.com/helpdesk-io/ticketdesk/internal/config"
	"github.com/helpdesk-io/ticketdesk/internal/events"
	"github.com/helpdesk-io/ticketdesk/internal/observability"
	"github.com/helpdesk-io/ticketdesk/internal/persistence"
	"github.com/helpdesk-io/ticketdesk/internal/repository"
	"github.com/helpdesk-io/ticketdesk/internal/service"
	"github.com/helpdesk-io/ticketdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	worker.StartNotificationWorker(notificationService)

	ticketRepo := repository.NewTicketRepository(pg.PoolHandle())
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Cache:      redis,
		Dispatcher: dispatcher,
		Logger:     logger,
		StatsTTL:   cfg.Redis.StatsTTL(),
	})

	provider := classify.NewProviderFromConfig(cfg.Classify, logger)
	classifier := classify.NewClassifier(provider, logger)
	if classifier.Enabled() {
		logger.Info("classification enabled", zap.String("provider", provider.Name()))
	}

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:  handlers.NewTicketsHandler(ticketService),
		Classify: handlers.NewClassifyHandler(classifier),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
