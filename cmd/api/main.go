package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-dashboard/internal/api/http"
	"github.com/spec-kit/ticket-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/ticket-dashboard/internal/cache"
	"github.com/spec-kit/ticket-dashboard/internal/clock"
	"github.com/spec-kit/ticket-dashboard/internal/config"
	"github.com/spec-kit/ticket-dashboard/internal/dashboard"
	"github.com/spec-kit/ticket-dashboard/internal/events"
	"github.com/spec-kit/ticket-dashboard/internal/observability"
	"github.com/spec-kit/ticket-dashboard/internal/persistence"
	"github.com/spec-kit/ticket-dashboard/internal/query"
	"github.com/spec-kit/ticket-dashboard/internal/repository"
	"github.com/spec-kit/ticket-dashboard/internal/service"
	"github.com/spec-kit/ticket-dashboard/internal/worker"
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

	metrics := observability.NewMetrics()
	clk := clock.NewSystem()

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

	store, err := openStore(ctx, cfg, pg, clk, logger)
	if err != nil {
		logger.Fatal("failed to open ticket store", zap.Error(err))
	}

	readiness := map[string]handlers.Pinger{}
	if pg.PoolHandle() != nil {
		readiness["postgres"] = pg
	}

	var pages *cache.TicketPageCache
	if cfg.Redis.CacheEnabled {
		redis := persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		pages = cache.NewTicketPageCache(redis.Client, cfg.Redis.CacheTTL(), logger.Named("cache"))
		readiness["redis"] = redis
	}

	dispatcher := events.NewInMemoryDispatcher(logger.Named("events"))
	service.NewActivityService(dispatcher, logger.Named("activity"), metrics).RegisterHandlers()

	tickets := service.NewTicketService(service.TicketDependencies{
		Engine:  query.NewEngine(store),
		Cache:   pages,
		Latency: cfg.Dashboard.FetchLatency(),
		Logger:  logger.Named("tickets"),
		Metrics: metrics,
	})

	dashboardLogger := logger.Named("dashboard")
	sessions := dashboard.NewRegistry(func(id string) *dashboard.Controller {
		return dashboard.New(tickets,
			dashboard.WithSessionID(id),
			dashboard.WithItemsPerPage(cfg.Dashboard.ItemsPerPage),
			dashboard.WithStaleTime(cfg.Dashboard.StaleTime()),
			dashboard.WithClock(clk),
			dashboard.WithLogger(dashboardLogger),
			dashboard.WithDispatcher(dispatcher),
		)
	}, clk, dashboardLogger)
	defer sessions.CloseAll()

	janitor := worker.NewSessionJanitor(sessions, cfg.Dashboard.JanitorInterval(), cfg.Dashboard.SessionIdle(), logger.Named("janitor"))
	go janitor.Run(ctx)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Tickets:   handlers.NewTicketsHandler(tickets, cfg.Dashboard.ItemsPerPage),
		Dashboard: handlers.NewDashboardHandler(sessions),
		Metrics:   metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

// openStore selects the Postgres store when a pool is configured, seeding it
// on first start, and falls back to generated in-memory tickets.
func openStore(ctx context.Context, cfg *config.Config, pg *persistence.Postgres, clk clock.Clock, logger *zap.Logger) (repository.TicketRepository, error) {
	if pool := pg.PoolHandle(); pool != nil {
		repo := repository.NewPostgresTicketRepository(pool)
		count, err := repo.Count(ctx)
		if err != nil {
			return nil, err
		}
		if count == 0 && cfg.Store.SeedCount > 0 {
			seed := repository.GenerateTickets(cfg.Store.SeedCount, repository.NewSeededRand(cfg.Store.Seed), clk.Now())
			if err := repo.InsertMany(ctx, seed); err != nil {
				return nil, err
			}
			logger.Info("seeded ticket store", zap.Int("count", len(seed)))
		}
		return repo, nil
	}

	tickets := repository.GenerateTickets(cfg.Store.SeedCount, repository.NewSeededRand(cfg.Store.Seed), clk.Now())
	repo, err := repository.NewMemoryTicketRepository(tickets)
	if err != nil {
		return nil, err
	}
	logger.Info("using in-memory ticket store", zap.Int("count", repo.Len()))
	return repo, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
