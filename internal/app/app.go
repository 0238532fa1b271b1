package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/repository/memory"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/worker"
)

const uploadFraming = 1 << 20

// App holds the wired service graph.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Fiber   *fiber.App

	Tickets    *service.TicketService
	Admins     *service.AdminService
	Categories *service.CategoryService
	Auth       *service.AuthService
	Sweeper    *worker.AssignmentSweeper

	postgres  *persistence.Postgres
	redis     *persistence.Redis
	publisher *events.KafkaPublisher
}

type repositories struct {
	admins     repository.AdminRepository
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
}

// New connects the configured backends and wires services and routes.
// Without POSTGRES_DSN everything runs against the in-memory store.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, persistence.MigrateUp, logger); err != nil {
			pg.Close()
			return nil, err
		}
	}
	redis := persistence.NewRedis(cfg.Redis, logger)

	repos := buildRepositories(pg, redis, cfg.Redis, logger)

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   observability.NewMetrics(),
		postgres:  pg,
		redis:     redis,
		publisher: events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger),
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartNotificationWorker(
		dispatcher,
		service.NewAutomatedMessenger(repos.comments, logger),
		service.NewNotificationService(dispatcher, a.publisher, logger),
	)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	a.Auth = service.NewAuthService(cfg.Auth, repos.admins, tokens, logger)
	a.Admins = service.NewAdminService(repos.admins, repos.categories, cfg.Auth.BcryptCost, logger)
	a.Categories = service.NewCategoryService(repos.categories, logger)
	uploads := service.NewUploadService(cfg.Upload.MaxBytes)
	a.Tickets = service.NewTicketService(service.TicketDependencies{
		TicketRepo:   repos.tickets,
		CommentRepo:  repos.comments,
		AdminRepo:    repos.admins,
		CategoryRepo: repos.categories,
		Router:       service.NewRouter(repos.admins, a.Metrics, logger),
		Dispatcher:   dispatcher,
		Uploads:      uploads,
		Logger:       logger,
	})
	a.Sweeper = worker.NewAssignmentSweeper(a.Tickets, cfg.Assignment.SweepInterval(), logger)

	if err := a.Categories.Seed(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	if boot := cfg.Auth.Bootstrap; boot.Enabled() {
		if _, err := a.Admins.Bootstrap(ctx, boot.Email, boot.Password, boot.Name); err != nil {
			a.Close()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
	} else if !pg.Enabled() {
		logger.Warn("in-memory store without BOOTSTRAP_ADMIN_EMAIL/BOOTSTRAP_ADMIN_PASSWORD; admin routes have no account to log in with")
	}

	a.Fiber = httptransport.NewApp(cfg.App.Name, int(uploads.MaxBytes())+uploadFraming, logger)
	httptransport.RegisterMiddlewares(a.Fiber, logger, a.Metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(a.Fiber, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, a.Metrics),
		Auth:           handlers.NewAuthHandler(a.Auth, cfg.Auth),
		Tickets:        handlers.NewTicketsHandler(a.Tickets),
		Customer:       handlers.NewCustomerHandler(a.Tickets),
		Admins:         handlers.NewAdminsHandler(a.Admins),
		Categories:     handlers.NewCategoriesHandler(a.Categories),
		Upload:         handlers.NewUploadHandler(uploads),
		Setup:          handlers.NewSetupHandler(a.Tickets),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, repos.admins, cfg.Auth.CookieName),
	})

	return a, nil
}

func buildRepositories(pg *persistence.Postgres, redis *persistence.Redis, redisCfg config.RedisConfig, logger *zap.Logger) repositories {
	var repos repositories
	if pg.Enabled() {
		pool := pg.PoolHandle()
		repos = repositories{
			admins:     repository.NewAdminRepository(pool),
			tickets:    repository.NewTicketRepository(pool),
			comments:   repository.NewCommentRepository(pool),
			categories: repository.NewCategoryRepository(pool),
		}
	} else {
		store := memory.NewStore()
		repos = repositories{
			admins:     store.Admins(),
			tickets:    store.Tickets(),
			comments:   store.Comments(),
			categories: store.Categories(),
		}
	}
	repos.categories = repository.NewCachedCategoryRepository(repos.categories, redis.Client, redisCfg.CategoryCacheTTL, logger)
	return repos
}

// Run serves HTTP and the sweeper until ctx is cancelled, then drains.
func (a *App) Run(ctx context.Context) error {
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go a.Sweeper.Run(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", zap.String("addr", a.Config.App.Addr()))
		errCh <- a.Fiber.Listen(a.Config.App.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	if err := a.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases backend connections.
func (a *App) Close() {
	if err := a.publisher.Close(); err != nil {
		a.Logger.Warn("close kafka publisher", zap.Error(err))
	}
	a.redis.Close()
	a.postgres.Close()
}
