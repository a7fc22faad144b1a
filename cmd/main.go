package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/KasumiMercury/primind-practice-reminder/internal/config"
	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
	"github.com/KasumiMercury/primind-practice-reminder/internal/handler"
	"github.com/KasumiMercury/primind-practice-reminder/internal/health"
	"github.com/KasumiMercury/primind-practice-reminder/internal/infra/notifycenter"
	"github.com/KasumiMercury/primind-practice-reminder/internal/infra/questionstore"
	"github.com/KasumiMercury/primind-practice-reminder/internal/infra/repository"
	"github.com/KasumiMercury/primind-practice-reminder/internal/observability/logging"
	"github.com/KasumiMercury/primind-practice-reminder/internal/observability/metrics"
	"github.com/KasumiMercury/primind-practice-reminder/internal/observability/middleware"
	"github.com/KasumiMercury/primind-practice-reminder/internal/service/navigation"
	"github.com/KasumiMercury/primind-practice-reminder/internal/service/reminder"
	"github.com/KasumiMercury/primind-practice-reminder/internal/service/resolver"
	"github.com/KasumiMercury/primind-practice-reminder/internal/service/scheduler"
)

// Version is set via ldflags at build time
var Version = "dev"

const moduleName = logging.Module("practice-reminder")

// notifyBackend is the selected notification center plus its lifecycle hooks.
type notifyBackend struct {
	center domain.NotificationCenter
	// shared is set when other instances can see the same pending triggers.
	shared bool
	// deliver fires triggers pushed back to the deliver endpoint.
	deliver handler.Deliverer
	// run is the dispatcher loop, if the backend needs one.
	run   func(ctx context.Context) error
	close func() error
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	obs, err := initObservability(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	schedulerMetrics, err := metrics.NewSchedulerMetrics()
	if err != nil {
		slog.Error("failed to initialize scheduler metrics", slog.String("error", err.Error()))
		return 1
	}

	redisClient := redis.NewClient(cfg.Redis.Options())

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	questions, err := questionstore.Open(cfg.Questions.DBPath)
	if err != nil {
		slog.Error("failed to open question store",
			slog.String("event", "questions.open.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}
	defer func() {
		if err := questions.Close(); err != nil {
			slog.Warn("failed to close question store", slog.String("error", err.Error()))
		}
	}()

	if cfg.Questions.SeedPath != "" {
		if _, err := questions.LoadSeed(ctx, cfg.Questions.SeedPath); err != nil {
			slog.Error("failed to load question seed",
				slog.String("event", "questions.seed.fail"),
				slog.String("error", err.Error()),
			)
			return 1
		}
	}

	backend, err := initNotifyCenter(ctx, cfg, redisClient)
	if err != nil {
		slog.Error("failed to initialize notification center", slog.String("error", err.Error()))
		return 1
	}
	if backend.close != nil {
		defer func() {
			if err := backend.close(); err != nil {
				slog.Warn("notification center cleanup error", slog.String("error", err.Error()))
			}
		}()
	}

	hub := navigation.NewHub(0)
	reminderRepo := repository.NewReminderRepository(redisClient)
	authorizer := repository.NewAuthorizationRepository(redisClient)

	schedulerOpts := []scheduler.Option{scheduler.WithMetrics(schedulerMetrics)}
	if backend.shared {
		schedulerOpts = append(schedulerOpts, scheduler.WithLocker(repository.NewResyncLocker(redisClient)))
	}
	schedulerService := scheduler.NewService(backend.center, authorizer, hub, schedulerOpts...)

	resolverOpts := []resolver.Option{resolver.WithMetrics(schedulerMetrics)}
	if cfg.Notify.RearmOnFire {
		resolverOpts = append(resolverOpts, resolver.WithRearm(schedulerService))
	}
	resolverService := resolver.NewService(reminderRepo, questions, hub, resolverOpts...)

	if err := schedulerService.Init(ctx, resolverService); err != nil {
		slog.Error("failed to initialize scheduler", slog.String("error", err.Error()))
		return 1
	}

	reminderService := reminder.NewService(reminderRepo, schedulerService, cfg.Notify.Location)

	if cfg.Notify.ResyncOnStart {
		if err := reminderService.Reconcile(ctx); err != nil {
			slog.Warn("start-up reconciliation incomplete", slog.String("error", err.Error()))
		}
	}

	if backend.run != nil {
		go func() {
			if err := backend.run(ctx); err != nil {
				slog.Error("notification dispatcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	// Setup router with observability middleware
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready"},
		Module:      moduleName,
		TracerName:  "github.com/KasumiMercury/primind-practice-reminder/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	healthChecker := health.NewChecker(Version)
	healthChecker.Register("redis", health.RedisCheck(redisClient))
	healthChecker.Register("questions", questions.Ping)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	handler.RegisterRoutes(r,
		handler.NewReminderHandler(reminderService, cfg.Notify.Location),
		newNotificationHandler(backend, resolverService, authorizer, reminderService, hub),
	)

	mux := http.NewServeMux()
	mux.Handle(healthChecker.GRPCHandler())
	mux.Handle("/", r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("notify_center", string(cfg.Notify.Center)),
			slog.String("timezone", cfg.Notify.Location.String()),
			slog.Bool("rearm_on_fire", cfg.Notify.RearmOnFire),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}

// newInProcessCenter builds the memory or Redis backed notification center.
func newInProcessCenter(cfg *config.Config, client *redis.Client) *notifyBackend {
	if cfg.Notify.Center == config.NotifyCenterMemory {
		center := notifycenter.NewMemory(notifycenter.WithLocation(cfg.Notify.Location))
		slog.Warn("using in-memory notification center, pending triggers are lost on restart")
		return &notifyBackend{
			center: center,
			close: func() error {
				center.Close()
				return nil
			},
		}
	}

	center := notifycenter.NewRedis(client, notifycenter.RedisConfig{
		Location:         cfg.Notify.Location,
		DispatchInterval: cfg.Notify.DispatchInterval,
	})
	slog.Info("notification center initialized",
		slog.String("type", "redis"),
		slog.Duration("dispatch_interval", cfg.Notify.DispatchInterval),
	)
	return &notifyBackend{
		center: center,
		shared: true,
		run:    center.Run,
	}
}

func newNotificationHandler(
	backend *notifyBackend,
	resolverService *resolver.Service,
	authorizer domain.Authorizer,
	reminderService *reminder.Service,
	hub *navigation.Hub,
) *handler.NotificationHandler {
	var opts []handler.NotificationHandlerOption
	if backend.deliver != nil {
		opts = append(opts, handler.WithDeliverer(backend.deliver))
	}
	return handler.NewNotificationHandler(resolverService, authorizer, reminderService, hub, opts...)
}
