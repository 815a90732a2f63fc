package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iliyamo/football-club/internal/auth"
	"github.com/iliyamo/football-club/internal/config"
	"github.com/iliyamo/football-club/internal/database"
	"github.com/iliyamo/football-club/internal/handler"
	"github.com/iliyamo/football-club/internal/logging"
	"github.com/iliyamo/football-club/internal/metrics"
	"github.com/iliyamo/football-club/internal/middleware"
	"github.com/iliyamo/football-club/internal/queue"
	"github.com/iliyamo/football-club/internal/repository"
	"github.com/iliyamo/football-club/internal/router"
	"github.com/iliyamo/football-club/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "text", "error").Error(context.Background(), "invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log.Slog())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logging.SlogLogger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info(ctx, "migrations applied")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Redis is optional: without it the response cache is a pass-through.
	cacheCfg := config.LoadCacheConfig()
	var cache *middleware.Cache
	if cacheCfg.Enabled {
		rdb, err := config.NewRedisClient(config.LoadRedisConfig())
		if err != nil {
			log.Warn(ctx, "redis unavailable; response cache disabled", "error", err)
		} else {
			defer rdb.Close()
			cache = middleware.NewCache(cacheCfg, rdb, log.With("component", "cache"))
		}
	}

	codec, err := auth.NewCodec(auth.CodecConfig{
		Secret:     []byte(cfg.JWTSecret),
		Algorithm:  cfg.JWTAlgorithm,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})
	if err != nil {
		return err
	}
	hasher := auth.NewHasher(cfg.BcryptCost)

	users := repository.NewUserRepo(db)
	matches := repository.NewMatchRepo(db)
	standings := repository.NewStandingRepo(db)
	resolver := auth.NewResolver(users, cfg.EnforceActive)
	guard := middleware.NewGuard(auth.NewAuthenticator(codec, resolver), log.With("component", "auth"), m)

	standingsSvc := service.NewStandingsService(matches, standings)
	publisher := queue.NewPublisher(cfg.RabbitURL, log.With("component", "publisher"))
	matchSvc := service.NewMatchService(matches, publisher, standingsSvc, log)

	consumer := queue.NewConsumer(cfg.RabbitURL, func(ctx context.Context, ev queue.MatchRecordedEvent) error {
		err := standingsSvc.Recompute(ctx, ev.CompetitionID)
		m.MatchEvent(err == nil)
		if err != nil {
			return err
		}
		cache.Invalidate(ctx, "competitions")
		return nil
	}, log.With("component", "match-consumer"))
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error(ctx, "match consumer exited", "error", err)
		}
	}()

	e := newEcho(log, m, !cfg.IsProduction())
	router.Setup(e, router.Handlers{
		Health:       handler.Health(db),
		Auth:         handler.NewAuthHandler(service.NewAuthService(users, hasher, codec, resolver, log), log, m),
		Users:        handler.NewUserHandler(users, log),
		Roles:        handler.NewRoleHandler(repository.NewRoleRepo(db), log),
		Teams:        handler.NewTeamHandler(repository.NewTeamRepo(db), log),
		Players:      handler.NewPlayerHandler(repository.NewPlayerRepo(db), log),
		Competitions: handler.NewCompetitionHandler(repository.NewCompetitionRepo(db), matches, matchSvc, standings, log),
	}, guard, cache, m)

	addr := ":" + cfg.Port
	log.Info(ctx, "listening", "addr", addr, "env", cfg.Env)
	serveErr := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-consumerDone
	log.Info(shutdownCtx, "shutdown complete")
	return nil
}

// newEcho builds the echo instance with request ids, panic recovery,
// request logging through slog and request metrics. debug makes echo's
// error handler include internal error text in responses.
func newEcho(log *logging.SlogLogger, m *metrics.Metrics, debug bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = debug

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{
				"method", v.Method, "uri", v.URI, "status", v.Status,
				"latency", v.Latency.String(), "request_id", v.RequestID,
			}
			if v.Error != nil {
				log.Error(c.Request().Context(), "request", append(args, "error", v.Error.Error())...)
				return nil
			}
			log.Info(c.Request().Context(), "request", args...)
			return nil
		},
	}))
	e.Use(middleware.RequestMetrics(m))
	return e
}
