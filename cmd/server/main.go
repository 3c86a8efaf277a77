package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"boletera-api/internal/config"
	"boletera-api/internal/database"
	"boletera-api/internal/logging"
	"boletera-api/internal/messaging"
	"boletera-api/internal/metrics"
	"boletera-api/internal/middleware"
	"boletera-api/internal/server"
	"boletera-api/internal/utils"
)

const shutdownTimeout = 15 * time.Second

func main() {
	app := &cli.App{
		Name:  "boletera-api",
		Usage: "events and ticketing REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address, overrides HOST and PORT",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "separate listen address for /metrics, overrides METRICS_ADDR",
			},
			&cli.BoolFlag{
				Name:  "migrate",
				Value: true,
				Usage: "apply pending migrations on startup",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr := c.String("metrics-addr"); addr != "" {
		cfg.Server.MetricsAddr = addr
	}
	addr := cfg.Server.Addr()
	if c.String("addr") != "" {
		addr = c.String("addr")
	}

	log := logging.New(cfg)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	log.WithField("driver", db.Dialect()).Info("Database connection established")

	if c.Bool("migrate") {
		if err := db.RunMigrations(); err != nil {
			return errors.Wrap(err, "failed to run migrations")
		}
	}

	publisher, closePublisher := newPublisher(cfg, log)
	defer closePublisher()

	limiter, closeRedis := newRateLimiter(c.Context, cfg, log)
	defer closeRedis()

	m := metrics.New()
	tokens := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL, cfg.Auth.JWTIssuer)
	hasher := utils.NewPasswordHasher(utils.DefaultPasswordHashConfig())
	svc := server.NewServices(db, publisher, m, hasher, tokens, log)

	api := &http.Server{
		Addr: addr,
		Handler: server.NewRouter(server.RouterConfig{
			Services:     svc,
			DB:           db,
			Log:          log,
			Metrics:      m,
			Limiter:      limiter,
			CORSOrigins:  cfg.Server.CORSOrigins,
			ServeMetrics: cfg.Server.MetricsAddr == "",
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	servers := []*http.Server{api}
	if cfg.Server.MetricsAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              cfg.Server.MetricsAddr,
			Handler:           m.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			log.WithField("addr", srv.Addr).Info("Listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrapf(err, "listener on %s failed", srv.Addr)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var firstErr error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil && firstErr == nil {
				firstErr = errors.Wrapf(err, "failed to shut down %s", srv.Addr)
			}
		}
		return firstErr
	})

	return g.Wait()
}

// newPublisher connects to the broker when AMQP_URL is set. Without a broker
// domain events are dropped.
func newPublisher(cfg *config.Config, log logrus.FieldLogger) (messaging.Publisher, func()) {
	if cfg.AMQP.URL == "" {
		log.Info("AMQP_URL not set, domain events will not be published")
		return messaging.NopPublisher{}, func() {}
	}

	publisher, err := messaging.NewAmqpPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
	if err != nil {
		log.WithError(err).Warn("Broker unavailable, domain events will not be published")
		return messaging.NopPublisher{}, func() {}
	}

	log.WithField("exchange", cfg.AMQP.Exchange).Info("Publishing domain events")
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("Failed to close broker connection")
		}
	}
}

// newRateLimiter connects to Redis when REDIS_URL is set. Without Redis the
// purchase routes are not rate limited.
func newRateLimiter(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*middleware.RateLimiter, func()) {
	if cfg.Redis.URL == "" {
		log.Info("REDIS_URL not set, rate limiting disabled")
		return nil, func() {}
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.WithError(err).Warn("Invalid REDIS_URL, rate limiting disabled")
		return nil, func() {}
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("Redis unreachable at startup, requests are let through until it recovers")
	}

	limiter := middleware.NewRateLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window, log)
	return limiter, func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Failed to close Redis client")
		}
	}
}
