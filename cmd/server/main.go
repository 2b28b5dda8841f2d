package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrymomot/quotakit/handler"
	"github.com/dmitrymomot/quotakit/pkg/catalog"
	"github.com/dmitrymomot/quotakit/pkg/config"
	"github.com/dmitrymomot/quotakit/pkg/entitlement"
	"github.com/dmitrymomot/quotakit/pkg/httpserver"
	"github.com/dmitrymomot/quotakit/pkg/leaderboard"
	"github.com/dmitrymomot/quotakit/pkg/logger"
	"github.com/dmitrymomot/quotakit/pkg/payment"
	"github.com/dmitrymomot/quotakit/pkg/pg"
	"github.com/dmitrymomot/quotakit/pkg/quota"
	"github.com/dmitrymomot/quotakit/pkg/ratelimit"
	"github.com/dmitrymomot/quotakit/pkg/redis"
	"github.com/dmitrymomot/quotakit/pkg/usage"
)

type appConfig struct {
	Environment        string        `env:"APP_ENV" envDefault:"development"`
	ServiceName        string        `env:"APP_NAME" envDefault:"quotakit"`
	PlansFile          string        `env:"PLANS_FILE"`           // optional YAML catalog override
	EligibleSuffix     string        `env:"EDU_EMAIL_SUFFIX"`     // optional eligibility predicate override
	CheckoutSuccessURL string        `env:"CHECKOUT_SUCCESS_URL"` // optional mock checkout redirect override
	ScoreRateLimit     int           `env:"SCORE_RATE_LIMIT" envDefault:"60"`
	ScoreRateWindow    time.Duration `env:"SCORE_RATE_WINDOW" envDefault:"1m"`
}

func main() {
	ctx := context.Background()

	var appCfg appConfig
	config.MustLoad(&appCfg)
	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, appCfg.ServiceName))
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		fatal(log, "database connection failed", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		fatal(log, "migrations failed", err)
	}

	// The seeded plans table is the default catalog source; a YAML file can
	// override it for environments without seed access.
	var src catalog.Source = catalog.NewPGSource(pool)
	if appCfg.PlansFile != "" {
		src = catalog.NewFileSource(appCfg.PlansFile)
	}
	cat, err := catalog.New(ctx, src)
	if err != nil {
		fatal(log, "plan catalog initialization failed", err)
	}

	store := usage.NewPGStore(pool)

	var resolverOpts []entitlement.Option
	if appCfg.EligibleSuffix != "" {
		resolverOpts = append(resolverOpts, entitlement.WithEligibleSuffix(appCfg.EligibleSuffix))
	}
	resolver := entitlement.New(store, cat, resolverOpts...)
	gate := quota.New(resolver)

	var index leaderboard.Index = leaderboard.NewStoreIndex(resolver, store)
	healthFuncs := []func(context.Context) error{pg.Healthcheck(pool)}

	// Per-process counters are fine for a single instance; Redis makes the
	// limit global when the deployment scales out.
	var limiterStore ratelimit.Store = ratelimit.NewMemoryStore()

	if redisCfg.Enabled() {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			fatal(log, "redis connection failed", err)
		}
		defer func() { _ = client.Close() }()

		index = leaderboard.NewRedisIndex(index, client, leaderboard.WithLogger(log))
		limiterStore = ratelimit.NewRedisStore(client)
		healthFuncs = append(healthFuncs, redis.Healthcheck(client))
		log.InfoContext(ctx, "redis leaderboard index enabled")
	}

	scoreLimiter, err := ratelimit.NewFixedWindow(limiterStore, appCfg.ScoreRateLimit, appCfg.ScoreRateWindow)
	if err != nil {
		fatal(log, "rate limiter initialization failed", err)
	}

	var paymentOpts []payment.Option
	if appCfg.CheckoutSuccessURL != "" {
		paymentOpts = append(paymentOpts, payment.WithSuccessURL(appCfg.CheckoutSuccessURL))
	}
	payments := payment.New(cat, store, payment.NewPGLedger(pool), paymentOpts...)

	h := handler.New(handler.Deps{
		Gate:         gate,
		Store:        store,
		Leaderboard:  index,
		Payments:     payments,
		Logger:       log,
		HealthFuncs:  healthFuncs,
		ScoreLimiter: scoreLimiter,
	})

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, h.Router()); err != nil {
		fatal(log, "server stopped with error", err)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
