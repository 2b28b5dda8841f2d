package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/quotakit/pkg/httpserver"
	"github.com/dmitrymomot/quotakit/pkg/leaderboard"
	"github.com/dmitrymomot/quotakit/pkg/payment"
	"github.com/dmitrymomot/quotakit/pkg/quota"
	"github.com/dmitrymomot/quotakit/pkg/ratelimit"
	"github.com/dmitrymomot/quotakit/pkg/usage"
)

// defaultRequestTimeout bounds each request, including its storage calls, so
// a stuck dependency surfaces as a transient failure instead of hanging.
const defaultRequestTimeout = 15 * time.Second

// Deps carries the services the HTTP layer delegates to.
type Deps struct {
	Gate        *quota.Gate
	Store       usage.Store
	Leaderboard leaderboard.Index
	Payments    *payment.Service
	Verifier    Verifier     // defaults to NewHeaderVerifier()
	Logger      *slog.Logger // defaults to a noop logger
	HealthFuncs []func(context.Context) error
	Timeout     time.Duration // defaults to defaultRequestTimeout

	// ScoreLimiter throttles score submissions per user. Optional; nil
	// disables throttling.
	ScoreLimiter *ratelimit.FixedWindow
}

// Handler is the HTTP transport layer. All quota decisions live in the
// services; handlers only decode, delegate and encode.
type Handler struct {
	gate         *quota.Gate
	store        usage.Store
	leaderboard  leaderboard.Index
	payments     *payment.Service
	verifier     Verifier
	log          *slog.Logger
	healthFuncs  []func(context.Context) error
	timeout      time.Duration
	scoreLimiter *ratelimit.FixedWindow
}

// New returns a Handler. Panics on missing required dependencies.
func New(deps Deps) *Handler {
	if deps.Gate == nil {
		panic("handler: quota.Gate is required")
	}
	if deps.Store == nil {
		panic("handler: usage.Store is required")
	}
	if deps.Leaderboard == nil {
		panic("handler: leaderboard.Index is required")
	}
	if deps.Payments == nil {
		panic("handler: payment.Service is required")
	}
	if deps.Verifier == nil {
		deps.Verifier = NewHeaderVerifier()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Timeout <= 0 {
		deps.Timeout = defaultRequestTimeout
	}

	return &Handler{
		gate:         deps.Gate,
		store:        deps.Store,
		leaderboard:  deps.Leaderboard,
		payments:     deps.Payments,
		verifier:     deps.Verifier,
		log:          deps.Logger,
		healthFuncs:  deps.HealthFuncs,
		timeout:      deps.Timeout,
		scoreLimiter: deps.ScoreLimiter,
	}
}

// Router assembles the route tree.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(h.timeout))

	r.Get("/health", httpserver.HealthCheckHandler(h.log, h.healthFuncs...))

	r.Route("/api", func(r chi.Router) {
		r.Use(h.withIdentity)

		r.Route("/courses", func(r chi.Router) {
			r.Get("/check-limit", h.handleCheckLimit)
			r.Post("/track-usage", h.handleTrackUsage)
		})

		r.Route("/usage", func(r chi.Router) {
			r.Get("/stats", h.handleUsageStats)
			r.Get("/game/rank", h.handleGameRank)

			r.Group(func(r chi.Router) {
				if h.scoreLimiter != nil {
					r.Use(ratelimit.Middleware(h.scoreLimiter, identityRateLimitKey))
				}
				r.Post("/game/score", h.handleGameScore)
			})
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/checkout", h.handleCheckout)
			r.Post("/payment-success", h.handlePaymentSuccess)
		})
	})

	return r
}

// identity is a convenience accessor for handlers below the middleware.
func (h *Handler) identity(r *http.Request) Identity {
	id, _ := identityFromContext(r.Context())
	return id
}

// identityRateLimitKey keys rate limits by the verified user id. Runs below
// withIdentity, so an empty key only happens if the middleware order changes,
// in which case the limit is skipped rather than shared across all users.
func identityRateLimitKey(r *http.Request) string {
	id, ok := identityFromContext(r.Context())
	if !ok {
		return ""
	}
	return "ratelimit:score:" + id.UserID.String()
}
