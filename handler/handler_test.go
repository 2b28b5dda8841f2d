package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/quotakit/handler"
	"github.com/dmitrymomot/quotakit/pkg/catalog"
	"github.com/dmitrymomot/quotakit/pkg/entitlement"
	"github.com/dmitrymomot/quotakit/pkg/leaderboard"
	"github.com/dmitrymomot/quotakit/pkg/payment"
	"github.com/dmitrymomot/quotakit/pkg/quota"
	"github.com/dmitrymomot/quotakit/pkg/ratelimit"
	"github.com/dmitrymomot/quotakit/pkg/usage"
)

func newTestRouter(t *testing.T) (http.Handler, *usage.MemoryStore) {
	t.Helper()

	cat, err := catalog.New(context.Background(), catalog.NewDefaultSource())
	require.NoError(t, err)

	store := usage.NewMemoryStore()
	resolver := entitlement.New(store, cat)

	h := handler.New(handler.Deps{
		Gate:        quota.New(resolver),
		Store:       store,
		Leaderboard: leaderboard.NewStoreIndex(resolver, store),
		Payments:    payment.New(cat, store, payment.NewMemoryLedger()),
	})
	return h.Router(), store
}

func doRequest(t *testing.T, router http.Handler, method, target string, body string, identity *handler.Identity) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if identity != nil {
		req.Header.Set("X-User-Id", identity.UserID.String())
		req.Header.Set("X-User-Email", identity.Email)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthentication(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	t.Run("missing identity", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, router, http.MethodGet, "/api/usage/stats", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Authentication required", decodeBody(t, rec)["error"])
	})

	t.Run("malformed user id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/usage/stats", nil)
		req.Header.Set("X-User-Id", "not-a-uuid")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("health endpoint is public", func(t *testing.T) {
		t.Parallel()

		rec := doRequest(t, router, http.MethodGet, "/health", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCourseQuotaFlow(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	id := &handler.Identity{UserID: uuid.New(), Email: "user@example.com"}

	// Fresh free user may create their single course.
	rec := doRequest(t, router, http.MethodGet, "/api/courses/check-limit", "", id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Allowed", decodeBody(t, rec)["message"])

	// The course was created; report consumption. Empty body defaults to one course.
	rec = doRequest(t, router, http.MethodPost, "/api/courses/track-usage", "", id)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Usage tracked", decodeBody(t, rec)["message"])

	// The cap is reached now.
	rec = doRequest(t, router, http.MethodGet, "/api/courses/check-limit", "", id)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Plan limit reached. Please upgrade to create more courses.", decodeBody(t, rec)["error"])

	// Denials consume nothing: stats still show exactly one course.
	rec = doRequest(t, router, http.MethodGet, "/api/usage/stats", "", id)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Normal User", body["plan_name"])
	assert.Equal(t, float64(1), body["courses_created"])
	assert.Equal(t, float64(1), body["max_courses"])
	assert.Equal(t, float64(0), body["remaining_courses"])

	// Buying pro lifts the denial.
	rec = doRequest(t, router, http.MethodPost, "/api/accounts/payment-success",
		`{"plan_id": "pro", "session_id": "mock_session"}`, id)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Pro User", body["new_plan"])

	rec = doRequest(t, router, http.MethodGet, "/api/courses/check-limit", "", id)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckLimit(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	t.Run("unknown metric", func(t *testing.T) {
		t.Parallel()

		id := &handler.Identity{UserID: uuid.New(), Email: "user@example.com"}
		rec := doRequest(t, router, http.MethodGet, "/api/courses/check-limit?metric=tokens", "", id)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("module metric always admitted", func(t *testing.T) {
		t.Parallel()

		id := &handler.Identity{UserID: uuid.New(), Email: "user@example.com"}
		rec := doRequest(t, router, http.MethodGet, "/api/courses/check-limit?metric=modules_created", "", id)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("edu email sees edu limits", func(t *testing.T) {
		t.Parallel()

		id := &handler.Identity{UserID: uuid.New(), Email: "student@college.edu.in"}

		rec := doRequest(t, router, http.MethodGet, "/api/usage/stats", "", id)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Educational User", body["plan_name"])
		assert.Equal(t, float64(12), body["max_courses"])
	})
}

func TestTrackUsage(t *testing.T) {
	t.Parallel()

	router, store := newTestRouter(t)

	t.Run("explicit metric and count", func(t *testing.T) {
		t.Parallel()

		id := &handler.Identity{UserID: uuid.New(), Email: "user@example.com"}
		rec := doRequest(t, router, http.MethodPost, "/api/courses/track-usage",
			`{"metric": "modules_created", "count": 4}`, id)
		require.Equal(t, http.StatusOK, rec.Code)

		stored, err := store.Get(context.Background(), id.UserID)
		require.NoError(t, err)
		assert.Equal(t, int64(4), stored.ModulesCreated)
		assert.Zero(t, stored.CoursesCreated)
	})

	t.Run("invalid count", func(t *testing.T) {
		t.Parallel()

		id := &handler.Identity{UserID: uuid.New(), Email: "user@example.com"}
		rec := doRequest(t, router, http.MethodPost, "/api/courses/track-usage",
			`{"metric": "courses_created", "count": -1}`, id)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		id := &handler.Identity{UserID: uuid.New(), Email: "user@example.com"}
		rec := doRequest(t, router, http.MethodPost, "/api/courses/track-usage", "{", id)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGameEndpoints(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	t.Run("score and rank flow", func(t *testing.T) {
		t.Parallel()

		rival := &handler.Identity{UserID: uuid.New(), Email: "rival@example.com"}
		rec := doRequest(t, router, http.MethodPost, "/api/usage/game/score", `{"score": 100}`, rival)
		require.Equal(t, http.StatusOK, rec.Code)

		id := &handler.Identity{UserID: uuid.New(), Email: "player@example.com"}
		rec = doRequest(t, router, http.MethodPost, "/api/usage/game/score", `{"score": 50}`, id)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, float64(50), body["high_score"])
		assert.Equal(t, true, body["is_new_high"])
		assert.Equal(t, float64(1), body["games_played"])

		// A worse game keeps the high score.
		rec = doRequest(t, router, http.MethodPost, "/api/usage/game/score", `{"score": 30}`, id)
		require.Equal(t, http.StatusOK, rec.Code)
		body = decodeBody(t, rec)
		assert.Equal(t, float64(50), body["high_score"])
		assert.Equal(t, false, body["is_new_high"])
		assert.Equal(t, float64(2), body["games_played"])

		rec = doRequest(t, router, http.MethodGet, "/api/usage/game/rank", "", id)
		require.Equal(t, http.StatusOK, rec.Code)
		body = decodeBody(t, rec)
		assert.Equal(t, float64(50), body["high_score"])
		assert.Equal(t, float64(2), body["rank"])
	})

	t.Run("negative score", func(t *testing.T) {
		t.Parallel()

		id := &handler.Identity{UserID: uuid.New(), Email: "player@example.com"}
		rec := doRequest(t, router, http.MethodPost, "/api/usage/game/score", `{"score": -1}`, id)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rank without games", func(t *testing.T) {
		t.Parallel()

		id := &handler.Identity{UserID: uuid.New(), Email: "newcomer@example.com"}
		rec := doRequest(t, router, http.MethodGet, "/api/usage/game/rank", "", id)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(0), decodeBody(t, rec)["high_score"])
	})
}

func TestScoreRateLimit(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New(context.Background(), catalog.NewDefaultSource())
	require.NoError(t, err)
	store := usage.NewMemoryStore()
	resolver := entitlement.New(store, cat)

	limiter, err := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(), 2, time.Minute)
	require.NoError(t, err)

	router := handler.New(handler.Deps{
		Gate:         quota.New(resolver),
		Store:        store,
		Leaderboard:  leaderboard.NewStoreIndex(resolver, store),
		Payments:     payment.New(cat, store, payment.NewMemoryLedger()),
		ScoreLimiter: limiter,
	}).Router()

	id := &handler.Identity{UserID: uuid.New(), Email: "player@example.com"}
	for i := 0; i < 2; i++ {
		rec := doRequest(t, router, http.MethodPost, "/api/usage/game/score", `{"score": 10}`, id)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, router, http.MethodPost, "/api/usage/game/score", `{"score": 10}`, id)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Another player is unaffected, and reads are never throttled.
	other := &handler.Identity{UserID: uuid.New(), Email: "other@example.com"}
	rec = doRequest(t, router, http.MethodPost, "/api/usage/game/score", `{"score": 10}`, other)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, router, http.MethodGet, "/api/usage/game/rank", "", id)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBillingEndpoints(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	t.Run("checkout returns redirect url", func(t *testing.T) {
		t.Parallel()

		id := &handler.Identity{UserID: uuid.New(), Email: "user@example.com"}
		rec := doRequest(t, router, http.MethodPost, "/api/accounts/checkout", `{"plan_id": "pro"}`, id)
		require.Equal(t, http.StatusOK, rec.Code)
		url, ok := decodeBody(t, rec)["url"].(string)
		require.True(t, ok)
		assert.Contains(t, url, "plan_id=pro")
		assert.Contains(t, url, "session_id=mock_")
	})

	t.Run("checkout requires plan id", func(t *testing.T) {
		t.Parallel()

		id := &handler.Identity{UserID: uuid.New(), Email: "user@example.com"}
		rec := doRequest(t, router, http.MethodPost, "/api/accounts/checkout", `{}`, id)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Plan ID required", decodeBody(t, rec)["error"])
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()

		id := &handler.Identity{UserID: uuid.New(), Email: "user@example.com"}
		rec := doRequest(t, router, http.MethodPost, "/api/accounts/checkout", `{"plan_id": "enterprise"}`, id)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid Plan", decodeBody(t, rec)["error"])
	})

	t.Run("payment success requires plan id", func(t *testing.T) {
		t.Parallel()

		id := &handler.Identity{UserID: uuid.New(), Email: "user@example.com"}
		rec := doRequest(t, router, http.MethodPost, "/api/accounts/payment-success", `{"session_id": "x"}`, id)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("payment never downgraded by resolver afterwards", func(t *testing.T) {
		t.Parallel()

		id := &handler.Identity{UserID: uuid.New(), Email: "user@example.com"}
		rec := doRequest(t, router, http.MethodPost, "/api/accounts/payment-success",
			`{"plan_id": "pro", "session_id": "mock_session"}`, id)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, router, http.MethodGet, "/api/usage/stats", "", id)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Pro User", decodeBody(t, rec)["plan_name"])
	})
}
