package entitlement_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/quotakit/pkg/catalog"
	"github.com/dmitrymomot/quotakit/pkg/entitlement"
	"github.com/dmitrymomot/quotakit/pkg/usage"
)

// countingStore wraps a Store and counts plan-assignment writes, so tests can
// assert that repeated resolution is write-free.
type countingStore struct {
	usage.Store
	planWrites atomic.Int64
}

func (s *countingStore) SetPlan(ctx context.Context, userID uuid.UUID, planID string) error {
	s.planWrites.Add(1)
	return s.Store.SetPlan(ctx, userID, planID)
}

func (s *countingStore) UpgradePlan(ctx context.Context, userID uuid.UUID, planID string) error {
	s.planWrites.Add(1)
	return s.Store.UpgradePlan(ctx, userID, planID)
}

func (s *countingStore) ReplacePlan(ctx context.Context, userID uuid.UUID, oldPlanID, newPlanID string) error {
	s.planWrites.Add(1)
	return s.Store.ReplacePlan(ctx, userID, oldPlanID, newPlanID)
}

// purchaseRacingStore injects a payment between the resolver's drift read and
// its repair write, the worst-case interleaving for the compare-and-swap.
type purchaseRacingStore struct {
	usage.Store
}

func (s *purchaseRacingStore) ReplacePlan(ctx context.Context, userID uuid.UUID, oldPlanID, newPlanID string) error {
	if err := s.Store.SetPlan(ctx, userID, catalog.PlanPro); err != nil {
		return err
	}
	return s.Store.ReplacePlan(ctx, userID, oldPlanID, newPlanID)
}

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(context.Background(), catalog.NewDefaultSource())
	require.NoError(t, err)
	return cat
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("unclassified user gets free", func(t *testing.T) {
		t.Parallel()

		store := usage.NewMemoryStore()
		resolver := entitlement.New(store, newCatalog(t))
		userID := uuid.New()

		rec, plan, err := resolver.Resolve(context.Background(), userID, "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, catalog.PlanFree, rec.PlanID)
		assert.Equal(t, catalog.PlanFree, plan.ID)
		assert.Equal(t, int64(1), plan.MaxCourses)
	})

	t.Run("educational email gets edu", func(t *testing.T) {
		t.Parallel()

		store := usage.NewMemoryStore()
		resolver := entitlement.New(store, newCatalog(t))
		userID := uuid.New()

		rec, plan, err := resolver.Resolve(context.Background(), userID, "student@college.edu.in")
		require.NoError(t, err)
		assert.Equal(t, catalog.PlanEdu, rec.PlanID)
		assert.Equal(t, catalog.PlanEdu, plan.ID)
		assert.Equal(t, int64(12), plan.MaxCourses)
	})

	t.Run("suffix match is case-insensitive", func(t *testing.T) {
		t.Parallel()

		store := usage.NewMemoryStore()
		resolver := entitlement.New(store, newCatalog(t))

		rec, _, err := resolver.Resolve(context.Background(), uuid.New(), "Student@College.EDU.IN")
		require.NoError(t, err)
		assert.Equal(t, catalog.PlanEdu, rec.PlanID)
	})

	t.Run("free user upgraded when email becomes eligible", func(t *testing.T) {
		t.Parallel()

		store := usage.NewMemoryStore()
		resolver := entitlement.New(store, newCatalog(t))
		userID := uuid.New()

		_, _, err := resolver.Resolve(context.Background(), userID, "user@example.com")
		require.NoError(t, err)

		rec, plan, err := resolver.Resolve(context.Background(), userID, "user@iit.edu.in")
		require.NoError(t, err)
		assert.Equal(t, catalog.PlanEdu, rec.PlanID)
		assert.Equal(t, catalog.PlanEdu, plan.ID)
	})

	t.Run("edu never downgraded to free", func(t *testing.T) {
		t.Parallel()

		store := usage.NewMemoryStore()
		resolver := entitlement.New(store, newCatalog(t))
		userID := uuid.New()

		_, _, err := resolver.Resolve(context.Background(), userID, "student@college.edu.in")
		require.NoError(t, err)

		// The user switched to a non-educational email.
		rec, plan, err := resolver.Resolve(context.Background(), userID, "student@gmail.com")
		require.NoError(t, err)
		assert.Equal(t, catalog.PlanEdu, rec.PlanID)
		assert.Equal(t, catalog.PlanEdu, plan.ID)
	})

	t.Run("pro never overridden", func(t *testing.T) {
		t.Parallel()

		store := usage.NewMemoryStore()
		resolver := entitlement.New(store, newCatalog(t))
		userID := uuid.New()

		_, err := store.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)
		require.NoError(t, store.SetPlan(context.Background(), userID, catalog.PlanPro))

		rec, plan, err := resolver.Resolve(context.Background(), userID, "student@college.edu.in")
		require.NoError(t, err)
		assert.Equal(t, catalog.PlanPro, rec.PlanID)
		assert.Equal(t, catalog.PlanPro, plan.ID)
	})

	t.Run("repeated resolution is write-free", func(t *testing.T) {
		t.Parallel()

		store := &countingStore{Store: usage.NewMemoryStore()}
		resolver := entitlement.New(store, newCatalog(t))
		userID := uuid.New()

		_, _, err := resolver.Resolve(context.Background(), userID, "student@college.edu.in")
		require.NoError(t, err)
		assert.Equal(t, int64(1), store.planWrites.Load())

		for i := 0; i < 5; i++ {
			_, _, err := resolver.Resolve(context.Background(), userID, "student@college.edu.in")
			require.NoError(t, err)
		}
		assert.Equal(t, int64(1), store.planWrites.Load())
	})

	t.Run("drifted plan re-resolved", func(t *testing.T) {
		t.Parallel()

		store := usage.NewMemoryStore()
		resolver := entitlement.New(store, newCatalog(t))
		userID := uuid.New()

		_, err := store.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)
		// A plan id the catalog no longer carries.
		require.NoError(t, store.SetPlan(context.Background(), userID, "legacy-gold"))

		rec, plan, err := resolver.Resolve(context.Background(), userID, "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, catalog.PlanFree, rec.PlanID)
		assert.Equal(t, catalog.PlanFree, plan.ID)

		stored, err := store.Get(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, catalog.PlanFree, stored.PlanID)
	})

	t.Run("drift repair never overrides a concurrent purchase", func(t *testing.T) {
		t.Parallel()

		inner := usage.NewMemoryStore()
		store := &purchaseRacingStore{Store: inner}
		resolver := entitlement.New(store, newCatalog(t))
		userID := uuid.New()

		_, err := inner.GetOrCreate(context.Background(), userID)
		require.NoError(t, err)
		require.NoError(t, inner.SetPlan(context.Background(), userID, "legacy-gold"))

		rec, plan, err := resolver.Resolve(context.Background(), userID, "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, catalog.PlanPro, rec.PlanID)
		assert.Equal(t, catalog.PlanPro, plan.ID)

		stored, err := inner.Get(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, catalog.PlanPro, stored.PlanID)
	})
}

func TestEligible(t *testing.T) {
	t.Parallel()

	resolver := entitlement.New(usage.NewMemoryStore(), newCatalog(t))

	assert.True(t, resolver.Eligible("student@college.edu.in"))
	assert.True(t, resolver.Eligible("a@b.EDU.in"))
	assert.False(t, resolver.Eligible("student@college.edu"))
	assert.False(t, resolver.Eligible("student@edu.in.example.com"))
	assert.False(t, resolver.Eligible(""))
}

func TestWithEligibleSuffix(t *testing.T) {
	t.Parallel()

	resolver := entitlement.New(usage.NewMemoryStore(), newCatalog(t),
		entitlement.WithEligibleSuffix(".ac.uk"))

	assert.True(t, resolver.Eligible("student@oxford.ac.uk"))
	assert.False(t, resolver.Eligible("student@college.edu.in"))
}
