package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/quotakit/pkg/catalog"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("default source", func(t *testing.T) {
		t.Parallel()

		cat, err := catalog.New(context.Background(), catalog.NewDefaultSource())
		require.NoError(t, err)

		plan, err := cat.Get(catalog.PlanFree)
		require.NoError(t, err)
		assert.Equal(t, int64(1), plan.MaxCourses)
		assert.Equal(t, int64(8), plan.MaxModulesPerCourse)

		plan, err = cat.Get(catalog.PlanEdu)
		require.NoError(t, err)
		assert.Equal(t, int64(12), plan.MaxCourses)
		assert.True(t, plan.CertificateAccess)
	})

	t.Run("missing free plan fails fast", func(t *testing.T) {
		t.Parallel()

		src := catalog.NewStaticSource(map[string]catalog.Plan{
			catalog.PlanPro: {ID: catalog.PlanPro, Name: "Pro User", MaxCourses: 9999, MaxModulesPerCourse: 8},
		})

		cat, err := catalog.New(context.Background(), src)
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
		assert.Nil(t, cat)
	})

	t.Run("id mismatch rejected", func(t *testing.T) {
		t.Parallel()

		src := catalog.NewStaticSource(map[string]catalog.Plan{
			catalog.PlanFree: {ID: "other", Name: "Free", MaxCourses: 1, MaxModulesPerCourse: 8},
		})

		_, err := catalog.New(context.Background(), src)
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
	})

	t.Run("negative limits rejected", func(t *testing.T) {
		t.Parallel()

		src := catalog.NewStaticSource(map[string]catalog.Plan{
			catalog.PlanFree: {ID: catalog.PlanFree, Name: "Free", MaxCourses: -1, MaxModulesPerCourse: 8},
		})

		_, err := catalog.New(context.Background(), src)
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
	})
}

func TestCatalogLookups(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New(context.Background(), catalog.NewDefaultSource())
	require.NoError(t, err)

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()

		_, err := cat.Get("enterprise")
		assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
		assert.False(t, cat.Has("enterprise"))
	})

	t.Run("default never fails", func(t *testing.T) {
		t.Parallel()

		plan := cat.Default()
		assert.Equal(t, catalog.PlanFree, plan.ID)
	})
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	t.Run("loads yaml plans", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "plans.yaml")
		data := `
free:
  name: Normal User
  max_courses: 1
  max_modules_per_course: 8
  price:
    amount: 0
    currency: USD
pro:
  name: Pro User
  max_courses: 9999
  max_modules_per_course: 8
  price:
    amount: 2999
    currency: USD
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		cat, err := catalog.New(context.Background(), catalog.NewFileSource(path))
		require.NoError(t, err)

		plan, err := cat.Get(catalog.PlanPro)
		require.NoError(t, err)
		// The map key fills in the omitted id field.
		assert.Equal(t, catalog.PlanPro, plan.ID)
		assert.Equal(t, int64(2999), plan.Price.Amount)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.New(context.Background(), catalog.NewFileSource("/nonexistent/plans.yaml"))
		assert.ErrorIs(t, err, catalog.ErrFailedToLoadPlans)
	})
}
