package usage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Metric identifies a countable consumption metric on a usage record.
type Metric string

const (
	MetricCoursesCreated Metric = "courses_created"
	MetricModulesCreated Metric = "modules_created"
)

// ParseMetric validates a raw metric name from the boundary.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricCoursesCreated, MetricModulesCreated:
		return Metric(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMetric, s)
	}
}

// Record is the per-user mutable state tracking consumption counters and the
// assigned plan. One record per user, created lazily on first access.
// An empty PlanID means the user has never been classified.
type Record struct {
	UserID         uuid.UUID
	PlanID         string
	CoursesCreated int64
	ModulesCreated int64
	HighScore      int64
	GamesPlayed    int64
	LastResetAt    time.Time // Record creation time, informational
}

// Counter returns the current value of the given metric.
func (r Record) Counter(m Metric) int64 {
	switch m {
	case MetricCoursesCreated:
		return r.CoursesCreated
	case MetricModulesCreated:
		return r.ModulesCreated
	default:
		return 0
	}
}

// ScoreResult is the post-update state returned by RecordScore.
type ScoreResult struct {
	HighScore   int64
	GamesPlayed int64
	IsNewHigh   bool
}
