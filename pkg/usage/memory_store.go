package usage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memRecord carries its own lock so mutations for different users never
// contend with each other.
type memRecord struct {
	mu  sync.Mutex
	rec Record
}

// MemoryStore is an in-memory Store implementation. It is safe for concurrent
// use and is the fixture backend for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*memRecord
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uuid.UUID]*memRecord)}
}

// holder returns the record holder for the user, creating it under the write
// lock on first access. Double-checked so concurrent first-time callers end up
// with the same single record.
func (s *MemoryStore) holder(userID uuid.UUID) *memRecord {
	s.mu.RLock()
	h, ok := s.records[userID]
	s.mu.RUnlock()
	if ok {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok = s.records[userID]; ok {
		return h
	}
	h = &memRecord{rec: Record{UserID: userID, LastResetAt: time.Now().UTC()}}
	s.records[userID] = h
	return h
}

func (s *MemoryStore) GetOrCreate(_ context.Context, userID uuid.UUID) (Record, error) {
	h := s.holder(userID)
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rec, nil
}

func (s *MemoryStore) Get(_ context.Context, userID uuid.UUID) (Record, error) {
	s.mu.RLock()
	h, ok := s.records[userID]
	s.mu.RUnlock()
	if !ok {
		return Record{}, ErrRecordNotFound
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rec, nil
}

func (s *MemoryStore) SetPlan(_ context.Context, userID uuid.UUID, planID string) error {
	s.mu.RLock()
	h, ok := s.records[userID]
	s.mu.RUnlock()
	if !ok {
		return ErrRecordNotFound
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.rec.PlanID = planID
	return nil
}

func (s *MemoryStore) UpgradePlan(_ context.Context, userID uuid.UUID, planID string) error {
	s.mu.RLock()
	h, ok := s.records[userID]
	s.mu.RUnlock()
	if !ok {
		return ErrRecordNotFound
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// Upgrade-only: never touch an assignment above the free tier.
	if h.rec.PlanID != "" && h.rec.PlanID != "free" {
		return nil
	}
	h.rec.PlanID = planID
	return nil
}

func (s *MemoryStore) ReplacePlan(_ context.Context, userID uuid.UUID, oldPlanID, newPlanID string) error {
	s.mu.RLock()
	h, ok := s.records[userID]
	s.mu.RUnlock()
	if !ok {
		return ErrRecordNotFound
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// Compare-and-swap: a concurrent assignment wins and the call is a no-op.
	if h.rec.PlanID == oldPlanID {
		h.rec.PlanID = newPlanID
	}
	return nil
}

func (s *MemoryStore) Increment(_ context.Context, userID uuid.UUID, metric Metric, count int64) error {
	if _, err := ParseMetric(string(metric)); err != nil {
		return err
	}
	if count <= 0 {
		return ErrInvalidCount
	}

	h := s.holder(userID)
	h.mu.Lock()
	defer h.mu.Unlock()
	switch metric {
	case MetricCoursesCreated:
		h.rec.CoursesCreated += count
	case MetricModulesCreated:
		h.rec.ModulesCreated += count
	}
	return nil
}

func (s *MemoryStore) RecordScore(_ context.Context, userID uuid.UUID, score int64) (ScoreResult, error) {
	if score < 0 {
		return ScoreResult{}, ErrInvalidScore
	}

	h := s.holder(userID)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rec.GamesPlayed++
	res := ScoreResult{IsNewHigh: score > h.rec.HighScore}
	if res.IsNewHigh {
		h.rec.HighScore = score
	}
	res.HighScore = h.rec.HighScore
	res.GamesPlayed = h.rec.GamesPlayed
	return res, nil
}

func (s *MemoryStore) CountHigherScores(_ context.Context, score int64) (int64, error) {
	s.mu.RLock()
	holders := make([]*memRecord, 0, len(s.records))
	for _, h := range s.records {
		holders = append(holders, h)
	}
	s.mu.RUnlock()

	var n int64
	for _, h := range holders {
		h.mu.Lock()
		if h.rec.HighScore > score {
			n++
		}
		h.mu.Unlock()
	}
	return n, nil
}

func (s *MemoryStore) ResetAllCounters(_ context.Context) error {
	s.mu.RLock()
	holders := make([]*memRecord, 0, len(s.records))
	for _, h := range s.records {
		holders = append(holders, h)
	}
	s.mu.RUnlock()

	for _, h := range holders {
		h.mu.Lock()
		h.rec.CoursesCreated = 0
		h.rec.ModulesCreated = 0
		h.mu.Unlock()
	}
	return nil
}
