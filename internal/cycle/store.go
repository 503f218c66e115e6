// Package cycle tracks where the user is in their repeating weekly workout split.
package cycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/gymcycle/internal/history"
	"github.com/2beens/gymcycle/internal/kv"
	"github.com/2beens/gymcycle/internal/telemetry/metrics"
	"github.com/2beens/gymcycle/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultStateKey = "gymcycle::cycle-state"
	DefaultCacheTTL = 5 * time.Second
)

const (
	sourceCache   = "cache"
	sourceStorage = "storage"
	sourceRebuild = "rebuild"
	sourceDefault = "default"
)

//go:generate mockgen -source=store.go -destination=mocks_test.go -package=cycle_test

type kvStore interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
}

type historyRepo interface {
	GetHistory(ctx context.Context) ([]history.Entry, error)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.cacheTTL = ttl
	}
}

func WithStateKey(key string) Option {
	return func(s *Store) {
		s.stateKey = key
	}
}

func WithMetrics(metricsManager *metrics.Manager) Option {
	return func(s *Store) {
		s.metrics = metricsManager
	}
}

// Store is the single source of truth for the cycle state.
// Reads go through a short lived cache, then the persisted record, and finally
// a rebuild from workout history. Storage failures never reach the caller.
type Store struct {
	mu sync.Mutex

	kv          kvStore
	historyRepo historyRepo
	cache       *stateCache

	stateKey string
	cacheTTL time.Duration
	now      func() time.Time
	metrics  *metrics.Manager
}

func NewStore(kvStore kvStore, historyRepo historyRepo, opts ...Option) *Store {
	s := &Store{
		kv:          kvStore,
		historyRepo: historyRepo,
		stateKey:    DefaultStateKey,
		cacheTTL:    DefaultCacheTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = newStateCache(s.cacheTTL, s.now)
	return s
}

// CurrentState returns the cycle state for the given plan. A nil plan accepts
// whatever state is known. On any storage failure the default state is returned.
func (s *Store) CurrentState(ctx context.Context, weeklyPlan []string) State {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cycle.store.currentState")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	state, source, err := s.load(ctx, weeklyPlan)
	if err != nil {
		log.Errorf("get current cycle state: %s", err)
		span.RecordError(err)
		s.countFailure("get_state")
		state, source = s.defaultState(weeklyPlan), sourceDefault
	}
	if len(state.WeeklyPlan) == 0 {
		// a record without a plan may hold a raw index waiting for one
		state.CurrentDayInWeek = 0
	}

	span.SetAttributes(attribute.String("source", source))
	s.countSource(source)
	return state
}

// UpdateWorkoutCompleted records a finished workout for the given plan index.
// The index is wrapped into the plan range, so -1 means the last day.
func (s *Store) UpdateWorkoutCompleted(ctx context.Context, workoutIndex int) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cycle.store.updateWorkoutCompleted")
	defer span.End()
	span.SetAttributes(attribute.Int("workout_index", workoutIndex))

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.cache.invalidate()

	state, _, err := s.load(ctx, nil)
	if err != nil {
		// nothing trustworthy to increment, keep the persisted record as is
		log.Errorf("update workout completed, load cycle state: %s", err)
		span.RecordError(err)
		s.countFailure("update_load")
		return
	}

	planLen := len(state.WeeklyPlan)
	if planLen == 0 {
		// no plan known yet, the raw index is normalized once a plan is adopted
		state.CurrentDayInWeek = workoutIndex
	} else {
		state.CurrentDayInWeek = NormalizeIndex(workoutIndex, planLen)
	}
	state.LastWorkoutDate = FormatTimestamp(s.now())
	state.TotalWorkoutsCompleted++
	state.CurrentWeekNumber = weekNumber(state.TotalWorkoutsCompleted, planLen)

	if err := s.persist(ctx, state); err != nil {
		log.Errorf("update workout completed: %s", err)
		span.RecordError(err)
		s.countFailure("update_persist")
		return
	}

	if s.metrics != nil {
		s.metrics.CounterWorkoutsCompleted.Inc()
	}
	log.Debugf("workout completed: day %d, total %d, week %d",
		state.CurrentDayInWeek, state.TotalWorkoutsCompleted, state.CurrentWeekNumber)
}

// load must be called with s.mu held.
func (s *Store) load(ctx context.Context, weeklyPlan []string) (State, string, error) {
	if cached, ok := s.cache.get(); ok {
		if state, adopted, ok := fitPlan(cached, weeklyPlan); ok {
			if adopted {
				s.adoptPlan(ctx, state)
				s.cache.set(state)
			}
			return state, sourceCache, nil
		}
	}

	raw, err := s.kv.GetItem(ctx, s.stateKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		log.Debugf("no persisted cycle state under [%s]", s.stateKey)
	case err != nil:
		return State{}, "", fmt.Errorf("read persisted cycle state: %w", err)
	default:
		var persisted State
		if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
			return State{}, "", fmt.Errorf("parse persisted cycle state: %w", err)
		}
		if state, adopted, ok := fitPlan(persisted, weeklyPlan); ok {
			if adopted {
				s.adoptPlan(ctx, state)
			}
			s.cache.set(state)
			return state, sourceStorage, nil
		}
		log.Debugf("persisted cycle state plan %v differs from %v, rebuilding", persisted.WeeklyPlan, weeklyPlan)
	}

	state, err := s.rebuild(ctx, weeklyPlan)
	if err != nil {
		return State{}, "", err
	}
	s.cache.set(state)
	return state, sourceRebuild, nil
}

// fitPlan checks whether the state can serve the requested plan. A nil plan takes
// any state. A state recorded without a plan (e.g. a completion reported before
// any recommendation) takes over the requested one, keeping its progress.
func fitPlan(state State, weeklyPlan []string) (_ State, adopted bool, ok bool) {
	if weeklyPlan == nil || state.PlanMatches(weeklyPlan) {
		return state, false, true
	}
	if len(state.WeeklyPlan) > 0 || len(weeklyPlan) == 0 {
		return State{}, false, false
	}

	planLen := len(weeklyPlan)
	state.WeeklyPlan = copyPlan(weeklyPlan)
	state.CurrentDayInWeek = NormalizeIndex(state.CurrentDayInWeek, planLen)
	state.CurrentWeekNumber = weekNumber(state.TotalWorkoutsCompleted, planLen)
	return state, true, true
}

// adoptPlan persists a state which just took over a plan. A failure is only logged,
// the adopted state is still valid for this call and the record is adopted again on a later read.
func (s *Store) adoptPlan(ctx context.Context, state State) {
	log.Debugf("cycle state adopted plan %v", state.WeeklyPlan)
	if err := s.persist(ctx, state); err != nil {
		log.Errorf("persist cycle state with adopted plan: %s", err)
		s.countFailure("adopt_plan")
	}
}

func (s *Store) rebuild(ctx context.Context, weeklyPlan []string) (State, error) {
	entries, err := s.historyRepo.GetHistory(ctx)
	if err != nil {
		return State{}, fmt.Errorf("get workout history: %w", err)
	}
	history.SortByCompletion(entries)

	planLen := len(weeklyPlan)
	total := len(entries)

	state := State{
		CurrentWeekNumber:      weekNumber(total, planLen),
		TotalWorkoutsCompleted: total,
		ProgramStartDate:       FormatTimestamp(s.now()),
		WeeklyPlan:             copyPlan(weeklyPlan),
	}
	if total > 0 {
		state.CurrentDayInWeek = NormalizeIndex(total-1, planLen)
		state.LastWorkoutDate = FormatTimestamp(entries[0].CompletedAt())
	}

	if s.metrics != nil {
		s.metrics.CounterCycleStateRebuilds.Inc()
	}

	if planLen == 0 {
		return state, nil
	}
	if err := s.persist(ctx, state); err != nil {
		return State{}, fmt.Errorf("persist rebuilt cycle state: %w", err)
	}
	return state, nil
}

func (s *Store) persist(ctx context.Context, state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal cycle state: %w", err)
	}
	if err := s.kv.SetItem(ctx, s.stateKey, string(raw)); err != nil {
		return fmt.Errorf("save cycle state: %w", err)
	}
	return nil
}

func (s *Store) defaultState(weeklyPlan []string) State {
	return State{
		CurrentWeekNumber:      1,
		CurrentDayInWeek:       0,
		LastWorkoutDate:        "",
		TotalWorkoutsCompleted: 0,
		ProgramStartDate:       FormatTimestamp(s.now()),
		WeeklyPlan:             copyPlan(weeklyPlan),
	}
}

func (s *Store) countSource(source string) {
	if s.metrics != nil {
		s.metrics.CounterCycleCache.WithLabelValues(source).Inc()
	}
}

func (s *Store) countFailure(op string) {
	if s.metrics != nil {
		s.metrics.CounterStorageFailures.WithLabelValues(op).Inc()
	}
}
