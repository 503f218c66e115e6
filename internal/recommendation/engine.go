package recommendation

import (
	"context"
	"time"

	"github.com/2beens/gymcycle/internal/cycle"
	"github.com/2beens/gymcycle/internal/telemetry/metrics"
	"github.com/2beens/gymcycle/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultPlan is used when the caller has no plan of its own.
var DefaultPlan = []string{"Push", "Pull", "Legs"}

type stateStore interface {
	CurrentState(ctx context.Context, weeklyPlan []string) cycle.State
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLocation sets the timezone used to count calendar days.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		e.loc = loc
	}
}

func WithMetrics(metricsManager *metrics.Manager) Option {
	return func(e *Engine) {
		e.metrics = metricsManager
	}
}

type Engine struct {
	store   stateStore
	now     func() time.Time
	loc     *time.Location
	metrics *metrics.Manager
}

func NewEngine(store stateStore, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
		loc:   time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NextWorkout never fails: anything going wrong while computing the
// recommendation results in the welcome recommendation for the plan.
func (e *Engine) NextWorkout(ctx context.Context, weeklyPlan []string) (rec Recommendation) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "recommendation.engine.nextWorkout")
	defer span.End()

	plan := weeklyPlan
	if len(plan) == 0 {
		plan = DefaultPlan
	}

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("next workout recommendation panic: %v", r)
			rec = Welcome(plan)
		}
		span.SetAttributes(
			attribute.String("situation", string(rec.Situation)),
			attribute.Int("workout_index", rec.WorkoutIndex),
		)
		if e.metrics != nil {
			e.metrics.CounterRecommendations.WithLabelValues(string(rec.Situation)).Inc()
		}
	}()

	state := e.store.CurrentState(ctx, plan)
	days := DaysSince(state.LastWorkoutDate, e.now(), e.loc)
	log.Debugf("next workout: day %d of %v, %d days since last workout", state.CurrentDayInWeek, plan, days)

	return Classify(plan, state, days)
}
