// Package gymcycle exposes the workout cycle and workout history operations
// to the mobile app over HTTP.
package gymcycle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/gymcycle/internal/cycle"
	"github.com/2beens/gymcycle/internal/history"
	"github.com/2beens/gymcycle/internal/middleware"
	"github.com/2beens/gymcycle/internal/recommendation"
	"github.com/2beens/gymcycle/internal/stats"
	"github.com/2beens/gymcycle/internal/telemetry/metrics"
	"github.com/2beens/gymcycle/internal/telemetry/tracing"
	"github.com/2beens/gymcycle/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=handler.go -destination=mocks_test.go -package=gymcycle_test

type cycleStore interface {
	CurrentState(ctx context.Context, weeklyPlan []string) cycle.State
	UpdateWorkoutCompleted(ctx context.Context, workoutIndex int)
}

type recommender interface {
	NextWorkout(ctx context.Context, weeklyPlan []string) recommendation.Recommendation
}

type historyRepo interface {
	SaveWorkout(ctx context.Context, entry history.Entry) (*history.Entry, error)
	Get(ctx context.Context, id int) (*history.Entry, error)
	GetHistory(ctx context.Context) ([]history.Entry, error)
	GetHistoryForList(ctx context.Context) ([]history.ListItem, error)
}

type RecommendationRequest struct {
	WeeklyPlan []string `json:"weeklyPlan"`
}

type WorkoutCompletedRequest struct {
	WorkoutIndex *int `json:"workoutIndex"`
}

type StatsRequest struct {
	Exercises []stats.Exercise `json:"exercises"`
}

type SaveWorkoutResponse struct {
	ID    int                `json:"id"`
	Stats stats.WorkoutStats `json:"stats"`
}

type HistoryListResponse struct {
	Workouts []history.ListItem `json:"workouts"`
	Total    int                `json:"total"`
}

type Handler struct {
	cycleStore     cycleStore
	recommender    recommender
	historyRepo    historyRepo
	metricsManager *metrics.Manager
}

func NewHandler(
	cycleStore cycleStore,
	recommender recommender,
	historyRepo historyRepo,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		cycleStore:     cycleStore,
		recommender:    recommender,
		historyRepo:    historyRepo,
		metricsManager: metricsManager,
	}
}

// SetupRoutes registers the cycle and workout routes. Writes are rate limited
// when a rate limiter is given.
func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
) {
	rateLimited := func(name string, h http.HandlerFunc) http.Handler {
		if rateLimiter == nil {
			return h
		}
		return middleware.RateLimit(rateLimiter, name, allowedPerMin, handler.metricsManager)(h)
	}

	mainRouter.HandleFunc("/cycle/recommendation", handler.HandleRecommendation).Methods("POST", "OPTIONS").Name("cycle-recommendation")
	mainRouter.HandleFunc("/cycle/state", handler.HandleState).Methods("GET", "OPTIONS").Name("cycle-state")
	mainRouter.Handle("/cycle/completed", rateLimited("cycle-completed", handler.HandleWorkoutCompleted)).Methods("POST", "OPTIONS").Name("cycle-completed")

	mainRouter.Handle("/workouts", rateLimited("workouts-save", handler.HandleSaveWorkout)).Methods("POST", "OPTIONS").Name("workouts-save")
	mainRouter.HandleFunc("/workouts/history", handler.HandleHistory).Methods("GET", "OPTIONS").Name("workouts-history")
	mainRouter.HandleFunc("/workouts/stats", handler.HandleStats).Methods("POST", "OPTIONS").Name("workouts-stats")
	mainRouter.HandleFunc("/workouts/{id:[0-9]+}", handler.HandleGetWorkout).Methods("GET", "OPTIONS").Name("workouts-get")
}

func (handler *Handler) HandleRecommendation(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.cycle.recommendation")
	defer span.End()

	var req RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("recommendation, unmarshal json params: %s", err)
		http.Error(w, "invalid recommendation request", http.StatusBadRequest)
		return
	}

	rec := handler.recommender.NextWorkout(ctx, req.WeeklyPlan)
	span.SetAttributes(attribute.String("workout", rec.WorkoutName))
	log.Debugf("recommendation for plan %v: [%d] %s (%s)", req.WeeklyPlan, rec.WorkoutIndex, rec.WorkoutName, rec.Situation)

	pkg.WriteJSONResponseOK(w, rec)
}

// HandleState returns the cycle state; the plan is given as repeated day params,
// e.g. /cycle/state?day=Push&day=Pull&day=Legs
func (handler *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.cycle.state")
	defer span.End()

	plan := r.URL.Query()["day"]
	pkg.WriteJSONResponseOK(w, handler.cycleStore.CurrentState(ctx, plan))
}

func (handler *Handler) HandleWorkoutCompleted(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.cycle.completed")
	defer span.End()

	var req WorkoutCompletedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("workout completed, unmarshal json params: %s", err)
		http.Error(w, "invalid workout completed request", http.StatusBadRequest)
		return
	}
	if req.WorkoutIndex == nil {
		http.Error(w, "error, workout index missing", http.StatusBadRequest)
		return
	}

	span.SetAttributes(attribute.Int("workout_index", *req.WorkoutIndex))
	handler.cycleStore.UpdateWorkoutCompleted(ctx, *req.WorkoutIndex)

	w.WriteHeader(http.StatusAccepted)
}

func (handler *Handler) HandleSaveWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.save")
	defer span.End()

	var entry history.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		log.Errorf("save workout, unmarshal json params: %s", err)
		http.Error(w, "invalid workout", http.StatusBadRequest)
		return
	}
	if entry.WorkoutName == "" {
		http.Error(w, "error, workout name empty", http.StatusBadRequest)
		return
	}
	if entry.EndTime == nil && entry.FeedbackCompletedAt == nil {
		http.Error(w, "error, workout completion time missing", http.StatusBadRequest)
		return
	}

	handler.flagPersonalRecords(ctx, entry.Exercises)

	saved, err := handler.historyRepo.SaveWorkout(ctx, entry)
	if err != nil {
		log.Errorf("failed to save workout [%s]: %s", entry.WorkoutName, err)
		http.Error(w, "error, failed to save workout", http.StatusInternalServerError)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterWorkoutsSaved.Inc()
	}
	log.Debugf("workout saved: [%d] %s", saved.ID, saved.WorkoutName)

	pkg.WriteJSONResponse(w, SaveWorkoutResponse{
		ID:    saved.ID,
		Stats: stats.ComputeWorkoutStats(saved.Exercises),
	}, http.StatusCreated)
}

// flagPersonalRecords marks the sets beating the bests from previous workouts.
// Without history the sets are saved unflagged.
func (handler *Handler) flagPersonalRecords(ctx context.Context, exercises []stats.Exercise) {
	previous, err := handler.historyRepo.GetHistory(ctx)
	if err != nil {
		log.Warnf("save workout, get history for personal records: %s", err)
		return
	}

	var previousExercises []stats.Exercise
	for _, e := range previous {
		previousExercises = append(previousExercises, e.Exercises...)
	}
	stats.DetectPersonalRecords(exercises, stats.BestsFromExercises(previousExercises))
}

func (handler *Handler) HandleGetWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	entry, err := handler.historyRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, history.ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get workout %d: %s", id, err)
		http.Error(w, "error, failed to get workout", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, entry)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.history")
	defer span.End()

	items, err := handler.historyRepo.GetHistoryForList(ctx)
	if err != nil {
		log.Errorf("list workout history: %s", err)
		http.Error(w, "error, failed to get workout history", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []history.ListItem{}
	}

	pkg.WriteJSONResponseOK(w, HistoryListResponse{
		Workouts: items,
		Total:    len(items),
	})
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.stats")
	defer span.End()

	var req StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("workout stats, unmarshal json params: %s", err)
		http.Error(w, "invalid stats request", http.StatusBadRequest)
		return
	}

	pkg.WriteJSONResponseOK(w, stats.ComputeWorkoutStats(req.Exercises))
}
