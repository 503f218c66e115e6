package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/2beens/gymcycle/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrWorkoutNotFound = errors.New("workout not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS workout_history (
	id                    SERIAL PRIMARY KEY,
	workout_name          TEXT        NOT NULL,
	workout_index         INTEGER     NOT NULL DEFAULT 0,
	start_time            TIMESTAMPTZ,
	end_time              TIMESTAMPTZ,
	feedback_completed_at TIMESTAMPTZ,
	exercises             JSONB       NOT NULL DEFAULT '[]',
	notes                 TEXT        NOT NULL DEFAULT '',
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const selectColumns = `
	id, workout_name, workout_index, start_time, end_time, feedback_completed_at, exercises, notes`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// EnsureSchema creates the workout_history table if missing.
func (r *Repo) EnsureSchema(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.ensureschema")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create workout_history table: %w", err)
	}
	return nil
}

func (r *Repo) SaveWorkout(ctx context.Context, entry Entry) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exercisesJson, err := json.Marshal(entry.Exercises)
	if err != nil {
		return nil, fmt.Errorf("marshal exercises: %w", err)
	}

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workout_history
				(workout_name, workout_index, start_time, end_time, feedback_completed_at, exercises, notes)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id;`,
		entry.WorkoutName, entry.WorkoutIndex,
		entry.StartTime, entry.EndTime, entry.FeedbackCompletedAt,
		exercisesJson, entry.Notes,
	).Scan(&id)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("workout.id", id))

	entry.ID = id
	return &entry, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(ctx, `SELECT `+selectColumns+` FROM workout_history WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries, err := r.rows2entries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) != 1 {
		return nil, ErrWorkoutNotFound
	}
	return &entries[0], nil
}

// GetHistory returns all completed workouts, most recently completed first.
func (r *Repo) GetHistory(ctx context.Context) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.history.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+selectColumns+`
			FROM workout_history
			ORDER BY COALESCE(feedback_completed_at, end_time, to_timestamp(0)) DESC, id DESC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries, err := r.rows2entries(rows)
	if err != nil {
		return nil, err
	}

	SortByCompletion(entries)
	span.SetAttributes(attribute.Int("count", len(entries)))

	return entries, nil
}

func (r *Repo) GetHistoryForList(ctx context.Context) ([]ListItem, error) {
	entries, err := r.GetHistory(ctx)
	if err != nil {
		return nil, err
	}
	return toListItems(entries), nil
}

func (r *Repo) rows2entries(rows pgx.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e             Entry
			exercisesJson []byte
		)
		if err := rows.Scan(
			&e.ID, &e.WorkoutName, &e.WorkoutIndex,
			&e.StartTime, &e.EndTime, &e.FeedbackCompletedAt,
			&exercisesJson, &e.Notes,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if len(exercisesJson) > 0 {
			if err := json.Unmarshal(exercisesJson, &e.Exercises); err != nil {
				return nil, fmt.Errorf("unmarshal exercises of workout %d: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
