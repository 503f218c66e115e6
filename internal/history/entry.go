package history

import (
	"sort"
	"time"

	"github.com/2beens/gymcycle/internal/stats"
)

// Entry is a completed workout as stored in the workout history.
// Older app versions only reported EndTime; newer ones report the moment the
// post-workout feedback was submitted in FeedbackCompletedAt.
type Entry struct {
	ID                  int              `json:"id"`
	WorkoutName         string           `json:"workoutName"`
	WorkoutIndex        int              `json:"workoutIndex"`
	StartTime           *time.Time       `json:"startTime,omitempty"`
	EndTime             *time.Time       `json:"endTime,omitempty"`
	FeedbackCompletedAt *time.Time       `json:"feedbackCompletedAt,omitempty"`
	Exercises           []stats.Exercise `json:"exercises"`
	Notes               string           `json:"notes,omitempty"`
}

// CompletedAt resolves the single authoritative completion timestamp:
//  1. FeedbackCompletedAt, if set
//  2. EndTime (legacy), if set
//  3. Unix time zero
func (e Entry) CompletedAt() time.Time {
	if e.FeedbackCompletedAt != nil && !e.FeedbackCompletedAt.IsZero() {
		return *e.FeedbackCompletedAt
	}
	if e.EndTime != nil && !e.EndTime.IsZero() {
		return *e.EndTime
	}
	return time.Unix(0, 0).UTC()
}

// DurationSeconds is the time between start and completion, 0 if unknown.
func (e Entry) DurationSeconds() float64 {
	if e.StartTime == nil || e.StartTime.IsZero() {
		return 0
	}
	d := e.CompletedAt().Sub(*e.StartTime).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// SortByCompletion sorts the entries in place, most recently completed first.
func SortByCompletion(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CompletedAt().After(entries[j].CompletedAt())
	})
}

// ListItem is a summarized history entry, as shown in the history list.
type ListItem struct {
	ID              int       `json:"id"`
	WorkoutName     string    `json:"workoutName"`
	WorkoutIndex    int       `json:"workoutIndex"`
	CompletedAt     time.Time `json:"completedAt"`
	DurationSeconds float64   `json:"durationSeconds"`
	ExerciseCount   int       `json:"exerciseCount"`
	CompletedSets   int       `json:"completedSets"`
	TotalVolume     float64   `json:"totalVolume"`
	PersonalRecords int       `json:"personalRecords"`
}

func ToListItem(e Entry) ListItem {
	ws := stats.ComputeWorkoutStats(e.Exercises)
	return ListItem{
		ID:              e.ID,
		WorkoutName:     e.WorkoutName,
		WorkoutIndex:    e.WorkoutIndex,
		CompletedAt:     e.CompletedAt(),
		DurationSeconds: e.DurationSeconds(),
		ExerciseCount:   ws.TotalExercises,
		CompletedSets:   ws.CompletedSets,
		TotalVolume:     ws.TotalVolume,
		PersonalRecords: ws.PersonalRecords,
	}
}

func toListItems(entries []Entry) []ListItem {
	items := make([]ListItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, ToListItem(e))
	}
	return items
}
