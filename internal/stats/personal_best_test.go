package stats_test

import (
	"testing"

	"github.com/2beens/gymcycle/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPersonalRecords(t *testing.T) {
	bests := map[string]stats.PersonalBest{
		"bench press": {Weight: 80, Reps: 5},
	}
	exercises := []stats.Exercise{
		{
			Name: "Bench Press",
			Sets: []stats.Set{
				{Completed: true, Type: stats.SetTypeWarmup, ActualWeight: 90, ActualReps: 1},
				{Completed: true, Type: stats.SetTypeWorking, ActualWeight: 80, ActualReps: 5},
				{Completed: true, Type: stats.SetTypeWorking, ActualWeight: 80, ActualReps: 6},
				{Completed: false, Type: stats.SetTypeWorking, ActualWeight: 100, ActualReps: 5},
				{Completed: true, Type: stats.SetTypeWorking, ActualWeight: 82.5, ActualReps: 3},
				{Completed: true, Type: stats.SetTypeWorking, ActualWeight: 82.5, ActualReps: 2},
			},
		},
		{
			ID:   "ohp",
			Name: "Overhead Press",
			Sets: []stats.Set{
				{Completed: true, ActualWeight: 40, ActualReps: 8},
				{Completed: true, ActualWeight: 42.5, ActualReps: 6},
			},
		},
	}

	updated := stats.DetectPersonalRecords(exercises, bests)

	bench := exercises[0].Sets
	assert.False(t, bench[0].IsPersonalRecord, "warmup sets are never PRs")
	assert.False(t, bench[1].IsPersonalRecord, "equal to the best is not a PR")
	assert.True(t, bench[2].IsPersonalRecord, "same weight, more reps")
	assert.False(t, bench[3].IsPersonalRecord, "incomplete sets are never PRs")
	assert.True(t, bench[4].IsPersonalRecord, "heavier")
	assert.False(t, bench[5].IsPersonalRecord)

	ohp := exercises[1].Sets
	assert.False(t, ohp[0].IsPersonalRecord, "first time, nothing to beat")
	assert.True(t, ohp[1].IsPersonalRecord)

	assert.Equal(t, stats.PersonalBest{Weight: 82.5, Reps: 3}, updated["bench press"])
	assert.Equal(t, stats.PersonalBest{Weight: 42.5, Reps: 6}, updated["ohp"])
	// input bests untouched
	assert.Equal(t, stats.PersonalBest{Weight: 80, Reps: 5}, bests["bench press"])

	ws := stats.ComputeWorkoutStats(exercises)
	assert.Equal(t, 3, ws.PersonalRecords)
}

func TestBestsFromExercises(t *testing.T) {
	bests := stats.BestsFromExercises([]stats.Exercise{
		{Name: " Squat ", Sets: []stats.Set{
			{Completed: true, ActualWeight: 100, ActualReps: 5},
			{Completed: true, ActualWeight: 110, ActualReps: 3},
			{Completed: false, ActualWeight: 150, ActualReps: 1},
		}},
		{Name: "squat", Sets: []stats.Set{
			{Completed: true, ActualWeight: 110, ActualReps: 4},
			{Completed: true, Type: stats.SetTypeWarmup, ActualWeight: 200, ActualReps: 1},
		}},
		{Name: "", Sets: []stats.Set{{Completed: true, ActualWeight: 10, ActualReps: 10}}},
	})

	require.Len(t, bests, 1)
	assert.Equal(t, stats.PersonalBest{Weight: 110, Reps: 4}, bests["squat"])
}
