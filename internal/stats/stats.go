package stats

import "math"

// ExerciseStats is the reduction of a single exercise's sets.
type ExerciseStats struct {
	TotalSets       int     `json:"totalSets"`
	CompletedSets   int     `json:"completedSets"`
	TotalVolume     float64 `json:"totalVolume"`
	TotalReps       int     `json:"totalReps"`
	PersonalRecords int     `json:"personalRecords"`
	TimeToComplete  float64 `json:"timeToComplete"`
	Completed       bool    `json:"completed"`
}

// WorkoutStats is the reduction of a whole workout, used for the live counters
// during an active session and for the summary screens.
type WorkoutStats struct {
	TotalExercises      int     `json:"totalExercises"`
	CompletedExercises  int     `json:"completedExercises"`
	TotalSets           int     `json:"totalSets"`
	CompletedSets       int     `json:"completedSets"`
	TotalVolume         float64 `json:"totalVolume"`
	TotalReps           int     `json:"totalReps"`
	PersonalRecords     int     `json:"personalRecords"`
	ProgressPercentage  int     `json:"progressPercentage"`
	AverageVolumePerSet float64 `json:"averageVolumePerSet"`
	AverageRepsPerSet   float64 `json:"averageRepsPerSet"`
	TimeToComplete      float64 `json:"timeToComplete"`
}

// ComputeExerciseStats reduces the sets of one exercise. Volume, reps and time
// only count completed sets; an exercise without sets is never completed.
func ComputeExerciseStats(ex Exercise) ExerciseStats {
	es := ExerciseStats{
		TotalSets: len(ex.Sets),
	}
	for _, set := range ex.Sets {
		if set.IsPersonalRecord {
			es.PersonalRecords++
		}
		if !set.Completed {
			continue
		}
		es.CompletedSets++
		es.TotalVolume += set.ActualWeight * float64(set.ActualReps)
		es.TotalReps += set.ActualReps
		es.TimeToComplete += set.ElapsedSeconds
	}
	es.Completed = es.TotalSets > 0 && es.CompletedSets == es.TotalSets
	return es
}

// ComputeWorkoutStats is pure and cheap enough to be called on every set change.
// Ratios are 0 when their denominator is 0.
func ComputeWorkoutStats(exercises []Exercise) WorkoutStats {
	ws := WorkoutStats{
		TotalExercises: len(exercises),
	}

	for _, ex := range exercises {
		es := ComputeExerciseStats(ex)
		if es.Completed {
			ws.CompletedExercises++
		}
		ws.TotalSets += es.TotalSets
		ws.CompletedSets += es.CompletedSets
		ws.TotalVolume += es.TotalVolume
		ws.TotalReps += es.TotalReps
		ws.PersonalRecords += es.PersonalRecords
		ws.TimeToComplete += es.TimeToComplete
	}

	if ws.TotalSets > 0 {
		ws.ProgressPercentage = int(math.Round(100 * float64(ws.CompletedSets) / float64(ws.TotalSets)))
	}
	if ws.CompletedSets > 0 {
		ws.AverageVolumePerSet = ws.TotalVolume / float64(ws.CompletedSets)
		ws.AverageRepsPerSet = float64(ws.TotalReps) / float64(ws.CompletedSets)
	}

	return ws
}
