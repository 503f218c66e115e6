package stats

import "strings"

// PersonalBest is the best completed working set recorded for an exercise.
type PersonalBest struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

func (pb PersonalBest) beatenBy(set Set) bool {
	if set.ActualWeight != pb.Weight {
		return set.ActualWeight > pb.Weight
	}
	return set.ActualReps > pb.Reps
}

// ExerciseKey identifies an exercise across workouts: its ID if set, else its
// normalized name.
func ExerciseKey(ex Exercise) string {
	if ex.ID != "" {
		return ex.ID
	}
	return strings.ToLower(strings.TrimSpace(ex.Name))
}

// DetectPersonalRecords flags the completed working sets which beat the best so far
// for their exercise: a heavier weight, or the same weight for more reps.
// Sets are checked in order, so a later set has to beat an earlier PR of the same
// workout too. The bests map is not modified; the updated bests are returned.
func DetectPersonalRecords(exercises []Exercise, bests map[string]PersonalBest) map[string]PersonalBest {
	updated := make(map[string]PersonalBest, len(bests))
	for k, v := range bests {
		updated[k] = v
	}

	for i := range exercises {
		key := ExerciseKey(exercises[i])
		if key == "" {
			continue
		}
		for j := range exercises[i].Sets {
			set := &exercises[i].Sets[j]
			if !set.Completed || set.Type == SetTypeWarmup || set.ActualReps <= 0 {
				continue
			}

			best, seen := updated[key]
			if !seen {
				// first time doing this exercise, nothing to beat yet
				updated[key] = PersonalBest{Weight: set.ActualWeight, Reps: set.ActualReps}
				continue
			}
			if best.beatenBy(*set) {
				set.IsPersonalRecord = true
				updated[key] = PersonalBest{Weight: set.ActualWeight, Reps: set.ActualReps}
			}
		}
	}

	return updated
}

// BestsFromExercises builds the personal bests from previously logged exercises.
func BestsFromExercises(exercises []Exercise) map[string]PersonalBest {
	bests := make(map[string]PersonalBest)
	for _, ex := range exercises {
		key := ExerciseKey(ex)
		if key == "" {
			continue
		}
		for _, set := range ex.Sets {
			if !set.Completed || set.Type == SetTypeWarmup || set.ActualReps <= 0 {
				continue
			}
			best, seen := bests[key]
			if !seen || best.beatenBy(set) {
				bests[key] = PersonalBest{Weight: set.ActualWeight, Reps: set.ActualReps}
			}
		}
	}
	return bests
}
