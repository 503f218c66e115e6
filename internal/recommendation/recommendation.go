// Package recommendation decides which workout of the weekly split comes next.
package recommendation

import (
	"fmt"
	"math"
	"time"

	"github.com/2beens/gymcycle/internal/cycle"
)

// NoPriorSession is the days-since value used when the user never trained.
const NoPriorSession = 999

// PlaceholderWorkoutName is used when the plan has no usable entry at the chosen index.
const PlaceholderWorkoutName = "Workout"

type Intensity string

const (
	IntensityNormal  Intensity = "normal"
	IntensityLight   Intensity = "light"
	IntensityCatchup Intensity = "catchup"
)

type Situation string

const (
	SituationNewUser     Situation = "new_user"
	SituationSameDay     Situation = "same_day"
	SituationNextDay     Situation = "next_day"
	SituationShortBreak  Situation = "short_break"
	SituationMediumBreak Situation = "medium_break"
	SituationLongBreak   Situation = "long_break"
	SituationFallback    Situation = "fallback"
)

type Recommendation struct {
	WorkoutName          string    `json:"workoutName"`
	WorkoutIndex         int       `json:"workoutIndex"`
	Reason               string    `json:"reason"`
	IsRegularProgression bool      `json:"isRegularProgression"`
	DaysSinceLastWorkout int       `json:"daysSinceLastWorkout"`
	SuggestedIntensity   Intensity `json:"suggestedIntensity"`
	Situation            Situation `json:"situation"`
}

// Classify maps the cycle state and the calendar days since the last workout
// to a recommendation. First matching rule wins.
func Classify(plan []string, state cycle.State, daysSince int) Recommendation {
	planLen := len(plan)
	current := cycle.NormalizeIndex(state.CurrentDayInWeek, planLen)
	next := cycle.NormalizeIndex(state.CurrentDayInWeek+1, planLen)

	switch {
	case state.LastWorkoutDate == "" || daysSince >= NoPriorSession:
		return Welcome(plan)
	case daysSince == 0:
		return Recommendation{
			WorkoutName:          workoutName(plan, current),
			WorkoutIndex:         current,
			Reason:               "You already trained today. Take it easy or rest, your next session stays the same.",
			IsRegularProgression: false,
			DaysSinceLastWorkout: daysSince,
			SuggestedIntensity:   IntensityLight,
			Situation:            SituationSameDay,
		}
	case daysSince == 1:
		return Recommendation{
			WorkoutName:          workoutName(plan, next),
			WorkoutIndex:         next,
			Reason:               "Right on schedule. Continue with the next day of your plan.",
			IsRegularProgression: true,
			DaysSinceLastWorkout: daysSince,
			SuggestedIntensity:   IntensityNormal,
			Situation:            SituationNextDay,
		}
	case daysSince >= 2 && daysSince <= 4:
		return Recommendation{
			WorkoutName:          workoutName(plan, next),
			WorkoutIndex:         next,
			Reason:               fmt.Sprintf("Well rested after %d days. Pick up where you left off.", daysSince),
			IsRegularProgression: true,
			DaysSinceLastWorkout: daysSince,
			SuggestedIntensity:   IntensityNormal,
			Situation:            SituationShortBreak,
		}
	case daysSince >= 5 && daysSince <= 7:
		return Recommendation{
			WorkoutName:          workoutName(plan, 0),
			WorkoutIndex:         0,
			Reason:               fmt.Sprintf("It has been %d days. Restart the week with a lighter session.", daysSince),
			IsRegularProgression: false,
			DaysSinceLastWorkout: daysSince,
			SuggestedIntensity:   IntensityLight,
			Situation:            SituationMediumBreak,
		}
	case daysSince > 7:
		return Recommendation{
			WorkoutName:          workoutName(plan, 0),
			WorkoutIndex:         0,
			Reason:               fmt.Sprintf("Welcome back after %d days. Start from the beginning and ease back in.", daysSince),
			IsRegularProgression: false,
			DaysSinceLastWorkout: daysSince,
			SuggestedIntensity:   IntensityLight,
			Situation:            SituationLongBreak,
		}
	}

	// negative day difference, e.g. last workout date from a skewed clock
	return Recommendation{
		WorkoutName:          workoutName(plan, 0),
		WorkoutIndex:         0,
		Reason:               "Start with the first day of your plan.",
		IsRegularProgression: false,
		DaysSinceLastWorkout: daysSince,
		SuggestedIntensity:   IntensityNormal,
		Situation:            SituationFallback,
	}
}

// Welcome is the first-session recommendation, also used as the safe default.
func Welcome(plan []string) Recommendation {
	return Recommendation{
		WorkoutName:          workoutName(plan, 0),
		WorkoutIndex:         0,
		Reason:               "Welcome! Let's start with the first day of your plan.",
		IsRegularProgression: true,
		DaysSinceLastWorkout: 0,
		SuggestedIntensity:   IntensityNormal,
		Situation:            SituationNewUser,
	}
}

// DaysSince returns the number of calendar days (midnight to midnight in loc)
// between the last workout and now. Empty or unparseable dates give NoPriorSession.
func DaysSince(lastWorkoutDate string, now time.Time, loc *time.Location) int {
	if lastWorkoutDate == "" {
		return NoPriorSession
	}
	last, err := cycle.ParseTimestamp(lastWorkoutDate)
	if err != nil {
		return NoPriorSession
	}
	if loc == nil {
		loc = time.UTC
	}

	// compare dates on a UTC calendar, so DST shifts in loc cannot skew the count
	lastDay := calendarDay(last.In(loc))
	today := calendarDay(now.In(loc))
	return int(math.Round(today.Sub(lastDay).Hours() / 24))
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func workoutName(plan []string, idx int) string {
	if idx < 0 || idx >= len(plan) || plan[idx] == "" {
		return PlaceholderWorkoutName
	}
	return plan[idx]
}
