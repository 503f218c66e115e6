package cycle

import "time"

// timestampLayout is ISO-8601 in UTC with milliseconds, e.g. 2024-03-10T18:00:00.000Z
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// State is the user's position within the repeating weekly split.
// It is persisted as a single JSON record and overwritten in place.
type State struct {
	// CurrentWeekNumber is derived from the completed count, never authoritative.
	CurrentWeekNumber int `json:"currentWeekNumber"`
	// CurrentDayInWeek is the zero-based plan index of the last completed day.
	CurrentDayInWeek int `json:"currentDayInWeek"`
	// LastWorkoutDate is empty when the user never trained.
	LastWorkoutDate        string   `json:"lastWorkoutDate"`
	TotalWorkoutsCompleted int      `json:"totalWorkoutsCompleted"`
	ProgramStartDate       string   `json:"programStartDate"`
	WeeklyPlan             []string `json:"weeklyPlan"`
}

// PlanMatches reports whether the state was computed for exactly this plan
// (same length, same names in the same order).
func (s State) PlanMatches(plan []string) bool {
	if len(s.WeeklyPlan) != len(plan) {
		return false
	}
	for i := range plan {
		if s.WeeklyPlan[i] != plan[i] {
			return false
		}
	}
	return true
}

// LastWorkout returns the parsed LastWorkoutDate; false if never trained or unparseable.
func (s State) LastWorkout() (time.Time, bool) {
	if s.LastWorkoutDate == "" {
		return time.Time{}, false
	}
	t, err := ParseTimestamp(s.LastWorkoutDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// NormalizeIndex maps any index (negative or overflowing) into [0, planLen).
// Returns 0 for an empty plan.
func NormalizeIndex(i, planLen int) int {
	if planLen <= 0 {
		return 0
	}
	return ((i % planLen) + planLen) % planLen
}

func weekNumber(totalCompleted, planLen int) int {
	if planLen <= 0 {
		return 1
	}
	return totalCompleted/planLen + 1
}

func copyPlan(plan []string) []string {
	planCopy := make([]string, len(plan))
	copy(planCopy, plan)
	return planCopy
}
