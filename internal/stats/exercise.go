package stats

// SetType tags the purpose of a set. Only completion and the actual values
// matter for the aggregation, whatever the tag.
type SetType string

const (
	SetTypeWorking SetType = "working"
	SetTypeWarmup  SetType = "warmup"
)

type Set struct {
	Completed        bool    `json:"completed"`
	TargetReps       int     `json:"targetReps"`
	ActualReps       int     `json:"actualReps"`
	TargetWeight     float64 `json:"targetWeight"`
	ActualWeight     float64 `json:"actualWeight"`
	Type             SetType `json:"type"`
	IsPersonalRecord bool    `json:"isPersonalRecord,omitempty"`
	ElapsedSeconds   float64 `json:"elapsedSeconds,omitempty"`
}

type Exercise struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Sets []Set  `json:"sets"`
}
