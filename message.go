package trainingstats

import (
	"fmt"
	"strings"
)

// InfoMessage is the computed summary of one workout.
type InfoMessage struct {
	TrainingType string  `json:"training_type"`
	DurationH    float64 `json:"duration_h"`
	DistanceKM   float64 `json:"distance_km"`
	SpeedKMH     float64 `json:"speed_kmh"`
	Calories     float64 `json:"calories_kcal"`
}

// Message renders the report as a single line with three decimals per value.
func (m InfoMessage) Message() string {
	return fmt.Sprintf(
		"Training type: %s; Duration: %.3f h.; Distance: %.3f km; Avg. speed: %.3f km/h; Calories burned: %.3f.",
		m.TrainingType,
		m.DurationH,
		m.DistanceKM,
		m.SpeedKMH,
		m.Calories,
	)
}

// BuildTrainingLog joins the messages of several reports, one per line.
func BuildTrainingLog(reports []InfoMessage) string {
	if len(reports) == 0 {
		return ""
	}

	var b strings.Builder
	for _, r := range reports {
		b.WriteString(r.Message())
		b.WriteByte('\n')
	}
	return b.String()
}
