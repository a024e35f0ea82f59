package trainingstats

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInvalidWorkoutCode is returned for a code other than SWM, RUN or WLK.
	ErrInvalidWorkoutCode = errors.New("invalid workout code")
	// ErrMalformedReading is returned when the fields do not fit the workout layout.
	ErrMalformedReading = errors.New("malformed reading")
)

// Reading is one raw sensor package: a workout code and its positional fields.
type Reading struct {
	Code   string    `json:"code" yaml:"code"`
	Fields []float64 `json:"fields" yaml:"fields"`
}

// RunningParams are the constructor inputs of a running workout.
type RunningParams struct {
	Action    int
	DurationH float64
	WeightKG  float64
}

// WalkingParams are the constructor inputs of a walking workout. Height is in centimetres.
type WalkingParams struct {
	Action    int
	DurationH float64
	WeightKG  float64
	HeightCM  float64
}

// SwimmingParams are the constructor inputs of a swimming workout.
type SwimmingParams struct {
	Action      int
	DurationH   float64
	WeightKG    float64
	PoolLengthM float64
	PoolCount   int
}

var fieldLayouts = map[Kind][]string{
	KindRunning:  {"action", "duration_h", "weight_kg"},
	KindWalking:  {"action", "duration_h", "weight_kg", "height_cm"},
	KindSwimming: {"action", "duration_h", "weight_kg", "pool_length_m", "pool_count"},
}

// FieldLayout lists the positional field names expected for a kind.
func FieldLayout(k Kind) []string {
	return append([]string(nil), fieldLayouts[k]...)
}

// ParseKind maps a sensor code to its workout kind.
func ParseKind(code string) (Kind, error) {
	switch code {
	case "SWM":
		return KindSwimming, nil
	case "RUN":
		return KindRunning, nil
	case "WLK":
		return KindWalking, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q", ErrInvalidWorkoutCode, code)
	}
}

// ReadPackage builds the workout described by a code and its positional fields.
func ReadPackage(code string, fields []float64) (Workout, error) {
	kind, err := ParseKind(code)
	if err != nil {
		return nil, err
	}
	layout := fieldLayouts[kind]
	if len(fields) != len(layout) {
		return nil, fmt.Errorf("%w: %s expects %d fields (%s), got %d",
			ErrMalformedReading, code, len(layout), strings.Join(layout, ", "), len(fields))
	}
	for i, v := range fields {
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: %s field %s is not a finite number", ErrMalformedReading, code, layout[i])
		}
	}
	action, err := wholeNumber(code, layout[0], fields[0])
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindRunning:
		return NewRunning(RunningParams{
			Action:    action,
			DurationH: fields[1],
			WeightKG:  fields[2],
		})
	case KindWalking:
		return NewSportsWalking(WalkingParams{
			Action:    action,
			DurationH: fields[1],
			WeightKG:  fields[2],
			HeightCM:  fields[3],
		})
	default:
		count, err := wholeNumber(code, layout[4], fields[4])
		if err != nil {
			return nil, err
		}
		return NewSwimming(SwimmingParams{
			Action:      action,
			DurationH:   fields[1],
			WeightKG:    fields[2],
			PoolLengthM: fields[3],
			PoolCount:   count,
		})
	}
}

// Build is ReadPackage for a Reading value.
func (r Reading) Build() (Workout, error) {
	return ReadPackage(r.Code, r.Fields)
}

// NewRunning validates params and builds a running workout.
func NewRunning(p RunningParams) (*Running, error) {
	base, err := newTraining("RUN", p.Action, p.DurationH, p.WeightKG)
	if err != nil {
		return nil, err
	}
	return &Running{Training: base}, nil
}

// NewSportsWalking validates params and builds a walking workout.
func NewSportsWalking(p WalkingParams) (*SportsWalking, error) {
	base, err := newTraining("WLK", p.Action, p.DurationH, p.WeightKG)
	if err != nil {
		return nil, err
	}
	if !isFinite(p.HeightCM) || p.HeightCM <= 0 {
		return nil, fmt.Errorf("%w: WLK height_cm must be positive, got %v", ErrMalformedReading, p.HeightCM)
	}
	return &SportsWalking{Training: base, HeightM: p.HeightCM / cmInM}, nil
}

// NewSwimming validates params and builds a swimming workout.
func NewSwimming(p SwimmingParams) (*Swimming, error) {
	base, err := newTraining("SWM", p.Action, p.DurationH, p.WeightKG)
	if err != nil {
		return nil, err
	}
	if !isFinite(p.PoolLengthM) || p.PoolLengthM < 0 {
		return nil, fmt.Errorf("%w: SWM pool_length_m must not be negative, got %v", ErrMalformedReading, p.PoolLengthM)
	}
	if p.PoolCount < 0 {
		return nil, fmt.Errorf("%w: SWM pool_count must not be negative, got %d", ErrMalformedReading, p.PoolCount)
	}
	return &Swimming{Training: base, PoolLengthM: p.PoolLengthM, PoolCount: p.PoolCount}, nil
}

func newTraining(code string, action int, durationH, weightKG float64) (Training, error) {
	if action < 0 {
		return Training{}, fmt.Errorf("%w: %s action must not be negative, got %d", ErrMalformedReading, code, action)
	}
	if !isFinite(durationH) || durationH <= 0 {
		return Training{}, fmt.Errorf("%w: %s duration_h must be positive, got %v", ErrMalformedReading, code, durationH)
	}
	if !isFinite(weightKG) {
		return Training{}, fmt.Errorf("%w: %s weight_kg is not a finite number", ErrMalformedReading, code)
	}
	return Training{Action: action, DurationH: durationH, WeightKG: weightKG}, nil
}

func wholeNumber(code, field string, v float64) (int, error) {
	if v != math.Trunc(v) || v < 0 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s field %s must be a non-negative whole number, got %v", ErrMalformedReading, code, field, v)
	}
	return int(v), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
