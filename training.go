package trainingstats

import "fmt"

const (
	// LenStep is the distance of one step in metres for running and walking.
	LenStep     = 0.65
	// SwimLenStep is the distance of one stroke in metres.
	SwimLenStep = 1.38
	// MInKM converts metres to kilometres.
	MInKM       = 1000.0
	// MinInHour converts hours to minutes.
	MinInHour   = 60.0
)

const (
	runCaloriesSpeedMultiplier = 18.0
	runCaloriesSpeedShift      = 1.79

	walkCaloriesWeightMultiplier = 0.035
	walkCaloriesSpeedMultiplier  = 0.029
	kmhInMs                      = 0.278
	cmInM                        = 100.0

	swimCaloriesSpeedShift = 1.1
	swimCaloriesMultiplier = 2.0
)

// Kind tags the workout variant.
type Kind int

const (
	KindUnknown Kind = iota
	KindRunning
	KindWalking
	KindSwimming
)

// Code returns the sensor code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindRunning:
		return "RUN"
	case KindWalking:
		return "WLK"
	case KindSwimming:
		return "SWM"
	default:
		return ""
	}
}

// DisplayName is the training type shown in reports.
func (k Kind) DisplayName() string {
	switch k {
	case KindRunning:
		return "Running"
	case KindWalking:
		return "SportsWalking"
	case KindSwimming:
		return "Swimming"
	default:
		return "Unknown"
	}
}

func (k Kind) String() string {
	if k == KindUnknown {
		return "unknown"
	}
	return k.Code()
}

// Workout is the capability every training variant implements.
type Workout interface {
	Kind() Kind
	Base() Training
	DistanceKM() float64
	MeanSpeedKMH() float64
	SpentCalories() float64
}

// Training holds the fields shared by every workout. It has no calorie
// formula of its own and does not satisfy Workout.
type Training struct {
	Action    int     `json:"action"`
	DurationH float64 `json:"duration_h"`
	WeightKG  float64 `json:"weight_kg"`
}

func (t Training) distanceKM(lenStep float64) float64 {
	return float64(t.Action) * lenStep / MInKM
}

// Running is a running session.
type Running struct {
	Training
}

var _ Workout = (*Running)(nil)

func (r *Running) Kind() Kind { return KindRunning }

func (r *Running) Base() Training { return r.Training }

func (r *Running) DistanceKM() float64 { return r.distanceKM(LenStep) }

func (r *Running) MeanSpeedKMH() float64 { return r.DistanceKM() / r.DurationH }

func (r *Running) SpentCalories() float64 {
	speedTerm := float64(runCaloriesSpeedMultiplier*r.MeanSpeedKMH() + runCaloriesSpeedShift)
	return speedTerm * r.WeightKG / MInKM * (r.DurationH * MinInHour)
}

// SportsWalking is a walking session. HeightM is stored in metres.
type SportsWalking struct {
	Training
	HeightM float64 `json:"height_m"`
}

var _ Workout = (*SportsWalking)(nil)

func (w *SportsWalking) Kind() Kind { return KindWalking }

func (w *SportsWalking) Base() Training { return w.Training }

func (w *SportsWalking) DistanceKM() float64 { return w.distanceKM(LenStep) }

func (w *SportsWalking) MeanSpeedKMH() float64 { return w.DistanceKM() / w.DurationH }

func (w *SportsWalking) SpentCalories() float64 {
	speedMs := w.MeanSpeedKMH() * kmhInMs
	speedTerm := float64(speedMs*speedMs) / w.HeightM * walkCaloriesSpeedMultiplier * w.WeightKG
	return float64(walkCaloriesWeightMultiplier*w.WeightKG+speedTerm) * w.DurationH * MinInHour
}

// Swimming is a pool session. Mean speed comes from pool geometry, not from
// the stroke count.
type Swimming struct {
	Training
	PoolLengthM float64 `json:"pool_length_m"`
	PoolCount   int     `json:"pool_count"`
}

var _ Workout = (*Swimming)(nil)

func (s *Swimming) Kind() Kind { return KindSwimming }

func (s *Swimming) Base() Training { return s.Training }

func (s *Swimming) DistanceKM() float64 { return s.distanceKM(SwimLenStep) }

func (s *Swimming) MeanSpeedKMH() float64 {
	return s.PoolLengthM * float64(s.PoolCount) / MInKM / s.DurationH
}

func (s *Swimming) SpentCalories() float64 {
	return float64(s.MeanSpeedKMH()+swimCaloriesSpeedShift) * swimCaloriesMultiplier * s.WeightKG * s.DurationH
}

// Summarize builds the report for a constructed workout.
func Summarize(w Workout) InfoMessage {
	return InfoMessage{
		TrainingType: w.Kind().DisplayName(),
		DurationH:    w.Base().DurationH,
		DistanceKM:   w.DistanceKM(),
		SpeedKMH:     w.MeanSpeedKMH(),
		Calories:     w.SpentCalories(),
	}
}

// Describe is a short label used in logs and artifact names.
func Describe(index int, w Workout) string {
	return fmt.Sprintf("%02d_%s", index+1, w.Kind().Code())
}
