// Package fitfile converts workouts to and from FIT activity files.
package fitfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	trainingstats "training-stats"

	"github.com/tormoder/fit"
)

// DefaultStartTime is used when EncodeOptions.StartTime is zero so that
// encoded files are reproducible.
var DefaultStartTime = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

// EncodeOptions controls FIT encoding.
type EncodeOptions struct {
	StartTime time.Time
}

// Encode writes one workout as a FIT activity file with a single session and lap.
func Encode(w trainingstats.Workout, opts EncodeOptions) ([]byte, error) {
	if w == nil {
		return nil, fmt.Errorf("workout is required")
	}
	sport, err := sportForKind(w.Kind())
	if err != nil {
		return nil, err
	}

	start := opts.StartTime
	if start.IsZero() {
		start = DefaultStartTime
	}
	start = start.UTC().Truncate(time.Second)

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		return nil, fmt.Errorf("new fit file: %w", err)
	}
	file.FileId.TimeCreated = start

	activity, err := file.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity accessor: %w", err)
	}

	base := w.Base()
	report := trainingstats.Summarize(w)
	timerMillis := clampUint32(base.DurationH * secondsPerHour * 1000)
	end := start.Add(time.Duration(base.DurationH * secondsPerHour * float64(time.Second))).Truncate(time.Second)

	startEvent := fit.NewEventMsg()
	startEvent.Timestamp = start
	startEvent.Event = fit.EventTimer
	startEvent.EventType = fit.EventTypeStart
	activity.Events = append(activity.Events, startEvent)

	session := fit.NewSessionMsg()
	session.Timestamp = end
	session.StartTime = start
	session.Sport = sport
	session.TotalTimerTime = timerMillis
	session.TotalElapsedTime = timerMillis
	session.TotalDistance = clampUint32(report.DistanceKM * trainingstats.MInKM * 100)
	session.TotalCycles = clampUint32(float64(base.Action))
	session.AvgSpeed = clampUint16(report.SpeedKMH / 3.6 * 1000)
	session.TotalCalories = clampUint16(math.Round(report.Calories))
	session.NumLaps = 1

	lap := fit.NewLapMsg()
	lap.Timestamp = end
	lap.StartTime = start
	lap.TotalTimerTime = session.TotalTimerTime
	lap.TotalElapsedTime = session.TotalElapsedTime
	lap.TotalDistance = session.TotalDistance

	if swim, ok := w.(*trainingstats.Swimming); ok {
		session.PoolLength = clampUint16(swim.PoolLengthM * 100)
		session.PoolLengthUnit = fit.DisplayMeasureMetric
		session.NumActiveLengths = clampUint16(float64(swim.PoolCount))
	}

	stopEvent := fit.NewEventMsg()
	stopEvent.Timestamp = end
	stopEvent.Event = fit.EventTimer
	stopEvent.EventType = fit.EventTypeStop
	activity.Events = append(activity.Events, stopEvent)

	activity.Laps = append(activity.Laps, lap)
	activity.Sessions = append(activity.Sessions, session)

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("encode fit: %w", err)
	}
	return buf.Bytes(), nil
}

func sportForKind(k trainingstats.Kind) (fit.Sport, error) {
	switch k {
	case trainingstats.KindRunning:
		return fit.SportRunning, nil
	case trainingstats.KindWalking:
		return fit.SportWalking, nil
	case trainingstats.KindSwimming:
		return fit.SportSwimming, nil
	default:
		return fit.SportGeneric, fmt.Errorf("no FIT sport for workout kind %s", k)
	}
}

// Values at or above the FIT invalid sentinel are clamped just below it.
func clampUint32(v float64) uint32 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	v = math.Round(v)
	if v >= math.MaxUint32 {
		return math.MaxUint32 - 1
	}
	return uint32(v)
}

func clampUint16(v float64) uint16 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	v = math.Round(v)
	if v >= math.MaxUint16 {
		return math.MaxUint16 - 1
	}
	return uint16(v)
}
