package fitfile

import (
	"bytes"
	"fmt"
	"math"

	trainingstats "training-stats"

	"github.com/tormoder/fit"
)

const secondsPerHour = 3600.0

// Athlete supplies the body measurements a FIT session does not carry.
type Athlete struct {
	WeightKG float64
	HeightCM float64
}

// Decoded holds the readings recovered from one FIT activity.
type Decoded struct {
	Readings []trainingstats.Reading
	Sessions int
	Warnings []string
}

// DecodeReadings decodes a FIT activity and turns each supported session into a reading.
func DecodeReadings(data []byte, athlete Athlete) (*Decoded, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("fit data is empty")
	}
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}
	if len(activity.Sessions) == 0 {
		return nil, fmt.Errorf("activity file has no session message")
	}

	out := &Decoded{Sessions: len(activity.Sessions)}
	for idx, session := range activity.Sessions {
		if session == nil {
			continue
		}
		reading, warn := readingFromSession(session, athlete)
		if warn != "" {
			out.Warnings = append(out.Warnings, fmt.Sprintf("session %d: %s", idx+1, warn))
			continue
		}
		out.Readings = append(out.Readings, reading)
	}
	return out, nil
}

func readingFromSession(s *fit.SessionMsg, athlete Athlete) (trainingstats.Reading, string) {
	kind, ok := kindForSport(s.Sport)
	if !ok {
		return trainingstats.Reading{}, fmt.Sprintf("unsupported sport %v", s.Sport)
	}

	action, ok := validUint32(s.TotalCycles)
	if !ok {
		return trainingstats.Reading{}, "total cycles missing"
	}

	timerMillis, ok := validUint32(s.TotalTimerTime)
	if !ok || timerMillis == 0 {
		timerMillis, ok = validUint32(s.TotalElapsedTime)
	}
	if !ok || timerMillis == 0 {
		return trainingstats.Reading{}, "session duration missing"
	}
	durationH := timerMillis / 1000 / secondsPerHour

	fields := []float64{action, durationH, athlete.WeightKG}
	switch kind {
	case trainingstats.KindWalking:
		fields = append(fields, athlete.HeightCM)
	case trainingstats.KindSwimming:
		poolCM, ok := validUint16(s.PoolLength)
		if !ok {
			return trainingstats.Reading{}, "pool length missing"
		}
		lengths, ok := validUint16(s.NumActiveLengths)
		if !ok {
			return trainingstats.Reading{}, "pool length count missing"
		}
		fields = append(fields, poolCM/100, lengths)
	}

	return trainingstats.Reading{Code: kind.Code(), Fields: fields}, ""
}

func kindForSport(sport fit.Sport) (trainingstats.Kind, bool) {
	switch sport {
	case fit.SportRunning:
		return trainingstats.KindRunning, true
	case fit.SportWalking:
		return trainingstats.KindWalking, true
	case fit.SportSwimming:
		return trainingstats.KindSwimming, true
	default:
		return trainingstats.KindUnknown, false
	}
}

func validUint32(v uint32) (float64, bool) {
	if v == math.MaxUint32 {
		return 0, false
	}
	return float64(v), true
}

func validUint16(v uint16) (float64, bool) {
	if v == math.MaxUint16 {
		return 0, false
	}
	return float64(v), true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
