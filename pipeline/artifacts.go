package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"path"
	"sort"
	"strconv"
	"time"

	trainingstats "training-stats"
	"training-stats/fitfile"
)

const (
	summaryFileName     = "summary.json"
	trainingLogFileName = "training_log.txt"
	manifestFileName    = "manifest.json"
	fitDirName          = "fit"

	// Largest calorie value a FIT session stores without clamping.
	maxFITCalories = math.MaxUint16 - 1
)

var reportColumns = []string{
	"index", "code", "training_type", "action", "duration_h", "weight_kg",
	"distance_km", "speed_kmh", "calories_kcal",
}

func reportsFileName(format string) string {
	if format == "csv" {
		return "reports.csv"
	}
	return "reports.parquet"
}

func buildArtifacts(items []processed, format string, exportFIT bool, start time.Time, logger *slog.Logger) (map[string][]byte, []string, error) {
	files := make(map[string][]byte, len(items)+4)
	var warnings []string

	var (
		reportsData []byte
		err         error
	)
	switch format {
	case "csv":
		reportsData, err = marshalReportsCSV(items)
		if err != nil {
			return nil, nil, fmt.Errorf("write reports csv: %w", err)
		}
	case "parquet":
		reportsData, err = marshalReportsParquet(items)
		if err != nil {
			return nil, nil, fmt.Errorf("write reports parquet: %w", err)
		}
	}
	files[reportsFileName(format)] = reportsData

	summary := SummaryFile{
		FormatVersion: FormatVersion,
		Workouts:      make([]WorkoutSummary, 0, len(items)),
	}
	for idx, it := range items {
		ws := buildWorkoutSummary(idx, it)
		if exportFIT {
			data, err := fitfile.Encode(it.workout, fitfile.EncodeOptions{StartTime: start})
			if err != nil {
				return nil, nil, fmt.Errorf("encode fit for reading %d: %w", idx+1, err)
			}
			name := path.Join(fitDirName, trainingstats.Describe(idx, it.workout)+".fit")
			files[name] = data
			ws.FITFile = name
			if it.report.Calories > maxFITCalories {
				w := fmt.Sprintf("reading %d: calories %.0f exceed the FIT session range and were clamped", idx+1, it.report.Calories)
				logger.Warn(w)
				warnings = append(warnings, w)
			}
		}
		summary.Workouts = append(summary.Workouts, ws)
	}

	summaryData, err := marshalJSON(summary)
	if err != nil {
		return nil, nil, fmt.Errorf("write %s: %w", summaryFileName, err)
	}
	files[summaryFileName] = summaryData

	reports := make([]trainingstats.InfoMessage, 0, len(items))
	for _, it := range items {
		reports = append(reports, it.report)
	}
	files[trainingLogFileName] = []byte(trainingstats.BuildTrainingLog(reports))

	manifestData, err := marshalJSON(buildManifest(files, format, len(items)))
	if err != nil {
		return nil, nil, fmt.Errorf("write %s: %w", manifestFileName, err)
	}
	files[manifestFileName] = manifestData

	return files, warnings, nil
}

func buildWorkoutSummary(idx int, it processed) WorkoutSummary {
	ws := WorkoutSummary{
		Index:    idx + 1,
		Code:     it.reading.Code,
		Fields:   append([]float64(nil), it.reading.Fields...),
		Training: it.workout.Base(),
		Report:   it.report,
		Message:  it.report.Message(),
	}
	switch w := it.workout.(type) {
	case *trainingstats.SportsWalking:
		ws.HeightM = floatPtr(w.HeightM)
	case *trainingstats.Swimming:
		ws.PoolLengthM = floatPtr(w.PoolLengthM)
		count := w.PoolCount
		ws.PoolCount = &count
	}
	return ws
}

func buildManifest(files map[string][]byte, format string, workouts int) Manifest {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	m := Manifest{
		FormatVersion: FormatVersion,
		ReportFormat:  format,
		WorkoutCount:  workouts,
		Files:         make([]ManifestEntry, 0, len(names)),
	}
	for _, name := range names {
		sum := sha256.Sum256(files[name])
		m.Files = append(m.Files, ManifestEntry{
			Name:      name,
			SizeBytes: int64(len(files[name])),
			SHA256:    hex.EncodeToString(sum[:]),
		})
	}
	return m
}

func marshalReportsCSV(items []processed) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(reportColumns); err != nil {
		return nil, err
	}
	for idx, it := range items {
		base := it.workout.Base()
		row := []string{
			strconv.Itoa(idx + 1),
			it.workout.Kind().Code(),
			it.report.TrainingType,
			strconv.Itoa(base.Action),
			formatFloat(base.DurationH),
			formatFloat(base.WeightKG),
			formatFloat(it.report.DistanceKM),
			formatFloat(it.report.SpeedKMH),
			formatFloat(it.report.Calories),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func floatPtr(v float64) *float64 {
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
