package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	trainingstats "training-stats"
)

// DefaultReadings is the built-in sample dataset.
func DefaultReadings() []trainingstats.Reading {
	return []trainingstats.Reading{
		{Code: "SWM", Fields: []float64{720, 1, 80, 25, 40}},
		{Code: "RUN", Fields: []float64{15000, 1, 75}},
		{Code: "WLK", Fields: []float64{9000, 1, 75, 180}},
	}
}

// Run processes readings strictly in order, writing one message line per
// reading to opts.Stdout. The first reading that fails to build aborts the
// run; lines already written for earlier readings are kept.
// When OutDir is set the report artifacts are written there as well.
func Run(opts Options) (*Result, error) {
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	logger := loggerOrDefault(opts.Logger)
	stdout := opts.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	items, err := process(readingsOrDefault(opts.Readings), logger, func(line string) error {
		_, err := fmt.Fprintln(stdout, line)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Reports: make([]trainingstats.InfoMessage, 0, len(items)),
		Lines:   make([]string, 0, len(items)),
	}
	for _, it := range items {
		result.Reports = append(result.Reports, it.report)
		result.Lines = append(result.Lines, it.report.Message())
	}

	if strings.TrimSpace(opts.OutDir) == "" {
		return result, nil
	}

	files, warnings, err := buildArtifacts(items, format, opts.ExportFIT, opts.StartTime, logger)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, warnings...)

	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}
	if err := writeFiles(opts.OutDir, files); err != nil {
		return nil, err
	}

	result.OutputDir = opts.OutDir
	result.ReportsPath = filepath.Join(opts.OutDir, reportsFileName(format))
	result.SummaryPath = filepath.Join(opts.OutDir, summaryFileName)
	result.TrainingLogPath = filepath.Join(opts.OutDir, trainingLogFileName)
	result.ManifestPath = filepath.Join(opts.OutDir, manifestFileName)
	for name := range files {
		if strings.HasPrefix(name, fitDirName+"/") {
			result.FITPaths = append(result.FITPaths, filepath.Join(opts.OutDir, filepath.FromSlash(name)))
		}
	}
	sort.Strings(result.FITPaths)

	logger.Info("artifacts written",
		"output_dir", opts.OutDir,
		"format", format,
		"files", len(files),
	)
	return result, nil
}

// RunBytes processes readings like Run but keeps every artifact in memory.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	logger := loggerOrDefault(opts.Logger)

	items, err := process(readingsOrDefault(opts.Readings), logger, nil)
	if err != nil {
		return nil, err
	}
	files, warnings, err := buildArtifacts(items, format, opts.ExportFIT, opts.StartTime, logger)
	if err != nil {
		return nil, err
	}

	reports := make([]trainingstats.InfoMessage, 0, len(items))
	for _, it := range items {
		reports = append(reports, it.report)
	}
	return &BytesResult{
		Reports:  reports,
		Files:    files,
		Warnings: warnings,
	}, nil
}

func process(readings []trainingstats.Reading, logger *slog.Logger, emit func(string) error) ([]processed, error) {
	out := make([]processed, 0, len(readings))
	for idx, reading := range readings {
		workout, err := reading.Build()
		if err != nil {
			logger.Error("reading rejected",
				"index", idx+1,
				"code", reading.Code,
				"error", err,
			)
			return out, fmt.Errorf("reading %d (%q): %w", idx+1, reading.Code, err)
		}

		report := trainingstats.Summarize(workout)
		logger.Debug("workout summarized",
			"index", idx+1,
			"training_type", report.TrainingType,
			"distance_km", report.DistanceKM,
			"calories_kcal", report.Calories,
		)
		if emit != nil {
			if err := emit(report.Message()); err != nil {
				return out, fmt.Errorf("write message: %w", err)
			}
		}
		out = append(out, processed{reading: reading, workout: workout, report: report})
	}
	return out, nil
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return format, nil
}

func readingsOrDefault(readings []trainingstats.Reading) []trainingstats.Reading {
	if readings == nil {
		return DefaultReadings()
	}
	return readings
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func writeFiles(dir string, files map[string][]byte) error {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", name, err)
		}
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
