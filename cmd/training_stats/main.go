package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	trainingstats "training-stats"
	"training-stats/fitfile"
	"training-stats/pipeline"
)

func main() {
	var (
		readingsPath = flag.String("readings", "", "Path to a YAML/JSON readings file (default: built-in samples)")
		fitPath      = flag.String("fit", "", "Path to a FIT activity file to read sessions from")
		weightKG     = flag.Float64("weight", 0, "Athlete weight in kg (used with --fit)")
		heightCM     = flag.Float64("height", 0, "Athlete height in cm (used with --fit for walking)")
		outDir       = flag.String("out", "", "Optional output directory for report artifacts")
		format       = flag.String("format", "parquet", "Report artifact format: parquet|csv")
		exportFIT    = flag.Bool("export-fit", false, "Also write one FIT activity file per workout (requires --out)")
		overwrite    = flag.Bool("overwrite", true, "Allow writing into non-empty output directories")
		jsonOut      = flag.Bool("json", false, "Emit reports as JSON instead of message lines")
		verbose      = flag.Bool("v", false, "Verbose logging on stderr")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [--readings readings.yaml] [--fit activity.fit --weight 75 --height 180] [--out outdir --format parquet|csv]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	readings, err := collectReadings(*readingsPath, *fitPath, fitfile.Athlete{WeightKG: *weightKG, HeightCM: *heightCM}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "training_stats failed: %v\n", err)
		os.Exit(1)
	}

	opts := pipeline.Options{
		Readings:  readings,
		Stdout:    os.Stdout,
		OutDir:    *outDir,
		Format:    *format,
		Overwrite: *overwrite,
		ExportFIT: *exportFIT,
		Logger:    logger,
	}
	if *jsonOut {
		opts.Stdout = nil
	}

	result, err := pipeline.Run(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "training_stats failed: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "json encode failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	if result.OutputDir != "" {
		fmt.Fprintf(os.Stderr, "Output dir:    %s\n", result.OutputDir)
		fmt.Fprintf(os.Stderr, "reports:       %s\n", result.ReportsPath)
		fmt.Fprintf(os.Stderr, "summary.json:  %s\n", result.SummaryPath)
		fmt.Fprintf(os.Stderr, "training log:  %s\n", result.TrainingLogPath)
		fmt.Fprintf(os.Stderr, "manifest.json: %s\n", result.ManifestPath)
		for _, p := range result.FITPaths {
			fmt.Fprintf(os.Stderr, "fit:           %s\n", p)
		}
	}
}

func collectReadings(readingsPath, fitPath string, athlete fitfile.Athlete, logger *slog.Logger) ([]trainingstats.Reading, error) {
	var readings []trainingstats.Reading
	if strings.TrimSpace(readingsPath) != "" {
		loaded, err := pipeline.LoadReadingsFile(readingsPath)
		if err != nil {
			return nil, err
		}
		readings = append(readings, loaded...)
	}
	if strings.TrimSpace(fitPath) != "" {
		data, err := os.ReadFile(fitPath)
		if err != nil {
			return nil, fmt.Errorf("read fit file: %w", err)
		}
		decoded, err := fitfile.DecodeReadings(data, athlete)
		if err != nil {
			return nil, err
		}
		for _, w := range decoded.Warnings {
			logger.Warn("fit session skipped", "file", fitPath, "reason", w)
		}
		if len(decoded.Readings) == 0 {
			return nil, fmt.Errorf("no running, walking or swimming sessions in %s", fitPath)
		}
		readings = append(readings, decoded.Readings...)
	}
	return readings, nil
}
