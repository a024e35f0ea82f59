package pipeline

import (
	"io"
	"log/slog"
	"time"

	trainingstats "training-stats"
)

// FormatVersion identifies the on-disk layout of exported artifacts.
const FormatVersion = "training_stats_v1"

// Options configures a training_stats run.
type Options struct {
	// Readings to process in order. Nil means DefaultReadings().
	Readings []trainingstats.Reading

	// Stdout receives one message line per reading as it is processed.
	Stdout io.Writer

	OutDir    string
	Format    string // parquet|csv
	Overwrite bool
	ExportFIT bool
	StartTime time.Time

	Logger *slog.Logger
}

// BytesOptions configures RunBytes.
type BytesOptions struct {
	Readings  []trainingstats.Reading
	Format    string // parquet|csv
	ExportFIT bool
	StartTime time.Time
	Logger    *slog.Logger
}

// Result describes a completed run.
type Result struct {
	Reports         []trainingstats.InfoMessage `json:"reports"`
	Lines           []string                    `json:"-"`
	OutputDir       string                      `json:"output_dir,omitempty"`
	ReportsPath     string                      `json:"reports_path,omitempty"`
	SummaryPath     string                      `json:"summary_path,omitempty"`
	TrainingLogPath string                      `json:"training_log_path,omitempty"`
	ManifestPath    string                      `json:"manifest_path,omitempty"`
	FITPaths        []string                    `json:"fit_paths,omitempty"`
	Warnings        []string                    `json:"warnings,omitempty"`
}

// BytesResult holds artifacts built in memory, keyed by relative file name.
type BytesResult struct {
	Reports  []trainingstats.InfoMessage
	Files    map[string][]byte
	Warnings []string
}

// SummaryFile is the summary.json artifact.
type SummaryFile struct {
	FormatVersion string           `json:"format_version"`
	Workouts      []WorkoutSummary `json:"workouts"`
}

// WorkoutSummary pairs one reading with its computed report.
type WorkoutSummary struct {
	Index       int                       `json:"index"`
	Code        string                    `json:"code"`
	Fields      []float64                 `json:"fields"`
	Training    trainingstats.Training    `json:"training"`
	HeightM     *float64                  `json:"height_m,omitempty"`
	PoolLengthM *float64                  `json:"pool_length_m,omitempty"`
	PoolCount   *int                      `json:"pool_count,omitempty"`
	Report      trainingstats.InfoMessage `json:"report"`
	Message     string                    `json:"message"`
	FITFile     string                    `json:"fit_file,omitempty"`
}

// Manifest lists every artifact with its size and checksum.
type Manifest struct {
	FormatVersion string          `json:"format_version"`
	ReportFormat  string          `json:"report_format"`
	WorkoutCount  int             `json:"workout_count"`
	Files         []ManifestEntry `json:"files"`
}

// ManifestEntry describes one artifact.
type ManifestEntry struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
}

// processed is one successfully built reading.
type processed struct {
	reading trainingstats.Reading
	workout trainingstats.Workout
	report  trainingstats.InfoMessage
}
