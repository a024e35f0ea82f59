package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	trainingstats "training-stats"
	"training-stats/fitfile"
)

var sampleLines = []string{
	"Training type: Swimming; Duration: 1.000 h.; Distance: 0.994 km; Avg. speed: 1.000 km/h; Calories burned: 336.000.",
	"Training type: Running; Duration: 1.000 h.; Distance: 9.750 km; Avg. speed: 9.750 km/h; Calories burned: 797.805.",
	"Training type: SportsWalking; Duration: 1.000 h.; Distance: 5.850 km; Avg. speed: 5.850 km/h; Calories burned: 349.252.",
}

func TestRunPrintsSampleDataset(t *testing.T) {
	var out bytes.Buffer
	res, err := Run(Options{Stdout: &out})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := strings.Join(sampleLines, "\n") + "\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out.String(), want)
	}
	if len(res.Reports) != 3 || len(res.Lines) != 3 {
		t.Fatalf("expected 3 reports, got %d/%d", len(res.Reports), len(res.Lines))
	}
	if res.OutputDir != "" || res.ManifestPath != "" {
		t.Fatalf("no artifacts expected without an output dir: %+v", res)
	}
}

func TestRunIsRepeatable(t *testing.T) {
	var first, second bytes.Buffer
	if _, err := Run(Options{Stdout: &first}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := Run(Options{Stdout: &second}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.String() != second.String() {
		t.Fatalf("runs differ:\n%s\n%s", first.String(), second.String())
	}
}

func TestRunAbortsOnInvalidCode(t *testing.T) {
	readings := []trainingstats.Reading{
		{Code: "RUN", Fields: []float64{15000, 1, 75}},
		{Code: "XYZ", Fields: []float64{}},
		{Code: "WLK", Fields: []float64{9000, 1, 75, 180}},
	}

	var out bytes.Buffer
	res, err := Run(Options{Readings: readings, Stdout: &out})
	if err == nil {
		t.Fatal("expected an error for an invalid workout code")
	}
	if res != nil {
		t.Fatalf("expected nil result on abort, got %+v", res)
	}
	if !errors.Is(err, trainingstats.ErrInvalidWorkoutCode) {
		t.Fatalf("expected ErrInvalidWorkoutCode, got %v", err)
	}
	if !strings.Contains(err.Error(), `reading 2 ("XYZ")`) {
		t.Fatalf("error should name the failing reading: %v", err)
	}
	if out.String() != sampleLines[1]+"\n" {
		t.Fatalf("only the first reading should be printed, got %q", out.String())
	}
}

func TestRunRejectsMalformedReading(t *testing.T) {
	_, err := Run(Options{Readings: []trainingstats.Reading{{Code: "SWM", Fields: []float64{720, 1, 80}}}})
	if !errors.Is(err, trainingstats.ErrMalformedReading) {
		t.Fatalf("expected ErrMalformedReading, got %v", err)
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	if _, err := Run(Options{Format: "xlsx"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestRunWritesCSVArtifacts(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "out")
	res, err := Run(Options{
		OutDir:    outDir,
		Format:    "csv",
		Overwrite: true,
		ExportFIT: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	f, err := os.Open(res.ReportsPath)
	if err != nil {
		t.Fatalf("open reports csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read reports csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(rows))
	}
	for i, col := range reportColumns {
		if rows[0][i] != col {
			t.Fatalf("unexpected header column %d: got %q want %q", i, rows[0][i], col)
		}
	}
	if rows[2][1] != "RUN" || rows[2][2] != "Running" || rows[2][8] != "797.805" {
		t.Fatalf("unexpected running row %v", rows[2])
	}

	summary := SummaryFile{}
	data, err := os.ReadFile(res.SummaryPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if summary.FormatVersion != FormatVersion || len(summary.Workouts) != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	swim := summary.Workouts[0]
	if swim.PoolLengthM == nil || *swim.PoolLengthM != 25 || swim.PoolCount == nil || *swim.PoolCount != 40 {
		t.Fatalf("swimming summary missing pool data: %+v", swim)
	}
	if walk := summary.Workouts[2]; walk.HeightM == nil || *walk.HeightM != 1.8 {
		t.Fatalf("walking summary missing height: %+v", walk)
	}
	for i, w := range summary.Workouts {
		if w.Message != sampleLines[i] {
			t.Fatalf("summary message %d mismatch: %q", i, w.Message)
		}
	}

	logData, err := os.ReadFile(res.TrainingLogPath)
	if err != nil {
		t.Fatalf("read training log: %v", err)
	}
	if string(logData) != strings.Join(sampleLines, "\n")+"\n" {
		t.Fatalf("unexpected training log:\n%s", logData)
	}

	if len(res.FITPaths) != 3 {
		t.Fatalf("expected 3 fit files, got %v", res.FITPaths)
	}
	if filepath.Base(res.FITPaths[1]) != "02_RUN.fit" {
		t.Fatalf("unexpected fit file name %s", res.FITPaths[1])
	}
	fitData, err := os.ReadFile(res.FITPaths[1])
	if err != nil {
		t.Fatalf("read fit file: %v", err)
	}
	decoded, err := fitfile.DecodeReadings(fitData, fitfile.Athlete{WeightKG: 75})
	if err != nil {
		t.Fatalf("decode exported fit: %v", err)
	}
	if len(decoded.Readings) != 1 || decoded.Readings[0].Code != "RUN" {
		t.Fatalf("unexpected decoded readings %+v", decoded.Readings)
	}

	manifest := Manifest{}
	data, err = os.ReadFile(res.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if manifest.ReportFormat != "csv" || manifest.WorkoutCount != 3 {
		t.Fatalf("unexpected manifest %+v", manifest)
	}
	// reports, summary, training log and three fit files; the manifest does not list itself.
	if len(manifest.Files) != 6 {
		t.Fatalf("expected 6 manifest entries, got %d", len(manifest.Files))
	}
	for _, entry := range manifest.Files {
		if entry.SizeBytes <= 0 || len(entry.SHA256) != 64 {
			t.Fatalf("invalid manifest entry %+v", entry)
		}
	}
}

func TestRunRefusesNonEmptyDirWithoutOverwrite(t *testing.T) {
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outDir, "existing.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed output dir: %v", err)
	}
	if _, err := Run(Options{OutDir: outDir, Format: "csv"}); err == nil {
		t.Fatal("expected error for non-empty output directory")
	}
}

func TestRunBytesProducesArtifacts(t *testing.T) {
	res, err := RunBytes(BytesOptions{Format: "csv", ExportFIT: true})
	if err != nil {
		t.Fatalf("RunBytes() error: %v", err)
	}

	required := []string{
		"reports.csv",
		"summary.json",
		"training_log.txt",
		"manifest.json",
		"fit/01_SWM.fit",
		"fit/02_RUN.fit",
		"fit/03_WLK.fit",
	}
	for _, name := range required {
		if _, ok := res.Files[name]; !ok {
			t.Fatalf("missing artifact %s", name)
		}
	}
	if len(res.Reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(res.Reports))
	}

	again, err := RunBytes(BytesOptions{Format: "csv", ExportFIT: true})
	if err != nil {
		t.Fatalf("second RunBytes() error: %v", err)
	}
	if !bytes.Equal(res.Files["manifest.json"], again.Files["manifest.json"]) {
		t.Fatal("artifacts should be reproducible across runs")
	}
}
