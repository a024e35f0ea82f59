package pipeline

import (
	"fmt"
	"os"

	trainingstats "training-stats"

	"gopkg.in/yaml.v3"
)

type readingsFile struct {
	Readings []trainingstats.Reading `yaml:"readings"`
}

// LoadReadingsFile reads readings from a YAML or JSON file.
func LoadReadingsFile(path string) ([]trainingstats.Reading, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read readings file: %w", err)
	}
	readings, err := ParseReadings(data)
	if err != nil {
		return nil, fmt.Errorf("parse readings file %s: %w", path, err)
	}
	return readings, nil
}

// ParseReadings accepts either a top-level list of readings or a document
// with a "readings" key. Non-numeric fields are reported as malformed readings.
func ParseReadings(data []byte) ([]trainingstats.Reading, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("no readings found")
	}

	root := doc.Content[0]
	var readings []trainingstats.Reading
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&readings); err != nil {
			return nil, fmt.Errorf("%w: %v", trainingstats.ErrMalformedReading, err)
		}
	case yaml.MappingNode:
		var file readingsFile
		if err := root.Decode(&file); err != nil {
			return nil, fmt.Errorf("%w: %v", trainingstats.ErrMalformedReading, err)
		}
		readings = file.Readings
	default:
		return nil, fmt.Errorf("expected a list of readings or a readings key")
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("no readings found")
	}
	return readings, nil
}
