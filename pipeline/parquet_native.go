//go:build !js

package pipeline

import (
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type reportParquetRow struct {
	Index        int64   `parquet:"name=index, type=INT64"`
	Code         string  `parquet:"name=code, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	TrainingType string  `parquet:"name=training_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Action       int64   `parquet:"name=action, type=INT64"`
	DurationH    float64 `parquet:"name=duration_h, type=DOUBLE"`
	WeightKG     float64 `parquet:"name=weight_kg, type=DOUBLE"`
	DistanceKM   float64 `parquet:"name=distance_km, type=DOUBLE"`
	SpeedKMH     float64 `parquet:"name=speed_kmh, type=DOUBLE"`
	CaloriesKcal float64 `parquet:"name=calories_kcal, type=DOUBLE"`
}

func marshalReportsParquet(items []processed) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(reportParquetRow), 1)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for idx, it := range items {
		base := it.workout.Base()
		row := reportParquetRow{
			Index:        int64(idx + 1),
			Code:         it.workout.Kind().Code(),
			TrainingType: it.report.TrainingType,
			Action:       int64(base.Action),
			DurationH:    base.DurationH,
			WeightKG:     base.WeightKG,
			DistanceKM:   it.report.DistanceKM,
			SpeedKMH:     it.report.SpeedKMH,
			CaloriesKcal: it.report.Calories,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
