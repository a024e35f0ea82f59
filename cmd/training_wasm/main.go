//go:build js && wasm

package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	trainingstats "training-stats"
	"training-stats/pipeline"
)

func main() {
	js.Global().Set("trainingStats", js.FuncOf(trainingStats))
	select {}
}

func trainingStats(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{
			"ok":    false,
			"error": "expected arguments: readings(array), options(object)",
		}
	}
	readings, err := readingsFromJS(args[0])
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": err.Error(),
		}
	}
	optsArg := js.Undefined()
	if len(args) > 1 {
		optsArg = args[1]
	}

	result, err := pipeline.RunBytes(pipeline.BytesOptions{
		Readings:  readings,
		Format:    getString(optsArg, "format", "csv"),
		ExportFIT: getBool(optsArg, "export_fit"),
	})
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": err.Error(),
		}
	}

	zipBytes, err := zipArtifacts(result.Files)
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": fmt.Sprintf("create zip: %v", err),
		}
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	fileNames := make([]string, 0, len(result.Files))
	for name := range result.Files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	messages := make([]string, 0, len(result.Reports))
	for _, r := range result.Reports {
		messages = append(messages, r.Message())
	}

	return map[string]any{
		"ok":       true,
		"zip":      payload,
		"messages": stringsToAny(messages),
		"warnings": stringsToAny(result.Warnings),
		"files":    stringsToAny(fileNames),
	}
}

// readingsFromJS converts [{code: "RUN", fields: [15000, 1, 75]}, ...].
// An undefined or null argument selects the built-in samples.
func readingsFromJS(v js.Value) ([]trainingstats.Reading, error) {
	if v.IsUndefined() || v.IsNull() {
		return nil, nil
	}
	n := v.Get("length").Int()
	out := make([]trainingstats.Reading, 0, n)
	for i := 0; i < n; i++ {
		item := v.Index(i)
		fieldsArg := item.Get("fields")
		if fieldsArg.IsUndefined() || fieldsArg.IsNull() {
			return nil, fmt.Errorf("reading %d: fields are required", i+1)
		}
		fields := make([]float64, fieldsArg.Get("length").Int())
		for j := range fields {
			f := fieldsArg.Index(j)
			if f.Type() != js.TypeNumber {
				return nil, fmt.Errorf("reading %d: %w: field %d is not a number", i+1, trainingstats.ErrMalformedReading, j+1)
			}
			fields[j] = f.Float()
		}
		out = append(out, trainingstats.Reading{
			Code:   getString(item, "code", ""),
			Fields: fields,
		})
	}
	return out, nil
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fixedTime := time.Unix(0, 0).UTC()

	for _, name := range names {
		h := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		h.SetModTime(fixedTime)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() {
		return fallback
	}
	s := out.String()
	if s == "" || s == "undefined" || s == "null" {
		return fallback
	}
	return s
}

func getBool(v js.Value, key string) bool {
	if v.IsUndefined() || v.IsNull() {
		return false
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeBoolean {
		return false
	}
	return out.Bool()
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
