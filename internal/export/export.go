// Package export writes run artifacts as JSONL, CSV and pretty JSON.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// WriteJSONL writes one JSON object per line
func WriteJSONL[T any](path string, rows []T) error {
	var buf bytes.Buffer
	for i, row := range rows {
		line, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return writeFile(path, buf.Bytes())
}

// WriteCSV writes a header row followed by rows
func WriteCSV(path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return writeFile(path, buf.Bytes())
}

// WriteRecordsCSV flattens each row with Flatten and writes the given columns.
// Columns missing from a row are left empty.
func WriteRecordsCSV[T any](path string, columns []string, rows []T) error {
	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		flat, err := Flatten(row)
		if err != nil {
			return fmt.Errorf("flatten row %d: %w", i, err)
		}
		cells := make([]string, len(columns))
		for j, col := range columns {
			cells[j] = flat[col]
		}
		out = append(out, cells)
	}
	return WriteCSV(path, columns, out)
}

// Flatten encodes v as a JSON object and returns one cell per key.
// Strings are unquoted; every other value keeps its JSON text.
func Flatten(v any) (map[string]string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	flat := make(map[string]string, len(fields))
	for key, raw := range fields {
		var s string
		if len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
			flat[key] = s
			continue
		}
		flat[key] = string(raw)
	}
	return flat, nil
}

// Fields returns the sorted union of JSON keys over rows
func Fields[T any](rows []T) ([]string, error) {
	seen := make(map[string]bool)
	for _, row := range rows {
		flat, err := Flatten(row)
		if err != nil {
			return nil, err
		}
		for key := range flat {
			seen[key] = true
		}
	}
	fields := make([]string, 0, len(seen))
	for key := range seen {
		fields = append(fields, key)
	}
	sort.Strings(fields)
	return fields, nil
}

// PrettyJSON encodes v with two-space indent. Map keys are sorted by encoding/json.
func PrettyJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteJSON writes v as pretty JSON
func WriteJSON(path string, v any) error {
	data, err := PrettyJSON(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
