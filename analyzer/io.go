package analyzer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ParseValueFile reads raw (test name, value string) pairs from a CSV, TSV or
// JSON file. CSV/TSV files use the first two columns as name and value; a
// header row is detected and skipped. JSON files hold a flat object mapping
// names to value strings. Empty values are kept: they signal "not performed".
func ParseValueFile(path string) (map[string]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return parseValueJSON(path)
	case ".tsv":
		return parseValueDelimited(path, '\t')
	default:
		return parseValueDelimited(path, ',')
	}
}

func parseValueJSON(path string) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	// Values may arrive as numbers or strings; decode loosely.
	var loose map[string]any
	if err := json.Unmarshal(data, &loose); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	out := make(map[string]string, len(loose))
	for k, v := range loose {
		name := strings.TrimSpace(k)
		if name == "" {
			continue
		}
		switch val := v.(type) {
		case string:
			out[name] = strings.TrimSpace(val)
		case float64:
			out[name] = trimFloat(val)
		case nil:
			out[name] = ""
		default:
			return nil, fmt.Errorf("decode %s: value for %q is not a string or number", filepath.Base(path), k)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("value file contains no entries")
	}
	return out, nil
}

func parseValueDelimited(path string, comma rune) (map[string]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, errors.New("value file is empty")
	}
	start := 0
	if isValueHeader(rows[0]) {
		start = 1
	}
	out := make(map[string]string, len(rows)-start)
	for _, row := range rows[start:] {
		if len(row) == 0 {
			continue
		}
		name := cleanCell(row[0])
		if name == "" {
			continue
		}
		value := ""
		if len(row) > 1 {
			value = cleanCell(row[1])
		}
		out[name] = value
	}
	if len(out) == 0 {
		return nil, errors.New("value file contains no entries")
	}
	return out, nil
}

func isValueHeader(row []string) bool {
	if len(row) < 2 {
		return false
	}
	nameCol := strings.ToLower(cleanCell(row[0]))
	valueCol := strings.ToLower(cleanCell(row[1]))
	nameHit := nameCol == "test" || nameCol == "name" || nameCol == "test name" || nameCol == "parameter"
	valueHit := valueCol == "value" || valueCol == "result"
	return nameHit && valueHit
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\uFEFF")
	return v
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}
