package installer

import (
	"encoding/csv"
	"os"
	"strconv"

	"shortcircuitcalc/internal/errs"
)

// readCSV reads path and returns its records (after the header row) as
// a slice of header-to-value maps, converting each cell int -> float -> string
// (first success wins), the same deterministic ladder the original
// program's catalog loader applies (spec.md §6.4, §4.8).
func readCSV(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ConfigError, err, "open catalog CSV %q", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errs.Wrap(errs.ConfigError, err, "read catalog CSV %q", path)
	}
	if len(records) == 0 {
		return nil, errs.New(errs.ConfigError, "catalog CSV %q has no header row", path)
	}
	header := records[0]

	rows := make([]map[string]any, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]any, len(header))
		for i, h := range header {
			if i >= len(rec) {
				continue
			}
			row[h] = convertCell(rec[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// convertCell tries int, then float, then falls back to the raw string,
// matching the original's int -> float -> str conversion ladder.
// Numeric-looking strings therefore cannot survive CSV ingest as
// strings; they must be loaded through an explicit insert instead.
func convertCell(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
