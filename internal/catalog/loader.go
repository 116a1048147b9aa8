package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// LoadError reports a structurally unusable catalog source: an unreadable
// file, a missing required column, or a row without a numeric id. A LoadError
// aborts the load; the previous snapshot (if any) stays published.
type LoadError struct {
	Row int // 1-based data row number, 0 when the whole file is at fault
	Err error
}

func (e *LoadError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("catalog load: row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("catalog load: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load parses the catalog CSV from r into an ordered slice of Spa records.
//
// The first non-empty row is the header; columns are matched by name,
// case-insensitively. The id column is "nid" and is mandatory per row. Empty
// budget/rating fields yield absent values; non-numeric values in those
// optional fields are also treated as absent rather than failing the load.
func Load(r io.Reader) ([]Spa, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("read source: %w", err)}
	}

	records, err := parseCSV(sanitizeUTF8(data))
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("parse csv: %w", err)}
	}
	if len(records) == 0 {
		return nil, &LoadError{Err: fmt.Errorf("empty source")}
	}

	header := newHeaderIndex(records[0])
	if _, ok := header["nid"]; !ok {
		return nil, &LoadError{Err: fmt.Errorf("missing required column %q", "nid")}
	}

	spas := make([]Spa, 0, len(records)-1)
	for i, row := range records[1:] {
		if isEmptyRow(row) {
			continue
		}

		rawID := header.get(row, "nid")
		id, err := strconv.Atoi(rawID)
		if err != nil {
			return nil, &LoadError{Row: i + 1, Err: fmt.Errorf("invalid id %q", rawID)}
		}

		spas = append(spas, Spa{
			ID:          id,
			Title:       header.get(row, "title"),
			Email:       header.get(row, "email"),
			Phone:       header.get(row, "phone"),
			Address:     header.get(row, "address"),
			Website:     header.get(row, "website"),
			Location:    header.get(row, "location"),
			Budget:      parseOptionalInt(header.get(row, "budget")),
			Rating:      parseOptionalFloat(header.get(row, "rating")),
			OpeningHour: header.get(row, "opening_hour"),
			ClosingHour: header.get(row, "closing_hour"),
			Treatments:  splitTreatments(header.get(row, "treatments")),
		})
	}

	return spas, nil
}

// LoadFile opens path and loads the catalog from it.
func LoadFile(path string) ([]Spa, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("open %s: %w", path, err)}
	}
	defer f.Close()
	return Load(f)
}

// headerIndex maps lowercase column names to their position in a row.
type headerIndex map[string]int

func newHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return idx
}

// get returns the trimmed cell for the named column, or "" when the column is
// absent or the row is short.
func (h headerIndex) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseOptionalInt parses an optional integer field. Empty or non-numeric
// input yields absent.
func parseOptionalInt(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

// parseOptionalFloat parses an optional float field. Empty, non-numeric, and
// non-finite input yields absent.
func parseOptionalFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
