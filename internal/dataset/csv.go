package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyFile is returned for a CSV without a header row.
	ErrEmptyFile = errors.New("csv file is empty")
)

type csvTable struct {
	reader  *csv.Reader
	columns map[string]int
	line    int
}

func newCSVTable(r io.Reader, required ...string) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for idx, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, exists := columns[key]; !exists {
			columns[key] = idx
		}
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	return &csvTable{reader: reader, columns: columns, line: 1}, nil
}

func (t *csvTable) has(column string) bool {
	_, ok := t.columns[column]
	return ok
}

// next returns io.EOF once the table is exhausted.
func (t *csvTable) next() (csvRow, error) {
	fields, err := t.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return csvRow{}, io.EOF
		}
		return csvRow{}, fmt.Errorf("read csv line %d: %w", t.line+1, err)
	}
	t.line++
	return csvRow{table: t, fields: fields, line: t.line}, nil
}

type csvRow struct {
	table  *csvTable
	fields []string
	line   int
}

func (r csvRow) str(column string) string {
	idx, ok := r.table.columns[column]
	if !ok || idx >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

func (r csvRow) id(column string) (int64, error) {
	raw := r.str(column)
	if raw == "" {
		return 0, fmt.Errorf("line %d: %s is empty", r.line, column)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: parse %s=%q: %w", r.line, column, raw, err)
	}
	return value, nil
}

// optionalInt treats blanks and garbage as zero; only identifier columns are strict.
func (r csvRow) optionalInt(column string) int {
	raw := r.str(column)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		if f, ferr := strconv.ParseFloat(raw, 64); ferr == nil {
			return int(f)
		}
		return 0
	}
	return value
}

func (r csvRow) optionalFloat(column string) *float64 {
	raw := r.str(column)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}

func (r csvRow) price(column string) *float64 {
	return ParsePrice(r.str(column))
}

func (r csvRow) date(column string) (time.Time, error) {
	raw := r.str(column)
	day, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("line %d: parse %s=%q: %w", r.line, column, raw, err)
	}
	return day, nil
}

// ParsePrice accepts the export's currency strings ("$1,234.00", "£85", "85").
// Blank or unparseable values are reported as absent.
func ParsePrice(raw string) *float64 {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil
	}
	cleaned = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, cleaned)
	if cleaned == "" {
		return nil
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &value
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// ParseDate parses the date formats seen in the exports into a UTC time.
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format")
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "t", "true", "1", "yes", "y":
		return true
	default:
		return false
	}
}
