// Package refdata loads the airport and aircraft reference tables. Both are
// semicolon-separated with a header row; columns are looked up by name so
// their order does not matter and unknown columns are ignored.
package refdata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Separator is the field separator of the reference tables.
const Separator = ';'

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("refdata: missing column")

type row struct {
	line   int
	fields []string
	index  map[string]int
}

func (r row) has(col string) bool {
	_, ok := r.index[col]
	return ok
}

func (r row) str(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r row) int(col string) (int, error) {
	s := r.str(col)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("line %d column %s: %w", r.line, col, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("line %d column %s: negative value %d", r.line, col, n)
	}
	return n, nil
}

func (r row) float(col string) (float64, error) {
	s := r.str(col)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d column %s: %w", r.line, col, err)
	}
	return f, nil
}

// ints reads cols in class order and stops on the first error.
func (r row) ints(cols [4]string) ([4]int, error) {
	var out [4]int
	for i, c := range cols {
		n, err := r.int(c)
		if err != nil {
			return out, err
		}
		out[i] = n
	}
	return out, nil
}

func (r row) floats(cols [4]string) ([4]float64, error) {
	var out [4]float64
	for i, c := range cols {
		f, err := r.float(c)
		if err != nil {
			return out, err
		}
		out[i] = f
	}
	return out, nil
}

// readTable parses a header row followed by data rows and calls fn for each
// data row. Every column in required must be present in the header.
func readTable(r io.Reader, required []string, fn func(row) error) error {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("refdata: empty table")
		}
		return fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}

	line := 1
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("read line %d: %w", line, err)
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if err := fn(row{line: line, fields: fields, index: index}); err != nil {
			return err
		}
	}
}
