package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/topsis/internal/domain/topsis"
)

// Read loads a delimited table from path. The first row is the header and the
// first column holds the row labels; every other cell must be a finite number.
func Read(ctx context.Context, path string, opts ...Option) (*topsis.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, filepath.Base(path), err)
	}
	defer f.Close()
	return Decode(ctx, f, opts...)
}

// Decode parses a delimited table from r. Header cells may not reuse the
// names of the derived score and rank columns.
func Decode(ctx context.Context, r io.Reader, opts ...Option) (*topsis.Table, error) {
	s := newSettings(opts)
	reader := csv.NewReader(r)
	reader.Comma = s.delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, topsis.ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", topsis.ErrMalformedInput, err)
	}
	for i := range header {
		header[i] = cleanCell(header[i])
		if header[i] == s.scoreColumn || header[i] == s.rankColumn {
			return nil, fmt.Errorf("%w: column %q is reserved for derived output", topsis.ErrMalformedInput, header[i])
		}
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: need a label column and at least one criterion, got %d columns", topsis.ErrMalformedInput, len(header))
	}

	t := topsis.NewTable(header[0], header[1:]...)
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ErrFieldCount for ragged rows lands here too.
			return nil, fmt.Errorf("%w: line %d: %w", topsis.ErrMalformedInput, line, err)
		}
		row, err := parseRow(record, header, line)
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, row)
	}
	if t.Len() == 0 {
		return nil, topsis.ErrEmptyTable
	}
	return t, nil
}

func parseRow(record, header []string, line int) (topsis.Row, error) {
	row := topsis.Row{
		Label:  cleanCell(record[0]),
		Values: make([]float64, len(record)-1),
		Cells:  make([]string, len(record)-1),
	}
	for j, cell := range record[1:] {
		cell = cleanCell(cell)
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return topsis.Row{}, fmt.Errorf("%w: line %d column %q: %q is not a number",
				topsis.ErrMalformedInput, line, header[j+1], cell)
		}
		row.Values[j] = v
		row.Cells[j] = cell
	}
	return row, nil
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}
