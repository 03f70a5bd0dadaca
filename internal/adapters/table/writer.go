package table

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okian/topsis/internal/domain/topsis"
)

const outputFilePermission = 0o644

// Write stores the scored table at path. The data goes to a temporary file in
// the same directory which is renamed over path only once fully written, so a
// failed run never leaves a partial table behind.
func Write(ctx context.Context, path string, scored *topsis.ScoredTable, opts ...Option) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmpName)
	}()

	if err := Encode(ctx, tmp, scored, opts...); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Chmod(tmpName, outputFilePermission); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Encode writes the scored table to w: the input columns followed by the
// score and rank columns.
func Encode(ctx context.Context, w io.Writer, scored *topsis.ScoredTable, opts ...Option) error {
	s := newSettings(opts)
	cw := csv.NewWriter(w)
	cw.Comma = s.delimiter

	header := make([]string, 0, len(scored.Criteria)+3)
	header = append(header, scored.LabelHeader)
	header = append(header, scored.Criteria...)
	header = append(header, s.scoreColumn, s.rankColumn)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	for i, r := range scored.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		record := make([]string, 0, len(header))
		record = append(record, r.Label)
		record = append(record, cells(r)...)
		record = append(record,
			strconv.FormatFloat(scored.Scores[i], 'f', s.precision, 64),
			strconv.FormatFloat(scored.Ranks[i], 'f', -1, 64),
		)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func cells(r topsis.Row) []string {
	if len(r.Cells) == len(r.Values) {
		return r.Cells
	}
	out := make([]string, len(r.Values))
	for i, v := range r.Values {
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}
