// Package csv loads delimited text into a records.Snapshot and writes a
// snapshot back out.
//
// Loading is soft-fail: malformed rows and rows with the wrong number of
// fields are skipped and counted rather than aborting the load. Cells equal
// to one of the missing tokens become records.Missing. Columns listed in
// Options.Kinds as numbers are parsed with cast; the rest are inferred, so a
// column loads as numbers only when every non-missing cell parses.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"tabclean/pkg/records"
)

// DefaultMissingTokens are the cell values treated as missing when
// Options.MissingTokens is nil.
var DefaultMissingTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}

// ErrNoHeader is returned for empty input.
var ErrNoHeader = errors.New("csv: input has no header row")

// Options configures Load. All fields are optional.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing white space from each field value
	// before missing-token matching.
	TrimSpace bool

	// HeaderMap renames source headers (after BOM strip and trim).
	HeaderMap map[string]string

	// MissingTokens replaces DefaultMissingTokens when non-nil. An empty,
	// non-nil slice disables missing detection entirely.
	MissingTokens []string

	// Kinds pins the kind of a column. KindNumber parses every cell as a
	// number and turns failures into Missing; KindString keeps text as is.
	// Columns not listed, or listed with any other kind, are inferred.
	Kinds map[string]records.Kind

	// Logger receives skipped-row warnings; nil discards them.
	Logger *zap.Logger
}

// LoadStats describes what Load did with the input.
type LoadStats struct {
	Rows    int
	Skipped int
	// Unparsed counts cells of pinned numeric columns that did not parse.
	Unparsed map[string]int
}

// skipLogLimit caps per-row warnings for badly broken files.
const skipLogLimit = 400

// Load reads a header row followed by data rows from r.
func Load(r io.Reader, opt Options) (*records.Snapshot, LoadStats, error) {
	stats := LoadStats{Unparsed: map[string]int{}}
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	// Width is enforced below so a bad row is skipped rather than fatal.
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, ErrNoHeader
	}
	if err != nil {
		return nil, stats, fmt.Errorf("read csv header: %w", err)
	}
	headers := normalizeHeaders(h, opt)

	missing := lookupSet(opt.MissingTokens)
	var cells [][]string
	var present [][]bool
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if stats.Skipped < skipLogLimit {
				log.Warn("skipping malformed row", zap.Int("line", line), zap.Error(err))
			}
			stats.Skipped++
			continue
		}
		if len(row) != len(headers) {
			if stats.Skipped < skipLogLimit {
				log.Warn("skipping row with wrong field count",
					zap.Int("line", line), zap.Int("expected", len(headers)), zap.Int("got", len(row)))
			}
			stats.Skipped++
			continue
		}
		vals := make([]string, len(row))
		ok := make([]bool, len(row))
		for i, val := range row {
			if opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			if _, isMissing := missing[val]; isMissing {
				continue
			}
			vals[i], ok[i] = val, true
		}
		cells = append(cells, vals)
		present = append(present, ok)
	}

	rows := make([]records.Record, len(cells))
	for i := range rows {
		rows[i] = make(records.Record, len(headers))
	}
	for j, name := range headers {
		kind := opt.Kinds[name]
		if kind != records.KindNumber && kind != records.KindString {
			kind = inferKind(cells, present, j)
		}
		for i := range cells {
			if !present[i][j] {
				continue
			}
			raw := cells[i][j]
			if kind != records.KindNumber {
				rows[i][name] = records.String(raw)
				continue
			}
			f, ok := parseNumber(raw)
			if !ok {
				stats.Unparsed[name]++
				continue
			}
			rows[i][name] = records.Number(f)
		}
	}

	snap, err := records.NewSnapshot(headers, rows)
	if err != nil {
		return nil, stats, fmt.Errorf("csv: %w", err)
	}
	stats.Rows = snap.Len()
	return snap, stats, nil
}

// LoadFile opens path and calls Load.
func LoadFile(path string, opt Options) (*records.Snapshot, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	adviseSequential(f)
	return Load(f, opt)
}

// Write renders s as CSV with a header row. Missing values are written as
// empty cells.
func Write(w io.Writer, s *records.Snapshot, comma rune) error {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}
	cols := s.Columns()
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	line := make([]string, len(cols))
	for i := 0; i < s.Len(); i++ {
		rec := s.Row(i)
		for j, c := range cols {
			line[j] = rec[c].String()
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// inferKind reports KindNumber when column j has at least one non-missing
// cell and every such cell parses as a finite number.
func inferKind(cells [][]string, present [][]bool, j int) records.Kind {
	seen := false
	for i := range cells {
		if !present[i][j] {
			continue
		}
		if _, ok := parseNumber(cells[i][j]); !ok {
			return records.KindString
		}
		seen = true
	}
	if !seen {
		return records.KindString
	}
	return records.KindNumber
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func lookupSet(tokens []string) map[string]struct{} {
	if tokens == nil {
		tokens = DefaultMissingTokens
	}
	out := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		out[t] = struct{}{}
	}
	return out
}

// normalizeHeaders strips the BOM, trims each header and applies HeaderMap.
// Header case is preserved; column names are matched exactly downstream.
func normalizeHeaders(h []string, opt Options) []string {
	h = StripHeaderBOM(h)
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if m, ok := opt.HeaderMap[c]; ok {
			c = m
		}
		res[i] = c
	}
	return res
}
