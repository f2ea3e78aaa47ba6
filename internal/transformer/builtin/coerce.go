package builtin

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tabclean/internal/report"
	"tabclean/internal/schema"
	"tabclean/internal/transformer"
	"tabclean/pkg/records"
)

// Target is the runtime kind a coerced column must end up with.
type Target string

const (
	TargetDate             Target = "date"
	TargetBoolean          Target = "boolean"
	TargetNormalizedString Target = "normalized-string"
)

// DefaultDateLayouts are tried in order when a rule names no layouts.
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"01/02/2006",
}

func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date", "datetime", "timestamp":
		return TargetDate, nil
	case "boolean", "bool":
		return TargetBoolean, nil
	case "normalized-string", "string", "category":
		return TargetNormalizedString, nil
	default:
		return "", fmt.Errorf("unknown coercion target %q", s)
	}
}

// CoerceRule converts one column to Target. Layouts overrides the stage
// layouts for dates. Truthy and Falsy switch boolean coercion from the
// default non-zero/non-empty test to explicit token sets.
type CoerceRule struct {
	Column  string
	Target  Target
	Layouts []string
	Truthy  []string
	Falsy   []string
}

// Coerce converts column values to their target kind. A value that cannot
// be converted becomes Missing and is counted as a coercion failure, so
// after the stage every non-missing value of a coerced column has the
// target kind.
type Coerce struct {
	Rules   []CoerceRule
	Layouts []string // stage-wide date layouts; DefaultDateLayouts when empty
}

func (Coerce) Name() string { return "coerce" }

func (c Coerce) Apply(ctx context.Context, in *records.Snapshot, present schema.Present) (*records.Snapshot, report.Entry, error) {
	entry := report.NewEntry(c.Name(), in.Len())
	out := in
	for _, r := range c.Rules {
		if err := ctx.Err(); err != nil {
			return nil, entry, err
		}
		if !transformer.Available(in, present, r.Column) {
			transformer.NoteAbsent(&entry, r.Column)
			continue
		}
		conv, err := c.converter(r)
		if err != nil {
			return nil, entry, err
		}
		failures := 0
		var changed int
		out, changed = out.MapColumn(r.Column, func(v records.Value) records.Value {
			if v.IsMissing() {
				return v
			}
			nv, ok := conv(v)
			if !ok {
				failures++
				return records.Missing()
			}
			return nv
		})
		entry.Touch(report.ColumnEffect{Column: r.Column, Action: string(r.Target), Changed: changed - failures, Failures: failures})
		if failures > 0 {
			entry.Note(report.Notice{
				Kind:    report.NoticeCoercionFailure,
				Column:  r.Column,
				Count:   failures,
				Message: fmt.Sprintf("%d value(s) could not be converted to %s", failures, r.Target),
			})
		}
	}
	entry.Finish(out.Len())
	return out, entry, nil
}

type convertFunc func(records.Value) (records.Value, bool)

func (c Coerce) converter(r CoerceRule) (convertFunc, error) {
	switch r.Target {
	case TargetDate:
		layouts := r.Layouts
		if len(layouts) == 0 {
			layouts = c.Layouts
		}
		if len(layouts) == 0 {
			layouts = DefaultDateLayouts
		}
		return func(v records.Value) (records.Value, bool) { return toDate(v, layouts) }, nil
	case TargetBoolean:
		if len(r.Truthy) == 0 && len(r.Falsy) == 0 {
			return toBool, nil
		}
		truthy, falsy := lowerSet(r.Truthy), lowerSet(r.Falsy)
		return func(v records.Value) (records.Value, bool) { return toBoolInSets(v, truthy, falsy) }, nil
	case TargetNormalizedString:
		return func(v records.Value) (records.Value, bool) {
			return records.String(strings.ToLower(strings.TrimSpace(v.String()))), true
		}, nil
	default:
		return nil, &transformer.InvalidStrategyError{Column: r.Column, Strategy: string(r.Target), Reason: "unknown coercion target"}
	}
}

// toDate tries each layout in order against the trimmed text form.
func toDate(v records.Value, layouts []string) (records.Value, bool) {
	if _, ok := v.Time(); ok {
		return v, true
	}
	s, ok := v.Text()
	if !ok {
		return v, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return v, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return records.Date(t), true
		}
	}
	return v, false
}

// toBool is the default boolean conversion: numbers are true when non-zero,
// strings are true unless empty or a numeric zero. It never fails for
// numbers, strings or booleans.
func toBool(v records.Value) (records.Value, bool) {
	switch v.Kind() {
	case records.KindBool:
		return v, true
	case records.KindNumber:
		f, _ := v.Float()
		return records.Bool(f != 0), true
	case records.KindString:
		s, _ := v.Text()
		s = strings.TrimSpace(s)
		if s == "" {
			return records.Bool(false), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return records.Bool(f != 0), true
		}
		return records.Bool(true), true
	default:
		return v, false
	}
}

func toBoolInSets(v records.Value, truthy, falsy map[string]struct{}) (records.Value, bool) {
	if _, ok := v.Truth(); ok {
		return v, true
	}
	s := strings.ToLower(strings.TrimSpace(v.String()))
	if _, ok := truthy[s]; ok {
		return records.Bool(true), true
	}
	if _, ok := falsy[s]; ok {
		return records.Bool(false), true
	}
	return v, false
}

func lowerSet(xs []string) map[string]struct{} {
	m := make(map[string]struct{}, len(xs))
	for _, s := range xs {
		m[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return m
}
