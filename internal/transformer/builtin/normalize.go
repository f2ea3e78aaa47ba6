package builtin

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tabclean/internal/report"
	"tabclean/internal/schema"
	"tabclean/internal/transformer"
	"tabclean/pkg/records"
)

// TextRule is one text normalization.
type TextRule string

const (
	RuleTrimTitleCase   TextRule = "trim-title-case"
	RuleTrimLowerCase   TextRule = "trim-lower-case"
	RuleStripWhitespace TextRule = "strip-whitespace"
)

func ParseTextRule(s string) (TextRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trim-title-case", "title":
		return RuleTrimTitleCase, nil
	case "trim-lower-case", "lower":
		return RuleTrimLowerCase, nil
	case "strip-whitespace", "strip":
		return RuleStripWhitespace, nil
	default:
		return "", fmt.Errorf("unknown normalization rule %q", s)
	}
}

type NormalizeRule struct {
	Column string
	Rule   TextRule
}

// Normalize rewrites string values per column. Input is NFC-normalized and
// NBSP is folded to a plain space first. Missing and non-string values pass
// through unchanged. Applying the stage twice gives the same result as once.
type Normalize struct {
	Rules []NormalizeRule
}

func (Normalize) Name() string { return "normalize" }

func (n Normalize) Apply(ctx context.Context, in *records.Snapshot, present schema.Present) (*records.Snapshot, report.Entry, error) {
	entry := report.NewEntry(n.Name(), in.Len())
	out := in
	for _, r := range n.Rules {
		if err := ctx.Err(); err != nil {
			return nil, entry, err
		}
		if !transformer.Available(in, present, r.Column) {
			transformer.NoteAbsent(&entry, r.Column)
			continue
		}
		fn, err := textFunc(r)
		if err != nil {
			return nil, entry, err
		}
		var changed int
		out, changed = out.MapColumn(r.Column, func(v records.Value) records.Value {
			s, ok := v.Text()
			if !ok {
				return v
			}
			return records.String(fn(s))
		})
		entry.Touch(report.ColumnEffect{Column: r.Column, Action: string(r.Rule), Changed: changed})
	}
	entry.Finish(out.Len())
	return out, entry, nil
}

// nbsp folds U+00A0 to an ASCII space.
var nbsp = runes.Map(func(r rune) rune {
	if r == '\u00a0' {
		return ' '
	}
	return r
})

// textFunc builds the string rewrite for one rule. Casers keep internal
// state, so each rule gets its own.
func textFunc(r NormalizeRule) (func(string) string, error) {
	switch r.Rule {
	case RuleTrimTitleCase:
		title := cases.Title(language.Und)
		return func(s string) string {
			return norm.NFC.String(title.String(strings.TrimSpace(canonical(s))))
		}, nil
	case RuleTrimLowerCase:
		lower := cases.Lower(language.Und)
		return func(s string) string {
			return norm.NFC.String(lower.String(strings.TrimSpace(canonical(s))))
		}, nil
	case RuleStripWhitespace:
		return func(s string) string {
			out, _, err := transform.String(runes.Remove(runes.Predicate(unicode.IsSpace)), canonical(s))
			if err != nil {
				return s
			}
			return out
		}, nil
	default:
		return nil, &transformer.InvalidStrategyError{Column: r.Column, Strategy: string(r.Rule), Reason: "unknown normalization rule"}
	}
}

// canonical returns s in NFC with NBSP replaced.
func canonical(s string) string {
	out, _, err := transform.String(transform.Chain(norm.NFC, nbsp), s)
	if err != nil {
		return s
	}
	return out
}
