package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tabclean/internal/transformer"
)

// findIssue returns the first issue at path with the given severity.
func findIssue(issues []Issue, sev IssueSeverity, path string) (Issue, bool) {
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path {
			return iss, true
		}
	}
	return Issue{}, false
}

func oneColumn(c Column) *Config {
	return &Config{Job: "t", Columns: []Column{c}}
}

func TestValidate_ColumnRules(t *testing.T) {
	tests := []struct {
		name     string
		col      Column
		path     string
		sentinel error
		msg      string
	}{
		{"unknown role", Column{Name: "a", Role: "blob"}, "columns[0].role", nil, "unknown column role"},
		{"unknown strategy", Column{Name: "a", Role: "numeric", Impute: "interpolate"}, "columns[0].impute", transformer.ErrInvalidStrategy, "unknown imputation strategy"},
		{"mean on text", Column{Name: "a", Role: "text", Impute: "mean"}, "columns[0].impute", transformer.ErrInvalidStrategy, "needs a numeric column"},
		{"mode on identifier", Column{Name: "id", Role: "identifier", Impute: "mode"}, "columns[0].impute", transformer.ErrInvalidStrategy, "only drop-row"},
		{"coerce role mismatch", Column{Name: "a", Role: "numeric", Coerce: "date"}, "columns[0].coerce", transformer.ErrInvalidStrategy, "needs a date column"},
		{"unknown target", Column{Name: "a", Role: "date", Coerce: "epoch"}, "columns[0].coerce", transformer.ErrInvalidStrategy, "unknown coercion target"},
		{"normalize non-text", Column{Name: "a", Role: "numeric", Normalize: "trim-lower-case"}, "columns[0].normalize", transformer.ErrInvalidStrategy, "needs a text column"},
		{"unknown rule", Column{Name: "a", Role: "text", Normalize: "shout"}, "columns[0].normalize", transformer.ErrInvalidStrategy, "unknown normalization rule"},
		{"outlier on text", Column{Name: "a", Role: "text", Outlier: &Outlier{Policy: "flag"}}, "columns[0].outlier", transformer.ErrInvalidStrategy, "needs a numeric column"},
		{"negative k", Column{Name: "a", Role: "numeric", Outlier: &Outlier{Policy: "filter", K: -1}}, "columns[0].outlier.k", transformer.ErrInvalidStrategy, "must be positive"},
		{"unknown policy", Column{Name: "a", Role: "numeric", Outlier: &Outlier{Policy: "clip"}}, "columns[0].outlier.policy", transformer.ErrInvalidStrategy, "unknown outlier policy"},
		{"buckets on text", Column{Name: "a", Role: "text", Buckets: &Buckets{Edges: []float64{0, 1}, Labels: []string{"x"}}}, "columns[0].buckets", transformer.ErrInvalidStrategy, "need a numeric column"},
		{"malformed buckets", Column{Name: "a", Role: "numeric", Buckets: &Buckets{Edges: []float64{0, 1, 2}, Labels: []string{"x"}}}, "columns[0].buckets", transformer.ErrInvalidBuckets, "labels"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Validate(oneColumn(tt.col))
			iss, ok := findIssue(issues, SeverityError, tt.path)
			if !assert.True(t, ok, "no error at %s in %v", tt.path, issues) {
				return
			}
			assert.Contains(t, iss.Message, tt.msg)
			if tt.sentinel != nil {
				assert.True(t, errors.Is(iss, tt.sentinel))
			}
			assert.True(t, HasErrors(issues))
		})
	}
}

func TestValidate_DuplicateAndDerivedNames(t *testing.T) {
	cfg := &Config{Job: "t", Columns: []Column{
		{Name: "Age", Role: "numeric", Outlier: &Outlier{Policy: "flag"}},
		{Name: "Age", Role: "numeric"},
		{Name: "Age_outlier", Role: "boolean"},
		{Name: "Income", Role: "numeric", Buckets: &Buckets{Target: "Age", Edges: []float64{0, 1}, Labels: []string{"x"}}},
	}}
	issues := Validate(cfg)

	_, dup := findIssue(issues, SeverityError, "columns[1].name")
	assert.True(t, dup, "duplicate declared name")
	_, flag := findIssue(issues, SeverityError, "columns[0].outlier.flag_column")
	assert.True(t, flag, "flag column collides with a declared column")
	_, target := findIssue(issues, SeverityError, "columns[3].buckets.target")
	assert.True(t, target, "bucket target collides with a declared column")
}

func TestValidate_Warnings(t *testing.T) {
	issues := Validate(&Config{})
	_, ok := findIssue(issues, SeverityWarning, "columns")
	assert.True(t, ok)
	_, ok = findIssue(issues, SeverityWarning, "job")
	assert.True(t, ok)
	assert.False(t, HasErrors(issues))

	issues = Validate(oneColumn(Column{Name: "b", Role: "boolean", Truthy: []string{"y"}}))
	_, ok = findIssue(issues, SeverityWarning, "columns[0].truthy")
	assert.True(t, ok)
}

func TestValidate_Sections(t *testing.T) {
	cfg := Default()
	cfg.Input.Delimiter = ";;"
	cfg.Output.ReportFormat = "html"
	cfg.Storage = Storage{Kind: "sqlite"}
	cfg.Metrics = Metrics{Backend: "pushgateway"}
	cfg.Log.Format = "xml"
	cfg.Dedupe = Dedupe{Keys: []string{"nope"}, Policy: "random"}

	issues := Validate(cfg)
	for _, path := range []string{
		"input.delimiter", "output.report_format", "storage.dsn", "storage.table",
		"metrics.pushgateway_url", "log.format", "dedupe.policy",
	} {
		_, ok := findIssue(issues, SeverityError, path)
		assert.True(t, ok, "expected error at %s", path)
	}
	_, ok := findIssue(issues, SeverityWarning, "dedupe.keys[0]")
	assert.True(t, ok)

	cfg = Default()
	cfg.Metrics = Metrics{Backend: "dogstatsd"}
	_, ok = findIssue(Validate(cfg), SeverityError, "metrics.statsd_addr")
	assert.True(t, ok)
	cfg.Metrics.StatsdAddr = "127.0.0.1:8125"
	assert.False(t, HasErrors(Validate(cfg)))
}

func TestIssue_Error(t *testing.T) {
	iss := Issue{Severity: SeverityError, Path: "columns[0].impute", Message: "bad", Err: transformer.ErrInvalidStrategy}
	assert.True(t, strings.HasPrefix(iss.Error(), "error at columns[0].impute"))
	assert.ErrorIs(t, iss, transformer.ErrInvalidStrategy)
}
