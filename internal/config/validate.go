package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"tabclean/internal/schema"
	"tabclean/internal/transformer"
	"tabclean/internal/transformer/builtin"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single lint finding. Path is a dotted path into the document
// (e.g. "columns[2].impute"). Err, when set, is the sentinel the finding
// belongs to, so callers can test for classes of mistakes with errors.Is.
type Issue struct {
	Severity IssueSeverity `json:"severity" yaml:"severity"`
	Path     string        `json:"path" yaml:"path"`
	Message  string        `json:"message" yaml:"message"`
	Err      error         `json:"-" yaml:"-"`
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

func (i Issue) Unwrap() error { return i.Err }

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate lints cfg without mutating it. Callers decide whether warnings
// are fatal.
func Validate(cfg *Config) []Issue {
	var issues []Issue
	if strings.TrimSpace(cfg.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics and reports will be unlabelled",
		})
	}
	issues = append(issues, validateColumns(cfg.Columns)...)
	issues = append(issues, validateDedupe(cfg)...)
	issues = append(issues, validateInput(cfg.Input)...)
	issues = append(issues, validateOutput(cfg.Output)...)
	issues = append(issues, validateStorage(cfg.Storage)...)
	issues = append(issues, validateMetrics(cfg.Metrics)...)
	issues = append(issues, validateLog(cfg.Log)...)
	return issues
}

func errorf(path string, sentinel error, format string, args ...any) Issue {
	return Issue{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, args...), Err: sentinel}
}

func warnf(path, format string, args ...any) Issue {
	return Issue{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, args...)}
}

func validateColumns(cols []Column) []Issue {
	var issues []Issue
	if len(cols) == 0 {
		return []Issue{warnf("columns", "no columns declared; every stage will be a no-op")}
	}

	// Names that will exist after the run: declared columns plus derived ones.
	seen := make(map[string]string, len(cols))
	claim := func(name, path string) {
		if prev, dup := seen[name]; dup {
			issues = append(issues, errorf(path, nil, "column name %q already used at %s", name, prev))
			return
		}
		seen[name] = path
	}
	for i, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			issues = append(issues, errorf(fmt.Sprintf("columns[%d].name", i), nil, "column name must not be empty"))
			continue
		}
		claim(c.Name, fmt.Sprintf("columns[%d].name", i))
	}

	for i, c := range cols {
		base := fmt.Sprintf("columns[%d]", i)
		role, err := schema.ParseRole(c.Role)
		if err != nil {
			issues = append(issues, errorf(base+".role", nil, "%v (want one of %v)", err, schema.Roles))
			continue
		}
		issues = append(issues, validateImpute(base, c, role)...)
		issues = append(issues, validateCoerce(base, c, role)...)
		issues = append(issues, validateNormalize(base, c, role)...)

		if c.Outlier != nil {
			path := base + ".outlier"
			if role != schema.RoleNumeric {
				issues = append(issues, errorf(path, transformer.ErrInvalidStrategy, "outlier treatment needs a numeric column, %q is %s", c.Name, role))
			}
			if p, err := builtin.ParseOutlierPolicy(c.Outlier.Policy); err != nil {
				issues = append(issues, errorf(path+".policy", transformer.ErrInvalidStrategy, "%v (want filter or flag)", err))
			} else if p == builtin.OutlierFlag {
				rule := builtin.OutlierRule{Column: c.Name, FlagColumn: c.Outlier.FlagColumn}
				claim(rule.FlagColumnName(), path+".flag_column")
			}
			if c.Outlier.K < 0 {
				issues = append(issues, errorf(path+".k", transformer.ErrInvalidStrategy, "k must be positive, got %g", c.Outlier.K))
			}
		}

		if c.Buckets != nil {
			path := base + ".buckets"
			if role != schema.RoleNumeric {
				issues = append(issues, errorf(path, transformer.ErrInvalidStrategy, "buckets need a numeric column, %q is %s", c.Name, role))
			}
			rule := c.Buckets.Rule(c.Name)
			if err := rule.Validate(); err != nil {
				issues = append(issues, errorf(path, transformer.ErrInvalidBuckets, "%v", err))
			} else {
				claim(rule.TargetColumn(), path+".target")
			}
		}
	}
	return issues
}

func validateImpute(base string, c Column, role schema.Role) []Issue {
	if c.Impute == "" {
		if c.Required && role == schema.RoleIdentifier {
			return []Issue{warnf(base+".impute", "required identifier %q has no impute: drop-row; rows missing it are kept", c.Name)}
		}
		return nil
	}
	path := base + ".impute"
	st, err := builtin.ParseStrategy(c.Impute)
	if err != nil {
		return []Issue{errorf(path, transformer.ErrInvalidStrategy, "%v (want median, mean, mode or drop-row)", err)}
	}
	switch {
	case role == schema.RoleIdentifier && st != builtin.StrategyDropRow:
		return []Issue{errorf(path, transformer.ErrInvalidStrategy, "identifier %q cannot be imputed with %s; only drop-row is allowed", c.Name, st)}
	case st.Numeric() && role != schema.RoleNumeric:
		return []Issue{errorf(path, transformer.ErrInvalidStrategy, "%s needs a numeric column, %q is %s", st, c.Name, role)}
	}
	return nil
}

func validateCoerce(base string, c Column, role schema.Role) []Issue {
	var issues []Issue
	if c.Coerce == "" {
		if len(c.Truthy)+len(c.Falsy) > 0 {
			issues = append(issues, warnf(base+".truthy", "truthy/falsy are ignored without coerce: boolean"))
		}
		if len(c.Layouts) > 0 {
			issues = append(issues, warnf(base+".layouts", "layouts are ignored without coerce: date"))
		}
		return issues
	}
	path := base + ".coerce"
	tg, err := builtin.ParseTarget(c.Coerce)
	if err != nil {
		return append(issues, errorf(path, transformer.ErrInvalidStrategy, "%v (want date, boolean or normalized-string)", err))
	}
	want := map[builtin.Target]schema.Role{
		builtin.TargetDate:             schema.RoleDate,
		builtin.TargetBoolean:          schema.RoleBoolean,
		builtin.TargetNormalizedString: schema.RoleText,
	}[tg]
	if role != want {
		issues = append(issues, errorf(path, transformer.ErrInvalidStrategy, "coerce %s needs a %s column, %q is %s", tg, want, c.Name, role))
	}
	if tg != builtin.TargetBoolean && len(c.Truthy)+len(c.Falsy) > 0 {
		issues = append(issues, warnf(base+".truthy", "truthy/falsy are ignored for coerce %s", tg))
	}
	if tg == builtin.TargetBoolean && (len(c.Truthy) == 0) != (len(c.Falsy) == 0) {
		issues = append(issues, warnf(base+".truthy", "only one of truthy/falsy is set; every other token becomes missing"))
	}
	return issues
}

func validateNormalize(base string, c Column, role schema.Role) []Issue {
	if c.Normalize == "" {
		return nil
	}
	path := base + ".normalize"
	if _, err := builtin.ParseTextRule(c.Normalize); err != nil {
		return []Issue{errorf(path, transformer.ErrInvalidStrategy, "%v (want trim-title-case, trim-lower-case or strip-whitespace)", err)}
	}
	if role != schema.RoleText {
		return []Issue{errorf(path, transformer.ErrInvalidStrategy, "normalize needs a text column, %q is %s", c.Name, role)}
	}
	return nil
}

func validateDedupe(cfg *Config) []Issue {
	var issues []Issue
	if cfg.Dedupe.Policy != "" {
		switch strings.ToLower(cfg.Dedupe.Policy) {
		case builtin.PolicyKeepFirst, builtin.PolicyKeepLast, builtin.PolicyMostComplete:
		default:
			issues = append(issues, errorf("dedupe.policy", transformer.ErrInvalidStrategy,
				"unknown dedupe policy %q (want keep-first, keep-last or most-complete)", cfg.Dedupe.Policy))
		}
	}
	for i, k := range cfg.Dedupe.Keys {
		if _, ok := cfg.Column(k); !ok {
			issues = append(issues, warnf(fmt.Sprintf("dedupe.keys[%d]", i), "key %q is not a declared column", k))
		}
	}
	return issues
}

func validateInput(in Input) []Issue {
	if in.Delimiter != "" && utf8.RuneCountInString(in.Delimiter) != 1 {
		return []Issue{errorf("input.delimiter", nil, "delimiter must be a single character, got %q", in.Delimiter)}
	}
	return nil
}

func validateOutput(out Output) []Issue {
	switch strings.ToLower(out.ReportFormat) {
	case "", "text", "json", "yaml", "yml":
		return nil
	default:
		return []Issue{errorf("output.report_format", nil, "unknown report format %q (want text, json or yaml)", out.ReportFormat)}
	}
}

func validateStorage(s Storage) []Issue {
	if strings.TrimSpace(s.Kind) == "" {
		return nil
	}
	var issues []Issue
	switch s.Kind {
	case "sqlite", "postgres", "mssql", "mysql":
	default:
		issues = append(issues, warnf("storage.kind", "unknown storage kind %q; ensure a matching backend is registered", s.Kind))
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, errorf("storage.dsn", nil, "storage.dsn must not be empty"))
	}
	if strings.TrimSpace(s.Table) == "" {
		issues = append(issues, errorf("storage.table", nil, "storage.table must not be empty"))
	}
	if s.BatchSize < 0 {
		issues = append(issues, errorf("storage.batch_size", nil, "batch_size must not be negative"))
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch strings.ToLower(m.Backend) {
	case "", "none", "nop":
		return nil
	case "pushgateway", "prompush":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			return []Issue{errorf("metrics.pushgateway_url", nil, "pushgateway backend requires pushgateway_url")}
		}
		return nil
	case "dogstatsd", "datadog":
		if strings.TrimSpace(m.StatsdAddr) == "" {
			return []Issue{errorf("metrics.statsd_addr", nil, "dogstatsd backend requires statsd_addr")}
		}
		return nil
	default:
		return []Issue{errorf("metrics.backend", nil, "unknown metrics backend %q (want none, pushgateway or dogstatsd)", m.Backend)}
	}
}

func validateLog(l Log) []Issue {
	switch strings.ToLower(l.Format) {
	case "", "json", "console", "text":
		return nil
	default:
		return []Issue{errorf("log.format", nil, "unknown log format %q (want json or console)", l.Format)}
	}
}
