// Package config defines the configuration document for a cleaning run and
// loads it with viper.
//
// A document names the job, the column dictionary (role plus the treatment
// of each column per stage), where input comes from and where output goes.
// YAML and JSON are both accepted; every scalar can be overridden from the
// environment with the TABCLEAN_ prefix, e.g. TABCLEAN_LOG_LEVEL=debug or
// TABCLEAN_STORAGE_DSN=....
//
// Example (trimmed):
//
//	job: customers
//	columns:
//	  - name: Age
//	    role: numeric
//	    impute: median
//	    buckets: {target: age_group, edges: [0, 18, 30], labels: [Teen, Young Adult]}
//	  - name: email
//	    role: text
//	    normalize: trim-lower-case
//	input:  {path: customers.csv}
//	output: {path: cleaned.csv}
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"tabclean/internal/schema"
	"tabclean/internal/transformer/builtin"
)

// EnvPrefix is prepended to environment overrides.
const EnvPrefix = "TABCLEAN"

// Config is the top-level document.
type Config struct {
	// Job labels logs, metrics and reports.
	Job string `mapstructure:"job" json:"job" yaml:"job"`

	// DateLayouts are the stage-wide layouts for date coercion, tried in
	// order. Empty means the built-in defaults.
	DateLayouts []string `mapstructure:"date_layouts" json:"date_layouts,omitempty" yaml:"date_layouts,omitempty"`

	// Columns is the column dictionary. Order is preserved in the report.
	Columns []Column `mapstructure:"columns" json:"columns" yaml:"columns"`

	Dedupe  Dedupe  `mapstructure:"dedupe" json:"dedupe" yaml:"dedupe"`
	Input   Input   `mapstructure:"input" json:"input" yaml:"input"`
	Output  Output  `mapstructure:"output" json:"output" yaml:"output"`
	Storage Storage `mapstructure:"storage" json:"storage" yaml:"storage"`
	Metrics Metrics `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
	Log     Log     `mapstructure:"log" json:"log" yaml:"log"`
}

// Column declares one column and how each stage treats it. Empty treatment
// fields mean the stage leaves the column alone.
type Column struct {
	Name     string `mapstructure:"name" json:"name" yaml:"name"`
	Role     string `mapstructure:"role" json:"role" yaml:"role"`
	Required bool   `mapstructure:"required" json:"required,omitempty" yaml:"required,omitempty"`

	// Impute is median, mean, mode or drop-row.
	Impute string `mapstructure:"impute" json:"impute,omitempty" yaml:"impute,omitempty"`

	// Coerce is date, boolean or normalized-string.
	Coerce  string   `mapstructure:"coerce" json:"coerce,omitempty" yaml:"coerce,omitempty"`
	Layouts []string `mapstructure:"layouts" json:"layouts,omitempty" yaml:"layouts,omitempty"`
	Truthy  []string `mapstructure:"truthy" json:"truthy,omitempty" yaml:"truthy,omitempty"`
	Falsy   []string `mapstructure:"falsy" json:"falsy,omitempty" yaml:"falsy,omitempty"`

	// Normalize is trim-title-case, trim-lower-case or strip-whitespace.
	Normalize string `mapstructure:"normalize" json:"normalize,omitempty" yaml:"normalize,omitempty"`

	Outlier *Outlier `mapstructure:"outlier" json:"outlier,omitempty" yaml:"outlier,omitempty"`
	Buckets *Buckets `mapstructure:"buckets" json:"buckets,omitempty" yaml:"buckets,omitempty"`
}

// Outlier configures IQR treatment. K of zero means 1.5.
type Outlier struct {
	Policy     string  `mapstructure:"policy" json:"policy" yaml:"policy"`
	K          float64 `mapstructure:"k" json:"k,omitempty" yaml:"k,omitempty"`
	FlagColumn string  `mapstructure:"flag_column" json:"flag_column,omitempty" yaml:"flag_column,omitempty"`
}

// Buckets derives a labelled category column from a numeric column.
type Buckets struct {
	Target string    `mapstructure:"target" json:"target,omitempty" yaml:"target,omitempty"`
	Edges  []float64 `mapstructure:"edges" json:"edges" yaml:"edges"`
	Labels []string  `mapstructure:"labels" json:"labels" yaml:"labels"`
}

// Dedupe narrows row identity to Keys and picks the survivor by Policy.
// The zero value removes exact duplicates keeping the first occurrence.
type Dedupe struct {
	Keys   []string `mapstructure:"keys" json:"keys,omitempty" yaml:"keys,omitempty"`
	Policy string   `mapstructure:"policy" json:"policy,omitempty" yaml:"policy,omitempty"`
}

// Input describes the CSV source.
type Input struct {
	Path          string            `mapstructure:"path" json:"path" yaml:"path"`
	Delimiter     string            `mapstructure:"delimiter" json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	TrimSpace     bool              `mapstructure:"trim_space" json:"trim_space,omitempty" yaml:"trim_space,omitempty"`
	MissingTokens []string          `mapstructure:"missing_tokens" json:"missing_tokens,omitempty" yaml:"missing_tokens,omitempty"`
	HeaderMap     map[string]string `mapstructure:"header_map" json:"header_map,omitempty" yaml:"header_map,omitempty"`
}

// Output describes where the cleaned table and the report go. An empty path
// means stdout for the report and no file for the table.
type Output struct {
	Path         string `mapstructure:"path" json:"path,omitempty" yaml:"path,omitempty"`
	ReportPath   string `mapstructure:"report_path" json:"report_path,omitempty" yaml:"report_path,omitempty"`
	ReportFormat string `mapstructure:"report_format" json:"report_format,omitempty" yaml:"report_format,omitempty"`
}

// Storage selects an optional database sink. An empty Kind disables it.
type Storage struct {
	Kind            string `mapstructure:"kind" json:"kind,omitempty" yaml:"kind,omitempty"`
	DSN             string `mapstructure:"dsn" json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Table           string `mapstructure:"table" json:"table,omitempty" yaml:"table,omitempty"`
	AutoCreateTable bool   `mapstructure:"auto_create_table" json:"auto_create_table,omitempty" yaml:"auto_create_table,omitempty"`
	BatchSize       int    `mapstructure:"batch_size" json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
}

// Metrics selects the metrics backend: "none", "pushgateway" or "dogstatsd".
type Metrics struct {
	Backend        string `mapstructure:"backend" json:"backend,omitempty" yaml:"backend,omitempty"`
	PushgatewayURL string `mapstructure:"pushgateway_url" json:"pushgateway_url,omitempty" yaml:"pushgateway_url,omitempty"`
	StatsdAddr     string `mapstructure:"statsd_addr" json:"statsd_addr,omitempty" yaml:"statsd_addr,omitempty"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `mapstructure:"level" json:"level,omitempty" yaml:"level,omitempty"`
	Format string `mapstructure:"format" json:"format,omitempty" yaml:"format,omitempty"`
}

// Load reads the document at path (YAML or JSON, chosen by extension) and
// applies TABCLEAN_* environment overrides. An empty path yields the
// defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yml", ".yaml":
			v.SetConfigType("yaml")
		case ".json":
			v.SetConfigType("json")
		default:
			return nil, fmt.Errorf("config: unsupported file type %q (want .yaml, .yml or .json)", filepath.Ext(path))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("job", "tabclean")
	v.SetDefault("input.delimiter", ",")
	v.SetDefault("input.path", "")
	v.SetDefault("output.path", "")
	v.SetDefault("output.report_path", "")
	v.SetDefault("output.report_format", "text")
	v.SetDefault("storage.kind", "")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.table", "")
	v.SetDefault("storage.batch_size", 500)
	v.SetDefault("metrics.backend", "none")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.statsd_addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Contract projects the column dictionary onto a schema.Contract. Unknown
// roles are skipped; Validate reports them.
func (c *Config) Contract() schema.Contract {
	out := schema.Contract{Name: c.Job}
	for _, col := range c.Columns {
		role, err := schema.ParseRole(col.Role)
		if err != nil {
			continue
		}
		out.Columns = append(out.Columns, schema.Column{Name: col.Name, Role: role, Required: col.Required})
	}
	return out
}

// Column returns the declared column called name.
func (c *Config) Column(name string) (Column, bool) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// Rule converts b into the bucketing rule for column.
func (b Buckets) Rule(column string) builtin.BucketRule {
	return builtin.BucketRule{
		Column: column,
		Target: b.Target,
		Edges:  append([]float64(nil), b.Edges...),
		Labels: append([]string(nil), b.Labels...),
	}
}
