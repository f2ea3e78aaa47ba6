package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"tabclean/internal/config"
	"tabclean/internal/logging"
	"tabclean/internal/metrics"
	"tabclean/internal/metrics/datadog"
	"tabclean/internal/metrics/prompush"
	pcsv "tabclean/internal/parser/csv"
	"tabclean/internal/schema"
	"tabclean/pkg/records"
)

// loadConfig resolves the document: --config wins, then the named preset.
func loadConfig(g *globals, preset string) (*config.Config, error) {
	switch {
	case g.cfgFile != "":
		return config.Load(g.cfgFile)
	case preset != "":
		mk, ok := config.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset %q (have %s)", preset, strings.Join(presetNames(), ", "))
		}
		return mk(), nil
	default:
		return nil, errors.New("either --config or --preset is required")
	}
}

func presetNames() []string {
	out := make([]string, 0, len(config.Presets))
	for k := range config.Presets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// newLogger builds the zap logger from the document and the global flags.
func newLogger(g *globals, cfg *config.Config) (*zap.Logger, func(), error) {
	level, format := cfg.Log.Level, cfg.Log.Format
	if g.verbose {
		level = "debug"
	}
	if g.logFormat != "" {
		format = g.logFormat
	}
	log, sync, err := logging.New(level, format)
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = sync() }, nil
}

// setupMetrics installs the configured backend and returns a flush func.
func setupMetrics(cfg *config.Config, log *zap.Logger) func() {
	switch strings.ToLower(cfg.Metrics.Backend) {
	case "pushgateway", "prompush":
		b, err := prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
		if err != nil {
			log.Warn("metrics: pushgateway backend unavailable; using nop", zap.Error(err))
			return func() {}
		}
		metrics.SetBackend(b)
		log.Debug("metrics: pushgateway enabled", zap.String("url", cfg.Metrics.PushgatewayURL), zap.String("job", cfg.Job))
		return func() {
			if err := metrics.Flush(); err != nil {
				log.Warn("metrics: flush failed", zap.Error(err))
			}
			metrics.Reset()
		}
	case "dogstatsd", "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.StatsdAddr,
			Namespace:  "tabclean.",
			GlobalTags: []string{"job:" + cfg.Job},
		})
		if err != nil {
			log.Warn("metrics: dogstatsd backend unavailable; using nop", zap.Error(err))
			return func() {}
		}
		metrics.SetBackend(b)
		log.Debug("metrics: dogstatsd enabled", zap.String("addr", cfg.Metrics.StatsdAddr))
		return func() {
			if err := metrics.Flush(); err != nil {
				log.Warn("metrics: flush failed", zap.Error(err))
			}
			metrics.Reset()
		}
	default:
		return func() {}
	}
}

// loadOptions maps the input section and the column roles onto loader
// options. Numeric columns are pinned to numbers, text-like roles to
// strings; identifiers are inferred.
func loadOptions(cfg *config.Config, log *zap.Logger) pcsv.Options {
	opt := pcsv.Options{
		TrimSpace:     cfg.Input.TrimSpace,
		HeaderMap:     cfg.Input.HeaderMap,
		MissingTokens: cfg.Input.MissingTokens,
		Kinds:         map[string]records.Kind{},
		Logger:        log,
	}
	if r, _ := utf8.DecodeRuneInString(cfg.Input.Delimiter); r != utf8.RuneError {
		opt.Comma = r
	}
	for _, c := range cfg.Contract().Columns {
		switch c.Role {
		case schema.RoleNumeric:
			opt.Kinds[c.Name] = records.KindNumber
		case schema.RoleText, schema.RoleDate, schema.RoleBoolean:
			opt.Kinds[c.Name] = records.KindString
		}
	}
	return opt
}
