package pipeline

import (
	"fmt"

	"tabclean/internal/config"
	"tabclean/internal/transformer"
	"tabclean/internal/transformer/builtin"
)

// step binds a stage to the state reached once it completes.
type step struct {
	stage transformer.Stage
	after State
}

// plan turns a validated configuration into the fixed stage sequence. Every
// stage is present even when no column asks for it, so the log always has
// one entry per stage.
func plan(cfg *config.Config) ([]step, error) {
	var (
		impute    builtin.Impute
		coerce    = builtin.Coerce{Layouts: cfg.DateLayouts}
		normalize builtin.Normalize
		outliers  builtin.Outliers
		buckets   builtin.Bucketize
	)
	for _, c := range cfg.Columns {
		if c.Impute != "" {
			st, err := builtin.ParseStrategy(c.Impute)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", c.Name, err)
			}
			impute.Rules = append(impute.Rules, builtin.ImputeRule{Column: c.Name, Strategy: st})
		}
		if c.Coerce != "" {
			tg, err := builtin.ParseTarget(c.Coerce)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", c.Name, err)
			}
			coerce.Rules = append(coerce.Rules, builtin.CoerceRule{
				Column:  c.Name,
				Target:  tg,
				Layouts: c.Layouts,
				Truthy:  c.Truthy,
				Falsy:   c.Falsy,
			})
		}
		if c.Normalize != "" {
			rule, err := builtin.ParseTextRule(c.Normalize)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", c.Name, err)
			}
			normalize.Rules = append(normalize.Rules, builtin.NormalizeRule{Column: c.Name, Rule: rule})
		}
		if c.Outlier != nil {
			p, err := builtin.ParseOutlierPolicy(c.Outlier.Policy)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", c.Name, err)
			}
			outliers.Rules = append(outliers.Rules, builtin.OutlierRule{
				Column:     c.Name,
				Policy:     p,
				K:          c.Outlier.K,
				FlagColumn: c.Outlier.FlagColumn,
			})
		}
		if c.Buckets != nil {
			buckets.Rules = append(buckets.Rules, c.Buckets.Rule(c.Name))
		}
	}

	return []step{
		{impute, StateImputed},
		{builtin.DeDup{Keys: cfg.Dedupe.Keys, Policy: cfg.Dedupe.Policy}, StateDeduplicated},
		{coerce, StateTypeCoerced},
		{normalize, StateTextNormalized},
		{outliers, StateOutlierTreated},
		{buckets, StateFeatureDerived},
	}, nil
}
