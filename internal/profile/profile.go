// Package profile produces a data-quality assessment of a loaded table:
// shape, kind mix and missing share per column, exact duplicate rows, and a
// describe-style summary for numeric and categorical columns.
package profile

import (
	"context"
	"fmt"

	"tabclean/internal/stats"
	"tabclean/internal/transformer/builtin"
	"tabclean/pkg/records"
)

// Numeric is the describe row of a numeric column. Std is NaN for a single
// value.
type Numeric struct {
	Count int     `json:"count" yaml:"count"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Std   float64 `json:"std" yaml:"std"`
	Min   float64 `json:"min" yaml:"min"`
	P25   float64 `json:"p25" yaml:"p25"`
	P50   float64 `json:"p50" yaml:"p50"`
	P75   float64 `json:"p75" yaml:"p75"`
	Max   float64 `json:"max" yaml:"max"`
}

// Categorical is the describe row of a non-numeric column.
type Categorical struct {
	Count  int    `json:"count" yaml:"count"`
	Unique int    `json:"unique" yaml:"unique"`
	Top    string `json:"top" yaml:"top"`
	Freq   int    `json:"freq" yaml:"freq"`
}

// Column is the profile of one column.
type Column struct {
	Name        string         `json:"name" yaml:"name"`
	Kinds       map[string]int `json:"kinds" yaml:"kinds"`
	Missing     int            `json:"missing" yaml:"missing"`
	MissingPct  float64        `json:"missing_pct" yaml:"missing_pct"`
	Numeric     *Numeric       `json:"numeric,omitempty" yaml:"numeric,omitempty"`
	Categorical *Categorical   `json:"categorical,omitempty" yaml:"categorical,omitempty"`
}

// Profile is the assessment of a whole snapshot.
type Profile struct {
	Rows       int      `json:"rows" yaml:"rows"`
	Columns    []Column `json:"columns" yaml:"columns"`
	Duplicates int      `json:"duplicates" yaml:"duplicates"`
}

// Of profiles s. A column is described numerically when every non-missing
// value is a number, categorically otherwise; an all-missing column gets
// neither.
func Of(ctx context.Context, s *records.Snapshot) (*Profile, error) {
	p := &Profile{Rows: s.Len()}
	for _, name := range s.Columns() {
		col := s.Column(name)
		c := Column{Name: name, Kinds: map[string]int{}}
		var nums []float64
		allNumeric := true
		for _, v := range col {
			if v.IsMissing() {
				c.Missing++
				continue
			}
			c.Kinds[v.Kind().String()]++
			if f, ok := v.Float(); ok {
				nums = append(nums, f)
			} else {
				allNumeric = false
			}
		}
		if p.Rows > 0 {
			c.MissingPct = float64(c.Missing) * 100 / float64(p.Rows)
		}
		switch {
		case c.Missing == len(col):
		case allNumeric:
			d, err := describe(nums)
			if err != nil {
				return nil, fmt.Errorf("profile %s: %w", name, err)
			}
			c.Numeric = d
		default:
			c.Categorical = categorical(col)
		}
		p.Columns = append(p.Columns, c)
	}

	_, entry, err := builtin.DeDup{}.Apply(ctx, s, nil)
	if err != nil {
		return nil, fmt.Errorf("profile duplicates: %w", err)
	}
	p.Duplicates = entry.RowsRemoved
	return p, nil
}

func describe(xs []float64) (*Numeric, error) {
	d := &Numeric{Count: len(xs)}
	var err error
	if d.Mean, err = stats.Mean(xs); err != nil {
		return nil, err
	}
	if d.Std, err = stats.StdDev(xs); err != nil {
		return nil, err
	}
	if d.Min, d.Max, err = stats.MinMax(xs); err != nil {
		return nil, err
	}
	if d.P25, d.P50, d.P75, err = stats.Quartiles(xs); err != nil {
		return nil, err
	}
	return d, nil
}

// categorical counts distinct rendered values. Ties for top go to the value
// seen first.
func categorical(col []records.Value) *Categorical {
	c := &Categorical{}
	counts := map[string]int{}
	var order []string
	for _, v := range col {
		if v.IsMissing() {
			continue
		}
		c.Count++
		k := v.String()
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	c.Unique = len(order)
	for _, k := range order {
		if counts[k] > c.Freq {
			c.Top, c.Freq = k, counts[k]
		}
	}
	return c
}

// Column returns the profile of the named column.
func (p *Profile) Column(name string) (Column, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
