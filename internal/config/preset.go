package config

// Presets are the built-in configurations selectable by name.
var Presets = map[string]func() *Config{
	"customers": Default,
}

// Default returns the customer-table preset: the column dictionary of an
// e-commerce customer export with its age and income bands.
func Default() *Config {
	text := func(name, impute, normalize string) Column {
		return Column{Name: name, Role: "text", Impute: impute, Normalize: normalize}
	}
	return &Config{
		Job: "customers",
		Columns: []Column{
			{Name: "CustomerID", Role: "identifier", Required: true, Impute: "drop-row"},
			text("first_name", "mode", "trim-title-case"),
			text("last_name", "mode", "trim-title-case"),
			text("email", "mode", "trim-lower-case"),
			text("phone", "mode", "strip-whitespace"),
			{Name: "Gender", Role: "text", Impute: "mode", Coerce: "normalized-string"},
			{
				Name:   "Age",
				Role:   "numeric",
				Impute: "median",
				Buckets: &Buckets{
					Target: "age_group",
					Edges:  []float64{0, 18, 30, 45, 60, 100},
					Labels: []string{"Teen", "Young Adult", "Adult", "Mid Age", "Senior"},
				},
			},
			{
				Name:    "AnnualIncome",
				Role:    "numeric",
				Impute:  "mean",
				Outlier: &Outlier{Policy: "filter", K: 1.5},
				Buckets: &Buckets{
					Target: "income_bracket",
					Edges:  []float64{0, 40000, 80000, 120000, 200000},
					Labels: []string{"Low", "Medium", "High", "Very High"},
				},
			},
			{Name: "TotalSpent", Role: "numeric"},
			{Name: "OrdersCount", Role: "numeric"},
			{Name: "registration_date", Role: "date", Impute: "mode", Coerce: "date"},
			{Name: "last_order_date", Role: "date", Impute: "mode", Coerce: "date"},
			{
				Name:   "is_premium",
				Role:   "boolean",
				Coerce: "boolean",
				Truthy: []string{"true", "1", "yes", "y", "t"},
				Falsy:  []string{"false", "0", "no", "n", "f"},
			},
		},
		Input:   Input{Delimiter: ","},
		Output:  Output{ReportFormat: "text"},
		Storage: Storage{BatchSize: 500},
		Metrics: Metrics{Backend: "none"},
		Log:     Log{Level: "info", Format: "console"},
	}
}
