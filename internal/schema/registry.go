package schema

// Present is the set of declared columns that exist in the current snapshot.
// Every stage consults it before touching a column.
type Present map[string]struct{}

// Has reports whether name is both declared and present.
func (p Present) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// PresentColumns intersects the declared and actual column sets. Declared but
// absent columns are simply not in the result; this never fails.
func PresentColumns(declared, actual []string) Present {
	have := make(map[string]struct{}, len(actual))
	for _, a := range actual {
		have[a] = struct{}{}
	}
	out := make(Present, len(declared))
	for _, d := range declared {
		if _, ok := have[d]; ok {
			out[d] = struct{}{}
		}
	}
	return out
}

// Registry resolves a Contract against the columns of a loaded table.
type Registry struct {
	contract Contract
}

// NewRegistry returns a Registry for c.
func NewRegistry(c Contract) *Registry { return &Registry{contract: c} }

// Contract returns the declarations the registry was built from.
func (r *Registry) Contract() Contract { return r.contract }

// Check returns the present set and the declared-but-absent names, in
// declaration order.
func (r *Registry) Check(actual []string) (Present, []string) {
	declared := r.contract.Names()
	present := PresentColumns(declared, actual)
	var absent []string
	for _, d := range declared {
		if !present.Has(d) {
			absent = append(absent, d)
		}
	}
	return present, absent
}
