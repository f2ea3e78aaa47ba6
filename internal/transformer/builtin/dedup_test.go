package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabclean/pkg/records"
)

func mk(pcv float64, df string, fields map[string]records.Value) records.Record {
	r := records.Record{
		"pcv":       num(pcv),
		"date_from": str(df),
	}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

var dedupCols = []string{"pcv", "date_from", "reason", "rm_code"}

func reasons(s *records.Snapshot) []string {
	out := make([]string, s.Len())
	for i := range out {
		out[i] = s.Row(i)["reason"].String()
	}
	return out
}

func TestDeDup_AllColumnsKeepFirst(t *testing.T) {
	in := records.MustSnapshot(dedupCols, []records.Record{
		mk(1, "2020-01-01", map[string]records.Value{"reason": str("A")}),
		mk(1, "2020-01-01", map[string]records.Value{"reason": str("A")}),
		mk(1, "2020-01-01", map[string]records.Value{"reason": str("B")}),
		mk(2, "2020-01-01", map[string]records.Value{"reason": str("A")}),
		mk(1, "2020-01-01", map[string]records.Value{"reason": str("A")}),
	})
	out, entry, err := DeDup{}.Apply(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "A"}, reasons(out))
	assert.Equal(t, 2, entry.RowsRemoved)
	assert.Empty(t, entry.Columns)
}

func TestDeDup_Idempotent(t *testing.T) {
	in := records.MustSnapshot(dedupCols, []records.Record{
		mk(1, "x", nil), mk(1, "x", nil), mk(2, "x", nil), mk(2, "y", nil), mk(2, "x", nil),
	})
	once, _, err := DeDup{}.Apply(context.Background(), in, nil)
	require.NoError(t, err)
	twice, entry, err := DeDup{}.Apply(context.Background(), once, nil)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
	assert.Zero(t, entry.RowsRemoved)
	assert.Equal(t, 3, once.Len())
}

func TestDeDup_MissingValuesCompareEqual(t *testing.T) {
	in := records.MustSnapshot([]string{"a", "b"}, []records.Record{
		{"a": num(1)}, {"a": num(1)}, {"a": num(1), "b": str("")},
	})
	out, _, err := DeDup{}.Apply(context.Background(), in, nil)
	require.NoError(t, err)
	// Missing and "" are different values.
	assert.Equal(t, 2, out.Len())
}

func TestDeDup_KeyPolicies(t *testing.T) {
	rows := []records.Record{
		mk(1, "2020-01-01", map[string]records.Value{"reason": str("")}),
		mk(1, "2020-01-01", map[string]records.Value{"reason": str("B"), "rm_code": num(1)}),
		mk(2, "2020-01-01", map[string]records.Value{"reason": str("C")}),
		mk(1, "2020-01-01", map[string]records.Value{"reason": str("D")}),
	}
	in := records.MustSnapshot(dedupCols, rows)
	keys := []string{"pcv", "date_from"}

	cases := []struct {
		policy string
		want   []string
	}{
		{PolicyKeepFirst, []string{"", "C"}},
		{PolicyKeepLast, []string{"C", "D"}},
		{PolicyMostComplete, []string{"B", "C"}},
		{"", []string{"", "C"}},
	}
	for _, tc := range cases {
		t.Run(tc.policy, func(t *testing.T) {
			out, entry, err := DeDup{Keys: keys, Policy: tc.policy}.Apply(context.Background(), in, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, reasons(out))
			eff, ok := entry.Effect("pcv")
			require.True(t, ok)
			assert.Equal(t, 2, eff.Dropped)
		})
	}
}

func TestDeDup_AbsentKeyIsNoticed(t *testing.T) {
	in := records.MustSnapshot([]string{"a"}, []records.Record{{"a": num(1)}, {"a": num(1)}})
	out, entry, err := DeDup{Keys: []string{"ghost"}}.Apply(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
	require.Len(t, entry.Notices, 1)
	assert.Equal(t, "ghost", entry.Notices[0].Column)
}
