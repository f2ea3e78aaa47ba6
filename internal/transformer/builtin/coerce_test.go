package builtin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabclean/internal/report"
	"tabclean/pkg/records"
)

func TestCoerce_DatesTryLayoutsInOrder(t *testing.T) {
	in := records.MustSnapshot([]string{"d"}, []records.Record{
		{"d": str("2023-05-01")},
		{"d": str(" 2023-05-01 10:30:00 ")},
		{"d": str("31/12/2022")},
		{"d": str("not a date")},
		{"d": records.Missing()},
	})
	out, entry, err := Coerce{Rules: []CoerceRule{{Column: "d", Target: TargetDate}}}.Apply(context.Background(), in, nil)
	require.NoError(t, err)

	want := []time.Time{
		time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 5, 1, 10, 30, 0, 0, time.UTC),
		time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	for i, w := range want {
		got, ok := out.Row(i)["d"].Time()
		require.True(t, ok, "row %d", i)
		assert.True(t, w.Equal(got), "row %d: got %v want %v", i, got, w)
	}
	assert.True(t, out.Row(3)["d"].IsMissing())
	assert.True(t, out.Row(4)["d"].IsMissing())

	eff, ok := entry.Effect("d")
	require.True(t, ok)
	assert.Equal(t, 1, eff.Failures)
	assert.Equal(t, 3, eff.Changed)
	require.Len(t, entry.Notices, 1)
	assert.Equal(t, report.NoticeCoercionFailure, entry.Notices[0].Kind)
}

func TestCoerce_RuleLayoutsOverrideDefaults(t *testing.T) {
	in := records.MustSnapshot([]string{"d"}, []records.Record{{"d": str("01.02.2024")}})
	rule := CoerceRule{Column: "d", Target: TargetDate, Layouts: []string{"02.01.2006"}}
	out, _, err := Coerce{Rules: []CoerceRule{rule}}.Apply(context.Background(), in, nil)
	require.NoError(t, err)
	got, ok := out.Row(0)["d"].Time()
	require.True(t, ok)
	assert.Equal(t, time.February, got.Month())
}

func TestCoerce_BooleanDefaultSemantics(t *testing.T) {
	in := records.MustSnapshot([]string{"b"}, []records.Record{
		{"b": num(0)}, {"b": num(2)}, {"b": str("")}, {"b": str("0")},
		{"b": str("False")}, {"b": str("yes")}, {"b": records.Bool(true)}, {"b": records.Missing()},
	})
	out, entry, err := Coerce{Rules: []CoerceRule{{Column: "b", Target: TargetBoolean}}}.Apply(context.Background(), in, nil)
	require.NoError(t, err)

	want := []bool{false, true, false, false, true, true, true}
	for i, w := range want {
		got, ok := out.Row(i)["b"].Truth()
		require.True(t, ok, "row %d", i)
		assert.Equal(t, w, got, "row %d", i)
	}
	assert.True(t, out.Row(7)["b"].IsMissing())
	assert.Empty(t, entry.Notices)
}

func TestCoerce_BooleanWithTokenSets(t *testing.T) {
	in := records.MustSnapshot([]string{"b"}, []records.Record{
		{"b": str("Ano")}, {"b": str("ne")}, {"b": str("maybe")}, {"b": num(1)},
	})
	rule := CoerceRule{Column: "b", Target: TargetBoolean, Truthy: []string{"ano", "1"}, Falsy: []string{"ne", "0"}}
	out, entry, err := Coerce{Rules: []CoerceRule{rule}}.Apply(context.Background(), in, nil)
	require.NoError(t, err)

	b0, _ := out.Row(0)["b"].Truth()
	b1, _ := out.Row(1)["b"].Truth()
	b3, _ := out.Row(3)["b"].Truth()
	assert.True(t, b0)
	assert.False(t, b1)
	assert.True(t, out.Row(2)["b"].IsMissing())
	assert.True(t, b3)

	eff, _ := entry.Effect("b")
	assert.Equal(t, 1, eff.Failures)
}

func TestCoerce_NormalizedString(t *testing.T) {
	in := records.MustSnapshot([]string{"g"}, []records.Record{
		{"g": str("  Male ")}, {"g": str("FEMALE")}, {"g": num(1)},
	})
	out, _, err := Coerce{Rules: []CoerceRule{{Column: "g", Target: TargetNormalizedString}}}.Apply(context.Background(), in, nil)
	require.NoError(t, err)
	for i, w := range []string{"male", "female", "1"} {
		s, ok := out.Row(i)["g"].Text()
		require.True(t, ok)
		assert.Equal(t, w, s)
	}
}

func TestCoerce_EveryValueHasTargetKind(t *testing.T) {
	in := records.MustSnapshot([]string{"d", "b", "s"}, []records.Record{
		{"d": str("2020-01-01"), "b": str("x"), "s": num(3)},
		{"d": num(7), "b": num(0), "s": records.Bool(true)},
		{"d": str("junk"), "b": records.Missing(), "s": str(" A ")},
	})
	rules := []CoerceRule{
		{Column: "d", Target: TargetDate},
		{Column: "b", Target: TargetBoolean},
		{Column: "s", Target: TargetNormalizedString},
	}
	out, _, err := Coerce{Rules: rules}.Apply(context.Background(), in, nil)
	require.NoError(t, err)

	kinds := map[string]records.Kind{"d": records.KindDate, "b": records.KindBool, "s": records.KindString}
	for col, k := range kinds {
		for _, v := range out.Column(col) {
			if !v.IsMissing() {
				assert.Equal(t, k, v.Kind(), "column %s", col)
			}
		}
	}
}

func TestParseTarget(t *testing.T) {
	tg, err := ParseTarget("BOOL")
	require.NoError(t, err)
	assert.Equal(t, TargetBoolean, tg)
	_, err = ParseTarget("int")
	assert.Error(t, err)
}
