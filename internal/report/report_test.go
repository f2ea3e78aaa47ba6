package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"tabclean/pkg/records"
)

func sampleReport() *Report {
	snap := records.MustSnapshot([]string{"Age", "email"}, []records.Record{
		{"Age": records.Number(30), "email": records.String("a@x")},
		{"Age": records.Missing(), "email": records.String("b@x")},
	})
	r := &Report{RunID: "r1", State: "Done", Before: Summarize(snap), After: Summarize(snap)}

	e := NewEntry("impute", 2)
	e.Touch(ColumnEffect{Column: "Age", Action: "median", Filled: 1, Detail: "30"})
	e.Note(Notice{Kind: NoticeMissingColumn, Column: "phone"})
	e.Finish(2)
	r.Append(e)

	o := NewEntry("outliers", 2)
	o.Note(Notice{Kind: NoticeInsufficientData, Column: "Age", Count: 2})
	o.Finish(2)
	r.Append(o)
	r.Bounds = []Bounds{{Column: "Income", N: 5, Q1: 2000, Q3: 4000, IQR: 2000, K: 1.5, Lower: -1000, Upper: 7000}}
	return r
}

func TestSummarize(t *testing.T) {
	s := Summarize(records.MustSnapshot([]string{"a", "b"}, []records.Record{
		{"a": records.Number(1), "b": records.String("x")},
		{"a": records.Missing(), "b": records.Number(2)},
		{"a": records.Number(3), "b": records.Missing()},
		{"a": records.Missing(), "b": records.Missing()},
	}))
	require.Equal(t, 4, s.Rows)
	assert.Equal(t, ColumnSummary{Name: "a", Kind: "number", Missing: 2, MissingPct: 50}, s.Columns[0])
	assert.Equal(t, "mixed", s.Columns[1].Kind)
}

func TestSkips_KeepReasonsDistinct(t *testing.T) {
	skips := sampleReport().SkippedColumns()
	require.Len(t, skips, 2)
	assert.Equal(t, Skip{Stage: "impute", Column: "phone", Reason: NoticeMissingColumn}, skips[0])
	assert.Equal(t, Skip{Stage: "outliers", Column: "Age", Reason: NoticeInsufficientData, Count: 2}, skips[1])
}

func TestEntryFinish(t *testing.T) {
	e := NewEntry("dedupe", 10)
	e.Finish(7)
	assert.Equal(t, 3, e.RowsRemoved)
	assert.Empty(t, e.ColumnsTouched())
}

func TestWrite_Formats(t *testing.T) {
	r := sampleReport()

	var txt bytes.Buffer
	require.NoError(t, Write(&txt, r, "text"))
	assert.Contains(t, txt.String(), "impute")
	assert.Contains(t, txt.String(), "insufficient-data")
	assert.Contains(t, txt.String(), "-1000")

	var js bytes.Buffer
	require.NoError(t, Write(&js, r, "json"))
	var back Report
	require.NoError(t, json.Unmarshal(js.Bytes(), &back))
	assert.Equal(t, r.Entries[0].Columns, back.Entries[0].Columns)

	var y bytes.Buffer
	require.NoError(t, Write(&y, r, "yaml"))
	var m map[string]any
	require.NoError(t, yaml.Unmarshal(y.Bytes(), &m))
	assert.Equal(t, "r1", m["run_id"])

	assert.Error(t, Write(&bytes.Buffer{}, r, "xml"))
}
