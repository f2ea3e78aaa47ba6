package builtin

import (
	"context"
	"strings"

	"github.com/zeebo/xxh3"

	"tabclean/internal/report"
	"tabclean/internal/schema"
	"tabclean/internal/transformer"
	"tabclean/pkg/records"
)

const (
	PolicyKeepFirst    = "keep-first"
	PolicyKeepLast     = "keep-last"
	PolicyMostComplete = "most-complete"
)

// DeDup collapses duplicate rows and picks a winner per duplicate group:
//
//   - "keep-first"   : keep the earliest occurrence (default)
//   - "keep-last"    : keep the latest occurrence
//   - "most-complete": keep the row with the most non-missing, non-empty
//     values; ties break by keep-last
//
// With no Keys, rows are compared across every column, which removes exact
// duplicates. With Keys, only those columns form the identity. Rows are
// bucketed by an xxh3 hash of a canonical encoding of the key values and
// compared byte-for-byte within a bucket, so hash collisions never merge
// distinct rows.
//
// Output keeps the winners in ascending original position. Running DeDup on
// its own output removes nothing further.
type DeDup struct {
	// Keys are the columns that form the row identity. Empty means all.
	Keys []string

	// Policy selects the winner among duplicates; default keep-first.
	Policy string

	// PreferFields add weight in most-complete scoring when non-empty.
	PreferFields []string
}

func (DeDup) Name() string { return "dedupe" }

func (d DeDup) Apply(ctx context.Context, in *records.Snapshot, present schema.Present) (*records.Snapshot, report.Entry, error) {
	entry := report.NewEntry(d.Name(), in.Len())

	keys := in.Columns()
	if len(d.Keys) > 0 {
		keys = keys[:0]
		for _, k := range d.Keys {
			if !transformer.Available(in, present, k) {
				transformer.NoteAbsent(&entry, k)
				continue
			}
			keys = append(keys, k)
		}
		if len(keys) == 0 {
			entry.Finish(in.Len())
			return in, entry, nil
		}
	}
	if in.Len() == 0 {
		entry.Finish(0)
		return in, entry, nil
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = PolicyKeepFirst
	}

	prefer := make(map[string]struct{}, len(d.PreferFields))
	for _, f := range d.PreferFields {
		prefer[f] = struct{}{}
	}

	type slot struct {
		key   string
		index int
		score int
	}
	buckets := make(map[uint64][]int, in.Len()) // hash -> indexes into slots
	var slots []slot

	scoreOf := func(r records.Record) int {
		score, bonus := 0, 0
		for k, v := range r {
			if v.IsMissing() {
				continue
			}
			if s, ok := v.Text(); ok && s == "" {
				continue
			}
			score++
			if _, ok := prefer[k]; ok {
				bonus++
			}
		}
		return score*10 + bonus
	}

	var buf []byte
	for i := 0; i < in.Len(); i++ {
		r := in.Row(i)
		buf = buf[:0]
		for _, k := range keys {
			buf = r[k].AppendKey(buf)
			buf = append(buf, 0x1f)
		}
		h := xxh3.Hash(buf)

		pos := -1
		for _, si := range buckets[h] {
			if slots[si].key == string(buf) {
				pos = si
				break
			}
		}
		if pos < 0 {
			s := slot{key: string(buf), index: i}
			if policy == PolicyMostComplete {
				s.score = scoreOf(r)
			}
			buckets[h] = append(buckets[h], len(slots))
			slots = append(slots, s)
			continue
		}

		switch policy {
		case PolicyKeepLast:
			slots[pos].index = i
		case PolicyMostComplete:
			if sc := scoreOf(r); sc >= slots[pos].score {
				slots[pos].index, slots[pos].score = i, sc
			}
		default:
			// keep-first: the existing winner stays.
		}
	}

	winners := make(map[int]struct{}, len(slots))
	for _, s := range slots {
		winners[s.index] = struct{}{}
	}

	pos := 0
	out, removed := in.Filter(func(records.Record) bool {
		_, ok := winners[pos]
		pos++
		return ok
	})
	if removed > 0 && len(d.Keys) > 0 {
		for _, k := range keys {
			entry.Touch(report.ColumnEffect{Column: k, Action: "key:" + policy, Dropped: removed})
		}
	}
	entry.Finish(out.Len())
	return out, entry, nil
}
