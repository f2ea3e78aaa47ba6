// Package records holds the in-memory table model shared by the loader, the
// cleaning stages and the sinks: typed cell values, rows keyed by column name,
// and immutable snapshots of a whole table.
package records

import (
	"math"
	"strconv"
	"time"
)

// Kind is the runtime type of a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindString
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single typed cell. The zero Value is the missing marker, which is
// distinct from every domain value: an empty string or 0 is not missing.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	t    time.Time
}

// Missing returns the sentinel for an absent value.
func Missing() Value { return Value{} }

// Number wraps f. NaN is folded into Missing so that no numeric computation
// ever sees it.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// String wraps s.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Date wraps t.
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric payload and whether v is a number.
func (v Value) Float() (float64, bool) { return v.num, v.kind == KindNumber }

// Text returns the string payload and whether v is a string.
func (v Value) Text() (string, bool) { return v.str, v.kind == KindString }

// Truth returns the boolean payload and whether v is a bool.
func (v Value) Truth() (bool, bool) { return v.b, v.kind == KindBool }

// Time returns the date payload and whether v is a date.
func (v Value) Time() (time.Time, bool) { return v.t, v.kind == KindDate }

// Equal reports whether v and o hold the same kind and payload. Two missing
// values are equal to each other.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindMissing:
		return true
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	case KindDate:
		return v.t.Equal(o.t)
	}
	return false
}

// String renders v for CSV output and reports. Missing renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		if h, m, s := v.t.Clock(); h == 0 && m == 0 && s == 0 && v.t.Nanosecond() == 0 {
			return v.t.Format("2006-01-02")
		}
		return v.t.Format(time.RFC3339)
	default:
		return ""
	}
}

// AppendKey appends a canonical, kind-tagged encoding of v to dst. Two values
// produce the same bytes iff they are Equal.
func (v Value) AppendKey(dst []byte) []byte {
	dst = append(dst, byte(v.kind))
	switch v.kind {
	case KindNumber:
		bits := math.Float64bits(v.num)
		if v.num == 0 {
			bits = 0 // -0 == +0
		}
		for i := 0; i < 8; i++ {
			dst = append(dst, byte(bits>>(8*i)))
		}
	case KindString:
		dst = strconv.AppendInt(dst, int64(len(v.str)), 10)
		dst = append(dst, ':')
		dst = append(dst, v.str...)
	case KindBool:
		if v.b {
			dst = append(dst, 1)
		} else {
			dst = append(dst, 0)
		}
	case KindDate:
		dst = strconv.AppendInt(dst, v.t.UnixNano(), 10)
	}
	return dst
}

// Any returns the payload as a plain Go value for database drivers: nil,
// float64, string, bool or time.Time.
func (v Value) Any() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindDate:
		return v.t
	default:
		return nil
	}
}
