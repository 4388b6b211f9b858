package rowstore

import (
	"fmt"
	"strings"
	"time"
)

// keyOf normalizes a value so ids coming back as uuid bytes match their string form.
func keyOf(v any) string {
	if v == nil {
		return "<nil>"
	}
	if s, err := asString(v); err == nil {
		return strings.ToLower(s)
	}
	if f, err := asFloat(v); err == nil {
		return fmt.Sprintf("%g", f)
	}
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%v", v)
}

// compareValues orders a against b. ok is false when the values are not comparable.
func compareValues(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}

	if fa, errA := asNumber(a); errA == nil {
		if fb, errB := asNumber(b); errB == nil {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			default:
				return 0, true
			}
		}
	}

	_, aIsTime := a.(time.Time)
	_, bIsTime := b.(time.Time)
	if aIsTime || bIsTime {
		ta, errA := asTime(a)
		tb, errB := asTime(b)
		if errA != nil || errB != nil {
			return 0, false
		}
		return ta.Compare(tb), true
	}

	sa, errA := asString(a)
	sb, errB := asString(b)
	if errA != nil || errB != nil {
		return 0, false
	}
	return strings.Compare(sa, sb), true
}

// asNumber accepts only numeric Go types, strings are not parsed.
func asNumber(v any) (float64, error) {
	switch v.(type) {
	case string, []byte:
		return 0, fmt.Errorf("not a number")
	}
	return asFloat(v)
}

func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if c, ok := compareValues(a, b); ok {
		if c == 0 {
			return true
		}
		// uuid bytes vs strings differ in case only
		return keyOf(a) == keyOf(b)
	}
	return keyOf(a) == keyOf(b)
}

func (f Filter) matches(row Row) bool {
	v := row[f.Column]
	switch f.Op {
	case OpEq:
		return valuesEqual(v, f.Value)
	case OpIn:
		for _, candidate := range f.Value.([]any) {
			if valuesEqual(v, candidate) {
				return true
			}
		}
		return false
	case OpGte:
		c, ok := compareValues(v, f.Value)
		return ok && c >= 0
	case OpLte:
		c, ok := compareValues(v, f.Value)
		return ok && c <= 0
	}
	return false
}
