package rowstore

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const DateLayout = "2006-01-02"

type Row map[string]any

func (r Row) clone() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Reader decodes a Row into typed values, remembering the first failure.
type Reader struct {
	row Row
	err error
}

func NewReader(row Row) *Reader {
	return &Reader{row: row}
}

func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) fail(column string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("column %s: %w", column, err)
	}
}

func (r *Reader) get(column string, required bool) (any, bool) {
	v, ok := r.row[column]
	if !ok || v == nil {
		if required {
			r.fail(column, fmt.Errorf("missing"))
		}
		return nil, false
	}
	return v, true
}

func (r *Reader) String(column string) string {
	v, ok := r.get(column, true)
	if !ok {
		return ""
	}
	s, err := asString(v)
	if err != nil {
		r.fail(column, err)
	}
	return s
}

// OptString returns "" for a missing or null column.
func (r *Reader) OptString(column string) string {
	v, ok := r.get(column, false)
	if !ok {
		return ""
	}
	s, err := asString(v)
	if err != nil {
		r.fail(column, err)
	}
	return s
}

func (r *Reader) Int(column string) int {
	v, ok := r.get(column, true)
	if !ok {
		return 0
	}
	i, err := asInt(v)
	if err != nil {
		r.fail(column, err)
	}
	return i
}

func (r *Reader) OptInt(column string) *int {
	v, ok := r.get(column, false)
	if !ok {
		return nil
	}
	i, err := asInt(v)
	if err != nil {
		r.fail(column, err)
		return nil
	}
	return &i
}

func (r *Reader) Float(column string) float64 {
	v, ok := r.get(column, true)
	if !ok {
		return 0
	}
	f, err := asFloat(v)
	if err != nil {
		r.fail(column, err)
	}
	return f
}

func (r *Reader) OptFloat(column string) *float64 {
	v, ok := r.get(column, false)
	if !ok {
		return nil
	}
	f, err := asFloat(v)
	if err != nil {
		r.fail(column, err)
		return nil
	}
	return &f
}

func (r *Reader) Bool(column string) bool {
	v, ok := r.get(column, true)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(column, fmt.Errorf("expected bool, got %T", v))
	}
	return b
}

func (r *Reader) Time(column string) time.Time {
	v, ok := r.get(column, true)
	if !ok {
		return time.Time{}
	}
	t, err := asTime(v)
	if err != nil {
		r.fail(column, err)
	}
	return t
}

// Ints decodes an integer array column. A missing column yields nil.
func (r *Reader) Ints(column string) []int {
	v, ok := r.get(column, false)
	if !ok {
		return nil
	}

	var items []any
	switch vv := v.(type) {
	case []any:
		items = vv
	case []int:
		return append([]int{}, vv...)
	case []int32:
		for _, i := range vv {
			items = append(items, i)
		}
	case []int64:
		for _, i := range vv {
			items = append(items, i)
		}
	default:
		r.fail(column, fmt.Errorf("expected int list, got %T", v))
		return nil
	}

	res := make([]int, 0, len(items))
	for _, item := range items {
		i, err := asInt(item)
		if err != nil {
			r.fail(column, err)
			return nil
		}
		res = append(res, i)
	}
	return res
}

// Rows returns rows embedded by a join.
func (r *Reader) Rows(column string) []Row {
	v, ok := r.get(column, false)
	if !ok {
		return nil
	}
	switch vv := v.(type) {
	case []Row:
		return vv
	case []map[string]any:
		res := make([]Row, 0, len(vv))
		for _, m := range vv {
			res = append(res, m)
		}
		return res
	default:
		r.fail(column, fmt.Errorf("expected embedded rows, got %T", v))
		return nil
	}
}

func asString(v any) (string, error) {
	switch vv := v.(type) {
	case string:
		return vv, nil
	case []byte:
		return string(vv), nil
	case [16]byte:
		return uuid.UUID(vv).String(), nil
	case uuid.UUID:
		return vv.String(), nil
	case pgtype.UUID:
		if !vv.Valid {
			return "", fmt.Errorf("null uuid")
		}
		return uuid.UUID(vv.Bytes).String(), nil
	case fmt.Stringer:
		return vv.String(), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func asInt(v any) (int, error) {
	switch vv := v.(type) {
	case int:
		return vv, nil
	case int16:
		return int(vv), nil
	case int32:
		return int(vv), nil
	case int64:
		return int(vv), nil
	case float64:
		if vv != math.Trunc(vv) {
			return 0, fmt.Errorf("expected integer, got %v", vv)
		}
		return int(vv), nil
	case string:
		return strconv.Atoi(vv)
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func asFloat(v any) (float64, error) {
	switch vv := v.(type) {
	case float64:
		return vv, nil
	case float32:
		return float64(vv), nil
	case int:
		return float64(vv), nil
	case int16:
		return float64(vv), nil
	case int32:
		return float64(vv), nil
	case int64:
		return float64(vv), nil
	case pgtype.Numeric:
		f, err := vv.Float64Value()
		if err != nil {
			return 0, err
		}
		if !f.Valid {
			return 0, fmt.Errorf("null numeric")
		}
		return f.Float64, nil
	case string:
		return strconv.ParseFloat(vv, 64)
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func asTime(v any) (time.Time, error) {
	switch vv := v.(type) {
	case time.Time:
		return vv, nil
	case string:
		if t, err := time.Parse(time.RFC3339Nano, vv); err == nil {
			return t, nil
		}
		return time.Parse(DateLayout, vv)
	default:
		return time.Time{}, fmt.Errorf("expected time, got %T", v)
	}
}
