package rowstore

import (
	"context"
	"fmt"
)

func selectWithJoin(ctx context.Context, s Selector, table string, q Query, j Join) ([]Row, error) {
	if j.Table == "" || j.LocalKey == "" || j.ForeignKey == "" || j.As == "" {
		return nil, &Error{
			Op:      "select",
			Table:   table,
			Message: fmt.Sprintf("incomplete join on %q", j.Table),
		}
	}

	parents, err := s.Select(ctx, table, q)
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return parents, nil
	}

	seen := map[string]bool{}
	var keys []any
	for _, p := range parents {
		v := p[j.LocalKey]
		if v == nil {
			continue
		}
		k := keyOf(v)
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, v)
	}

	childQuery := j.Query
	childQuery.Filters = append([]Filter{In(j.ForeignKey, keys)}, j.Query.Filters...)
	children, err := s.Select(ctx, j.Table, childQuery)
	if err != nil {
		return nil, err
	}

	byKey := map[string][]Row{}
	for _, c := range children {
		k := keyOf(c[j.ForeignKey])
		byKey[k] = append(byKey[k], c)
	}

	for _, p := range parents {
		embedded := byKey[keyOf(p[j.LocalKey])]
		if embedded == nil {
			embedded = []Row{}
		}
		p[j.As] = embedded
	}

	return parents, nil
}
