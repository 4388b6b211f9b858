package rowstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ Store = (*MemStore)(nil)

// MemStore keeps tables in process memory. Rows get a generated id and
// created_at when the caller does not set them.
type MemStore struct {
	mu         sync.RWMutex
	tables     map[string][]Row
	uniqueKeys map[string][][]string
	nowFunc    func() time.Time
}

type MemStoreOption func(*MemStore)

// WithUniqueKey makes inserts into table fail when a row with the same values
// in columns already exists.
func WithUniqueKey(table string, columns ...string) MemStoreOption {
	return func(s *MemStore) {
		s.uniqueKeys[table] = append(s.uniqueKeys[table], columns)
	}
}

func WithNowFunc(nowFunc func() time.Time) MemStoreOption {
	return func(s *MemStore) {
		s.nowFunc = nowFunc
	}
}

func NewMemStore(opts ...MemStoreOption) *MemStore {
	s := &MemStore{
		tables:     map[string][]Row{},
		uniqueKeys: map[string][][]string{},
		nowFunc:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemStore) Select(_ context.Context, table string, q Query) ([]Row, error) {
	if err := validateFilters("select", table, q.Filters); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []Row
	for _, row := range s.tables[table] {
		if matchesAll(row, q.Filters) {
			res = append(res, row.clone())
		}
	}

	sortRows(res, q.Order)
	if q.Limit > 0 && len(res) > q.Limit {
		res = res[:q.Limit]
	}
	return res, nil
}

func (s *MemStore) SelectWithJoin(ctx context.Context, table string, q Query, j Join) ([]Row, error) {
	return selectWithJoin(ctx, s, table, q, j)
}

func (s *MemStore) Insert(_ context.Context, table string, rows ...Row) ([]Row, error) {
	if len(rows) == 0 {
		return nil, &Error{Op: "insert", Table: table, Message: "nothing to insert"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	inserted := make([]Row, 0, len(rows))
	for _, r := range rows {
		row := r.clone()
		if row["id"] == nil {
			row["id"] = uuid.NewString()
		}
		if row["created_at"] == nil {
			row["created_at"] = now
		}
		inserted = append(inserted, row)
	}

	// the whole batch fails if any row conflicts
	pending := append([]Row{}, s.tables[table]...)
	for _, row := range inserted {
		if err := s.checkUnique(table, pending, row, nil); err != nil {
			return nil, err
		}
		pending = append(pending, row)
	}
	s.tables[table] = pending

	res := make([]Row, 0, len(inserted))
	for _, row := range inserted {
		res = append(res, row.clone())
	}
	return res, nil
}

func (s *MemStore) Update(_ context.Context, table string, patch Row, filters ...Filter) ([]Row, error) {
	if err := requireFilters("update", table, filters); err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return nil, &Error{Op: "update", Table: table, Message: "empty update"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[table]
	updated := make([]Row, len(rows))
	copy(updated, rows)

	var res []Row
	for i, row := range updated {
		if !matchesAll(row, filters) {
			continue
		}
		next := row.clone()
		for k, v := range patch {
			next[k] = v
		}
		if err := s.checkUnique(table, updated, next, row); err != nil {
			return nil, err
		}
		updated[i] = next
		res = append(res, next.clone())
	}

	s.tables[table] = updated
	return res, nil
}

func (s *MemStore) Upsert(_ context.Context, table string, row Row, conflictKeys ...string) (Row, error) {
	if len(conflictKeys) == 0 {
		return nil, &Error{Op: "upsert", Table: table, Message: "upsert needs conflict keys"}
	}
	for _, k := range conflictKeys {
		if _, ok := row[k]; !ok {
			return nil, &Error{
				Op:      "upsert",
				Table:   table,
				Message: fmt.Sprintf("conflict key %q not set", k),
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[table]
	for i, existing := range rows {
		if !sameValues(existing, row, conflictKeys) {
			continue
		}
		next := existing.clone()
		for k, v := range row {
			if k == "id" || k == "created_at" {
				continue
			}
			next[k] = v
		}
		updated := make([]Row, len(rows))
		copy(updated, rows)
		if err := s.checkUnique(table, updated, next, existing); err != nil {
			return nil, err
		}
		updated[i] = next
		s.tables[table] = updated
		return next.clone(), nil
	}

	next := row.clone()
	if next["id"] == nil {
		next["id"] = uuid.NewString()
	}
	if next["created_at"] == nil {
		next["created_at"] = s.nowFunc()
	}
	if err := s.checkUnique(table, rows, next, nil); err != nil {
		return nil, err
	}
	s.tables[table] = append(rows, next)
	return next.clone(), nil
}

func (s *MemStore) Delete(_ context.Context, table string, filters ...Filter) error {
	if err := requireFilters("delete", table, filters); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []Row
	for _, row := range s.tables[table] {
		if !matchesAll(row, filters) {
			kept = append(kept, row)
		}
	}
	s.tables[table] = kept
	return nil
}

// checkUnique reports a conflict of candidate with any row in rows other than self.
func (s *MemStore) checkUnique(table string, rows []Row, candidate, self Row) error {
	keys := append([][]string{{"id"}}, s.uniqueKeys[table]...)
	for _, cols := range keys {
		for _, existing := range rows {
			if self != nil && sameRow(existing, self) {
				continue
			}
			if sameValues(existing, candidate, cols) {
				return &Error{
					Op:    "insert",
					Table: table,
					Message: fmt.Sprintf(
						"duplicate key value violates unique constraint on (%s)",
						strings.Join(cols, ", "),
					),
					Err: ErrUniqueViolation,
				}
			}
		}
	}
	return nil
}

func sameRow(a, b Row) bool {
	return keyOf(a["id"]) == keyOf(b["id"])
}

func sameValues(a, b Row, columns []string) bool {
	for _, c := range columns {
		if !valuesEqual(a[c], b[c]) {
			return false
		}
	}
	return true
}

func matchesAll(row Row, filters []Filter) bool {
	for _, f := range filters {
		if !f.matches(row) {
			return false
		}
	}
	return true
}

func validateFilters(op, table string, filters []Filter) error {
	for _, f := range filters {
		if err := f.validate(); err != nil {
			return &Error{Op: op, Table: table, Message: err.Error(), Err: err}
		}
	}
	return nil
}

func requireFilters(op, table string, filters []Filter) error {
	if len(filters) == 0 {
		return &Error{
			Op:      op,
			Table:   table,
			Message: fmt.Sprintf("refusing to %s without filters", op),
		}
	}
	return validateFilters(op, table, filters)
}

func sortRows(rows []Row, orders []Order) {
	if len(orders) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range orders {
			a, b := rows[i][o.Column], rows[j][o.Column]
			// nulls last, as postgres does for ascending order
			if a == nil || b == nil {
				if a == nil && b == nil {
					continue
				}
				return (b == nil) != o.Desc
			}
			c, ok := compareValues(a, b)
			if !ok || c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
