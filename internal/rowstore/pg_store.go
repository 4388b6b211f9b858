package rowstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/2beens/fitlife/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
)

var _ Store = (*PgStore)(nil)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgStore struct {
	db Querier
}

func NewPgStore(db Querier) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) Select(ctx context.Context, table string, q Query) (_ []Row, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "rowstore.pg.select")
	span.SetAttributes(attribute.String("table", table))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sql, args, err := buildSelect(table, q)
	if err != nil {
		return nil, newError("select", table, err)
	}
	return s.query(ctx, "select", table, sql, args)
}

func (s *PgStore) SelectWithJoin(ctx context.Context, table string, q Query, j Join) (_ []Row, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "rowstore.pg.selectWithJoin")
	span.SetAttributes(
		attribute.String("table", table),
		attribute.String("join", j.Table),
	)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return selectWithJoin(ctx, s, table, q, j)
}

func (s *PgStore) Insert(ctx context.Context, table string, rows ...Row) (_ []Row, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "rowstore.pg.insert")
	span.SetAttributes(
		attribute.String("table", table),
		attribute.Int("rows", len(rows)),
	)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sql, args, err := buildInsert(table, rows)
	if err != nil {
		return nil, newError("insert", table, err)
	}
	return s.query(ctx, "insert", table, sql, args)
}

func (s *PgStore) Update(ctx context.Context, table string, patch Row, filters ...Filter) (_ []Row, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "rowstore.pg.update")
	span.SetAttributes(attribute.String("table", table))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sql, args, err := buildUpdate(table, patch, filters)
	if err != nil {
		return nil, newError("update", table, err)
	}
	return s.query(ctx, "update", table, sql, args)
}

func (s *PgStore) Upsert(ctx context.Context, table string, row Row, conflictKeys ...string) (_ Row, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "rowstore.pg.upsert")
	span.SetAttributes(attribute.String("table", table))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sql, args, err := buildUpsert(table, row, conflictKeys)
	if err != nil {
		return nil, newError("upsert", table, err)
	}
	rows, err := s.query(ctx, "upsert", table, sql, args)
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, &Error{
			Op:      "upsert",
			Table:   table,
			Message: fmt.Sprintf("expected one row back, got %d", len(rows)),
		}
	}
	return rows[0], nil
}

func (s *PgStore) Delete(ctx context.Context, table string, filters ...Filter) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "rowstore.pg.delete")
	span.SetAttributes(attribute.String("table", table))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	sql, args, err := buildDelete(table, filters)
	if err != nil {
		return newError("delete", table, err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return newError("delete", table, err)
	}
	return nil
}

func (s *PgStore) query(ctx context.Context, op, table, sql string, args []any) ([]Row, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, newError(op, table, err)
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, newError(op, table, err)
	}

	res := make([]Row, 0, len(maps))
	for _, m := range maps {
		res = append(res, m)
	}
	return res, nil
}

type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func (b *sqlBuilder) where(filters []Filter) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}

	conds := make([]string, 0, len(filters))
	for _, f := range filters {
		if err := f.validate(); err != nil {
			return "", err
		}
		col := ident(f.Column)
		switch f.Op {
		case OpEq:
			if f.Value == nil {
				conds = append(conds, col+" IS NULL")
			} else {
				conds = append(conds, col+" = "+b.arg(f.Value))
			}
		case OpIn:
			conds = append(conds, col+" = ANY("+b.arg(f.Value)+")")
		case OpGte:
			conds = append(conds, col+" >= "+b.arg(f.Value))
		case OpLte:
			conds = append(conds, col+" <= "+b.arg(f.Value))
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), nil
}

func buildSelect(table string, q Query) (string, []any, error) {
	b := &sqlBuilder{}
	where, err := b.where(q.Filters)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(ident(table))
	sb.WriteString(where)
	if len(q.Order) > 0 {
		orders := make([]string, 0, len(q.Order))
		for _, o := range q.Order {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			orders = append(orders, ident(o.Column)+" "+dir)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(orders, ", "))
	}
	if q.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", q.Limit))
	}
	return sb.String(), b.args, nil
}

func sortedColumns(rows ...Row) []string {
	seen := map[string]bool{}
	var cols []string
	for _, r := range rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

func identList(cols []string) string {
	quoted := make([]string, 0, len(cols))
	for _, c := range cols {
		quoted = append(quoted, ident(c))
	}
	return strings.Join(quoted, ", ")
}

// buildInsert writes all rows in one statement; columns a row lacks get DEFAULT.
func buildInsert(table string, rows []Row) (string, []any, error) {
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("nothing to insert")
	}
	cols := sortedColumns(rows...)
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("rows have no columns")
	}

	b := &sqlBuilder{}
	tuples := make([]string, 0, len(rows))
	for _, r := range rows {
		vals := make([]string, 0, len(cols))
		for _, c := range cols {
			v, ok := r[c]
			if !ok {
				vals = append(vals, "DEFAULT")
				continue
			}
			vals = append(vals, b.arg(v))
		}
		tuples = append(tuples, "("+strings.Join(vals, ", ")+")")
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s RETURNING *",
		ident(table), identList(cols), strings.Join(tuples, ", "),
	)
	return sql, b.args, nil
}

func buildUpdate(table string, patch Row, filters []Filter) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, fmt.Errorf("empty update")
	}
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("refusing to update without filters")
	}

	b := &sqlBuilder{}
	cols := sortedColumns(patch)
	sets := make([]string, 0, len(cols))
	for _, c := range cols {
		sets = append(sets, ident(c)+" = "+b.arg(patch[c]))
	}
	where, err := b.where(filters)
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf(
		"UPDATE %s SET %s%s RETURNING *",
		ident(table), strings.Join(sets, ", "), where,
	)
	return sql, b.args, nil
}

func buildUpsert(table string, row Row, conflictKeys []string) (string, []any, error) {
	if len(conflictKeys) == 0 {
		return "", nil, fmt.Errorf("upsert needs conflict keys")
	}
	isKey := map[string]bool{}
	for _, k := range conflictKeys {
		if _, ok := row[k]; !ok {
			return "", nil, fmt.Errorf("conflict key %q not set", k)
		}
		isKey[k] = true
	}

	cols := sortedColumns(row)
	b := &sqlBuilder{}
	vals := make([]string, 0, len(cols))
	var updates []string
	for _, c := range cols {
		vals = append(vals, b.arg(row[c]))
		if !isKey[c] && c != "id" && c != "created_at" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", ident(c), ident(c)))
		}
	}
	// DO NOTHING would return no row on conflict
	if len(updates) == 0 {
		k := ident(conflictKeys[0])
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", k, k))
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING *",
		ident(table), identList(cols), strings.Join(vals, ", "),
		identList(conflictKeys), strings.Join(updates, ", "),
	)
	return sql, b.args, nil
}

func buildDelete(table string, filters []Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("refusing to delete without filters")
	}
	b := &sqlBuilder{}
	where, err := b.where(filters)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + ident(table) + where, b.args, nil
}
