package rowstore

import "context"

// Store is a generic tabular store. Every failure is returned as *Error.
type Store interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	// SelectWithJoin embeds under j.As the rows of j.Table whose j.ForeignKey
	// equals the parent's j.LocalKey. Parent and child are fetched in separate
	// round trips.
	SelectWithJoin(ctx context.Context, table string, q Query, j Join) ([]Row, error)
	Insert(ctx context.Context, table string, rows ...Row) ([]Row, error)
	Update(ctx context.Context, table string, patch Row, filters ...Filter) ([]Row, error)
	Upsert(ctx context.Context, table string, row Row, conflictKeys ...string) (Row, error)
	Delete(ctx context.Context, table string, filters ...Filter) error
}

// Selector is the read half of Store.
type Selector interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
}
