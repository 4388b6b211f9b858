package rowstore

import "fmt"

type FilterOp string

const (
	OpEq  FilterOp = "eq"
	OpIn  FilterOp = "in"
	OpGte FilterOp = "gte"
	OpLte FilterOp = "lte"
)

type Filter struct {
	Column string
	Op     FilterOp
	Value  any
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// In matches rows whose column equals any of values. An empty list matches nothing.
func In[T any](column string, values []T) Filter {
	vals := make([]any, 0, len(values))
	for _, v := range values {
		vals = append(vals, v)
	}
	return Filter{Column: column, Op: OpIn, Value: vals}
}

func Gte(column string, value any) Filter {
	return Filter{Column: column, Op: OpGte, Value: value}
}

func Lte(column string, value any) Filter {
	return Filter{Column: column, Op: OpLte, Value: value}
}

func (f Filter) String() string {
	return fmt.Sprintf("%s %s %v", f.Column, f.Op, f.Value)
}

type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order {
	return Order{Column: column}
}

func Desc(column string) Order {
	return Order{Column: column, Desc: true}
}

type Query struct {
	Filters []Filter
	Order   []Order
	// Limit of 0 means no limit.
	Limit int
}

func Where(filters ...Filter) Query {
	return Query{Filters: filters}
}

func (q Query) OrderBy(orders ...Order) Query {
	q.Order = append(append([]Order{}, q.Order...), orders...)
	return q
}

func (q Query) WithLimit(limit int) Query {
	q.Limit = limit
	return q
}

type Join struct {
	Table      string
	LocalKey   string
	ForeignKey string
	// As is the parent column the child rows are embedded under.
	As    string
	Query Query
}

func (f Filter) validate() error {
	if f.Column == "" {
		return fmt.Errorf("filter without column")
	}
	switch f.Op {
	case OpEq, OpGte, OpLte:
		return nil
	case OpIn:
		if _, ok := f.Value.([]any); !ok {
			return fmt.Errorf("filter %s: in expects a list", f.Column)
		}
		return nil
	default:
		return fmt.Errorf("filter %s: unknown op %q", f.Column, f.Op)
	}
}
