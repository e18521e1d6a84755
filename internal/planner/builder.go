package planner

import (
	sq "github.com/Masterminds/squirrel"

	"graphql-pager/internal/pagerr"
	"graphql-pager/internal/sortable"
	"graphql-pager/internal/sqlutil"
)

// SQLQuery represents a planned SQL statement with bound args.
type SQLQuery struct {
	SQL  string
	Args []interface{}
}

// Builder is the minimal capability set the annotator needs from a query
// source: add predicates, add order terms, bound the window, and produce the
// main and count statements. Relational and search-engine-backed sources both
// implement it; callers may substitute any implementation.
type Builder interface {
	Where(pred string, args ...interface{})
	OrderBy(expr string, direction sortable.Direction)
	LimitOffset(limit, offset uint64)
	Build() (SQLQuery, error)
	CountQuery() (SQLQuery, error)
}

// SQLBuilder is the default relational Builder backed by squirrel.
type SQLBuilder struct {
	table      string
	conditions []sq.Sqlizer
	orders     []string
	limit      *uint64
	offset     *uint64
}

// NewSQLBuilder creates an unscoped builder over a root table.
func NewSQLBuilder(table Table) *SQLBuilder {
	return &SQLBuilder{table: table.Name}
}

// NewRelationBuilder creates a builder scoped to one parent entity's related
// collection: rows of the relation's table whose foreign key matches the
// parent's key value. Each nested resolution owns its own instance; no handle
// is shared across nesting levels.
func NewRelationBuilder(rel *Relation, parentKey interface{}) (*SQLBuilder, error) {
	if rel == nil {
		return nil, pagerr.Definitionf("relation-scoped builder requires a relation declaration")
	}
	if parentKey == nil {
		return nil, pagerr.Validationf("relation %q requires a parent key value", rel.Name)
	}
	b := &SQLBuilder{table: rel.Table}
	b.conditions = append(b.conditions, sq.Eq{sqlutil.Qualify(rel.Table, rel.RemoteColumn): parentKey})
	return b, nil
}

func (b *SQLBuilder) Where(pred string, args ...interface{}) {
	b.conditions = append(b.conditions, sq.Expr(pred, args...))
}

func (b *SQLBuilder) OrderBy(expr string, direction sortable.Direction) {
	b.orders = append(b.orders, expr+" "+string(direction))
}

func (b *SQLBuilder) LimitOffset(limit, offset uint64) {
	b.limit = &limit
	b.offset = &offset
}

// Build produces the main data statement with ordering and window applied.
func (b *SQLBuilder) Build() (SQLQuery, error) {
	builder := sq.Select(sqlutil.QuoteIdentifier(b.table) + ".*").
		From(sqlutil.QuoteIdentifier(b.table))
	for _, cond := range b.conditions {
		builder = builder.Where(cond)
	}
	if len(b.orders) > 0 {
		builder = builder.OrderBy(b.orders...)
	}
	if b.limit != nil {
		builder = builder.Limit(*b.limit)
	}
	if b.offset != nil && *b.offset > 0 {
		builder = builder.Offset(*b.offset)
	}

	query, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return SQLQuery{}, err
	}
	return SQLQuery{SQL: query, Args: args}, nil
}

// CountQuery produces the companion COUNT(*) statement: filters only, no
// ordering or window, so the total reflects the full filtered set.
func (b *SQLBuilder) CountQuery() (SQLQuery, error) {
	builder := sq.Select("COUNT(*)").From(sqlutil.QuoteIdentifier(b.table))
	for _, cond := range b.conditions {
		builder = builder.Where(cond)
	}

	query, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return SQLQuery{}, err
	}
	return SQLQuery{SQL: query, Args: args}, nil
}
