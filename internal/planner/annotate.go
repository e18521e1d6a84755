package planner

import (
	"graphql-pager/internal/cursor"
	"graphql-pager/internal/pagerr"
	"graphql-pager/internal/sortable"
	"graphql-pager/internal/sqlutil"
)

// Strategy selects how a pagination window is executed and reported.
type Strategy string

const (
	// StrategyPage returns full page metadata including a total count.
	StrategyPage Strategy = "PAGE"
	// StrategySimple skips the count query and probes for a next page.
	StrategySimple Strategy = "SIMPLE"
	// StrategyConnection returns a cursor connection; it counts only when
	// the caller requests totals.
	StrategyConnection Strategy = "CONNECTION"
)

// Defaults carries the schema-configured pagination defaults.
type Defaults struct {
	DefaultCount int
	MaxCount     int
}

// Window is a validated pagination window. Page is 1-based; offset is the
// absolute position of the window's first row.
type Window struct {
	Strategy Strategy
	Page     int
	PerPage  int
	offset   int
}

// Offset returns the absolute offset of the window's first row.
func (w Window) Offset() int { return w.offset }

// ParseWindow validates count and page and builds a window. A nil count falls
// back to the configured default; a nil page defaults to 1. Non-positive
// values fail with ValidationError before any query executes.
func ParseWindow(strategy Strategy, count, page *int, d Defaults) (*Window, error) {
	perPage, err := resolveCount(count, d)
	if err != nil {
		return nil, err
	}

	p := 1
	if page != nil {
		p = *page
	}
	if p <= 0 {
		return nil, pagerr.Validationf("page must be a positive integer, got %d", p)
	}

	return &Window{
		Strategy: strategy,
		Page:     p,
		PerPage:  perPage,
		offset:   (p - 1) * perPage,
	}, nil
}

// ParseConnectionWindow builds a CONNECTION window from either a page number
// or an opaque cursor. A cursor decodes to the absolute offset the window
// starts at, so re-requesting from a cursor returns the item that produced
// it.
func ParseConnectionWindow(typeName string, count, page *int, after *string, d Defaults) (*Window, error) {
	if after == nil || *after == "" {
		return ParseWindow(StrategyConnection, count, page, d)
	}
	if page != nil {
		return nil, pagerr.Validationf("cannot combine a page number with a cursor")
	}

	perPage, err := resolveCount(count, d)
	if err != nil {
		return nil, err
	}
	cursorType, offset, err := cursor.Decode(*after)
	if err != nil {
		return nil, err
	}
	if err := cursor.Validate(typeName, cursorType); err != nil {
		return nil, err
	}

	return &Window{
		Strategy: StrategyConnection,
		Page:     offset/perPage + 1,
		PerPage:  perPage,
		offset:   offset,
	}, nil
}

func resolveCount(count *int, d Defaults) (int, error) {
	perPage := d.DefaultCount
	if count != nil {
		perPage = *count
	}
	if perPage <= 0 {
		return 0, pagerr.Validationf("count must be a positive integer, got %d", perPage)
	}
	if d.MaxCount > 0 && perPage > d.MaxCount {
		return 0, pagerr.Validationf("count %d exceeds the maximum of %d", perPage, d.MaxCount)
	}
	return perPage, nil
}

// Plan is an annotated, not-yet-executed query pair.
type Plan struct {
	Query  SQLQuery
	Count  SQLQuery
	Window Window
	// Counted marks the counting strategy: the executor runs the count
	// query and reports a total. When false the main query carries one
	// probe row past the window.
	Counted bool
}

type annotateOptions struct {
	skipTotal bool
}

// AnnotateOption customizes annotation behavior.
type AnnotateOption func(*annotateOptions)

// WithoutTotal skips the count query for CONNECTION windows whose callers did
// not request totals; the executor falls back to the probe-row strategy.
func WithoutTotal() AnnotateOption {
	return func(o *annotateOptions) {
		o.skipTotal = true
	}
}

// Annotate applies normalized sort directives and the pagination window onto
// a builder and returns the executable plan. Directives are applied in caller
// order; aggregate directives compile to correlated scalar subqueries against
// the outer table. No execution happens here.
func Annotate(b Builder, outer Table, relations map[string]*Relation, directives []sortable.Directive, w Window, opts ...AnnotateOption) (*Plan, error) {
	options := &annotateOptions{}
	for _, opt := range opts {
		opt(options)
	}

	for _, directive := range directives {
		if directive.Aggregate != nil {
			expr, err := CompileAggregate(outer, relations[directive.Aggregate.Relation], directive.Aggregate)
			if err != nil {
				return nil, err
			}
			if expr.NullsLast {
				// MySQL has no NULLS LAST; an IS NULL guard term sorts
				// empty-relation rows after valued rows either direction.
				b.OrderBy("("+expr.SQL+" IS NULL)", sortable.Asc)
			}
			b.OrderBy(expr.SQL, directive.Direction)
			continue
		}
		b.OrderBy(sqlutil.QuoteIdentifier(directive.Column), directive.Direction)
	}

	counted := w.Strategy == StrategyPage ||
		(w.Strategy == StrategyConnection && !options.skipTotal)

	limit := uint64(w.PerPage)
	if !counted {
		// One probe row past the window answers hasMore without a count.
		limit++
	}
	b.LimitOffset(limit, uint64(w.Offset()))

	query, err := b.Build()
	if err != nil {
		return nil, err
	}

	plan := &Plan{Query: query, Window: w, Counted: counted}
	if counted {
		count, err := b.CountQuery()
		if err != nil {
			return nil, err
		}
		plan.Count = count
	}
	return plan, nil
}
