// Package sortable validates and normalizes declarative sort arguments.
// A sortable argument is declared once at schema build time with the columns
// a request may order by: an explicit allow-list, an enum-backed value
// mapping, or relation aggregates. Request-supplied entries are normalized
// into ordered directives whose sequence directly determines multi-column
// ORDER BY precedence.
package sortable

import (
	"strings"

	"graphql-pager/internal/pagerr"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// AggregateFunc identifies an aggregate over a related collection.
type AggregateFunc string

const (
	Count AggregateFunc = "COUNT"
	Sum   AggregateFunc = "SUM"
	Avg   AggregateFunc = "AVG"
	Min   AggregateFunc = "MIN"
	Max   AggregateFunc = "MAX"
)

// ParseDirection normalizes a raw direction string.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToUpper(raw) {
	case "", string(Asc):
		return Asc, nil
	case string(Desc):
		return Desc, nil
	default:
		return "", pagerr.Validationf("sort direction must be ASC or DESC, got %q", raw)
	}
}

// ParseAggregateFunc normalizes a raw aggregate function name.
func ParseAggregateFunc(raw string) (AggregateFunc, error) {
	switch strings.ToUpper(raw) {
	case string(Count):
		return Count, nil
	case string(Sum):
		return Sum, nil
	case string(Avg):
		return Avg, nil
	case string(Min):
		return Min, nil
	case string(Max):
		return Max, nil
	default:
		return "", pagerr.Validationf("unknown aggregate function %q", raw)
	}
}

// Entry is one request-supplied sort selector before normalization.
type Entry struct {
	Column    string
	Direction string
	// Aggregate selects a declared relation aggregate instead of a column.
	Aggregate *AggregateEntry
}

// AggregateEntry is the aggregate part of a request entry.
type AggregateEntry struct {
	Relation string
	Func     string
	Column   string
}

// AggregateRef is a normalized reference to an aggregate over a relation.
type AggregateRef struct {
	Relation string
	Func     AggregateFunc
	Column   string
}

// Directive is one normalized ORDER BY term. Exactly one of Column or
// Aggregate is set.
type Directive struct {
	Column    string
	Direction Direction
	Aggregate *AggregateRef
}

// Argument is the schema-build-time declaration of a sortable argument.
type Argument struct {
	name      string
	columns   map[string]struct{}
	enum      map[string]string
	relations map[string]struct{}
}

// Option customizes an Argument declaration.
type Option func(*Argument)

// WithColumns declares an explicit column allow-list.
func WithColumns(columns ...string) Option {
	return func(a *Argument) {
		a.columns = make(map[string]struct{}, len(columns))
		for _, col := range columns {
			a.columns[col] = struct{}{}
		}
	}
}

// WithEnum declares an enum-backed column source mapping enum values to
// column names.
func WithEnum(values map[string]string) Option {
	return func(a *Argument) {
		a.enum = make(map[string]string, len(values))
		for value, col := range values {
			a.enum[value] = col
		}
	}
}

// WithRelations declares the relation names a request may aggregate over.
func WithRelations(names ...string) Option {
	return func(a *Argument) {
		a.relations = make(map[string]struct{}, len(names))
		for _, name := range names {
			a.relations[name] = struct{}{}
		}
	}
}

// NewArgument builds a sortable argument declaration. Declaring both an
// explicit column allow-list and an enum-backed source is a definition-time
// error; the two are mutually exclusive.
func NewArgument(name string, opts ...Option) (*Argument, error) {
	arg := &Argument{name: name}
	for _, opt := range opts {
		opt(arg)
	}
	if arg.columns != nil && arg.enum != nil {
		return nil, pagerr.Definitionf(
			"sortable argument %q declares both an explicit column list and an enum-backed column source",
			name,
		)
	}
	return arg, nil
}

// Name returns the declared argument name.
func (a *Argument) Name() string { return a.name }

// Normalize validates request entries against the declaration and returns
// the normalized directives in the exact order supplied by the caller.
func (a *Argument) Normalize(entries []Entry) ([]Directive, error) {
	directives := make([]Directive, 0, len(entries))
	for _, entry := range entries {
		direction, err := ParseDirection(entry.Direction)
		if err != nil {
			return nil, err
		}

		if entry.Aggregate != nil {
			ref, err := a.normalizeAggregate(entry.Aggregate)
			if err != nil {
				return nil, err
			}
			directives = append(directives, Directive{Direction: direction, Aggregate: ref})
			continue
		}

		column, err := a.resolveColumn(entry.Column)
		if err != nil {
			return nil, err
		}
		directives = append(directives, Directive{Column: column, Direction: direction})
	}
	return directives, nil
}

func (a *Argument) resolveColumn(selector string) (string, error) {
	if selector == "" {
		return "", pagerr.Validationf("sortable argument %q requires a column selector", a.name)
	}
	if a.enum != nil {
		column, ok := a.enum[selector]
		if !ok {
			return "", pagerr.Validationf("value %q is not a member of the %q sort enum", selector, a.name)
		}
		return column, nil
	}
	if a.columns != nil {
		if _, ok := a.columns[selector]; !ok {
			return "", pagerr.Validationf("column %q is not sortable via argument %q", selector, a.name)
		}
		return selector, nil
	}
	// Unrestricted arguments pass column names through; the relational layer
	// is responsible for rejecting invalid identifiers.
	return selector, nil
}

func (a *Argument) normalizeAggregate(entry *AggregateEntry) (*AggregateRef, error) {
	if _, ok := a.relations[entry.Relation]; !ok {
		return nil, pagerr.Validationf("relation %q is not declared for sortable argument %q", entry.Relation, a.name)
	}
	fn, err := ParseAggregateFunc(entry.Func)
	if err != nil {
		return nil, err
	}
	switch fn {
	case Count:
		if entry.Column != "" {
			return nil, pagerr.Validationf("aggregate COUNT over %q must not name a column", entry.Relation)
		}
	default:
		if entry.Column == "" {
			return nil, pagerr.Validationf("aggregate %s over %q requires a column", fn, entry.Relation)
		}
	}
	return &AggregateRef{Relation: entry.Relation, Func: fn, Column: entry.Column}, nil
}
