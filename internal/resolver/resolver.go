// Package resolver exposes the pagination engine's entry point to GraphQL
// field resolution. Each pagination-capable field is declared once at schema
// build time as a FieldConfig; at request time Resolve validates arguments,
// annotates a query, executes it, and shapes the result into the declared
// envelope. Nested paginated fields re-enter Resolve per parent row with an
// independent relation-scoped builder.
package resolver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql/language/ast"

	"graphql-pager/internal/dbexec"
	"graphql-pager/internal/executor"
	"graphql-pager/internal/logging"
	"graphql-pager/internal/observability"
	"graphql-pager/internal/pagerr"
	"graphql-pager/internal/planner"
	"graphql-pager/internal/sortable"
)

// BuilderFunc supplies a custom query source in place of the default scope.
// The parent row is nil for root fields.
type BuilderFunc func(parent map[string]interface{}) (planner.Builder, error)

// FieldConfig is the immutable schema-build-time declaration of one
// pagination-capable field. It is referenced, never re-parsed, at request
// time.
type FieldConfig struct {
	Name     string
	TypeName string
	Table    planner.Table
	// Relation scopes the field to one parent entity's related collection.
	Relation *planner.Relation
	// Relations registers the aggregate-sortable relations by name.
	Relations map[string]*planner.Relation
	// Argument declares the sortable argument; nil means not sortable.
	Argument *sortable.Argument
	Strategy planner.Strategy
	Defaults planner.Defaults
	// Builder overrides the default query scope when set.
	Builder BuilderFunc
}

// Validate checks the declaration once, before any request is served.
func (cfg *FieldConfig) Validate() error {
	if cfg.Table.Name == "" {
		return pagerr.Definitionf("field %q declares no table", cfg.Name)
	}
	switch cfg.Strategy {
	case planner.StrategyPage, planner.StrategySimple, planner.StrategyConnection:
	default:
		return pagerr.Definitionf("field %q declares unknown pagination strategy %q", cfg.Name, cfg.Strategy)
	}
	if cfg.Defaults.DefaultCount <= 0 {
		return pagerr.Definitionf("field %q has no resolvable default count", cfg.Name)
	}
	if cfg.Strategy == planner.StrategyConnection && cfg.TypeName == "" {
		return pagerr.Definitionf("field %q needs a type name for cursor identity", cfg.Name)
	}
	return nil
}

// Resolver executes pagination-capable field resolutions. It holds no
// request state; every resolution is independently scoped, so concurrent
// resolutions of unrelated fields are safe.
type Resolver struct {
	executor dbexec.QueryExecutor
	metrics  *observability.PaginationMetrics
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithMetrics records pagination metrics on every resolution.
func WithMetrics(m *observability.PaginationMetrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// New creates a resolver executing against the given data source.
func New(exec dbexec.QueryExecutor, opts ...Option) *Resolver {
	r := &Resolver{executor: exec}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve is the single entry point per pagination-capable field. parent is
// the parent row map for nested fields (nil at the root); field is the
// GraphQL field AST when available, used to skip the count round-trip for
// connections that do not request totals.
func (r *Resolver) Resolve(ctx context.Context, cfg *FieldConfig, parent map[string]interface{}, args map[string]interface{}, field *ast.Field) (map[string]interface{}, error) {
	started := time.Now()
	logger := logging.FromContext(ctx).WithFields(
		"resolution_id", uuid.NewString(),
		"field", cfg.Name,
	)

	directives, err := r.normalizeOrder(cfg, args)
	if err != nil {
		return nil, err
	}

	window, err := parseWindow(cfg, args)
	if err != nil {
		return nil, err
	}

	builder, err := r.builderFor(cfg, parent)
	if err != nil {
		return nil, err
	}

	var opts []planner.AnnotateOption
	if cfg.Strategy == planner.StrategyConnection && !connectionWantsTotal(field) {
		opts = append(opts, planner.WithoutTotal())
	}

	plan, err := planner.Annotate(builder, cfg.Table, cfg.Relations, directives, *window, opts...)
	if err != nil {
		return nil, err
	}

	page, err := executor.Run(ctx, r.executor, plan)
	if err != nil {
		logger.Error("pagination query failed", "error", err)
		return nil, err
	}

	logger.Debug("resolved paginated field",
		"strategy", string(cfg.Strategy),
		"page", page.CurrentPage,
		"rows", len(page.Items),
	)
	if r.metrics != nil {
		r.metrics.RecordResolution(ctx, string(cfg.Strategy), len(page.Items), time.Since(started))
	}

	if cfg.Strategy == planner.StrategyConnection {
		return ConnectionEnvelope(page, cfg.TypeName), nil
	}
	return PaginatorEnvelope(page), nil
}

func (r *Resolver) normalizeOrder(cfg *FieldConfig, args map[string]interface{}) ([]sortable.Directive, error) {
	if cfg.Argument == nil {
		return nil, nil
	}
	entries, err := parseOrderByArg(args[cfg.Argument.Name()])
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return cfg.Argument.Normalize(entries)
}

func (r *Resolver) builderFor(cfg *FieldConfig, parent map[string]interface{}) (planner.Builder, error) {
	if cfg.Builder != nil {
		return cfg.Builder(parent)
	}
	if cfg.Relation != nil {
		if parent == nil {
			return nil, pagerr.Validationf("field %q requires a parent row", cfg.Name)
		}
		return planner.NewRelationBuilder(cfg.Relation, parent[cfg.Relation.LocalColumn])
	}
	return planner.NewSQLBuilder(cfg.Table), nil
}

func parseWindow(cfg *FieldConfig, args map[string]interface{}) (*planner.Window, error) {
	count, err := intArg(args, "first")
	if err != nil {
		return nil, err
	}
	page, err := intArg(args, "page")
	if err != nil {
		return nil, err
	}

	if cfg.Strategy == planner.StrategyConnection {
		after, err := stringArg(args, "after")
		if err != nil {
			return nil, err
		}
		return planner.ParseConnectionWindow(cfg.TypeName, count, page, after, cfg.Defaults)
	}
	return planner.ParseWindow(cfg.Strategy, count, page, cfg.Defaults)
}

func intArg(args map[string]interface{}, key string) (*int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case int:
		return &v, nil
	case int64:
		i := int(v)
		return &i, nil
	case float64:
		i := int(v)
		if float64(i) != v {
			return nil, pagerr.Validationf("%s must be an integer", key)
		}
		return &i, nil
	default:
		return nil, pagerr.Validationf("%s must be an integer", key)
	}
}

func stringArg(args map[string]interface{}, key string) (*string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, pagerr.Validationf("%s must be a string", key)
	}
	return &s, nil
}

// connectionWantsTotal reports whether the connection selection requests a
// field that needs the count query (pageInfo.total or pageInfo.lastPage).
// A nil field conservatively counts.
func connectionWantsTotal(field *ast.Field) bool {
	if field == nil || field.SelectionSet == nil {
		return true
	}
	for _, selection := range field.SelectionSet.Selections {
		sel, ok := selection.(*ast.Field)
		if !ok || sel.Name == nil || sel.Name.Value != "pageInfo" || sel.SelectionSet == nil {
			continue
		}
		for _, inner := range sel.SelectionSet.Selections {
			f, ok := inner.(*ast.Field)
			if !ok || f.Name == nil {
				continue
			}
			switch f.Name.Value {
			case "total", "lastPage":
				return true
			}
		}
	}
	return false
}
