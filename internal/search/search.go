// Package search provides a full-text-search-backed query builder that
// satisfies the same capability set as the relational builder, so the
// annotator and executor consume it polymorphically.
package search

import (
	"strings"

	"graphql-pager/internal/pagerr"
	"graphql-pager/internal/planner"
	"graphql-pager/internal/sqlutil"
)

// Builder scopes a query to rows matching a full-text search expression.
// It extends the relational builder with a MATCH ... AGAINST predicate, so
// ordering, windowing, and counting behave exactly as on the default source.
type Builder struct {
	*planner.SQLBuilder
}

// NewBuilder creates a search-scoped builder over the table's full-text
// index columns.
func NewBuilder(table planner.Table, indexColumns []string, query string) (*Builder, error) {
	if len(indexColumns) == 0 {
		return nil, pagerr.Definitionf("search on table %q requires full-text index columns", table.Name)
	}
	if strings.TrimSpace(query) == "" {
		return nil, pagerr.Validationf("search query must not be empty")
	}

	quoted := make([]string, len(indexColumns))
	for i, col := range indexColumns {
		quoted[i] = sqlutil.QuoteIdentifier(col)
	}

	b := &Builder{SQLBuilder: planner.NewSQLBuilder(table)}
	b.Where(
		"MATCH ("+strings.Join(quoted, ", ")+") AGAINST (? IN NATURAL LANGUAGE MODE)",
		query,
	)
	return b, nil
}
