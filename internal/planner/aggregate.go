package planner

import (
	"fmt"

	"graphql-pager/internal/pagerr"
	"graphql-pager/internal/sortable"
	"graphql-pager/internal/sqlutil"
)

// AggregateExpr is a correlated scalar expression usable as an ORDER BY term.
// The expression yields exactly one value per outer row, regardless of how
// many related rows exist, so it never changes the outer row cardinality.
type AggregateExpr struct {
	SQL string
	// NullsLast is set for AVG/MIN/MAX, which yield SQL NULL over empty
	// relations. Callers emit an IS NULL guard term first so NULLs sort
	// after values for both ASC and DESC.
	NullsLast bool
}

// CompileAggregate compiles an aggregate reference over a relation chain into
// a correlated scalar subquery against the outer table. Each hop of the chain
// is correlated to its immediate parent through a membership subquery; the
// chain is never flattened into a single join.
func CompileAggregate(outer Table, rel *Relation, ref *sortable.AggregateRef) (*AggregateExpr, error) {
	if rel == nil {
		return nil, pagerr.Definitionf("aggregate sort on table %q references an unregistered relation %q", outer.Name, ref.Relation)
	}

	leaf := rel
	condition := hopCondition(rel, outer.Name, rel.LocalColumn)
	for leaf.Child != nil {
		child := leaf.Child
		// Related rows of the child hop are those whose FK is a member of
		// the parent hop's correlated row set.
		membership := fmt.Sprintf(
			"SELECT %s FROM %s WHERE %s",
			sqlutil.Qualify(leaf.Table, child.LocalColumn),
			sqlutil.QuoteIdentifier(leaf.Table),
			condition,
		)
		condition = fmt.Sprintf("%s IN (%s)", sqlutil.Qualify(child.Table, child.RemoteColumn), membership)
		leaf = child
	}

	selectExpr, nullsLast, err := aggregateSelect(leaf.Table, ref)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(
		"(SELECT %s FROM %s WHERE %s)",
		selectExpr,
		sqlutil.QuoteIdentifier(leaf.Table),
		condition,
	)
	return &AggregateExpr{SQL: sql, NullsLast: nullsLast}, nil
}

func hopCondition(rel *Relation, parentTable, parentColumn string) string {
	return fmt.Sprintf(
		"%s = %s",
		sqlutil.Qualify(rel.Table, rel.RemoteColumn),
		sqlutil.Qualify(parentTable, parentColumn),
	)
}

// aggregateSelect returns the aggregate SELECT expression for the leaf table
// and whether the result needs NULLS LAST ordering. COUNT and SUM have a
// defined neutral value of 0 over empty relations.
func aggregateSelect(table string, ref *sortable.AggregateRef) (string, bool, error) {
	switch ref.Func {
	case sortable.Count:
		return "COUNT(*)", false, nil
	case sortable.Sum:
		return fmt.Sprintf("COALESCE(SUM(%s), 0)", sqlutil.Qualify(table, ref.Column)), false, nil
	case sortable.Avg, sortable.Min, sortable.Max:
		return fmt.Sprintf("%s(%s)", ref.Func, sqlutil.Qualify(table, ref.Column)), true, nil
	default:
		return "", false, pagerr.Validationf("unknown aggregate function %q", ref.Func)
	}
}
