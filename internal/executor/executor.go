// Package executor runs annotated query plans and shapes the results into
// pages. The counting strategy issues exactly two round-trips (data + count);
// the probe strategy issues one, requesting a single row past the window.
package executor

import (
	"context"

	"graphql-pager/internal/dbexec"
	"graphql-pager/internal/pagerr"
	"graphql-pager/internal/planner"
)

// Page is an executed pagination window. Total is present only under the
// counting strategy. Items are generic row maps keyed by column name.
type Page struct {
	Items       []map[string]interface{}
	Total       *int
	CurrentPage int
	PerPage     int
	Offset      int
	HasMore     bool
}

// Run executes a plan and returns the resulting page. Data-source failures
// surface as ExecutionErrors, unchanged and unretried.
func Run(ctx context.Context, exec dbexec.QueryExecutor, plan *planner.Plan) (*Page, error) {
	items, err := queryRows(ctx, exec, plan.Query)
	if err != nil {
		return nil, err
	}

	page := &Page{
		CurrentPage: plan.Window.Page,
		PerPage:     plan.Window.PerPage,
		Offset:      plan.Window.Offset(),
	}

	if plan.Counted {
		total, err := queryCount(ctx, exec, plan.Count)
		if err != nil {
			return nil, err
		}
		page.Items = items
		page.Total = &total
		page.HasMore = plan.Window.Page*plan.Window.PerPage < total
	} else {
		page.HasMore = len(items) > plan.Window.PerPage
		if page.HasMore {
			items = items[:plan.Window.PerPage]
		}
		page.Items = items
	}

	// An empty result set reports page 1 of 1, never a phantom window.
	if len(page.Items) == 0 && (page.Total == nil || *page.Total == 0) {
		page.CurrentPage = 1
		page.Offset = 0
	}

	return page, nil
}

func queryRows(ctx context.Context, exec dbexec.QueryExecutor, query planner.SQLQuery) ([]map[string]interface{}, error) {
	rows, err := exec.QueryContext(ctx, query.SQL, query.Args...)
	if err != nil {
		return nil, pagerr.Execution(err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, pagerr.Execution(err)
	}

	items := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		dests := make([]interface{}, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, pagerr.Execution(err)
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i])
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, pagerr.Execution(err)
	}
	return items, nil
}

func queryCount(ctx context.Context, exec dbexec.QueryExecutor, query planner.SQLQuery) (int, error) {
	rows, err := exec.QueryContext(ctx, query.SQL, query.Args...)
	if err != nil {
		return 0, pagerr.Execution(err)
	}
	defer func() { _ = rows.Close() }()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, pagerr.Execution(err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, pagerr.Execution(err)
	}
	return count, nil
}

// convertValue normalizes driver values for map results. MySQL returns
// text-protocol values as []byte.
func convertValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []byte:
		return string(val)
	default:
		return val
	}
}
