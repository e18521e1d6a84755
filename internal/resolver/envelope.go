package resolver

import (
	"graphql-pager/internal/cursor"
	"graphql-pager/internal/executor"
)

// PaginatorEnvelope shapes an executed page into the offset-paginator output:
// paginatorInfo metadata plus the data list. firstItem and lastItem are
// 1-based absolute positions, nil for an empty page. lastPage defaults to 1
// when no total is known (non-counting strategy).
func PaginatorEnvelope(page *executor.Page) map[string]interface{} {
	count := len(page.Items)

	var firstItem, lastItem interface{}
	if count > 0 {
		firstItem = page.Offset + 1
		lastItem = page.Offset + count
	}

	var total interface{}
	lastPage := 1
	if page.Total != nil {
		total = *page.Total
		if *page.Total > 0 {
			lastPage = (*page.Total + page.PerPage - 1) / page.PerPage
		}
	}

	return map[string]interface{}{
		"paginatorInfo": map[string]interface{}{
			"count":        count,
			"currentPage":  page.CurrentPage,
			"firstItem":    firstItem,
			"lastItem":     lastItem,
			"lastPage":     lastPage,
			"perPage":      page.PerPage,
			"total":        total,
			"hasMorePages": page.HasMore,
		},
		"data": page.Items,
	}
}

// ConnectionEnvelope shapes an executed page into a cursor connection. The
// cursor for the edge at local index i encodes the absolute offset of that
// row, so decoding it recovers the position for subsequent-page requests.
func ConnectionEnvelope(page *executor.Page, typeName string) map[string]interface{} {
	edges := make([]map[string]interface{}, len(page.Items))
	for i, row := range page.Items {
		edges[i] = map[string]interface{}{
			"node":   row,
			"cursor": cursor.Encode(typeName, page.Offset+i),
		}
	}

	var startCursor, endCursor interface{}
	if len(edges) > 0 {
		startCursor = edges[0]["cursor"]
		endCursor = edges[len(edges)-1]["cursor"]
	}

	var total interface{}
	lastPage := 1
	if page.Total != nil {
		total = *page.Total
		if *page.Total > 0 {
			lastPage = (*page.Total + page.PerPage - 1) / page.PerPage
		}
	}

	return map[string]interface{}{
		"pageInfo": map[string]interface{}{
			"hasNextPage":     page.HasMore,
			"hasPreviousPage": page.Offset > 0,
			"startCursor":     startCursor,
			"endCursor":       endCursor,
			"currentPage":     page.CurrentPage,
			"lastPage":        lastPage,
			"count":           len(edges),
			"total":           total,
		},
		"edges": edges,
	}
}
