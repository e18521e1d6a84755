package resolver

import (
	"graphql-pager/internal/pagerr"
	"graphql-pager/internal/sortable"
)

// parseOrderByArg converts the raw GraphQL orderBy argument into sort
// entries. Each entry is an input object naming either a column or a
// relation aggregate, plus a direction:
//
//	{column: "name", order: ASC}
//	{relation: "posts", aggregate: COUNT, order: DESC}
//	{relation: "posts", aggregate: AVG, column: "views", order: DESC}
func parseOrderByArg(raw interface{}) ([]sortable.Entry, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, pagerr.Validationf("orderBy must be a list of input objects")
	}

	entries := make([]sortable.Entry, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, pagerr.Validationf("orderBy entries must be input objects")
		}

		entry := sortable.Entry{}
		if order, ok := obj["order"]; ok {
			direction, ok := order.(string)
			if !ok {
				return nil, pagerr.Validationf("orderBy order must be ASC or DESC")
			}
			entry.Direction = direction
		}

		column, _ := obj["column"].(string)
		relation, hasRelation := obj["relation"].(string)
		aggregate, hasAggregate := obj["aggregate"].(string)

		switch {
		case hasRelation || hasAggregate:
			if !hasRelation || !hasAggregate {
				return nil, pagerr.Validationf("orderBy aggregate entries require both relation and aggregate")
			}
			entry.Aggregate = &sortable.AggregateEntry{
				Relation: relation,
				Func:     aggregate,
				Column:   column,
			}
		case column != "":
			entry.Column = column
		default:
			return nil, pagerr.Validationf("orderBy entries require a column or a relation aggregate")
		}

		entries = append(entries, entry)
	}
	return entries, nil
}
