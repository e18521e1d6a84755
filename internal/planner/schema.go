package planner

import (
	"github.com/jinzhu/inflection"

	"graphql-pager/internal/pagerr"
)

// Table describes a relational source a query plan selects from.
type Table struct {
	Name       string
	PrimaryKey string
}

// Relation declares one hop from a parent entity to a related collection.
// LocalColumn lives on the parent side; RemoteColumn is the foreign key on
// Table pointing back at the parent. Child chains a further hop, correlated
// to this relation's table.
type Relation struct {
	Name         string
	Table        string
	LocalColumn  string
	RemoteColumn string
	Child        *Relation
}

// DefineRelation builds a relation declaration for a parent table, deriving
// the related table name (pluralized relation name) and foreign key column
// (singular parent name + "_id") when they are not set explicitly.
func DefineRelation(parent Table, rel Relation) (*Relation, error) {
	if rel.Name == "" {
		return nil, pagerr.Definitionf("relation on table %q requires a name", parent.Name)
	}
	if rel.Table == "" {
		rel.Table = inflection.Plural(rel.Name)
	}
	if rel.LocalColumn == "" {
		rel.LocalColumn = parent.PrimaryKey
	}
	if rel.LocalColumn == "" {
		return nil, pagerr.Definitionf("relation %q on table %q has no local column and the table has no primary key", rel.Name, parent.Name)
	}
	if rel.RemoteColumn == "" {
		rel.RemoteColumn = inflection.Singular(parent.Name) + "_id"
	}
	if rel.Child != nil {
		// Nested hops correlate to the immediate parent table; its key
		// defaults to "id" unless the child hop names a local column.
		child, err := DefineRelation(Table{Name: rel.Table, PrimaryKey: "id"}, *rel.Child)
		if err != nil {
			return nil, err
		}
		rel.Child = child
	}
	return &rel, nil
}
