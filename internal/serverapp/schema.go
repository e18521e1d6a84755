package serverapp

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"graphql-pager/internal/config"
	"graphql-pager/internal/planner"
	"graphql-pager/internal/resolver"
	"graphql-pager/internal/search"
	"graphql-pager/internal/sortable"
)

var sortOrderEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "SortOrder",
	Values: graphql.EnumValueConfigMap{
		"ASC":  &graphql.EnumValueConfig{Value: "ASC"},
		"DESC": &graphql.EnumValueConfig{Value: "DESC"},
	},
})

var aggregateFuncEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "AggregateFunction",
	Values: graphql.EnumValueConfigMap{
		"COUNT": &graphql.EnumValueConfig{Value: "COUNT"},
		"SUM":   &graphql.EnumValueConfig{Value: "SUM"},
		"AVG":   &graphql.EnumValueConfig{Value: "AVG"},
		"MIN":   &graphql.EnumValueConfig{Value: "MIN"},
		"MAX":   &graphql.EnumValueConfig{Value: "MAX"},
	},
})

var userOrderColumnEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "UserOrderColumn",
	Values: graphql.EnumValueConfigMap{
		"NAME":  &graphql.EnumValueConfig{Value: "NAME"},
		"EMAIL": &graphql.EnumValueConfig{Value: "EMAIL"},
		"TEAM":  &graphql.EnumValueConfig{Value: "TEAM"},
	},
})

var paginatorInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PaginatorInfo",
	Fields: graphql.Fields{
		"count":        &graphql.Field{Type: graphql.Int},
		"currentPage":  &graphql.Field{Type: graphql.Int},
		"firstItem":    &graphql.Field{Type: graphql.Int},
		"hasMorePages": &graphql.Field{Type: graphql.Boolean},
		"lastItem":     &graphql.Field{Type: graphql.Int},
		"lastPage":     &graphql.Field{Type: graphql.Int},
		"perPage":      &graphql.Field{Type: graphql.Int},
		"total":        &graphql.Field{Type: graphql.Int},
	},
})

var pageInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PageInfo",
	Fields: graphql.Fields{
		"hasNextPage":     &graphql.Field{Type: graphql.Boolean},
		"hasPreviousPage": &graphql.Field{Type: graphql.Boolean},
		"startCursor":     &graphql.Field{Type: graphql.String},
		"endCursor":       &graphql.Field{Type: graphql.String},
		"currentPage":     &graphql.Field{Type: graphql.Int},
		"lastPage":        &graphql.Field{Type: graphql.Int},
		"count":           &graphql.Field{Type: graphql.Int},
		"total":           &graphql.Field{Type: graphql.Int},
	},
})

// buildSchema assembles the demo schema: a three-level entity hierarchy with
// paginated fields at every level, each declared once as a FieldConfig and
// resolved through the shared resolver.
func buildSchema(cfg *config.Config, res *resolver.Resolver) (graphql.Schema, error) {
	defaults := planner.Defaults{
		DefaultCount: cfg.Pagination.DefaultCount,
		MaxCount:     cfg.Pagination.MaxCount,
	}

	usersTable := planner.Table{Name: "users", PrimaryKey: "id"}
	postsTable := planner.Table{Name: "posts", PrimaryKey: "id"}
	commentsTable := planner.Table{Name: "comments", PrimaryKey: "id"}

	postsRel := &planner.Relation{Name: "posts", Table: "posts", LocalColumn: "id", RemoteColumn: "user_id"}
	commentsRel := &planner.Relation{Name: "comments", Table: "comments", LocalColumn: "id", RemoteColumn: "post_id"}

	usersOrder, err := sortable.NewArgument("orderBy",
		sortable.WithEnum(map[string]string{
			"NAME":  "name",
			"EMAIL": "email",
			"TEAM":  "team_id",
		}),
		sortable.WithRelations("posts"),
	)
	if err != nil {
		return graphql.Schema{}, err
	}

	postsOrder, err := sortable.NewArgument("orderBy",
		sortable.WithColumns("id", "title", "views"),
		sortable.WithRelations("comments"),
	)
	if err != nil {
		return graphql.Schema{}, err
	}

	userOrderByInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UserOrderByClause",
		Fields: graphql.InputObjectConfigFieldMap{
			"column":    &graphql.InputObjectFieldConfig{Type: userOrderColumnEnum},
			"order":     &graphql.InputObjectFieldConfig{Type: sortOrderEnum},
			"relation":  &graphql.InputObjectFieldConfig{Type: graphql.String},
			"aggregate": &graphql.InputObjectFieldConfig{Type: aggregateFuncEnum},
		},
	})

	postOrderByInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PostOrderByClause",
		Fields: graphql.InputObjectConfigFieldMap{
			"column":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"order":     &graphql.InputObjectFieldConfig{Type: sortOrderEnum},
			"relation":  &graphql.InputObjectFieldConfig{Type: graphql.String},
			"aggregate": &graphql.InputObjectFieldConfig{Type: aggregateFuncEnum},
		},
	})

	commentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Comment",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.Int},
			"author": &graphql.Field{Type: graphql.String},
			"score":  &graphql.Field{Type: graphql.Int},
		},
	})

	commentPaginatorType := paginatorType("CommentPaginator", commentType)

	commentsCfg := &resolver.FieldConfig{
		Name:     "comments",
		TypeName: "Comment",
		Table:    commentsTable,
		Relation: commentsRel,
		Strategy: planner.StrategySimple,
		Defaults: defaults,
	}
	if err := commentsCfg.Validate(); err != nil {
		return graphql.Schema{}, err
	}

	postType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.Int},
			"title": &graphql.Field{Type: graphql.String},
			"body":  &graphql.Field{Type: graphql.String},
			"views": &graphql.Field{Type: graphql.Int},
			"comments": &graphql.Field{
				Type: commentPaginatorType,
				Args: windowArgs(nil),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return res.Resolve(p.Context, commentsCfg, parentRow(p), p.Args, fieldAST(p))
				},
			},
		},
	})

	postPaginatorType := paginatorType("PostPaginator", postType)

	postsCfg := &resolver.FieldConfig{
		Name:     "posts",
		TypeName: "Post",
		Table:    postsTable,
		Relation: postsRel,
		Relations: map[string]*planner.Relation{
			"comments": commentsRel,
		},
		Argument: postsOrder,
		Strategy: planner.StrategyPage,
		Defaults: defaults,
	}
	if err := postsCfg.Validate(); err != nil {
		return graphql.Schema{}, err
	}

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.Int},
			"name":  &graphql.Field{Type: graphql.String},
			"email": &graphql.Field{Type: graphql.String},
			"posts": &graphql.Field{
				Type: postPaginatorType,
				Args: windowArgs(postOrderByInput),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return res.Resolve(p.Context, postsCfg, parentRow(p), p.Args, fieldAST(p))
				},
			},
		},
	})

	userPaginatorType := paginatorType("UserPaginator", userType)
	userConnectionType := connectionType("User", userType)

	usersCfg := &resolver.FieldConfig{
		Name:     "users",
		TypeName: "User",
		Table:    usersTable,
		Relations: map[string]*planner.Relation{
			"posts": postsRel,
		},
		Argument: usersOrder,
		Strategy: planner.StrategyPage,
		Defaults: defaults,
	}
	if err := usersCfg.Validate(); err != nil {
		return graphql.Schema{}, err
	}

	usersConnectionCfg := &resolver.FieldConfig{
		Name:     "usersConnection",
		TypeName: "User",
		Table:    usersTable,
		Relations: map[string]*planner.Relation{
			"posts": postsRel,
		},
		Argument: usersOrder,
		Strategy: planner.StrategyConnection,
		Defaults: defaults,
	}
	if err := usersConnectionCfg.Validate(); err != nil {
		return graphql.Schema{}, err
	}

	searchPostsCfg := &resolver.FieldConfig{
		Name:     "searchPosts",
		TypeName: "Post",
		Table:    postsTable,
		Strategy: planner.StrategySimple,
		Defaults: defaults,
	}
	if err := searchPostsCfg.Validate(); err != nil {
		return graphql.Schema{}, err
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"users": &graphql.Field{
				Type: userPaginatorType,
				Args: windowArgs(userOrderByInput),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return res.Resolve(p.Context, usersCfg, nil, p.Args, fieldAST(p))
				},
			},
			"usersConnection": &graphql.Field{
				Type: userConnectionType,
				Args: connectionArgs(userOrderByInput),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return res.Resolve(p.Context, usersConnectionCfg, nil, p.Args, fieldAST(p))
				},
			},
			"searchPosts": &graphql.Field{
				Type: postPaginatorType,
				Args: searchArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					query, _ := p.Args["query"].(string)
					cfg := *searchPostsCfg
					cfg.Builder = func(parent map[string]interface{}) (planner.Builder, error) {
						return search.NewBuilder(postsTable, []string{"title", "body"}, query)
					}
					return res.Resolve(p.Context, &cfg, nil, p.Args, fieldAST(p))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

func paginatorType(name string, item *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"data":          &graphql.Field{Type: graphql.NewList(item)},
			"paginatorInfo": &graphql.Field{Type: paginatorInfoType},
		},
	})
}

func connectionType(name string, item *graphql.Object) *graphql.Object {
	edge := graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Edge",
		Fields: graphql.Fields{
			"node":   &graphql.Field{Type: item},
			"cursor": &graphql.Field{Type: graphql.String},
		},
	})
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Connection",
		Fields: graphql.Fields{
			"edges":    &graphql.Field{Type: graphql.NewList(edge)},
			"pageInfo": &graphql.Field{Type: pageInfoType},
		},
	})
}

func windowArgs(orderBy *graphql.InputObject) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		"first": &graphql.ArgumentConfig{Type: graphql.Int},
		"page":  &graphql.ArgumentConfig{Type: graphql.Int},
	}
	if orderBy != nil {
		args["orderBy"] = &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(orderBy))}
	}
	return args
}

func connectionArgs(orderBy *graphql.InputObject) graphql.FieldConfigArgument {
	args := windowArgs(orderBy)
	args["after"] = &graphql.ArgumentConfig{Type: graphql.String}
	return args
}

func searchArgs() graphql.FieldConfigArgument {
	args := windowArgs(nil)
	args["query"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}
	return args
}

func parentRow(p graphql.ResolveParams) map[string]interface{} {
	row, _ := p.Source.(map[string]interface{})
	return row
}

func fieldAST(p graphql.ResolveParams) *ast.Field {
	if len(p.Info.FieldASTs) > 0 {
		return p.Info.FieldASTs[0]
	}
	return nil
}
