package resolver

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"graphql-pager/internal/cursor"
	"graphql-pager/internal/dbexec"
	"graphql-pager/internal/pagerr"
	"graphql-pager/internal/planner"
	"graphql-pager/internal/search"
	"graphql-pager/internal/sortable"
)

func newMockResolver(t *testing.T) (*Resolver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(dbexec.NewStandardExecutor(db)), mock
}

func usersFieldConfig(t *testing.T) *FieldConfig {
	t.Helper()
	arg, err := sortable.NewArgument("orderBy", sortable.WithEnum(map[string]string{
		"NAME": "name",
		"TEAM": "team_id",
	}))
	require.NoError(t, err)
	cfg := &FieldConfig{
		Name:     "users",
		TypeName: "User",
		Table:    planner.Table{Name: "users", PrimaryKey: "id"},
		Argument: arg,
		Strategy: planner.StrategyPage,
		Defaults: planner.Defaults{DefaultCount: 25},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestResolve_PageStrategyWithEnumSort(t *testing.T) {
	r, mock := newMockResolver(t)
	cfg := usersFieldConfig(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT `users`.* FROM `users` ORDER BY `team_id` ASC, `name` ASC LIMIT 2",
	)).WillReturnRows(sqlmock.NewRows([]string{"id", "name", "team_id"}).
		AddRow(2, "bob", 1).
		AddRow(1, "ada", 2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(3))

	envelope, err := r.Resolve(context.Background(), cfg, nil, map[string]interface{}{
		"first": 2,
		"orderBy": []interface{}{
			map[string]interface{}{"column": "TEAM", "order": "ASC"},
			map[string]interface{}{"column": "NAME", "order": "ASC"},
		},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	info := envelope["paginatorInfo"].(map[string]interface{})
	require.Equal(t, 3, info["total"])
	require.Equal(t, true, info["hasMorePages"])
	data := envelope["data"].([]map[string]interface{})
	require.Len(t, data, 2)
	require.Equal(t, "bob", data[0]["name"])
}

func TestResolve_RejectsUnknownEnumValueBeforeQuerying(t *testing.T) {
	r, mock := newMockResolver(t)
	cfg := usersFieldConfig(t)

	_, err := r.Resolve(context.Background(), cfg, nil, map[string]interface{}{
		"first": 2,
		"orderBy": []interface{}{
			map[string]interface{}{"column": "SALARY", "order": "ASC"},
		},
	}, nil)
	require.Error(t, err)
	require.True(t, pagerr.IsValidation(err))
	// No round-trip may happen for an invalid request.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_AggregateSortKeepsOuterCardinality(t *testing.T) {
	r, mock := newMockResolver(t)
	arg, err := sortable.NewArgument("orderBy", sortable.WithRelations("posts"))
	require.NoError(t, err)
	cfg := &FieldConfig{
		Name:     "users",
		TypeName: "User",
		Table:    planner.Table{Name: "users", PrimaryKey: "id"},
		Relations: map[string]*planner.Relation{
			"posts": {Name: "posts", Table: "posts", LocalColumn: "id", RemoteColumn: "user_id"},
		},
		Argument: arg,
		Strategy: planner.StrategyPage,
		Defaults: planner.Defaults{DefaultCount: 25},
	}
	require.NoError(t, cfg.Validate())

	agg := "(SELECT COUNT(*) FROM `posts` WHERE `posts`.`user_id` = `users`.`id`)"
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT `users`.* FROM `users` ORDER BY "+agg+" DESC LIMIT 25",
	)).WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
		AddRow(2, "prolific").
		AddRow(1, "quiet"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(2))

	envelope, err := r.Resolve(context.Background(), cfg, nil, map[string]interface{}{
		"orderBy": []interface{}{
			map[string]interface{}{"relation": "posts", "aggregate": "COUNT", "order": "DESC"},
		},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	// Two users with related rows must yield exactly two rows, most
	// related first; the correlated subquery never duplicates the outer set.
	data := envelope["data"].([]map[string]interface{})
	require.Len(t, data, 2)
	require.Equal(t, "prolific", data[0]["name"])
}

func TestResolve_NestedPaginationIndependentWindows(t *testing.T) {
	r, mock := newMockResolver(t)

	usersCfg := &FieldConfig{
		Name:     "users",
		TypeName: "User",
		Table:    planner.Table{Name: "users", PrimaryKey: "id"},
		Strategy: planner.StrategyPage,
		Defaults: planner.Defaults{DefaultCount: 25},
	}
	postsCfg := &FieldConfig{
		Name:     "posts",
		TypeName: "Post",
		Table:    planner.Table{Name: "posts", PrimaryKey: "id"},
		Relation: &planner.Relation{Name: "posts", Table: "posts", LocalColumn: "id", RemoteColumn: "user_id"},
		Strategy: planner.StrategyPage,
		Defaults: planner.Defaults{DefaultCount: 25},
	}
	commentsCfg := &FieldConfig{
		Name:     "comments",
		TypeName: "Comment",
		Table:    planner.Table{Name: "comments", PrimaryKey: "id"},
		Relation: &planner.Relation{Name: "comments", Table: "comments", LocalColumn: "id", RemoteColumn: "post_id"},
		Strategy: planner.StrategyPage,
		Defaults: planner.Defaults{DefaultCount: 25},
	}

	// Parent list: page 1, size 2.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `users`.* FROM `users` LIMIT 2")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(4))

	usersEnvelope, err := r.Resolve(context.Background(), usersCfg, nil,
		map[string]interface{}{"first": 2, "page": 1}, nil)
	require.NoError(t, err)
	users := usersEnvelope["data"].([]map[string]interface{})
	require.Len(t, users, 2)
	require.Equal(t, 1, usersEnvelope["paginatorInfo"].(map[string]interface{})["currentPage"])

	// Child list for the first parent row: page 2, size 2 — its own window.
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT `posts`.* FROM `posts` WHERE `posts`.`user_id` = ? LIMIT 2 OFFSET 2",
	)).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(13, 1).AddRow(14, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `posts` WHERE `posts`.`user_id` = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(6))

	postsEnvelope, err := r.Resolve(context.Background(), postsCfg, users[0],
		map[string]interface{}{"first": 2, "page": 2}, nil)
	require.NoError(t, err)
	posts := postsEnvelope["data"].([]map[string]interface{})
	require.Len(t, posts, 2)
	require.Equal(t, 2, postsEnvelope["paginatorInfo"].(map[string]interface{})["currentPage"])

	// Grandchild list for the first child row: page 3, size 1.
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT `comments`.* FROM `comments` WHERE `comments`.`post_id` = ? LIMIT 1 OFFSET 2",
	)).WithArgs(int64(13)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id"}).AddRow(99, 13))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `comments` WHERE `comments`.`post_id` = ?")).
		WithArgs(int64(13)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(4))

	commentsEnvelope, err := r.Resolve(context.Background(), commentsCfg, posts[0],
		map[string]interface{}{"first": 1, "page": 3}, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	require.Equal(t, 3, commentsEnvelope["paginatorInfo"].(map[string]interface{})["currentPage"])
}

func TestResolve_ConnectionCursorRoundTrip(t *testing.T) {
	r, mock := newMockResolver(t)
	cfg := &FieldConfig{
		Name:     "users",
		TypeName: "User",
		Table:    planner.Table{Name: "users", PrimaryKey: "id"},
		Strategy: planner.StrategyConnection,
		Defaults: planner.Defaults{DefaultCount: 25},
	}
	require.NoError(t, cfg.Validate())

	// First window: connection totals requested (nil field counts).
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `users`.* FROM `users` LIMIT 2")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(4))

	first, err := r.Resolve(context.Background(), cfg, nil, map[string]interface{}{"first": 2}, nil)
	require.NoError(t, err)
	edges := first["edges"].([]map[string]interface{})
	require.Len(t, edges, 2)
	endCursor := first["pageInfo"].(map[string]interface{})["endCursor"].(string)

	_, offset, err := cursor.Decode(endCursor)
	require.NoError(t, err)
	require.Equal(t, 1, offset)

	// Re-request starting at the end cursor: the first returned edge is the
	// same item the cursor was produced for.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `users`.* FROM `users` LIMIT 2 OFFSET 1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(4))

	second, err := r.Resolve(context.Background(), cfg, nil, map[string]interface{}{
		"first": 2,
		"after": endCursor,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	secondEdges := second["edges"].([]map[string]interface{})
	require.Equal(t, edges[1]["node"].(map[string]interface{})["id"], secondEdges[0]["node"].(map[string]interface{})["id"])
	_, firstOffset, err := cursor.Decode(secondEdges[0]["cursor"].(string))
	require.NoError(t, err)
	require.Equal(t, 1, firstOffset)
}

func TestResolve_MalformedCursorFailsBeforeQuerying(t *testing.T) {
	r, mock := newMockResolver(t)
	cfg := &FieldConfig{
		Name:     "users",
		TypeName: "User",
		Table:    planner.Table{Name: "users", PrimaryKey: "id"},
		Strategy: planner.StrategyConnection,
		Defaults: planner.Defaults{DefaultCount: 25},
	}

	_, err := r.Resolve(context.Background(), cfg, nil, map[string]interface{}{
		"first": 2,
		"after": "not-a-cursor",
	}, nil)
	require.Error(t, err)
	require.True(t, pagerr.IsValidation(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_CustomSearchBuilder(t *testing.T) {
	r, mock := newMockResolver(t)
	table := planner.Table{Name: "posts", PrimaryKey: "id"}
	cfg := &FieldConfig{
		Name:     "searchPosts",
		TypeName: "Post",
		Table:    table,
		Strategy: planner.StrategySimple,
		Defaults: planner.Defaults{DefaultCount: 10},
		Builder: func(parent map[string]interface{}) (planner.Builder, error) {
			return search.NewBuilder(table, []string{"title", "body"}, "gophers")
		},
	}
	require.NoError(t, cfg.Validate())

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT `posts`.* FROM `posts` WHERE MATCH (`title`, `body`) AGAINST (? IN NATURAL LANGUAGE MODE) LIMIT 3",
	)).WithArgs("gophers").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(1, "why gophers"))

	envelope, err := r.Resolve(context.Background(), cfg, nil, map[string]interface{}{"first": 2}, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	info := envelope["paginatorInfo"].(map[string]interface{})
	require.Nil(t, info["total"])
	require.Equal(t, false, info["hasMorePages"])
}

func TestFieldConfig_ValidateDefinitionErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  FieldConfig
	}{
		{name: "missing table", cfg: FieldConfig{Name: "f", Strategy: planner.StrategyPage, Defaults: planner.Defaults{DefaultCount: 10}}},
		{name: "unknown strategy", cfg: FieldConfig{Name: "f", Table: planner.Table{Name: "t"}, Strategy: "FANCY", Defaults: planner.Defaults{DefaultCount: 10}}},
		{name: "no default count", cfg: FieldConfig{Name: "f", Table: planner.Table{Name: "t"}, Strategy: planner.StrategyPage}},
		{name: "connection without type name", cfg: FieldConfig{Name: "f", Table: planner.Table{Name: "t"}, Strategy: planner.StrategyConnection, Defaults: planner.Defaults{DefaultCount: 10}}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			require.True(t, pagerr.IsDefinition(err))
		})
	}
}
