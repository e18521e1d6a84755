package sortable

import (
	"testing"

	"graphql-pager/internal/pagerr"
)

func TestNewArgument_RejectsColumnsAndEnumTogether(t *testing.T) {
	_, err := NewArgument("orderBy",
		WithColumns("name", "team_id"),
		WithEnum(map[string]string{"NAME": "name"}),
	)
	if err == nil {
		t.Fatal("expected definition error for columns + enum")
	}
	if !pagerr.IsDefinition(err) {
		t.Fatalf("expected definition error, got %v", err)
	}
}

func TestNormalize_PreservesCallerOrder(t *testing.T) {
	arg, err := NewArgument("orderBy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	directives, err := arg.Normalize([]Entry{
		{Column: "team_id", Direction: "ASC"},
		{Column: "name", Direction: "desc"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(directives) != 2 {
		t.Fatalf("expected 2 directives, got %d", len(directives))
	}
	if directives[0].Column != "team_id" || directives[0].Direction != Asc {
		t.Fatalf("first directive mismatch: %+v", directives[0])
	}
	if directives[1].Column != "name" || directives[1].Direction != Desc {
		t.Fatalf("second directive mismatch: %+v", directives[1])
	}
}

func TestNormalize_EnumResolvesColumn(t *testing.T) {
	arg, err := NewArgument("orderBy", WithEnum(map[string]string{
		"CREATED_AT": "created_at",
		"TEAM":       "team_id",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	directives, err := arg.Normalize([]Entry{{Column: "TEAM", Direction: "ASC"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if directives[0].Column != "team_id" {
		t.Fatalf("expected enum value resolved to team_id, got %s", directives[0].Column)
	}
}

func TestNormalize_EnumRejectsUnknownValue(t *testing.T) {
	arg, err := NewArgument("orderBy", WithEnum(map[string]string{"NAME": "name"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = arg.Normalize([]Entry{{Column: "SALARY", Direction: "ASC"}})
	if err == nil {
		t.Fatal("expected error for unknown enum value")
	}
	if !pagerr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNormalize_AllowListRejectsForeignColumn(t *testing.T) {
	arg, err := NewArgument("orderBy", WithColumns("name"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = arg.Normalize([]Entry{{Column: "password", Direction: "ASC"}})
	if err == nil {
		t.Fatal("expected error for column outside allow-list")
	}
}

func TestNormalize_UnrestrictedPassesColumnThrough(t *testing.T) {
	arg, err := NewArgument("orderBy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	directives, err := arg.Normalize([]Entry{{Column: "anything_goes", Direction: "DESC"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if directives[0].Column != "anything_goes" {
		t.Fatalf("expected pass-through column, got %s", directives[0].Column)
	}
}

func TestNormalize_RejectsInvalidDirection(t *testing.T) {
	arg, _ := NewArgument("orderBy")
	_, err := arg.Normalize([]Entry{{Column: "name", Direction: "SIDEWAYS"}})
	if err == nil {
		t.Fatal("expected error for invalid direction")
	}
}

func TestNormalize_AggregateShapes(t *testing.T) {
	arg, err := NewArgument("orderBy", WithRelations("posts"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("count forbids column", func(t *testing.T) {
		_, err := arg.Normalize([]Entry{{
			Direction: "DESC",
			Aggregate: &AggregateEntry{Relation: "posts", Func: "COUNT", Column: "id"},
		}})
		if err == nil {
			t.Fatal("expected error for COUNT with column")
		}
	})

	t.Run("sum requires column", func(t *testing.T) {
		_, err := arg.Normalize([]Entry{{
			Direction: "DESC",
			Aggregate: &AggregateEntry{Relation: "posts", Func: "SUM"},
		}})
		if err == nil {
			t.Fatal("expected error for SUM without column")
		}
	})

	t.Run("undeclared relation", func(t *testing.T) {
		_, err := arg.Normalize([]Entry{{
			Direction: "ASC",
			Aggregate: &AggregateEntry{Relation: "followers", Func: "COUNT"},
		}})
		if err == nil {
			t.Fatal("expected error for undeclared relation")
		}
	})

	t.Run("valid count", func(t *testing.T) {
		directives, err := arg.Normalize([]Entry{{
			Direction: "desc",
			Aggregate: &AggregateEntry{Relation: "posts", Func: "count"},
		}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ref := directives[0].Aggregate
		if ref == nil || ref.Relation != "posts" || ref.Func != Count {
			t.Fatalf("aggregate ref mismatch: %+v", ref)
		}
		if directives[0].Direction != Desc {
			t.Fatalf("direction mismatch: %s", directives[0].Direction)
		}
	})
}
