package core

import (
	"errors"
	"reflect"
	"testing"

	"github.com/coregx/sqlplate/internal/dialects"
)

func TestBuilder_AppendAutoNames(t *testing.T) {
	b := NewBuilder(dialects.GetDialect("sqlite"))
	defer b.Close()

	b.Append("SELECT * FROM users WHERE id = ?", 123)
	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if tmpl.SQL() != "SELECT * FROM users WHERE id = @p0" {
		t.Errorf("Expected auto-named placeholder, got %q", tmpl.SQL())
	}
	params := tmpl.Params()
	if len(params) != 1 || params[0].Name != "p0" || params[0].Value != 123 {
		t.Errorf("Expected param p0=123, got %v", params)
	}
}

func TestBuilder_AppendSequencesAcrossCalls(t *testing.T) {
	b := NewBuilder(dialects.GetDialect("sqlite"))
	defer b.Close()

	b.Append("SELECT * FROM users WHERE a = ? AND b = ?", 1, 2)
	b.Append(" OR c = ?", 3)
	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := "SELECT * FROM users WHERE a = @p0 AND b = @p1 OR c = @p2"
	if tmpl.SQL() != want {
		t.Errorf("Expected %q, got %q", want, tmpl.SQL())
	}
	if len(tmpl.Params()) != 3 {
		t.Errorf("Expected 3 params, got %d", len(tmpl.Params()))
	}
}

func TestBuilder_AppendDialectStyles(t *testing.T) {
	tests := []struct {
		dialect string
		want    string
	}{
		{"sqlite", "WHERE id = @p0"},
		{"sqlserver", "WHERE id = @p0"},
		{"mysql", "WHERE id = @p0"},
		{"postgres", "WHERE id = $p0"},
		{"oracle", "WHERE id = :p0"},
		{"db2", "WHERE id = ?"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			b := NewBuilder(dialects.GetDialect(tt.dialect))
			defer b.Close()
			b.Append("WHERE id = ?", 42)
			tmpl, err := b.Build()
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			if tmpl.SQL() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, tmpl.SQL())
			}
		})
	}
}

func TestBuilder_MarkerArgumentMismatchPanics(t *testing.T) {
	b := NewBuilder(dialects.GetDialect("sqlite"))
	defer b.Close()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for marker/argument mismatch")
		}
	}()
	b.Append("WHERE a = ? AND b = ?", 1)
}

func TestBuilder_MarkersInsideStringLiterals(t *testing.T) {
	b := NewBuilder(dialects.GetDialect("sqlite"))
	defer b.Close()

	b.Append("WHERE name = '?' AND id = ?", 5)
	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := "WHERE name = '?' AND id = @p0"
	if tmpl.SQL() != want {
		t.Errorf("Literal ? must not consume an argument, got %q", tmpl.SQL())
	}
}

func TestBuilder_AppendRawVerbatim(t *testing.T) {
	b := NewBuilder(dialects.GetDialect("sqlite"))
	defer b.Close()

	b.Append("SELECT * FROM users WHERE id = ?", 1)
	b.AppendRaw(" ORDER BY created_at DESC /* keep ? as-is */")
	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := "SELECT * FROM users WHERE id = @p0 ORDER BY created_at DESC /* keep ? as-is */"
	if tmpl.SQL() != want {
		t.Errorf("Expected %q, got %q", want, tmpl.SQL())
	}
	if len(tmpl.Params()) != 1 {
		t.Errorf("AppendRaw must not record params, got %v", tmpl.Params())
	}
}

func TestBuilder_LifecyclePanics(t *testing.T) {
	t.Run("append after build", func(t *testing.T) {
		b := NewBuilder(dialects.GetDialect("sqlite"))
		defer b.Close()
		if _, err := b.Build(); err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic")
			}
		}()
		b.Append("SELECT 1")
	})

	t.Run("build twice", func(t *testing.T) {
		b := NewBuilder(dialects.GetDialect("sqlite"))
		defer b.Close()
		if _, err := b.Build(); err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic")
			}
		}()
		_, _ = b.Build()
	})

	t.Run("append after close", func(t *testing.T) {
		b := NewBuilder(dialects.GetDialect("sqlite"))
		b.Close()
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic")
			}
		}()
		b.Append("SELECT 1")
	})

	t.Run("close is idempotent", func(t *testing.T) {
		b := NewBuilder(dialects.GetDialect("sqlite"))
		b.Close()
		b.Close()
	})

	t.Run("nil dialect", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic")
			}
		}()
		NewBuilder(nil)
	})

	t.Run("invalid capacity", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic")
			}
		}()
		NewBuilderSize(dialects.GetDialect("sqlite"), 0)
	})
}

func TestBuilder_AppendTemplateStatic(t *testing.T) {
	b := NewContextBuilder(userContext("sqlite"))
	defer b.Close()

	b.AppendTemplate("SELECT {{columns}} FROM {{table}}", nil)
	b.Append(" WHERE id = ?", 7)
	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := "SELECT [id], [name], [email] FROM [users] WHERE id = @p0"
	if tmpl.SQL() != want {
		t.Errorf("Expected %q, got %q", want, tmpl.SQL())
	}
}

func TestBuilder_AppendTemplateWithParamsMap(t *testing.T) {
	b := NewContextBuilder(userContext("sqlite"))
	defer b.Close()

	b.AppendTemplate("SELECT {{columns}} FROM {{table}} WHERE {{where --param w}}", Params{
		"w":  "id = @id",
		"id": 7,
	})
	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := "SELECT [id], [name], [email] FROM [users] WHERE id = @id"
	if tmpl.SQL() != want {
		t.Errorf("Expected %q, got %q", want, tmpl.SQL())
	}

	text, args, err := tmpl.Bind(nil)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if text != "SELECT [id], [name], [email] FROM [users] WHERE id = ?" {
		t.Errorf("Unexpected bound text %q", text)
	}
	if len(args) != 1 || args[0] != 7 {
		t.Errorf("Expected args [7], got %v", args)
	}
}

func TestBuilder_AppendTemplateWithStruct(t *testing.T) {
	type profile struct {
		ID    int64
		Name  string
		Email string
	}

	b := NewContextBuilder(userContext("sqlite"))
	defer b.Close()

	b.AppendTemplate("UPDATE {{table}} SET {{set --exclude ID}}", &profile{ID: 3, Name: "Bob", Email: "bob@example.com"})
	b.Append(" WHERE id = ?", int64(3))
	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := "UPDATE [users] SET [name] = @name, [email] = @email WHERE id = @p0"
	if tmpl.SQL() != want {
		t.Errorf("Expected %q, got %q", want, tmpl.SQL())
	}
	pm := tmpl.ParamMap()
	if pm["name"] != "Bob" || pm["email"] != "bob@example.com" {
		t.Errorf("Struct fields should become params, got %v", pm)
	}
}

func TestBuilder_AppendTemplateWithoutContextPanics(t *testing.T) {
	b := NewBuilder(dialects.GetDialect("sqlite"))
	defer b.Close()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic without a bound context")
		}
	}()
	b.AppendTemplate("SELECT {{columns}} FROM {{table}}", nil)
}

func TestBuilder_AppendTemplateErrorDeferredToBuild(t *testing.T) {
	b := NewContextBuilder(userContext("sqlite"))
	defer b.Close()

	b.AppendTemplate("SELECT {{bogus}}", nil)
	// The builder stays usable; the error surfaces at Build.
	b.AppendRaw(" -- trailing")

	_, err := b.Build()
	if !errors.Is(err, ErrUnknownPlaceholder) {
		t.Errorf("Expected ErrUnknownPlaceholder from Build, got %v", err)
	}
}

func TestBuilder_AppendSubquery(t *testing.T) {
	sub := NewBuilder(dialects.GetDialect("sqlite"))
	defer sub.Close()
	sub.Append("SELECT id FROM users WHERE status = ?", "active")

	b := NewBuilder(dialects.GetDialect("sqlite"))
	defer b.Close()
	b.Append("SELECT * FROM orders WHERE total > ? AND user_id IN ", 100)
	b.AppendSubquery(sub)

	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Both builders named their first parameter p0; the subquery's copy is
	// renamed on the way in.
	want := "SELECT * FROM orders WHERE total > @p0 AND user_id IN (SELECT id FROM users WHERE status = @p1)"
	if tmpl.SQL() != want {
		t.Errorf("Expected %q, got %q", want, tmpl.SQL())
	}

	pm := tmpl.ParamMap()
	if pm["p0"] != 100 || pm["p1"] != "active" {
		t.Errorf("Expected p0=100 p1=active, got %v", pm)
	}
}

func TestBuilder_AppendSubqueryPositionalOrder(t *testing.T) {
	sub := NewBuilder(dialects.GetDialect("db2"))
	defer sub.Close()
	sub.Append("SELECT id FROM users WHERE status = ?", "active")

	b := NewBuilder(dialects.GetDialect("db2"))
	defer b.Close()
	b.Append("SELECT * FROM orders WHERE total > ? AND user_id IN ", 100)
	b.AppendSubquery(sub)

	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	text, args, err := tmpl.Bind(nil)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	want := "SELECT * FROM orders WHERE total > ? AND user_id IN (SELECT id FROM users WHERE status = ?)"
	if text != want {
		t.Errorf("Expected %q, got %q", want, text)
	}
	wantArgs := []interface{}{100, "active"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("Expected args %v, got %v", wantArgs, args)
	}
}

func TestBuilder_AppendSubqueryPanics(t *testing.T) {
	t.Run("dialect mismatch", func(t *testing.T) {
		sub := NewBuilder(dialects.GetDialect("mysql"))
		defer sub.Close()
		b := NewBuilder(dialects.GetDialect("sqlite"))
		defer b.Close()
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for dialect mismatch")
			}
		}()
		b.AppendSubquery(sub)
	})

	t.Run("self nesting", func(t *testing.T) {
		b := NewBuilder(dialects.GetDialect("sqlite"))
		defer b.Close()
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for self nesting")
			}
		}()
		b.AppendSubquery(b)
	})

	t.Run("closed subquery", func(t *testing.T) {
		sub := NewBuilder(dialects.GetDialect("sqlite"))
		sub.Close()
		b := NewBuilder(dialects.GetDialect("sqlite"))
		defer b.Close()
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for closed subquery")
			}
		}()
		b.AppendSubquery(sub)
	})
}

func TestBuilder_BuildTemplateMetadata(t *testing.T) {
	b := NewBuilderSize(dialects.GetDialect("postgres"), 64)
	defer b.Close()
	b.Append("SELECT * FROM users WHERE id = ?", 1)

	tmpl, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if tmpl.Dialect().Type() != dialects.Postgres {
		t.Errorf("Expected postgres dialect, got %v", tmpl.Dialect().Type())
	}
	if tmpl.Source() != tmpl.SQL() {
		t.Errorf("Builder templates use their SQL as source")
	}
	if tmpl.HasDynamicPlaceholders() {
		t.Error("Builder output should have no dynamic placeholders")
	}
}
