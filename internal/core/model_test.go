package core

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestModel_InsertBackfillsGeneratedKey(t *testing.T) {
	db, _ := openAccountsDB(t)
	ctx := context.Background()

	a := &account{Name: "Alice", Email: "alice@example.com"}
	if err := db.Model(a).Insert(ctx); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if a.ID == 0 {
		t.Error("expected generated key to be backfilled")
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts WHERE id = ?", a.ID).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected inserted row, got %d", count)
	}
}

func TestModel_InsertExplicitKey(t *testing.T) {
	db, _ := openAccountsDB(t)
	ctx := context.Background()

	a := &account{ID: 42, Name: "Bob", Email: "bob@example.com"}
	if err := db.Model(a).Insert(ctx); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if a.ID != 42 {
		t.Errorf("expected explicit key to survive, got %d", a.ID)
	}

	var name string
	if err := db.QueryRowContext(ctx, "SELECT name FROM accounts WHERE id = 42").Scan(&name); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if name != "Bob" {
		t.Errorf("expected Bob, got %s", name)
	}
}

func TestModel_Update(t *testing.T) {
	db, _ := openAccountsDB(t)
	ctx := context.Background()

	a := &account{Name: "Alice", Email: "alice@example.com"}
	if err := db.Model(a).Insert(ctx); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	a.Name = "Alicia"
	a.Email = "alicia@example.com"
	if err := db.Model(a).Update(ctx); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got := &account{ID: a.ID}
	if err := db.Model(got).Get(ctx); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "Alicia" {
		t.Errorf("expected Alicia, got %s", got.Name)
	}
	if got.Email != "alicia@example.com" {
		t.Errorf("expected updated email, got %s", got.Email)
	}
}

func TestModel_Delete(t *testing.T) {
	db, _ := openAccountsDB(t)
	ctx := context.Background()

	a := &account{Name: "Alice", Email: "alice@example.com"}
	if err := db.Model(a).Insert(ctx); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := db.Model(a).Delete(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	got := &account{ID: a.ID}
	if err := db.Model(got).Get(ctx); !errors.Is(err, ErrNoRows) {
		t.Errorf("expected ErrNoRows after delete, got %v", err)
	}
}

func TestModel_GetNotFound(t *testing.T) {
	db, _ := openAccountsDB(t)

	got := &account{ID: 999}
	err := db.Model(got).Get(context.Background())
	if !errors.Is(err, ErrNoRows) {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestModel_ExcludeFields(t *testing.T) {
	db, _ := openAccountsDB(t)
	ctx := context.Background()

	a := &account{Name: "Alice", Email: "alice@example.com"}
	if err := db.Model(a).Exclude("Email").Insert(ctx); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	var isNull bool
	if err := db.QueryRowContext(ctx, "SELECT email IS NULL FROM accounts WHERE id = ?", a.ID).Scan(&isNull); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if !isNull {
		t.Error("expected excluded column to stay NULL")
	}
}

func TestModel_TableOverride(t *testing.T) {
	db, _ := openAccountsDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		CREATE TABLE archived_accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT
		)
	`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	a := &account{Name: "Old", Email: "old@example.com"}
	if err := db.Model(a).Table("archived_accounts").Insert(ctx); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM archived_accounts").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected row in the override table, got %d", count)
	}
}

func TestModel_EmptyTableName(t *testing.T) {
	db, _ := openAccountsDB(t)

	a := &account{Name: "Alice"}
	err := db.Model(a).Table("").Insert(context.Background())
	if err == nil || !strings.Contains(err.Error(), "table name not specified") {
		t.Errorf("expected table name error, got %v", err)
	}
}
