//go:build integration
// +build integration

package test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/coregx/sqlplate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUseCase_PreparedSearchEndpoint validates the prepare-once, render-many
// pattern behind a typical search endpoint.
//
// Use case: an HTTP handler prepares one template at startup and serves every
// request by splicing the request's filter into {{where --param w}}. Requests
// without filters splice a tautology instead of rebuilding the SQL string.
func TestUseCase_PreparedSearchEndpoint(t *testing.T) {
	for _, dbConfig := range AllDatabases() {
		t.Run(dbConfig.Name, func(t *testing.T) {
			ds := dbConfig.Setup(t)
			defer ds.Close()

			ctx := context.Background()

			CreateUsersTable(t, ds.DB, ds.Dialect)
			InsertTestUsers(t, ds.DB, 10)

			pctx, err := ds.DB.ContextFor(User{})
			require.NoError(t, err)

			// Prepared once, reused for every request below.
			search, err := ds.DB.Prepare("SELECT {{columns}} FROM {{table}} WHERE {{where --param w}} ORDER BY {{orderby --param o}}", pctx)
			require.NoError(t, err)

			requests := []struct {
				name   string
				filter interface{}
				want   int
			}{
				{"ByRole", sqlplate.Eq("role", "user"), 10},
				{"ByAgeRange", sqlplate.And(
					sqlplate.GreaterOrEqual("age", 24),
					sqlplate.LessOrEqual("age", 26),
				), 3},
				{"ByNamePattern", sqlplate.Like("name", "User1"), 2},
				{"NoFilter", "1 = 1", 10},
			}

			for _, req := range requests {
				t.Run(req.name, func(t *testing.T) {
					var users []User
					err := ds.DB.All(ctx, search, sqlplate.Params{"w": req.filter, "o": "id"}, &users)
					require.NoError(t, err)
					assert.Len(t, users, req.want)
				})
			}

			t.Logf("[%s] one prepared template served %d different filters", dbConfig.Name, len(requests))
		})
	}
}

// TestUseCase_PagedListing validates LIMIT/OFFSET pagination through a single
// prepared template.
//
// Use case: an admin UI lists users page by page. The page size and offset
// arrive as request parameters; the template stays fixed.
func TestUseCase_PagedListing(t *testing.T) {
	for _, dbConfig := range AllDatabases() {
		t.Run(dbConfig.Name, func(t *testing.T) {
			ds := dbConfig.Setup(t)
			defer ds.Close()

			ctx := context.Background()

			CreateUsersTable(t, ds.DB, ds.Dialect)
			InsertTestUsers(t, ds.DB, 10)

			pctx, err := ds.DB.ContextFor(User{})
			require.NoError(t, err)

			page, err := ds.DB.Prepare("SELECT {{columns}} FROM {{table}} ORDER BY {{orderby --param o}} {{limit --param n}} {{offset --param skip}}", pctx)
			require.NoError(t, err)

			const pageSize = 4

			seen := make(map[int64]bool)
			var sizes []int
			for offset := 0; ; offset += pageSize {
				var users []User
				err := ds.DB.All(ctx, page, sqlplate.Params{"o": "id", "n": pageSize, "skip": offset}, &users)
				require.NoError(t, err)
				if len(users) == 0 {
					break
				}

				sizes = append(sizes, len(users))
				for _, u := range users {
					assert.False(t, seen[u.ID], "user %d appeared on two pages", u.ID)
					seen[u.ID] = true
				}
			}

			assert.Equal(t, []int{4, 4, 2}, sizes, "10 users should paginate as 4+4+2")
			assert.Len(t, seen, 10, "every user should appear exactly once")
		})
	}
}

// TestUseCase_BulkImportWithReport compares row-at-a-time inserts against
// ExecBatch, then builds a per-role report over the imported data.
//
// BEFORE: 30 single-row round trips.
// AFTER: one batch call reusing a single prepared statement in a transaction.
func TestUseCase_BulkImportWithReport(t *testing.T) {
	for _, dbConfig := range AllDatabases() {
		t.Run(dbConfig.Name, func(t *testing.T) {
			ds := dbConfig.Setup(t)
			defer ds.Close()

			ctx := context.Background()

			CreateUsersTable(t, ds.DB, ds.Dialect)

			const importSize = 30

			makeRow := func(i int) sqlplate.Params {
				role := "user"
				switch i % 5 {
				case 0:
					role = "admin"
				case 1:
					role = "support"
				}
				return sqlplate.Params{
					"name":   fmt.Sprintf("Import%d", i),
					"email":  fmt.Sprintf("import%d@example.com", i),
					"age":    20 + i%40,
					"status": 1,
					"role":   role,
				}
			}

			tpl := UserInsertTemplate(t, ds.DB)

			// OLD WAY: one round trip per row.
			start := time.Now()
			for i := 0; i < importSize; i++ {
				_, err := ds.DB.Exec(ctx, tpl, makeRow(i))
				require.NoError(t, err)
			}
			oldTime := time.Since(start)
			require.Equal(t, importSize, CountRows(t, ds.DB, "users"))

			t.Logf("[%s] single inserts: %v, %d round trips", dbConfig.Name, oldTime, importSize)

			_, err := ds.DB.Unwrap().ExecContext(ctx, "DELETE FROM users")
			require.NoError(t, err)

			// NEW WAY: one batch call.
			rows := make([]sqlplate.Params, importSize)
			for i := range rows {
				rows[i] = makeRow(i)
			}

			start = time.Now()
			affected, err := ds.DB.ExecBatch(ctx, tpl, rows)
			require.NoError(t, err)
			newTime := time.Since(start)

			assert.EqualValues(t, importSize, affected)
			require.Equal(t, importSize, CountRows(t, ds.DB, "users"))

			t.Logf("[%s] batch insert: %v, 1 call", dbConfig.Name, newTime)

			// Report: member count per role over the imported rows.
			var report []struct {
				Role    string `db:"role"`
				Members int    `db:"member_count"`
			}

			b := sqlplate.NewBuilder(ds.DB.Dialect())
			defer b.Close()
			b.AppendRaw("SELECT role, COUNT(*) AS member_count FROM users GROUP BY role ORDER BY member_count DESC, role ASC")

			reportTpl, err := b.Build()
			require.NoError(t, err)
			require.NoError(t, ds.DB.All(ctx, reportTpl, nil, &report))

			require.Len(t, report, 3)
			assert.Equal(t, "user", report[0].Role)
			assert.Equal(t, 18, report[0].Members)
			assert.Equal(t, "admin", report[1].Role)
			assert.Equal(t, 6, report[1].Members)
			assert.Equal(t, "support", report[2].Role)
			assert.Equal(t, 6, report[2].Members)
		})
	}
}

// TestUseCase_InlineNamedRefs validates hand-written SQL whose parameter
// references are typed directly into the text using the dialect's prefix.
//
// Use case: reporting queries written by hand still get driver-native
// placeholders and keyed parameters, without any template tokens.
func TestUseCase_InlineNamedRefs(t *testing.T) {
	for _, dbConfig := range AllDatabases() {
		t.Run(dbConfig.Name, func(t *testing.T) {
			ds := dbConfig.Setup(t)
			defer ds.Close()

			ctx := context.Background()

			CreateUsersTable(t, ds.DB, ds.Dialect)
			InsertTestUsers(t, ds.DB, 10)

			pctx, err := ds.DB.ContextFor(User{})
			require.NoError(t, err)

			prefix := "@"
			if ds.Dialect == "postgres" {
				prefix = "$"
			}

			query := fmt.Sprintf(
				"SELECT id, name, email, age, status, role FROM users WHERE age >= %smin AND role = %srole ORDER BY id",
				prefix, prefix)

			tpl, err := ds.DB.Prepare(query, pctx)
			require.NoError(t, err)

			var older []User
			require.NoError(t, ds.DB.All(ctx, tpl, sqlplate.Params{"min": 28, "role": "user"}, &older))
			assert.Len(t, older, 3, "ages 28..30 should match")

			var everyone []User
			require.NoError(t, ds.DB.All(ctx, tpl, sqlplate.Params{"min": 0, "role": "user"}, &everyone))
			assert.Len(t, everyone, 10)
		})
	}
}

// TestUseCase_MaintenanceSweep validates a dynamic UPDATE where both the
// assignment list and the predicate arrive at render time.
//
// Use case: a periodic job deactivates accounts matching a policy that
// operators tune without redeploying.
func TestUseCase_MaintenanceSweep(t *testing.T) {
	for _, dbConfig := range AllDatabases() {
		t.Run(dbConfig.Name, func(t *testing.T) {
			ds := dbConfig.Setup(t)
			defer ds.Close()

			ctx := context.Background()

			CreateUsersTable(t, ds.DB, ds.Dialect)
			InsertTestUsers(t, ds.DB, 10)

			pctx, err := ds.DB.ContextFor(User{})
			require.NoError(t, err)

			sweep, err := ds.DB.Prepare("UPDATE {{table}} SET {{set --param changes}} WHERE {{where --param w}}", pctx)
			require.NoError(t, err)

			result, err := ds.DB.Exec(ctx, sweep, sqlplate.Params{
				"changes": "status = 0",
				"w":       sqlplate.LessOrEqual("age", 23),
			})
			require.NoError(t, err)

			affected, err := result.RowsAffected()
			require.NoError(t, err)
			assert.EqualValues(t, 3, affected, "ages 21..23 should be swept")

			check, err := ds.DB.Prepare("SELECT {{columns}} FROM {{table}} WHERE {{where --param w}} ORDER BY {{orderby --param o}}", pctx)
			require.NoError(t, err)

			var inactive []User
			require.NoError(t, ds.DB.All(ctx, check, sqlplate.Params{"w": sqlplate.Eq("status", 0), "o": "id"}, &inactive))
			require.Len(t, inactive, 3)
			assert.Equal(t, "User1", inactive[0].Name)
			assert.Equal(t, "User3", inactive[2].Name)
		})
	}
}
