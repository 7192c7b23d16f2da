//go:build integration
// +build integration

package test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coregx/sqlplate"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO required)
)

// DatabaseSetup encapsulates database connection and cleanup.
type DatabaseSetup struct {
	DB        *sqlplate.DB
	Container testcontainers.Container
	Dialect   string
	Driver    string
	DSN       string
}

// Close cleans up database resources.
func (ds *DatabaseSetup) Close() {
	if ds.DB != nil {
		ds.DB.Close() //nolint:errcheck
	}
	if ds.Container != nil {
		ds.Container.Terminate(context.Background()) //nolint:errcheck
	}
}

// SetupPostgreSQLTestDB creates a PostgreSQL test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupPostgreSQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	// Check for manual DSN first (allows testing without Docker)
	if dsn := os.Getenv("POSTGRES_TEST_DSN"); dsn != "" {
		db, err := sqlplate.Open("postgres", dsn)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, Dialect: "postgres", Driver: "postgres", DSN: dsn}
	}

	// Start PostgreSQL in Docker via testcontainers
	pgContainer, err := postgres.Run(
		ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for PostgreSQL integration tests: " + err.Error())
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlplate.Open("postgres", dsn)
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:        db,
		Container: pgContainer,
		Dialect:   "postgres",
		Driver:    "postgres",
		DSN:       dsn,
	}
}

// SetupMySQLTestDB creates a MySQL test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupMySQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	// Check for manual DSN first
	if dsn := os.Getenv("MYSQL_TEST_DSN"); dsn != "" {
		// Ensure parseTime=true is set for time.Time support
		if !strings.Contains(dsn, "parseTime=true") {
			if strings.Contains(dsn, "?") {
				dsn += "&parseTime=true"
			} else {
				dsn += "?parseTime=true"
			}
		}
		db, err := sqlplate.Open("mysql", dsn)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, Dialect: "mysql", Driver: "mysql", DSN: dsn}
	}

	// Start MySQL in Docker via testcontainers
	mysqlContainer, err := mysql.Run(
		ctx,
		"mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("user"),
		mysql.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for MySQL integration tests: " + err.Error())
	}

	dsn, err := mysqlContainer.ConnectionString(ctx)
	require.NoError(t, err)

	// Add parseTime=true to enable time.Time parsing for DATETIME/TIMESTAMP columns
	// Without this, MySQL driver returns []uint8 instead of time.Time
	// See: https://github.com/go-sql-driver/mysql#parsetime
	dsn += "?parseTime=true"

	db, err := sqlplate.Open("mysql", dsn)
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:        db,
		Container: mysqlContainer,
		Dialect:   "mysql",
		Driver:    "mysql",
		DSN:       dsn,
	}
}

// SetupSQLiteTestDB creates an in-memory SQLite database.
// Always works, no external dependencies.
func SetupSQLiteTestDB(t *testing.T) *DatabaseSetup {
	db, err := sqlplate.Open("sqlite", ":memory:")
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:      db,
		Dialect: "sqlite",
		Driver:  "sqlite",
		DSN:     ":memory:",
	}
}

// AllDatabases returns the setup matrix shared by cross-dialect tests.
func AllDatabases() []struct {
	Name  string
	Setup func(*testing.T) *DatabaseSetup
} {
	return []struct {
		Name  string
		Setup func(*testing.T) *DatabaseSetup
	}{
		{"SQLite", SetupSQLiteTestDB},
		{"PostgreSQL", SetupPostgreSQLTestDB},
		{"MySQL", SetupMySQLTestDB},
	}
}

// CreateUsersTable creates the users table used by most integration tests.
func CreateUsersTable(t *testing.T, db *sqlplate.DB, dialect string) {
	var createSQL string

	switch dialect {
	case "postgres":
		createSQL = `
			CREATE TABLE IF NOT EXISTS users (
				id SERIAL PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				age INTEGER,
				status INTEGER DEFAULT 1,
				role VARCHAR(50)
			)
		`
	case "mysql":
		createSQL = `
			CREATE TABLE IF NOT EXISTS users (
				id INT AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				age INT,
				status INT DEFAULT 1,
				role VARCHAR(50)
			)
		`
	case "sqlite":
		createSQL = `
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				age INTEGER,
				status INTEGER DEFAULT 1,
				role VARCHAR(50)
			)
		`
	}

	_, err := db.Unwrap().ExecContext(context.Background(), createSQL)
	require.NoError(t, err)
}

// CreateOrdersTable creates the orders table for multi-table tests.
func CreateOrdersTable(t *testing.T, db *sqlplate.DB, dialect string) {
	var createSQL string

	switch dialect {
	case "postgres":
		createSQL = `
			CREATE TABLE IF NOT EXISTS orders (
				id SERIAL PRIMARY KEY,
				user_id INTEGER NOT NULL,
				amount DOUBLE PRECISION DEFAULT 0,
				status VARCHAR(50) DEFAULT 'new',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	case "mysql":
		createSQL = `
			CREATE TABLE IF NOT EXISTS orders (
				id INT AUTO_INCREMENT PRIMARY KEY,
				user_id INT NOT NULL,
				amount DOUBLE DEFAULT 0,
				status VARCHAR(50) DEFAULT 'new',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	case "sqlite":
		createSQL = `
			CREATE TABLE IF NOT EXISTS orders (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				amount REAL DEFAULT 0,
				status VARCHAR(50) DEFAULT 'new',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`
	}

	_, err := db.Unwrap().ExecContext(context.Background(), createSQL)
	require.NoError(t, err)
}

// UserInsertTemplate prepares the generated-key insert template for users.
func UserInsertTemplate(t *testing.T, db *sqlplate.DB) *sqlplate.Template {
	pctx, err := db.ContextFor(User{})
	require.NoError(t, err)

	tpl, err := db.Prepare("INSERT INTO {{table}} ({{columns --exclude ID}}) VALUES ({{values --exclude ID}})", pctx)
	require.NoError(t, err)
	return tpl
}

// InsertTestUsers inserts count users through a batch template execution.
func InsertTestUsers(t *testing.T, db *sqlplate.DB, count int) {
	tpl := UserInsertTemplate(t, db)

	rows := make([]sqlplate.Params, count)
	for i := range rows {
		n := i + 1
		rows[i] = sqlplate.Params{
			"name":   fmt.Sprintf("User%d", n),
			"email":  fmt.Sprintf("user%d@example.com", n),
			"age":    20 + (n % 50), // Ages 20-70
			"status": 1,
			"role":   "user",
		}
	}

	affected, err := db.ExecBatch(context.Background(), tpl, rows)
	require.NoError(t, err)
	require.Equal(t, int64(count), affected)
}

// InsertTestOrders inserts count orders for one user.
func InsertTestOrders(t *testing.T, db *sqlplate.DB, userID, count int) {
	pctx, err := db.ContextFor(Order{})
	require.NoError(t, err)

	tpl, err := db.Prepare("INSERT INTO {{table}} ({{columns --exclude ID --exclude CreatedAt}}) VALUES ({{values --exclude ID --exclude CreatedAt}})", pctx)
	require.NoError(t, err)

	rows := make([]sqlplate.Params, count)
	for i := range rows {
		rows[i] = sqlplate.Params{
			"user_id": userID,
			"amount":  10.5 * float64(i+1),
			"status":  "paid",
		}
	}

	_, err = db.ExecBatch(context.Background(), tpl, rows)
	require.NoError(t, err)
}

// CountRows counts all rows in a table through the wrapped handle.
func CountRows(t *testing.T, db *sqlplate.DB, table string) int {
	var n int
	err := db.Unwrap().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n)
	require.NoError(t, err)
	return n
}
