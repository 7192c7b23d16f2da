//go:build integration
// +build integration

package test

import "time"

// User maps the users table shared by the integration tests.
type User struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Email  string `db:"email"`
	Age    int    `db:"age"`
	Status int    `db:"status"`
	Role   string `db:"role"`
}

// Order maps the orders table for multi-table tests.
type Order struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Amount    float64   `db:"amount"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// UserOrderRow is scanned from queries joining users and orders.
type UserOrderRow struct {
	UserID  int64   `db:"user_id"`
	Name    string  `db:"name"`
	OrderID int64   `db:"order_id"`
	Amount  float64 `db:"amount"`
}

// OrderTotals is scanned from aggregate queries over orders.
type OrderTotals struct {
	UserID int64   `db:"user_id"`
	Count  int     `db:"order_count"`
	Total  float64 `db:"total_amount"`
}
