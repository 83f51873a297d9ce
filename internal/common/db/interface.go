package db

import "context"

// Database is the minimal contract the repositories need from a SQL store.
// Implementations own their connection pool.
type Database interface {
	Querier

	// Transaction executes fn inside a transaction, committing on nil error
	// and rolling back otherwise.
	Transaction(ctx context.Context, fn func(tx Transaction) error) error

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Close closes the underlying pool.
	Close() error
}

// Transaction exposes query operations bound to an open transaction.
type Transaction interface {
	Querier

	Commit() error
	Rollback() error
}

// Querier abstracts database operations for both database and transaction.
type Querier interface {
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) Row
	Exec(ctx context.Context, query string, args ...interface{}) (Result, error)
}

// Rows is the result of a multi-row query.
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}

// Row is the result of a single-row query.
type Row interface {
	Scan(dest ...interface{}) error
}

// Scanner is satisfied by both Row and Rows, letting scan helpers serve
// single-row and multi-row queries alike.
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Result summarizes an executed statement.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}
