// Package pg implements the account and community stores on PostgreSQL.
// All statements are parameterized; user-supplied values never reach the
// statement text.
package pg

// Store executes the application's SQL against the pooled database.
type Store struct {
	pool *Pool
}

// NewStore wraps a pool.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}
