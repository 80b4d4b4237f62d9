package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"recylink.org/internal/obs"
)

const (
	// DefaultMaxAttempts bounds the startup connectivity check.
	DefaultMaxAttempts = 4

	backoffBase = 2 * time.Second
	backoffCap  = 20 * time.Second
	jitterMax   = 500 * time.Millisecond

	maxOpenConns   = 10
	connIdleTime   = 30 * time.Second
	connectTimeout = 15 * time.Second
)

var (
	// ErrUnavailable indicates the store could not be reached.
	ErrUnavailable = errors.New("store: unavailable")
	// ErrStatement indicates a statement failed against a reachable store.
	ErrStatement = errors.New("store: statement failed")
	// ErrMissingDSN is a configuration error: no connection string at all.
	ErrMissingDSN = errors.New("store: connection string is empty")
)

// Pool owns the bounded connection pool. database/sql guarantees that a
// leased connection returns to the pool on every exit path of a query;
// Pool adds startup verification with backoff on top.
type Pool struct {
	db *sql.DB

	sleep  func(context.Context, time.Duration) error
	jitter func() time.Duration
}

// PoolOption configures Pool behavior.
type PoolOption func(*Pool)

// WithSleep overrides the inter-attempt wait (useful for tests).
func WithSleep(fn func(context.Context, time.Duration) error) PoolOption {
	return func(p *Pool) {
		if fn != nil {
			p.sleep = fn
		}
	}
}

// WithJitter overrides the jitter source (useful for tests).
func WithJitter(fn func() time.Duration) PoolOption {
	return func(p *Pool) {
		if fn != nil {
			p.jitter = fn
		}
	}
}

// Open builds a Pool from a Postgres DSN. It fails fast only on a missing
// connection string; actual connectivity problems surface on first use or
// through VerifyConnectivity. TLS is required but peer verification stays
// relaxed, which managed Postgres providers expect.
func Open(dsn string, opts ...PoolOption) (*Pool, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, ErrMissingDSN
	}
	db, err := sql.Open("pgx", withDSNDefaults(dsn))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxIdleTime(connIdleTime)
	return NewPool(db, opts...), nil
}

// NewPool wraps an existing database handle. Tests use this to back the
// pool with a mock driver.
func NewPool(db *sql.DB, opts ...PoolOption) *Pool {
	p := &Pool{
		db:    db,
		sleep: sleepContext,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(jitterMax)))
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DB exposes the underlying handle for readiness probes.
func (p *Pool) DB() *sql.DB { return p.db }

// Close releases all pooled connections.
func (p *Pool) Close() error { return p.db.Close() }

// VerifyConnectivity runs a trivial round-trip query, retrying with
// exponential backoff plus jitter between attempts. It returns nil on the
// first successful round-trip and ErrUnavailable wrapping the last failure
// once attempts are exhausted. The caller decides whether that is fatal;
// this process logs and keeps serving.
func (p *Pool) VerifyConnectivity(ctx context.Context, maxAttempts int) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := p.roundTrip(ctx)
		if err == nil {
			obs.LogRequest(map[string]any{
				"ts":      time.Now().UTC().Format(time.RFC3339Nano),
				"level":   "info",
				"msg":     "database connectivity verified",
				"attempt": attempt,
			})
			return nil
		}
		lastErr = err
		obs.LogRequest(map[string]any{
			"ts":      time.Now().UTC().Format(time.RFC3339Nano),
			"level":   "warn",
			"msg":     "database connectivity attempt failed",
			"attempt": attempt,
			"of":      maxAttempts,
			"error":   err.Error(),
		})
		if attempt == maxAttempts {
			break
		}
		if err := p.sleep(ctx, backoffDelay(attempt)+p.jitter()); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// roundTrip leases one connection, runs the health query and releases the
// connection on every path.
func (p *Pool) roundTrip(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	conn, err := p.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	var now time.Time
	return conn.QueryRowContext(ctx, `select now()`).Scan(&now)
}

// Query executes a parameterized statement and returns the rows. The
// caller must close them; the pooled connection is released when it does.
// Values always flow through placeholders, never into the statement text.
func (p *Pool) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, statementError(err)
	}
	return rows, nil
}

// QueryRow executes a statement expected to return at most one row.
// Errors, including sql.ErrNoRows, surface at Scan time.
func (p *Pool) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return p.db.QueryRowContext(ctx, query, args...)
}

// Exec executes a statement that returns no rows.
func (p *Pool) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, statementError(err)
	}
	return res, nil
}

// backoffDelay grows exponentially with the attempt number until the cap.
func backoffDelay(attempt int) time.Duration {
	delay := backoffBase << attempt
	if delay > backoffCap || delay <= 0 {
		return backoffCap
	}
	return delay
}

func statementError(err error) error {
	return fmt.Errorf("%w: %v", ErrStatement, err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// withDSNDefaults appends the TLS and connect-timeout settings the managed
// database expects when the DSN does not already carry them.
func withDSNDefaults(dsn string) string {
	if !strings.Contains(dsn, "sslmode=") {
		dsn = appendDSNParam(dsn, "sslmode=require")
	}
	if !strings.Contains(dsn, "connect_timeout=") {
		dsn = appendDSNParam(dsn, fmt.Sprintf("connect_timeout=%d", int(connectTimeout.Seconds())))
	}
	return dsn
}

func appendDSNParam(dsn, param string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + param
}
