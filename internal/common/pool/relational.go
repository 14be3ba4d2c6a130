package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/constants"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/observability/metrics"
)

// SQLConn is the part of a leased relational connection the repositories use.
// *pgxpool.Conn satisfies it.
type SQLConn interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type Relational struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

func NewRelational(p *pgxpool.Pool, acquireTimeout time.Duration) *Relational {
	if acquireTimeout <= 0 {
		acquireTimeout = constants.DBAcquireTimeout
	}
	return &Relational{pool: p, acquireTimeout: acquireTimeout}
}

func (r *Relational) Acquire(ctx context.Context) (*Lease[SQLConn], error) {
	const name = constants.RelationalMetricsLabel

	acquireCtx, cancel := context.WithTimeout(ctx, r.acquireTimeout)
	defer cancel()

	start := time.Now()
	conn, err := r.pool.Acquire(acquireCtx)
	metrics.PoolAcquireDurationSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() == nil && errors.Is(acquireCtx.Err(), context.DeadlineExceeded) && r.saturated() {
			recordFailure(name, "exhausted")
			return nil, fmt.Errorf("%w: relational pool at capacity after %v: %v", ErrPoolExhausted, r.acquireTimeout, err)
		}
		recordFailure(name, "unavailable")
		return nil, fmt.Errorf("%w: acquire relational connection: %v", ErrBackendUnavailable, err)
	}

	return NewLease[SQLConn](name, conn, func(discard bool) {
		if discard {
			// pgxpool destroys closed connections instead of returning them to the idle set.
			_ = conn.Conn().Close(context.Background())
		}
		conn.Release()
	}), nil
}

func (r *Relational) saturated() bool {
	stat := r.pool.Stat()
	return stat.AcquiredConns() >= stat.MaxConns()
}

func (r *Relational) Close() {
	r.pool.Close()
}
