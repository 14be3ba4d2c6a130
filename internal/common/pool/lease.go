// Package pool lends connections to the relational and graph stores for the
// duration of one request.
//
// A failed acquisition is never retried here. Callers receive either
// ErrPoolExhausted or ErrBackendUnavailable, both of which are backend
// conditions and must never be reported to clients as input errors.
package pool

import (
	"context"
	"errors"
	"sync"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/observability/metrics"
)

var (
	ErrPoolExhausted      = errors.New("pool exhausted")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Pool lends connections of type T.
type Pool[T any] interface {
	Acquire(ctx context.Context) (*Lease[T], error)
}

// Lease is an exclusive loan of a pooled connection. Release is idempotent and
// must be deferred right after a successful Acquire.
type Lease[T any] struct {
	conn    T
	name    string
	release func(discard bool)
	once    sync.Once
	discard bool
}

// NewLease wraps conn. release receives true when the holder asked for the
// connection to be discarded rather than reused.
func NewLease[T any](name string, conn T, release func(discard bool)) *Lease[T] {
	metrics.PoolLeasesInFlight.WithLabelValues(name).Inc()
	return &Lease[T]{conn: conn, name: name, release: release}
}

func (l *Lease[T]) Conn() T {
	return l.conn
}

// Discard marks the connection as unfit for reuse, e.g. after a half-consumed
// response. It takes effect on Release.
func (l *Lease[T]) Discard() {
	l.discard = true
}

func (l *Lease[T]) Release() {
	l.once.Do(func() {
		metrics.PoolLeasesInFlight.WithLabelValues(l.name).Dec()
		if l.release != nil {
			l.release(l.discard)
		}
	})
}

// With runs fn on a leased connection and returns it on every exit path,
// including panics.
func With[T any](ctx context.Context, p Pool[T], fn func(ctx context.Context, conn T) error) error {
	lease, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()
	return fn(ctx, lease.Conn())
}

func recordFailure(name, reason string) {
	metrics.PoolAcquireFailures.WithLabelValues(name, reason).Inc()
}
