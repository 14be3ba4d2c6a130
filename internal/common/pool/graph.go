package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/sync/semaphore"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/constants"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/observability/metrics"
)

// GraphSession is the part of a Bolt session the graph repository uses.
// neo4j.SessionWithContext satisfies it.
type GraphSession interface {
	Run(ctx context.Context, cypher string, params map[string]any, configurers ...func(*neo4j.TransactionConfig)) (neo4j.ResultWithContext, error)
}

// Graph bounds the number of concurrently leased Bolt sessions. The driver keeps
// its own socket pool underneath; the semaphore gives us a hard lease capacity
// with an explicit exhaustion error instead of an unbounded wait.
type Graph struct {
	driver         neo4j.DriverWithContext
	database       string
	sem            *semaphore.Weighted
	acquireTimeout time.Duration
}

func NewGraph(driver neo4j.DriverWithContext, database string, capacity int, acquireTimeout time.Duration) *Graph {
	if capacity <= 0 {
		capacity = constants.GraphMaxSessions
	}
	if acquireTimeout <= 0 {
		acquireTimeout = constants.GraphAcquireTimeout
	}
	return &Graph{
		driver:         driver,
		database:       database,
		sem:            semaphore.NewWeighted(int64(capacity)),
		acquireTimeout: acquireTimeout,
	}
}

func (g *Graph) Acquire(ctx context.Context) (*Lease[GraphSession], error) {
	const name = constants.GraphMetricsLabel

	if err := ctx.Err(); err != nil {
		recordFailure(name, "unavailable")
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	acquireCtx, cancel := context.WithTimeout(ctx, g.acquireTimeout)
	defer cancel()

	start := time.Now()
	err := g.sem.Acquire(acquireCtx, 1)
	metrics.PoolAcquireDurationSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() == nil {
			recordFailure(name, "exhausted")
			return nil, fmt.Errorf("%w: graph pool at capacity after %v", ErrPoolExhausted, g.acquireTimeout)
		}
		recordFailure(name, "unavailable")
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: g.database,
	})

	return NewLease[GraphSession](name, session, func(bool) {
		// Closing the session discards any unconsumed records and resets the
		// underlying connection, so discarded and healthy leases end the same way.
		_ = session.Close(context.Background())
		g.sem.Release(1)
	}), nil
}

func (g *Graph) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}
