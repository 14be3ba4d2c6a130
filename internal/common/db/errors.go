package db

import (
	"fmt"
	"time"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/observability/metrics"
)

const (
	StoreRelational = "relational"
	StoreGraph      = "graph"
)

// ObserveQuery records the duration of one store operation and, when err is
// non-nil, counts it by concrete error type.
func ObserveQuery(store, operation string, startTime time.Time, err error) {
	metrics.DBQueryDurationSeconds.WithLabelValues(store, operation).Observe(time.Since(startTime).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues(store, operation, fmt.Sprintf("%T", err)).Inc()
	}
}

func WrapQueryError(store, operation string, startTime time.Time, err error) error {
	ObserveQuery(store, operation, startTime, err)
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: failed to %s: %w", store, operation, err)
}
