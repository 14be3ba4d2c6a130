package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/constants"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
)

// RetryConfig drives startup connection attempts only. Request-path store
// operations are never retried.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Retryable reports whether err is worth another attempt. Nil retries
	// everything except context errors.
	Retryable func(error) bool
}

var StartupRetryConfig = RetryConfig{
	MaxAttempts:  constants.DBPoolMaxAttempts,
	InitialDelay: constants.DBPoolRetryDelay,
	MaxDelay:     5 * constants.DBPoolRetryDelay,
	Multiplier:   1.5,
}

func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code) ||
			pgErr.Code == pgerrcode.SerializationFailure ||
			pgErr.Code == pgerrcode.DeadlockDetected ||
			pgErr.Code == pgerrcode.LockNotAvailable ||
			pgErr.Code == pgerrcode.CannotConnectNow
	}

	var graphErr *neo4j.Neo4jError
	if errors.As(err, &graphErr) {
		return neo4j.IsRetryable(err)
	}

	// Raw dial failures during startup carry no typed code.
	return true
}

func RetryWithBackoff(ctx context.Context, log *logger.Logger, target string, config RetryConfig, operation func(context.Context) error) error {
	retryable := config.Retryable
	if retryable == nil {
		retryable = IsTransientError
	}
	attempts := config.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		err := operation(ctx)
		if err == nil {
			if attempt > 1 {
				log.Infof("%s connection succeeded after %d attempts", target, attempt)
			}
			return nil
		}

		lastErr = err

		if !retryable(err) {
			return err
		}

		if attempt == attempts {
			break
		}

		log.Warnf("%s connection failed (attempt %d/%d): %v, retrying in %v", target, attempt, attempts, err, delay)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * config.Multiplier)
		if config.MaxDelay > 0 && delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return fmt.Errorf("%s connection failed after %d attempts: %w", target, attempts, lastErr)
}
