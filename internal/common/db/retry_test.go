package db

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
)

func quietLogger() *logger.Logger {
	return logger.NewWriter(io.Discard, "test", "ERROR")
}

var fastRetry = RetryConfig{
	MaxAttempts:  4,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
	Multiplier:   2,
}

func TestRetryWithBackoff_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), quietLogger(), "test", fastRetry, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoff_StopsOnPermanentError(t *testing.T) {
	authErr := &pgconn.PgError{Code: pgerrcode.InvalidPassword}
	attempts := 0

	err := RetryWithBackoff(context.Background(), quietLogger(), "test", fastRetry, func(context.Context) error {
		attempts++
		return authErr
	})

	if !errors.Is(err, authErr) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt, got %d", attempts)
	}
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), quietLogger(), "test", fastRetry, func(context.Context) error {
		attempts++
		return &pgconn.PgError{Code: pgerrcode.CannotConnectNow}
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != fastRetry.MaxAttempts {
		t.Errorf("expected %d attempts, got %d", fastRetry.MaxAttempts, attempts)
	}
}

func TestRetryWithBackoff_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetry
	cfg.InitialDelay = time.Hour

	err := RetryWithBackoff(ctx, quietLogger(), "test", cfg, func(context.Context) error {
		cancel()
		return errors.New("dial tcp: connection refused")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
