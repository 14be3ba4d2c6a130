// Package downstream holds the gRPC clients for the authentication and user
// profile services.
package downstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/resilience"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/observability/metrics"
)

type DialStage string

const (
	DialStageConnect DialStage = "connect"
	DialStageHealth  DialStage = "health"
)

type DialError struct {
	Stage DialStage
	Addr  string
	Err   error
}

func (e *DialError) Error() string {
	return fmt.Sprintf("grpc %s %s: %v", e.Stage, e.Addr, e.Err)
}

func (e *DialError) Unwrap() error {
	return e.Err
}

// Target strips an http:// or https:// prefix; the services are configured
// with URLs but grpc wants a host:port target.
func Target(url string) string {
	for _, prefix := range []string{"http://", "https://"} {
		if strings.HasPrefix(url, prefix) {
			return strings.TrimSuffix(strings.TrimPrefix(url, prefix), "/")
		}
	}
	return url
}

func DefaultDialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

type DialConfig struct {
	URL         string
	HealthCheck bool
	DialTimeout time.Duration
	Logf        func(string, ...any)
	Options     []grpc.DialOption
}

// Dial creates a client connection. grpc connects lazily, so without
// HealthCheck the first call is the first network round trip.
func Dial(ctx context.Context, cfg DialConfig) (*grpc.ClientConn, error) {
	target := Target(cfg.URL)
	opts := cfg.Options
	if opts == nil {
		opts = DefaultDialOptions()
	}

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, &DialError{Stage: DialStageConnect, Addr: target, Err: err}
	}
	if !cfg.HealthCheck {
		return conn, nil
	}

	waitCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := WaitForHealth(waitCtx, conn, "", cfg.Logf); err != nil {
		_ = conn.Close()
		return nil, &DialError{Stage: DialStageHealth, Addr: target, Err: err}
	}
	return conn, nil
}

// IsTransportFailure reports whether err should count against a service's
// circuit breaker.
func IsTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Internal, codes.Unknown, codes.Aborted:
		return true
	}
	return false
}

// caller invokes unary methods through a circuit breaker.
type caller struct {
	conn    grpc.ClientConnInterface
	breaker *resilience.CircuitBreaker
}

func (c caller) invoke(ctx context.Context, method string, req, resp proto.Message) error {
	start := time.Now()
	err := c.breaker.Call(ctx, func(ctx context.Context) error {
		return c.conn.Invoke(ctx, method, req, resp)
	})
	metrics.RPCDurationSeconds.WithLabelValues(method, status.Code(err).String()).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}
