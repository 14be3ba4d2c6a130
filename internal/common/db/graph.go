package db

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/constants"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
)

type GraphOptions struct {
	URL         string
	Username    string
	Password    string
	MaxSessions int
}

// NewGraphDriver opens a Bolt driver and blocks until the server answers.
func NewGraphDriver(ctx context.Context, log *logger.Logger, opts GraphOptions, retry RetryConfig) (neo4j.DriverWithContext, error) {
	maxSessions := opts.MaxSessions
	if maxSessions <= 0 {
		maxSessions = constants.GraphMaxSessions
	}

	driver, err := neo4j.NewDriverWithContext(
		opts.URL,
		neo4j.BasicAuth(opts.Username, opts.Password, ""),
		func(c *neo4j.Config) {
			c.UserAgent = constants.GraphUserAgent
			// The session semaphore is the real bound; the socket pool only needs to keep up.
			c.MaxConnectionPoolSize = maxSessions
			c.ConnectionAcquisitionTimeout = constants.GraphAcquireTimeout
			c.ConnectionLivenessCheckTimeout = constants.GraphLivenessCheck
			c.SocketConnectTimeout = constants.GraphConnectTimeout
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create graph driver: %w", err)
	}

	err = RetryWithBackoff(ctx, log, "graph store", retry, func(ctx context.Context) error {
		return driver.VerifyConnectivity(ctx)
	})
	if err != nil {
		_ = driver.Close(context.Background())
		return nil, err
	}

	log.Infof("graph driver initialized: url=%s max_sessions=%d", opts.URL, maxSessions)
	return driver, nil
}
