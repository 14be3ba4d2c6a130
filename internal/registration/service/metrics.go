package service

import (
	"time"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/observability/metrics"
)

type step string

const (
	stepAcquireGraph     step = "acquire_graph"
	stepHashPassword     step = "hash_password"
	stepInsertCredential step = "insert_credential"
	stepResolveIdentity  step = "resolve_identity"
	stepCreateGraphNode  step = "create_graph_node"
	stepIssueToken       step = "issue_token"
)

type outcome string

const (
	outcomeSuccess            outcome = "success"
	outcomeClientError        outcome = "client_error"
	outcomeConflict           outcome = "conflict"
	outcomeInternal           outcome = "internal"
	outcomeBackendUnavailable outcome = "backend_unavailable"
	outcomeTokenRejected      outcome = "token_rejected"
	outcomeAbandoned          outcome = "abandoned"
)

func timed[T any](s step, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.RegistrationStepDurationSeconds.WithLabelValues(string(s)).Observe(time.Since(start).Seconds())
	return v, err
}
