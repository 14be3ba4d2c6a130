package service

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/auth/domain"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/constants"
	commoncrypto "github.com/ThalliMega/MiniTikTok-User-Http/internal/common/crypto"
	commonerrors "github.com/ThalliMega/MiniTikTok-User-Http/internal/common/errors"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/pool"
	graphrepo "github.com/ThalliMega/MiniTikTok-User-Http/internal/graph/repository"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/observability/metrics"
	userdomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/user/domain"
	userrepo "github.com/ThalliMega/MiniTikTok-User-Http/internal/user/repository"
)

// TokenIssuer exchanges credentials for a session.
type TokenIssuer interface {
	IssueToken(ctx context.Context, username, password string) (authdomain.Session, error)
}

type Input struct {
	Username string
	Password string
}

type Dependencies struct {
	Graphs      pool.Pool[pool.GraphSession]
	Relational  pool.Pool[pool.SQLConn]
	Credentials userrepo.Repository
	Graph       graphrepo.Repository
	Hasher      commoncrypto.PasswordHasher
	Tokens      TokenIssuer
	StepTimeout time.Duration
	Log         *logger.Logger
}

// Orchestrator registers a user across the relational store, the graph
// store and the authentication service. There is no shared transaction: a
// credential row that was committed stays committed even when a later
// step fails.
type Orchestrator struct {
	graphs      pool.Pool[pool.GraphSession]
	relational  pool.Pool[pool.SQLConn]
	credentials userrepo.Repository
	graph       graphrepo.Repository
	hasher      commoncrypto.PasswordHasher
	tokens      TokenIssuer
	validator   *credentialValidator
	stepTimeout time.Duration
	log         *logger.Logger
}

func NewOrchestrator(deps Dependencies) *Orchestrator {
	stepTimeout := deps.StepTimeout
	if stepTimeout <= 0 {
		stepTimeout = constants.DefaultStepTimeout
	}
	return &Orchestrator{
		graphs:      deps.Graphs,
		relational:  deps.Relational,
		credentials: deps.Credentials,
		graph:       deps.Graph,
		hasher:      deps.Hasher,
		tokens:      deps.Tokens,
		validator:   newCredentialValidator(),
		stepTimeout: stepTimeout,
		log:         deps.Log,
	}
}

func (o *Orchestrator) Register(ctx context.Context, in Input) (authdomain.Session, error) {
	session, outcome, err := o.register(ctx, in)
	metrics.RegistrationOutcomes.WithLabelValues(string(outcome)).Inc()
	return session, err
}

func (o *Orchestrator) register(ctx context.Context, in Input) (authdomain.Session, outcome, error) {
	if err := o.validator.Validate(in.Username, in.Password); err != nil {
		o.log.WithFields(ctx, logger.Fields{
			"username_bytes": len(in.Username),
			"action":         "register_validation_failed",
		}).Warnf("register rejected: %v", err)
		return authdomain.Session{}, outcomeClientError, commonerrors.ErrClientInput.WithCause(err)
	}

	if err := ctx.Err(); err != nil {
		return o.abandoned(ctx, in.Username, stepAcquireGraph, err)
	}

	graphLease, err := timed(stepAcquireGraph, func() (*pool.Lease[pool.GraphSession], error) {
		return o.graphs.Acquire(ctx)
	})
	if err != nil {
		o.log.WithFields(ctx, logger.Fields{
			"username": in.Username,
			"action":   "register_graph_acquire_failed",
		}).Errorf("register failed: graph connection unavailable: %v", err)
		return authdomain.Session{}, outcomeBackendUnavailable, commonerrors.ErrBackendUnavailable.WithCause(err)
	}
	defer graphLease.Release()

	hash, err := timed(stepHashPassword, func() (string, error) {
		return o.hasher.Hash(in.Password)
	})
	if err != nil {
		o.log.WithFields(ctx, logger.Fields{
			"username": in.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return authdomain.Session{}, outcomeInternal, commonerrors.ErrInternal.WithCause(err)
	}

	if err := ctx.Err(); err != nil {
		return o.abandoned(ctx, in.Username, stepInsertCredential, err)
	}

	userID, out, err := o.insertCredential(ctx, userdomain.Credential{Username: in.Username, PasswordHash: hash})
	if err != nil {
		return authdomain.Session{}, out, err
	}

	if err := ctx.Err(); err != nil {
		o.logConsistencyGap(ctx, in.Username, userID, err)
		return o.abandoned(ctx, in.Username, stepCreateGraphNode, err)
	}

	if out, err := o.createGraphNode(ctx, graphLease, userdomain.GraphUserNode{ID: userID, Username: in.Username}); err != nil {
		return authdomain.Session{}, out, err
	}
	graphLease.Release()

	if err := ctx.Err(); err != nil {
		return o.abandoned(ctx, in.Username, stepIssueToken, err)
	}

	session, err := timed(stepIssueToken, func() (authdomain.Session, error) {
		return o.tokens.IssueToken(ctx, in.Username, in.Password)
	})
	if err != nil {
		o.log.WithFields(ctx, logger.Fields{
			"username": in.Username,
			"user_id":  userID,
			"action":   "register_issue_token_failed",
		}).Warnf("register: user created but token issuance failed: %v", err)
		out := outcomeBackendUnavailable
		if errors.Is(err, commonerrors.ErrForbidden) {
			out = outcomeTokenRejected
		}
		return authdomain.Session{}, out, err
	}

	if session.UserID != userID {
		o.log.WithFields(ctx, logger.Fields{
			"user_id":      userID,
			"token_userid": session.UserID,
			"action":       "register_identity_mismatch",
		}).Warn("authentication service reported a different identity for the new user")
	}

	o.log.WithFields(ctx, logger.Fields{
		"user_id": userID,
		"action":  "register_success",
	}).Info("user registered")

	return authdomain.Session{UserID: userID, Token: session.Token}, outcomeSuccess, nil
}

// insertCredential writes the credential row and reads back its id on the
// same leased connection. The writes are detached from client cancellation
// and bounded by the step timeout.
func (o *Orchestrator) insertCredential(ctx context.Context, credential userdomain.Credential) (int64, outcome, error) {
	log := o.log.WithFields(ctx, logger.Fields{
		"username": credential.Username,
		"action":   "register_insert_failed",
	})

	lease, err := o.relational.Acquire(ctx)
	if err != nil {
		log.Errorf("register failed: relational connection unavailable: %v", err)
		return 0, outcomeBackendUnavailable, commonerrors.ErrBackendUnavailable.WithCause(err)
	}
	defer lease.Release()

	stepCtx, cancel := o.stepContext(ctx)
	defer cancel()

	rows, err := timed(stepInsertCredential, func() (int64, error) {
		return o.credentials.Insert(stepCtx, lease.Conn(), credential)
	})
	switch {
	case errors.Is(err, userrepo.ErrUsernameTaken), err == nil && rows == 0:
		o.log.WithFields(ctx, logger.Fields{
			"username": credential.Username,
			"action":   "register_username_exists",
		}).Info("register rejected: username occupied")
		return 0, outcomeConflict, commonerrors.ErrUsernameOccupied
	case err != nil:
		log.Errorf("register failed: insert credential: %v", err)
		return 0, outcomeBackendUnavailable, commonerrors.ErrBackendUnavailable.WithCause(err)
	case rows > 1:
		log.Errorf("register failed: credential insert affected %d rows", rows)
		return 0, outcomeInternal, commonerrors.ErrInternal
	}

	userID, err := timed(stepResolveIdentity, func() (int64, error) {
		return o.credentials.FindIDByUsername(stepCtx, lease.Conn(), credential.Username)
	})
	if errors.Is(err, userrepo.ErrUserNotFound) {
		log.Error("register failed: a credential row just inserted cannot be found")
		return 0, outcomeInternal, commonerrors.ErrInternal
	}
	if err != nil {
		log.Errorf("register failed: resolve identity: %v", err)
		return 0, outcomeBackendUnavailable, commonerrors.ErrBackendUnavailable.WithCause(err)
	}
	return userID, "", nil
}

// createGraphNode discards the session on any failure so it is not returned
// to the pool half-consumed.
func (o *Orchestrator) createGraphNode(ctx context.Context, lease *pool.Lease[pool.GraphSession], node userdomain.GraphUserNode) (outcome, error) {
	stepCtx, cancel := o.stepContext(ctx)
	defer cancel()

	_, err := timed(stepCreateGraphNode, func() (struct{}, error) {
		return struct{}{}, o.graph.CreateUser(stepCtx, lease.Conn(), node)
	})
	if err == nil {
		return "", nil
	}

	lease.Discard()
	o.logConsistencyGap(ctx, node.Username, node.ID, err)

	if errors.Is(err, graphrepo.ErrNodeExists) {
		return outcomeConflict, commonerrors.ErrUsernameOccupied
	}
	return outcomeBackendUnavailable, commonerrors.ErrBackendUnavailable.WithCause(err)
}

func (o *Orchestrator) logConsistencyGap(ctx context.Context, username string, userID int64, cause error) {
	o.log.WithFields(ctx, logger.Fields{
		"username": username,
		"user_id":  userID,
		"action":   "register_graph_node_missing",
	}).Errorf("credential committed without a graph node: %v", cause)
}

func (o *Orchestrator) abandoned(ctx context.Context, username string, next step, cause error) (authdomain.Session, outcome, error) {
	o.log.WithFields(ctx, logger.Fields{
		"username":  username,
		"next_step": string(next),
		"action":    "register_abandoned",
	}).Warnf("register abandoned: %v", cause)
	return authdomain.Session{}, outcomeAbandoned, commonerrors.ErrBackendUnavailable.WithCause(cause)
}

func (o *Orchestrator) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), o.stepTimeout)
}
