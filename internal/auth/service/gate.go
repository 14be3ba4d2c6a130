package service

import (
	"context"

	authdomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/auth/domain"
	commonerrors "github.com/ThalliMega/MiniTikTok-User-Http/internal/common/errors"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
)

// TokenService is the authentication service as seen by the gate.
type TokenService interface {
	RetrieveToken(ctx context.Context, username, password string) (authdomain.TokenReply, error)
	Validate(ctx context.Context, token string) (authdomain.ValidateReply, error)
}

// Gate never caches tokens; every call goes to the authentication service.
type Gate struct {
	tokens TokenService
	log    *logger.Logger
}

func NewGate(tokens TokenService, log *logger.Logger) *Gate {
	return &Gate{tokens: tokens, log: log}
}

// IssueToken exchanges credentials for a session. Fail and Unspecified are
// both reported as ErrForbidden so callers cannot tell which field was wrong.
func (g *Gate) IssueToken(ctx context.Context, username, password string) (authdomain.Session, error) {
	reply, err := g.tokens.RetrieveToken(ctx, username, password)
	if err != nil {
		g.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "issue_token_transport_failed",
		}).Errorf("issue token failed: %v", err)
		recordOutcome(opIssueToken, outcomeTransportError)
		return authdomain.Session{}, commonerrors.ErrBackendUnavailable.WithCause(err)
	}

	switch reply.Status {
	case authdomain.StatusSuccess:
		recordOutcome(opIssueToken, outcomeSuccess)
		return authdomain.Session{UserID: reply.UserID, Token: reply.Token}, nil
	case authdomain.StatusUnspecified:
		g.log.WithFields(ctx, logger.Fields{
			"username": username,
			"action":   "issue_token_unspecified_status",
		}).Warn("authentication service returned an unspecified token status")
	}

	recordOutcome(opIssueToken, outcomeFor(reply.Status))
	return authdomain.Session{}, commonerrors.ErrForbidden
}

// Authenticate recovers the caller identity behind token. ok is false for a
// rejected token, including an Unspecified reply. err is set only for
// transport failures.
func (g *Gate) Authenticate(ctx context.Context, token string) (int64, bool, error) {
	reply, err := g.tokens.Validate(ctx, token)
	if err != nil {
		g.log.WithFields(ctx, logger.Fields{
			"action": "authenticate_transport_failed",
		}).Errorf("authenticate failed: %v", err)
		recordOutcome(opAuthenticate, outcomeTransportError)
		return 0, false, commonerrors.ErrBackendUnavailable.WithCause(err)
	}

	recordOutcome(opAuthenticate, outcomeFor(reply.Status))

	switch reply.Status {
	case authdomain.StatusSuccess:
		return reply.UserID, true, nil
	case authdomain.StatusUnspecified:
		g.log.WithFields(ctx, logger.Fields{
			"action": "authenticate_unspecified_status",
		}).Warn("authentication service returned an unspecified auth status, treating as rejected")
	}
	return 0, false, nil
}
