package service

import (
	authdomain "github.com/ThalliMega/MiniTikTok-User-Http/internal/auth/domain"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/observability/metrics"
)

const (
	opIssueToken   = "issue_token"
	opAuthenticate = "authenticate"

	outcomeSuccess        = "success"
	outcomeRejected       = "rejected"
	outcomeUnspecified    = "unspecified"
	outcomeTransportError = "transport_error"
)

func outcomeFor(s authdomain.Status) string {
	switch s {
	case authdomain.StatusSuccess:
		return outcomeSuccess
	case authdomain.StatusFail:
		return outcomeRejected
	default:
		return outcomeUnspecified
	}
}

func recordOutcome(operation, outcome string) {
	metrics.AuthGateOutcomes.WithLabelValues(operation, outcome).Inc()
}
