package http

import (
	"net/http"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/constants"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/crypto"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/httpmetrics"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
)

func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	traceID := TraceIDMiddleware(crypto.UUIDGenerator{})
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware
	csp := ContentSecurityPolicyMiddleware("")

	return securityHeaders(csp(recovery(traceID(maxRequestSize(metrics.Wrap(handler))))))
}
