package http

import (
	"net/http"
	"strconv"

	commonerrors "github.com/ThalliMega/MiniTikTok-User-Http/internal/common/errors"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/httpmetrics"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/observability/metrics"
)

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

// Resolve maps err to the body status code and message sent to the client.
// Causes never leave the process; they are logged here and dropped.
func (h *ErrorHandler) Resolve(r *http.Request, err error) (int, string) {
	if err == nil {
		return commonerrors.StatusOf(nil)
	}

	ctx := r.Context()
	path := httpmetrics.NormalizePath(r.URL.Path)

	domainErr, ok := commonerrors.AsDomainError(err)
	if !ok {
		h.log.WithFields(ctx, logger.Fields{
			"path":   path,
			"action": "unhandled_error",
		}).Errorf("unhandled error: %v", err)
		domainErr = commonerrors.ErrInternal
	} else if h.log.ShouldLog(logger.DEBUG) {
		h.log.WithFields(ctx, logger.Fields{
			"error_code": domainErr.Code(),
			"category":   string(domainErr.Category()),
			"status":     domainErr.Status(),
			"path":       path,
			"action":     "domain_error",
		}).Debugf("domain error: %s", err.Error())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(domainErr.Category()),
		domainErr.Code(),
		strconv.Itoa(domainErr.Status()),
	).Inc()

	return domainErr.Status(), domainErr.Message()
}

