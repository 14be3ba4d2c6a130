package http

import (
	"net/http"
	"runtime/debug"

	commonerrors "github.com/ThalliMega/MiniTikTok-User-Http/internal/common/errors"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
)

func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					log.WithFields(r.Context(), logger.Fields{
						"path":   r.URL.Path,
						"action": "panic_recovered",
					}).Errorf("panic recovered: %v\n%s", err, debug.Stack())
					WriteStatus(w, http.StatusInternalServerError, commonerrors.StatusInternal, commonerrors.ErrInternal.Message())
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
