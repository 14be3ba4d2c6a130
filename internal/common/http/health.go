package http

import (
	"net/http"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
)

// HealthHandler answers 204 for as long as the process is serving.
func HealthHandler(log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			WriteStatus(w, http.StatusMethodNotAllowed, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if log.ShouldLog(logger.DEBUG) {
			log.Debugf("health check request from %s", GetClientIP(r))
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
