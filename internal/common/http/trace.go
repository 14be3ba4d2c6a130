package http

import (
	"context"
	"net/http"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/constants"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/crypto"
)

const traceIDHeader = "X-Trace-ID"

const maxTraceIDLength = 128

// TraceIDMiddleware propagates an incoming X-Trace-ID or mints a new one, and
// stores it where the logger looks for it.
func TraceIDMiddleware(gen crypto.TraceIDGenerator) func(http.Handler) http.Handler {
	if gen == nil {
		gen = crypto.UUIDGenerator{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(traceIDHeader)
			if traceID == "" || len(traceID) > maxTraceIDLength {
				traceID = gen.NewTraceID()
			}

			w.Header().Set(traceIDHeader, traceID)

			ctx := context.WithValue(r.Context(), constants.TraceIDKey, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
