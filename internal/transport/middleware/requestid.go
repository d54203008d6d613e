package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/frahmantamala/leave-management/pkg/logger"
)

const TraceHeader = "X-Trace-ID"

// RequestID reuses an inbound trace id or mints one, and puts it on the
// request logger and the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" || len(traceID) > 64 {
			traceID = uuid.NewString()
		}

		w.Header().Set(TraceHeader, traceID)
		next.ServeHTTP(w, r.WithContext(logger.WithTraceID(r.Context(), traceID)))
	})
}
