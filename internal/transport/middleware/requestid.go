package middleware

import (
	"net/http"

	"github.com/bosco250/myUrutiSaluni-sub007/pkg/logger"

	"github.com/google/uuid"
)

// RequestID reuses an inbound X-Trace-ID or mints one, binds it to the
// request-scoped logger and echoes it back so the app can correlate a
// payment session with server logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "trace_id", traceID)
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
