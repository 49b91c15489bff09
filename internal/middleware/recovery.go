package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

type recoveryWriter struct {
	http.ResponseWriter
	headerWritten bool
}

func (rw *recoveryWriter) WriteHeader(code int) {
	rw.headerWritten = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recoveryWriter) Write(b []byte) (int, error) {
	rw.headerWritten = true
	return rw.ResponseWriter.Write(b)
}

func (rw *recoveryWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Recovery turns a handler panic into a 500 JSON error when nothing has been
// written yet. http.ErrAbortHandler is re-raised so the server aborts the
// connection quietly.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &recoveryWriter{ResponseWriter: w}

			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				// Logging runs inside Recovery, so the id is only on the response.
				reqID := RequestID(r.Context())
				if reqID == "" {
					reqID = rw.Header().Get(RequestIDHeader)
				}
				logger.ErrorContext(r.Context(), "panic recovered",
					"error", err,
					"request_id", reqID,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				if rw.headerWritten {
					return
				}
				if encErr := writeError(rw, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"); encErr != nil {
					logger.ErrorContext(r.Context(), "failed to write recovery response", "error", encErr)
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
