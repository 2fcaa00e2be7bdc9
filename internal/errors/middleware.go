package errors

import (
	"log/slog"
	"net/http"
)

// RecoveryMiddleware provides panic recovery with proper error responses
func RecoveryMiddleware(handler *ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					handler.HandlePanic(w, r, rvr)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LogHandlerError is a convenience for handlers that only need to log a
// secondary failure, such as a broken client connection while streaming.
func (h *ErrorHandler) LogHandlerError(r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("path", r.URL.Path))
}
