package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/wam-arcade/games-service/internal/api/apierr"
)

// Recovery creates middleware that converts panics into JSON 500
// responses
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic in handler",
						slog.Any("panic", rec),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					apierr.WriteInternalError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
