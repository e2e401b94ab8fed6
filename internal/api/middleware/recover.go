package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shopease/storefront/internal/errors"
	"github.com/shopease/storefront/internal/utils/response"
)

// Recover turns a handler panic into a generic 500 envelope.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			LoggerFromContext(r.Context()).Error("Handler panicked",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			response.Error(w, errors.InternalError("Something went wrong"))
		}()

		next.ServeHTTP(w, r)
	})
}
