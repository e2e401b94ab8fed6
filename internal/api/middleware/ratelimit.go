package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/shopease/storefront/internal/errors"
	repository "github.com/shopease/storefront/internal/repositories"
	"github.com/shopease/storefront/internal/utils/response"
)

// RateLimiter is satisfied by repository.RateLimitRepository.
type RateLimiter interface {
	Allow(ctx context.Context, subject string) (repository.RateDecision, error)
}

// RateLimit throttles writes per client id. When the limiter itself fails the
// request goes through.
func RateLimit(limiter RateLimiter) func(http.Handler) http.HandlerFunc {
	return func(next http.Handler) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			logger := LoggerFromContext(r.Context())
			clientID := ClientIDFromContext(r.Context())

			decision, err := limiter.Allow(r.Context(), clientID)
			if err != nil {
				logger.Error("Rate limit check failed", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))

				logger.Warn("Rate limit exceeded", slog.String("client_id", clientID))
				response.Error(w, errors.TooManyRequestsError("Too many requests, please slow down"))
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
			next.ServeHTTP(w, r)
		}
	}
}
