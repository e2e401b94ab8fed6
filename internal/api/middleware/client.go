package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	ClientIDHeader = "X-Client-ID"
	ClientIDCookie = "shopease_client"

	clientIDCookieMaxAge = 365 * 24 * time.Hour
	maxClientIDLength    = 128
)

type clientIDKey struct{}

// ClientID identifies the browser tab or device the request comes from. The
// X-Client-ID header wins over the cookie; without either a new id is issued
// as a cookie.
func ClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(ClientIDHeader)

		if id == "" {
			if cookie, err := r.Cookie(ClientIDCookie); err == nil {
				id = cookie.Value
			}
		}

		if id == "" || len(id) > maxClientIDLength {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     ClientIDCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(clientIDCookieMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		w.Header().Set(ClientIDHeader, id)

		next.ServeHTTP(w, r.WithContext(WithClientID(r.Context(), id)))
	})
}

func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, id)
}

func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}
