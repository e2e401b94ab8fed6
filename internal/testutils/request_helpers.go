package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/shopease/storefront/internal/api/middleware"
	"github.com/shopease/storefront/internal/models"
)

const TestClientID = "test-client"

// CreateTestRequestWithContext builds a request as it looks after the auth,
// client id and logging middleware ran for userID.
func CreateTestRequestWithContext(method, target string, body io.Reader, userID string, role models.Role, pathParams map[string]string) *http.Request {
	req := CreateTestRequestWithoutContext(method, target, body, pathParams)

	claims := &models.Claims{UserID: userID, Email: "test@example.com", FullName: "Test User", Role: role}

	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}

func CreateTestRequestWithoutContext(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.WithValue(req.Context(), middleware.LoggerKey, logger)
	ctx = middleware.WithClientID(ctx, TestClientID)

	return req.WithContext(ctx)
}
