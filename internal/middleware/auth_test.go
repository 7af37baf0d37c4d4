package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
	"github.com/tickhubhq/tickhub-backend/internal/requestdata"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newTestRouter(t *testing.T) (*gin.Engine, *uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	am, err := NewAuthMiddleware(log, testSecret)
	if err != nil {
		t.Fatalf("NewAuthMiddleware: %v", err)
	}

	var gotOrg uuid.UUID
	router := gin.New()
	router.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		gotOrg = requestdata.OrganizationID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return router, &gotOrg
}

func TestRequireAuth(t *testing.T) {
	orgID := uuid.New()

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{
			"valid token",
			"Bearer " + signToken(t, testSecret, jwt.MapClaims{"org_id": orgID.String(), "exp": time.Now().Add(time.Hour).Unix()}),
			http.StatusNoContent,
		},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{
			"wrong secret",
			"Bearer " + signToken(t, "other-secret", jwt.MapClaims{"org_id": orgID.String()}),
			http.StatusUnauthorized,
		},
		{
			"no org claim",
			"Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "someone"}),
			http.StatusUnauthorized,
		},
		{
			"expired",
			"Bearer " + signToken(t, testSecret, jwt.MapClaims{"org_id": orgID.String(), "exp": time.Now().Add(-time.Hour).Unix()}),
			http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, gotOrg := newTestRouter(t)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
			if tc.wantStatus == http.StatusNoContent && *gotOrg != orgID {
				t.Fatalf("request scoped to %v, want %v", *gotOrg, orgID)
			}
		})
	}
}
