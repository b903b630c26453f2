package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"livebait-directory/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-unit-tests"

func init() {
	gin.SetMode(gin.TestMode)
}

func testIssuer(t *testing.T) *utils.TokenIssuer {
	t.Helper()
	issuer, err := utils.NewTokenIssuer(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return issuer
}

func setupTestRouter(issuer *utils.TokenIssuer) *gin.Engine {
	r := gin.New()

	protected := r.Group("/api")
	protected.Use(AuthMiddleware(issuer))
	protected.GET("/test", func(c *gin.Context) {
		email, _ := c.Get(ContextEmail)
		role, _ := c.Get(ContextRole)
		c.JSON(http.StatusOK, gin.H{"email": email, "role": role})
	})

	admin := r.Group("/api/admin")
	admin.Use(AuthMiddleware(issuer))
	admin.Use(AdminMiddleware())
	admin.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "admin access granted"})
	})

	return r
}

func doRequest(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	issuer := testIssuer(t)
	token, err := issuer.GenerateToken("admin@test.com", utils.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}

	w := doRequest(setupTestRouter(issuer), "/api/test", "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	issuer := testIssuer(t)
	router := setupTestRouter(issuer)

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, utils.Claims{
		Email: "expired@test.com",
		Role:  utils.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			Issuer:    "livebait-directory",
		},
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"no bearer prefix", "Token abc"},
		{"too many parts", "Bearer a b"},
		{"malformed token", "Bearer not-a-valid-token"},
		{"expired token", "Bearer " + expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, "/api/test", tt.header)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestAdminMiddlewareAllowsAdmin(t *testing.T) {
	issuer := testIssuer(t)
	token, _ := issuer.GenerateToken("admin@test.com", utils.RoleAdmin)

	w := doRequest(setupTestRouter(issuer), "/api/admin/test", "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminMiddlewareBlocksOtherRoles(t *testing.T) {
	issuer := testIssuer(t)
	token, _ := issuer.GenerateToken("viewer@test.com", "viewer")

	w := doRequest(setupTestRouter(issuer), "/api/admin/test", "Bearer "+token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d: %s", w.Code, w.Body.String())
	}
}
