package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"livebait-directory/cache"
	"livebait-directory/database"
	"livebait-directory/handlers"
	"livebait-directory/importer"
	"livebait-directory/metrics"
	"livebait-directory/regions"
	"livebait-directory/testhelpers"
	"livebait-directory/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(t *testing.T) (*gin.Engine, *utils.TokenIssuer) {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	log, _ := testhelpers.NewTestLogger()

	issuer, err := utils.NewTokenIssuer("test-secret-for-routes")
	if err != nil {
		t.Fatal(err)
	}

	h := Handlers{
		Directory: &handlers.DirectoryHandler{DB: db, Cache: cache.Nop{}, SiteURL: "https://site.test", Log: log},
		Auth:      &handlers.AuthHandler{Issuer: issuer, Log: log},
		Imports: &handlers.ImportHandler{
			Importer:  importer.New(database.NewGormStore(db), regions.Default(), importer.DefaultOptions(), log),
			Jobs:      utils.NewJobStore(),
			Delimiter: ",",
			Log:       log,
		},
	}

	r := gin.New()
	stop := SetupRoutes(r, h, issuer, log)
	t.Cleanup(stop)
	return r, issuer
}

func TestHealthCheck(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPublicRegionsRoute(t *testing.T) {
	r, _ := setupRouter(t)
	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/api/regions", "200"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/regions", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	after := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/api/regions", "200"))
	if after-before != 1 {
		t.Errorf("expected request counter to grow by 1, got %v", after-before)
	}
}

func TestNearbyRouteIsNotShadowedBySlug(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/listings/near?lat=43.6&lng=-70.2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLoginRouteExists(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminRouteRequiresAuth(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/api/admin/imports", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminRouteBlocksNonAdmin(t *testing.T) {
	r, issuer := setupRouter(t)
	token, _ := issuer.GenerateToken("editor@test.com", "editor")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAdminRouteAllowsAdmin(t *testing.T) {
	r, issuer := setupRouter(t)
	token, _ := issuer.GenerateToken("admin@test.com", utils.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMetricsRoute(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "livebait_import_schedule_failures_total") {
		t.Error("expected livebait metrics in exposition")
	}
}
