package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/admin/ping", AdminAuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAdminAuthMiddleware_RejectsMissingToken(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "sekret")
	r := newAuthTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAdminAuthMiddleware_RejectsWrongToken(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "sekret")
	r := newAuthTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("x-admin-token", "nope")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAdminAuthMiddleware_AcceptsValidToken(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "sekret")
	r := newAuthTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("x-admin-token", "sekret")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestAdminAuthMiddleware_UnconfiguredTokenRefusesService(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "")
	r := newAuthTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("x-admin-token", "anything")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
