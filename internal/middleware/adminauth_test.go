package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/tooldex/internal/auth"
	"github.com/jonesrussell/tooldex/internal/middleware"
)

type stubVerifier struct {
	identity *auth.Identity
}

func (s *stubVerifier) Verify(string) (*auth.Identity, error) {
	if s.identity == nil {
		return nil, auth.ErrInvalidToken
	}
	return s.identity, nil
}

type stubClaims struct {
	claims map[string]map[string]any
}

func (s *stubClaims) Get(_ context.Context, uid string) (map[string]any, error) {
	if c, ok := s.claims[uid]; ok {
		return c, nil
	}
	return map[string]any{}, nil
}

func (s *stubClaims) Merge(context.Context, string, string, any) error { return nil }

func setupAdminRouter(t *testing.T, verifier auth.TokenVerifier, claims auth.ClaimStore) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	allow := auth.NewAllowList([]string{"admin@x.com"})

	protected := r.Group("/api/admin", middleware.AdminAuth(verifier, allow, claims))
	protected.GET("/ping", func(c *gin.Context) {
		identity, ok := middleware.Identity(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"uid": identity.UID})
	})

	return r
}

func getPing(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth_MissingHeader(t *testing.T) {
	r := setupAdminRouter(t, &stubVerifier{}, &stubClaims{})

	if w := getPing(r, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminAuth_MalformedHeader(t *testing.T) {
	r := setupAdminRouter(t, &stubVerifier{}, &stubClaims{})

	for _, header := range []string{"token-without-scheme", "Basic abc", "Bearer"} {
		if w := getPing(r, header); w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, w.Code)
		}
	}
}

func TestAdminAuth_InvalidToken(t *testing.T) {
	r := setupAdminRouter(t, &stubVerifier{}, &stubClaims{})

	if w := getPing(r, "Bearer bad"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminAuth_VerifiedNonAdmin(t *testing.T) {
	v := &stubVerifier{identity: &auth.Identity{UID: "u1", Email: "user@y.com"}}
	r := setupAdminRouter(t, v, &stubClaims{})

	if w := getPing(r, "Bearer token"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAdminAuth_AdminClaim(t *testing.T) {
	v := &stubVerifier{identity: &auth.Identity{UID: "u1", Email: "user@y.com"}}
	claims := &stubClaims{claims: map[string]map[string]any{
		"u1": {auth.AdminClaim: true},
	}}
	r := setupAdminRouter(t, v, claims)

	if w := getPing(r, "Bearer token"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin claim, got %d", w.Code)
	}
}

func TestAdminAuth_AllowListedEmail(t *testing.T) {
	// No admin claim yet; the allow-listed email alone grants access so
	// moderation works before the first bootstrap call.
	v := &stubVerifier{identity: &auth.Identity{UID: "u1", Email: "Admin@X.com"}}
	r := setupAdminRouter(t, v, &stubClaims{})

	if w := getPing(r, "Bearer token"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for allow-listed email, got %d", w.Code)
	}
}
