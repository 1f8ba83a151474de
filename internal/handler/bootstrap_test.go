package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/tooldex/internal/auth"
	"github.com/jonesrussell/tooldex/internal/handler"
	"github.com/jonesrussell/tooldex/internal/logger"
)

// stubVerifier returns a fixed identity or rejects everything.
type stubVerifier struct {
	identity *auth.Identity
}

func (s *stubVerifier) Verify(string) (*auth.Identity, error) {
	if s.identity == nil {
		return nil, auth.ErrInvalidToken
	}
	return s.identity, nil
}

// memClaims is a minimal in-memory claim store.
type memClaims struct {
	claims map[string]map[string]any
	writes int
}

func (m *memClaims) Get(_ context.Context, uid string) (map[string]any, error) {
	if c, ok := m.claims[uid]; ok {
		return c, nil
	}
	return map[string]any{}, nil
}

func (m *memClaims) Merge(_ context.Context, uid, key string, value any) error {
	m.writes++
	if m.claims == nil {
		m.claims = map[string]map[string]any{}
	}
	if m.claims[uid] == nil {
		m.claims[uid] = map[string]any{}
	}
	m.claims[uid][key] = value
	return nil
}

func setupBootstrapRouter(t *testing.T, verifier auth.TokenVerifier, store auth.ClaimStore) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()

	b := auth.NewBootstrapper(verifier, auth.NewAllowList([]string{"a@x.com"}), store, logger.NewNop())
	h := handler.NewBootstrapHandler(b, testMetrics, logger.NewNop())
	r.POST("/api/admin/bootstrap", h.Bootstrap)

	return r
}

func postBootstrap(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/bootstrap", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestBootstrap_MissingToken(t *testing.T) {
	store := &memClaims{}
	r := setupBootstrapRouter(t, &stubVerifier{}, store)

	w := postBootstrap(r, "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if store.writes != 0 {
		t.Fatalf("expected zero writes, got %d", store.writes)
	}
}

func TestBootstrap_InvalidToken(t *testing.T) {
	store := &memClaims{}
	r := setupBootstrapRouter(t, &stubVerifier{}, store)

	w := postBootstrap(r, "Bearer bad-token")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestBootstrap_Forbidden(t *testing.T) {
	store := &memClaims{}
	v := &stubVerifier{identity: &auth.Identity{UID: "u1", Email: "intruder@y.com"}}
	r := setupBootstrapRouter(t, v, store)

	w := postBootstrap(r, "Bearer token")

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if store.writes != 0 {
		t.Fatalf("expected zero writes, got %d", store.writes)
	}
}

func TestBootstrap_Grants(t *testing.T) {
	store := &memClaims{}
	v := &stubVerifier{identity: &auth.Identity{UID: "u1", Email: "a@X.com "}}
	r := setupBootstrapRouter(t, v, store)

	w := postBootstrap(r, "Bearer token")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if ok, _ := body["ok"].(bool); !ok {
		t.Fatal("expected ok=true")
	}
	if _, present := body["already"]; present {
		t.Fatal("first grant must not report already=true")
	}
	if store.writes != 1 {
		t.Fatalf("expected exactly one write, got %d", store.writes)
	}
}

func TestBootstrap_Idempotent(t *testing.T) {
	store := &memClaims{claims: map[string]map[string]any{
		"u1": {"admin": true},
	}}
	v := &stubVerifier{identity: &auth.Identity{UID: "u1", Email: "a@x.com"}}
	r := setupBootstrapRouter(t, v, store)

	w := postBootstrap(r, "Bearer token")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if already, _ := body["already"].(bool); !already {
		t.Fatal("expected already=true")
	}
	if store.writes != 0 {
		t.Fatalf("expected zero writes on idempotent path, got %d", store.writes)
	}
}
