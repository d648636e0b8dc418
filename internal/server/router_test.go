package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	admindomain "echo-memory/backend/internal/admin/domain"
	"echo-memory/backend/internal/audit"
	auditdomain "echo-memory/backend/internal/audit/domain"
	"echo-memory/backend/internal/config"
	healthhandler "echo-memory/backend/internal/health/handler"
	identityhandler "echo-memory/backend/internal/identity/handler"
	"echo-memory/backend/internal/identity/service"
	"echo-memory/backend/internal/ratelimit"
	ratelimitrepo "echo-memory/backend/internal/ratelimit/repository"
	"echo-memory/backend/internal/security"
	userdomain "echo-memory/backend/internal/user/domain"
	userhandler "echo-memory/backend/internal/user/handler"
)

type fakeUserStore struct {
	byEmail map[string]*userdomain.User
	nextID  int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*userdomain.User), nextID: 1}
}

func (s *fakeUserStore) GetByUID(_ context.Context, uid string) (*userdomain.User, error) {
	for _, u := range s.byEmail {
		if u.UID == uid {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	return s.byEmail[email], nil
}

func (s *fakeUserStore) EmailTakenByOther(_ context.Context, email, uid string) (bool, error) {
	u := s.byEmail[email]
	return u != nil && u.UID != uid, nil
}

func (s *fakeUserStore) Create(_ context.Context, u *userdomain.User) error {
	u.ID = s.nextID
	s.nextID++
	s.byEmail[u.Email] = u
	return nil
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, uid, fullName, email string) error {
	return nil
}

func (s *fakeUserStore) UpdateSettings(_ context.Context, uid, settings string) error {
	return nil
}

func (s *fakeUserStore) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	return nil
}

type fakeAdminStore struct{}

func (fakeAdminStore) GetByUsername(context.Context, string) (*admindomain.Admin, error) {
	return nil, nil
}

func (fakeAdminStore) UpdateLastLogin(context.Context, int64, time.Time) error { return nil }

type fakeAuditStore struct {
	events []*auditdomain.Event
}

func (s *fakeAuditStore) Create(_ context.Context, e *auditdomain.Event) error {
	s.events = append(s.events, e)
	return nil
}

func (s *fakeAuditStore) ListRecent(context.Context, int32) ([]*auditdomain.Event, error) {
	return s.events, nil
}

func (s *fakeAuditStore) CountSecurityAlerts(context.Context) (int64, error) {
	return int64(len(s.events)), nil
}

func (s *fakeAuditStore) actions() []string {
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Action)
	}
	return out
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func testRouter(t *testing.T, auditStore *fakeAuditStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:                    "test",
		RateLimitMaxRequests:   100,
		RateLimitWindowSeconds: 60,
	}
	tokens := security.NewTestTokenProvider()
	hasher := security.NewTestHasher()
	auditLogger := audit.NewLogger(auditStore, nil)

	users := newFakeUserStore()
	auth := service.NewAuthService(users, fakeAdminStore{}, hasher, tokens, time.Hour, 2)

	limiter := ratelimit.New(ratelimitrepo.NewMemoryRepository(), cfg.RateLimitMaxRequests, cfg.RateLimitWindow(), false, nil)

	return NewRouter(Deps{
		Config:   cfg,
		Limiter:  limiter,
		Tokens:   tokens,
		Audit:    auditLogger,
		Identity: identityhandler.New(auth, auditLogger, false),
		Users:    userhandler.New(users, auditLogger, false),
		Health:   healthhandler.New(okPinger{}),
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("%s %s: invalid JSON body %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, envelope
}

func TestLoginFlowEndToEnd(t *testing.T) {
	auditStore := &fakeAuditStore{}
	router := testRouter(t, auditStore)

	code, body := doJSON(t, router, http.MethodPost, "/api/register", "", map[string]any{
		"email":         "Asha@Example.com",
		"password":      "correct horse",
		"full_name":     "Asha Rao",
		"language_code": "hi",
	})
	if code != http.StatusCreated {
		t.Fatalf("register status = %d, body %v", code, body)
	}
	if body["status"] != "success" {
		t.Fatalf("register envelope = %v", body)
	}
	uid, _ := body["uid"].(string)
	if len(uid) != 32 {
		t.Fatalf("register uid = %q, want 32 hex chars", uid)
	}

	// Profile without a token must be rejected before any handler runs.
	code, body = doJSON(t, router, http.MethodGet, "/api/profile", "", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated profile status = %d", code)
	}
	if body["status"] != "error" || body["code"] != "unauthorized" {
		t.Fatalf("unauthenticated profile envelope = %v", body)
	}

	// Wrong password.
	code, _ = doJSON(t, router, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "asha@example.com",
		"password": "wrong horse",
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("bad-password login status = %d", code)
	}

	code, body = doJSON(t, router, http.MethodPost, "/api/login", "", map[string]any{
		"email":    "asha@example.com",
		"password": "correct horse",
	})
	if code != http.StatusOK {
		t.Fatalf("login status = %d, body %v", code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}
	user, _ := body["user"].(map[string]any)
	if user["uid"] != uid || user["email"] != "asha@example.com" || user["lang"] != "hi" {
		t.Fatalf("login user = %v", user)
	}

	code, body = doJSON(t, router, http.MethodGet, "/api/profile", token, nil)
	if code != http.StatusOK {
		t.Fatalf("profile status = %d, body %v", code, body)
	}
	profile, _ := body["user"].(map[string]any)
	if profile["uid"] != uid || profile["full_name"] != "Asha Rao" {
		t.Fatalf("profile = %v", profile)
	}

	// A regular user token must not open the admin surface.
	code, body = doJSON(t, router, http.MethodGet, "/api/admin/stats", token, nil)
	if code != http.StatusForbidden {
		t.Fatalf("admin stats with user token status = %d", code)
	}
	if body["code"] != "forbidden" {
		t.Fatalf("admin stats envelope = %v", body)
	}

	want := map[string]bool{"user_registered": false, "login_failed": false, "login_success": false}
	for _, action := range auditStore.actions() {
		if _, ok := want[action]; ok {
			want[action] = true
		}
	}
	for action, seen := range want {
		if !seen {
			t.Errorf("audit trail missing %q; got %v", action, auditStore.actions())
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router := testRouter(t, &fakeAuditStore{})

	// /api/login only accepts POST.
	code, body := doJSON(t, router, http.MethodGet, "/api/login", "", nil)
	if code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /api/login status = %d, want 405", code)
	}
	if body["status"] != "error" || body["code"] != "method_not_allowed" {
		t.Fatalf("method-not-allowed envelope = %v", body)
	}

	code, _ = doJSON(t, router, http.MethodDelete, "/api/profile", "", nil)
	if code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE /api/profile status = %d, want 405", code)
	}
}

func TestUnknownRouteEnvelope(t *testing.T) {
	router := testRouter(t, &fakeAuditStore{})

	code, body := doJSON(t, router, http.MethodGet, "/api/nope", "", nil)
	if code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
	if body["status"] != "error" || body["code"] != "not_found" {
		t.Fatalf("not-found envelope = %v", body)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := testRouter(t, &fakeAuditStore{})

	code, body := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	if code != http.StatusOK || body["status"] != "success" {
		t.Fatalf("health = %d %v", code, body)
	}
	code, _ = doJSON(t, router, http.MethodGet, "/api/health/ready", "", nil)
	if code != http.StatusOK {
		t.Fatalf("ready = %d", code)
	}
}
