package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/brandlens/brandlens/internal/auth"
	"github.com/brandlens/brandlens/internal/shared"
	_ "github.com/brandlens/brandlens/testing"
)

type stubRepo struct {
	user     *auth.User
	roles    []string
	sessions map[string]int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Email, email) {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) UserRoles(ctx context.Context, userID int64) ([]string, error) {
	return s.roles, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = make(map[string]int64)
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager, *shared.CSRFManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(nil, auth.NewService(repo), sessionManager, csrfManager)
	return handler, sessionManager, csrfManager
}

// serve runs the request through the handler with a freshly loaded session and
// commits it afterwards, mirroring the app middleware.
func serve(t *testing.T, handler *auth.Handler, sm *shared.SessionManager, req *http.Request) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)
	res := httptest.NewRecorder()
	router := chiRouter(handler)
	router.ServeHTTP(res, req)
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}
	return res, sess
}

func newUser(t *testing.T) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &auth.User{ID: 7, Email: "supplier@test.local", Name: "Sam", PasswordHash: string(hashed), IsActive: true}
}

func TestCSRFEndpointIssuesToken(t *testing.T) {
	handler, sm, _ := newAuthHandler(t, &stubRepo{})
	res, sess := serve(t, handler, sm, httptest.NewRequest(http.MethodGet, "/csrf", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["csrf_token"] == "" || body["csrf_token"] != sess.Get(shared.CSRFSessionKey) {
		t.Fatalf("expected token bound to session, got %q", body["csrf_token"])
	}
}

func TestLoginValidation(t *testing.T) {
	handler, sm, _ := newAuthHandler(t, &stubRepo{user: newUser(t)})
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"not-an-email","password":"short"}`))
	res, _ := serve(t, handler, sm, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"Email":"email"`) || !strings.Contains(res.Body.String(), `"Password":"min"`) {
		t.Fatalf("expected field errors, got %s", res.Body.String())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler, sm, _ := newAuthHandler(t, &stubRepo{user: newUser(t)})
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"supplier@test.local","password":"wrongpass"}`))
	res, sess := serve(t, handler, sm, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if sess.User() != "" {
		t.Fatalf("session must stay anonymous")
	}
}

func TestLoginRenewsSessionAndRecordsIt(t *testing.T) {
	repo := &stubRepo{user: newUser(t), roles: []string{"supplier"}}
	handler, sm, _ := newAuthHandler(t, repo)

	csrfRes, first := serve(t, handler, sm, httptest.NewRequest(http.MethodGet, "/csrf", nil))
	if csrfRes.Code != http.StatusOK {
		t.Fatalf("csrf: %d", csrfRes.Code)
	}
	oldID := first.ID
	oldToken := first.Get(shared.CSRFSessionKey)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"Supplier@test.local","password":"correctpass"}`))
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: oldID})
	res, sess := serve(t, handler, sm, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if sess.ID == oldID {
		t.Fatalf("session id must rotate on login")
	}
	if sess.User() != "7" {
		t.Fatalf("expected user 7, got %q", sess.User())
	}
	if token := sess.Get(shared.CSRFSessionKey); token == "" || token == oldToken {
		t.Fatalf("csrf token must rotate on login")
	}
	if repo.sessions[sess.ID] != 7 {
		t.Fatalf("session not recorded")
	}

	var body struct {
		User auth.Profile `json:"user"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User.Email != "supplier@test.local" || len(body.User.Roles) != 1 {
		t.Fatalf("unexpected profile %+v", body.User)
	}
}

func TestMeAndLogout(t *testing.T) {
	repo := &stubRepo{user: newUser(t), roles: []string{"admin"}}
	handler, sm, _ := newAuthHandler(t, repo)

	res, _ := serve(t, handler, sm, httptest.NewRequest(http.MethodGet, "/me", nil))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous /me: expected 401, got %d", res.Code)
	}

	loginReq := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"supplier@test.local","password":"correctpass"}`))
	_, sess := serve(t, handler, sm, loginReq)

	meReq := httptest.NewRequest(http.MethodGet, "/me", nil)
	meReq.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	res, _ = serve(t, handler, sm, meReq)
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), `"admin"`) {
		t.Fatalf("expected profile, got %d %s", res.Code, res.Body.String())
	}

	logoutReq := httptest.NewRequest(http.MethodPost, "/logout", nil)
	logoutReq.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	res, _ = serve(t, handler, sm, logoutReq)
	if res.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", res.Code)
	}
	if _, ok := repo.sessions[sess.ID]; ok {
		t.Fatalf("session record should be removed")
	}

	meReq = httptest.NewRequest(http.MethodGet, "/me", nil)
	meReq.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	res, _ = serve(t, handler, sm, meReq)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401, got %d", res.Code)
	}
}

func chiRouter(handler *auth.Handler) http.Handler {
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}
