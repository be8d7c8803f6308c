package brands

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandlens/brandlens/internal/platform/httpx"
	"github.com/brandlens/brandlens/internal/shared"
)

func withSession(t *testing.T, req *http.Request, userID int64) (*http.Request, *shared.Session) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sm := shared.NewSessionManager(client, "brandlens_session", "secret", time.Hour, false)
	sess, err := sm.Load(req.Context(), req)
	require.NoError(t, err)
	if userID > 0 {
		sess.SetUser(strconv.FormatInt(userID, 10))
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess)), sess
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T, g *Guard) http.Handler {
	mw := Middleware{Guard: g}
	r := chi.NewRouter()
	r.Use(mw.RequireUser)
	NewHandler(testLogger(), g).MountRoutes(r)
	r.With(mw.RequireRole(shared.RoleAdmin)).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Route("/brands/{brandID}", func(r chi.Router) {
		r.With(mw.RequireBrand(false)).Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
			b, ok := BrandFromContext(r.Context())
			assert.True(t, ok)
			assert.NotEmpty(t, b.Name)
			httpx.JSON(w, http.StatusOK, map[string]int64{"brand": b.ID})
		})
		r.With(mw.RequireBrand(true)).Get("/rfm", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestRequireUserRejectsAnonymous(t *testing.T) {
	g, _ := newTestGuard()
	req, _ := withSession(t, httptest.NewRequest(http.MethodGet, "/brands", nil), 0)
	rr := httptest.NewRecorder()
	newTestRouter(t, g).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListBrandsUsesSelection(t *testing.T) {
	g, _ := newTestGuard()
	req, sess := withSession(t, httptest.NewRequest(http.MethodGet, "/brands", nil), supplierID)
	sess.SetSelection(13, "90d")

	rr := httptest.NewRecorder()
	newTestRouter(t, g).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var body brandList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body.Brands, 2)
	require.NotNil(t, body.Selected)
	assert.EqualValues(t, 13, body.Selected.ID)
	assert.Equal(t, "90d", body.Period)
}

func TestListBrandsFallsBackWhenSelectionRevoked(t *testing.T) {
	g, _ := newTestGuard()
	req, sess := withSession(t, httptest.NewRequest(http.MethodGet, "/brands", nil), supplierID)
	sess.SetSelection(11, "")

	rr := httptest.NewRecorder()
	newTestRouter(t, g).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var body brandList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.NotNil(t, body.Selected)
	assert.EqualValues(t, 10, body.Selected.ID)
}

func TestUpdateSelectionValidates(t *testing.T) {
	g, _ := newTestGuard()
	router := newTestRouter(t, g)

	req, _ := withSession(t, httptest.NewRequest(http.MethodPut, "/brands/selection", strings.NewReader(`{"brand_id":10,"period":"2y"}`)), supplierID)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req, _ = withSession(t, httptest.NewRequest(http.MethodPut, "/brands/selection", strings.NewReader(`{"brand_id":11}`)), supplierID)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req, sess := withSession(t, httptest.NewRequest(http.MethodPut, "/brands/selection", strings.NewReader(`{"brand_id":13,"period":"12m"}`)), supplierID)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	brandID, period := sess.Selection()
	assert.EqualValues(t, 13, brandID)
	assert.Equal(t, "12m", period)
}

func TestRequireBrand(t *testing.T) {
	g, _ := newTestGuard()
	router := newTestRouter(t, g)

	cases := []struct {
		path   string
		status int
		kind   string
	}{
		{"/brands/10/dashboard", http.StatusOK, ""},
		{"/brands/11/dashboard", http.StatusForbidden, "brand_forbidden"},
		{"/brands/abc/dashboard", http.StatusBadRequest, ""},
		{"/brands/10/rfm", http.StatusOK, ""},
		{"/brands/13/rfm", http.StatusForbidden, "premium_required"},
	}
	for _, tc := range cases {
		req, _ := withSession(t, httptest.NewRequest(http.MethodGet, tc.path, nil), supplierID)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, tc.status, rr.Code, tc.path)
		if tc.kind != "" {
			var problem httpx.ProblemDetail
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
			assert.Equal(t, tc.kind, problem.Type, tc.path)
		}
	}
}

func TestRequireRole(t *testing.T) {
	g, _ := newTestGuard()
	router := newTestRouter(t, g)

	req, _ := withSession(t, httptest.NewRequest(http.MethodGet, "/admin", nil), supplierID)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req, _ = withSession(t, httptest.NewRequest(http.MethodGet, "/admin", nil), adminID)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestBrandIDFromContext(t *testing.T) {
	_, ok := BrandIDFromContext(context.Background())
	assert.False(t, ok)
	id, ok := BrandIDFromContext(WithBrand(context.Background(), Brand{ID: 4, Currency: "EUR"}))
	assert.True(t, ok)
	assert.EqualValues(t, 4, id)
	b, ok := BrandFromContext(WithBrand(context.Background(), Brand{ID: 4, Currency: "EUR"}))
	assert.True(t, ok)
	assert.Equal(t, "EUR", b.Currency)
}
