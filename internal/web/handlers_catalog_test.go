package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"spa-directory/internal/auth"
	"spa-directory/internal/catalog"
	"spa-directory/internal/config"
	"spa-directory/internal/notify"
)

const testCSV = `nid,title,email,phone,address,website,location,budget,rating,opening_hour,closing_hour,treatments
1,Ubud Wellness,,,Jl. Raya Ubud 1,,Ubud,2,4.5,,,Massage
2,Seminyak Retreat,,,Jl. Kayu Aya 99,,Seminyak,,,,,Facial;Massage
3,Sari Spa,,,Jl. Monkey Forest 3,,Ubud,1,3.0,,,
`

// newTestServer builds a server over the three-record test catalog, with
// rate limiting off and no database behind the auth service.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "spas.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatalf("write test catalog: %v", err)
	}

	store := catalog.NewStore()
	if err := store.Load(path); err != nil {
		t.Fatalf("load test catalog: %v", err)
	}

	cfg := &config.Config{}
	cfg.Catalog.Path = path
	cfg.Catalog.DefaultPageSize = 20
	cfg.Server.RequestTimeout = time.Minute
	cfg.Auth.JWTSecret = "test-secret"

	authSvc := auth.NewService(auth.NewStore(nil), cfg.Auth.JWTSecret, time.Hour, 10)
	notifier := notify.NewNotifier(nil, time.Second)

	return NewServer(cfg, store, authSvc, notifier)
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHandleFilters(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/filters")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got catalog.Facets
	decodeBody(t, rec, &got)

	if len(got.Locations) != 2 {
		t.Errorf("Locations = %v, want 2 entries", got.Locations)
	}
	if len(got.Treatments) != 2 {
		t.Errorf("Treatments = %v, want 2 entries", got.Treatments)
	}
	if len(got.Budgets) != 2 {
		t.Errorf("Budgets = %v, want 2 entries", got.Budgets)
	}
}

func TestHandleListSpas(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/spas?location=ubud&sort=rating_desc&page=1&pageSize=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got catalog.Result
	decodeBody(t, rec, &got)

	if got.Total != 2 {
		t.Errorf("total = %d, want 2", got.Total)
	}
	if got.PageCount != 1 {
		t.Errorf("pageCount = %d, want 1", got.PageCount)
	}
	if len(got.Items) != 2 || got.Items[0].ID != 1 || got.Items[1].ID != 3 {
		t.Errorf("items = %+v, want records 1 then 3", got.Items)
	}
}

// Malformed query parameters must never produce an error response.
func TestHandleListSpas_MalformedParamsDegrade(t *testing.T) {
	s := newTestServer(t)

	targets := []string{
		"/api/spas?page=banana",
		"/api/spas?pageSize=-2",
		"/api/spas?budget=cheap",
		"/api/spas?sort=sideways",
		"/api/spas?page=99999",
	}

	for _, target := range targets {
		rec := doRequest(t, s, http.MethodGet, target)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", target, rec.Code)
		}
	}

	rec := doRequest(t, s, http.MethodGet, "/api/spas?page=99999&pageSize=20")
	var got catalog.Result
	decodeBody(t, rec, &got)
	if got.Page != 1 {
		t.Errorf("page = %d, want 1 (clamped)", got.Page)
	}
	if len(got.Items) != 3 {
		t.Errorf("len(items) = %d, want 3", len(got.Items))
	}
}

func TestHandleSpaDetail(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/spas/2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got catalog.Spa
	decodeBody(t, rec, &got)
	if got.Title != "Seminyak Retreat" {
		t.Errorf("title = %q, want %q", got.Title, "Seminyak Retreat")
	}
	if got.Budget != nil {
		t.Errorf("budget = %v, want null for absent", *got.Budget)
	}
}

func TestHandleSpaDetail_NotFound(t *testing.T) {
	s := newTestServer(t)

	for _, id := range []string{"99", "abc"} {
		rec := doRequest(t, s, http.MethodGet, "/api/spas/"+id)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET /api/spas/%s status = %d, want 404", id, rec.Code)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	targets := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodPost, "/api/checkout"},
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/admin/reload"},
	}

	for _, tt := range targets {
		rec := doRequest(t, s, tt.method, tt.path)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tt.method, tt.path, rec.Code)
		}
	}
}

func TestAdminRoutesRejectNonAdmin(t *testing.T) {
	s := newTestServer(t)

	// A valid token carrying the plain "user" role.
	token := userToken(t, s, auth.RoleUser)

	for _, path := range []string{"/api/users", "/api/admin/reload"} {
		req := httptest.NewRequest(methodFor(path), path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("%s status = %d, want 403", path, rec.Code)
		}
	}
}

func TestAdminReload(t *testing.T) {
	s := newTestServer(t)

	token := userToken(t, s, auth.RoleAdmin)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/reload", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Break the file; reload must fail and keep the old snapshot.
	if err := os.WriteFile(s.cfg.Catalog.Path, []byte("title\nNo ID\n"), 0o644); err != nil {
		t.Fatalf("overwrite catalog: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/reload", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("reload of broken catalog status = %d, want 500", rec.Code)
	}
	if got := s.catalog.Snapshot().Len(); got != 3 {
		t.Errorf("snapshot len after failed reload = %d, want 3", got)
	}
}

func methodFor(path string) string {
	if path == "/api/users" {
		return http.MethodGet
	}
	return http.MethodPost
}

// userToken issues a token for a fabricated account with the given role,
// signed with the test server's secret.
func userToken(t *testing.T, s *Server, role string) string {
	t.Helper()
	u := &auth.User{ID: 7, Email: "tester@example.com", Role: role}
	token, err := auth.SignToken(s.cfg.Auth.JWTSecret, u, time.Hour)
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}
