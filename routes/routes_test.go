package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/utpal74/track-my-tasks-api/auth"
	"github.com/utpal74/track-my-tasks-api/db"
	"github.com/utpal74/track-my-tasks-api/handlers"
	"github.com/utpal74/track-my-tasks-api/oauth"
	"github.com/utpal74/track-my-tasks-api/service"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T, providers ...*oauth.Provider) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(ctx) })

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	flow := oauth.NewFlow(oauth.NewMemoryStateStore(), time.Minute, nil, providers...)
	authHandler := handlers.NewAuthHandler(
		auth.NewGate(tokens, auth.NewResolver(store)),
		service.NewAuthService(store, auth.NewHasher(bcrypt.MinCost), tokens),
		flow,
	)

	router := gin.New()
	SetupRoutes(router,
		authHandler,
		handlers.NewTaskHandler(service.NewTaskService(store)),
		handlers.NewCategoriesHandler(service.NewCategoryService(store)),
		handlers.NewStatsHandler(service.NewStatsService(store)),
	)
	return &testAPI{t: t, router: router}
}

// do sends a request and decodes a JSON response into out when out is set.
func (a *testAPI) do(method, path, token string, body any, out any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			a.t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w
}

func (a *testAPI) expect(w *httptest.ResponseRecorder, status int) {
	a.t.Helper()
	if w.Code != status {
		a.t.Fatalf("status = %d, want %d; body %s", w.Code, status, w.Body.String())
	}
}

func (a *testAPI) signup(email, password string) string {
	a.t.Helper()
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	w := a.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"email": email, "password": password}, &resp)
	a.expect(w, http.StatusOK)
	if resp.AccessToken == "" || resp.TokenType != "bearer" {
		a.t.Fatalf("signup response = %+v", resp)
	}
	return resp.AccessToken
}

type taskJSON struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func TestTaskLifecycle(t *testing.T) {
	api := newTestAPI(t)

	token := api.signup("a@x.com", "pw1")

	var me struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
	}
	api.expect(api.do(http.MethodGet, "/api/auth/me", token, nil, &me), http.StatusOK)
	if me.Email != "a@x.com" || me.ID == 0 {
		t.Fatalf("me = %+v", me)
	}

	w := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "wrong"}, nil)
	api.expect(w, http.StatusUnauthorized)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	w = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "pw1"}, &login)
	api.expect(w, http.StatusOK)
	if login.AccessToken == "" {
		t.Fatal("login returned no token")
	}

	var created taskJSON
	w = api.do(http.MethodPost, "/api/tasks", token, map[string]string{"id": "t1", "title": "Write"}, &created)
	api.expect(w, http.StatusCreated)
	if created.ID != "t1" || created.Status != service.DefaultTaskStatus || created.CreatedAt == "" {
		t.Fatalf("created = %+v", created)
	}

	var tasks []taskJSON
	api.expect(api.do(http.MethodGet, "/api/tasks", login.AccessToken, nil, &tasks), http.StatusOK)
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Fatalf("tasks = %+v, want [t1]", tasks)
	}

	var updated taskJSON
	w = api.do(http.MethodPut, "/api/tasks/t1", token, map[string]string{"status": "done"}, &updated)
	api.expect(w, http.StatusOK)
	if updated.Status != "done" || updated.Title != "Write" {
		t.Fatalf("updated = %+v", updated)
	}

	api.expect(api.do(http.MethodGet, "/api/tasks?status=active", token, nil, &tasks), http.StatusOK)
	if len(tasks) != 0 {
		t.Fatalf("active tasks = %+v, want none", tasks)
	}

	api.expect(api.do(http.MethodDelete, "/api/tasks/t1", token, nil, nil), http.StatusOK)
	api.expect(api.do(http.MethodGet, "/api/tasks", token, nil, &tasks), http.StatusOK)
	if len(tasks) != 0 {
		t.Fatalf("tasks after delete = %+v, want none", tasks)
	}
	api.expect(api.do(http.MethodGet, "/api/tasks/t1", token, nil, nil), http.StatusNotFound)
}

func TestSignupValidation(t *testing.T) {
	api := newTestAPI(t)
	api.signup("a@x.com", "pw1")

	var resp struct {
		Error string `json:"error"`
	}
	w := api.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "a@x.com", "password": "pw2"}, &resp)
	api.expect(w, http.StatusBadRequest)
	if resp.Error != "Email already registered" {
		t.Fatalf("error = %q", resp.Error)
	}

	for _, body := range []map[string]string{
		{"email": "not-an-email", "password": "pw"},
		{"email": "b@x.com"},
	} {
		api.expect(api.do(http.MethodPost, "/api/auth/signup", "", body, nil), http.StatusBadRequest)
	}
}

func TestUnauthenticatedRequestsLookAlike(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("a@x.com", "pw1")

	expired, err := auth.NewTokenService(auth.TokenConfig{
		Secret: "test-secret",
		Now:    func() time.Time { return time.Now().Add(-time.Hour) },
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	stale, err := expired.Issue(1, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	headers := map[string]string{
		"missing":   "",
		"malformed": "Token " + token,
		"garbage":   "Bearer not.a.token",
		"expired":   "Bearer " + stale,
	}
	var bodies []string
	for name, header := range headers {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, w.Code)
		}
		if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Fatalf("%s: WWW-Authenticate = %q, want Bearer", name, got)
		}
		bodies = append(bodies, w.Body.String())
	}
	for _, body := range bodies[1:] {
		if body != bodies[0] {
			t.Fatalf("bodies differ: %q vs %q", body, bodies[0])
		}
	}
}

func TestDeletedAccountTokenRejected(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("a@x.com", "pw1")
	api.expect(api.do(http.MethodPost, "/api/tasks", token, map[string]string{"id": "t1", "title": "x"}, nil), http.StatusCreated)

	api.expect(api.do(http.MethodDelete, "/api/auth/me", token, nil, nil), http.StatusOK)
	api.expect(api.do(http.MethodGet, "/api/auth/me", token, nil, nil), http.StatusUnauthorized)

	// The task id is free again once its owner is gone.
	other := api.signup("b@x.com", "pw1")
	api.expect(api.do(http.MethodPost, "/api/tasks", other, map[string]string{"id": "t1", "title": "y"}, nil), http.StatusCreated)
}

func TestTasksAreIsolated(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup("a@x.com", "pw1")
	bob := api.signup("b@x.com", "pw1")

	api.expect(api.do(http.MethodPost, "/api/tasks", alice, map[string]string{"id": "t1", "title": "Write"}, nil), http.StatusCreated)

	api.expect(api.do(http.MethodGet, "/api/tasks/t1", bob, nil, nil), http.StatusNotFound)
	api.expect(api.do(http.MethodPut, "/api/tasks/t1", bob, map[string]string{"title": "Mine"}, nil), http.StatusNotFound)
	api.expect(api.do(http.MethodDelete, "/api/tasks/t1", bob, nil, nil), http.StatusNotFound)
	api.expect(api.do(http.MethodPost, "/api/tasks", bob, map[string]string{"id": "t1", "title": "Mine"}, nil), http.StatusConflict)

	var tasks []taskJSON
	api.expect(api.do(http.MethodGet, "/api/tasks", bob, nil, &tasks), http.StatusOK)
	if len(tasks) != 0 {
		t.Fatalf("bob sees %+v", tasks)
	}

	var task taskJSON
	api.expect(api.do(http.MethodGet, "/api/tasks/t1", alice, nil, &task), http.StatusOK)
	if task.Title != "Write" {
		t.Fatalf("title = %q, want Write", task.Title)
	}
}

func TestCategoriesAndStats(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("a@x.com", "pw1")
	other := api.signup("b@x.com", "pw1")

	var work struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	api.expect(api.do(http.MethodPost, "/api/categories?category_name=work", token, nil, &work), http.StatusCreated)
	if work.Name != "work" || work.ID == 0 {
		t.Fatalf("category = %+v", work)
	}
	api.expect(api.do(http.MethodPost, "/api/categories", token, map[string]string{"name": "home"}, nil), http.StatusCreated)
	api.expect(api.do(http.MethodPost, "/api/categories", token, nil, nil), http.StatusBadRequest)

	path := "/api/categories/" + strconv.FormatUint(uint64(work.ID), 10)
	api.expect(api.do(http.MethodPut, path, other, map[string]string{"name": "x"}, nil), http.StatusNotFound)
	api.expect(api.do(http.MethodPut, path, token, map[string]string{"name": "office"}, nil), http.StatusOK)
	api.expect(api.do(http.MethodDelete, "/api/categories/abc", token, nil, nil), http.StatusBadRequest)

	var categories []struct {
		Name string `json:"name"`
	}
	api.expect(api.do(http.MethodGet, "/api/categories", token, nil, &categories), http.StatusOK)
	if len(categories) != 2 || categories[0].Name != "office" {
		t.Fatalf("categories = %+v", categories)
	}
	api.expect(api.do(http.MethodGet, "/api/categories", other, nil, &categories), http.StatusOK)
	if len(categories) != 0 {
		t.Fatalf("other user sees %+v", categories)
	}

	for _, body := range []map[string]any{
		{"id": "t1", "title": "a", "category": "office", "status": "done", "estimated_hours": 2},
		{"id": "t2", "title": "b", "category": "office", "estimated_hours": 4},
	} {
		api.expect(api.do(http.MethodPost, "/api/tasks", token, body, nil), http.StatusCreated)
	}
	api.expect(api.do(http.MethodPost, "/api/tasks", token, map[string]any{"title": "c", "estimated_hours": -1}, nil), http.StatusBadRequest)

	var stats service.Stats
	api.expect(api.do(http.MethodGet, "/api/stats", token, nil, &stats), http.StatusOK)
	if stats.TotalTasks != 2 || stats.HoursStats.AvgEstimatedHours != 3 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(stats.CategoryStats) != 2 || stats.CategoryStats[0].CompletedTasks != 1 {
		t.Fatalf("category_stats = %+v", stats.CategoryStats)
	}

	api.expect(api.do(http.MethodDelete, path, token, nil, nil), http.StatusOK)
	api.expect(api.do(http.MethodDelete, path, token, nil, nil), http.StatusNotFound)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	var resp map[string]string
	api.expect(api.do(http.MethodGet, "/", "", nil, &resp), http.StatusOK)
	if resp["status"] != "ok" {
		t.Fatalf("health = %v", resp)
	}
}

func TestOAuthSignIn(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-token","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"login":"octo","email":"octo@x.com"}`))
	})
	provider := httptest.NewServer(mux)
	t.Cleanup(provider.Close)

	github := oauth.GitHub(oauth.ProviderConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"})
	github.Config.Endpoint = oauth2.Endpoint{
		AuthURL:   provider.URL + "/authorize",
		TokenURL:  provider.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	github.UserInfoURL = provider.URL + "/user"
	github.EmailsURL = provider.URL + "/user/emails"

	api := newTestAPI(t, github)

	w := api.do(http.MethodGet, "/api/auth/oauth/github/login", "", nil, nil)
	api.expect(w, http.StatusFound)
	location, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse Location: %v", err)
	}
	state := location.Query().Get("state")
	if state == "" {
		t.Fatalf("no state in %s", location)
	}

	callback := "/api/auth/oauth/github/callback?code=abc&state=" + url.QueryEscape(state)
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	api.expect(api.do(http.MethodGet, callback, "", nil, &resp), http.StatusOK)

	var me struct {
		Email         string  `json:"email"`
		Username      *string `json:"username"`
		OAuthProvider *string `json:"oauth_provider"`
	}
	api.expect(api.do(http.MethodGet, "/api/auth/me", resp.AccessToken, nil, &me), http.StatusOK)
	if me.Email != "octo@x.com" || me.OAuthProvider == nil || *me.OAuthProvider != oauth.ProviderGitHub {
		t.Fatalf("me = %+v", me)
	}

	// States are single use.
	api.expect(api.do(http.MethodGet, callback, "", nil, nil), http.StatusBadRequest)
	api.expect(api.do(http.MethodGet, "/api/auth/oauth/gitlab/login", "", nil, nil), http.StatusNotFound)

	// OAuth-only accounts cannot log in with a password.
	w = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "octo@x.com", "password": "x"}, nil)
	api.expect(w, http.StatusUnauthorized)
}

func TestTaskUpdateNullClearsHours(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("a@x.com", "pw1")

	body := map[string]any{"id": "t1", "title": "Write", "estimated_hours": 3, "actual_hours": 2}
	api.expect(api.do(http.MethodPost, "/api/tasks", token, body, nil), http.StatusCreated)

	var task struct {
		EstimatedHours *float64 `json:"estimated_hours"`
		ActualHours    *float64 `json:"actual_hours"`
	}
	api.expect(api.do(http.MethodPut, "/api/tasks/t1", token, map[string]any{"estimated_hours": nil}, nil), http.StatusOK)
	api.expect(api.do(http.MethodGet, "/api/tasks/t1", token, nil, &task), http.StatusOK)
	if task.EstimatedHours != nil {
		t.Fatalf("estimated_hours = %v, want null", *task.EstimatedHours)
	}
	if task.ActualHours == nil || *task.ActualHours != 2 {
		t.Fatalf("actual_hours = %v, want 2", task.ActualHours)
	}

	api.expect(api.do(http.MethodPut, "/api/tasks/t1", token, map[string]any{"actual_hours": -1}, nil), http.StatusBadRequest)
}

func TestTaskIDWithSlashRejected(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("a@x.com", "pw1")
	api.expect(api.do(http.MethodPost, "/api/tasks", token, map[string]string{"id": "a/b", "title": "x"}, nil), http.StatusBadRequest)
}

func TestCategoryChunkedBody(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup("a@x.com", "pw1")

	req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"work"}`))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	api.expect(w, http.StatusCreated)

	var category struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &category); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if category.Name != "work" {
		t.Fatalf("name = %q, want work", category.Name)
	}
}
