package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/isdelr/pulse-be/internal/auth"
	"github.com/isdelr/pulse-be/internal/models"
	"github.com/isdelr/pulse-be/internal/services"
	"github.com/isdelr/pulse-be/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testAPIKey = "internal-key"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s, err := store.NewJSONStore(t.TempDir())
	require.NoError(t, err)

	users := services.NewUserService(s, auth.NewTokenManager("router-secret", time.Hour), bcrypt.MinCost)
	router := NewRouter(Options{
		UserService:    users,
		TaskService:    services.NewTaskService(s),
		SummaryService: services.NewSummaryService(s),
		InternalAPIKey: testAPIKey,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv}
}

func (ts *testServer) do(method, path, body string, headers map[string]string) (int, envelope) {
	ts.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rd)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(ts.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(ts.t, err)
	var env envelope
	if len(raw) > 0 {
		require.NoError(ts.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (ts *testServer) register(email string) string {
	ts.t.Helper()
	status, env := ts.do(http.MethodPost, "/api/auth/register", `{"email":"`+email+`","password":"secret1"}`, nil)
	require.Equal(ts.t, http.StatusCreated, status, env.Error)

	var res models.AuthResult
	require.NoError(ts.t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(ts.t, res.Token)
	return res.Token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := ts.srv.Client().Get(ts.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Project Pulse API", body["service"])
	assert.NotContains(t, body, "success")
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("alice@example.com")

	status, env := ts.do(http.MethodPost, "/api/auth/register", `{"email":"alice@example.com","password":"another1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email already registered", env.Error)

	status, env = ts.do(http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"wrong-pass"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", env.Error)

	status, env = ts.do(http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, env = ts.do(http.MethodGet, "/api/auth/me", "", bearer(token))
	require.Equal(t, http.StatusOK, status)
	var me map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "alice@example.com", me["email"])
	assert.NotContains(t, me, "password")
	assert.NotContains(t, me, "passwordHash")

	status, env = ts.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No token provided", env.Error)

	status, env = ts.do(http.MethodGet, "/api/auth/me", "", bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", env.Error)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	ts := newTestServer(t)

	body := `{"email":"alice@example.com","password":"` + strings.Repeat("a", 73) + `"}`
	status, env := ts.do(http.MethodPost, "/api/auth/register", body, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Password must be at most 72 bytes", env.Error)
}

func TestEmptyBodies(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register("alice@example.com")
	bob := ts.register("bob@example.com")

	status, env := ts.do(http.MethodPost, "/api/tasks", `{"title":"Write report"}`, bearer(alice))
	require.Equal(t, http.StatusCreated, status, env.Error)
	var task models.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))

	status, env = ts.do(http.MethodPut, "/api/tasks/"+task.ID, "", bearer(bob))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You do not have permission to update this task", env.Error)

	time.Sleep(2 * time.Millisecond)
	status, env = ts.do(http.MethodPut, "/api/tasks/"+task.ID, "", bearer(alice))
	require.Equal(t, http.StatusOK, status, env.Error)
	var updated models.Task
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Write report", updated.Title)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt))

	status, env = ts.do(http.MethodPost, "/api/tasks", "", bearer(alice))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Title is required", env.Error)

	status, env = ts.do(http.MethodPost, "/api/auth/login", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email and password are required", env.Error)
}

func TestCreateTask_WholeFloatPriority(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register("alice@example.com")

	status, env := ts.do(http.MethodPost, "/api/tasks", `{"title":"Write report","priority":2.0}`, bearer(alice))
	require.Equal(t, http.StatusCreated, status, env.Error)
	var task models.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, models.PriorityHigh, task.Priority)

	status, env = ts.do(http.MethodPost, "/api/tasks", `{"title":"Write report","priority":2.5}`, bearer(alice))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "Priority must be")
}

func TestTaskLifecycle(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register("alice@example.com")
	bob := ts.register("bob@example.com")

	status, env := ts.do(http.MethodGet, "/api/tasks", "", bearer(alice))
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, env = ts.do(http.MethodPost, "/api/tasks", `{"title":"Write report","priority":2,"deadline":"2024-01-01"}`, bearer(alice))
	require.Equal(t, http.StatusCreated, status, env.Error)
	var task models.Task
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, models.PriorityHigh, task.Priority)

	status, env = ts.do(http.MethodPost, "/api/tasks", `{"title":"  "}`, bearer(alice))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Title is required", env.Error)

	// Bob cannot see, update, or delete Alice's task.
	status, env = ts.do(http.MethodGet, "/api/tasks", "", bearer(bob))
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, env = ts.do(http.MethodPut, "/api/tasks/"+task.ID, `{"priority":"urgent"}`, bearer(bob))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You do not have permission to update this task", env.Error)

	status, _ = ts.do(http.MethodDelete, "/api/tasks/"+task.ID, "", bearer(bob))
	assert.Equal(t, http.StatusForbidden, status)

	status, env = ts.do(http.MethodPut, "/api/tasks/"+task.ID, `{"priority":"urgent"}`, bearer(alice))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Error, "Priority must be")

	status, env = ts.do(http.MethodPut, "/api/tasks/"+task.ID, `{"status":"in-progress"}`, bearer(alice))
	require.Equal(t, http.StatusOK, status, env.Error)
	var updated models.Task
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.Equal(t, "Write report", updated.Title)

	status, env = ts.do(http.MethodPut, "/api/tasks/missing", `{"title":"x"}`, bearer(alice))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Task not found", env.Error)

	status, _ = ts.do(http.MethodDelete, "/api/tasks/"+task.ID, "", bearer(alice))
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = ts.do(http.MethodDelete, "/api/tasks/"+task.ID, "", bearer(alice))
	assert.Equal(t, http.StatusNotFound, status)

	status, env = ts.do(http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No token provided", env.Error)
}

func TestDailySummary(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register("alice@example.com")

	status, _ := ts.do(http.MethodPost, "/api/tasks", `{"title":"Write report","priority":2,"deadline":"2024-01-01"}`, bearer(alice))
	require.Equal(t, http.StatusCreated, status)
	status, _ = ts.do(http.MethodPost, "/api/tasks", `{"title":"Someday"}`, bearer(alice))
	require.Equal(t, http.StatusCreated, status)

	status, env := ts.do(http.MethodGet, "/api/summary/daily", "", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "API key is required. Provide X-API-KEY header.", env.Error)

	status, env = ts.do(http.MethodGet, "/api/summary/daily", "", map[string]string{auth.APIKeyHeader: "wrong"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Invalid API key", env.Error)

	status, env = ts.do(http.MethodGet, "/api/summary/daily", "", map[string]string{auth.APIKeyHeader: testAPIKey})
	require.Equal(t, http.StatusOK, status, env.Error)

	var summary models.DailySummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, time.Now().UTC().Format(models.DateLayout), summary.SummaryDate)
	assert.Equal(t, 2, summary.TotalTasks)
	assert.Equal(t, 2, summary.Pending)
	require.Len(t, summary.OverdueTasksByPriority[models.PriorityHigh], 1)
	assert.Equal(t, "Write report", summary.OverdueTasksByPriority[models.PriorityHigh][0].Title)
	assert.Equal(t, map[models.Priority]int{1: 0, 2: 1, 3: 0, 4: 1}, summary.TasksPriorityDistribution)
	assert.Len(t, summary.Tasks, 2)
}

func TestUnknownRoutes(t *testing.T) {
	ts := newTestServer(t)

	status, env := ts.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Route not found", env.Error)

	status, env = ts.do(http.MethodPatch, "/health", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Route not found", env.Error)
}

func TestRecoverer(t *testing.T) {
	h := recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, rec.Body.String())
}
