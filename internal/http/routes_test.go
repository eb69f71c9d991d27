package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	httpserver "todo_webapp/internal/http"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/repository/memory"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type apiTest struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *apiTest {
	t.Helper()
	gin.SetMode(gin.TestMode)

	audit := service.NewAuditService(memory.NewAuditStore())
	auth := service.NewAuthService(memory.NewUserStore(), &service.BcryptHasher{Cost: bcrypt.MinCost}, service.NewJWTManager("test-secret", time.Hour), audit)
	todos := service.NewTodoService(memory.NewTodoStore(), nil, audit)

	h := handlers.NewHandler(auth, todos)
	return &apiTest{t: t, router: httpserver.NewRouter(h, handlers.NewHealthHandler(nil, "test"))}
}

func (a *apiTest) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

type todoResponse struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

func (a *apiTest) register(name, email, password string) authResponse {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": name, "email": email, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var res authResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRegisterAndLogin(t *testing.T) {
	api := newAPI(t)

	reg := api.register("Ann", "ann@example.com", "secret")
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ann@example.com", reg.User.Email)

	w := api.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ann", "email": "ann@example.com", "password": "secret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"email already registered"}`, w.Body.String())

	w = api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[authResponse](t, w)
	assert.NotEmpty(t, login.Token)
	assert.NotContains(t, w.Body.String(), "password")

	w = api.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Ann"`)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "", "email": "a@b.c", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "name is required")

	w = api.do(http.MethodPost, "/api/auth/register", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	api := newAPI(t)
	api.register("Ann", "ann@example.com", "secret")

	wrong := api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "nope"})
	unknown := api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ghost@example.com", "password": "secret"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestTodosRequireToken(t *testing.T) {
	api := newAPI(t)
	reg := api.register("Ann", "ann@example.com", "secret")
	api.do(http.MethodPost, "/api/todos", reg.Token, gin.H{"text": "private"})

	for _, tc := range []struct{ method, path, token string }{
		{http.MethodGet, "/api/todos", ""},
		{http.MethodGet, "/api/todos", "not-a-jwt"},
		{http.MethodPost, "/api/todos", ""},
		{http.MethodPut, "/api/todos/1", ""},
		{http.MethodDelete, "/api/todos/1", ""},
		{http.MethodGet, "/api/auth/me", ""},
	} {
		w := api.do(tc.method, tc.path, tc.token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.method+" "+tc.path)
		assert.Empty(t, w.Body.String(), tc.method+" "+tc.path)
	}
}

func TestTodoCRUDFlow(t *testing.T) {
	api := newAPI(t)
	token := api.register("Ann", "ann@example.com", "secret").Token

	w := api.do(http.MethodPost, "/api/todos", token, gin.H{"text": "Buy milk"})
	require.Equal(t, http.StatusOK, w.Code)
	milk := decode[todoResponse](t, w)
	assert.False(t, milk.Completed)
	assert.NotContains(t, w.Body.String(), "user_id")

	w = api.do(http.MethodPost, "/api/todos", token, gin.H{"text": "Write report"})
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[todoResponse](t, w)

	w = api.do(http.MethodPut, "/api/todos/"+strconv.FormatInt(milk.ID, 10), token, gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[todoResponse](t, w).Completed)

	w = api.do(http.MethodGet, "/api/todos", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]todoResponse](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, todoResponse{ID: milk.ID, Text: "Buy milk", Completed: true}, list[0])
	assert.Equal(t, todoResponse{ID: report.ID, Text: "Write report"}, list[1])

	w = api.do(http.MethodGet, "/api/todos/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":2,"completed":1,"pending":1}`, w.Body.String())

	path := "/api/todos/" + strconv.FormatInt(report.ID, 10)
	w = api.do(http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "todo deleted")

	w = api.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/todos", token, nil)
	assert.Len(t, decode[[]todoResponse](t, w), 1)
}

func TestEmptyListIsArray(t *testing.T) {
	api := newAPI(t)
	token := api.register("Ann", "ann@example.com", "secret").Token

	w := api.do(http.MethodGet, "/api/todos", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestTodoValidationErrors(t *testing.T) {
	api := newAPI(t)
	token := api.register("Ann", "ann@example.com", "secret").Token

	w := api.do(http.MethodPost, "/api/todos", token, gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "text is required")

	w = api.do(http.MethodPut, "/api/todos/abc", token, gin.H{"completed": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPut, "/api/todos/1", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPut, "/api/todos/999", token, gin.H{"completed": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequiredFieldsAreCheckedOnBind(t *testing.T) {
	api := newAPI(t)
	token := api.register("Ann", "ann@example.com", "secret").Token

	for _, tc := range []struct {
		method, path, token string
		body                any
		want                string
	}{
		{http.MethodPost, "/api/auth/register", "", gin.H{"email": "b@example.com", "password": "x"}, `{"error":"name is required"}`},
		{http.MethodPost, "/api/auth/login", "", gin.H{"password": "secret"}, `{"error":"email is required"}`},
		{http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com"}, `{"error":"password is required"}`},
		{http.MethodPost, "/api/todos", token, gin.H{}, `{"error":"text is required"}`},
		{http.MethodPut, "/api/todos/1", token, gin.H{}, `{"error":"completed is required"}`},
		{http.MethodPut, "/api/todos/1", token, `{"completed":`, `{"error":"invalid request body"}`},
	} {
		w := api.do(tc.method, tc.path, tc.token, tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.method+" "+tc.path)
		assert.JSONEq(t, tc.want, w.Body.String(), tc.method+" "+tc.path)
	}

	// explicit false satisfies "required"
	w := api.do(http.MethodPost, "/api/todos", token, gin.H{"text": "a"})
	require.Equal(t, http.StatusOK, w.Code)
	id := strconv.FormatInt(decode[todoResponse](t, w).ID, 10)
	w = api.do(http.MethodPut, "/api/todos/"+id, token, gin.H{"completed": false})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestActivityShowsOwnAuditTrail(t *testing.T) {
	api := newAPI(t)
	ann := api.register("Ann", "ann@example.com", "secret").Token
	bob := api.register("Bob", "bob@example.com", "secret").Token
	api.do(http.MethodPost, "/api/todos", ann, gin.H{"text": "Buy milk"})

	type entry struct {
		Action   string `json:"action"`
		Category string `json:"category"`
	}

	w := api.do(http.MethodGet, "/api/auth/activity", ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[[]entry](t, w)
	require.Len(t, logs, 2)
	assert.Equal(t, entry{Action: "todo_create", Category: "todo"}, logs[0])
	assert.Equal(t, entry{Action: "register", Category: "auth"}, logs[1])

	w = api.do(http.MethodGet, "/api/auth/activity?limit=1", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]entry](t, w), 1)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/auth/activity?limit=0", ann, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/auth/activity", "", nil).Code)
}

func TestTodosAreIsolatedBetweenUsers(t *testing.T) {
	api := newAPI(t)
	ann := api.register("Ann", "ann@example.com", "secret").Token
	bob := api.register("Bob", "bob@example.com", "secret").Token

	w := api.do(http.MethodPost, "/api/todos", ann, gin.H{"text": "Ann's"})
	require.Equal(t, http.StatusOK, w.Code)
	id := strconv.FormatInt(decode[todoResponse](t, w).ID, 10)

	w = api.do(http.MethodGet, "/api/todos", bob, nil)
	assert.Equal(t, "[]", w.Body.String())

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPut, "/api/todos/"+id, bob, gin.H{"completed": true}).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/api/todos/"+id, bob, nil).Code)

	w = api.do(http.MethodGet, "/api/todos", ann, nil)
	list := decode[[]todoResponse](t, w)
	require.Len(t, list, 1)
	assert.False(t, list[0].Completed)
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	api := newAPI(t)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", "", nil).Code)

	w := api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
