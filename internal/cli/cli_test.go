package cli

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"todo_webapp/internal/client"
	"todo_webapp/internal/domain"
	httpserver "todo_webapp/internal/http"
	"todo_webapp/internal/http/handlers"
	"todo_webapp/internal/repository/memory"
	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type cliEnv struct {
	t         *testing.T
	url       string
	tokenFile string
	config    string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	audit := service.NewAuditService(memory.NewAuditStore())
	auth := service.NewAuthService(memory.NewUserStore(), &service.BcryptHasher{Cost: bcrypt.MinCost}, service.NewJWTManager("test-secret", time.Hour), audit)
	todos := service.NewTodoService(memory.NewTodoStore(), nil, audit)
	srv := httptest.NewServer(httpserver.NewRouter(handlers.NewHandler(auth, todos), handlers.NewHealthHandler(nil, "test")))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	return &cliEnv{
		t:         t,
		url:       srv.URL,
		tokenFile: filepath.Join(dir, "token"),
		config:    filepath.Join(dir, "missing.yaml"),
	}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--api", e.url, "--token-file", e.tokenFile, "--config", e.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, out)
	return out
}

func TestCLISession(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("register", "--name", "Ann", "--email", "ann@example.com", "--password", "secret")
	assert.Contains(t, out, "Ann <ann@example.com>")

	out = env.mustRun("add", "Buy", "milk")
	assert.Contains(t, out, "Buy milk")
	env.mustRun("add", "Write report")

	out = env.mustRun("list", "--filter", "buy")
	assert.Contains(t, out, "Buy milk")
	assert.NotContains(t, out, "Write report")

	out = env.mustRun("toggle", "1")
	assert.Contains(t, out, "[x]")

	out = env.mustRun("stats")
	assert.Equal(t, "total: 2\ncompleted: 1\npending: 1\n", out)

	out = env.mustRun("rm", "2")
	assert.NotContains(t, out, "Write report")

	_, err := env.run("rm", "2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out = env.mustRun("activity", "--limit", "3")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "todo_delete")
	assert.Contains(t, lines[0], "todo_id=2")

	env.mustRun("logout")
	_, err = env.run("list")
	assert.ErrorIs(t, err, client.ErrNotLoggedIn)

	env.mustRun("login", "--email", "ANN@example.com", "--password", "secret")
	out = env.mustRun("list")
	assert.Contains(t, out, "Buy milk")
}

func TestCLIRejectsBadInput(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("register", "--name", "Ann", "--email", "ann@example.com", "--password", "secret")

	_, err := env.run("add", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.run("toggle", "abc")
	assert.Error(t, err)

	_, err = env.run("login", "--email", "ann@example.com", "--password", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCLIExpiredTokenLogsOut(t *testing.T) {
	env := newCLIEnv(t)
	store := &client.FileTokenStore{Path: env.tokenFile}
	require.NoError(t, store.Save("stale-token"))

	_, err := env.run("list")
	assert.ErrorIs(t, err, client.ErrSessionExpired)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestRenderDensityAndTheme(t *testing.T) {
	state := client.State{
		LoggedIn: true,
		Todos: []domain.Todo{
			{ID: 1, Text: "Buy milk", Completed: true},
			{ID: 2, Text: "Write report"},
		},
	}

	var buf bytes.Buffer
	renderTodos(&buf, state, client.Settings{Theme: client.ThemePlain, Density: client.DensityCompact})
	assert.Equal(t, "1 [x] Buy milk\n2 [ ] Write report\n", buf.String())

	buf.Reset()
	renderTodos(&buf, state, client.Settings{Theme: client.ThemePlain, Density: client.DensityComfortable})
	assert.True(t, strings.HasPrefix(buf.String(), "Todos: 2 total, 1 done, 1 pending\n"))
	assert.NotContains(t, buf.String(), "\033[")

	buf.Reset()
	renderTodos(&buf, state, client.Settings{Theme: client.ThemeDark, Density: client.DensityComfortable})
	assert.Contains(t, buf.String(), "\033[")

	buf.Reset()
	state.Filter = "nothing"
	renderTodos(&buf, state, client.Settings{Theme: client.ThemePlain, Density: client.DensityComfortable})
	assert.Contains(t, buf.String(), "nothing to show")
}

func TestVersionSkipsSetup(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version", "--config", "/nonexistent/dir/config.yaml"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "todoctl version dev")
}
