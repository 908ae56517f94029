package resumes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-portal/internal/llm"
	"resume-portal/internal/web"
)

type stubCompleter struct {
	mu      sync.Mutex
	prompts []string
	answer  string
	err     error
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.answer, s.err
}

type handlerEnv struct {
	fixture
	completer *stubCompleter
}

func newHandlerEnv(t *testing.T, usernames ...string) handlerEnv {
	t.Helper()
	return handlerEnv{fixture: newFixture(t, usernames...), completer: &stubCompleter{}}
}

func (e handlerEnv) router(as string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.Use(func(c *gin.Context) {
		if as != "" {
			c.Set("username", as)
		}
		c.Next()
	})
	svc := NewService(e.resumes, e.users, e.completer)
	NewHandler(svc, NewPolicy(e.resumes), nil).RegisterRoutes(r.Group(""))
	return r
}

func do(r http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validForm() url.Values {
	return url.Values{
		"job_title":  {"Engineer"},
		"skills":     {"Go"},
		"languages":  {"English"},
		"about":      {"Curious"},
		"experience": {"Five years"},
	}
}

func TestDetailAnonymousHiddenRedirectsToForbidden(t *testing.T) {
	env := newHandlerEnv(t, "alice")
	env.createResume(t, "alice", false)

	w := do(env.router(""), http.MethodGet, "/resume/alice", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/resume_access_forbidden/", w.Header().Get("Location"))
}

func TestDetailAnonymousVisibleRendersResume(t *testing.T) {
	env := newHandlerEnv(t, "alice")
	env.createResume(t, "alice", true)

	w := do(env.router(""), http.MethodGet, "/resume/alice", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "About alice")
}

func TestDetailMissingResumeIsNotFound(t *testing.T) {
	env := newHandlerEnv(t, "alice")

	w := do(env.router("alice"), http.MethodGet, "/resume/alice", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRequiresLogin(t *testing.T) {
	env := newHandlerEnv(t, "alice")

	w := do(env.router(""), http.MethodGet, "/resume/alice/create", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/accounts/login/?next="+url.QueryEscape("/resume/alice/create"), w.Header().Get("Location"))
}

func TestCreateStoresResumeAndRedirects(t *testing.T) {
	env := newHandlerEnv(t, "alice")
	r := env.router("alice")

	w := do(r, http.MethodPost, "/resume/alice/create", validForm())

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/resume/alice", w.Header().Get("Location"))
	owner, err := env.users.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, owner.HasResume)

	w = do(r, http.MethodGet, "/resume/alice/create", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateInvalidFormRerenders(t *testing.T) {
	env := newHandlerEnv(t, "alice")
	form := validForm()
	form.Set("job_title", strings.Repeat("x", 101))
	form.Set("skills", "  ")

	w := do(env.router("alice"), http.MethodPost, "/resume/alice/create", form)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "at most 100 characters")
	assert.Contains(t, body, "This field is required.")
	_, err := env.resumes.GetByOwnerUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSecondResumeViaOtherTargetIsForbidden(t *testing.T) {
	env := newHandlerEnv(t, "alice", "bob")
	first := env.createResume(t, "alice", false)

	w := do(env.router("alice"), http.MethodPost, "/resume/bob/create", validForm())

	assert.Equal(t, http.StatusForbidden, w.Code)
	stored, err := env.resumes.GetByOwnerUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, first.JobTitle, stored.JobTitle)
	assert.Equal(t, first.About, stored.About)
}

func TestUpdateOnlyByOwner(t *testing.T) {
	env := newHandlerEnv(t, "alice", "bob")
	env.createResume(t, "alice", false)
	form := validForm()
	form.Set("job_title", "Staff Engineer")
	form.Set("visible_to_anonymous", "true")

	w := do(env.router("bob"), http.MethodPost, "/resume/alice/edit", form)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(env.router("alice"), http.MethodGet, "/resume/alice/edit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "About alice")

	w = do(env.router("alice"), http.MethodPost, "/resume/alice/edit", form)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/resume/alice", w.Header().Get("Location"))

	stored, err := env.resumes.GetByOwnerUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "Staff Engineer", stored.JobTitle)
	assert.True(t, stored.VisibleToAnonymous)
}

func TestUpdateMissingResumeIsForbidden(t *testing.T) {
	env := newHandlerEnv(t, "alice")

	w := do(env.router("alice"), http.MethodGet, "/resume/alice/edit", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAskRendersGatewayAnswer(t *testing.T) {
	env := newHandlerEnv(t, "alice")
	env.completer.answer = "42"
	form := url.Values{
		"name":       {"Alice"},
		"username":   {"alice"},
		"job_title":  {"Engineer"},
		"skills":     {"Go"},
		"languages":  {"English"},
		"about":      {"Curious"},
		"experience": {"Five years"},
		"question":   {"What is the answer?"},
	}

	w := do(env.router(""), http.MethodPost, "/resume/alice", form)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "42")
	assert.Contains(t, body, `href="/resume/alice"`)
	require.Len(t, env.completer.prompts, 1)
	assert.Contains(t, env.completer.prompts[0], "Person's name: Alice; Job Title: Engineer;")
	assert.Contains(t, env.completer.prompts[0], "answer the following question: What is the answer?")
}

func TestAskGatewayFailureIsGeneric500(t *testing.T) {
	env := newHandlerEnv(t, "alice")
	env.completer.err = &llm.GatewayError{Op: "status", StatusCode: 401, Err: assert.AnError}

	w := do(env.router(""), http.MethodPost, "/resume/alice", url.Values{"question": {"hi"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), answerFailedMessage)
	assert.NotContains(t, w.Body.String(), "401")
}

func TestForbiddenPage(t *testing.T) {
	env := newHandlerEnv(t)

	w := do(env.router(""), http.MethodGet, "/resume_access_forbidden/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Access denied")
}
