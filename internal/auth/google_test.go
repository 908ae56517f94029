package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"resume-portal/internal/shared/server/middleware"
	"resume-portal/internal/users"
	"resume-portal/internal/web"
)

type stubGoogleUsers struct {
	got   users.GoogleProfile
	calls int
	err   error
}

func (s *stubGoogleUsers) FindOrCreateFromGoogle(ctx context.Context, profile users.GoogleProfile) (users.User, error) {
	s.got = profile
	s.calls++
	if s.err != nil {
		return users.User{}, s.err
	}
	return users.User{ID: "u-1", Username: "jane"}, nil
}

func newGoogleRouter(svc *GoogleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.Use(middleware.Session(middleware.NewSessionStore("test-session-secret", false)))
	svc.RegisterRoutes(r.Group(""))
	return r
}

func TestStateStoreConsumesOnce(t *testing.T) {
	store := newStateStore()
	store.put("abc", time.Now().Add(time.Minute))
	assert.True(t, store.consume("abc"))
	assert.False(t, store.consume("abc"))

	store.put("old", time.Now().Add(-time.Second))
	assert.False(t, store.consume("old"))
}

func TestStateStorePrunesExpired(t *testing.T) {
	store := newStateStore()
	store.put("old", time.Now().Add(-time.Second))
	store.put("new", time.Now().Add(time.Minute))
	_, ok := store.items["old"]
	assert.False(t, ok)
}

func TestStartDisabledWithoutCredentials(t *testing.T) {
	svc := NewGoogleService("", "", "", &stubGoogleUsers{})
	assert.False(t, svc.Enabled())

	w := httptest.NewRecorder()
	newGoogleRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/google/start", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartRedirectsWithState(t *testing.T) {
	svc := NewGoogleService("client", "secret", "http://localhost/accounts/google/callback", &stubGoogleUsers{})

	w := httptest.NewRecorder()
	newGoogleRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/google/start", nil))

	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	assert.True(t, svc.stateStore.consume(state))
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	svc := NewGoogleService("client", "secret", "http://localhost/cb", &stubGoogleUsers{})

	w := httptest.NewRecorder()
	newGoogleRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/google/callback?state=nope&code=x", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func newGoogleProvider(t *testing.T, userInfo string) *httptest.Server {
	t.Helper()
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(userInfo))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(provider.Close)
	return provider
}

func newCallbackService(provider *httptest.Server, accounts GoogleUsers) *GoogleService {
	svc := NewGoogleService("client", "secret", "http://localhost/cb", accounts)
	svc.oauthConfig.Endpoint = oauth2.Endpoint{TokenURL: provider.URL + "/token", AuthURL: provider.URL + "/auth"}
	svc.userInfoURL = provider.URL + "/userinfo"
	svc.stateStore.put("state-1", time.Now().Add(time.Minute))
	return svc
}

func runCallback(svc *GoogleService) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	newGoogleRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/accounts/google/callback?state=state-1&code=c", nil))
	return w
}

func TestCallbackStartsSession(t *testing.T) {
	provider := newGoogleProvider(t, `{"id":"sub-1","email":"jane@example.com","verified_email":true,"name":"Jane"}`)
	accounts := &stubGoogleUsers{}

	w := runCallback(newCallbackService(provider, accounts))

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/users/jane/", w.Header().Get("Location"))
	assert.Equal(t, users.GoogleProfile{Subject: "sub-1", Email: "jane@example.com", FullName: "Jane"}, accounts.got)
	assert.NotEmpty(t, w.Result().Cookies())
}

func TestCallbackRejectsUnverifiedEmail(t *testing.T) {
	provider := newGoogleProvider(t, `{"id":"sub-1","email":"jane@example.com","verified_email":false,"name":"Jane"}`)
	accounts := &stubGoogleUsers{}

	w := runCallback(newCallbackService(provider, accounts))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, accounts.calls)
	assert.Empty(t, w.Result().Cookies())
}

func TestCallbackReportsEmailConflict(t *testing.T) {
	provider := newGoogleProvider(t, `{"sub":"sub-1","email":"jane@example.com","email_verified":true}`)
	accounts := &stubGoogleUsers{err: users.ErrEmailTaken}

	w := runCallback(newCallbackService(provider, accounts))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Log in with your password")
	assert.Empty(t, w.Result().Cookies())
}
