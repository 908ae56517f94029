package account

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"resume-portal/internal/shared/auth"
	"resume-portal/internal/shared/server/middleware"
	"resume-portal/internal/users"
	"resume-portal/internal/web"
)

func newTestRouter(t *testing.T) (*gin.Engine, *users.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	userSvc := users.NewService(users.NewMemoryRepo(), &auth.PasswordConfig{BcryptCost: bcrypt.MinCost})

	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.Use(middleware.Session(middleware.NewSessionStore("test-session-secret-32-bytes-long", false)))
	NewHandler(NewService(userSvc), false).RegisterRoutes(r.Group(""))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.IdentityFromContext(c).Username)
	})
	return r, userSvc
}

func postForm(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func whoami(r http.Handler, cookies []*http.Cookie) string {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Body.String()
}

func TestSignupStartsSession(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postForm(r, SignupPath, url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"correct-horse"},
	})
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/users/alice/" {
		t.Fatalf("unexpected redirect %s", loc)
	}
	if got := whoami(r, w.Result().Cookies()); got != "alice" {
		t.Fatalf("expected session for alice, got %q", got)
	}
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	r, userSvc := newTestRouter(t)
	if _, err := userSvc.Register(context.Background(), users.Registration{Username: "alice", Password: "pw-123456"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	w := postForm(r, SignupPath, url.Values{"username": {"alice"}, "password": {"another-pass"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already exists") {
		t.Fatalf("expected duplicate username error")
	}
}

func TestSignupValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postForm(r, SignupPath, url.Values{"username": {"bob"}, "email": {"not-an-email"}, "password": {"short"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Enter a valid email address.") || !strings.Contains(body, "at least 8 characters") {
		t.Fatalf("expected field errors, got %s", body)
	}
}

func TestSignupRejectsOverlongPasswords(t *testing.T) {
	r, userSvc := newTestRouter(t)

	cases := []struct {
		name     string
		password string
		message  string
	}{
		{name: "ascii", password: strings.Repeat("a", 100), message: "at most 72 characters"},
		{name: "multibyte", password: strings.Repeat("€", 30), message: "at most 72 bytes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postForm(r, SignupPath, url.Values{"username": {"carol_" + tc.name}, "password": {tc.password}})
			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tc.message) {
				t.Fatalf("expected %q in body, got %s", tc.message, w.Body.String())
			}
			if exists, _ := userSvc.Exists(context.Background(), "carol_"+tc.name); exists {
				t.Fatalf("expected no account to be created")
			}
		})
	}
}

func TestLoginAndLogout(t *testing.T) {
	r, userSvc := newTestRouter(t)
	if _, err := userSvc.Register(context.Background(), users.Registration{Username: "alice", Password: "correct-horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	w := postForm(r, LoginPath, url.Values{"username": {"alice"}, "password": {"wrong-horse"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad password, got %d", w.Code)
	}

	w = postForm(r, LoginPath, url.Values{
		"username": {"alice"},
		"password": {"correct-horse"},
		"next":     {"/resume/alice/create"},
	})
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/resume/alice/create" {
		t.Fatalf("expected next redirect, got %s", loc)
	}
	cookies := w.Result().Cookies()
	if got := whoami(r, cookies); got != "alice" {
		t.Fatalf("expected session for alice, got %q", got)
	}

	w = postForm(r, LogoutPath, url.Values{}, cookies...)
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if got := whoami(r, w.Result().Cookies()); got != "" {
		t.Fatalf("expected anonymous after logout, got %q", got)
	}
}

func TestSafeNext(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "", want: "/fallback"},
		{in: "/resume/alice", want: "/resume/alice"},
		{in: "//evil.example", want: "/fallback"},
		{in: "https://evil.example", want: "/fallback"},
		{in: "/\\evil.example", want: "/fallback"},
	}
	for _, tc := range cases {
		if got := SafeNext(tc.in, "/fallback"); got != tc.want {
			t.Fatalf("SafeNext(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
