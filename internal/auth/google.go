package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"resume-portal/internal/shared/server/middleware"
	"resume-portal/internal/shared/server/respond"
	"resume-portal/internal/shared/telemetry"
	"resume-portal/internal/users"
)

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleUsers resolves a Google profile to a local account.
type GoogleUsers interface {
	FindOrCreateFromGoogle(ctx context.Context, profile users.GoogleProfile) (users.User, error)
}

// GoogleService handles Google OAuth login.
type GoogleService struct {
	oauthConfig *oauth2.Config
	users       GoogleUsers
	userInfoURL string
	stateTTL    time.Duration
	stateStore  *stateStore
}

// NewGoogleService builds a GoogleService.
func NewGoogleService(clientID, clientSecret, redirectURL string, accounts GoogleUsers) *GoogleService {
	return &GoogleService{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		users:       accounts,
		userInfoURL: defaultUserInfoURL,
		stateTTL:    5 * time.Minute,
		stateStore:  newStateStore(),
	}
}

// Enabled reports whether the OAuth client is configured.
func (s *GoogleService) Enabled() bool {
	return s != nil && s.oauthConfig.ClientID != "" && s.oauthConfig.ClientSecret != "" && s.oauthConfig.RedirectURL != ""
}

// RegisterRoutes attaches Google auth routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/accounts/google/start", s.start)
	rg.GET("/accounts/google/callback", s.callback)
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.Enabled() {
		respond.Error(c, http.StatusNotFound, "auth_not_configured", "Google login is not available.")
		return
	}

	state := uuid.NewString()
	s.stateStore.put(state, time.Now().Add(s.stateTTL))

	c.Redirect(http.StatusFound, s.oauthConfig.AuthCodeURL(state))
}

func (s *GoogleService) callback(c *gin.Context) {
	if !s.Enabled() || s.users == nil {
		respond.Error(c, http.StatusNotFound, "auth_not_configured", "Google login is not available.")
		return
	}
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Missing state or code.")
		return
	}

	if !s.stateStore.consume(state) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Invalid or expired login attempt.")
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "google.exchange_failed", err)
		return
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		s.fail(c, http.StatusBadGateway, "google.userinfo_failed", err)
		return
	}
	if info.Sub == "" || info.Email == "" {
		s.fail(c, http.StatusBadGateway, "google.profile_invalid", fmt.Errorf("profile missing sub or email"))
		return
	}
	if !info.VerifiedEmail && !info.EmailVerified {
		s.fail(c, http.StatusForbidden, "google.email_unverified", fmt.Errorf("email %s not verified", info.Email))
		return
	}

	user, err := s.users.FindOrCreateFromGoogle(ctx, users.GoogleProfile{
		Subject:  info.Sub,
		Email:    info.Email,
		FullName: info.Name,
	})
	if errors.Is(err, users.ErrEmailTaken) {
		telemetry.Warn("google.email_conflict", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusConflict, "email_conflict",
			"An account with this email already exists. Log in with your password.")
		return
	}
	if err != nil {
		s.fail(c, http.StatusInternalServerError, "google.account_failed", err)
		return
	}
	if err := middleware.StartSession(c, user.Username); err != nil {
		s.fail(c, http.StatusInternalServerError, "google.session_failed", err)
		return
	}
	telemetry.Info("account.google_login", map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"username":   user.Username,
	})
	respond.Redirect(c, "/users/"+user.Username+"/")
}

func (s *GoogleService) fail(c *gin.Context, status int, event string, err error) {
	telemetry.Error(event, map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"error":      err.Error(),
	})
	respond.Error(c, status, "auth_failed", "Google login failed. Please try again.")
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	VerifiedEmail bool   `json:"verified_email"`
	EmailVerified bool   `json:"email_verified"`
}

func (s *GoogleService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	client := s.oauthConfig.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return googleUserInfo{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}

	// Some responses use "id" instead of "sub".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	return info, nil
}

type stateStore struct {
	items map[string]time.Time
	mu    sync.Mutex
	now   func() time.Time
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]time.Time), now: time.Now}
}

func (s *stateStore) put(state string, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, v := range s.items {
		if now.After(v) {
			delete(s.items, k)
		}
	}
	s.items[state] = exp
}

func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	exp, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	return !s.now().After(exp)
}
