package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"resume-portal/internal/shared/identity"
	"resume-portal/internal/shared/telemetry"
)

const (
	sessionName        = "resume_portal_session"
	sessionUsernameKey = "username"

	sessionCtxKey  = "session"
	usernameCtxKey = "username"
)

var errNoSession = errors.New("session middleware not installed")

// NewSessionStore builds the signed cookie store backing user sessions.
func NewSessionStore(secret string, secureCookies bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Session loads the session cookie and stores the caller's identity in context.
func Session(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := store.Get(c.Request, sessionName)
		if err != nil {
			// Tampered or stale cookie: continue with the fresh session Get returned.
			telemetry.Warn("session.decode_failed", map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      err.Error(),
			})
		}
		c.Set(sessionCtxKey, sess)
		if username, ok := sess.Values[sessionUsernameKey].(string); ok && username != "" {
			c.Set(usernameCtxKey, username)
		}
		c.Next()
	}
}

// StartSession records username as the logged-in user.
func StartSession(c *gin.Context, username string) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	sess.Values[sessionUsernameKey] = username
	if err := sess.Save(c.Request, c.Writer); err != nil {
		return err
	}
	c.Set(usernameCtxKey, username)
	return nil
}

// EndSession clears the session cookie.
func EndSession(c *gin.Context) error {
	sess, err := sessionFrom(c)
	if err != nil {
		return err
	}
	delete(sess.Values, sessionUsernameKey)
	sess.Options.MaxAge = -1
	if err := sess.Save(c.Request, c.Writer); err != nil {
		return err
	}
	c.Set(usernameCtxKey, "")
	return nil
}

// IdentityFromContext returns the caller resolved by the Session middleware.
func IdentityFromContext(c *gin.Context) identity.Identity {
	if c == nil {
		return identity.Anonymous()
	}
	return identity.Identity{Username: c.GetString(usernameCtxKey)}
}

// RequireLogin redirects anonymous callers to loginPath, preserving the target in ?next=.
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFromContext(c).Authenticated() {
			c.Next()
			return
		}
		target := loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

func sessionFrom(c *gin.Context) (*sessions.Session, error) {
	raw, ok := c.Get(sessionCtxKey)
	if !ok {
		return nil, errNoSession
	}
	sess, ok := raw.(*sessions.Session)
	if !ok || sess == nil {
		return nil, errNoSession
	}
	if sess.Options == nil {
		sess.Options = &sessions.Options{Path: "/"}
	}
	return sess, nil
}
