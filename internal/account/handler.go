package account

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-portal/internal/shared/server/middleware"
	"resume-portal/internal/shared/server/respond"
	"resume-portal/internal/shared/telemetry"
)

const (
	LoginPath  = "/accounts/login/"
	SignupPath = "/accounts/signup/"
	LogoutPath = "/accounts/logout/"
)

var pageTitles = map[string]string{
	"signup.html": "Sign up",
	"login.html":  "Log in",
}

type Handler struct {
	Svc           *Service
	GoogleEnabled bool
}

func NewHandler(svc *Service, googleEnabled bool) *Handler {
	return &Handler{Svc: svc, GoogleEnabled: googleEnabled}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(SignupPath, h.signupForm)
	rg.POST(SignupPath, h.signup)
	rg.GET(LoginPath, h.loginForm)
	rg.POST(LoginPath, h.login)
	rg.POST(LogoutPath, h.logout)
}

func (h *Handler) signupForm(c *gin.Context) {
	h.render(c, http.StatusOK, "signup.html", SignupForm{}, nil, "")
}

func (h *Handler) signup(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Service unavailable.")
		return
	}
	var form SignupForm
	if errs := respond.BindForm(c, &form); errs != nil {
		form.Password = ""
		h.render(c, http.StatusUnprocessableEntity, "signup.html", form, errs, "")
		return
	}
	user, errs, err := h.Svc.SignUp(c.Request.Context(), form)
	if err != nil {
		h.internalError(c, "account.signup_failed", err)
		return
	}
	if errs != nil {
		form.Password = ""
		h.render(c, http.StatusUnprocessableEntity, "signup.html", form, errs, "")
		return
	}
	if err := middleware.StartSession(c, user.Username); err != nil {
		h.internalError(c, "account.session_failed", err)
		return
	}
	telemetry.Info("account.signup", map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"username":   user.Username,
	})
	respond.Redirect(c, "/users/"+user.Username+"/")
}

func (h *Handler) loginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", LoginForm{}, nil, c.Query("next"))
}

func (h *Handler) login(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Service unavailable.")
		return
	}
	next := c.PostForm("next")
	var form LoginForm
	if errs := respond.BindForm(c, &form); errs != nil {
		form.Password = ""
		h.render(c, http.StatusUnprocessableEntity, "login.html", form, errs, next)
		return
	}
	user, errs, err := h.Svc.LogIn(c.Request.Context(), form)
	if err != nil {
		h.internalError(c, "account.login_failed", err)
		return
	}
	if errs != nil {
		telemetry.Warn("account.login_rejected", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"username":   form.Username,
		})
		form.Password = ""
		h.render(c, http.StatusUnprocessableEntity, "login.html", form, errs, next)
		return
	}
	if err := middleware.StartSession(c, user.Username); err != nil {
		h.internalError(c, "account.session_failed", err)
		return
	}
	respond.Redirect(c, SafeNext(next, "/users/"+user.Username+"/"))
}

func (h *Handler) logout(c *gin.Context) {
	if err := middleware.EndSession(c); err != nil {
		h.internalError(c, "account.logout_failed", err)
		return
	}
	respond.Redirect(c, "/")
}

func (h *Handler) render(c *gin.Context, status int, name string, form any, errs map[string]string, next string) {
	respond.Page(c, status, name, gin.H{
		"Title":         pageTitles[name],
		"Form":          form,
		"Errors":        errs,
		"Next":          next,
		"GoogleEnabled": h.GoogleEnabled,
	})
}

func (h *Handler) internalError(c *gin.Context, event string, err error) {
	telemetry.Error(event, map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"error":      err.Error(),
	})
	respond.Error(c, http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again later.")
}

// SafeNext returns next when it is a local absolute path, fallback otherwise.
func SafeNext(next, fallback string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
