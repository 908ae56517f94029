// Package pages serves the home page, user search and the static content pages.
package pages

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"resume-portal/internal/shared/server/middleware"
	"resume-portal/internal/shared/server/respond"
	"resume-portal/internal/shared/telemetry"
	"resume-portal/internal/web"
)

const (
	homePath         = "/"
	userNotFoundPath = "/user_not_found/"
)

// UserChecker reports whether a username is registered.
type UserChecker interface {
	Exists(ctx context.Context, username string) (bool, error)
}

// SearchForm is the home page search box.
type SearchForm struct {
	Username string `form:"username" binding:"required,notblank,max=150"`
}

type Handler struct {
	Users UserChecker
}

func NewHandler(users UserChecker) *Handler {
	return &Handler{Users: users}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.page("home.html", "Home"))
	rg.POST("/", h.search)
	rg.GET("/about_us/", h.page("about_us.html", "About us"))
	rg.GET("/contacts/", h.page("contacts.html", "Contacts"))
	rg.GET("/user_not_found/", h.page("user_not_found.html", "User not found"))
	rg.GET("/load_page/:page/", h.loadPage)
}

func (h *Handler) page(name, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		respond.OK(c, name, gin.H{"Title": title})
	}
}

func (h *Handler) search(c *gin.Context) {
	var form SearchForm
	if errs := respond.BindForm(c, &form); errs != nil {
		respond.Redirect(c, homePath)
		return
	}
	if h.Users == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Service unavailable.")
		return
	}
	exists, err := h.Users.Exists(c.Request.Context(), form.Username)
	if err != nil {
		telemetry.Error("search.lookup_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again later.")
		return
	}
	if !exists {
		respond.Redirect(c, userNotFoundPath)
		return
	}
	respond.Redirect(c, "/users/"+url.PathEscape(form.Username)+"/")
}

// loadPage renders a page body without the layout. Only known fragments are served.
func (h *Handler) loadPage(c *gin.Context) {
	fragment, ok := web.Fragments[c.Param("page")]
	if !ok {
		respond.NotFound(c, "Page not found.")
		return
	}
	respond.OK(c, fragment, gin.H{})
}
