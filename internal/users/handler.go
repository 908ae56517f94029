package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-portal/internal/shared/server/middleware"
	"resume-portal/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/:username/", h.details)
}

func (h *Handler) details(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Service unavailable.")
		return
	}
	username := c.Param("username")
	user, err := h.Svc.GetByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.NotFound(c, "User not found.")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to load user.")
		return
	}
	respond.OK(c, "user_details.html", gin.H{
		"Title":  user.Username,
		"User":   user,
		"IsSelf": middleware.IdentityFromContext(c).Is(user.Username),
	})
}
