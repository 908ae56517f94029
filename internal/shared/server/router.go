package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"resume-portal/internal/account"
	googleauth "resume-portal/internal/auth"
	"resume-portal/internal/pages"
	"resume-portal/internal/resumes"
	"resume-portal/internal/services/health"
	"resume-portal/internal/shared/config"
	"resume-portal/internal/shared/metrics"
	"resume-portal/internal/shared/server/middleware"
	"resume-portal/internal/shared/server/respond"
	"resume-portal/internal/users"
	"resume-portal/internal/web"
)

// RouterDeps holds the handlers mounted on the engine.
type RouterDeps struct {
	Config         config.Config
	SessionStore   sessions.Store
	Health         *health.Service
	PagesHandler   *pages.Handler
	UserHandler    *users.Handler
	ResumeHandler  *resumes.Handler
	AccountHandler *account.Handler
	GoogleAuth     *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	respond.SetupValidator()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.Secure(middleware.SecureOptions(!deps.Config.IsProduction())),
	)
	if deps.SessionStore != nil {
		r.Use(middleware.Session(deps.SessionStore))
	}

	r.StaticFS("/static", web.Static())
	r.GET("/healthz", func(c *gin.Context) {
		status, ok := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if !ok {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
	r.GET("/metrics", metrics.Handler())

	r.NoRoute(func(c *gin.Context) {
		respond.NotFound(c, "Page not found.")
	})

	root := r.Group("")
	if deps.PagesHandler != nil {
		deps.PagesHandler.RegisterRoutes(root)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(root)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(root)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(root)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(root)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
