package respond

import (
	"github.com/gin-gonic/gin"

	"resume-portal/internal/shared/telemetry"
)

// ErrorTemplate is the template rendered for error responses.
const ErrorTemplate = "error.html"

// Error logs and renders a standardized error page, aborting the chain.
func Error(c *gin.Context, status int, code, message string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if username := c.GetString("username"); username != "" {
		fields["username"] = username
	}
	telemetry.Error("http.error", fields)

	c.Abort()
	Page(c, status, ErrorTemplate, gin.H{
		"Status":  status,
		"Code":    code,
		"Message": message,
	})
}

// Forbidden renders the generic 403 page.
func Forbidden(c *gin.Context, message string) {
	Error(c, 403, "forbidden", message)
}

// NotFound renders the generic 404 page.
func NotFound(c *gin.Context, message string) {
	Error(c, 404, "not_found", message)
}
