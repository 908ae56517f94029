package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Page renders the named template. CurrentUser and RequestID are added to data.
func Page(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["CurrentUser"]; !ok {
		data["CurrentUser"] = c.GetString("username")
	}
	data["RequestID"] = c.GetString("requestId")
	c.HTML(status, name, data)
}

// OK renders the named template with 200.
func OK(c *gin.Context, name string, data gin.H) {
	Page(c, http.StatusOK, name, data)
}

// Redirect sends a 302 to location and stops the chain.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}
