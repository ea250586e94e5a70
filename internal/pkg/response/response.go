// Package response fixes the wire shapes shared by every service: successful
// bodies are plain JSON records, failures are {"detail": "..."} with an HTTP
// status.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Error(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}
