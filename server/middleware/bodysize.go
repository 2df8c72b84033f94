package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/radscribe/util"
)

// Audio uploads dominate request size; 25MB covers several minutes of webm.
const defaultMaxBodySize = 25 * 1024 * 1024

// BodySizeLimit returns a Gin middleware that restricts the request body to
// the given size string (e.g. "25MB", "512KB").
func BodySizeLimit(maxSize string) gin.HandlerFunc {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, size)
		c.Next()
	}
}
