package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitzungslab/minutes/util"
)

// Council session recordings run for hours, so the fallback limit is
// already generous.
const defaultMaxBodySize = 500 * 1024 * 1024

// GinBodySizeLimit caps request bodies at the given size string (e.g.
// "500MB"). Oversized uploads fail mid-read with a MaxBytesError
// instead of filling the disk.
func GinBodySizeLimit(maxSize string) gin.HandlerFunc {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, size)
		c.Next()
	}
}
