package server

import "github.com/gin-gonic/gin"

// errorBody is the error envelope, matching what clients parse: a
// single human-readable German detail string.
type errorBody struct {
	Detail string `json:"detail"`
}

// respondError sends the `{"detail": ...}` error envelope.
func respondError(c *gin.Context, status int, detail string) {
	c.JSON(status, errorBody{Detail: detail})
}
