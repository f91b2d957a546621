package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"hackboard/src/app/http/response"
)

const adminTokenHeader = "X-Admin-Token"

// AdminAuth enforces that the request carries the organizer token in the
// X-Admin-Token header. Identity management proper lives outside this
// service; the token is the narrow "is this caller an admin" contract.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := GetRequestID(c)

		provided := c.GetHeader(adminTokenHeader)
		if provided == "" {
			response.Unauthorized(c, "missing X-Admin-Token header", requestID)
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			response.Forbidden(c, "invalid admin token", requestID)
			c.Abort()
			return
		}

		c.Next()
	}
}
