package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ContextKeyUser is the context key for the caller's claimed identity.
const ContextKeyUser = "user"

// IdentityMiddleware extracts the caller's claimed identity from the plain
// "user" header. There is no verification: any caller may claim any name.
// A missing header is left for the handlers to reject, matching their own
// error semantics (a message from nobody fails validation, not auth).
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyUser, c.GetHeader("user"))
		c.Next()
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}

// requester returns the claimed identity stored by IdentityMiddleware.
func requester(c *gin.Context) string {
	user, _ := c.Get(ContextKeyUser)
	name, _ := user.(string)
	return name
}
