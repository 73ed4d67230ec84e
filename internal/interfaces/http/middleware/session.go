package middleware

import "github.com/gin-gonic/gin"

// Session context keys
const (
	SessionIDKey     = "session_id"
	SessionHeaderKey = "X-Session-ID"
)

// SessionID extracts the anonymous session identifier from the
// X-Session-ID header. The storefront client generates it once and sends
// it on every request; it keys the guest cart snapshot and engine.
func SessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID := c.GetHeader(SessionHeaderKey); sessionID != "" {
			c.Set(SessionIDKey, sessionID)
		}
		c.Next()
	}
}

// GetSessionID retrieves the session ID from gin.Context, or "" if the
// request carried none
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
