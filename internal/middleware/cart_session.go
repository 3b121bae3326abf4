package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartSessionHeader = "X-Cart-Session"
	CartSessionKey    = "cart_session_id"
)

// CartSession resolves the cart session from the X-Cart-Session header,
// issuing a new id when it is missing or not a uuid. The id is echoed on
// every response.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(CartSessionHeader)
		if _, err := uuid.Parse(sessionID); err != nil {
			if sessionID != "" {
				GetLoggerFromContext(c).Debug("Replacing malformed cart session id", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
			}
			sessionID = uuid.NewString()
		}

		c.Set(CartSessionKey, sessionID)
		c.Header(CartSessionHeader, sessionID)
		c.Next()
	}
}

// GetCartSessionID returns the session id set by CartSession.
func GetCartSessionID(c *gin.Context) string {
	return c.GetString(CartSessionKey)
}
