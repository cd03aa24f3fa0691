package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key holding the decoded Session.
const SessionKey = "session"

// RequireAdmin rejects requests without a valid logged-in session cookie.
func RequireAdmin(a *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(CookieName)
		sess := a.CurrentSession(token)
		if !sess.LoggedIn {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "unauthorized"})
			return
		}
		c.Set(SessionKey, sess)
		c.Next()
	}
}
