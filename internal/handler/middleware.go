package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/greetings-portal/web/internal/session"
)

const (
	sessionCookieName = "greetings_session"
	sessionKey        = "session_state"
)

// SessionMiddleware resolves the browser session from its cookie, creating
// one on first contact, and runs the page-entry bootstrap (a no-op once
// the session's latch is set). The cookie carries no Max-Age, so it dies
// with the browsing session.
func SessionMiddleware(store *session.Store, svc *session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var st *session.State
		if id, err := c.Cookie(sessionCookieName); err == nil {
			st, _ = store.Get(id)
		}
		if st == nil {
			st = store.Create()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookieName, st.ID, 0, "/", "", false, true)
		}

		svc.Bootstrap(c.Request.Context(), st)

		c.Set(sessionKey, st)
		c.Next()
	}
}

// RouteGuard renders the protected subtree only for sessions with an
// active account; everything else goes to the login route. A pending
// forced navigation from a 401 response wins over an otherwise valid
// session.
func RouteGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := GetSession(c)
		if st == nil || !st.Authenticated() || st.ConsumeForceLogin() {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetSession(c *gin.Context) *session.State {
	if value, ok := c.Get(sessionKey); ok {
		if st, ok := value.(*session.State); ok {
			return st
		}
	}
	return nil
}
