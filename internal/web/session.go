package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/muttaqilab/studio/internal/content"
)

const (
	SessionCookie = "studio_session"

	CtxSession = "console_session"
	CtxUser    = "console_user"
)

// Session assigns every browser a console session id kept in an
// HTTP-only cookie.
func (h *Handler) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
			h.setSessionCookie(c, sid)
		}
		c.Set(CtxSession, sid)
		c.Next()
	}
}

func (h *Handler) setSessionCookie(c *gin.Context, sid string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sid, 0, "/", "", h.secure, true)
}

func SessionID(c *gin.Context) string {
	return c.GetString(CtxSession)
}

// RequireConsole redirects to the login page unless the session is
// authenticated. It runs before any console handler, so nothing protected
// is rendered for an anonymous session.
func RequireConsole(authOf func(sid string) content.AuthState) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := authOf(SessionID(c))
		if !st.IsAuthenticated {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		c.Set(CtxUser, st.User)
		c.Next()
	}
}
