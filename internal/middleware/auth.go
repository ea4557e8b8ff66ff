package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"caspian/internal/models"
	"caspian/internal/store"
)

const CheckUserKey = "user"

// LoadUser resolves the session's user_id into a *models.User on the gin
// context. A forged or stale session resolves to anonymous, never an error.
func LoadUser(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get("user_id").(uint)
		if ok && userID > 0 {
			if user, err := users.ByID(userID); err == nil {
				c.Set(CheckUserKey, user)
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in, anonymous requests are sent to
// the login page.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.Redirect(http.StatusFound, "/login?prompt=1")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired guards the post authoring routes. The administrator is the
// first account ever registered, i.e. the lowest user id. The check reads
// only, no side effect happens before the wrapped handler runs.
func AdminRequired(users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, exists := c.Get(CheckUserKey)
		if !exists {
			c.Redirect(http.StatusFound, "/login?prompt=1")
			c.Abort()
			return
		}

		user := u.(*models.User)
		adminID, err := users.FirstID()
		if err != nil || user.ID != adminID {
			c.HTML(http.StatusForbidden, "error.html", gin.H{"Error": "You are not allowed to manage posts."})
			c.Abort()
			return
		}
		c.Next()
	}
}
