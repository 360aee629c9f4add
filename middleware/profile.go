package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ProfileCookie = "mm_profile"
	ProfileHeader = "X-Profile-ID"
	ProfileKey    = "profile"
)

// cookie lifetime for the anonymous profile, one year
const profileCookieMaxAge = 365 * 24 * 60 * 60

// ProfileMiddleware resolves the browser-profile analog: an opaque id
// from the X-Profile-ID header or the mm_profile cookie. First-time
// visitors get a fresh uuid set as a cookie.
func ProfileMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := c.GetHeader(ProfileHeader)
		if profile == "" {
			if cookie, err := c.Cookie(ProfileCookie); err == nil {
				profile = cookie
			}
		}
		if profile == "" {
			profile = uuid.NewString()
			c.SetCookie(ProfileCookie, profile, profileCookieMaxAge, "/", "", false, true)
		}
		c.Set(ProfileKey, profile)
		c.Next()
	}
}
