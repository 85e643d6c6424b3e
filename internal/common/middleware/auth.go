package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"crowdfund-backend/internal/common/errors"
)

// RequireAuth rejects requests TelegramAuth did not authenticate.
func RequireAuth(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUserID(c); !ok {
			AbortWithError(c, errors.NewUnauthorizedError("telegram init data required"), logger)
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the id of the signed-in user.
func CurrentUserID(c *gin.Context) (string, bool) {
	id := c.GetString(ctxKeyUserID)
	return id, id != ""
}

// CurrentUser returns the identity parsed from init-data.
func CurrentUser(c *gin.Context) (initdata.User, bool) {
	v, ok := c.Get(ctxKeyUser)
	if !ok {
		return initdata.User{}, false
	}
	user, ok := v.(initdata.User)
	return user, ok
}
