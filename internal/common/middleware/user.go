package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"crowdfund-backend/internal/features/user/service"
)

// AutoCreateUser upserts the profile of every authenticated caller so owner
// names are available when they create a campaign.
func AutoCreateUser(userService service.UserService, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		if !ok {
			c.Next()
			return
		}
		user, _ := CurrentUser(c)

		if _, err := userService.GetOrCreateUser(c.Request.Context(), id, user.Username, user.FirstName, user.LastName); err != nil {
			logger.Error().Err(err).Str("user_id", id).Msg("failed to upsert user")
			AbortWithError(c, err, logger)
			return
		}

		c.Next()
	}
}
