package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"crowdfund-backend/internal/common/errors"
)

const (
	HeaderInitData = "X-Telegram-Init-Data"
	QueryInitData  = "init_data"
	ctxKeyUser     = "user"
	ctxKeyUserID   = "user_id"
)

// TelegramAuth validates Mini App init-data sent in the X-Telegram-Init-Data
// header or the init_data query parameter. A request without init-data
// passes through anonymous; RequireAuth rejects those on protected routes.
// ttl <= 0 disables the expiration check.
func TelegramAuth(botToken string, ttl time.Duration, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderInitData)
		if raw == "" {
			raw = c.Query(QueryInitData)
		}
		if raw == "" {
			c.Next()
			return
		}

		if ttl < 0 {
			ttl = 0
		}
		if err := initdata.Validate(raw, botToken, ttl); err != nil {
			logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("init data rejected")
			AbortWithError(c, errors.NewUnauthorizedError("invalid init data"), logger)
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil {
			AbortWithError(c, errors.NewUnauthorizedError("malformed init data"), logger)
			return
		}
		if parsed.User.ID == 0 {
			AbortWithError(c, errors.NewUnauthorizedError("init data carries no user"), logger)
			return
		}

		c.Set(ctxKeyUser, parsed.User)
		c.Set(ctxKeyUserID, strconv.FormatInt(parsed.User.ID, 10))
		c.Next()
	}
}
