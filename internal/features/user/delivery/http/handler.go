package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"crowdfund-backend/internal/common/errors"
	"crowdfund-backend/internal/common/middleware"
	"crowdfund-backend/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
	wrap    func(gin.HandlerFunc) gin.HandlerFunc
}

func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		wrap:    middleware.HandleErrorWrapper(logger),
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	users := router.Group("/users")
	{
		users.GET("/me", requireAuth, h.wrap(h.GetMe))
		users.GET("/:id", h.wrap(h.GetUser))
	}
}

// @Summary Get current user
// @Description Get or create the caller's profile from Telegram init data. Changed profile fields are stored.
// @Tags users
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	tgUser, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(errors.NewUnauthorizedError("telegram init data required"))
		return
	}

	user, err := h.service.GetOrCreateUser(
		c.Request.Context(),
		strconv.FormatInt(tgUser.ID, 10),
		tgUser.Username,
		tgUser.FirstName,
		tgUser.LastName,
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary Get user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}
