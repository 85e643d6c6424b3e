package http

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"crowdfund-backend/internal/common/errors"
	"crowdfund-backend/internal/common/middleware"
	"crowdfund-backend/internal/features/campaign/models"
	"crowdfund-backend/internal/features/campaign/service"
	userservice "crowdfund-backend/internal/features/user/service"
)

const (
	dateLayout = "2006-01-02"
	// formMemory caps the in-memory part of a multipart form; larger file
	// parts spill to temp files.
	formMemory int64 = 1 << 20
)

type CampaignHandler struct {
	service   service.CampaignService
	users     userservice.UserService
	maxUpload int64
	wrap      func(gin.HandlerFunc) gin.HandlerFunc
}

func NewCampaignHandler(svc service.CampaignService, users userservice.UserService, maxUpload int64, logger zerolog.Logger) *CampaignHandler {
	return &CampaignHandler{
		service:   svc,
		users:     users,
		maxUpload: maxUpload,
		wrap:      middleware.HandleErrorWrapper(logger),
	}
}

// RegisterRoutes mounts the campaign API. requireAuth guards every write.
func (h *CampaignHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	campaigns := router.Group("/campaigns")
	{
		campaigns.GET("", h.wrap(h.ListCampaigns))
		campaigns.GET("/top", h.wrap(h.TopCampaigns))
		campaigns.GET("/:id", h.wrap(h.GetCampaign))
		campaigns.POST("", requireAuth, h.wrap(h.CreateCampaign))
		campaigns.PUT("/:id", requireAuth, h.wrap(h.UpdateCampaign))
		campaigns.POST("/:id/donations", requireAuth, h.wrap(h.Donate))
	}

	users := router.Group("/users")
	{
		users.GET("/:id/campaigns", h.wrap(h.ListByOwner))
		users.GET("/:id/donations", h.wrap(h.ListByDonor))
	}
}

// DonationRequest is the body of a donation.
type DonationRequest struct {
	Amount int64 `json:"amount" example:"50"`
}

// @Summary List campaigns
// @Description Every campaign with its id
// @Tags campaigns
// @Produce json
// @Success 200 {array} models.CampaignRecord
// @Failure 500 {object} middleware.ErrorResponse
// @Router /campaigns [get]
func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	records, err := h.service.ListAllCampaigns(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// @Summary Top campaigns
// @Description Campaigns ranked by amount raised
// @Tags campaigns
// @Produce json
// @Param limit query int false "Number of campaigns (1-100)" default(10)
// @Success 200 {array} models.CampaignRecord
// @Failure 400 {object} middleware.ErrorResponse
// @Router /campaigns/top [get]
func (h *CampaignHandler) TopCampaigns(c *gin.Context) {
	limit := service.DefaultTopLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			_ = c.Error(errors.NewValidationError("limit", "limit must be a number"))
			return
		}
		limit = n
	}

	records, err := h.service.TopCampaigns(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// @Summary Get campaign
// @Tags campaigns
// @Produce json
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CampaignRecord
// @Failure 404 {object} middleware.ErrorResponse
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	record, err := h.service.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// @Summary Create campaign
// @Description Uploads the image and creates a campaign owned by the caller
// @Tags campaigns
// @Accept multipart/form-data
// @Produce json
// @Security TelegramInitData
// @Param project_name formData string true "Project name"
// @Param goal formData int true "Funding goal"
// @Param about formData string true "Description"
// @Param category formData string false "Category"
// @Param start_date formData string false "Start date (YYYY-MM-DD), defaults to today"
// @Param end_date formData string false "End date (YYYY-MM-DD), defaults to one month from today"
// @Param file formData file true "Campaign image"
// @Success 201 {object} models.CampaignRecord
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 413 {object} middleware.ErrorResponse
// @Router /campaigns [post]
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	ownerID, _ := middleware.CurrentUserID(c)

	cleanup, err := h.parseMultipart(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer cleanup()

	in := models.CampaignCreate{
		OwnerName:   h.ownerName(c, ownerID),
		OwnerID:     ownerID,
		ProjectName: strings.TrimSpace(c.PostForm("project_name")),
		About:       strings.TrimSpace(c.PostForm("about")),
		Category:    strings.TrimSpace(c.PostForm("category")),
	}

	goal, err := strconv.ParseInt(strings.TrimSpace(c.PostForm("goal")), 10, 64)
	if err != nil {
		_ = c.Error(errors.NewValidationError("goal", "goal must be a whole number"))
		return
	}
	in.Goal = goal

	if in.StartDate, err = parseDate(c.PostForm("start_date"), "start_date"); err != nil {
		_ = c.Error(err)
		return
	}
	if in.EndDate, err = parseDate(c.PostForm("end_date"), "end_date"); err != nil {
		_ = c.Error(err)
		return
	}
	if in.Media, err = readMedia(c); err != nil {
		_ = c.Error(err)
		return
	}

	record, err := h.service.CreateCampaign(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// @Summary Edit campaign
// @Description Overwrites name, description, image and category. The image is uploaded again on every edit. Responds with null when the campaign does not exist.
// @Tags campaigns
// @Accept multipart/form-data
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Campaign ID"
// @Param project_name formData string true "Project name"
// @Param about formData string true "Description"
// @Param category formData string false "Category"
// @Param file formData file true "Campaign image"
// @Success 200 {object} models.CampaignRecord
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /campaigns/{id} [put]
func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	ownerID, _ := middleware.CurrentUserID(c)

	cleanup, err := h.parseMultipart(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer cleanup()

	media, err := readMedia(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	record, err := h.service.UpdateCampaign(c.Request.Context(), models.CampaignUpdate{
		CampaignID:  c.Param("id"),
		OwnerID:     ownerID,
		ProjectName: strings.TrimSpace(c.PostForm("project_name")),
		About:       strings.TrimSpace(c.PostForm("about")),
		Category:    strings.TrimSpace(c.PostForm("category")),
		Media:       media,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// @Summary Donate
// @Description Adds the amount to the campaign and records the caller as a donor. Responds with null when the campaign does not exist.
// @Tags campaigns
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Campaign ID"
// @Param request body DonationRequest true "Donation"
// @Success 200 {object} models.CampaignRecord
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /campaigns/{id}/donations [post]
func (h *CampaignHandler) Donate(c *gin.Context) {
	donorID, _ := middleware.CurrentUserID(c)

	var req DonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewValidationError("amount", "request body must be {\"amount\": <number>}"))
		return
	}

	record, err := h.service.Donate(c.Request.Context(), models.DonationCreate{
		DonorID:    donorID,
		CampaignID: c.Param("id"),
		Amount:     req.Amount,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// @Summary Campaigns of an owner
// @Tags users
// @Produce json
// @Param id path string true "Owner ID"
// @Success 200 {array} models.CampaignRecord
// @Router /users/{id}/campaigns [get]
func (h *CampaignHandler) ListByOwner(c *gin.Context) {
	records, err := h.service.ListCampaignsByOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// @Summary Campaigns a user donated to
// @Tags users
// @Produce json
// @Param id path string true "Donor ID"
// @Success 200 {array} models.CampaignRecord
// @Router /users/{id}/donations [get]
func (h *CampaignHandler) ListByDonor(c *gin.Context) {
	records, err := h.service.ListDonationsByDonor(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// parseMultipart reads the form under the upload limit. The returned func
// removes any temp files the form spilled to disk.
func (h *CampaignHandler) parseMultipart(c *gin.Context) (func(), error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	if err := c.Request.ParseMultipartForm(min(h.maxUpload, formMemory)); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodePayloadTooLarge, "upload exceeds the size limit").
				WithDetail("limit_bytes", h.maxUpload)
		}
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "expected a multipart form")
	}
	form := c.Request.MultipartForm
	return func() {
		if form != nil {
			_ = form.RemoveAll()
		}
	}, nil
}

// ownerName resolves the display name stored on a new campaign.
func (h *CampaignHandler) ownerName(c *gin.Context, ownerID string) string {
	if h.users != nil {
		if u, err := h.users.GetUser(c.Request.Context(), ownerID); err == nil {
			return u.DisplayName
		}
	}
	if u, ok := middleware.CurrentUser(c); ok {
		if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
			return name
		}
		if u.Username != "" {
			return u.Username
		}
	}
	return ownerID
}

// readMedia returns nil when no file was sent; the service reports it.
func readMedia(c *gin.Context) (*models.MediaFile, error) {
	header, err := c.FormFile("file")
	if stderrors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read uploaded file")
	}

	f, err := header.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read uploaded file")
	}

	return &models.MediaFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func parseDate(raw, field string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, errors.NewValidationError(field, "date must be YYYY-MM-DD")
	}
	return &t, nil
}
