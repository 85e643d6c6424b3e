// Package crowdfundclient is a typed client for the campaign HTTP API. It
// implements syncstore.Backend so a Store can run against a remote server.
package crowdfundclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crowdfund-backend/internal/features/campaign/models"
)

const (
	HeaderInitData = "X-Telegram-Init-Data"
	dateLayout     = "2006-01-02"
	maxBodyBytes   = 10 << 20
)

// APIError is a failed API call. Code is the server's error code when the
// response carried the error envelope.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: status %d: [%s] %s", e.Status, e.Code, e.Message)
}

type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	initData   string
}

type Option func(*Client)

// WithHTTPClient replaces the default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithInitData signs every request as the user the init data belongs to.
func WithInitData(raw string) Option {
	return func(c *Client) { c.initData = raw }
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListAllCampaigns(ctx context.Context) ([]models.CampaignRecord, error) {
	var out []models.CampaignRecord
	if err := c.do(ctx, http.MethodGet, "/campaigns", nil, "", &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// TopCampaigns returns up to limit campaigns ranked by amount raised.
func (c *Client) TopCampaigns(ctx context.Context, limit int) ([]models.CampaignRecord, error) {
	var out []models.CampaignRecord
	path := "/campaigns/top?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// CreateCampaign submits a campaign. The server takes the owner from the
// init data, so in.OwnerID and in.OwnerName are not sent.
func (c *Client) CreateCampaign(ctx context.Context, in models.CampaignCreate) (*models.CampaignRecord, error) {
	fields := map[string]string{
		"project_name": in.ProjectName,
		"goal":         strconv.FormatInt(in.Goal, 10),
		"about":        in.About,
		"category":     in.Category,
	}
	if in.StartDate != nil {
		fields["start_date"] = in.StartDate.Format(dateLayout)
	}
	if in.EndDate != nil {
		fields["end_date"] = in.EndDate.Format(dateLayout)
	}

	body, contentType, err := multipartBody(fields, in.Media)
	if err != nil {
		return nil, err
	}

	var out *models.CampaignRecord
	if err := c.do(ctx, http.MethodPost, "/campaigns", body, contentType, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Donate donates as the init-data user. It returns (nil, nil) when the
// campaign does not exist.
func (c *Client) Donate(ctx context.Context, in models.DonationCreate) (*models.CampaignRecord, error) {
	payload, err := json.Marshal(map[string]int64{"amount": in.Amount})
	if err != nil {
		return nil, err
	}

	var out *models.CampaignRecord
	path := "/campaigns/" + url.PathEscape(in.CampaignID) + "/donations"
	if err := c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), "application/json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCampaign(ctx context.Context, id string) (*models.CampaignRecord, error) {
	var out *models.CampaignRecord
	if err := c.do(ctx, http.MethodGet, "/campaigns/"+url.PathEscape(id), nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateCampaign edits a campaign owned by the init-data user. It returns
// (nil, nil) when the campaign does not exist.
func (c *Client) UpdateCampaign(ctx context.Context, in models.CampaignUpdate) (*models.CampaignRecord, error) {
	body, contentType, err := multipartBody(map[string]string{
		"project_name": in.ProjectName,
		"about":        in.About,
		"category":     in.Category,
	}, in.Media)
	if err != nil {
		return nil, err
	}

	var out *models.CampaignRecord
	if err := c.do(ctx, http.MethodPut, "/campaigns/"+url.PathEscape(in.CampaignID), body, contentType, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCampaignsByOwner(ctx context.Context, ownerID string) ([]models.CampaignRecord, error) {
	var out []models.CampaignRecord
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(ownerID)+"/campaigns", nil, "", &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) ListDonationsByDonor(ctx context.Context, donorID string) ([]models.CampaignRecord, error) {
	var out []models.CampaignRecord
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(donorID)+"/donations", nil, "", &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.initData != "" {
		req.Header.Set(HeaderInitData, c.initData)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, data)
	}
	if result == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.RequestID = env.RequestID
	}
	return apiErr
}

func multipartBody(fields map[string]string, media *models.MediaFile) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if media != nil {
		part, err := w.CreateFormFile("file", media.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(media.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func nonNil(in []models.CampaignRecord) []models.CampaignRecord {
	if in == nil {
		return []models.CampaignRecord{}
	}
	return in
}
