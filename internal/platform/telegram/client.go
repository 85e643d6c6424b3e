package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"crowdfund-backend/internal/common/logger"
)

const DefaultAPIURL = "https://api.telegram.org"

// Client is a minimal Bot API client used for owner notifications.
type Client struct {
	httpClient *http.Client
	token      string
	apiURL     string
	log        zerolog.Logger
}

// Response is the Bot API reply envelope.
type Response struct {
	Ok          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// APIError is a reply with ok=false.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
}

func NewClient(token, apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		token:      token,
		apiURL:     strings.TrimRight(apiURL, "/"),
		log:        logger.Component("telegram"),
	}
}

// SendMessage sends a plain text message to a chat or user.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"text":    {text},
	}

	var response Response
	if err := c.makeRequest(ctx, "sendMessage", params, &response); err != nil {
		c.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
		return err
	}
	if !response.Ok {
		return &APIError{Code: response.ErrorCode, Description: response.Description}
	}

	c.log.Debug().Int64("chat_id", chatID).Msg("message sent")
	return nil
}

// NotifyDonation tells a campaign owner about a new donation. ownerID is the
// decimal Telegram user id stored on the campaign.
func (c *Client) NotifyDonation(ctx context.Context, ownerID, projectName string, amount, raised, goal int64) error {
	chatID, err := strconv.ParseInt(ownerID, 10, 64)
	if err != nil {
		return fmt.Errorf("owner id %q is not a telegram user id: %w", ownerID, err)
	}

	text := fmt.Sprintf("New donation of %d to \"%s\".\nRaised %d of %d.", amount, projectName, raised, goal)
	return c.SendMessage(ctx, chatID, text)
}

// NotifyGoalReached tells a campaign owner that the goal has been met.
func (c *Client) NotifyGoalReached(ctx context.Context, ownerID, projectName string, raised, goal int64) error {
	chatID, err := strconv.ParseInt(ownerID, 10, 64)
	if err != nil {
		return fmt.Errorf("owner id %q is not a telegram user id: %w", ownerID, err)
	}

	text := fmt.Sprintf("\"%s\" reached its goal: %d raised of %d.", projectName, raised, goal)
	return c.SendMessage(ctx, chatID, text)
}

func (c *Client) makeRequest(ctx context.Context, method string, data url.Values, result interface{}) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
