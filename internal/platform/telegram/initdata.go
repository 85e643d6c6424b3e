package telegram

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

// SignInitData builds a Mini App init-data string for user signed with the
// bot token. Local tooling and tests use it to act as a signed-in user.
func SignInitData(user initdata.User, botToken string, authDate time.Time) (string, error) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("failed to marshal user: %w", err)
	}

	payload := map[string]string{
		"query_id": "crowdfund-dev",
		"user":     string(userJSON),
	}
	hash := initdata.Sign(payload, botToken, authDate)

	values := url.Values{}
	for k, v := range payload {
		values.Set(k, v)
	}
	values.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	values.Set("hash", hash)
	return values.Encode(), nil
}
