// Package relay is the client for the handoff service that delivers
// human-authored replies and pauses bot automation for a contact.
package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/andersoncassiani/chatsuite/environments"
	"github.com/andersoncassiani/chatsuite/pkg/logger"
)

const handoffPath = "/handoff/send"

type Client struct {
	httpClient *resty.Client
	baseURL    string
}

type handoffRequest struct {
	From         string `json:"from"`
	To           string `json:"to"`
	Text         string `json:"text"`
	PauseMinutes int    `json:"pauseMinutes,omitempty"`
}

func NewClient(cfg environments.RelayConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(cfg.APIKey)

	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
	}
}

// SendHandoff forwards a manual reply to the relay. On success the relay
// persists the outbound message row and pauses automated replies for the
// contact; on a non-success response the body is surfaced as the error.
func (c *Client) SendHandoff(ctx context.Context, from, to, text string, pauseMinutes int) error {
	payload := handoffRequest{
		From:         from,
		To:           to,
		Text:         text,
		PauseMinutes: pauseMinutes,
	}

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(handoffPath)

	duration := time.Since(startTime)

	if err != nil {
		return fmt.Errorf("failed to send handoff request: %w", err)
	}

	logger.Infof("Handoff request to %s%s completed in %v (status: %d)", c.baseURL, handoffPath, duration, resp.StatusCode())

	if !resp.IsSuccess() {
		return fmt.Errorf("relay responded with status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}
