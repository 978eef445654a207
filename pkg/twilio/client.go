// Package twilio is a minimal client for the Twilio Messages API, limited
// to the WhatsApp content-template send this service needs.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/andersoncassiani/chatsuite/environments"
	"github.com/andersoncassiani/chatsuite/pkg/logger"
	"github.com/andersoncassiani/chatsuite/pkg/phone"
)

const apiBaseURL = "https://api.twilio.com"

type Client struct {
	httpClient  *resty.Client
	accountSID  string
	from        string
	templateSID string
}

type messageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewClient builds a template sender. All credential fields are required;
// missing ones are a configuration error, never retried.
func NewClient(cfg environments.TwilioConfig) (*Client, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.WhatsAppFrom == "" || cfg.TaskTemplateSID == "" {
		return nil, fmt.Errorf("twilio credentials are not fully configured")
	}

	from := strings.TrimSpace(cfg.WhatsAppFrom)
	if !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:+" + strings.TrimLeft(from, "+")
	}

	httpClient := resty.New().
		SetBaseURL(apiBaseURL).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient:  httpClient,
		accountSID:  cfg.AccountSID,
		from:        from,
		templateSID: cfg.TaskTemplateSID,
	}, nil
}

// From returns the normalized sender address the client sends from.
func (c *Client) From() string {
	return c.from
}

// SendTemplate sends the configured content template to a destination
// number with the given variable slots. The destination may arrive in any
// of the accepted raw forms; it is normalized here, and an unnormalizable
// value fails before any network call.
func (c *Client) SendTemplate(ctx context.Context, to string, variables map[string]string) (string, error) {
	normalized, err := phone.Normalize(to)
	if err != nil {
		return "", fmt.Errorf("destination %q: %w", to, err)
	}

	vars, err := json.Marshal(variables)
	if err != nil {
		return "", fmt.Errorf("failed to encode template variables: %w", err)
	}

	var msgResp messageResponse
	var errResp apiError

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":               normalized,
			"From":             c.from,
			"ContentSid":       c.templateSID,
			"ContentVariables": string(vars),
		}).
		SetResult(&msgResp).
		SetError(&errResp).
		Post(fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", c.accountSID))

	duration := time.Since(startTime)

	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	logger.Infof("Twilio send to %s completed in %v (status: %d)", normalized, duration, resp.StatusCode())

	if resp.StatusCode() != http.StatusCreated && resp.StatusCode() != http.StatusOK {
		// Keep the upstream message verbatim for operator diagnosis.
		if errResp.Message != "" {
			return "", fmt.Errorf("twilio error %d: %s", errResp.Code, errResp.Message)
		}
		return "", fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode(), resp.String())
	}

	return msgResp.SID, nil
}
