// Package tasksource is the client for the DT-OS high-priority task webhook
// API. Fetching through the main endpoint consumes tasks from the upstream
// queue; the peek endpoint only previews them.
package tasksource

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/andersoncassiani/chatsuite/environments"
	"github.com/andersoncassiani/chatsuite/internal/domain"
	"github.com/andersoncassiani/chatsuite/pkg/logger"
)

const (
	consumePath = "/api/webhook/whatsapp/tasks"
	peekPath    = "/api/webhook/whatsapp/tasks/peek"
)

type Client struct {
	httpClient *resty.Client
	baseURL    string
}

func NewClient(cfg environments.TaskSourceConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
	}
}

// FetchTasks retrieves the pending high-priority tasks. Any non-success
// status or transport error is a fetch failure; the caller aborts with zero
// side effects.
func (c *Client) FetchTasks(ctx context.Context, consume bool) (*domain.TaskBatch, error) {
	path := peekPath
	if consume {
		path = consumePath
	}

	var batch domain.TaskBatch

	startTime := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&batch).
		Get(path)

	duration := time.Since(startTime)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	logger.Infof("Task fetch from %s%s completed in %v (status: %d)", c.baseURL, path, duration, resp.StatusCode())

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("task API responded with status %d: %s", resp.StatusCode(), resp.String())
	}

	return &batch, nil
}
