package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sourcebot/internal/types"
)

// NotifyClient talks to the notification service: history, approvals, voice
// assets, and the SSE stream (see sse.go).
type NotifyClient struct {
	baseURL string
	http    *http.Client
}

func NewNotify(baseURL string) *NotifyClient {
	return &NotifyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *NotifyClient) BaseURL() string {
	return c.baseURL
}

// History returns the most recent notifications, raw; callers normalize.
func (c *NotifyClient) History(ctx context.Context, limit int) ([]map[string]any, error) {
	type historyResponse struct {
		History []map[string]any `json:"history"`
	}
	url := fmt.Sprintf("%s/api/notifications/history?limit=%d", c.baseURL, limit)
	var resp historyResponse
	if err := doJSON(ctx, c.http, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// Approve responds to an approval-requiring notification on behalf of the
// dashboard manager.
func (c *NotifyClient) Approve(ctx context.Context, id string, approved bool) error {
	body := map[string]any{
		"approved":   approved,
		"manager_id": "dashboard",
	}
	url := fmt.Sprintf("%s/api/notifications/%s/approve", c.baseURL, id)
	return doJSON(ctx, c.http, http.MethodPost, url, body, nil)
}

// FetchVoice downloads a voice asset. The URL has already been resolved to an
// absolute one by notification normalization.
func (c *NotifyClient) FetchVoice(ctx context.Context, url string) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("voice url is required")
	}
	return doBinary(ctx, c.http, url)
}

// OutboundNotification is posted by the dashboard to log its own actions,
// e.g. a simulated email send.
type OutboundNotification struct {
	Type             string         `json:"type"`
	Title            string         `json:"title"`
	Message          string         `json:"message"`
	Priority         types.Priority `json:"priority"`
	RequiresApproval bool           `json:"requires_approval"`
	AgentID          string         `json:"agent_id"`
	Data             map[string]any `json:"data,omitempty"`
}

func (c *NotifyClient) Post(ctx context.Context, notification OutboundNotification) error {
	return doJSON(ctx, c.http, http.MethodPost, c.baseURL+"/api/notifications", notification, nil)
}
