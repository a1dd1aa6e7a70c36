package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"sourcebot/internal/types"
)

const healthProbeTimeout = 5 * time.Second

// Client talks to the orchestrator service that owns the workflow state
// machine.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// CommandResponse is the envelope every workflow command returns.
type CommandResponse struct {
	Message string               `json:"message"`
	State   *types.WorkflowState `json:"state"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type TextReportResponse struct {
	Report string `json:"report"`
}

func (c *Client) GetState(ctx context.Context) (*types.WorkflowState, error) {
	var state types.WorkflowState
	if err := doJSON(ctx, c.http, http.MethodGet, c.baseURL+"/api/state", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) SubmitGoal(ctx context.Context, goal string) (*CommandResponse, error) {
	body := map[string]string{"goal": goal}
	var resp CommandResponse
	if err := doJSON(ctx, c.http, http.MethodPost, c.baseURL+"/api/submit-goal", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ExecuteResearch(ctx context.Context) (*CommandResponse, error) {
	var resp CommandResponse
	if err := doJSON(ctx, c.http, http.MethodPost, c.baseURL+"/api/execute-research", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ApproveFindings(ctx context.Context, approved bool) (*CommandResponse, error) {
	body := map[string]bool{"approved": approved}
	var resp CommandResponse
	if err := doJSON(ctx, c.http, http.MethodPost, c.baseURL+"/api/approve-findings", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResetWorkflow(ctx context.Context) (*CommandResponse, error) {
	var resp CommandResponse
	if err := doJSON(ctx, c.http, http.MethodPost, c.baseURL+"/api/reset", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VoiceReport returns the raw MP3 payload of the spoken status summary.
func (c *Client) VoiceReport(ctx context.Context) ([]byte, error) {
	return doBinary(ctx, c.http, c.baseURL+"/api/get-voice-report")
}

func (c *Client) TextReport(ctx context.Context) (string, error) {
	var resp TextReportResponse
	if err := doJSON(ctx, c.http, http.MethodGet, c.baseURL+"/api/get-text-report", nil, &resp); err != nil {
		return "", err
	}
	return resp.Report, nil
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	probe := &http.Client{Timeout: healthProbeTimeout, Transport: c.http.Transport}
	var resp HealthResponse
	if err := doJSON(ctx, probe, http.MethodGet, c.baseURL+"/api/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Healthy is the boolean probe; it swallows errors.
func (c *Client) Healthy(ctx context.Context) bool {
	_, err := c.Health(ctx)
	return err == nil
}
