package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"labgate.app/gateway/core/config"
)

// Canonical task statuses reported by the platform after normalization.
const (
	StatusPending   = "PENDING"
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// CreateTaskInput is one task submission. ContinuedJobID, when set, chains
// the new task to a previously issued task id; the platform decides whether
// the reference is acceptable.
type CreateTaskInput struct {
	Kind           string
	Query          string
	ContinuedJobID string
}

// TaskState is the platform's status snapshot for a task. Status is one of
// the canonical Status* constants. Result is set only on COMPLETED, Error
// only on FAILED.
type TaskState struct {
	TaskID string
	Status string
	Result *string
	Error  *string
}

// Client is an HTTP client for the remote scientific-task platform. The
// caller's API key is passed per call, never stored, so one client is
// shared safely across concurrent fan-out.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.PlatformConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

type createTaskBody struct {
	Name          string             `json:"name"`
	Query         string             `json:"query"`
	RuntimeConfig *runtimeConfigBody `json:"runtime_config,omitempty"`
}

type runtimeConfigBody struct {
	ContinuedJobID string `json:"continued_job_id"`
}

type createTaskResponse struct {
	TaskID string `json:"task_id"`
}

type taskStateResponse struct {
	TaskID string  `json:"task_id"`
	Status string  `json:"status"`
	Answer *string `json:"answer,omitempty"`
	Error  *string `json:"error,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// CreateTask submits one task and returns the platform-issued task id.
// Exactly one task is created per successful call; no retry on failure
// since submission is not idempotent.
func (c *Client) CreateTask(ctx context.Context, apiKey string, in CreateTaskInput) (string, error) {
	body := createTaskBody{
		Name:  in.Kind,
		Query: in.Query,
	}
	if in.ContinuedJobID != "" {
		body.RuntimeConfig = &runtimeConfigBody{ContinuedJobID: in.ContinuedJobID}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", WrapError(KindValidation, "encoding task submission", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/tasks", bytes.NewReader(payload))
	if err != nil {
		return "", WrapError(KindValidation, "building task submission request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", WrapError(KindConnectivity, "submitting task", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.statusError(resp, "task submission")
	}

	var created createTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", WrapError(KindConnectivity, "decoding task submission response", err)
	}
	if created.TaskID == "" {
		return "", NewError(KindConnectivity, "platform returned no task id")
	}

	return created.TaskID, nil
}

// GetTask fetches the current status snapshot for a task id.
func (c *Client) GetTask(ctx context.Context, apiKey, taskID string) (TaskState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/tasks/"+taskID, nil)
	if err != nil {
		return TaskState{}, WrapError(KindValidation, "building status request", err)
	}
	c.authorize(req, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TaskState{}, WrapError(KindConnectivity, "fetching task status", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return TaskState{}, c.statusError(resp, "status fetch")
	}

	var state taskStateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return TaskState{}, WrapError(KindConnectivity, "decoding status response", err)
	}

	status, ok := normalizeStatus(state.Status)
	if !ok {
		return TaskState{}, NewError(KindConnectivity, fmt.Sprintf("platform reported unrecognized status %q", state.Status))
	}

	out := TaskState{
		TaskID: state.TaskID,
		Status: status,
	}
	if out.TaskID == "" {
		out.TaskID = taskID
	}
	if status == StatusCompleted {
		out.Result = state.Answer
	}
	if status == StatusFailed {
		out.Error = state.Error
	}
	return out, nil
}

// Ping probes platform reachability with the caller's credentials.
func (c *Client) Ping(ctx context.Context, apiKey string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return WrapError(KindValidation, "building health request", err)
	}
	c.authorize(req, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return WrapError(KindConnectivity, "reaching platform", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp, "health probe")
	}
	return nil
}

func (c *Client) authorize(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")
}

// statusError maps a non-2xx platform response to an error kind. 5xx is
// treated as connectivity: the request was well-formed and a retry may
// reach a healthy instance.
func (c *Client) statusError(resp *http.Response, op string) error {
	detail := readDetail(resp.Body)
	msg := fmt.Sprintf("%s rejected with status %d", op, resp.StatusCode)
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return NewError(KindAuth, msg)
	case resp.StatusCode == http.StatusNotFound:
		return NewError(KindNotFound, msg)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return NewError(KindValidation, msg)
	default:
		return NewError(KindConnectivity, msg)
	}
}

func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body errorResponse
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return strings.TrimSpace(string(raw))
}

var statusAliases = map[string]string{
	"pending":     StatusPending,
	"queued":      StatusPending,
	"running":     StatusRunning,
	"in progress": StatusRunning,
	"completed":   StatusCompleted,
	"success":     StatusCompleted,
	"failed":      StatusFailed,
	"error":       StatusFailed,
}

func normalizeStatus(s string) (string, bool) {
	normalized, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]
	return normalized, ok
}
