package agentwire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// requestTimeout is the fixed client-side timeout for non-streaming calls.
// Streaming calls deliberately carry no client-enforced timeout: a turn may
// legitimately run for minutes, and cancellation is the caller's context.
const requestTimeout = 120 * time.Second

// Client talks to an LLM-agent backend: plain REST for session management,
// non-streaming turns, and approval resolution, plus the streaming entry
// points in stream.go. It is the only part of the package that performs I/O.
type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	streamClient *http.Client
	log          *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets a bearer token sent on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the client used for non-streaming calls. The
// 120-second default timeout is whatever the given client carries.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for transport diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.log = logger }
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("agentwire: invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: requestTimeout},
		streamClient: &http.Client{},
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateSession creates a new conversation session on the backend.
func (c *Client) CreateSession(ctx context.Context) (*Session, error) {
	var s Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/sessions", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSession fetches a session by id.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	err := c.doJSON(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(sessionID), nil, &s)
	if err != nil {
		return nil, sessionNotFound(err, sessionID)
	}
	return &s, nil
}

// ListSessions lists the backend's sessions.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// DeleteSession deletes a session by id.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	err := c.doJSON(ctx, http.MethodDelete, "/api/sessions/"+url.PathEscape(sessionID), nil, nil)
	return sessionNotFound(err, sessionID)
}

// sessionNotFound maps a 404 from a session endpoint onto the package
// sentinel so callers can check errors.Is(err, ErrSessionNotFound).
func sessionNotFound(err error, sessionID string) error {
	var berr *BackendError
	if errors.As(err, &berr) && berr.StatusCode == http.StatusNotFound && berr.Err == nil {
		berr.Err = ErrSessionNotFound
		berr.Message = fmt.Sprintf("session %q not found", sessionID)
	}
	return err
}

// SendMessage runs a non-streaming chat turn.
func (c *Client) SendMessage(ctx context.Context, req *TurnRequest) (*TurnResponse, error) {
	return c.invoke(ctx, "/api/chat", req)
}

// InvokeAgent runs a non-streaming turn against the named agent.
func (c *Client) InvokeAgent(ctx context.Context, req *TurnRequest) (*TurnResponse, error) {
	if req.Agent == "" {
		return nil, &ValidationError{Field: "agent", Reason: "agent name is required", Err: ErrInvalidRequest}
	}
	return c.invoke(ctx, "/api/agents/"+url.PathEscape(req.Agent), req)
}

// InvokeWorkflow runs a non-streaming turn against the named workflow.
func (c *Client) InvokeWorkflow(ctx context.Context, req *TurnRequest) (*TurnResponse, error) {
	if req.Workflow == "" {
		return nil, &ValidationError{Field: "workflow", Reason: "workflow name is required", Err: ErrInvalidRequest}
	}
	return c.invoke(ctx, "/api/workflows/"+url.PathEscape(req.Workflow), req)
}

func (c *Client) invoke(ctx context.Context, path string, req *TurnRequest) (*TurnResponse, error) {
	if err := ValidateTurnRequest(req); err != nil {
		return nil, err
	}
	var resp TurnResponse
	if err := c.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResolveApproval posts an approve/reject/cancel decision for a pending
// approval. It implements the Resolver interface used by ApprovalManager.
// Resolution is independent of any stream: it may be posted long after the
// turn that requested the approval has finished.
func (c *Client) ResolveApproval(ctx context.Context, approvalID string, decision ApprovalDecision, reason string) error {
	body := struct {
		Decision ApprovalDecision `json:"decision"`
		Reason   string           `json:"reason,omitempty"`
	}{Decision: decision, Reason: reason}

	err := c.doJSON(ctx, http.MethodPost, "/api/approvals/"+url.PathEscape(approvalID), body, nil)

	var berr *BackendError
	if errors.As(err, &berr) && berr.StatusCode == http.StatusNotFound && berr.Err == nil {
		berr.Err = ErrApprovalNotFound
	}
	return err
}

// doJSON performs a request/response call against the backend, encoding in
// as the JSON body (when non-nil) and decoding the response into out (when
// non-nil). Non-2xx responses become a *BackendError.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("agentwire: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("agentwire: build request: %w", err)
	}
	c.setHeaders(httpReq, false)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("agentwire: %s %s: %w", method, path, errors.Join(ErrBackendUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFromResponse(resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("agentwire: decode response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, streaming bool) {
	req.Header.Set("Content-Type", "application/json")
	if streaming {
		req.Header.Set("Accept", "text/event-stream")
	} else {
		req.Header.Set("Accept", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// errorFromResponse turns a non-2xx response into a typed error. The backend
// reports failures as {"error": "..."}; anything else falls back to the raw
// body.
func (c *Client) errorFromResponse(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := strings.TrimSpace(string(data))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		message = payload.Error
	}

	berr := &BackendError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
	}
	switch resp.StatusCode {
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		berr.Err = ErrBackendUnavailable
	case http.StatusBadRequest:
		berr.Err = ErrInvalidRequest
	}
	return berr
}
