package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the OpenAI-compatible proxy endpoint used when no
// override is configured.
const DefaultBaseURL = "https://aiproxy.sanand.workers.dev/openai/v1"

type Client struct {
	httpClient       *http.Client
	token            string
	baseURL          string
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMinDelay    time.Duration
	retryMaxDelay    time.Duration
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Choice struct {
	Message Message `json:"message"`
}

type ChatResponse struct {
	ID        string   `json:"id"`
	Choices   []Choice `json:"choices"`
	Usage     Usage    `json:"usage"`
	RequestID string   `json:"-"`
}

// APIError represents a structured API error response.
type APIError struct {
	StatusCode int            `json:"-"`
	Code       string         `json:"code,omitempty"`
	Message    string         `json:"message,omitempty"`
	Raw        map[string]any `json:"-"`
	RequestID  string         `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		if e.Code != "" {
			if e.RequestID != "" {
				return fmt.Sprintf("api error: status=%d code=%s request_id=%s message=%s", e.StatusCode, e.Code, e.RequestID, e.Message)
			}
			return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
		}
		if e.RequestID != "" {
			return fmt.Sprintf("api error: status=%d request_id=%s message=%s", e.StatusCode, e.RequestID, e.Message)
		}
		return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("api error: status=%d request_id=%s", e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("api error: status=%d", e.StatusCode)
}

// NewProxyClient returns a client for the default proxy endpoint with
// default timeout and retry strategy.
func NewProxyClient(token string) *Client {
	return NewClient(token, 60*time.Second, 3, time.Second, 4*time.Second, 10*time.Second)
}

// NewClient allows customizing HTTP timeout and retry/backoff behavior.
func NewClient(token string, httpTimeout time.Duration, retryMax int, baseDelay, minDelay, maxDelay time.Duration) *Client {
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	if retryMax <= 0 {
		retryMax = 3
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	if minDelay <= 0 {
		minDelay = 4 * time.Second
	}
	if maxDelay <= 0 {
		maxDelay = 10 * time.Second
	}
	return &Client{
		httpClient:       &http.Client{Timeout: httpTimeout},
		token:            token,
		baseURL:          DefaultBaseURL,
		retryMaxAttempts: retryMax,
		retryBaseDelay:   baseDelay,
		retryMinDelay:    minDelay,
		retryMaxDelay:    maxDelay,
	}
}

// NewClientWithBaseURL allows injecting a custom base URL (used in tests).
func NewClientWithBaseURL(token string, httpTimeout time.Duration, retryMax int, baseDelay, minDelay, maxDelay time.Duration, baseURL string) *Client {
	c := NewClient(token, httpTimeout, retryMax, baseDelay, minDelay, maxDelay)
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// Chat posts a chat completion request and retries transient failures.
// Every non-2xx status and every transport error counts as transient;
// the request is attempted at most retryMaxAttempts times in total.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if c.token == "" {
		return nil, errors.New("AIPROXY_TOKEN is missing")
	}
	if req.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.baseURL + "/chat/completions"

	var lastErr error
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		// Respect context cancellation
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt > 1 {
			time.Sleep(c.backoff(attempt - 1))
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}
		out, err := parseChatResponse(resp)
		if err != nil {
			lastErr = err
			continue
		}
		return out, nil
	}
	return nil, lastErr
}

// parseChatResponse consumes and closes the response body, turning
// non-2xx statuses into a structured APIError.
func parseChatResponse(resp *http.Response) (*ChatResponse, error) {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		var raw map[string]any
		_ = json.Unmarshal(body, &raw)
		apiErr := &APIError{StatusCode: resp.StatusCode, Raw: raw}
		apiErr.RequestID = extractRequestID(resp)
		if v, ok := raw["error"].(map[string]any); ok {
			if msg, ok := v["message"].(string); ok {
				apiErr.Message = msg
			}
			if code, ok := v["code"].(string); ok {
				apiErr.Code = code
			}
		} else {
			if msg, ok := raw["message"].(string); ok {
				apiErr.Message = msg
			}
			if code, ok := raw["code"].(string); ok {
				apiErr.Code = code
			}
		}
		return nil, apiErr
	}
	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	out.RequestID = extractRequestID(resp)
	return &out, nil
}

// backoff returns the delay before the given retry (1-based). The delay
// doubles from the base delay and is clamped to the configured minimum
// and maximum bounds.
func (c *Client) backoff(retry int) time.Duration {
	d := c.retryBaseDelay
	for i := 1; i < retry; i++ {
		d *= 2
	}
	if d < c.retryMinDelay {
		d = c.retryMinDelay
	}
	if d > c.retryMaxDelay {
		d = c.retryMaxDelay
	}
	return d
}

// Ping probes the proxy host root with a GET and reports the HTTP
// status. A transport failure comes back as an UnreachableError.
func (c *Client) Ping(ctx context.Context) (int, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return 0, fmt.Errorf("parse base url: %w", err)
	}
	root := u.Scheme + "://" + u.Host + "/"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, root, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, &UnreachableError{Host: u.Host, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	return resp.StatusCode, nil
}

// extractRequestID pulls a best-effort request ID from common headers.
func extractRequestID(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	keys := []string{"X-Request-Id", "Openai-Request-Id", "X-Amzn-Requestid"}
	for _, k := range keys {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}
