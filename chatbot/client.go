package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// StatusError is returned when the backend answers with a non-2xx status
type StatusError struct {
	Code    int
	Message string // error field of the response body, if any
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}

// Client talks to the receptionist backend
type Client struct {
	endpoint     string
	httpClient   *http.Client
	streamClient *http.Client
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets the client used for plain request/response calls
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithStreamClient sets the client used for /chat. It should not have a
// Timeout, which would cut long replies off mid-stream.
func WithStreamClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.streamClient = hc
	}
}

// NewClient creates a new backend client rooted at endpoint
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:     strings.TrimSuffix(endpoint, "/"),
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		streamClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// statusError builds a StatusError from resp, preferring an embedded error payload
func statusError(resp *http.Response) error {
	e := &StatusError{Code: resp.StatusCode}
	var body ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		e.Message = body.Error
	}
	return e
}

func ok(code int) bool {
	return code >= 200 && code < 300
}

// NewSession asks the backend for a new session ID
func (c *Client) NewSession(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/session", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		return "", statusError(resp)
	}

	var s SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if s.SessionID == "" {
		return "", fmt.Errorf("backend returned an empty session_id")
	}

	return s.SessionID, nil
}

// OpenChat posts message and returns the event stream body. The caller must
// close it.
func (c *Client) OpenChat(ctx context.Context, sessionID, message string) (io.ReadCloser, error) {
	body, err := json.Marshal(ChatRequest{SessionID: sessionID, Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	if !ok(resp.StatusCode) {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	return resp.Body, nil
}

// Transcribe uploads one recording and returns the recognized text
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename, contentType, language string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("failed to create audio part: %w", err)
	}
	if _, err = io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to write audio part: %w", err)
	}
	if err = w.WriteField("language", language); err != nil {
		return "", fmt.Errorf("failed to write language field: %w", err)
	}
	if err = w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/transcribe", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		return "", statusError(resp)
	}

	var t TranscribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return t.Text, nil
}
