// Package admin is a client for the clinic admin dashboard API.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/korylprince/dental-receptionist/api"
)

var (
	// ErrUnauthorized is returned when the stored credentials are rejected.
	// Callers should discard them and ask the user to log in again.
	ErrUnauthorized = errors.New("admin: unauthorized")
	// ErrIncorrectPassword is returned by ChangePassword when the current password is wrong
	ErrIncorrectPassword = errors.New("Incorrect current password")
	// ErrCurrentPasswordRequired is returned by ChangePassword when no current password is given
	ErrCurrentPasswordRequired = errors.New("Current password is required")
)

// StatusError is returned when the API answers with a non-2xx status
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}

// Is lets errors.Is match ErrUnauthorized against a 401
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.Code == http.StatusUnauthorized
}

type errorBody struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// Client calls the admin API with HTTP basic auth
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        *log.Logger

	mu       sync.Mutex
	username string
	password string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for diagnostics
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient returns a Client for the API at endpoint using the given credentials
func NewClient(endpoint, username, password string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.New(io.Discard, "", 0),
		username:   username,
		password:   password,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Username returns the stored username
func (c *Client) Username() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username
}

func (c *Client) credentials() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username, c.password
}

func statusError(resp *http.Response) *StatusError {
	e := &StatusError{Code: resp.StatusCode}
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		e.Detail = body.Detail
	}
	return e
}

// do sends a request authenticated as user/pass and decodes a JSON response into out, if non-nil
func (c *Client) do(ctx context.Context, method, path, user, pass string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(user, pass)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := statusError(resp)
		c.log.Printf("%s %s: %v", method, path, e)
		return e
	}

	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	user, pass := c.credentials()
	return c.do(ctx, method, path, user, pass, in, out)
}

// Appointments lists appointments matching filters
func (c *Client) Appointments(ctx context.Context, filters api.AppointmentFilters) ([]*api.Appointment, error) {
	q := url.Values{}
	if filters.Date != "" {
		q.Set("date", filters.Date)
	}
	if filters.Status != "" {
		q.Set("status_filter", filters.Status)
	}
	if filters.Search != "" {
		q.Set("search", filters.Search)
	}
	path := "/api/appointments"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var list []*api.Appointment
	if err := c.call(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CancelAppointment cancels the appointment with the given id
func (c *Client) CancelAppointment(ctx context.Context, id int64, reason string) error {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/api/appointments/%d/cancel", id), &api.CancelRequest{Reason: reason}, nil)
}

// Stats returns clinic-wide appointment counts. Today counts appointments on
// date, or on the server's current date if date is empty.
func (c *Client) Stats(ctx context.Context, date string) (*api.Stats, error) {
	path := "/api/stats"
	if date != "" {
		path += "?" + url.Values{"date": {date}}.Encode()
	}

	var s api.Stats
	if err := c.call(ctx, http.MethodGet, path, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Settings returns the clinic settings
func (c *Client) Settings(ctx context.Context) (*api.Settings, error) {
	var s api.Settings
	if err := c.call(ctx, http.MethodGet, "/api/settings", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings saves the present sections of u
func (c *Client) SaveSettings(ctx context.Context, u *api.SettingsUpdate) error {
	return c.call(ctx, http.MethodPost, "/api/settings", u, nil)
}

type changePasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePassword changes the admin password, authenticating with current rather
// than the stored password. On success the client uses the new password.
func (c *Client) ChangePassword(ctx context.Context, current, newPassword, confirm string) error {
	if current == "" {
		return ErrCurrentPasswordRequired
	}
	if err := api.ValidateNewPassword(newPassword, confirm); err != nil {
		return err
	}

	user, _ := c.credentials()
	err := c.do(ctx, http.MethodPost, "/api/admin/change-password", user, current,
		&changePasswordRequest{NewPassword: newPassword, ConfirmPassword: confirm}, nil)

	var se *StatusError
	if errors.As(err, &se) {
		if se.Code == http.StatusUnauthorized {
			return ErrIncorrectPassword
		}
		if se.Detail == "" {
			return fmt.Errorf("Failed to change password: %w", err)
		}
		return err
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.password = newPassword
	c.mu.Unlock()
	return nil
}
