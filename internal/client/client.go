// ABOUTME: HTTP client for the SchAIdule backend API
// ABOUTME: Wraps API calls with bearer auth and user-facing error handling

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrUnauthorized is matched by errors.Is for any 401 response
var ErrUnauthorized = errors.New("unauthorized")

// Client is the API client for the SchAIdule backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	return NewWithTimeout(baseURL, 30*time.Second)
}

// NewWithTimeout creates a client whose requests give up after timeout
func NewWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the backend URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// User is the profile record owned by the backend, keyed by email
type User struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	CompletedCourses []string `json:"completedCourses"`
	Sports           []string `json:"sports"`
	FutureGoals      string   `json:"futureGoals"`
}

// Clone returns a deep copy so callers can edit lists without aliasing
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.CompletedCourses = append([]string(nil), u.CompletedCourses...)
	cp.Sports = append([]string(nil), u.Sports...)
	return &cp
}

// AuthResponse is returned by /api/login and /api/register
type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

// LoginInput is the /api/login request body
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the /api/register request body
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Course is one catalog offering (course or sports/club activity)
type Course struct {
	ID             int     `json:"id"`
	Title          string  `json:"course_title"`
	Section        string  `json:"course_section"`
	Subject        string  `json:"subject,omitempty"`
	Credits        float64 `json:"credits,omitempty"`
	OfferingPeriod string  `json:"offering_period,omitempty"`
	DeliveryMode   string  `json:"delivery_mode,omitempty"`
	Description    string  `json:"course_description,omitempty"`
}

// UnmarshalJSON accepts both the backend column names and the short
// title/section keys
func (c *Course) UnmarshalJSON(data []byte) error {
	type plain Course
	var aux struct {
		plain
		ShortTitle   string `json:"title"`
		ShortSection string `json:"section"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = Course(aux.plain)
	if c.Title == "" {
		c.Title = aux.ShortTitle
	}
	if c.Section == "" {
		c.Section = aux.ShortSection
	}
	return nil
}

// coursesResponse represents the /api/courses endpoint response
type coursesResponse struct {
	Courses []Course `json:"courses"`
}

// Schedule is the opaque result of /api/generate-schedule
type Schedule struct {
	CourseIDs       []int    `json:"course_ids,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// scheduleResponse tolerates the older "schedules" key for recommendations
type scheduleResponse struct {
	Schedule
	Schedules []string `json:"schedules,omitempty"`
}

// ErrorResponse represents an API error body
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error: %s", e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Register calls POST /api/register
func (c *Client) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	var auth AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/register", "", input, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// Login calls POST /api/login
func (c *Client) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	var auth AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", "", input, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// GetProfile calls GET /api/get-profile
func (c *Client) GetProfile(ctx context.Context, token string) (*User, error) {
	var body struct {
		User *User `json:"user"`
	}
	raw, err := c.doRaw(ctx, http.MethodGet, "/api/get-profile", token, nil)
	if err != nil {
		return nil, err
	}
	// The profile may come bare or wrapped in {"user": ...}
	if err := json.Unmarshal(raw, &body); err == nil && body.User != nil {
		return body.User, nil
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return &user, nil
}

// UpdateAccount calls POST /api/update-account with the full edited profile
func (c *Client) UpdateAccount(ctx context.Context, token string, user *User) (*User, error) {
	raw, err := c.doRaw(ctx, http.MethodPost, "/api/update-account", token, user)
	if err != nil {
		return nil, err
	}
	var body struct {
		User *User `json:"user"`
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &body); err == nil && body.User != nil {
			return body.User, nil
		}
	}
	// Backend acknowledged without echoing the profile
	return user.Clone(), nil
}

// Courses calls GET /api/courses
func (c *Client) Courses(ctx context.Context, token string) ([]Course, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/api/courses", token, nil)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var courses []Course
		if err := json.Unmarshal(trimmed, &courses); err != nil {
			return nil, fmt.Errorf("invalid response from backend: %w", err)
		}
		return courses, nil
	}
	var resp coursesResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return resp.Courses, nil
}

// GenerateSchedule calls POST /api/generate-schedule with the profile as payload
func (c *Client) GenerateSchedule(ctx context.Context, token string, user *User) (*Schedule, error) {
	var resp scheduleResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate-schedule", token, user, &resp); err != nil {
		return nil, err
	}
	sched := resp.Schedule
	if len(sched.Recommendations) == 0 && len(resp.Schedules) > 0 {
		sched.Recommendations = resp.Schedules
	}
	return &sched, nil
}

// do performs a request and decodes a JSON body into out
func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	raw, err := c.doRaw(ctx, method, path, token, in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// doRaw performs a request and returns the body of a 2xx response
func (c *Client) doRaw(ctx context.Context, method, path, token string, in interface{}) ([]byte, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal input: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	slog.Debug("API request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.handleErrorResponse(resp)
		slog.Debug("API error", "path", path, "status", resp.StatusCode, "request_id", requestID)
		return nil, apiErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return data, nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled")
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return &APIError{StatusCode: resp.StatusCode}
	}
	msg := errResp.Message
	if msg == "" {
		msg = errResp.Error
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// Message extracts the server-provided message from err, or fallback
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
