package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/studysync/studysync-api/models"
)

// DefaultTimeout bounds every call to the API.
const DefaultTimeout = 10 * time.Second

// ErrNetwork means no response arrived at all.
var ErrNetwork = errors.New("unable to reach the server, check your connection")

// APIError carries the status and error string of a {success:false} response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status of an APIError, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL string
	http    *http.Client
	session Session
	demo    bool
}

type Option func(*Client)

func WithSession(s Session) Option {
	return func(c *Client) { c.session = s }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithDemoFallback serves fixed demo subjects and groups when the API is unreachable.
func WithDemoFallback() Option {
	return func(c *Client) { c.demo = true }
}

// New returns a client for baseURL, e.g. http://localhost:8080/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		session: NewMemorySession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() Session {
	return c.session
}

// do sends one request. Nothing is retried.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.Error == "" {
			failure.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: failure.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates an account and signs in.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	var resp authResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, c.session.Save(resp.Token, &resp.User)
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, c.session.Save(resp.Token, &resp.User)
}

// Logout tells the server and always drops the local session.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if clearErr := c.session.Clear(); clearErr != nil {
		return clearErr
	}
	return err
}

// CurrentUser answers from the session cache without a round trip.
func (c *Client) CurrentUser() *models.User {
	return c.session.User()
}

func (c *Client) IsAuthenticated() bool {
	return c.session.Token() != ""
}

// Me refreshes the cached profile from the server.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, c.session.Save(c.session.Token(), &resp.User)
}

func (c *Client) UpdateUsername(ctx context.Context, name string) (*models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/auth/user", map[string]string{"name": name}, &resp); err != nil {
		return nil, err
	}
	return &resp.User, c.session.Save(c.session.Token(), &resp.User)
}

// IsGroupOwner gates owner-only affordances using the cached profile.
func (c *Client) IsGroupOwner(group *models.Group) bool {
	user := c.session.User()
	if user == nil || group == nil {
		return false
	}
	for _, m := range group.Members {
		if m.UserID == user.ID {
			return m.Role == models.RoleOwner
		}
	}
	return group.CreatedBy == user.ID
}

// Health reports whether the API answers and its database is connected.
func (c *Client) Health(ctx context.Context) (bool, error) {
	var resp struct {
		Database string `json:"database"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return false, err
	}
	return resp.Database == "Connected", nil
}
