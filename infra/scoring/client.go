// Package scoring implements the HTTP transport to the remote scoring
// service: session lifecycle and the hourly play round exchange.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kilianp07/rotables/core/model"
	"github.com/kilianp07/rotables/infra/logger"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultSessionFile = "session.id"
	defaultRate        = 10
)

var (
	// ErrNoSession is returned when a call needs a session id and none was
	// started or resumed.
	ErrNoSession = errors.New("scoring: no active session")
	// ErrSessionConflict is returned when the service reports an active
	// session but no session file exists locally to resume it.
	ErrSessionConflict = errors.New("scoring: active session on server but no local session file")
)

// StatusError is returned for any unexpected HTTP status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("scoring: unexpected status %d: %s", e.Code, e.Body)
}

// Config holds the scoring client settings.
type Config struct {
	BaseURL        string  `json:"base_url"`
	APIKey         string  `json:"api_key"`
	SessionFile    string  `json:"session_file"`
	TimeoutSeconds int     `json:"timeout_seconds"`
	RateLimit      float64 `json:"rate_limit"`
	Burst          int     `json:"burst"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.SessionFile == "" {
		c.SessionFile = defaultSessionFile
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = int(defaultTimeout / time.Second)
	}
	if c.RateLimit <= 0 {
		c.RateLimit = defaultRate
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
}

// Validate checks that the client can reach the service.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("scoring.base_url is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("scoring.api_key is required")
	}
	return nil
}

// Client talks to the scoring service. It implements round.Transport and
// round.Session.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	apiKey      string
	sessionFile string
	logger      logger.Logger

	mu        sync.RWMutex
	sessionID string
}

// NewClient creates a client from cfg. Unset fields get their defaults.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		httpClient:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		sessionFile: cfg.SessionFile,
		logger:      logger.New("scoring"),
	}
}

// SessionID returns the current session id, empty when none.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

func (c *Client) setSession(id string) {
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
}

// Start opens a new session or resumes the one stored in the session file
// when the service reports a conflict.
func (c *Client) Start(ctx context.Context) (string, error) {
	status, body, err := c.do(ctx, "/session/start", false, nil)
	if err != nil {
		return "", err
	}
	switch status {
	case http.StatusOK:
		id := strings.Trim(strings.TrimSpace(string(body)), `"`)
		if id == "" {
			return "", &StatusError{Code: status, Body: "empty session id"}
		}
		c.setSession(id)
		if err := os.WriteFile(c.sessionFile, []byte(id), 0o600); err != nil {
			c.logger.Warnf("save session file %s: %v", c.sessionFile, err)
		}
		c.logger.Infof("started session %s", id)
		return id, nil
	case http.StatusConflict:
		id, err := c.loadSession()
		if err != nil {
			return "", err
		}
		c.setSession(id)
		c.logger.Infof("resumed session %s", id)
		return id, nil
	default:
		return "", &StatusError{Code: status, Body: string(body)}
	}
}

func (c *Client) loadSession() (string, error) {
	data, err := os.ReadFile(c.sessionFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrSessionConflict
		}
		return "", fmt.Errorf("read session file: %w", err)
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", ErrSessionConflict
	}
	return id, nil
}

// PlayRound submits one hour of decisions.
func (c *Client) PlayRound(ctx context.Context, req model.HourRequest) (model.HourResponse, error) {
	var out model.HourResponse
	if c.SessionID() == "" {
		return out, ErrNoSession
	}
	status, body, err := c.do(ctx, "/play/round", true, req)
	if err != nil {
		return out, err
	}
	if status != http.StatusOK {
		return out, &StatusError{Code: status, Body: string(body)}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decode round response: %w", err)
	}
	return out, nil
}

// EndSession closes the session and returns the final summary reported by
// the service.
func (c *Client) EndSession(ctx context.Context) (model.HourResponse, error) {
	var out model.HourResponse
	if c.SessionID() == "" {
		return out, ErrNoSession
	}
	status, body, err := c.do(ctx, "/session/end", true, nil)
	if err != nil {
		return out, err
	}
	if status != http.StatusOK {
		return out, &StatusError{Code: status, Body: string(body)}
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &out); err != nil {
			return out, fmt.Errorf("decode end response: %w", err)
		}
	}
	return out, nil
}

// End closes the session, discarding the final summary.
func (c *Client) End(ctx context.Context) error {
	resp, err := c.EndSession(ctx)
	if err != nil {
		return err
	}
	c.logger.Infof("session ended at %s, total cost %.2f", resp.At(), resp.TotalCost)
	return nil
}

func (c *Client) do(ctx context.Context, path string, withSession bool, body any) (int, []byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter: %w", err)
	}
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("API-KEY", c.apiKey)
	if withSession {
		req.Header.Set("SESSION-ID", c.SessionID())
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warnf("POST %s returned %d", path, resp.StatusCode)
	}
	return resp.StatusCode, data, nil
}
