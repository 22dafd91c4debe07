package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Analyzer defines the single call the lifecycle controller depends on.
// This interface is implemented by *Client and can be used for testing.
type Analyzer interface {
	Analyze(ctx context.Context, target string) (AnalyzeResponse, error)
}

// Ensure Client implements Analyzer at compile time.
var _ Analyzer = (*Client)(nil)

// AnalyzePath is the fixed endpoint of the analysis service.
const AnalyzePath = "/api/analyze"

const (
	defaultServiceURL = "127.0.0.1:8080"
	defaultUserAgent  = "insight/0.1"
	defaultTimeout    = 30 * time.Second
	maxResponseBody   = 4 << 20
	requestIDHeader   = "X-Request-ID"
)

// Client talks to the page analysis HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *log.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout bounds each request; a timeout resolves as a transport failure.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for transport diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a Client for the service at serviceURL (host:port or URL).
func NewClient(serviceURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(serviceURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		userAgent: defaultUserAgent,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the absolute analyze URL.
func (c *Client) Endpoint() string {
	return c.baseURL.ResolveReference(&url.URL{Path: AnalyzePath}).String()
}

// Analyze issues exactly one POST for target. Failures are always an
// *ErrorResponse: service-reported ones verbatim, everything else collapsed
// into ErrUnexpected.
func (c *Client) Analyze(ctx context.Context, target string) (AnalyzeResponse, error) {
	if c == nil {
		return AnalyzeResponse{}, ErrUnexpected()
	}
	requestID := uuid.NewString()
	logger := c.logger.With("request_id", requestID, "url", target)

	status, body, err := c.post(ctx, requestID, AnalyzeRequest{URL: target})
	if err != nil {
		logger.Warn("analyze request failed", "err", err)
		return AnalyzeResponse{}, ErrUnexpected()
	}

	switch {
	case status >= 200 && status < 300:
		resp, err := DecodeAnalyzeResponse(body)
		if err != nil {
			logger.Warn("analyze response rejected", "status", status, "err", err)
			return AnalyzeResponse{}, ErrUnexpected()
		}
		logger.Debug("analyze succeeded", "status", status)
		return resp, nil
	default:
		svcErr, err := DecodeErrorResponse(body)
		if err != nil {
			logger.Warn("error response undecodable", "status", status, "err", err)
			return AnalyzeResponse{}, ErrUnexpected()
		}
		logger.Info("service reported error", "status", status, "code", svcErr.StatusCode, "message", svcErr.Message)
		return AnalyzeResponse{}, &svcErr
	}
}

func (c *Client) post(ctx context.Context, requestID string, payload AnalyzeRequest) (int, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// AsErrorResponse extracts the *ErrorResponse in err's chain, mapping any
// other non-nil error to ErrUnexpected.
func AsErrorResponse(err error) *ErrorResponse {
	if err == nil {
		return nil
	}
	var resp *ErrorResponse
	if errors.As(err, &resp) && resp != nil {
		return resp
	}
	return ErrUnexpected()
}

func parseBaseURL(serviceURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serviceURL)
	if trimmed == "" {
		trimmed = defaultServiceURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse service_url %q: %w", serviceURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse service_url %q: missing host", serviceURL)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
