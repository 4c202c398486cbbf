// Package yahoo provides a client for Yahoo Finance fundamentals and quotes
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
)

const (
	DefaultBaseURL   = "https://query2.finance.yahoo.com"
	DefaultCookieURL = "https://fc.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Client implements interfaces.StatementProvider against Yahoo Finance
type Client struct {
	baseURL    string
	cookieURL  string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	clock      common.Clock
	lookback   time.Duration

	statementTTL time.Duration
	quoteTTL     time.Duration
	statements   *common.Cache[*models.Statement]
	quotes       *common.Cache[*models.QuickInfo]

	mu    sync.Mutex
	crumb string
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the API base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithCookieURL sets the URL that issues the session cookie
func WithCookieURL(cookieURL string) ClientOption {
	return func(c *Client) {
		c.cookieURL = cookieURL
	}
}

// WithLogger sets the logger
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithClock sets the clock used for cache expiry and the statement window
func WithClock(clock common.Clock) ClientOption {
	return func(c *Client) {
		c.clock = clock
	}
}

// WithCacheTTL sets the statement and quote cache lifetimes
func WithCacheTTL(statements, quotes time.Duration) ClientOption {
	return func(c *Client) {
		c.statementTTL = statements
		c.quoteTTL = quotes
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL:   DefaultBaseURL,
		cookieURL: DefaultCookieURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		limiter:      rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:       common.NewSilentLogger(),
		clock:        common.SystemClock{},
		lookback:     3 * 365 * 24 * time.Hour,
		statementTTL: common.FreshnessStatements,
		quoteTTL:     common.FreshnessQuickInfo,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.statements = common.NewCache[*models.Statement](c.statementTTL, c.clock)
	c.quotes = common.NewCache[*models.QuickInfo](c.quoteTTL, c.clock)

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo Finance API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Symbol maps a ticker to its Yahoo form. BIST tickers carry the .IS suffix.
func Symbol(symbol string, market models.Market) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if market == models.MarketBIST && !strings.HasSuffix(s, ".IS") {
		return s + ".IS"
	}
	return s
}

// ensureCrumb obtains a session cookie and crumb token if none is cached.
func (c *Client) ensureCrumb(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	// The cookie endpoint usually answers 404 but still sets the session cookie.
	cookieReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cookieURL, nil)
	if err != nil {
		return "", fmt.Errorf("build cookie request: %w", err)
	}
	cookieReq.Header.Set("User-Agent", userAgent)
	cookieResp, err := c.httpClient.Do(cookieReq)
	if err != nil {
		return "", fmt.Errorf("fetch cookie: %w", err)
	}
	cookieResp.Body.Close()

	crumbReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/test/getcrumb", nil)
	if err != nil {
		return "", fmt.Errorf("build crumb request: %w", err)
	}
	crumbReq.Header.Set("User-Agent", userAgent)
	crumbResp, err := c.httpClient.Do(crumbReq)
	if err != nil {
		return "", fmt.Errorf("fetch crumb: %w", err)
	}
	defer crumbResp.Body.Close()

	if crumbResp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: crumbResp.StatusCode, Message: "crumb request rejected", Endpoint: "/v1/test/getcrumb"}
	}

	body, err := io.ReadAll(crumbResp.Body)
	if err != nil {
		return "", fmt.Errorf("read crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" {
		return "", fmt.Errorf("empty crumb received")
	}

	c.crumb = crumb
	c.logger.Debug().Msg("Yahoo crumb acquired")
	return crumb, nil
}

func (c *Client) resetCrumb() {
	c.mu.Lock()
	c.crumb = ""
	c.mu.Unlock()
}

// get performs a rate-limited, crumb-authenticated GET request.
// A 401 or 403 refreshes the crumb once before giving up.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	err := c.doGet(ctx, path, params, result)
	if apiErr, ok := err.(*APIError); ok && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
		c.logger.Warn().Str("endpoint", path).Int("status", apiErr.StatusCode).Msg("Yahoo crumb rejected, refreshing")
		c.resetCrumb()
		err = c.doGet(ctx, path, params, result)
	}
	return err
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	crumb, err := c.ensureCrumb(ctx)
	if err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("crumb", crumb)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Yahoo Finance API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
