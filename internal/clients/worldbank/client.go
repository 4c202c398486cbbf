// Package worldbank provides a client for the World Bank indicators API
package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
)

const (
	DefaultBaseURL   = "https://api.worldbank.org"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5

	// Real GDP growth, annual %
	IndicatorGDPGrowth = "NY.GDP.MKTP.KD.ZG"
)

// Client implements interfaces.GDPProvider
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	cache      *common.Cache[*models.GDPGrowth]
	ttl        time.Duration
	clock      common.Clock
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the API base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
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

// WithCache sets the cache TTL and clock
func WithCache(ttl time.Duration, clock common.Clock) ClientOption {
	return func(c *Client) {
		c.ttl = ttl
		c.clock = clock
	}
}

// NewClient creates a new World Bank client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     common.NewSilentLogger(),
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		ttl:        common.FreshnessGDP,
		clock:      common.SystemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = common.NewCache[*models.GDPGrowth](c.ttl, c.clock)
	return c
}

type indicatorRow struct {
	Date    string   `json:"date"`
	Value   *float64 `json:"value"`
	Country struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"country"`
}

type apiMessage struct {
	Message []struct {
		ID    string `json:"id"`
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"message"`
}

// GetGDPGrowth returns annual real GDP growth for the trailing window of years
// ending last calendar year. Average is a decimal over the non-null years.
func (c *Client) GetGDPGrowth(ctx context.Context, country string, years int) (*models.GDPGrowth, error) {
	if country == "" {
		country = "TR"
	}
	if years <= 0 {
		years = 10
	}
	end := c.clock.Now().Year() - 1
	start := end - years + 1

	key := common.CacheKey("worldbank", map[string]string{
		"country": strings.ToUpper(country),
		"from":    strconv.Itoa(start),
		"to":      strconv.Itoa(end),
	})
	return c.cache.GetOrLoad(ctx, key, func(ctx context.Context) (*models.GDPGrowth, error) {
		path := fmt.Sprintf("/v2/country/%s/indicator/%s", url.PathEscape(strings.ToLower(country)), IndicatorGDPGrowth)
		params := url.Values{}
		params.Set("format", "json")
		params.Set("date", fmt.Sprintf("%d:%d", start, end))
		params.Set("per_page", "100")

		body, err := c.get(ctx, path, params)
		if err != nil {
			return nil, err
		}

		growth, err := ParseIndicator(body)
		if err != nil {
			return nil, err
		}
		if growth.Country == "" {
			growth.Country = strings.ToUpper(country)
		}
		c.logger.Debug().Str("country", growth.Country).Int("years", len(growth.Observations)).Msg("GDP growth loaded")
		return growth, nil
	})
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("world bank API returned status %d", resp.StatusCode)
	}
	return body, nil
}

// ParseIndicator decodes the two-element [metadata, rows] indicator payload.
func ParseIndicator(body []byte) (*models.GDPGrowth, error) {
	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(envelope) == 0 {
		return nil, fmt.Errorf("empty response")
	}
	if len(envelope) < 2 {
		var msg apiMessage
		if err := json.Unmarshal(envelope[0], &msg); err == nil && len(msg.Message) > 0 {
			return nil, fmt.Errorf("world bank API error: %s", msg.Message[0].Value)
		}
		return nil, fmt.Errorf("no indicator data")
	}

	var rows []indicatorRow
	if err := json.Unmarshal(envelope[1], &rows); err != nil {
		return nil, fmt.Errorf("failed to decode indicator rows: %w", err)
	}

	growth := &models.GDPGrowth{}
	var sum float64
	for _, row := range rows {
		if growth.Country == "" {
			growth.Country = row.Country.Value
		}
		if row.Value == nil {
			continue
		}
		year, err := strconv.Atoi(row.Date)
		if err != nil {
			continue
		}
		growth.Observations = append(growth.Observations, models.GDPObservation{Year: year, GrowthPercent: *row.Value})
		sum += *row.Value
	}
	if len(growth.Observations) == 0 {
		return nil, fmt.Errorf("no GDP observations in response")
	}

	sort.Slice(growth.Observations, func(i, j int) bool {
		return growth.Observations[i].Year > growth.Observations[j].Year
	})
	growth.Average = sum / float64(len(growth.Observations)) / 100
	return growth, nil
}
