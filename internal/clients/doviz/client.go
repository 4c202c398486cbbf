// Package doviz scrapes Turkish government bond yields from doviz.com
package doviz

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
)

const (
	DefaultBaseURL   = "https://www.doviz.com"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 2

	bondPath = "/tahvil"
)

// Client implements interfaces.BondYieldProvider
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	cache      *common.Cache[[]models.BondYield]
	ttl        time.Duration
	clock      common.Clock
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the site base URL
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

// NewClient creates a new doviz.com bond client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     common.NewSilentLogger(),
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		ttl:        common.FreshnessBondYield,
		clock:      common.SystemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = common.NewCache[[]models.BondYield](c.ttl, c.clock)
	return c
}

// GetBondYields returns every bond row on the yields page.
func (c *Client) GetBondYields(ctx context.Context) ([]models.BondYield, error) {
	return c.cache.GetOrLoad(ctx, common.CacheKey("doviz", map[string]string{"page": "tahvil"}), func(ctx context.Context) ([]models.BondYield, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+bondPath, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("doviz.com returned status %d", resp.StatusCode)
		}

		bonds, err := ParseBondTable(resp.Body)
		if err != nil {
			return nil, err
		}
		c.logger.Debug().Int("bonds", len(bonds)).Msg("Bond yields parsed")
		return bonds, nil
	})
}

// Get10YYield returns the 10-year government bond yield as a decimal.
func (c *Client) Get10YYield(ctx context.Context) (float64, error) {
	bonds, err := c.GetBondYields(ctx)
	if err != nil {
		return 0, err
	}
	for _, b := range bonds {
		if b.Maturity == "10Y" && b.Rate > 0 {
			return b.Rate, nil
		}
	}
	return 0, fmt.Errorf("10 year bond yield not found")
}

// ParseBondTable reads table#commodities. Rates are published as percentages
// with decimal commas and returned as decimals.
func ParseBondTable(r io.Reader) ([]models.BondYield, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find("table#commodities")
	if table.Length() == 0 {
		return nil, fmt.Errorf("bond table not found")
	}
	rows := table.Find("tbody tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("bond rows not found")
	}

	var bonds []models.BondYield
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		name := strings.TrimSpace(cells.Eq(0).Find("a.name").Text())
		if name == "" {
			return
		}
		rate, ok := parseTurkishFloat(cells.Eq(1).Text())
		if !ok {
			return
		}
		change, _ := parseTurkishFloat(cells.Eq(2).Text())

		bonds = append(bonds, models.BondYield{
			Name:     name,
			Maturity: maturityOf(name),
			Rate:     rate / 100,
			Change:   change,
		})
	})
	return bonds, nil
}

func maturityOf(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "10 yıllık"):
		return "10Y"
	case strings.Contains(lower, "5 yıllık"):
		return "5Y"
	case strings.Contains(lower, "2 yıllık"):
		return "2Y"
	}
	return ""
}

func parseTurkishFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
