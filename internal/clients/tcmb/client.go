// Package tcmb scrapes inflation statistics published by the Turkish central bank
package tcmb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
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
	DefaultBaseURL   = "https://www.tcmb.gov.tr"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2
)

// Series selects the price index page.
type Series string

const (
	SeriesCPI Series = "tufe" // consumer prices
	SeriesPPI Series = "ufe"  // domestic producer prices
)

var seriesPaths = map[Series]string{
	SeriesCPI: "/wps/wcm/connect/tr/tcmb+tr/main+menu/istatistikler/enflasyon+verileri",
	SeriesPPI: "/wps/wcm/connect/TR/TCMB+TR/Main+Menu/Istatistikler/Enflasyon+Verileri/Uretici+Fiyatlari",
}

var (
	monthPattern   = regexp.MustCompile(`(\d{1,2})-(\d{4})`)
	percentCleaner = regexp.MustCompile(`[^\d\-.]`)
	headerKeywords = []string{"tüfe", "üfe", "enflasyon", "yıllık", "aylık", "%"}
)

// Client implements interfaces.InflationProvider
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	cache      *common.Cache[[]models.InflationPoint]
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

// NewClient creates a new TCMB client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     common.NewSilentLogger(),
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		ttl:        common.FreshnessInflation,
		clock:      common.SystemClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = common.NewCache[[]models.InflationPoint](c.ttl, c.clock)
	return c
}

// GetSeries returns up to limit monthly points of the given index, newest first.
// A limit of zero returns the whole table.
func (c *Client) GetSeries(ctx context.Context, series Series, limit int) ([]models.InflationPoint, error) {
	path, ok := seriesPaths[series]
	if !ok {
		return nil, fmt.Errorf("unknown inflation series: %s", series)
	}

	points, err := c.cache.GetOrLoad(ctx, common.CacheKey("tcmb", map[string]string{"series": string(series)}), func(ctx context.Context) ([]models.InflationPoint, error) {
		body, err := c.fetch(ctx, path)
		if err != nil {
			return nil, err
		}
		defer body.Close()

		points, err := ParseInflationTable(body)
		if err != nil {
			return nil, err
		}
		c.logger.Info().Str("series", string(series)).Int("records", len(points)).Msg("TCMB inflation table parsed")
		return points, nil
	})
	if err != nil {
		return nil, err
	}

	if limit > 0 && limit < len(points) {
		points = points[:limit]
	}
	out := make([]models.InflationPoint, len(points))
	copy(out, points)
	return out, nil
}

// GetInflation returns consumer price inflation, newest first.
func (c *Client) GetInflation(ctx context.Context, limit int) ([]models.InflationPoint, error) {
	return c.GetSeries(ctx, SeriesCPI, limit)
}

// LatestInflation returns the most recent consumer price inflation point.
func (c *Client) LatestInflation(ctx context.Context) (*models.InflationPoint, error) {
	points, err := c.GetSeries(ctx, SeriesCPI, 1)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no inflation data available")
	}
	p := points[0]
	return &p, nil
}

func (c *Client) fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9,en-US;q=0.8")

	c.logger.Debug().Str("url", c.baseURL+path).Msg("TCMB request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("TCMB returned status %d for %s", resp.StatusCode, path)
	}
	return resp.Body, nil
}

// ParseInflationTable finds the first table whose header row mentions inflation
// and reads its month rows. CPI tables are [MM-YYYY, yearly, monthly]; producer
// tables have five columns where the domestic index sits in columns 2 and 4.
func ParseInflationTable(r io.Reader) ([]models.InflationPoint, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var points []models.InflationPoint
	found := false

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() == 0 {
			return true
		}
		header := strings.ToLower(cellTexts(rows.First()).joined())
		if !containsAny(header, headerKeywords) {
			return true
		}
		found = true

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := cellTexts(row)
			if len(cells) == 0 || cells[0] == "" || strings.Contains(cells[0], "ÜFE") {
				return
			}

			var dateStr, yearlyStr, monthlyStr string
			switch {
			case len(cells) >= 5:
				dateStr, yearlyStr, monthlyStr = cells[0], cells[2], cells[4]
			case len(cells) >= 3:
				dateStr, yearlyStr, monthlyStr = cells[0], cells[1], cells[2]
			default:
				return
			}

			month, ok := parseMonth(dateStr)
			if !ok {
				return
			}
			yearly, ok := ParsePercent(yearlyStr)
			if !ok {
				return
			}
			monthly, _ := ParsePercent(monthlyStr)

			points = append(points, models.InflationPoint{
				Date:           month.Format("2006-01"),
				Month:          month,
				YearlyPercent:  yearly,
				MonthlyPercent: monthly,
			})
		})
		return false
	})

	if !found {
		return nil, fmt.Errorf("could not find inflation data table")
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Month.After(points[j].Month)
	})
	return points, nil
}

// ParsePercent reads a Turkish formatted percentage such as "%33,29".
func ParsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = percentCleaner.ReplaceAllString(s, "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseMonth(s string) (time.Time, bool) {
	s = strings.NewReplacer(".", "", ",", "").Replace(strings.TrimSpace(s))
	m := monthPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
}

type texts []string

func (t texts) joined() string { return strings.Join(t, " ") }

func cellTexts(row *goquery.Selection) texts {
	var out texts
	row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		out = append(out, strings.TrimSpace(cell.Text()))
	})
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
