package tcmb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cpiPage = `<html><body>
<table><tr><td>Duyurular</td></tr><tr><td>x</td></tr></table>
<table class="tableEnflasyon">
  <tr><th>ÖNCEKİ DÖNEMLER</th><th>TÜFE (Yıllık % Değişim)</th><th>TÜFE (Aylık % Değişim)</th></tr>
  <tr><td>08-2025</td><td>32,95</td><td>2,04</td></tr>
  <tr><td>09-2025</td><td>33,29</td><td>3,23</td></tr>
  <tr><td>07-2025</td><td>33,52</td><td>2,06</td></tr>
  <tr><td>bad-row</td><td>1,00</td><td>1,00</td></tr>
  <tr><td>06-2025</td><td>-</td><td>1,37</td></tr>
  <tr><td>05-2025</td></tr>
</table>
</body></html>`

const ppiPage = `<html><body><table>
  <tr><td>Tarih</td><td>ÜFE Yıllık %</td><td>Yİ-ÜFE Yıllık %</td><td>ÜFE Aylık %</td><td>Yİ-ÜFE Aylık %</td></tr>
  <tr><td>ÜFE</td><td></td><td></td><td></td><td></td></tr>
  <tr><td>09-2025</td><td>26,00</td><td>26,59</td><td>2,10</td><td>2,52</td></tr>
</table></body></html>`

func TestParseInflationTable_CPI(t *testing.T) {
	points, err := ParseInflationTable(strings.NewReader(cpiPage))
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "2025-09", points[0].Date, "newest first")
	assert.Equal(t, 33.29, points[0].YearlyPercent)
	assert.Equal(t, 3.23, points[0].MonthlyPercent)
	assert.Equal(t, "2025-08", points[1].Date)
	assert.Equal(t, "2025-07", points[2].Date)
}

func TestParseInflationTable_PPIUsesDomesticColumns(t *testing.T) {
	points, err := ParseInflationTable(strings.NewReader(ppiPage))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 26.59, points[0].YearlyPercent)
	assert.Equal(t, 2.52, points[0].MonthlyPercent)
}

func TestParseInflationTable_NoTable(t *testing.T) {
	_, err := ParseInflationTable(strings.NewReader(`<html><table><tr><td>Kur</td></tr></table></html>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find inflation data table")
}

func TestParsePercent(t *testing.T) {
	cases := map[string]float64{
		"33,29":   33.29,
		"%44,38":  44.38,
		" -1,5 ":  -1.5,
		"2.04":    2.04,
		"75,45 %": 75.45,
	}
	for in, want := range cases {
		got, ok := ParsePercent(in)
		assert.True(t, ok, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}
	for _, in := range []string{"", "-", "yok"} {
		_, ok := ParsePercent(in)
		assert.False(t, ok, in)
	}
}

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

func TestClient_LatestInflationCached(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, seriesPaths[SeriesCPI], r.URL.Path)
		fmt.Fprint(w, cpiPage)
	}))
	defer srv.Close()

	clock := &stepClock{now: time.Date(2025, 10, 5, 9, 0, 0, 0, time.UTC)}
	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(100), WithCache(time.Hour, clock))
	ctx := context.Background()

	p, err := c.LatestInflation(ctx)
	require.NoError(t, err)
	assert.Equal(t, 33.29, p.YearlyPercent)

	all, err := c.GetInflation(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	two, err := c.GetInflation(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	clock.now = clock.now.Add(time.Hour)
	_, err = c.LatestInflation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))
	_, err := c.LatestInflation(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestClient_UnknownSeries(t *testing.T) {
	c := NewClient()
	_, err := c.GetSeries(context.Background(), Series("xyz"), 1)
	require.Error(t, err)
}
