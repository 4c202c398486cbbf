package worldbank

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gdpFixture = `[
 {"page":1,"pages":1,"per_page":100,"total":4},
 [
  {"indicator":{"id":"NY.GDP.MKTP.KD.ZG"},"country":{"id":"TR","value":"Turkiye"},"date":"2024","value":3.2},
  {"indicator":{"id":"NY.GDP.MKTP.KD.ZG"},"country":{"id":"TR","value":"Turkiye"},"date":"2023","value":5.1},
  {"indicator":{"id":"NY.GDP.MKTP.KD.ZG"},"country":{"id":"TR","value":"Turkiye"},"date":"2022","value":null},
  {"indicator":{"id":"NY.GDP.MKTP.KD.ZG"},"country":{"id":"TR","value":"Turkiye"},"date":"2021","value":11.7}
 ]
]`

func TestParseIndicator(t *testing.T) {
	growth, err := ParseIndicator([]byte(gdpFixture))
	require.NoError(t, err)

	assert.Equal(t, "Turkiye", growth.Country)
	require.Len(t, growth.Observations, 3)
	assert.Equal(t, 2024, growth.Observations[0].Year)
	assert.Equal(t, 2021, growth.Observations[2].Year)
	assert.InDelta(t, (3.2+5.1+11.7)/3/100, growth.Average, 1e-9)
}

func TestParseIndicator_ErrorMessage(t *testing.T) {
	_, err := ParseIndicator([]byte(`[{"message":[{"id":"120","key":"Invalid value","value":"The provided parameter value is not valid"}]}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid")
}

func TestParseIndicator_AllNull(t *testing.T) {
	_, err := ParseIndicator([]byte(`[{"page":1},[{"country":{"value":"Turkiye"},"date":"2024","value":null}]]`))
	require.Error(t, err)
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func TestClient_GetGDPGrowth(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v2/country/tr/indicator/NY.GDP.MKTP.KD.ZG", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "2015:2024", r.URL.Query().Get("date"))
		fmt.Fprint(w, gdpFixture)
	}))
	defer srv.Close()

	clock := &fixedClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(100), WithCache(time.Hour, clock))

	growth, err := c.GetGDPGrowth(context.Background(), "TR", 10)
	require.NoError(t, err)
	assert.Len(t, growth.Observations, 3)

	_, err = c.GetGDPGrowth(context.Background(), "tr", 10)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second call served from cache")

	clock.now = clock.now.Add(2 * time.Hour)
	_, err = c.GetGDPGrowth(context.Background(), "TR", 10)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))
	_, err := c.GetGDPGrowth(context.Background(), "TR", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
