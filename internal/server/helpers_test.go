package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathParam(t *testing.T) {
	tests := []struct {
		path, prefix, suffix, want string
	}{
		{"/api/ratios/THYAO", "/api/ratios/", "", "THYAO"},
		{"/api/ratios/THYAO/extra", "/api/ratios/", "", "THYAO"},
		{"/api/buffett/ASELS/chart", "/api/buffett/", "/chart", "ASELS"},
		{"/api/buffett/ASELS", "/api/buffett/", "/chart", "ASELS"},
		{"/api/other/THYAO", "/api/ratios/", "", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		assert.Equal(t, tt.want, PathParam(req, tt.prefix, tt.suffix), tt.path)
	}
}

func TestQueryOverrides(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?nominal_rate=0.28&inflation=0.33&risk_premium=0.08", nil)
	o, err := queryOverrides(req)
	require.NoError(t, err)

	require.NotNil(t, o.NominalRate)
	assert.Equal(t, 0.28, *o.NominalRate)
	require.NotNil(t, o.Inflation)
	assert.Equal(t, 0.33, *o.Inflation)
	require.NotNil(t, o.RiskPremium)
	assert.Equal(t, 0.08, *o.RiskPremium)
	assert.Nil(t, o.Growth)
	assert.Nil(t, o.TerminalGrowth)
	assert.Nil(t, o.ForecastYears)
}

func TestQueryOverrides_Invalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?forecast_years=five", nil)
	_, err := queryOverrides(req)
	assert.EqualError(t, err, "forecast_years must be an integer")
}

func TestRequireMethod(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/health", nil)

	assert.False(t, RequireMethod(rr, req, http.MethodGet))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET", rr.Header().Get("Allow"))
}
