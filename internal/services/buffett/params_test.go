package buffett

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/borsa/internal/models"
)

func TestResolveParameters_Live(t *testing.T) {
	f := cashGenerator()
	svc, gdp := liveService(f)

	p := svc.ResolveParameters(context.Background(), f.Quick, models.DCFOverrides{})

	assert.Equal(t, 0.30, p.NominalRate.Value)
	assert.Equal(t, models.OriginLive, p.NominalRate.Origin)
	assert.Equal(t, sourceDoviz, p.NominalRate.Source)

	assert.Equal(t, 0.38, p.Inflation.Value)
	assert.Equal(t, models.OriginLive, p.Inflation.Origin)
	assert.Equal(t, "TCMB TÜFE (canlı - 09-2025)", p.Inflation.Source)

	// Analyst 40% beats 38% inflation
	assert.InDelta(t, 1.40/1.38-1, p.Growth.Value, 1e-12)
	assert.Equal(t, models.OriginDerived, p.Growth.Origin)
	assert.Equal(t, "Yahoo Finance (analyst 40.0% > enflasyon)", p.Growth.Source)

	// 4.5% GDP average capped at 3%
	assert.Equal(t, 0.03, p.TerminalGrowth.Value)
	assert.Equal(t, models.OriginLive, p.TerminalGrowth.Origin)
	assert.Equal(t, "World Bank GDP (10 yıl ort, max 3%)", p.TerminalGrowth.Source)

	assert.Equal(t, 0.10, p.RiskPremium.Value)
	assert.Equal(t, models.OriginDefault, p.RiskPremium.Origin)
	assert.Equal(t, 5, p.ForecastYears)
	assert.InDelta(t, 0.0420, p.RealDiscountRate, 0.0001)

	assert.Equal(t, 1, gdp.calls, "growth and terminal growth share one GDP fetch")
	assert.Equal(t, "TR", gdp.country)
	assert.Equal(t, 10, gdp.years)
}

func TestResolveParameters_NoProviders(t *testing.T) {
	f := cashGenerator()
	f.Quick.EarningsGrowth = nil
	svc := offlineService(f)

	p := svc.ResolveParameters(context.Background(), f.Quick, models.DCFOverrides{})

	for name, param := range map[string]models.DCFParameter{
		"nominal":   p.NominalRate,
		"inflation": p.Inflation,
		"growth":    p.Growth,
		"terminal":  p.TerminalGrowth,
	} {
		assert.Equal(t, models.OriginFallback, param.Origin, name)
	}
	assert.Equal(t, 0.30, p.NominalRate.Value)
	assert.Equal(t, "Default 30% (provider yok)", p.NominalRate.Source)
	assert.Equal(t, 0.38, p.Inflation.Value)
	assert.Equal(t, 0.03, p.Growth.Value)
	assert.Equal(t, "Default 3% (veri yok)", p.Growth.Source)
	assert.Equal(t, 0.02, p.TerminalGrowth.Value)
	assert.Equal(t, "Default 2% (provider yok)", p.TerminalGrowth.Source)
}

func TestResolveParameters_UpstreamErrors(t *testing.T) {
	f := cashGenerator()
	f.Quick.EarningsGrowth = nil
	svc := failingService(f)

	p := svc.ResolveParameters(context.Background(), f.Quick, models.DCFOverrides{})

	assert.Equal(t, "Default 30% (Doviz.com hatası)", p.NominalRate.Source)
	assert.Equal(t, "Default 38% (TCMB hatası)", p.Inflation.Source)
	assert.Equal(t, "Default 2% (World Bank hatası)", p.TerminalGrowth.Source)
	assert.Equal(t, "upstream down", p.NominalRate.Note)
	assert.Equal(t, "upstream down", p.Inflation.Note)
	assert.Equal(t, "upstream down", p.Growth.Note)
}

func TestResolveParameters_HybridGrowth(t *testing.T) {
	tests := []struct {
		name       string
		analyst    *float64
		gdp        float64
		wantValue  float64
		wantOrigin models.ParamOrigin
		wantSource string
		wantNote   string
	}{
		{
			name:       "analyst below inflation falls back to GDP",
			analyst:    ptr(0.20),
			gdp:        0.025,
			wantValue:  0.025,
			wantOrigin: models.OriginLive,
			wantSource: sourceGDP,
			wantNote:   "analyst 20.0% < enflasyon",
		},
		{
			name:       "GDP above cap is held at 3%",
			analyst:    nil,
			gdp:        0.055,
			wantValue:  0.03,
			wantOrigin: models.OriginDerived,
			wantSource: sourceGDPCapped,
		},
		{
			name:       "zero GDP average uses default",
			analyst:    nil,
			gdp:        0,
			wantValue:  0.03,
			wantOrigin: models.OriginFallback,
			wantSource: "Default 3% (veri yok)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := cashGenerator()
			f.Quick.EarningsGrowth = tt.analyst
			svc, gdp := liveService(f)
			gdp.average = tt.gdp

			p := svc.ResolveParameters(context.Background(), f.Quick, models.DCFOverrides{})
			assert.InDelta(t, tt.wantValue, p.Growth.Value, 1e-12)
			assert.Equal(t, tt.wantOrigin, p.Growth.Origin)
			assert.Equal(t, tt.wantSource, p.Growth.Source)
			assert.Equal(t, tt.wantNote, p.Growth.Note)
		})
	}
}

func TestResolveParameters_Overrides(t *testing.T) {
	f := cashGenerator()
	svc, gdp := liveService(f)
	years := 8

	p := svc.ResolveParameters(context.Background(), f.Quick, models.DCFOverrides{
		NominalRate:    ptr(0.25),
		Inflation:      ptr(0.20),
		Growth:         ptr(0.04),
		TerminalGrowth: ptr(0.01),
		RiskPremium:    ptr(0.08),
		ForecastYears:  &years,
	})

	for name, param := range map[string]models.DCFParameter{
		"nominal":   p.NominalRate,
		"inflation": p.Inflation,
		"growth":    p.Growth,
		"terminal":  p.TerminalGrowth,
		"premium":   p.RiskPremium,
	} {
		assert.Equal(t, models.OriginUser, param.Origin, name)
		assert.Equal(t, sourceUser, param.Source, name)
	}
	assert.Equal(t, 0.25, p.NominalRate.Value)
	assert.Equal(t, 0.01, p.TerminalGrowth.Value)
	assert.Equal(t, 8, p.ForecastYears)
	assert.InDelta(t, 1.25/1.20-1+0.08, p.RealDiscountRate, 1e-12)
	assert.Zero(t, gdp.calls, "no GDP fetch when both growth rates are pinned")
}

func TestResolveParameters_PartialOverride(t *testing.T) {
	f := cashGenerator()
	svc, _ := liveService(f)

	p := svc.ResolveParameters(context.Background(), f.Quick, models.DCFOverrides{Inflation: ptr(0.50)})
	require.Equal(t, models.OriginUser, p.Inflation.Origin)
	assert.Equal(t, models.OriginLive, p.NominalRate.Origin)

	// 40% analyst growth no longer beats the 50% override
	assert.Equal(t, models.OriginDerived, p.Growth.Origin)
	assert.Equal(t, sourceGDPCapped, p.Growth.Source)
}

func TestSetGDPWindow(t *testing.T) {
	f := cashGenerator()
	svc, gdp := liveService(f)
	svc.SetGDPWindow("US", 5)

	svc.ResolveParameters(context.Background(), f.Quick, models.DCFOverrides{})
	assert.Equal(t, "US", gdp.country)
	assert.Equal(t, 5, gdp.years)

	svc.SetGDPWindow("", 0)
	svc.ResolveParameters(context.Background(), f.Quick, models.DCFOverrides{})
	assert.Equal(t, "US", gdp.country, "empty values keep the current window")
}
