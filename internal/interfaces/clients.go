// Package interfaces defines service contracts for Borsa
package interfaces

import (
	"context"

	"github.com/bobmcallan/borsa/internal/models"
)

// StatementProvider fetches financial statements and quote snapshots
type StatementProvider interface {
	// GetStatement returns quarterly statement data, most recent period first
	GetStatement(ctx context.Context, symbol string, market models.Market, kind models.StatementKind) (*models.Statement, error)

	// GetQuickInfo returns market cap, prices, growth rates and multiples
	GetQuickInfo(ctx context.Context, symbol string, market models.Market) (*models.QuickInfo, error)
}

// InflationProvider fetches consumer price inflation (TÜFE)
type InflationProvider interface {
	// GetInflation returns up to limit monthly points, newest first
	GetInflation(ctx context.Context, limit int) ([]models.InflationPoint, error)

	// LatestInflation returns the most recent monthly point
	LatestInflation(ctx context.Context) (*models.InflationPoint, error)
}

// BondYieldProvider fetches government bond yields
type BondYieldProvider interface {
	GetBondYields(ctx context.Context) ([]models.BondYield, error)

	// Get10YYield returns the 10-year yield as a decimal
	Get10YYield(ctx context.Context) (float64, error)
}

// GDPProvider fetches real GDP growth history
type GDPProvider interface {
	GetGDPGrowth(ctx context.Context, country string, years int) (*models.GDPGrowth, error)
}
