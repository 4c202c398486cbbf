package models

import "time"

// InflationPoint is one month of CPI data, percentages as published.
type InflationPoint struct {
	Date           string    `json:"date"`
	Month          time.Time `json:"month"`
	YearlyPercent  float64   `json:"yearly_percent"`
	MonthlyPercent float64   `json:"monthly_percent"`
}

// BondYield is one government bond row. Rate is a decimal.
type BondYield struct {
	Name     string  `json:"name"`
	Maturity string  `json:"maturity"`
	Rate     float64 `json:"rate"`
	Change   float64 `json:"change"`
}

// GDPObservation is one year of real GDP growth, in percent.
type GDPObservation struct {
	Year          int     `json:"year"`
	GrowthPercent float64 `json:"growth_percent"`
}

// GDPGrowth summarises a window of GDP growth observations.
type GDPGrowth struct {
	Country      string           `json:"country"`
	Observations []GDPObservation `json:"observations"`
	// Decimal average of the non-null observations.
	Average float64 `json:"average"`
}
