package common

import "time"

// Default cache TTLs per upstream data set
const (
	FreshnessStatements = 6 * time.Hour
	FreshnessQuickInfo  = 15 * time.Minute
	FreshnessInflation  = 1 * time.Hour // TCMB publishes monthly
	FreshnessBondYield  = 15 * time.Minute
	FreshnessGDP        = 24 * time.Hour
)
