// Package ratios computes financial statement ratios and their composite reports
package ratios

import (
	"github.com/bobmcallan/borsa/internal/models"
)

// Statement line items
const (
	FieldNetIncome           = "Net Income"
	FieldTotalEquityGross    = "Total Equity Gross Minority Interest"
	FieldStockholdersEquity  = "Stockholders Equity"
	FieldTotalEquity         = "Total Equity"
	FieldOperatingIncome     = "Operating Income"
	FieldOperatingRevenue    = "Operating Revenue"
	FieldOperatingExpense    = "Operating Expense"
	FieldPretaxIncome        = "Pretax Income"
	FieldTaxProvision        = "Tax Provision"
	FieldInvestedCapital     = "Invested Capital"
	FieldTotalDebt           = "Total Debt"
	FieldCurrentDebt         = "Current Debt"
	FieldCash                = "Cash And Cash Equivalents"
	FieldTotalAssets         = "Total Assets"
	FieldInterestExpense     = "Interest Expense"
	FieldFreeCashFlow        = "Free Cash Flow"
	FieldTotalRevenue        = "Total Revenue"
	FieldOperatingCashFlow   = "Operating Cash Flow"
	FieldChangeInWC          = "Change In Working Capital"
	FieldWorkingCapital      = "Working Capital"
	FieldCurrentAssets       = "Current Assets"
	FieldCurrentLiabilities  = "Current Liabilities"
	FieldRetainedEarnings    = "Retained Earnings"
	FieldTotalLiabilitiesNet = "Total Liabilities Net Minority Interest"
	FieldTotalLiabilities    = "Total Liabilities"
	FieldEBIT                = "EBIT"
	FieldInventory           = "Inventory"
	FieldReceivables         = "Receivables"
	FieldPayables            = "Payables"
	FieldCostOfRevenue       = "Cost Of Revenue"
	FieldDepreciation        = "Reconciled Depreciation"
	FieldCapitalExpenditure  = "Capital Expenditure"
)

// Latest returns the most recent period value of a line item.
// Absent rows, empty tables and non-finite cells all report ok=false.
func Latest(st *models.Statement, name string) (float64, bool) {
	return st.Value(name, 0)
}

// LatestOr returns the most recent value or def when absent.
func LatestOr(st *models.Statement, name string, def float64) float64 {
	if v, ok := Latest(st, name); ok {
		return v
	}
	return def
}

// Candidate is one step of a fallback chain.
type Candidate struct {
	Label string
	eval  func(st *models.Statement) (float64, bool)
}

// Field accepts the line item whenever it is present.
func Field(name string) Candidate {
	return Candidate{Label: name, eval: func(st *models.Statement) (float64, bool) {
		return Latest(st, name)
	}}
}

// NonZeroField accepts the line item only when it is present and non-zero.
func NonZeroField(name string) Candidate {
	return Candidate{Label: name, eval: func(st *models.Statement) (float64, bool) {
		v, ok := Latest(st, name)
		return v, ok && v != 0
	}}
}

// PositiveField accepts the line item only when it is strictly positive.
func PositiveField(name string) Candidate {
	return Candidate{Label: name, eval: func(st *models.Statement) (float64, bool) {
		v, ok := Latest(st, name)
		return v, ok && v > 0
	}}
}

// Difference derives a - b. With requireNonZero both operands must also be non-zero.
func Difference(a, b string, requireNonZero bool) Candidate {
	return Derived(a+" - "+b, func(st *models.Statement) (float64, bool) {
		x, okA := Latest(st, a)
		y, okB := Latest(st, b)
		if !okA || !okB {
			return 0, false
		}
		if requireNonZero && (x == 0 || y == 0) {
			return 0, false
		}
		return x - y, true
	})
}

// Derived wraps an arbitrary computation as a candidate.
func Derived(label string, fn func(st *models.Statement) (float64, bool)) Candidate {
	return Candidate{Label: label, eval: fn}
}

// Resolve evaluates candidates in order and returns the first value found
// along with the label of the candidate that supplied it.
func Resolve(st *models.Statement, candidates ...Candidate) (float64, string, bool) {
	if st == nil {
		return 0, "", false
	}
	for _, c := range candidates {
		if v, ok := c.eval(st); ok {
			return v, c.Label, true
		}
	}
	return 0, "", false
}

// ResolveOr is Resolve with a default when no candidate matches.
func ResolveOr(st *models.Statement, def float64, candidates ...Candidate) (float64, string) {
	if v, src, ok := Resolve(st, candidates...); ok {
		return v, src
	}
	return def, "default"
}

// Fallback chains shared by the calculators
var (
	equityChain = []Candidate{
		Field(FieldTotalEquityGross),
		Field(FieldStockholdersEquity),
		Field(FieldTotalEquity),
	}

	operatingIncomeChain = []Candidate{
		Field(FieldOperatingIncome),
		Difference(FieldOperatingRevenue, FieldOperatingExpense, true),
		NonZeroField(FieldPretaxIncome),
	}

	revenueChain = []Candidate{
		Field(FieldTotalRevenue),
		Field(FieldOperatingRevenue),
	}

	liabilitiesChain = []Candidate{
		Field(FieldTotalLiabilitiesNet),
		Field(FieldTotalLiabilities),
	}

	ebitChain = []Candidate{
		Field(FieldEBIT),
		Field(FieldOperatingIncome),
	}

	workingCapitalChain = []Candidate{
		Field(FieldWorkingCapital),
		Difference(FieldCurrentAssets, FieldCurrentLiabilities, false),
	}

	// Comprehensive analysis treats zero as missing
	nonZeroRevenueChain = []Candidate{
		NonZeroField(FieldTotalRevenue),
		NonZeroField(FieldOperatingRevenue),
	}
	nonZeroEBITChain = []Candidate{
		NonZeroField(FieldEBIT),
		NonZeroField(FieldOperatingIncome),
	}
	nonZeroEquityChain = []Candidate{
		NonZeroField(FieldTotalEquityGross),
		NonZeroField(FieldStockholdersEquity),
	}
)
