package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/bobmcallan/borsa/internal/common"
	"github.com/bobmcallan/borsa/internal/models"
)

// Line items requested per statement, as Yahoo timeseries keys without the period prefix.
var statementKeys = map[models.StatementKind][]string{
	models.StatementBalance: {
		"TotalAssets",
		"TotalEquityGrossMinorityInterest",
		"StockholdersEquity",
		"CommonStockEquity",
		"TotalDebt",
		"CurrentDebt",
		"CashAndCashEquivalents",
		"InvestedCapital",
		"WorkingCapital",
		"CurrentAssets",
		"CurrentLiabilities",
		"RetainedEarnings",
		"TotalLiabilitiesNetMinorityInterest",
		"Inventory",
		"Receivables",
		"AccountsReceivable",
		"AccountsPayable",
		"Payables",
		"OrdinarySharesNumber",
		"ShareIssued",
	},
	models.StatementIncome: {
		"TotalRevenue",
		"OperatingRevenue",
		"CostOfRevenue",
		"GrossProfit",
		"OperatingExpense",
		"OperatingIncome",
		"PretaxIncome",
		"TaxProvision",
		"NetIncome",
		"NetIncomeCommonStockholders",
		"EBIT",
		"EBITDA",
		"InterestExpense",
		"ReconciledDepreciation",
		"DilutedEPS",
	},
	models.StatementCashFlow: {
		"OperatingCashFlow",
		"FreeCashFlow",
		"CapitalExpenditure",
		"DepreciationAndAmortization",
		"ChangeInWorkingCapital",
	},
}

const periodPrefix = "quarterly"

type timeseriesResponse struct {
	Timeseries struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"timeseries"`
}

type timeseriesMeta struct {
	Symbol []string `json:"symbol"`
	Type   []string `json:"type"`
}

type timeseriesEntry struct {
	AsOfDate      string `json:"asOfDate"`
	PeriodType    string `json:"periodType"`
	CurrencyCode  string `json:"currencyCode"`
	ReportedValue struct {
		Raw *float64 `json:"raw"`
	} `json:"reportedValue"`
}

// GetStatement returns the quarterly statement of the given kind, most recent period first.
func (c *Client) GetStatement(ctx context.Context, symbol string, market models.Market, kind models.StatementKind) (*models.Statement, error) {
	keys, ok := statementKeys[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported statement kind: %s", kind)
	}

	ySymbol := Symbol(symbol, market)
	cacheKey := common.CacheKey("statement", map[string]string{
		"symbol": ySymbol,
		"kind":   string(kind),
		"period": periodPrefix,
	})

	return c.statements.GetOrLoad(ctx, cacheKey, func(ctx context.Context) (*models.Statement, error) {
		return c.fetchStatement(ctx, ySymbol, kind, keys)
	})
}

func (c *Client) fetchStatement(ctx context.Context, ySymbol string, kind models.StatementKind, keys []string) (*models.Statement, error) {
	types := make([]string, len(keys))
	for i, k := range keys {
		types[i] = periodPrefix + k
	}

	now := c.clock.Now()
	params := url.Values{}
	params.Set("symbol", ySymbol)
	params.Set("type", strings.Join(types, ","))
	params.Set("period1", strconv.FormatInt(now.Add(-c.lookback).Unix(), 10))
	params.Set("period2", strconv.FormatInt(now.Unix(), 10))

	var resp timeseriesResponse
	path := "/ws/fundamentals-timeseries/v1/finance/timeseries/" + url.PathEscape(ySymbol)
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if resp.Timeseries.Error != nil {
		return nil, fmt.Errorf("timeseries error for %s: %s", ySymbol, resp.Timeseries.Error.Description)
	}

	stmt, err := parseTimeseries(ySymbol, kind, resp.Timeseries.Result)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("symbol", ySymbol).
		Str("kind", string(kind)).
		Int("periods", len(stmt.Periods)).
		Int("items", len(stmt.Items)).
		Msg("Statement fetched")

	return stmt, nil
}

// parseTimeseries pivots per-item timeseries into a period-aligned statement.
func parseTimeseries(symbol string, kind models.StatementKind, results []map[string]json.RawMessage) (*models.Statement, error) {
	values := make(map[string]map[string]float64)
	dates := make(map[string]bool)
	currency := ""

	for _, result := range results {
		var meta timeseriesMeta
		if raw, ok := result["meta"]; ok {
			if err := json.Unmarshal(raw, &meta); err != nil {
				return nil, fmt.Errorf("failed to decode timeseries meta: %w", err)
			}
		}
		if len(meta.Type) == 0 {
			continue
		}
		typeKey := meta.Type[0]
		raw, ok := result[typeKey]
		if !ok {
			continue
		}

		var entries []*timeseriesEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", typeKey, err)
		}

		name := DisplayName(strings.TrimPrefix(typeKey, periodPrefix))
		for _, e := range entries {
			if e == nil || e.AsOfDate == "" || e.ReportedValue.Raw == nil {
				continue
			}
			if values[name] == nil {
				values[name] = make(map[string]float64)
			}
			values[name][e.AsOfDate] = *e.ReportedValue.Raw
			dates[e.AsOfDate] = true
			if currency == "" {
				currency = e.CurrencyCode
			}
		}
	}

	if len(dates) == 0 {
		return nil, fmt.Errorf("no %s data for %s", kind, symbol)
	}

	periods := make([]string, 0, len(dates))
	for d := range dates {
		periods = append(periods, d)
	}
	// ISO dates sort lexically
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))

	stmt := models.NewStatement(symbol, kind, periods)
	stmt.Currency = currency
	for name, byDate := range values {
		row := make([]float64, len(periods))
		for i, p := range periods {
			if v, ok := byDate[p]; ok {
				row[i] = v
			} else {
				row[i] = nan()
			}
		}
		stmt.Items[name] = row
	}

	return stmt, nil
}

// DisplayName converts a Yahoo CamelCase key into the spaced line-item name,
// keeping acronyms together: "TotalEquityGrossMinorityInterest" becomes
// "Total Equity Gross Minority Interest" and "NormalizedEBITDA" becomes "Normalized EBITDA".
func DisplayName(key string) string {
	runes := []rune(key)
	var sb strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
