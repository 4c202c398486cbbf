package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_OkAndFail(t *testing.T) {
	ok := Ok(&ROEResult{ROEPercent: 18.2})
	assert.True(t, ok.IsOk())
	v, err := ok.Unwrap()
	assert.Nil(t, err)
	assert.Equal(t, 18.2, v.ROEPercent)

	failed := Failf[*ROEResult](ErrMissingField, "Net Income not found in financial statements")
	assert.False(t, failed.IsOk())
	assert.Nil(t, failed.Value)
	assert.Equal(t, ErrMissingField, failed.Err.Kind)
	assert.Equal(t, "missing_field: Net Income not found in financial statements", failed.Err.Error())
}

func TestResult_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Ok(&FCFMarginResult{FCFMarginPercent: 7.5}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","value":{"fcf_margin_percent":7.5,"free_cash_flow":0,"revenue":0,"revenue_source":"","assessment":"","notes":""}}`, string(data))

	data, err = json.Marshal(Fail[*FCFMarginResult](NewCalcError(ErrInvalidInput, "revenue is zero")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","error":{"kind":"invalid_input","message":"revenue is zero"}}`, string(data))
}

func TestParseRatioSet(t *testing.T) {
	got, ok := ParseRatioSet("")
	assert.True(t, ok)
	assert.Equal(t, RatioSetValuation, got)

	got, ok = ParseRatioSet("Core_Health")
	assert.True(t, ok)
	assert.Equal(t, RatioSetCoreHealth, got)

	_, ok = ParseRatioSet("momentum")
	assert.False(t, ok)

	assert.True(t, RatioSetComprehensive.Includes(RatioSetBuffett))
	assert.True(t, RatioSetAdvanced.Includes(RatioSetAdvanced))
	assert.False(t, RatioSetAdvanced.Includes(RatioSetBuffett))
}
