package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/borsa/internal/models"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// WriteCalcError maps a calculation failure to its HTTP status, using the
// error kind as the response code.
func WriteCalcError(w http.ResponseWriter, err *models.CalcError) {
	WriteErrorWithCode(w, calcErrorStatus(err.Kind), err.Message, string(err.Kind))
}

func calcErrorStatus(kind models.ErrorKind) int {
	switch kind {
	case models.ErrInvalidInput:
		return http.StatusBadRequest
	case models.ErrUpstreamFetch:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

// asCalcError unwraps a CalcError from a service error.
func asCalcError(err error) (*models.CalcError, bool) {
	var calcErr *models.CalcError
	if errors.As(err, &calcErr) {
		return calcErr, true
	}
	return nil, false
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// PathParam extracts a path parameter from the URL path.
// For a pattern like /api/buffett/{symbol}/chart, calling PathParam(r, "/api/buffett/", "/chart")
// extracts the {symbol} part.
func PathParam(r *http.Request, prefix, suffix string) string {
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := path[len(prefix):]
	if suffix != "" {
		idx := strings.Index(rest, suffix)
		if idx < 0 {
			return rest
		}
		return rest[:idx]
	}
	// No suffix, return up to the next /
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}

// queryMarket reads the market query parameter, writing a 400 when it is unknown.
func queryMarket(w http.ResponseWriter, r *http.Request) (models.Market, bool) {
	market, ok := models.ParseMarket(r.URL.Query().Get("market"))
	if !ok {
		WriteError(w, http.StatusBadRequest, "market must be 'bist' or 'us'")
		return "", false
	}
	return market, true
}

// queryOverrides reads optional DCF parameter overrides from the query string.
func queryOverrides(r *http.Request) (models.DCFOverrides, error) {
	q := r.URL.Query()
	var o models.DCFOverrides

	floats := []struct {
		key string
		dst **float64
	}{
		{"nominal_rate", &o.NominalRate},
		{"inflation", &o.Inflation},
		{"growth", &o.Growth},
		{"terminal_growth", &o.TerminalGrowth},
		{"risk_premium", &o.RiskPremium},
	}
	for _, f := range floats {
		raw := q.Get(f.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return o, errors.New(f.key + " must be a number")
		}
		*f.dst = &v
	}

	if raw := q.Get("forecast_years"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return o, errors.New("forecast_years must be an integer")
		}
		o.ForecastYears = &n
	}
	return o, nil
}
