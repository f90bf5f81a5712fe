package budget

import apperrors "ctc-budget-checker/internal/common/errors"

// Result classifies a check.
type Result string

const (
	ResultWithinBudget Result = "Within budget"
	ResultAboveBudget  Result = "Above budget"
	ResultError        Result = "Error"
)

// Transport names used in logs and metric labels.
const (
	TransportHTTP  = "http"
	TransportZeebe = "zeebe"
)

// CheckRequest carries both values as received; they are parsed by Check.
type CheckRequest struct {
	ExpectedCTC string `json:"expected_ctc"`
	MaxBudget   string `json:"max_budget"`
}

// CheckResponse is the outcome of a check. Error is set iff Result is ResultError.
type CheckResponse struct {
	Result  Result `json:"result"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`

	// Code is the internal error code, kept off the wire.
	Code apperrors.ErrorCode `json:"-"`
}

// IsError reports whether the response carries an error.
func (r CheckResponse) IsError() bool {
	return r.Result == ResultError
}

// HealthResponse is the constant health payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// Limits bounds accepted values, inclusive on both ends.
type Limits struct {
	Min float64
	Max float64
}

// DefaultLimits accepts 0 to 200 LPA.
var DefaultLimits = Limits{Min: 0, Max: 200}
