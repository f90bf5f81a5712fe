// Package budget compares a candidate's expected CTC with a position's
// maximum budget. It is the single core shared by every transport.
package budget

import (
	"errors"
	"fmt"
	"strings"

	apperrors "ctc-budget-checker/internal/common/errors"
	"ctc-budget-checker/internal/common/logger"
)

// Checker is stateless: a single instance may serve any number of concurrent calls.
type Checker struct {
	limits Limits
	logger logger.Logger

	// parse is swapped in tests to exercise the unexpected-failure path.
	parse func(string) (float64, error)
}

// NewChecker creates a Checker. A zero Limits selects DefaultLimits.
func NewChecker(limits Limits, log logger.Logger) *Checker {
	if limits == (Limits{}) {
		limits = DefaultLimits
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Checker{
		limits: limits,
		logger: log.WithFields(map[string]interface{}{"component": "budget-checker"}),
		parse:  parseDecimal,
	}
}

// Limits returns the accepted value range.
func (c *Checker) Limits() Limits {
	return c.limits
}

// Check classifies req. It never panics and never returns a Go error:
// every failure is folded into a CheckResponse with Result ResultError.
func (c *Checker) Check(req CheckRequest) (resp CheckResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = c.unexpected(fmt.Errorf("%v", r))
		}
	}()

	expected, maxBudget, err := c.validate(req)
	if err != nil {
		return c.Fail(err)
	}

	if expected <= maxBudget {
		return CheckResponse{
			Result: ResultWithinBudget,
			Message: fmt.Sprintf("Expected CTC of %s LPA is within the maximum budget of %s LPA",
				FormatLPA(expected), FormatLPA(maxBudget)),
		}
	}
	return CheckResponse{
		Result: ResultAboveBudget,
		Message: fmt.Sprintf("Expected CTC of %s LPA is above the maximum budget of %s LPA",
			FormatLPA(expected), FormatLPA(maxBudget)),
	}
}

func (c *Checker) validate(req CheckRequest) (float64, float64, error) {
	expectedStr := strings.TrimSpace(req.ExpectedCTC)
	maxStr := strings.TrimSpace(req.MaxBudget)

	if expectedStr == "" || maxStr == "" {
		return 0, 0, apperrors.NewMissingParametersError(missingFields(expectedStr, maxStr))
	}

	expected, err := c.parse(expectedStr)
	if err != nil {
		return 0, 0, apperrors.NewInvalidNumberFormatError(fmt.Sprintf("expected_ctc=%q", expectedStr))
	}
	maxBudget, err := c.parse(maxStr)
	if err != nil {
		return 0, 0, apperrors.NewInvalidNumberFormatError(fmt.Sprintf("max_budget=%q", maxStr))
	}

	if !c.inRange(expected) || !c.inRange(maxBudget) {
		return 0, 0, apperrors.NewInvalidRangeError(c.limits.Min, c.limits.Max,
			fmt.Sprintf("expected_ctc=%s max_budget=%s", FormatLPA(expected), FormatLPA(maxBudget)))
	}

	return expected, maxBudget, nil
}

func (c *Checker) inRange(v float64) bool {
	return v >= c.limits.Min && v <= c.limits.Max
}

func missingFields(expected, maxBudget string) string {
	var missing []string
	if expected == "" {
		missing = append(missing, "expected_ctc")
	}
	if maxBudget == "" {
		missing = append(missing, "max_budget")
	}
	return "missing: " + strings.Join(missing, ", ")
}

// Fail converts err into an error response. Errors that are not
// StandardErrors are treated as unexpected failures and logged.
func (c *Checker) Fail(err error) CheckResponse {
	if err == nil {
		err = errors.New("check failed without a cause")
	}
	stdErr := apperrors.AsStandardError(err)
	if stdErr.Code == apperrors.ErrCodeServerError {
		c.logger.Error("unexpected error in budget check", map[string]interface{}{
			"error": stdErr.Details,
		})
	}
	return CheckResponse{
		Result:  ResultError,
		Message: stdErr.Message,
		Error:   stdErr.Label(),
		Code:    stdErr.Code,
	}
}

func (c *Checker) unexpected(err error) CheckResponse {
	return c.Fail(apperrors.NewServerError(err))
}

// Health reports liveness. It has no failure modes.
func (c *Checker) Health() HealthResponse {
	return HealthResponse{Status: "healthy"}
}
