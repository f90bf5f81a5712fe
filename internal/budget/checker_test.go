package budget

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	apperrors "ctc-budget-checker/internal/common/errors"
	"ctc-budget-checker/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	msgMissing = "Both expected_ctc and max_budget are required. Proceeding without budget check."
	msgFormat  = "expected_ctc and max_budget must be valid numbers. Proceeding without budget check."
	msgRange   = "CTC values must be between 0 and 200 LPA. Proceeding without budget check."
)

func newTestChecker(t *testing.T) *Checker {
	return NewChecker(DefaultLimits, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestChecker_Check_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		req      CheckRequest
		expected CheckResponse
	}{
		{
			name: "within budget",
			req:  CheckRequest{ExpectedCTC: "85", MaxBudget: "90"},
			expected: CheckResponse{
				Result:  ResultWithinBudget,
				Message: "Expected CTC of 85.0 LPA is within the maximum budget of 90.0 LPA",
			},
		},
		{
			name: "above budget",
			req:  CheckRequest{ExpectedCTC: "45", MaxBudget: "40"},
			expected: CheckResponse{
				Result:  ResultAboveBudget,
				Message: "Expected CTC of 45.0 LPA is above the maximum budget of 40.0 LPA",
			},
		},
		{
			name: "empty expected",
			req:  CheckRequest{ExpectedCTC: "", MaxBudget: "40"},
			expected: CheckResponse{
				Result:  ResultError,
				Message: msgMissing,
				Error:   "Missing parameters",
				Code:    apperrors.ErrCodeMissingParameters,
			},
		},
		{
			name: "non-numeric expected",
			req:  CheckRequest{ExpectedCTC: "abc", MaxBudget: "40"},
			expected: CheckResponse{
				Result:  ResultError,
				Message: msgFormat,
				Error:   "Invalid number format",
				Code:    apperrors.ErrCodeInvalidNumberFormat,
			},
		},
		{
			name: "expected above range",
			req:  CheckRequest{ExpectedCTC: "250", MaxBudget: "40"},
			expected: CheckResponse{
				Result:  ResultError,
				Message: msgRange,
				Error:   "Invalid range",
				Code:    apperrors.ErrCodeInvalidRange,
			},
		},
		{
			name: "fractional values",
			req:  CheckRequest{ExpectedCTC: "12.5", MaxBudget: "12.75"},
			expected: CheckResponse{
				Result:  ResultWithinBudget,
				Message: "Expected CTC of 12.5 LPA is within the maximum budget of 12.75 LPA",
			},
		},
		{
			name: "scientific notation",
			req:  CheckRequest{ExpectedCTC: "1e2", MaxBudget: "2E1"},
			expected: CheckResponse{
				Result:  ResultAboveBudget,
				Message: "Expected CTC of 100.0 LPA is above the maximum budget of 20.0 LPA",
			},
		},
		{
			name: "surrounding whitespace is trimmed",
			req:  CheckRequest{ExpectedCTC: "  85\t", MaxBudget: "\n90 "},
			expected: CheckResponse{
				Result:  ResultWithinBudget,
				Message: "Expected CTC of 85.0 LPA is within the maximum budget of 90.0 LPA",
			},
		},
	}

	checker := newTestChecker(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := checker.Check(tt.req)
			assert.Equal(t, tt.expected, resp)
			assert.Equal(t, tt.expected.Result == ResultError, resp.IsError())
		})
	}
}

func TestChecker_Check_Missing(t *testing.T) {
	checker := newTestChecker(t)

	for _, req := range []CheckRequest{
		{ExpectedCTC: "", MaxBudget: "40"},
		{ExpectedCTC: "40", MaxBudget: ""},
		{ExpectedCTC: "", MaxBudget: ""},
		{ExpectedCTC: "   ", MaxBudget: "40"},
		{ExpectedCTC: "40", MaxBudget: "\t\n"},
	} {
		resp := checker.Check(req)
		assert.Equal(t, ResultError, resp.Result, "%+v", req)
		assert.Equal(t, "Missing parameters", resp.Error, "%+v", req)
		assert.Equal(t, msgMissing, resp.Message, "%+v", req)
	}
}

func TestChecker_Check_InvalidNumberFormat(t *testing.T) {
	checker := newTestChecker(t)

	for _, bad := range []string{"abc", "85 LPA", "1,000", "0x10", "nan", "NaN", "--5", "1__0", "_10"} {
		for _, req := range []CheckRequest{
			{ExpectedCTC: bad, MaxBudget: "40"},
			{ExpectedCTC: "40", MaxBudget: bad},
		} {
			resp := checker.Check(req)
			assert.Equal(t, "Invalid number format", resp.Error, "%+v", req)
			assert.Equal(t, msgFormat, resp.Message, "%+v", req)
		}
	}
}

func TestChecker_Check_InvalidRange(t *testing.T) {
	checker := newTestChecker(t)

	for _, bad := range []string{"-1", "201", "200.0001", "-0.5", "1e400", "-1e400", "inf", "Infinity", "-inf", "1_000"} {
		for _, req := range []CheckRequest{
			{ExpectedCTC: bad, MaxBudget: "40"},
			{ExpectedCTC: "40", MaxBudget: bad},
		} {
			resp := checker.Check(req)
			assert.Equal(t, "Invalid range", resp.Error, "%+v", req)
			assert.Equal(t, msgRange, resp.Message, "%+v", req)
		}
	}
}

func TestChecker_Check_RangeBoundsInclusive(t *testing.T) {
	checker := newTestChecker(t)

	resp := checker.Check(CheckRequest{ExpectedCTC: "0", MaxBudget: "200"})
	assert.Equal(t, ResultWithinBudget, resp.Result)
	assert.Equal(t, "Expected CTC of 0.0 LPA is within the maximum budget of 200.0 LPA", resp.Message)

	resp = checker.Check(CheckRequest{ExpectedCTC: "200", MaxBudget: "0"})
	assert.Equal(t, ResultAboveBudget, resp.Result)
}

func TestChecker_Check_DigitUnderscores(t *testing.T) {
	checker := newTestChecker(t)

	resp := checker.Check(CheckRequest{ExpectedCTC: "1_0", MaxBudget: "4_0"})
	assert.Equal(t, ResultWithinBudget, resp.Result)
	assert.Equal(t, "Expected CTC of 10.0 LPA is within the maximum budget of 40.0 LPA", resp.Message)
}

func TestChecker_Check_FormatCheckedBeforeRange(t *testing.T) {
	checker := newTestChecker(t)

	resp := checker.Check(CheckRequest{ExpectedCTC: "500", MaxBudget: "abc"})
	assert.Equal(t, "Invalid number format", resp.Error)
}

func TestChecker_Check_CustomLimits(t *testing.T) {
	checker := NewChecker(Limits{Min: 10, Max: 50}, logger.NewTestLogger(t))

	resp := checker.Check(CheckRequest{ExpectedCTC: "60", MaxBudget: "40"})
	assert.Equal(t, "Invalid range", resp.Error)
	assert.Equal(t, "CTC values must be between 10 and 50 LPA. Proceeding without budget check.", resp.Message)

	resp = checker.Check(CheckRequest{ExpectedCTC: "20", MaxBudget: "40"})
	assert.Equal(t, ResultWithinBudget, resp.Result)
	assert.Equal(t, Limits{Min: 10, Max: 50}, checker.Limits())
}

func TestNewChecker_Defaults(t *testing.T) {
	checker := NewChecker(Limits{}, nil)
	assert.Equal(t, DefaultLimits, checker.Limits())

	resp := checker.Check(CheckRequest{ExpectedCTC: "85", MaxBudget: "90"})
	assert.Equal(t, ResultWithinBudget, resp.Result)
}

// ==========================
// Property Tests
// ==========================

func TestChecker_Check_Ordering(t *testing.T) {
	checker := newTestChecker(t)
	values := []float64{0, 0.5, 1, 9.99, 10, 45, 85, 90, 99.5, 150, 199.99, 200}

	for _, e := range values {
		for _, m := range values {
			req := CheckRequest{
				ExpectedCTC: fmt.Sprintf("%g", e),
				MaxBudget:   fmt.Sprintf("%g", m),
			}
			resp := checker.Check(req)
			if e <= m {
				assert.Equal(t, ResultWithinBudget, resp.Result, "%+v", req)
				assert.Contains(t, resp.Message, "is within the maximum budget")
			} else {
				assert.Equal(t, ResultAboveBudget, resp.Result, "%+v", req)
				assert.Contains(t, resp.Message, "is above the maximum budget")
			}
			assert.Empty(t, resp.Error)
		}
	}
}

func TestChecker_Check_Equality(t *testing.T) {
	checker := newTestChecker(t)

	for _, v := range []string{"0", "45", "90.5", "200"} {
		resp := checker.Check(CheckRequest{ExpectedCTC: v, MaxBudget: v})
		assert.Equal(t, ResultWithinBudget, resp.Result, v)
	}
}

func TestChecker_Check_Concurrent(t *testing.T) {
	checker := newTestChecker(t)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := float64(i % 200)
			m := float64((i * 7) % 200)
			resp := checker.Check(CheckRequest{
				ExpectedCTC: fmt.Sprintf("%g", e),
				MaxBudget:   fmt.Sprintf("%g", m),
			})
			if e <= m {
				assert.Equal(t, ResultWithinBudget, resp.Result)
			} else {
				assert.Equal(t, ResultAboveBudget, resp.Result)
			}
		}(i)
	}
	wg.Wait()
}

// ==========================
// Unexpected Failure Tests
// ==========================

func TestChecker_Check_RecoversPanic(t *testing.T) {
	checker := newTestChecker(t)
	checker.parse = func(string) (float64, error) { panic("boom") }

	resp := checker.Check(CheckRequest{ExpectedCTC: "85", MaxBudget: "90"})
	assert.Equal(t, ResultError, resp.Result)
	assert.Equal(t, "Server error", resp.Error)
	assert.Equal(t, "An unexpected error occurred: boom. Proceeding without budget check.", resp.Message)
	assert.Equal(t, apperrors.ErrCodeServerError, resp.Code)
}

func TestChecker_Fail(t *testing.T) {
	checker := newTestChecker(t)

	resp := checker.Fail(errors.New("decoder unavailable"))
	assert.Equal(t, "Server error", resp.Error)
	assert.Equal(t, "An unexpected error occurred: decoder unavailable. Proceeding without budget check.", resp.Message)

	resp = checker.Fail(apperrors.NewMissingParametersError("missing: max_budget"))
	assert.Equal(t, "Missing parameters", resp.Error)
	assert.Equal(t, msgMissing, resp.Message)

	resp = checker.Fail(fmt.Errorf("wrapped: %w", apperrors.NewInvalidNumberFormatError("")))
	assert.Equal(t, "Invalid number format", resp.Error)

	resp = checker.Fail(nil)
	require.True(t, resp.IsError())
	assert.Equal(t, "Server error", resp.Error)
}

func TestChecker_Health(t *testing.T) {
	assert.Equal(t, HealthResponse{Status: "healthy"}, newTestChecker(t).Health())
}
