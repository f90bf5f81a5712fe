// internal/workers/budget/check-ctc-budget/models.go
package checkctcbudget

import "ctc-budget-checker/internal/budget"

// Output is written back to the process instance as job variables.
type Output struct {
	BudgetResult  string `json:"budgetResult"`
	BudgetMessage string `json:"budgetMessage"`
	BudgetError   string `json:"budgetError,omitempty"`
}

func newOutput(resp budget.CheckResponse) *Output {
	return &Output{
		BudgetResult:  string(resp.Result),
		BudgetMessage: resp.Message,
		BudgetError:   resp.Error,
	}
}
