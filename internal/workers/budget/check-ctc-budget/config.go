// internal/workers/budget/check-ctc-budget/config.go
package checkctcbudget

import (
	"time"

	"ctc-budget-checker/internal/common/camunda"
	"ctc-budget-checker/internal/common/config"
)

type Config struct {
	// Timeout bounds one job, including completion retries.
	Timeout time.Duration
	Retry   camunda.RetryConfig
}

func LoadConfig(cfg config.CamundaConfig) *Config {
	timeout := config.GetDuration(cfg.RequestTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{
		Timeout: timeout,
		Retry:   camunda.DefaultRetryConfig,
	}
}
