// internal/workers/budget/check-ctc-budget/handler.go
package checkctcbudget

import (
	"context"
	"time"

	"ctc-budget-checker/internal/budget"
	"ctc-budget-checker/internal/common/camunda"
	apperrors "ctc-budget-checker/internal/common/errors"
	"ctc-budget-checker/internal/common/logger"
	"ctc-budget-checker/internal/common/metrics"
	"ctc-budget-checker/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "check-ctc-budget"
)

// Handler answers budget checks raised by BPMN service tasks. Like the HTTP
// endpoint it never fails a job: check errors are returned as variables.
type Handler struct {
	config  *Config
	checker *budget.Checker
	decoder *budget.PayloadDecoder
	obs     *observability.Observability
	logger  logger.Logger
}

func NewHandler(
	config *Config,
	checker *budget.Checker,
	decoder *budget.PayloadDecoder,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	return &Handler{
		config:  config,
		checker: checker,
		decoder: decoder,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	vars, err := job.GetVariablesAsMap()
	if err != nil {
		h.logger.Warn("job variables are not a JSON object", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		vars = nil
	}

	output := h.Execute(ctx, vars)
	h.completeJob(ctx, client, job, output)
}

// Execute runs the check on job variables. Only expected_ctc and
// max_budget are read; other variables are ignored.
func (h *Handler) Execute(ctx context.Context, vars map[string]interface{}) *Output {
	start := time.Now()
	ctx, span := h.obs.StartSpan(ctx, "budget.check", attribute.String("transport", budget.TransportZeebe))
	defer span.End()

	var resp budget.CheckResponse
	req, stdErr := h.decoder.DecodeMap(vars)
	if stdErr != nil {
		resp = h.checker.Fail(stdErr)
	} else {
		resp = h.checker.Check(req)
	}

	span.SetAttributes(attribute.String("budget.result", string(resp.Result)))
	h.obs.RecordCheck(ctx, budget.TransportZeebe, string(resp.Result), string(resp.Code), time.Since(start))

	h.logger.Info("budget check answered", map[string]interface{}{
		"result":    string(resp.Result),
		"errorCode": string(resp.Code),
	})

	return newOutput(resp)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	err := camunda.WithRetry(ctx, h.config.Retry, "complete job", func(ctx context.Context) error {
		cmd, err := client.NewCompleteJobCommand().
			JobKey(job.Key).
			VariablesFromObject(output)
		if err != nil {
			return err
		}
		_, err = cmd.Send(ctx)
		return err
	})
	if err != nil {
		metrics.JobsCompletionFailed.WithLabelValues(job.Type).Inc()
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  apperrors.NewJobCompletionFailedError(job.Key, err),
		})
	}
}
