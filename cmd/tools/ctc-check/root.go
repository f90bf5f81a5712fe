// cmd/tools/ctc-check/root.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ctc-budget-checker/internal/budget"
	apihttp "ctc-budget-checker/internal/common/http"
	"ctc-budget-checker/internal/common/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "ctc-check"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CTC")
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   app,
		Short: "ctc-check compares an expected CTC with a maximum budget, locally or against a running server",
		Example: `  ctc-check --expected 85 --budget 90
  ctc-check --expected 45 --budget 40 --server http://localhost:8000 --json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := budget.CheckRequest{
				ExpectedCTC: v.GetString("expected"),
				MaxBudget:   v.GetString("budget"),
			}

			resp, err := runCheck(cmd.Context(), v, req)
			if err != nil {
				return err
			}
			return printResponse(cmd, resp, v.GetBool("json"))
		},
	}

	flags := cmd.Flags()
	flags.String("expected", "", "candidate's expected CTC in LPA")
	flags.String("budget", "", "maximum budget for the position in LPA")
	flags.String("server", "", "base URL of a budget checker server (env CTC_SERVER); checks locally when empty")
	flags.Duration("timeout", 5*time.Second, "request timeout when using --server")
	flags.Float64("min", budget.DefaultLimits.Min, "lowest accepted value in LPA for local checks")
	flags.Float64("max", budget.DefaultLimits.Max, "highest accepted value in LPA for local checks")
	flags.BoolP("json", "j", false, "print the response as JSON")
	flags.BoolP("debug", "d", false, "verbose/debug output")

	for _, name := range []string{"expected", "budget", "server", "timeout", "min", "max", "json", "debug"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	cmd.AddCommand(newVersionCmd(), newRegistryCmd())
	return cmd
}

func runCheck(ctx context.Context, v *viper.Viper, req budget.CheckRequest) (budget.CheckResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if server := v.GetString("server"); server != "" {
		resp, err := apihttp.NewClient(server, v.GetDuration("timeout")).CheckCTC(ctx, req)
		if err != nil {
			return budget.CheckResponse{}, fmt.Errorf("remote check: %w", err)
		}
		return *resp, nil
	}

	limits, err := localLimits(v)
	if err != nil {
		return budget.CheckResponse{}, err
	}

	log := logger.NewNoOpLogger()
	if v.GetBool("debug") {
		zapLog, err := logger.New("debug", "console", "stderr")
		if err != nil {
			return budget.CheckResponse{}, err
		}
		defer zapLog.Sync()
		log = logger.NewZapAdapter(zapLog)
	}

	checker := budget.NewChecker(limits, log)
	return checker.Check(req), nil
}

func localLimits(v *viper.Viper) (budget.Limits, error) {
	limits := budget.Limits{Min: v.GetFloat64("min"), Max: v.GetFloat64("max")}
	if limits.Min < 0 {
		return budget.Limits{}, fmt.Errorf("--min must not be negative, got %v", limits.Min)
	}
	if limits.Max <= limits.Min {
		return budget.Limits{}, fmt.Errorf("--max (%v) must be greater than --min (%v)", limits.Max, limits.Min)
	}
	return limits, nil
}

func printResponse(cmd *cobra.Command, resp budget.CheckResponse, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if resp.IsError() {
		_, err := fmt.Fprintf(out, "%s (%s): %s\n", resp.Result, resp.Error, resp.Message)
		return err
	}
	_, err := fmt.Fprintf(out, "%s: %s\n", resp.Result, resp.Message)
	return err
}
