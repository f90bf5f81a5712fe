// cmd/tools/ctc-check/registry.go
package main

import (
	"encoding/json"
	"fmt"

	"ctc-budget-checker/internal/common/validation"
	"ctc-budget-checker/pkg/registry"

	"github.com/spf13/cobra"
)

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the activity registry served at /docs",
	}

	var path string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a registry file, or the built-in registry when --path is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := loadRegistry(path)
			if err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			if len(reg.Activities) == 0 {
				return fmt.Errorf("registry validation failed: registry contains no activities")
			}
			for _, activity := range reg.Activities {
				if len(activity.InputSchema) == 0 {
					continue
				}
				if _, err := validation.NewValidator(activity.InputSchema); err != nil {
					return fmt.Errorf("registry validation failed: activity %s: %w", activity.ID, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed (%d activities).\n", len(reg.Activities))
			return nil
		},
	}
	validateCmd.Flags().StringVar(&path, "path", "", "path to a registry JSON file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the built-in registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.Default()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(reg)
		},
	}

	cmd.AddCommand(validateCmd, showCmd)
	return cmd
}

func loadRegistry(path string) (*registry.ActivityRegistry, error) {
	if path == "" {
		return registry.Default()
	}
	return registry.LoadRegistry(path)
}
