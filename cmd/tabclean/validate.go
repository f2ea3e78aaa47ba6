package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tabclean/internal/config"
)

func newValidateCmd(g *globals) *cobra.Command {
	var preset string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Lint a configuration document",
		Long:  "Check the column dictionary and every other section without touching any data. Exits non-zero when an error-severity issue is found.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g, preset)
			if err != nil {
				return err
			}
			issues := config.Validate(cfg)
			printIssues(cmd.OutOrStdout(), issues)
			if config.HasErrors(issues) {
				return fmt.Errorf("configuration has errors")
			}
			if len(issues) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "configuration OK")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "validate a built-in configuration instead of --config")
	return cmd
}

func printIssues(w io.Writer, issues []config.Issue) {
	for _, iss := range issues {
		fmt.Fprintf(w, "%-7s %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
}
