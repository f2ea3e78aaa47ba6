package main

import (
	"github.com/spf13/cobra"

	pcsv "tabclean/internal/parser/csv"
	"tabclean/internal/profile"
)

type profileOptions struct {
	input  string
	format string
	delim  string
}

func newProfileCmd(_ *globals) *cobra.Command {
	opts := &profileOptions{}
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Assess the quality of a CSV file",
		Long:  "Print per-column kinds, missing counts, numeric summaries and top values plus the duplicate-row count. No configuration is needed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt := pcsv.Options{TrimSpace: true}
			if opts.delim != "" {
				opt.Comma = []rune(opts.delim)[0]
			}
			snap, _, err := pcsv.LoadFile(opts.input, opt)
			if err != nil {
				return err
			}
			p, err := profile.Of(cmd.Context(), snap)
			if err != nil {
				return err
			}
			return profile.Write(cmd.OutOrStdout(), p, opts.format)
		},
	}
	cmd.Flags().StringVar(&opts.input, "input", "", "CSV file to profile")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text, json or yaml")
	cmd.Flags().StringVar(&opts.delim, "delimiter", ",", "field delimiter")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
