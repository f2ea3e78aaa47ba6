// Command tabclean cleans tabular customer-style data: it loads a CSV, runs
// the configured cleaning stages, writes the cleaned table and a report, and
// optionally persists the result to a database.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// globals are the persistent flags shared by every subcommand.
type globals struct {
	cfgFile   string
	verbose   bool
	logFormat string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "tabclean",
		Short: "Data-quality pipeline for tabular data",
		Long: `tabclean loads a CSV file and runs a fixed sequence of cleaning stages
over it: impute, dedupe, coerce, normalize, outliers, bucketize. Every stage
is driven by the column dictionary in the configuration document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&g.cfgFile, "config", "", "configuration document (.yaml, .yml or .json)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log encoding: console or json (overrides log.format)")

	root.AddCommand(newRunCmd(g), newValidateCmd(g), newProfileCmd(g))
	return root
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
