// main.go - graphctl Einstiegspunkt
// Entspricht cmd/cmd.go's NewCLI-Stil: Root-Command aus Unterbefehlen
// zusammensetzen und ausfuehren.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cobra.EnableCommandSorting = false

	root := &cobra.Command{
		Use:           "graphctl",
		Short:         "Inspect and drive a compute-graph runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newDescribeCmd())
	root.AddCommand(newSimulateCmd())
	root.AddCommand(newServeCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
