// Package cmd provides the CLI commands for lawrag.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vietlegal/lawrag/pkg/version"
)

var (
	configPath string
	debugMode  bool
)

// NewRootCmd creates the root command for the lawrag CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lawrag",
		Short: "Hybrid retrieval over Vietnamese statute text",
		Long: `lawrag answers legal questions by retrieving statute clauses with
hybrid search: BM25 keyword ranking fused with embedding similarity via
Reciprocal Rank Fusion. The assembled clause context feeds the answer
generation step.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("lawrag version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
