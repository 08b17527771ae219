package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

type options struct {
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "buildergen",
		Short:         "Generate builder types for Go structs and gqlgen models",
		Long:          "buildergen reads .buildergen.yml and writes a <Type>Builder for every struct marked with //buildergen:generate and every selected GraphQL object.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "config file (default: .buildergen.yml in the current or a parent directory)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug output")
	cmd.SetVersionTemplate("buildergen v{{.Version}}\n")

	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
