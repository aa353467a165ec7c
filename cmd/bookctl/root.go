package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	return buildRootCommand(newCommandContext(&rootFlags{}))
}

func buildRootCommand(ctx *commandContext) *cobra.Command {
	flags := ctx.flags

	rootCmd := &cobra.Command{
		Use:           "bookctl",
		Short:         "Manage the book catalog through the book API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "bookform.yaml", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.api, "api", "", "Book API base URL (overrides configuration)")
	rootCmd.PersistentFlags().BoolVar(&flags.json, "json", false, "Write JSON instead of text")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Minimum log level written to stderr (overrides configuration)")

	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newEditCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
