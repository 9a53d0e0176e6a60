package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "certgen",
		Short:         "Assemble lab monitoring certificates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.loadEnvFile(); err != nil {
				return err
			}
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

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVar(&flags.envFile, "env-file", ".env", "Environment file loaded before configuration (ignored when absent)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Override logging.format (console, json); defaults to json when stderr is not a terminal")

	rootCmd.AddCommand(newBuildCommand(ctx))
	rootCmd.AddCommand(newCalcCommand())
	rootCmd.AddCommand(newClassifyCommand())
	rootCmd.AddCommand(newLedgerCommand(ctx))
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newAttachCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
