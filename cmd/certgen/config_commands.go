package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"labcert/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create, check and print the labcert configuration",
	}
	configCmd.AddCommand(newConfigInitCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))
	return configCmd
}

// configTarget is --path, then the global --config, then the default location.
func configTarget(ctx *commandContext, pathFlag string) (string, error) {
	for _, p := range []string{pathFlag, ctx.flags.config} {
		if p = strings.TrimSpace(p); p != "" {
			return filepath.Abs(p)
		}
	}
	return config.DefaultConfigPath()
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	var (
		pathFlag string
		force    bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(ctx, pathFlag)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("%s already exists; pass --force to replace it", target)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("check %s: %w", target, err)
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Where to write the file (default: --config, then ~/.config/labcert/config.toml)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing file")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var openStores bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and report the effective drivers",
		Long: "Load and validate the configuration, including LABCERT_* overrides. With --open the blob " +
			"store and ledger are opened as well, which checks credentials and connectivity.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(ctx.flags.config))
			if err != nil {
				return err
			}
			source := path
			if !exists {
				source = "defaults (no file at " + path + ")"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderPairs("Configuration", [][2]string{
				{"Source", source},
				{"Blob store", cfg.Blob.Driver},
				{"Ledger", cfg.Ledger.Driver},
				{"Report type", cfg.Report.ReportType},
				{"Page size", cfg.Render.PageSize + " " + cfg.Render.Orientation},
				{"Archive issued", yesNo(cfg.Report.ArchiveIssued)},
			}))

			if openStores {
				if _, err := ctx.openAttachments(cmd.Context()); err != nil {
					return err
				}
				l, err := ctx.openLedger(cmd.Context())
				if err != nil {
					return err
				}
				_ = l.Close()
				fmt.Fprintln(out, "Blob store and ledger opened")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&openStores, "open", false, "Also open the blob store and ledger")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.Ledger.DSN != "" {
				shown.Ledger.DSN = "<redacted>"
			}
			data, err := toml.Marshal(shown)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
