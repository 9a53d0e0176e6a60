package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"labcert/internal/blob"
	"labcert/internal/config"
	"labcert/internal/ledger"
	"labcert/internal/logging"
)

const formatAuto = "auto"

type globalFlags struct {
	config    string
	envFile   string
	logLevel  string
	logFormat string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// loadEnvFile populates the environment from the --env-file path. Variables
// already set in the environment win.
func (c *commandContext) loadEnvFile() error {
	path := strings.TrimSpace(c.flags.envFile)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the command logger. Without configured outputs it writes to
// the command's stderr, as JSON unless that is a terminal.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := cfg.LoggingOptions()
	if lvl := strings.TrimSpace(c.flags.logLevel); lvl != "" {
		opts.Level = lvl
	}
	if len(opts.OutputPaths) == 0 {
		opts.Writer = cmd.ErrOrStderr()
	}
	switch format := strings.ToLower(strings.TrimSpace(c.flags.logFormat)); format {
	case "", formatAuto:
		if opts.Writer != nil && !isTerminal(opts.Writer) {
			opts.Format = "json"
		}
	default:
		opts.Format = format
	}
	logger, err := logging.New(opts)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	return logging.NewComponentLogger(logger, "certgen"), nil
}

func (c *commandContext) openAttachments(ctx context.Context) (*blob.Attachments, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := blob.Open(ctx, cfg.BlobConfig())
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	return blob.NewAttachments(store, blob.WithMaxBytes(cfg.MaxAttachmentBytes())), nil
}

func (c *commandContext) openLedger(ctx context.Context) (ledger.Ledger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	l, err := ledger.Open(ctx, cfg.LedgerConfig())
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return l, nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
