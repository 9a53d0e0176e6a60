package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"labcert/internal/ledger"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the issuance ledger",
	}
	ledgerCmd.AddCommand(newLedgerListCommand(ctx))
	ledgerCmd.AddCommand(newLedgerShowCommand(ctx))
	return ledgerCmd
}

func newLedgerListCommand(ctx *commandContext) *cobra.Command {
	var (
		reference  string
		limit      int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List issued certificates, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := ctx.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			entries, err := l.List(cmd.Context(), ledger.Query{Reference: reference, Limit: limit})
			if err != nil {
				return fmt.Errorf("list ledger: %w", err)
			}
			if jsonOutput {
				if entries == nil {
					entries = []ledger.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No certificates issued")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.IssuedAt.Local().Format(time.DateTime),
					e.Reference,
					e.Filename,
					strconv.Itoa(e.TotalPages()),
					shortHash(e.SHA256),
					e.ID,
				})
			}
			cols := []column{
				textCol("Issued"), textCol("Reference"), textCol("Filename"),
				numCol("Pages"), textCol("SHA-256"), textCol("ID"),
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(cols, rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Only show certificates for this job reference")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum entries to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	return cmd
}

func newLedgerShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one ledger entry as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := ctx.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()
			e, err := l.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("ledger entry %s: %w", args[0], err)
			}
			return writeJSON(cmd, e)
		},
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
