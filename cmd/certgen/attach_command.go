package main

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"labcert/internal/blob"
	"labcert/internal/certificate"
)

func newAttachCommand(ctx *commandContext) *cobra.Command {
	attachCmd := &cobra.Command{
		Use:   "attach",
		Short: "Store and list lab certificates in the blob store",
	}
	attachCmd.AddCommand(newAttachPutCommand(ctx))
	attachCmd.AddCommand(newAttachListCommand(ctx))
	return attachCmd
}

func newAttachPutCommand(ctx *commandContext) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "put <reference> <certificate.pdf>",
		Short: "Store the lab certificate for a job reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference, file := args[0], args[1]
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read lab certificate: %w", err)
			}
			pages, err := certificate.CheckAttachment(data)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			att, err := ctx.openAttachments(cmd.Context())
			if err != nil {
				return err
			}
			key := blob.AttachmentKey(reference)
			md := map[string]string{
				"reference": reference,
				"pages":     strconv.Itoa(pages),
				"source":    path.Base(file),
			}
			info, err := att.Save(cmd.Context(), key, data, md, replace)
			if err != nil {
				return fmt.Errorf("store lab certificate: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stored %s (%d pages, %d bytes)\n", info.Key, pages, info.Size)
			if info.URL != "" {
				fmt.Fprintf(out, "URL: %s\n", info.URL)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace an existing certificate for the reference")
	return cmd
}

func newAttachListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list [reference]",
		Short: "List stored lab certificates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			att, err := ctx.openAttachments(cmd.Context())
			if err != nil {
				return err
			}
			prefix := "attachments/"
			if len(args) == 1 {
				prefix = path.Dir(blob.AttachmentKey(args[0])) + "/"
			}
			infos, err := att.List(cmd.Context(), prefix)
			if err != nil {
				return fmt.Errorf("list attachments: %w", err)
			}
			if jsonOutput {
				if infos == nil {
					infos = []blob.Info{}
				}
				return writeJSON(cmd, infos)
			}
			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No lab certificates stored")
				return nil
			}
			rows := make([][]string, 0, len(infos))
			for _, in := range infos {
				rows = append(rows, []string{
					in.Key,
					in.Metadata["reference"],
					strconv.FormatInt(in.Size, 10),
					in.LastModified.Local().Format(time.DateTime),
				})
			}
			cols := []column{textCol("Key"), textCol("Reference"), numCol("Bytes"), textCol("Stored")}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(cols, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	return cmd
}
