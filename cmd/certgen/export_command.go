package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"labcert/internal/compose"
	"labcert/internal/export"
)

func newExportCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:         "export <job.toml>...",
		Short:       "Write the XLSX sample register for one or more jobs",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := export.NewRegister()
			if err != nil {
				return err
			}
			defer reg.Close()

			for _, path := range args {
				job, err := compose.LoadJob(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				c, err := compose.Compose(job)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := reg.Add(c); err != nil {
					return err
				}
			}

			var buf bytes.Buffer
			if err := reg.Write(&buf); err != nil {
				return err
			}
			if err := writeFileAtomic(outPath, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d samples from %d jobs to %s\n", reg.Samples(), len(args), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "sample-register.xlsx", "Workbook path")
	return cmd
}
