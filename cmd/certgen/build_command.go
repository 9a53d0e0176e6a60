package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"labcert/internal/blob"
	"labcert/internal/certificate"
	"labcert/internal/compose"
	"labcert/internal/observability"
	"labcert/internal/render"
)

type buildOptions struct {
	outDir          string
	attachmentFile  string
	attachmentKey   string
	noLedger        bool
	allowIncomplete bool
	metricsFile     string
	traceFile       string
	jsonOutput      bool
}

type buildSummary struct {
	Reference     string `json:"reference"`
	Path          string `json:"path"`
	Filename      string `json:"filename"`
	MainPages     int    `json:"main_pages"`
	AppendixPages int    `json:"appendix_pages"`
	ExternalPages int    `json:"external_pages"`
	SHA256        string `json:"sha256"`
	AttachmentKey string `json:"attachment_key,omitempty"`
	ArchiveKey    string `json:"archive_key,omitempty"`
	ArchiveURL    string `json:"archive_url,omitempty"`
	LedgerID      string `json:"ledger_id,omitempty"`
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build <job.toml>",
		Short: "Assemble the certificate PDF for a job",
		Long: "Compose the results section from a job file, paginate it with the appendix cover, " +
			"append the lab certificate and write the finished PDF. The lab certificate is read from " +
			"--attachment-file when given, otherwise from the blob store.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "Directory the PDF is written to")
	cmd.Flags().StringVar(&opts.attachmentFile, "attachment-file", "", "Read the lab certificate from this PDF instead of the blob store")
	cmd.Flags().StringVar(&opts.attachmentKey, "attachment-key", "", "Blob key of the lab certificate (default from the job, then attachments/<reference>/lab-certificate.pdf)")
	cmd.Flags().BoolVar(&opts.noLedger, "no-ledger", false, "Do not record the issue in the ledger")
	cmd.Flags().BoolVar(&opts.allowIncomplete, "allow-incomplete", false, "Issue even when fibre analysis is outstanding")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	cmd.Flags().StringVar(&opts.traceFile, "trace-file", "", "Append JSON trace spans to this file")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the build summary as JSON")
	return cmd
}

func runBuild(cmd *cobra.Command, cc *commandContext, jobPath string, opts buildOptions) (err error) {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cc.logger(cmd)
	if err != nil {
		return err
	}

	job, err := compose.LoadJob(jobPath)
	if err != nil {
		return err
	}
	if job.ReportType == "" {
		job.ReportType = cfg.Report.ReportType
	}
	comp, err := compose.Compose(job)
	if err != nil {
		return err
	}
	if !comp.Complete() && !opts.allowIncomplete {
		return fmt.Errorf("job %s has outstanding fibre analysis (%s); pass --allow-incomplete to issue anyway",
			job.Reference, strings.Join(outstanding(comp), "; "))
	}
	if ids := comp.Overnight(); len(ids) > 0 {
		logger.Warn("sampling period crossed midnight", slog.String("samples", strings.Join(ids, ",")))
	}

	recorder := observability.NewPrometheusRecorder()
	if opts.metricsFile != "" {
		defer func() {
			if werr := recorder.WriteTextfile(opts.metricsFile); werr != nil && err == nil {
				err = fmt.Errorf("write metrics: %w", werr)
			}
		}()
	}
	var tracer observability.Tracer = observability.Noop{}
	if opts.traceFile != "" {
		f, ferr := os.OpenFile(opts.traceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if ferr != nil {
			return fmt.Errorf("open trace file: %w", ferr)
		}
		defer f.Close()
		tracer = observability.NewJSONTracer(f)
	}

	asmOpts := []certificate.Option{
		certificate.WithLogger(logger),
		certificate.WithMetrics(recorder),
		certificate.WithTracer(tracer),
	}

	needStore := opts.attachmentFile == "" || cfg.Report.ArchiveIssued
	var attachments *blob.Attachments
	if needStore {
		attachments, err = cc.openAttachments(cmd.Context())
		if err != nil {
			return err
		}
		asmOpts = append(asmOpts, certificate.WithAttachments(attachments))
		if cfg.Report.ArchiveIssued {
			asmOpts = append(asmOpts, certificate.WithArchive(attachments, blob.IssuedKey, cfg.Report.ReplaceArchived))
		}
	}
	if !opts.noLedger {
		l, lerr := cc.openLedger(cmd.Context())
		if lerr != nil {
			return lerr
		}
		defer l.Close()
		asmOpts = append(asmOpts, certificate.WithLedger(l))
	}

	asm := certificate.NewAssembler(render.New(cfg.RenderOptions()), asmOpts...)
	in := certificate.Assembly{
		ReportType:    job.ReportType,
		Reference:     job.Reference,
		Date:          job.IssueDate(),
		Primary:       comp.Primary,
		AppendixCover: comp.AppendixCover,
		Footer:        cfg.FooterTemplate(),
	}

	var out certificate.Output
	if opts.attachmentFile != "" {
		data, rerr := os.ReadFile(opts.attachmentFile)
		if rerr != nil {
			return fmt.Errorf("read lab certificate: %w", rerr)
		}
		in.External = data
		out, err = asm.Assemble(cmd.Context(), in)
	} else {
		out, err = asm.AssembleFromStore(cmd.Context(), in, attachmentKey(opts.attachmentKey, job))
	}
	if err != nil {
		return fmt.Errorf("build %s: %w", job.Reference, err)
	}

	path := filepath.Join(opts.outDir, out.Filename)
	if err := writeFileAtomic(path, out.Bytes, 0o644); err != nil {
		return err
	}

	summary := buildSummary{
		Reference:     job.Reference,
		Path:          path,
		Filename:      out.Filename,
		MainPages:     out.MainPages,
		AppendixPages: out.AppendixPages,
		ExternalPages: out.ExternalPages,
		SHA256:        out.SHA256,
		AttachmentKey: out.AttachmentKey,
		ArchiveKey:    out.ArchiveKey,
		ArchiveURL:    out.ArchiveURL,
		LedgerID:      out.LedgerID,
	}
	if opts.jsonOutput {
		return writeJSON(cmd, summary)
	}
	printBuildSummary(cmd.OutOrStdout(), summary)
	return nil
}

func attachmentKey(flag string, job compose.Job) string {
	if k := strings.TrimSpace(flag); k != "" {
		return k
	}
	if job.Attachment != "" {
		return job.Attachment
	}
	return blob.AttachmentKey(job.Reference)
}

func outstanding(c compose.Composition) []string {
	var lines []string
	for _, f := range c.Fibres {
		if !f.Complete() {
			lines = append(lines, f.Record.SampleID+": "+strings.Join(f.Findings.Messages(), ", "))
		}
	}
	return lines
}

func printBuildSummary(w io.Writer, s buildSummary) {
	fmt.Fprintln(w, renderPairs("Issued "+s.Reference, [][2]string{
		{"Written", s.Path},
		{"Pages", fmt.Sprintf("%d report + %d appendix + %d lab", s.MainPages, s.AppendixPages, s.ExternalPages)},
		{"SHA-256", s.SHA256},
		{"Lab certificate", s.AttachmentKey},
		{"Archived", s.ArchiveKey},
		{"Ledger entry", s.LedgerID},
	}))
}
