// Command processor turns one cookie order export into the troop summary,
// pick list, packing slips and packet archive, written to an output directory.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"trooplogistics/internal/config"
	"trooplogistics/internal/dataprocessing"
	"trooplogistics/internal/exporter"
	"trooplogistics/internal/infrastructure"
	"trooplogistics/internal/services"
	"trooplogistics/pkg/contracts/domain"
)

// options holds the command line flags.
type options struct {
	in         string
	out        string
	formats    []string
	vocabulary string
	configPath string
	recipient  string
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "processor --in orders.xlsx [--out dir] [--format csv,pdf]",
		Short: "Build pick lists and packing slips from a cookie order export",
		Long: `Process one CSV or XLSX order export and write the printable documents.

For every requested format the processor writes:
  troop-summary.<ext>   boxes to pull from troop inventory
  pick-list.<ext>       boxes per recipient
  packing-slips.<ext>   one slip per in-person order
  packets-<ext>.zip     one pickup packet per recipient

With --recipient only that recipient's packet is written.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.in, "in", "", "order export to process (.csv or .xlsx)")
	flags.StringVar(&opts.out, "out", "", "output directory (defaults to output/ next to the executable)")
	flags.StringSliceVar(&opts.formats, "format", []string{string(domain.FormatCSV)}, "document formats: csv, xlsx, html, pdf")
	flags.StringVar(&opts.vocabulary, "vocab", "", "product vocabulary YAML (defaults to the built-in table)")
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.recipient, "recipient", "", "write only this recipient's packet")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.vocabulary != "" {
		cfg.Vocabulary.File = opts.vocabulary
	}

	logger := infrastructure.WithComponent(infrastructure.NewLogger(cfg.Logging, stderr), "processor")
	ctx = infrastructure.EnsureTraceID(ctx)

	if opts.out == "" {
		paths, err := config.GetPaths()
		if err != nil {
			return err
		}
		opts.out = paths.OutputDir
	}
	if err := os.MkdirAll(opts.out, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	vocab, labels, err := config.LoadVocabulary(cfg.Vocabulary.File)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(opts.in)
	if err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}

	svc := services.NewLogisticsService(vocab, labels, services.LogisticsConfig{
		Limits: dataprocessing.Limits{
			MaxRows:    cfg.Limits.MaxRows,
			MaxColumns: cfg.Limits.MaxColumns,
		},
		Render: exporter.Options{
			Title:      cfg.Render.Title,
			PDFEnabled: cfg.Render.PDFEnabled || containsFormat(opts.formats, domain.FormatPDF),
			ChromePath: cfg.Render.ChromePath,
			PDFTimeout: cfg.Render.PDFTimeout,
		},
		ArchiveWorkers: cfg.Limits.ArchiveWorkers,
	}, nil, logger)

	report, err := svc.Process(ctx, data, filepath.Base(opts.in))
	if err != nil {
		if stage, ok := dataprocessing.StageOf(err); ok {
			logger.ErrorContext(ctx, "Export processing failed",
				slog.String("stage", string(stage)),
				slog.String("error_code", dataprocessing.ErrorCode(err)),
				slog.String("error", err.Error()))
		}
		return err
	}

	logger.InfoContext(ctx, "Export processed",
		slog.String("file", opts.in),
		slog.Int("source_rows", report.Orders.SourceRows),
		slog.Int("orders", len(report.Orders.Orders)),
		slog.Int("recipients", len(report.Result.RecipientOrders)))

	// Every document is rendered before any is written so a failing format
	// leaves no partial output behind.
	var docs []*domain.Document
	for _, f := range opts.formats {
		rendered, err := renderFormat(ctx, svc, report, domain.DocumentFormat(f), opts.recipient)
		if err != nil {
			return err
		}
		docs = append(docs, rendered...)
	}

	paths, err := writeDocuments(opts.out, docs)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintln(stdout, path)
	}
	return nil
}

// renderFormat renders one recipient's packet, or every document when
// recipient is empty.
func renderFormat(ctx context.Context, svc *services.LogisticsService, report *domain.Report, format domain.DocumentFormat, recipient string) ([]*domain.Document, error) {
	if recipient == "" {
		return svc.RenderAll(ctx, report, format)
	}
	doc, err := svc.Render(ctx, report, services.DocumentRequest{
		Kind:      domain.DocumentPacket,
		Format:    format,
		Recipient: recipient,
	})
	if err != nil {
		return nil, err
	}
	return []*domain.Document{doc}, nil
}

// writeDocuments writes docs into dir. On failure the files already written
// are removed.
func writeDocuments(dir string, docs []*domain.Document) ([]string, error) {
	written := make([]string, 0, len(docs))
	for _, doc := range docs {
		path := filepath.Join(dir, doc.Filename)
		if err := os.WriteFile(path, doc.Data, 0644); err != nil {
			for _, w := range written {
				_ = os.Remove(w)
			}
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func containsFormat(formats []string, want domain.DocumentFormat) bool {
	for _, f := range formats {
		if domain.DocumentFormat(f) == want {
			return true
		}
	}
	return false
}
