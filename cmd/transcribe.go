package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"scripture/internal/batchocr"
	"scripture/internal/config"
	"scripture/internal/discovery"
	"scripture/internal/flatten"
	"scripture/internal/labels"
	"scripture/internal/ledger"
	"scripture/internal/logger"
	"scripture/internal/objectstore"
)

var transcribeCmd = cloudCommand(&cobra.Command{
	Use:   "transcribe",
	Short: "Run batch OCR over every volume under the input prefix",
	Long: `Run batch OCR over the scanned volumes stored under the input prefix.

Each subdirectory of the input prefix is one unit. Its directory name is mapped
to an English label, every PDF in it is submitted to the OCR engine and the
nested output is flattened into <output-prefix>/<label>_*.json. Units are
processed one at a time with a pause between them.

Quota and rate-limit errors are retried with exponential backoff and jitter.
A file that still fails is reported and the run moves on. Completed units are
recorded in a ledger and skipped on the next run.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to Google Cloud service account key file
  GOOGLE_CLOUD_PROJECT           - Google Cloud project ID
  GCS_BUCKET                     - Bucket holding the scans and the output
  DOCUMENT_AI_PROCESSOR_ID       - Document AI processor (documentai engine)

Optional environment variables:
  GOOGLE_CLOUD_LOCATION          - Processor location (default: us)
  OCR_ENGINE                     - documentai or vision (default: documentai)
  OCR_MAX_RETRIES, OCR_BASE_DELAY, OCR_MAX_JITTER, OCR_WAIT_TIMEOUT
  PREFLIGHT_MAX_PAGES            - Reject PDFs with more pages (0 disables)
  LEDGER_BACKEND                 - file, firestore or none (default: file)`,
	Example: `  scripture transcribe
  scripture transcribe --start-from 40
  scripture transcribe --engine vision --per-file
  scripture transcribe --prefix-mode --ledger firestore
  scripture transcribe --dry-run`,
	Args: cobra.NoArgs,
	RunE: runTranscribe,
})

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().String("engine", "", "OCR engine: documentai or vision (OCR_ENGINE)")
	transcribeCmd.Flags().Int("start-from", 0, "Skip units whose label number is below this (OCR_START_FROM)")
	transcribeCmd.Flags().Bool("per-file", false, "Write each file's output to its own file_NNN directory (OCR_PER_FILE_OUTPUT)")
	transcribeCmd.Flags().Bool("prefix-mode", false, "Submit each unit as one prefix request (OCR_PREFIX_MODE)")
	transcribeCmd.Flags().String("ledger", "", "Completed-unit ledger: file, firestore or none (LEDGER_BACKEND)")
	transcribeCmd.Flags().Int("max-retries", 0, "Retries per file on quota errors (OCR_MAX_RETRIES)")
	transcribeCmd.Flags().Int("preflight-max-pages", 0, "Reject PDFs with more pages than this (PREFLIGHT_MAX_PAGES)")
	transcribeCmd.Flags().Bool("dry-run", false, "List the files that would be submitted without calling the OCR service")

	bindFlag(transcribeCmd.Flags(), "engine", "OCR_ENGINE")
	bindFlag(transcribeCmd.Flags(), "start-from", "OCR_START_FROM")
	bindFlag(transcribeCmd.Flags(), "per-file", "OCR_PER_FILE_OUTPUT")
	bindFlag(transcribeCmd.Flags(), "prefix-mode", "OCR_PREFIX_MODE")
	bindFlag(transcribeCmd.Flags(), "ledger", "LEDGER_BACKEND")
	bindFlag(transcribeCmd.Flags(), "max-retries", "OCR_MAX_RETRIES")
	bindFlag(transcribeCmd.Flags(), "preflight-max-pages", "PREFLIGHT_MAX_PAGES")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("transcribe")

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if !dryRun {
		if err := cfg.ValidateOCR(); err != nil {
			return err
		}
	}

	ctx, cancel := createContextWithTimeout(0)
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	submitter, closeSubmitter, err := newSubmitter(ctx, dryRun)
	if err != nil {
		return handleTranscribeError(err, log)
	}
	defer closeSubmitter()

	book, closeLedger, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	var preflight *batchocr.Preflight
	if cfg.PreflightMaxPages > 0 {
		preflight = batchocr.NewPreflight(store, cfg.PreflightMaxPages)
	}

	discoverer := discovery.New(store)
	opts := batchocr.Options{
		InputPrefix:   cfg.InputPrefix,
		OutputPrefix:  cfg.OutputPrefix,
		PerFileOutput: cfg.PerFileOutput,
		PrefixMode:    cfg.PrefixMode,
		StartFrom:     cfg.StartFrom,
		UnitPause:     cfg.UnitPause,
		DryRun:        dryRun,
	}
	orch := batchocr.NewOrchestrator(opts, discoverer, submitter, flatten.New(store), book, labels.Default(), preflight)
	orch.Progress = printProgress

	printBanner("                         BATCH OCR")
	fmt.Printf("Bucket: %s\n", cfg.Bucket)
	fmt.Printf("Input:  %s\n", cfg.InputPrefix)
	fmt.Printf("Output: %s\n", cfg.OutputPrefix)
	fmt.Printf("Engine: %s\n", cfg.Engine)
	if cfg.StartFrom > 0 {
		fmt.Printf("Start from label: %d\n", cfg.StartFrom)
	}
	if dryRun {
		fmt.Println("Mode: Dry Run (no OCR requests are sent)")
	}
	fmt.Println()

	log.Info().
		Str("bucket", cfg.Bucket).
		Str("input", cfg.InputPrefix).
		Str("output", cfg.OutputPrefix).
		Str("engine", cfg.Engine).
		Bool("dry_run", dryRun).
		Msg("Starting batch OCR")

	report, err := orch.Run(ctx)
	printRunReport(report)
	if err != nil {
		return handleTranscribeError(err, log)
	}

	if !dryRun && report.Succeeded > 0 {
		if err := printOutputSummary(ctx, discoverer, cfg.OutputPrefix); err != nil {
			log.Warn().Err(err).Msg("Failed to summarize output")
		}
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d units failed", report.Failed, len(report.Units))
	}
	return nil
}

// newSubmitter builds the configured OCR engine behind the retry policy. Dry
// runs never submit, so no client is opened.
func newSubmitter(ctx context.Context, dryRun bool) (batchocr.Submitter, func(), error) {
	nop := func() {}
	if dryRun {
		return batchocr.SubmitterFunc(func(context.Context, *batchocr.Request) error {
			return errors.New("dry run does not submit")
		}), nop, nil
	}

	var (
		engine batchocr.Submitter
		closer io.Closer
	)
	switch cfg.Engine {
	case config.EngineVision:
		s, err := batchocr.NewVisionSubmitter(ctx, cfg.WaitTimeout, cfg.ClientOptions()...)
		if err != nil {
			return nil, nop, err
		}
		engine, closer = s, s
	default:
		s, err := batchocr.NewDocumentAISubmitter(ctx, batchocr.DocumentAIConfig{
			ProjectID:        cfg.GoogleCloudProject,
			Location:         cfg.GoogleCloudLocation,
			ProcessorID:      cfg.DocumentAIProcessorID,
			ProcessorVersion: cfg.DocumentAIProcessorVer,
			WaitTimeout:      cfg.WaitTimeout,
		}, cfg.ClientOptions()...)
		if err != nil {
			return nil, nop, err
		}
		engine, closer = s, s
	}

	retrier := batchocr.NewRetrier(engine, cfg.MaxRetries, cfg.BaseDelay, cfg.MaxJitter)
	return retrier, func() { closer.Close() }, nil
}

func openLedger(ctx context.Context) (ledger.Ledger, func(), error) {
	nop := func() {}
	switch cfg.LedgerBackend {
	case config.LedgerFirestore:
		l, err := ledger.NewFirestore(ctx, cfg.GoogleCloudProject, cfg.LedgerCollection, cfg.ClientOptions()...)
		if err != nil {
			return nil, nop, fmt.Errorf("failed to open firestore ledger: %w", err)
		}
		return l, func() { l.Close() }, nil
	case config.LedgerFile:
		l, err := ledger.OpenFile(cfg.LedgerPath)
		if err != nil {
			return nil, nop, fmt.Errorf("failed to open ledger %s: %w", cfg.LedgerPath, err)
		}
		return l, nop, nil
	default:
		return ledger.Nop{}, nop, nil
	}
}

func printProgress(r batchocr.FileResult) {
	status := "ok"
	switch {
	case r.Err != nil:
		status = "FAILED"
	case r.Pages > 0:
		status = fmt.Sprintf("ok, %d pages", r.Pages)
	}
	fmt.Printf("[%s %d/%d] %s - %s", r.Label, r.Index, r.Total, path.Base(r.URI), status)
	if r.Err != nil {
		fmt.Printf(" (%v)", r.Err)
	}
	fmt.Println()
}

func printRunReport(report batchocr.RunReport) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                 RESULT")
	fmt.Println(strings.Repeat("=", 50))
	for _, u := range report.Units {
		line := fmt.Sprintf("%-10s %-28s", u.Status, u.Label)
		switch u.Status {
		case batchocr.StatusSkipped:
			line += " " + u.Reason
		case batchocr.StatusFailed:
			line += fmt.Sprintf(" %d/%d files ok", u.Succeeded, u.Files)
			if u.Err != nil {
				line += fmt.Sprintf(" (%v)", u.Err)
			}
		default:
			line += fmt.Sprintf(" %d/%d files ok, %d outputs", u.Succeeded, u.Files, u.Flattened)
		}
		fmt.Println(line)
	}
	fmt.Println()
	fmt.Printf("Succeeded: %d\n", report.Succeeded)
	if report.Skipped > 0 {
		fmt.Printf("Skipped: %d\n", report.Skipped)
	}
	if report.Failed > 0 {
		fmt.Printf("Failed: %d\n", report.Failed)
	}
	fmt.Println(strings.Repeat("=", 80))
}

func printOutputSummary(ctx context.Context, d *discovery.Discoverer, prefix string) error {
	counts, total, err := d.Summary(ctx, prefix)
	if err != nil {
		return err
	}
	fmt.Printf("\nOutput under gs://%s/%s: %d files\n", cfg.Bucket, prefix, total)
	for _, c := range counts {
		fmt.Printf("  %s: %d\n", c.Label, c.Count)
	}
	return nil
}

// handleTranscribeError turns pipeline errors into actionable messages.
func handleTranscribeError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Batch OCR failed")

	errStr := err.Error()
	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("batch OCR was canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("batch OCR timed out. Try increasing OCR_WAIT_TIMEOUT")
	case errors.Is(err, objectstore.ErrNotFound):
		return fmt.Errorf("bucket or prefix not found. Check GCS_BUCKET and GCS_INPUT_PREFIX: %w", err)
	case errors.Is(err, batchocr.ErrRetriesExhausted):
		return fmt.Errorf("the OCR service kept rejecting requests. Wait for the quota to reset and rerun, completed units are skipped: %w", err)
	case strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "transport: per-RPC creds failed"):
		return fmt.Errorf("Google Cloud authentication failed. Check GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS.\n\nOriginal error: %w", err)
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return fmt.Errorf("permission denied. The service account needs the Document AI API User (or Cloud Vision API User) and Storage Object Admin roles: %w", err)
	case strings.Contains(errStr, "NOT_FOUND") && strings.Contains(errStr, "processor"):
		return fmt.Errorf("Document AI processor not found. Check DOCUMENT_AI_PROCESSOR_ID and GOOGLE_CLOUD_LOCATION: %w", err)
	default:
		return fmt.Errorf("batch OCR failed: %w", err)
	}
}
