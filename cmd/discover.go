package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scripture/internal/config"
	"scripture/internal/discovery"
	"scripture/internal/labels"
	"scripture/internal/logger"
)

var discoverCmd = cloudCommand(&cobra.Command{
	Use:   "discover",
	Short: "List the volume directories under the input prefix",
	Long: `List the immediate subdirectories of the input prefix together with the
English label each one maps to.

Object names may be stored in either Unicode normalization form. The prefix is
listed as typed, in NFC and in NFD, and the results are merged. When the
delimiter listing finds nothing every object under the prefix is scanned
instead.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to Google Cloud service account key file
  GCS_BUCKET                     - Bucket holding the scans`,
	Example: `  scripture discover
  scripture discover --prefix 주석/ --scan-all`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
})

var listFilesCmd = cloudCommand(&cobra.Command{
	Use:   "list-files [prefix]",
	Short: "List the PDF files under a prefix",
	Long: `List every PDF under the given prefix, or under the input prefix when no
argument is given, with its size.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to Google Cloud service account key file
  GCS_BUCKET                     - Bucket holding the scans`,
	Example: `  scripture list-files 주석/01_창세기/`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runListFiles,
})

var debugPrefixCmd = cloudCommand(&cobra.Command{
	Use:   "debug-prefix <prefix>",
	Short: "Show why a prefix does or does not match any objects",
	Long: `Print the prefix in every Unicode normalization form with its raw bytes and
match count, then sample object names that contain the prefix's first segment
so NFC and NFD spellings can be compared.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to Google Cloud service account key file
  GCS_BUCKET                     - Bucket holding the scans`,
	Example: `  scripture debug-prefix 주석/ --samples 20`,
	Args:    cobra.ExactArgs(1),
	RunE:    runDebugPrefix,
})

func init() {
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(listFilesCmd)
	rootCmd.AddCommand(debugPrefixCmd)

	discoverCmd.Flags().String("prefix", "", "Prefix to list (default is GCS_INPUT_PREFIX)")
	discoverCmd.Flags().Bool("scan-all", false, "Skip the delimiter listing and scan every object")

	debugPrefixCmd.Flags().Int("samples", 10, "Maximum number of sample names to print")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("discover")

	prefix, _ := cmd.Flags().GetString("prefix")
	scanAll, _ := cmd.Flags().GetBool("scan-all")
	prefix = config.DirPrefix(prefix)
	if prefix == "" {
		prefix = cfg.InputPrefix
	}

	ctx, cancel := createContextWithTimeout(0)
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	subs, err := discovery.New(store, discovery.WithScanAll(scanAll)).Subdirectories(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	log.Info().
		Str("bucket", cfg.Bucket).
		Str("prefix", prefix).
		Int("count", len(subs)).
		Msg("Discovery finished")

	table := labels.Default()
	fmt.Printf("Found %d directories under gs://%s/%s\n", len(subs), cfg.Bucket, prefix)
	for _, s := range subs {
		label, ok := table.Lookup(s.Name)
		if !ok {
			label = s.Name + " (no label)"
		}
		fmt.Printf("  - %s -> %s\n", s.Key, label)
	}
	return nil
}

func runListFiles(cmd *cobra.Command, args []string) error {
	prefix := cfg.InputPrefix
	if len(args) == 1 {
		prefix = config.DirPrefix(args[0])
	}

	ctx, cancel := createContextWithTimeout(0)
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	files, err := discovery.New(store).Files(ctx, prefix, ".pdf")
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	if len(files) == 0 {
		fmt.Printf("No PDF files found under gs://%s/%s\n", cfg.Bucket, prefix)
		return nil
	}

	var total int64
	for i, f := range files {
		total += f.Size
		fmt.Printf("[%d/%d] %s (%.1f MB)\n", i+1, len(files), f.Name, float64(f.Size)/(1<<20))
	}
	fmt.Printf("\n%d files, %.1f MB\n", len(files), float64(total)/(1<<20))
	return nil
}

func runDebugPrefix(cmd *cobra.Command, args []string) error {
	samples, _ := cmd.Flags().GetInt("samples")

	ctx, cancel := createContextWithTimeout(0)
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := discovery.New(store).DebugPrefix(ctx, args[0], samples)
	if err != nil {
		return fmt.Errorf("failed to inspect prefix: %w", err)
	}

	printBanner("PREFIX DIAGNOSTICS")
	for _, f := range report.Forms {
		fmt.Printf("%-9s %-30q %4d objects\n", f.Form, f.Prefix, f.Matches)
		fmt.Printf("          bytes: %s\n", f.Bytes)
	}
	fmt.Println()
	fmt.Printf("Scanned %d objects, %d samples:\n", report.Scanned, len(report.Samples))
	for _, s := range report.Samples {
		fmt.Printf("  %s\n", s.Name)
		fmt.Printf("    nfc=%t raw-prefix=%t normalized-prefix=%t\n", s.IsNFC, s.RawHasPrefix, s.NormalizedPrefix)
		fmt.Printf("    bytes: %s\n", s.Bytes)
	}
	fmt.Println(strings.Repeat("=", 80))
	return nil
}
