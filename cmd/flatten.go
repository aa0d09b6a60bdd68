package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"scripture/internal/config"
	"scripture/internal/discovery"
	"scripture/internal/flatten"
	"scripture/internal/logger"
)

var flattenCmd = cloudCommand(&cobra.Command{
	Use:   "flatten <label>",
	Short: "Flatten the nested OCR output of one label",
	Long: `Move every OCR output object under <output-prefix>/<label>/ to
<output-prefix>/<label>_[fileNNN_]<name> and remove the emptied directory
markers. transcribe does this after every unit; run it by hand to finish a unit
that was interrupted between OCR and flattening.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to Google Cloud service account key file
  GCS_BUCKET                     - Bucket holding the output`,
	Example: `  scripture flatten 01_Genesis
  scripture flatten 01_Genesis --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runFlatten,
})

var summaryCmd = cloudCommand(&cobra.Command{
	Use:   "summary",
	Short: "Count the OCR output files per label",
	Long: `Count the files under the output prefix, grouped by the part of the file
name before the first underscore.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to Google Cloud service account key file
  GCS_BUCKET                     - Bucket holding the output`,
	Example: `  scripture summary
  scripture summary --prefix text_annotations/`,
	Args: cobra.NoArgs,
	RunE: runSummary,
})

func init() {
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(summaryCmd)

	flattenCmd.Flags().Bool("dry-run", false, "Print the planned moves without changing anything")
	summaryCmd.Flags().String("prefix", "", "Prefix to summarize (default is GCS_OUTPUT_PREFIX)")
}

func runFlatten(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("flatten")
	label := args[0]
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ctx, cancel := createContextWithTimeout(0)
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	f := flatten.New(store)
	if dryRun {
		moves, markers, err := f.Plan(ctx, cfg.OutputPrefix, label)
		if err != nil {
			return fmt.Errorf("failed to plan moves: %w", err)
		}
		for _, m := range moves {
			fmt.Printf("%s -> %s\n", m.From, m.To)
		}
		fmt.Printf("\n%d moves, %d directory markers\n", len(moves), len(markers))
		return nil
	}

	result, err := f.Flatten(ctx, cfg.OutputPrefix, label)
	log.Info().
		Str("label", label).
		Int("moved", result.Moved).
		Int("markers", result.Markers).
		Int("failed", result.Failed).
		Msg("Flatten finished")
	fmt.Printf("Moved %d objects, removed %d markers", result.Moved, result.Markers)
	if result.Failed > 0 {
		fmt.Printf(", %d failed", result.Failed)
	}
	fmt.Println()
	if err != nil {
		return fmt.Errorf("flatten %s: %w", label, err)
	}
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	prefix, _ := cmd.Flags().GetString("prefix")
	prefix = config.DirPrefix(prefix)
	if prefix == "" {
		prefix = cfg.OutputPrefix
	}

	ctx, cancel := createContextWithTimeout(0)
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	return printOutputSummary(ctx, discovery.New(store), prefix)
}
