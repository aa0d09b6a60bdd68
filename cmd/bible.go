package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"scripture/internal/bible"
	"scripture/internal/jsonfile"
	"scripture/internal/logger"
)

var bibleCmd = &cobra.Command{
	Use:   "bible",
	Short: "Convert a Bible XML text into nested JSON arrays",
	Long: `Convert a <bible><book num><chapter><verse><w> XML text into a JSON object
mapping each English book name to chapters, verses and words, where every word
is [text, strongs, morph, lemma, pos]. Books keep their XML order. Unknown book
codes are reported and skipped.`,
	Example: `  scripture bible
  scripture bible -i new_testament.xml -o new_testament.json`,
	Args: cobra.NoArgs,
	RunE: runBible,
}

func init() {
	rootCmd.AddCommand(bibleCmd)

	bibleCmd.Flags().StringP("input", "i", "new_testament.xml", "Bible XML file")
	bibleCmd.Flags().StringP("output", "o", "new_testament.json", "Output JSON file")
}

func runBible(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("bible")

	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")

	b, report, err := bible.NewConverter().ConvertFile(input)
	if err != nil {
		return err
	}

	if err := jsonfile.Write(output, b); err != nil {
		return err
	}

	log.Info().Str("output", output).Int("books", report.Books).Msg("Bible written")
	fmt.Printf("Converted %d books, %d chapters, %d verses, %d words to %s\n",
		report.Books, report.Chapters, report.Verses, report.Words, output)
	for _, code := range report.Skipped {
		fmt.Printf("  skipped unknown book code %q\n", code)
	}
	return nil
}
