package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"scripture/internal/jsonfile"
	"scripture/internal/logger"
	"scripture/internal/strongs"
	"scripture/pkg/models"
)

// Default dictionary sources as they are distributed.
const (
	defaultHebrewPath = "히브리어스트롱사전.txt"
	defaultGreekPath  = "헬라어스트롱사전.txt"
)

var strongsCmd = &cobra.Command{
	Use:   "strongs",
	Short: "Parse the Hebrew and Greek Strong's dictionaries into JSON",
	Long: `Parse the plain-text Hebrew and Greek Strong's dictionaries and write one
JSON array with every entry, Hebrew first.

Entries are separated by blank lines; each entry is a header line
("<number> <word> <transliteration> {<pronunciation>}") followed by a
definition line. Malformed entries are logged and skipped. A missing input file
is reported and the other language is still converted.`,
	Example: `  scripture strongs
  scripture strongs --hebrew 히브리어스트롱사전.txt --greek 헬라어스트롱사전.txt -o strongs_dictionary.json`,
	Args: cobra.NoArgs,
	RunE: runStrongs,
}

var rekeyCmd = &cobra.Command{
	Use:   "rekey",
	Short: "Turn a JSON array of entries into an object keyed by Strong's number",
	Example: `  scripture rekey -i dictionary.json -o processed_dictionary.json
  scripture rekey -i dictionary.json --field lemma`,
	Args: cobra.NoArgs,
	RunE: runRekey,
}

var missingCmd = &cobra.Command{
	Use:   "missing [reference.json...]",
	Short: "List Strong's numbers present in reference dictionaries but not in ours",
	Long: `Compare the keys of a processed dictionary with the keys of one or more
reference dictionaries and print, sorted, the keys it lacks.

With no arguments greek_dict_en.json and hebrew_dict_en.json are used.`,
	Example: `  scripture missing
  scripture missing --have processed_dictionary.json greek_dict_en.json`,
	RunE: runMissing,
}

func init() {
	rootCmd.AddCommand(strongsCmd)
	rootCmd.AddCommand(rekeyCmd)
	rootCmd.AddCommand(missingCmd)

	strongsCmd.Flags().String("hebrew", defaultHebrewPath, "Hebrew dictionary text file")
	strongsCmd.Flags().String("greek", defaultGreekPath, "Greek dictionary text file")
	strongsCmd.Flags().StringP("output", "o", "strongs_dictionary.json", "Output JSON file")

	rekeyCmd.Flags().StringP("input", "i", "dictionary.json", "JSON array of entries")
	rekeyCmd.Flags().StringP("output", "o", "processed_dictionary.json", "Output JSON object")
	rekeyCmd.Flags().String("field", strongs.DefaultKeyField, "Field whose value becomes the key")

	missingCmd.Flags().String("have", "processed_dictionary.json", "Processed dictionary to check")
}

func runStrongs(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("strongs")

	hebrewPath, _ := cmd.Flags().GetString("hebrew")
	greekPath, _ := cmd.Flags().GetString("greek")
	output, _ := cmd.Flags().GetString("output")

	sources := []struct {
		lang strongs.Language
		path string
	}{
		{strongs.Hebrew, hebrewPath},
		{strongs.Greek, greekPath},
	}
	results := make([]*strongs.Result, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			res, err := strongs.NewParser(src.lang).ParseFile(src.path)
			if errors.Is(err, os.ErrNotExist) {
				log.Error().Str("file", src.path).Msg("Dictionary file not found, skipping language")
				fmt.Fprintf(os.Stderr, "Error: %s not found\n", src.path)
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var entries []models.StrongsEntry
	skipped := 0
	for i, res := range results {
		if res == nil {
			continue
		}
		fmt.Printf("Parsed %d %s entries", len(res.Entries), sources[i].lang)
		if len(res.Skipped) > 0 {
			fmt.Printf(" (%d skipped)", len(res.Skipped))
		}
		fmt.Println()
		entries = append(entries, res.Entries...)
		skipped += len(res.Skipped)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no dictionary entries were parsed")
	}

	if err := jsonfile.Write(output, entries); err != nil {
		return err
	}
	log.Info().
		Str("output", output).
		Int("entries", len(entries)).
		Int("skipped", skipped).
		Msg("Dictionary written")
	fmt.Printf("Wrote %d entries to %s\n", len(entries), output)
	return nil
}

func runRekey(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("rekey")

	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	field, _ := cmd.Flags().GetString("field")

	var records []map[string]any
	if err := jsonfile.Read(input, &records); err != nil {
		return err
	}
	keyed, skipped := strongs.Rekey(records, field)
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Str("field", field).Msg("Records without key field were dropped")
	}
	if err := jsonfile.Write(output, keyed); err != nil {
		return err
	}
	fmt.Printf("Converted %d records into %d keys (%s)\n", len(records), len(keyed), output)
	return nil
}

func runMissing(cmd *cobra.Command, args []string) error {
	havePath, _ := cmd.Flags().GetString("have")
	refs := args
	if len(refs) == 0 {
		refs = []string{"greek_dict_en.json", "hebrew_dict_en.json"}
	}

	var have map[string]any
	if err := jsonfile.Read(havePath, &have); err != nil {
		return err
	}
	sets := make([]map[string]any, 0, len(refs))
	for _, path := range refs {
		var ref map[string]any
		if err := jsonfile.Read(path, &ref); err != nil {
			return err
		}
		sets = append(sets, ref)
	}

	missing := strongs.MissingKeys(have, sets...)
	fmt.Printf("Missing Strong's numbers (%d):\n", len(missing))
	fmt.Println(strings.Join(missing, ", "))
	return nil
}
