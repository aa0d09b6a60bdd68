// Package strongs parses the plain-text Strong's concordance dictionaries and
// reconciles the JSON files built from them.
//
// The text format is a sequence of two-line entries separated by blank lines:
//
//	H0001 אָב ab {awb}
//	father; a founder:-chief, father.
//
// The first line holds the number, headword, transliteration and
// pronunciation. The layout of the second line differs per language; see
// parseHebrew and parseGreek.
package strongs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"scripture/internal/logger"
	"scripture/pkg/models"
)

// Language selects the second-line layout and the number prefix.
type Language byte

const (
	Hebrew Language = 'H'
	Greek  Language = 'G'
)

// String returns the language letter.
func (l Language) String() string {
	return string(rune(l))
}

// ErrMalformedBlock is wrapped by every per-entry parse failure.
var ErrMalformedBlock = errors.New("malformed dictionary entry")

var (
	blockSeparator = regexp.MustCompile(`\n\s*\n`)
	greekUsage     = regexp.MustCompile(`^<([^>]+)>\s*([^.]+)\.\s*(.*)`)
)

// etymologyMarkers start a Hebrew definition segment that describes the
// word's derivation rather than its meaning.
var etymologyMarkers = []string{
	"from ",
	"a primitive",
	"of foreign origin",
	"of uncertain derivation",
	"corresponding to",
	"the same as",
	"probably",
	"apparently",
	"(aramaic)",
	"(chald",
	"a variation",
	"by implication from",
	"contracted from",
}

// Result is the outcome of parsing one file.
type Result struct {
	Entries []models.StrongsEntry
	// Skipped holds one error per malformed block or entry.
	Skipped []error
}

// Parser parses dictionary text for one language.
type Parser struct {
	lang Language
	log  zerolog.Logger
}

// NewParser returns a parser for lang.
func NewParser(lang Language) *Parser {
	return &Parser{
		lang: lang,
		log:  logger.WithComponent("strongs").With().Str("language", lang.String()).Logger(),
	}
}

// ParseFile parses the dictionary at path.
func (p *Parser) ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	res, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	p.log.Info().
		Str("file", filepath.Base(path)).
		Int("entries", len(res.Entries)).
		Int("skipped", len(res.Skipped)).
		Msg("Parsed dictionary")
	return res, nil
}

// Parse reads the whole of r. Malformed blocks are logged and collected in
// Result.Skipped; only read errors are returned.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))

	res := &Result{}
	if content == "" {
		return res, nil
	}

	for i, block := range blockSeparator.Split(content, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines)%2 != 0 {
			err := fmt.Errorf("%w: block %d has %d lines, expected a multiple of 2", ErrMalformedBlock, i+1, len(lines))
			p.log.Warn().Err(err).Str("block", block).Msg("Skipping block")
			res.Skipped = append(res.Skipped, err)
			continue
		}
		for j := 0; j < len(lines); j += 2 {
			entry, err := p.ParseEntry(lines[j], lines[j+1])
			if err != nil {
				err = fmt.Errorf("block %d: %w", i+1, err)
				p.log.Warn().Err(err).Str("line", lines[j]).Msg("Skipping entry")
				res.Skipped = append(res.Skipped, err)
				continue
			}
			res.Entries = append(res.Entries, entry)
		}
	}
	return res, nil
}

// ParseEntry parses one header line and one definition line.
func (p *Parser) ParseEntry(header, definition string) (models.StrongsEntry, error) {
	var e models.StrongsEntry

	fields := strings.Fields(header)
	if len(fields) < 2 {
		return e, fmt.Errorf("%w: header %q needs a number and a headword", ErrMalformedBlock, header)
	}

	e.StrongNumber = p.number(fields[0])
	e.OriginalWord = fields[1]
	rest := fields[2:]
	if n := len(rest); n > 0 && strings.HasPrefix(rest[n-1], "{") {
		e.Pronunciation = strings.Trim(rest[n-1], "{}")
		rest = rest[:n-1]
	}
	e.Transliteration = strings.Join(rest, " ")

	definition = strings.TrimSpace(definition)
	if definition == "" {
		return e, fmt.Errorf("%w: %s has an empty definition line", ErrMalformedBlock, e.StrongNumber)
	}

	switch p.lang {
	case Hebrew:
		parseHebrew(&e, definition)
	case Greek:
		parseGreek(&e, definition)
	}
	return e, nil
}

func (p *Parser) number(token string) string {
	prefix := p.lang.String()
	if strings.HasPrefix(strings.ToUpper(token), prefix) {
		return prefix + token[1:]
	}
	return prefix + token
}

// parseHebrew splits "etymology; definition; more:-kjv renderings". The KJV
// part follows the first ":-". Leading segments that read as a derivation go
// to Etymology, the next segment is the Strong's definition and any further
// segments form the extended definition.
func parseHebrew(e *models.StrongsEntry, line string) {
	defs, kjv, found := strings.Cut(line, ":-")
	if found {
		e.KJVDefinition = strings.TrimSpace(strings.TrimLeft(kjv, "-"))
	}

	var segments []string
	for _, s := range strings.Split(defs, ";") {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}

	i := 0
	var etymology []string
	for i < len(segments)-1 && isEtymology(segments[i]) {
		etymology = append(etymology, segments[i])
		i++
	}
	e.Etymology = strings.Join(etymology, "; ")
	if i < len(segments) {
		e.StrongsDefinition = segments[i]
		e.ExtendedDefinition = strings.Join(segments[i+1:], "; ")
	}
}

func isEtymology(segment string) bool {
	s := strings.ToLower(segment)
	for _, m := range etymologyMarkers {
		if strings.HasPrefix(s, m) {
			return true
		}
	}
	return false
}

// parseGreek splits "etymology; definition <ref> pos. gloss". Without a
// semicolon the whole line is definition. A usage part that does not match
// the reference pattern becomes the gloss unchanged.
func parseGreek(e *models.StrongsEntry, line string) {
	def := line
	if ety, rest, found := strings.Cut(line, ";"); found {
		e.Etymology = strings.TrimSpace(ety)
		def = strings.TrimSpace(rest)
	}

	text, usage, found := strings.Cut(def, "<")
	e.StrongsDefinition = strings.TrimSpace(text)
	if !found {
		return
	}

	usage = "<" + strings.TrimSpace(usage)
	if m := greekUsage.FindStringSubmatch(usage); m != nil {
		e.ScriptureReference = strings.TrimSpace(m[1])
		e.PartOfSpeech = strings.TrimSpace(m[2])
		e.EnglishGloss = strings.TrimSpace(m[3])
		return
	}
	e.EnglishGloss = usage
}
