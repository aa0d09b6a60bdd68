// Package bible converts a book/chapter/verse/word XML text into the nested
// JSON arrays the reading tools load.
package bible

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"scripture/internal/logger"
	"scripture/pkg/models"
)

type xmlText struct {
	Books []xmlBook `xml:"book"`
}

type xmlBook struct {
	Num      string       `xml:"num,attr"`
	Chapters []xmlChapter `xml:"chapter"`
}

type xmlChapter struct {
	Verses []xmlVerse `xml:"verse"`
}

type xmlVerse struct {
	Words []xmlWord `xml:"w"`
}

type xmlWord struct {
	Text    string `xml:",chardata"`
	Strongs string `xml:"strongs,attr"`
	Morph   string `xml:"morph,attr"`
	Lemma   string `xml:"lemma,attr"`
	POS     string `xml:"pos,attr"`
}

// Report counts what a conversion produced.
type Report struct {
	Books    int
	Chapters int
	Verses   int
	Words    int
	// Skipped lists book codes with no entry in the book table.
	Skipped []string
}

// Converter turns XML into models.Bible.
type Converter struct {
	log zerolog.Logger
}

// NewConverter returns a Converter.
func NewConverter() *Converter {
	return &Converter{log: logger.WithComponent("bible")}
}

// Convert reads one XML document. Only w elements that are direct children of
// a verse are taken. Books whose code is not in the table are logged, left out
// of the result and listed in Report.Skipped.
func (c *Converter) Convert(r io.Reader) (models.Bible, Report, error) {
	var doc xmlText
	var report Report
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return models.Bible{}, report, fmt.Errorf("failed to parse XML: %w", err)
	}

	out := models.Bible{Books: make([]models.Book, 0, len(doc.Books))}
	for _, b := range doc.Books {
		name, ok := BookName(b.Num)
		if !ok {
			c.log.Warn().Str("code", b.Num).Msg("Unknown book code, skipping book")
			report.Skipped = append(report.Skipped, b.Num)
			continue
		}

		book := models.Book{Name: name, Chapters: make([]models.Chapter, 0, len(b.Chapters))}
		for _, ch := range b.Chapters {
			chapter := make(models.Chapter, 0, len(ch.Verses))
			for _, v := range ch.Verses {
				verse := make(models.Verse, 0, len(v.Words))
				for _, w := range v.Words {
					verse = append(verse, models.Word{w.Text, w.Strongs, w.Morph, w.Lemma, w.POS})
				}
				report.Words += len(verse)
				chapter = append(chapter, verse)
			}
			report.Verses += len(chapter)
			book.Chapters = append(book.Chapters, chapter)
		}
		report.Chapters += len(book.Chapters)
		out.Books = append(out.Books, book)
	}
	report.Books = len(out.Books)

	c.log.Info().
		Int("books", report.Books).
		Int("chapters", report.Chapters).
		Int("verses", report.Verses).
		Int("words", report.Words).
		Int("skipped", len(report.Skipped)).
		Msg("Converted XML")
	return out, report, nil
}

// ConvertFile reads the XML file at path.
func (c *Converter) ConvertFile(path string) (models.Bible, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Bible{}, Report{}, fmt.Errorf("XML file not found at %q: %w", path, err)
	}
	defer f.Close()
	return c.Convert(f)
}
