package models

import (
	"bytes"
	"encoding/json"
)

// Word is one token of a verse: text, Strong's number, morphology code,
// lemma and part of speech, in that order.
type Word [5]string

// Verse is the ordered list of words in a verse.
type Verse []Word

// Chapter is the ordered list of verses in a chapter.
type Chapter []Verse

// Book is a named list of chapters.
type Book struct {
	Name     string
	Chapters []Chapter
}

// Bible is an ordered collection of books. It marshals to a JSON object keyed
// by book name with the books in their original order.
type Bible struct {
	Books []Book
}

// Book returns the book with the given name.
func (b Bible) Book(name string) (Book, bool) {
	for _, book := range b.Books {
		if book.Name == name {
			return book, true
		}
	}
	return Book{}, false
}

// MarshalJSON implements json.Marshaler.
func (b Bible) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, book := range b.Books {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(book.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		chapters := book.Chapters
		if chapters == nil {
			chapters = []Chapter{}
		}
		if err := enc.Encode(chapters); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
