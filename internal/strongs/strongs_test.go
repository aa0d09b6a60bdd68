package strongs

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseHebrewEntry(t *testing.T) {
	res, err := NewParser(Hebrew).Parse(strings.NewReader("H0001 אָב ab {awb}\nfather; a founder:-chief, father."))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Entries) != 1 || len(res.Skipped) != 0 {
		t.Fatalf("entries = %d, skipped = %d", len(res.Entries), len(res.Skipped))
	}
	e := res.Entries[0]
	if e.StrongNumber != "H0001" {
		t.Errorf("StrongNumber = %q", e.StrongNumber)
	}
	if e.StrongsDefinition != "father" {
		t.Errorf("StrongsDefinition = %q", e.StrongsDefinition)
	}
	if e.KJVDefinition != "chief, father." {
		t.Errorf("KJVDefinition = %q", e.KJVDefinition)
	}
	if e.OriginalWord != "אָב" || e.Transliteration != "ab" || e.Pronunciation != "awb" {
		t.Errorf("header = %+v", e)
	}
	if e.ExtendedDefinition != "a founder" {
		t.Errorf("ExtendedDefinition = %q", e.ExtendedDefinition)
	}
}

func TestParseHebrewEtymology(t *testing.T) {
	p := NewParser(Hebrew)
	tests := []struct {
		line     string
		ety      string
		def      string
		extended string
		kjv      string
	}{
		{"from 1; father of (i.e. leader of) the bands:-Abiasaph.", "from 1", "father of (i.e. leader of) the bands", "", "Abiasaph."},
		{"a primitive root; to perish:--be lost, perish.", "a primitive root", "to perish", "", "be lost, perish."},
		{"probably from 5; a reed", "probably from 5", "a reed", "", ""},
		{"green plant; grass; herb", "", "green plant", "grass; herb", ""},
		{"from 2", "", "from 2", "", ""},
	}
	for _, tt := range tests {
		e, err := p.ParseEntry("1 word tr {pr}", tt.line)
		if err != nil {
			t.Fatalf("ParseEntry(%q): %v", tt.line, err)
		}
		got := []string{e.Etymology, e.StrongsDefinition, e.ExtendedDefinition, e.KJVDefinition}
		want := []string{tt.ety, tt.def, tt.extended, tt.kjv}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ParseEntry(%q) = %q, want %q", tt.line, got, want)
		}
		if e.StrongNumber != "H1" {
			t.Errorf("StrongNumber = %q, want H1", e.StrongNumber)
		}
	}
}

func TestParseGreekEntry(t *testing.T) {
	p := NewParser(Greek)
	e, err := p.ParseEntry("1 Α A {al'-fah}", "of Hebrew origin; the first letter of the alphabet <Rev 1:8> n. Alpha")
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	want := []string{"G1", "of Hebrew origin", "the first letter of the alphabet", "Rev 1:8", "n", "Alpha"}
	got := []string{e.StrongNumber, e.Etymology, e.StrongsDefinition, e.ScriptureReference, e.PartOfSpeech, e.EnglishGloss}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}

	e, err = p.ParseEntry("G2 Ἀαρών Aaron {ah-ar-ohn'}", "Aaron, the brother of Moses <unparsed")
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	if e.StrongNumber != "G2" || e.Etymology != "" || e.StrongsDefinition != "Aaron, the brother of Moses" || e.EnglishGloss != "<unparsed" {
		t.Errorf("fallback entry = %+v", e)
	}
}

func TestParseSkipsMalformedBlocks(t *testing.T) {
	input := strings.Join([]string{
		"H0001 אָב ab {awb}\nfather; a founder:-chief, father.",
		"H0002 אַב ab {ab}\nfather:-father.\nH0003 אֵב eb {abe}\na green plant:-greenness, fruit.",
		"H0004 odd block with three lines\nline two\nline three",
		"X\ndefinition without headword",
	}, "\n\n  \n")

	res, err := NewParser(Hebrew).Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Entries) != 3 {
		t.Errorf("entries = %d, want 3", len(res.Entries))
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("skipped = %d, want 2", len(res.Skipped))
	}
	for _, err := range res.Skipped {
		if !errors.Is(err, ErrMalformedBlock) {
			t.Errorf("skip error %v does not wrap ErrMalformedBlock", err)
		}
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := NewParser(Greek).ParseFile(filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestRekeyLastWriteWins(t *testing.T) {
	records := []map[string]any{
		{"strong_number": "H1", "v": 1.0},
		{"strong_number": "G1", "v": 2.0},
		{"strong_number": "H1", "v": 3.0},
		{"v": 4.0},
	}
	out, skipped := Rekey(records, DefaultKeyField)
	if len(out) != 2 || skipped != 1 {
		t.Fatalf("len = %d, skipped = %d", len(out), skipped)
	}
	if out["H1"]["v"] != 3.0 {
		t.Errorf("H1 = %v, want the later record", out["H1"])
	}
}

func TestMissingKeys(t *testing.T) {
	have := map[string]any{"H1": nil, "G1": nil}
	greek := map[string]any{"G1": nil, "G3": nil, "G2": nil}
	hebrew := map[string]any{"H1": nil, "H9": nil}
	got := MissingKeys(have, greek, hebrew)
	want := []string{"G2", "G3", "H9"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissingKeys = %v, want %v", got, want)
	}
}
