// Package labels maps the Korean folder names used for the scanned commentary
// volumes to the canonical English labels used for OCR output.
package labels

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var books = map[string]string{
	"01_창세기":        "01_Genesis",
	"02_출애굽기":       "02_Exodus",
	"03_레위기":        "03_Leviticus",
	"04_민수기":        "04_Numbers",
	"05_신명기":        "05_Deuteronomy",
	"06_여호수아":       "06_Joshua",
	"07_사사기":        "07_Judges",
	"08_룻기":         "08_Ruth",
	"09_사무엘상":       "09_1Samuel",
	"10_사무엘하":       "10_2Samuel",
	"11_열왕기상":       "11_1Kings",
	"12_열왕기하":       "12_2Kings",
	"13_역대상":        "13_1Chronicles",
	"14_역대하":        "14_2Chronicles",
	"15_에스라":        "15_Ezra",
	"16_느헤미야":       "16_Nehemiah",
	"17_에스더":        "17_Esther",
	"18_욥기":         "18_Job",
	"19_시편":         "19_Psalms",
	"20_잠언":         "20_Proverbs",
	"21_전도서":        "21_Ecclesiastes",
	"22_아가":         "22_SongOfSongs",
	"23_이사야":        "23_Isaiah",
	"24_예레미야":       "24_Jeremiah",
	"25_예레미야애가":     "25_Lamentations",
	"26_에스겔":        "26_Ezekiel",
	"27_다니엘":        "27_Daniel",
	"28_호세아":        "28_Hosea",
	"29_요엘":         "29_Joel",
	"30_아모스":        "30_Amos",
	"31_오바댜":        "31_Obadiah",
	"32_요나":         "32_Jonah",
	"33_미가":         "33_Micah",
	"34_나훔":         "34_Nahum",
	"35_하박국":        "35_Habakkuk",
	"36_스바냐":        "36_Zephaniah",
	"37_학개":         "37_Haggai",
	"38_스가랴":        "38_Zechariah",
	"39_말라기":        "39_Malachi",
	"40_마태복음":       "40_Matthew",
	"41_마가복음":       "41_Mark",
	"42_누가복음":       "42_Luke",
	"43_요한복음":       "43_John",
	"44_사도행전":       "44_Acts",
	"45_로마서":        "45_Romans",
	"46_고린도전서":      "46_1Corinthians",
	"47_고린도후서":      "47_2Corinthians",
	"48_갈라디아서":      "48_Galatians",
	"49_에베소서":       "49_Ephesians",
	"50_빌립보서":       "50_Philippians",
	"51_골로새서":       "51_Colossians",
	"52_데살로니가전서":    "52_1Thessalonians",
	"53_데살로니가후서":    "53_2Thessalonians",
	"54_디모데전서":      "54_1Timothy",
	"55_디모데후서":      "55_2Timothy",
	"56_디도서":        "56_Titus",
	"57_빌레몬서":       "57_Philemon",
	"58_히브리서":       "58_Hebrews",
	"59_야고보서":       "59_James",
	"60_베드로전후,유다서": "60_1Peter_2Peter_Jude",
	"62_요한1,2,3":    "62_1John_2John_3John",
	"66_요한계시록":      "66_Revelation",
}

// Table is a read-only folder-name to label mapping. Keys are held in NFC so
// that names read back from the bucket in decomposed form still match.
type Table struct {
	m map[string]string
}

// Default returns the built-in table of Bible book folders.
func Default() Table {
	return New(books)
}

// New builds a table from an arbitrary mapping. The input map is copied.
func New(m map[string]string) Table {
	t := Table{m: make(map[string]string, len(m))}
	for k, v := range m {
		t.m[norm.NFC.String(k)] = v
	}
	return t
}

// Len returns the number of entries.
func (t Table) Len() int {
	return len(t.m)
}

// Lookup returns the canonical label for a folder name.
func (t Table) Lookup(name string) (string, bool) {
	label, ok := t.m[norm.NFC.String(strings.TrimSuffix(name, "/"))]
	return label, ok
}

// Canonical returns the mapped label or the folder name itself when the table
// has no entry for it.
func (t Table) Canonical(name string) string {
	if label, ok := t.Lookup(name); ok {
		return label
	}
	return norm.NFC.String(strings.TrimSuffix(name, "/"))
}

// Labels returns every canonical label in sorted order.
func (t Table) Labels() []string {
	out := make([]string, 0, len(t.m))
	for _, v := range t.m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Number returns the leading book number of a label or folder name, e.g. 18
// for "18_Job". The second result is false when there is no numeric prefix.
func Number(name string) (int, bool) {
	head, _, found := strings.Cut(name, "_")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return n, true
}
