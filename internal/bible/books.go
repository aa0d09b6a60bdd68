package bible

// bookNames maps the OSIS-style book codes used in the XML num attribute to
// English book names.
var bookNames = map[string]string{
	"Gen":    "Genesis",
	"Exod":   "Exodus",
	"Lev":    "Leviticus",
	"Num":    "Numbers",
	"Deut":   "Deuteronomy",
	"Josh":   "Joshua",
	"Judg":   "Judges",
	"Ruth":   "Ruth",
	"1Sam":   "I Samuel",
	"2Sam":   "II Samuel",
	"1Kgs":   "I Kings",
	"2Kgs":   "II Kings",
	"1Chr":   "I Chronicles",
	"2Chr":   "II Chronicles",
	"Ezra":   "Ezra",
	"Neh":    "Nehemiah",
	"Esth":   "Esther",
	"Job":    "Job",
	"Ps":     "Psalms",
	"Prov":   "Proverbs",
	"Eccl":   "Ecclesiastes",
	"Song":   "Song of Solomon",
	"Isa":    "Isaiah",
	"Jer":    "Jeremiah",
	"Lam":    "Lamentations",
	"Ezek":   "Ezekiel",
	"Dan":    "Daniel",
	"Hos":    "Hosea",
	"Joel":   "Joel",
	"Amos":   "Amos",
	"Obad":   "Obadiah",
	"Jonah":  "Jonah",
	"Mic":    "Micah",
	"Nah":    "Nahum",
	"Hab":    "Habakkuk",
	"Zeph":   "Zephaniah",
	"Hag":    "Haggai",
	"Zech":   "Zechariah",
	"Mal":    "Malachi",
	"Matt":   "Matthew",
	"Mark":   "Mark",
	"Luke":   "Luke",
	"John":   "John",
	"Acts":   "Acts",
	"Rom":    "Romans",
	"1Cor":   "I Corinthians",
	"2Cor":   "II Corinthians",
	"Gal":    "Galatians",
	"Eph":    "Ephesians",
	"Phil":   "Philippians",
	"Col":    "Colossians",
	"1Thess": "I Thessalonians",
	"2Thess": "II Thessalonians",
	"1Tim":   "I Timothy",
	"2Tim":   "II Timothy",
	"Titus":  "Titus",
	"Phlm":   "Philemon",
	"Heb":    "Hebrews",
	"Jas":    "James",
	"1Pet":   "I Peter",
	"2Pet":   "II Peter",
	"1John":  "I John",
	"2John":  "II John",
	"3John":  "III John",
	"Jude":   "Jude",
	"Rev":    "Revelation",
}

// BookName returns the English name for an XML book code.
func BookName(code string) (string, bool) {
	name, ok := bookNames[code]
	return name, ok && name != ""
}
