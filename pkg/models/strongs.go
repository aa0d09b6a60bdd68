package models

// StrongsEntry is one record of the Strong's concordance dictionary. Hebrew
// entries fill the KJV and extended definitions, Greek entries fill the
// scripture reference, part of speech and gloss.
type StrongsEntry struct {
	StrongNumber      string `json:"strong_number"`      // Language letter plus number, e.g. "H0001"
	OriginalWord      string `json:"original_word"`      // Headword in Hebrew or Greek script
	Transliteration   string `json:"transliteration"`    // Latin transliteration, may be several tokens
	Pronunciation     string `json:"pronunciation"`      // Pronunciation without the surrounding braces
	Etymology         string `json:"etymology"`          // Derivation, e.g. "from 1"
	StrongsDefinition string `json:"strongs_definition"` // Short definition

	// Hebrew
	KJVDefinition      string `json:"kjv_definition,omitempty"`      // Renderings in the KJV, after ":-"
	ExtendedDefinition string `json:"extended_definition,omitempty"` // Remaining definition segments

	// Greek
	ScriptureReference string `json:"scripture_reference,omitempty"` // Reference inside <...>
	PartOfSpeech       string `json:"part_of_speech,omitempty"`
	EnglishGloss       string `json:"english_gloss,omitempty"`
}
