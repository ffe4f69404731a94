package translate

import "github.com/jantznick/easy-song-sub001/internal/song"

// MissingLanguages inspects an existing final artifact against the analyzed
// artifact and returns the supported languages that still need translation,
// in the supported-list order.
//
// The check is per-language: an artifact complete for English but missing
// French reports only French. A line/section count mismatch with the
// analyzed artifact invalidates the whole file for incremental reuse and
// every language is reported missing. A nil existing artifact means nothing
// has been translated yet.
//
// A language is complete when every line carries its translation entry with
// non-empty text and every section carries its title entry with non-empty
// text. Explanations may be null; the writer always emits their keys, so a
// decoded nil explanation counts as present.
func MissingLanguages(existing *song.Song, analyzed *song.AnalyzedSong, supported []string) []string {
	if !reusable(existing, analyzed) {
		return append([]string(nil), supported...)
	}
	var missing []string
	for _, lang := range supported {
		if !languageComplete(existing, lang) {
			missing = append(missing, lang)
		}
	}
	return missing
}

// reusable reports whether the existing artifact's line and section counts
// still match the analyzed artifact, the invariant every incremental merge
// depends on.
func reusable(existing *song.Song, analyzed *song.AnalyzedSong) bool {
	if existing == nil {
		return false
	}
	return len(existing.Lyrics) == len(analyzed.Lyrics) &&
		len(existing.StructuredSections) == len(analyzed.StructuredSections)
}

func languageComplete(s *song.Song, lang string) bool {
	for _, line := range s.Lyrics {
		entry, ok := line.Translations[lang]
		if !ok || entry.Translation == "" {
			return false
		}
	}
	for _, sec := range s.StructuredSections {
		entry, ok := sec.Translations[lang]
		if !ok || entry.Title == "" {
			return false
		}
	}
	return true
}
