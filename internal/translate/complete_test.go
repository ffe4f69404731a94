package translate

import (
	"testing"

	"github.com/jantznick/easy-song-sub001/internal/song"
)

func strptr(s string) *string { return &s }

func analyzedFixture(lines, sections int) *song.AnalyzedSong {
	a := &song.AnalyzedSong{VideoID: "vid", OriginalLanguage: "es"}
	for i := 0; i < lines; i++ {
		a.Lyrics = append(a.Lyrics, song.AnalyzedLine{Text: "línea", StartMs: int64(i) * 1000, EndMs: int64(i+1) * 1000})
	}
	for i := 0; i < sections; i++ {
		a.StructuredSections = append(a.StructuredSections, song.AnalyzedSection{Title: "Sección", SectionExplanation: "..."})
	}
	return a
}

func finalFixture(analyzed *song.AnalyzedSong, langs ...string) *song.Song {
	s := &song.Song{VideoID: analyzed.VideoID, OriginalLanguage: analyzed.OriginalLanguage}
	for _, line := range analyzed.Lyrics {
		l := song.Line{Text: line.Text, StartMs: line.StartMs, EndMs: line.EndMs,
			Translations: make(map[string]song.LineTranslation)}
		for _, lang := range langs {
			l.Translations[lang] = song.LineTranslation{Translation: "texto"}
		}
		s.Lyrics = append(s.Lyrics, l)
	}
	for range analyzed.StructuredSections {
		sec := song.Section{Translations: make(map[string]song.SectionTranslation)}
		for _, lang := range langs {
			sec.Translations[lang] = song.SectionTranslation{Title: "título"}
		}
		s.StructuredSections = append(s.StructuredSections, sec)
	}
	return s
}

func TestMissingLanguages_NoArtifact(t *testing.T) {
	analyzed := analyzedFixture(3, 1)
	got := MissingLanguages(nil, analyzed, []string{"en", "es", "fr"})
	if len(got) != 3 {
		t.Errorf("nil artifact should miss every language, got %v", got)
	}
}

func TestMissingLanguages_PartialLanguages(t *testing.T) {
	analyzed := analyzedFixture(3, 2)
	existing := finalFixture(analyzed, "en", "es")

	got := MissingLanguages(existing, analyzed, []string{"en", "es", "fr", "de"})
	if len(got) != 2 || got[0] != "fr" || got[1] != "de" {
		t.Errorf("want [fr de], got %v", got)
	}
}

func TestMissingLanguages_Complete(t *testing.T) {
	analyzed := analyzedFixture(2, 1)
	existing := finalFixture(analyzed, "en", "es")

	if got := MissingLanguages(existing, analyzed, []string{"en", "es"}); len(got) != 0 {
		t.Errorf("complete artifact should miss nothing, got %v", got)
	}
}

func TestMissingLanguages_CountMismatchInvalidatesAll(t *testing.T) {
	analyzed := analyzedFixture(10, 2)
	stale := finalFixture(analyzedFixture(9, 2), "en", "es", "fr")

	got := MissingLanguages(stale, analyzed, []string{"en", "es", "fr"})
	if len(got) != 3 {
		t.Errorf("count mismatch should invalidate every language, got %v", got)
	}
}

func TestMissingLanguages_SectionCountMismatch(t *testing.T) {
	analyzed := analyzedFixture(3, 3)
	stale := finalFixture(analyzedFixture(3, 2), "en")

	got := MissingLanguages(stale, analyzed, []string{"en"})
	if len(got) != 1 {
		t.Errorf("section count mismatch should invalidate, got %v", got)
	}
}

func TestMissingLanguages_EmptyTranslationCountsAsMissing(t *testing.T) {
	analyzed := analyzedFixture(2, 0)
	existing := finalFixture(analyzed, "en")
	existing.Lyrics[1].Translations["en"] = song.LineTranslation{Translation: ""}

	got := MissingLanguages(existing, analyzed, []string{"en"})
	if len(got) != 1 || got[0] != "en" {
		t.Errorf("empty translation text should count as missing, got %v", got)
	}
}

func TestMissingLanguages_SectionTitleRequired(t *testing.T) {
	analyzed := analyzedFixture(1, 1)
	existing := finalFixture(analyzed, "en")
	existing.StructuredSections[0].Translations["en"] = song.SectionTranslation{Title: ""}

	got := MissingLanguages(existing, analyzed, []string{"en"})
	if len(got) != 1 {
		t.Errorf("missing section title should count as missing, got %v", got)
	}
}

func TestMissingLanguages_NullExplanationIsComplete(t *testing.T) {
	analyzed := analyzedFixture(1, 0)
	existing := finalFixture(analyzed, "en")
	existing.Lyrics[0].Translations["en"] = song.LineTranslation{Translation: "line", Explanation: nil}

	if got := MissingLanguages(existing, analyzed, []string{"en"}); len(got) != 0 {
		t.Errorf("null explanation must not block completeness, got %v", got)
	}

	existing.Lyrics[0].Translations["en"] = song.LineTranslation{Translation: "line", Explanation: strptr("note")}
	if got := MissingLanguages(existing, analyzed, []string{"en"}); len(got) != 0 {
		t.Errorf("non-null explanation must not block completeness, got %v", got)
	}
}
