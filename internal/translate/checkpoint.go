package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jantznick/easy-song-sub001/internal/align"
	"github.com/jantznick/easy-song-sub001/internal/metrics"
	"github.com/jantznick/easy-song-sub001/internal/song"
	"github.com/jantznick/easy-song-sub001/internal/store"
)

// Checkpointer drives translation to completion one language at a time.
// After each language's merge the whole artifact is persisted, so a crash
// after k of n languages loses at most the in-flight language's work.
type Checkpointer struct {
	store      *store.Store
	translator Translator
	languages  []string
}

// NewCheckpointer returns a checkpointer translating into the given
// supported languages, in that order.
func NewCheckpointer(st *store.Store, tr Translator, languages []string) *Checkpointer {
	return &Checkpointer{store: st, translator: tr, languages: languages}
}

// Run brings the final artifact for the analyzed song to completion.
//
// An existing on-disk artifact is loaded and reused when its line/section
// counts still match the analysis; languages already complete are left
// untouched and never re-translated. The original language is filled by
// copying the corrected text and analysis explanations, never by calling
// the translator. Each remaining language is translated, merged by index
// after a length check, and the artifact is written to disk before the next
// language starts.
func (c *Checkpointer) Run(ctx context.Context, analyzed *song.AnalyzedSong) (*song.Song, error) {
	existing, err := c.loadExisting(analyzed.VideoID)
	if err != nil {
		return nil, err
	}

	missing := MissingLanguages(existing, analyzed, c.languages)
	if len(missing) == 0 {
		slog.Info("translation already complete", "video_id", analyzed.VideoID,
			"languages", len(c.languages))
		return existing, nil
	}

	cur := existing
	if !reusable(cur, analyzed) {
		cur = skeleton(analyzed)
	}

	missingSet := make(map[string]bool, len(missing))
	for _, lang := range missing {
		missingSet[lang] = true
	}

	for _, lang := range c.languages {
		if !missingSet[lang] {
			continue
		}
		if lang == analyzed.OriginalLanguage {
			copyOriginal(cur, analyzed, lang)
		} else if err := c.translateInto(ctx, cur, analyzed, lang); err != nil {
			return nil, &LanguageError{Language: lang, Err: err}
		}
		// Persist before moving to the next language; this write is the
		// checkpoint that makes resumption lose at most one language.
		if err := c.store.Write(store.StageFinal, analyzed.VideoID, cur); err != nil {
			return nil, &LanguageError{Language: lang, Err: err}
		}
		metrics.LanguagesMergedTotal.Inc()
		slog.Info("language merged", "video_id", analyzed.VideoID, "language", lang)
	}

	return cur, nil
}

// MissingFor reports the languages the on-disk final artifact still lacks.
func (c *Checkpointer) MissingFor(analyzed *song.AnalyzedSong) ([]string, error) {
	existing, err := c.loadExisting(analyzed.VideoID)
	if err != nil {
		return nil, err
	}
	return MissingLanguages(existing, analyzed, c.languages), nil
}

func (c *Checkpointer) loadExisting(videoID string) (*song.Song, error) {
	var existing song.Song
	err := c.store.Read(store.StageFinal, videoID, &existing)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load final artifact: %w", err)
	}
	// A damaged artifact can decode with null translation maps. Those
	// languages just read as missing; the maps must be writable for the
	// merge that fills them back in.
	for i := range existing.Lyrics {
		if existing.Lyrics[i].Translations == nil {
			existing.Lyrics[i].Translations = make(map[string]song.LineTranslation)
		}
	}
	for i := range existing.StructuredSections {
		if existing.StructuredSections[i].Translations == nil {
			existing.StructuredSections[i].Translations = make(map[string]song.SectionTranslation)
		}
	}
	return &existing, nil
}

// skeleton builds an empty final artifact on the analysis counts. Section
// timestamps are recomputed as the envelope of each section's declared
// lines over the analyzed lyrics, restricted so sections cannot claim each
// other's repeated lines; sections with no alignable lines keep the
// analysis-stage values.
func skeleton(analyzed *song.AnalyzedSong) *song.Song {
	s := &song.Song{
		VideoID:          analyzed.VideoID,
		Title:            analyzed.Title,
		Artist:           analyzed.Artist,
		ThumbnailURL:     analyzed.ThumbnailURL,
		OriginalLanguage: analyzed.OriginalLanguage,
	}

	segments := make([]song.Segment, len(analyzed.Lyrics))
	for i, line := range analyzed.Lyrics {
		segments[i] = song.Segment{Text: line.Text, StartMs: line.StartMs, EndMs: line.EndMs}
		s.Lyrics = append(s.Lyrics, song.Line{
			Text:         line.Text,
			StartMs:      line.StartMs,
			EndMs:        line.EndMs,
			Translations: make(map[string]song.LineTranslation),
		})
	}

	matcher := align.NewMatcher(segments)
	for _, sec := range analyzed.StructuredSections {
		out := song.Section{
			StartMs:      sec.StartMs,
			EndMs:        sec.EndMs,
			Lines:        sec.Lines,
			Translations: make(map[string]song.SectionTranslation),
		}
		if len(sec.Lines) > 0 {
			if start, end, ok := matcher.Section(sec.Lines).Envelope(sec.Lines); ok {
				out.StartMs, out.EndMs = start, end
			}
		}
		s.StructuredSections = append(s.StructuredSections, out)
	}
	return s
}

// copyOriginal fills the source language's entries from the corrected
// analysis text. No translation call is ever made for the source language.
func copyOriginal(cur *song.Song, analyzed *song.AnalyzedSong, lang string) {
	for i, line := range analyzed.Lyrics {
		cur.Lyrics[i].Translations[lang] = song.LineTranslation{
			Translation: line.Text,
			Explanation: line.Explanation,
		}
	}
	for i, sec := range analyzed.StructuredSections {
		cur.StructuredSections[i].Translations[lang] = song.SectionTranslation{
			Title:              sec.Title,
			SectionExplanation: sec.SectionExplanation,
		}
	}
}

// translateInto invokes the collaborator for one language and merges the
// results by index. A length mismatch aborts the merge: silently truncating
// or padding would corrupt the timestamp alignment.
func (c *Checkpointer) translateInto(ctx context.Context, cur *song.Song, analyzed *song.AnalyzedSong, lang string) error {
	lines, err := c.translator.TranslateLines(ctx, analyzed.Lyrics, lang, analyzed.OriginalLanguage)
	if err != nil {
		return fmt.Errorf("translate lines: %w", err)
	}
	if len(lines) != len(analyzed.Lyrics) {
		return fmt.Errorf("translator returned %d lines, want %d", len(lines), len(analyzed.Lyrics))
	}

	sections, err := c.translator.TranslateSections(ctx, analyzed.StructuredSections, lang, analyzed.OriginalLanguage)
	if err != nil {
		return fmt.Errorf("translate sections: %w", err)
	}
	if len(sections) != len(analyzed.StructuredSections) {
		return fmt.Errorf("translator returned %d sections, want %d", len(sections), len(analyzed.StructuredSections))
	}

	for i, tr := range lines {
		cur.Lyrics[i].Translations[lang] = tr
	}
	for i, tr := range sections {
		cur.StructuredSections[i].Translations[lang] = tr
	}
	return nil
}
