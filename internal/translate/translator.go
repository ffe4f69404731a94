// Package translate drives the per-language translation loop with
// crash-safe checkpointing, and decides which languages a partially written
// final artifact is still missing.
package translate

import (
	"context"
	"fmt"

	"github.com/jantznick/easy-song-sub001/internal/song"
)

// Translator is the external translation collaborator. Both methods must
// preserve input ordering; the merge is index-based and validates lengths
// before touching the artifact.
type Translator interface {
	TranslateLines(ctx context.Context, lines []song.AnalyzedLine, targetLang, sourceLang string) ([]song.LineTranslation, error)
	TranslateSections(ctx context.Context, sections []song.AnalyzedSection, targetLang, sourceLang string) ([]song.SectionTranslation, error)
}

// LanguageError identifies which language's translation failed, so the
// caller can report the in-flight language while completed ones stay
// persisted.
type LanguageError struct {
	Language string
	Err      error
}

func (e *LanguageError) Error() string {
	return fmt.Sprintf("language %s: %v", e.Language, e.Err)
}

func (e *LanguageError) Unwrap() error { return e.Err }
