package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jantznick/easy-song-sub001/internal/song"
)

const translateLinesSystemPrompt = `You are a song translator. You receive a
JSON array of lyric lines with optional explanations. Translate each line
into the requested target language, keeping imagery and register. Respond
with JSON only: {"lines": [{"translation": "...", "explanation": "<translated
explanation, or null when the input had none>"}]}. Return exactly one entry
per input line, in input order.`

const translateSectionsSystemPrompt = `You are a song translator. You receive
a JSON array of song sections with titles and explanations. Translate both
into the requested target language. Respond with JSON only: {"sections":
[{"title": "...", "sectionExplanation": "..."}]}. Return exactly one entry
per input section, in input order.`

// TranslateLines translates every lyric line into targetLang. Ordering of
// the result matches the input; the caller validates the length before
// merging.
func (c *Client) TranslateLines(ctx context.Context, lines []song.AnalyzedLine, targetLang, sourceLang string) ([]song.LineTranslation, error) {
	type lineInput struct {
		Text        string  `json:"text"`
		Explanation *string `json:"explanation"`
	}
	inputs := make([]lineInput, len(lines))
	for i, l := range lines {
		inputs[i] = lineInput{Text: l.Text, Explanation: l.Explanation}
	}
	payload, err := json.Marshal(inputs)
	if err != nil {
		return nil, err
	}

	user := fmt.Sprintf("Source language: %s\nTarget language: %s\nLines:\n%s",
		sourceLang, targetLang, payload)

	var out struct {
		Lines []song.LineTranslation `json:"lines"`
	}
	if err := c.chatJSON(ctx, c.translationModel, translateLinesSystemPrompt, user, &out); err != nil {
		return nil, fmt.Errorf("translate lines to %s: %w", targetLang, err)
	}
	return out.Lines, nil
}

// TranslateSections translates every section title and explanation into
// targetLang, preserving input order.
func (c *Client) TranslateSections(ctx context.Context, sections []song.AnalyzedSection, targetLang, sourceLang string) ([]song.SectionTranslation, error) {
	type sectionInput struct {
		Title              string `json:"title"`
		SectionExplanation string `json:"sectionExplanation"`
	}
	inputs := make([]sectionInput, len(sections))
	for i, s := range sections {
		inputs[i] = sectionInput{Title: s.Title, SectionExplanation: s.SectionExplanation}
	}
	payload, err := json.Marshal(inputs)
	if err != nil {
		return nil, err
	}

	user := fmt.Sprintf("Source language: %s\nTarget language: %s\nSections:\n%s",
		sourceLang, targetLang, payload)

	var out struct {
		Sections []song.SectionTranslation `json:"sections"`
	}
	if err := c.chatJSON(ctx, c.translationModel, translateSectionsSystemPrompt, user, &out); err != nil {
		return nil, fmt.Errorf("translate sections to %s: %w", targetLang, err)
	}
	return out.Sections, nil
}
