package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/jantznick/easy-song-sub001/internal/song"
)

const analyzeSystemPrompt = `You are a lyric analyst. You receive the raw
transcript of a song, one line per numbered entry. Respond with JSON only:
{
  "originalLanguage": "<ISO 639-1 code>",
  "lyrics": [{"text": "<corrected line>", "explanation": "<note on meaning or wordplay, or null>"}],
  "structuredSections": [{"title": "<section name>", "sectionExplanation": "<what this section does>", "lines": ["<corrected line>", ...]}]
}
Return exactly one lyrics entry per input line, in input order. Correct only
spelling and punctuation; keep every word and its order. Each section's
"lines" must quote its corrected lines verbatim.`

// Analyze sends the transcript to the language model and returns the
// corrected lines and section structure. The returned counts are
// authoritative for every later stage.
func (c *Client) Analyze(ctx context.Context, segments []song.Segment, meta song.VideoMeta) (*song.Analysis, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nArtist: %s\n\nTranscript:\n", meta.Title, meta.Artist)
	for i, seg := range segments {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, seg.Text)
	}

	var analysis song.Analysis
	if err := c.chatJSON(ctx, c.analysisModel, analyzeSystemPrompt, sb.String(), &analysis); err != nil {
		return nil, fmt.Errorf("analysis call: %w", err)
	}
	return &analysis, nil
}
