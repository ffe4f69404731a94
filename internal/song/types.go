// Package song defines the stage artifact data model shared by the whole
// pipeline: timestamped transcript segments, the analyzed lyrics/sections
// returned by the language model, and the accumulating multi-language song
// artifact that translation builds one language at a time.
package song

// Segment is one timestamped line of the original transcript. Segments are
// the canonical time axis for the pipeline: once written for a video ID they
// are never modified, and every later stage reattaches its text to them.
type Segment struct {
	Text    string `json:"text"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
}

// VideoMeta carries the display metadata fetched during acquisition.
type VideoMeta struct {
	Title        string `json:"title"`
	Artist       string `json:"artist"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// TranscribedSong is the transcribed/{id}.json artifact: the raw segments
// enriched with video metadata and the detected language.
type TranscribedSong struct {
	VideoID      string    `json:"videoId"`
	Title        string    `json:"title"`
	Artist       string    `json:"artist"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Language     string    `json:"language"`
	Segments     []Segment `json:"segments"`
}

// AnalyzedLine is one corrected lyric line. Text may differ from the original
// segment text (spelling and punctuation fixes) but stays alignable to
// exactly one segment; the timestamps are the matched segment's, or 0/0 when
// no segment matched.
type AnalyzedLine struct {
	Text        string  `json:"text"`
	StartMs     int64   `json:"start_ms"`
	EndMs       int64   `json:"end_ms"`
	Explanation *string `json:"explanation"`
}

// AnalyzedSection is one structural unit of the song (verse, chorus, ...).
// Lines holds the original-language line texts the section groups; the
// timestamps are the envelope of those lines' matched segments.
type AnalyzedSection struct {
	Title              string   `json:"title"`
	SectionExplanation string   `json:"sectionExplanation"`
	StartMs            int64    `json:"start_ms"`
	EndMs              int64    `json:"end_ms"`
	Lines              []string `json:"lines,omitempty"`
}

// AnalyzedSong is the analyzed/{id}.json artifact.
type AnalyzedSong struct {
	VideoID            string            `json:"videoId"`
	Title              string            `json:"title"`
	Artist             string            `json:"artist"`
	ThumbnailURL       string            `json:"thumbnailUrl"`
	OriginalLanguage   string            `json:"originalLanguage"`
	Lyrics             []AnalyzedLine    `json:"lyrics"`
	StructuredSections []AnalyzedSection `json:"structuredSections"`
}

// Analysis is the language model's response shape for the analysis call,
// before timestamps have been reattached.
type Analysis struct {
	OriginalLanguage string            `json:"originalLanguage"`
	Lyrics           []AnalysisLine    `json:"lyrics"`
	Sections         []AnalysisSection `json:"structuredSections"`
}

// AnalysisLine is one corrected line as returned by analysis.
type AnalysisLine struct {
	Text        string  `json:"text"`
	Explanation *string `json:"explanation"`
}

// AnalysisSection is one section as returned by analysis.
type AnalysisSection struct {
	Title              string   `json:"title"`
	SectionExplanation string   `json:"sectionExplanation"`
	Lines              []string `json:"lines"`
}

// LineTranslation is one language's rendering of a lyric line. Explanation
// stays a pointer so a null from the model round-trips; the key is always
// emitted on write.
type LineTranslation struct {
	Translation string  `json:"translation"`
	Explanation *string `json:"explanation"`
}

// SectionTranslation is one language's rendering of a section heading.
type SectionTranslation struct {
	Title              string `json:"title"`
	SectionExplanation string `json:"sectionExplanation"`
}

// Line is one lyric line of the final artifact: corrected text, its
// timestamps, and the per-language translation record.
type Line struct {
	Text         string                     `json:"text"`
	StartMs      int64                      `json:"start_ms"`
	EndMs        int64                      `json:"end_ms"`
	Translations map[string]LineTranslation `json:"translations"`
}

// Section is one section of the final artifact.
type Section struct {
	StartMs      int64                         `json:"start_ms"`
	EndMs        int64                         `json:"end_ms"`
	Lines        []string                      `json:"lines,omitempty"`
	Translations map[string]SectionTranslation `json:"translations"`
}

// Song is the final/{id}.json artifact. It is created as a skeleton when
// translation begins, mutated once per target language, and persisted after
// every single-language merge, which makes it the unit of resumability.
type Song struct {
	VideoID            string    `json:"videoId"`
	Title              string    `json:"title"`
	Artist             string    `json:"artist"`
	ThumbnailURL       string    `json:"thumbnailUrl"`
	OriginalLanguage   string    `json:"originalLanguage"`
	Lyrics             []Line    `json:"lyrics"`
	StructuredSections []Section `json:"structuredSections"`
}
