// Package pipeline sequences the four stages for one content identifier:
// acquisition, transcription, analysis, translation. Each stage is skipped
// when its artifact already exists, so re-invoking the pipeline after any
// failure is always safe and strictly monotonic in progress.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jantznick/easy-song-sub001/internal/align"
	"github.com/jantznick/easy-song-sub001/internal/metrics"
	"github.com/jantznick/easy-song-sub001/internal/song"
	"github.com/jantznick/easy-song-sub001/internal/store"
	"github.com/jantznick/easy-song-sub001/internal/translate"
)

// StageError reports which stage failed. Previously persisted artifacts
// stay intact and valid for a subsequent resume attempt.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Orchestrator wires the collaborators to the artifact store.
type Orchestrator struct {
	store        *store.Store
	downloader   Downloader
	transcriber  Transcriber
	analyzer     Analyzer
	checkpointer *translate.Checkpointer

	// ForceRebuild bypasses the existence checks and regenerates every
	// stage. Translation still merges per-language: completed languages are
	// only discarded when the analysis line/section counts actually change.
	ForceRebuild bool
}

// New returns an orchestrator over the given store and collaborators.
func New(st *store.Store, dl Downloader, tr Transcriber, an Analyzer, cp *translate.Checkpointer) *Orchestrator {
	return &Orchestrator{
		store:        st,
		downloader:   dl,
		transcriber:  tr,
		analyzer:     an,
		checkpointer: cp,
	}
}

// Run processes one video ID through every stage, consulting the store to
// skip work that is already done.
func (o *Orchestrator) Run(ctx context.Context, videoID string) (*song.Song, error) {
	slog.Info("pipeline start", "video_id", videoID, "force_rebuild", o.ForceRebuild)

	if err := o.ensureTranscribed(ctx, videoID); err != nil {
		return nil, err
	}
	if err := o.ensureAnalyzed(ctx, videoID); err != nil {
		return nil, err
	}
	final, err := o.runTranslate(ctx, videoID)
	if err != nil {
		return nil, err
	}

	slog.Info("pipeline complete", "video_id", videoID,
		"lines", len(final.Lyrics), "sections", len(final.StructuredSections))
	return final, nil
}

// ensureTranscribed covers the acquisition and transcription stages.
// Acquisition is only attempted when transcription actually has to run;
// retained audio lets a resumed run skip the download entirely.
func (o *Orchestrator) ensureTranscribed(ctx context.Context, videoID string) error {
	if !o.ForceRebuild && o.store.Exists(store.StageTranscribed, videoID) {
		slog.Info("transcription artifact exists, skipping", "video_id", videoID)
		return nil
	}

	audioPath := o.store.AudioPath(videoID)
	var meta song.VideoMeta
	if !o.ForceRebuild && o.store.AudioExists(videoID) {
		slog.Info("audio exists, skipping download", "video_id", videoID)
		if err := o.store.ReadMeta(videoID, &meta); err != nil {
			return &StageError{Stage: "download", Err: err}
		}
	} else {
		start := time.Now()
		fetched, err := o.downloader.Fetch(ctx, videoID, audioPath)
		metrics.RecordStage("download", time.Since(start).Seconds(), err)
		if err != nil {
			return &StageError{Stage: "download", Err: err}
		}
		meta = *fetched
		if err := o.store.WriteMeta(videoID, meta); err != nil {
			return &StageError{Stage: "download", Err: err}
		}
	}

	start := time.Now()
	segments, language, err := o.transcriber.Transcribe(ctx, audioPath, "")
	metrics.RecordStage("transcribe", time.Since(start).Seconds(), err)
	if err != nil {
		return &StageError{Stage: "transcribe", Err: err}
	}
	if len(segments) == 0 {
		return &StageError{Stage: "transcribe", Err: fmt.Errorf("service returned no segments")}
	}

	if err := o.store.Write(store.StageRaw, videoID, segments); err != nil {
		return &StageError{Stage: "transcribe", Err: err}
	}
	transcribed := song.TranscribedSong{
		VideoID:      videoID,
		Title:        meta.Title,
		Artist:       meta.Artist,
		ThumbnailURL: meta.ThumbnailURL,
		Language:     language,
		Segments:     segments,
	}
	if err := o.store.Write(store.StageTranscribed, videoID, transcribed); err != nil {
		return &StageError{Stage: "transcribe", Err: err}
	}
	slog.Info("transcription complete", "video_id", videoID,
		"segments", len(segments), "language", language)
	return nil
}

// ensureAnalyzed runs the language-model analysis and reattaches the
// corrected lines to the original timestamp grid.
func (o *Orchestrator) ensureAnalyzed(ctx context.Context, videoID string) error {
	if !o.ForceRebuild && o.store.Exists(store.StageAnalyzed, videoID) {
		slog.Info("analysis artifact exists, skipping", "video_id", videoID)
		return nil
	}

	var ts song.TranscribedSong
	if err := o.store.Read(store.StageTranscribed, videoID, &ts); err != nil {
		return &StageError{Stage: "analyze", Err: err}
	}

	start := time.Now()
	analysis, err := o.analyzer.Analyze(ctx, ts.Segments, song.VideoMeta{
		Title: ts.Title, Artist: ts.Artist, ThumbnailURL: ts.ThumbnailURL,
	})
	metrics.RecordStage("analyze", time.Since(start).Seconds(), err)
	if err != nil {
		return &StageError{Stage: "analyze", Err: err}
	}
	if len(analysis.Lyrics) == 0 {
		return &StageError{Stage: "analyze", Err: fmt.Errorf("analysis returned no lyrics")}
	}

	analyzed := alignAnalysis(videoID, &ts, analysis)
	if err := o.store.Write(store.StageAnalyzed, videoID, analyzed); err != nil {
		return &StageError{Stage: "analyze", Err: err}
	}
	slog.Info("analysis complete", "video_id", videoID,
		"lines", len(analyzed.Lyrics), "sections", len(analyzed.StructuredSections),
		"language", analyzed.OriginalLanguage)
	return nil
}

func (o *Orchestrator) runTranslate(ctx context.Context, videoID string) (*song.Song, error) {
	var analyzed song.AnalyzedSong
	if err := o.store.Read(store.StageAnalyzed, videoID, &analyzed); err != nil {
		return nil, &StageError{Stage: "translate", Err: err}
	}

	missing, err := o.checkpointer.MissingFor(&analyzed)
	if err != nil {
		return nil, &StageError{Stage: "translate", Err: err}
	}
	if len(missing) > 0 {
		slog.Info("translating missing languages", "video_id", videoID, "languages", missing)
	}

	start := time.Now()
	final, err := o.checkpointer.Run(ctx, &analyzed)
	metrics.RecordStage("translate", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, &StageError{Stage: "translate", Err: err}
	}
	return final, nil
}

// alignAnalysis reattaches each corrected line to the segment it derives
// from. An unmatched line keeps the 0/0 sentinel instead of failing the
// run; section timestamps are the envelope of their declared lines, with
// the search restricted so sections cannot claim each other's lines.
func alignAnalysis(videoID string, ts *song.TranscribedSong, analysis *song.Analysis) *song.AnalyzedSong {
	matcher := align.NewMatcher(ts.Segments)

	out := &song.AnalyzedSong{
		VideoID:          videoID,
		Title:            ts.Title,
		Artist:           ts.Artist,
		ThumbnailURL:     ts.ThumbnailURL,
		OriginalLanguage: analysis.OriginalLanguage,
	}
	if out.OriginalLanguage == "" {
		out.OriginalLanguage = ts.Language
	}

	for _, line := range analysis.Lyrics {
		seg, ok := matcher.Match(line.Text)
		if !ok {
			slog.Warn("line did not align, keeping sentinel timestamps",
				"video_id", videoID, "text", line.Text)
		}
		out.Lyrics = append(out.Lyrics, song.AnalyzedLine{
			Text:        line.Text,
			StartMs:     seg.StartMs,
			EndMs:       seg.EndMs,
			Explanation: line.Explanation,
		})
	}

	for _, sec := range analysis.Sections {
		startMs, endMs, ok := matcher.Section(sec.Lines).Envelope(sec.Lines)
		if !ok {
			slog.Warn("section did not align, keeping sentinel timestamps",
				"video_id", videoID, "title", sec.Title)
			startMs, endMs = 0, 0
		}
		out.StructuredSections = append(out.StructuredSections, song.AnalyzedSection{
			Title:              sec.Title,
			SectionExplanation: sec.SectionExplanation,
			StartMs:            startMs,
			EndMs:              endMs,
			Lines:              sec.Lines,
		})
	}
	return out
}
