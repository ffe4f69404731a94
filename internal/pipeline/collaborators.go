package pipeline

import (
	"context"

	"github.com/jantznick/easy-song-sub001/internal/song"
)

// Downloader is the acquisition collaborator. Fetch extracts the audio for
// a video to destPath and returns the video's display metadata.
type Downloader interface {
	Fetch(ctx context.Context, videoID, destPath string) (*song.VideoMeta, error)
}

// Transcriber is the speech-to-text collaborator. It returns the
// timestamped segments and the detected language.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, languageHint string) ([]song.Segment, string, error)
}

// Analyzer is the language-model analysis collaborator. The returned line
// and section counts are authoritative for every later stage.
type Analyzer interface {
	Analyze(ctx context.Context, segments []song.Segment, meta song.VideoMeta) (*song.Analysis, error)
}
