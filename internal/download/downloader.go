// Package download acquires a video's audio track and display metadata
// through the yt-dlp command line tool.
package download

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jantznick/easy-song-sub001/internal/song"
)

// Downloader shells out to yt-dlp for audio extraction.
type Downloader struct {
	bin string
}

// New returns a downloader using the given yt-dlp binary (path or name on
// PATH).
func New(bin string) *Downloader {
	if bin == "" {
		bin = "yt-dlp"
	}
	return &Downloader{bin: bin}
}

// Available returns true if the yt-dlp binary can be found.
func (d *Downloader) Available() bool {
	_, err := exec.LookPath(d.bin)
	return err == nil
}

// infoJSON mirrors the fields we need from yt-dlp's --print-json output.
type infoJSON struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Uploader  string `json:"uploader"`
	Thumbnail string `json:"thumbnail"`
}

// Fetch downloads and extracts the audio for one video ID to destPath and
// returns the video metadata parsed from yt-dlp's JSON output.
func (d *Downloader) Fetch(ctx context.Context, videoID, destPath string) (*song.VideoMeta, error) {
	if !d.Available() {
		return nil, fmt.Errorf("yt-dlp not found (looked for %q)", d.bin)
	}

	slog.Info("downloading audio", "video_id", videoID, "output", filepath.Base(destPath))

	url := "https://www.youtube.com/watch?v=" + videoID
	cmd := exec.CommandContext(ctx, d.bin,
		"--no-playlist",
		"--extract-audio",
		"--audio-format", "m4a",
		"--output", destPath,
		"--print-json",
		"--no-progress",
		url,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w (stderr: %s)",
			err, strings.TrimSpace(stderr.String()))
	}

	var info infoJSON
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}

	if _, err := os.Stat(destPath); err != nil {
		return nil, fmt.Errorf("yt-dlp reported success but no audio at %s: %w", destPath, err)
	}

	artist := info.Artist
	if artist == "" {
		artist = info.Uploader
	}
	return &song.VideoMeta{
		Title:        info.Title,
		Artist:       artist,
		ThumbnailURL: info.Thumbnail,
	}, nil
}
