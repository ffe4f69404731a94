package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jantznick/easy-song-sub001/internal/song"
)

// verboseTranscript mirrors the verbose_json response of the audio
// transcription endpoint.
type verboseTranscript struct {
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe uploads the audio file and returns timestamped segments plus
// the detected language. Timestamps are converted from seconds to
// milliseconds at this boundary; the rest of the pipeline only sees ms.
func (c *Client) Transcribe(ctx context.Context, audioPath, languageHint string) ([]song.Segment, string, error) {
	if c.apiKey == "" {
		return nil, "", fmt.Errorf("missing OPENAI_API_KEY")
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	// Build multipart form body using a pipe so the file streams instead of
	// buffering in memory.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	errCh := make(chan error, 1)
	go func() {
		defer pw.Close()
		defer mw.Close()

		if err := mw.WriteField("model", c.transcriptionModel); err != nil {
			errCh <- err
			return
		}
		if err := mw.WriteField("response_format", "verbose_json"); err != nil {
			errCh <- err
			return
		}
		if err := mw.WriteField("timestamp_granularities[]", "segment"); err != nil {
			errCh <- err
			return
		}
		if languageHint != "" && strings.ToLower(languageHint) != "auto" {
			if err := mw.WriteField("language", languageHint); err != nil {
				errCh <- err
				return
			}
		}
		part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
		if err != nil {
			errCh <- err
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/audio/transcriptions", pr)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	// Check the status first: an early rejection closes the pipe, and the
	// writer's "closed pipe" error would mask the API's actual message.
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}
	if writeErr := <-errCh; writeErr != nil {
		return nil, "", fmt.Errorf("multipart write error: %w", writeErr)
	}

	var transcript verboseTranscript
	if err := json.NewDecoder(resp.Body).Decode(&transcript); err != nil {
		return nil, "", fmt.Errorf("decode response: %w", err)
	}

	segments := make([]song.Segment, 0, len(transcript.Segments))
	for _, seg := range transcript.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, song.Segment{
			Text:    text,
			StartMs: msFromSeconds(seg.Start),
			EndMs:   msFromSeconds(seg.End),
		})
	}
	return segments, transcript.Language, nil
}

func msFromSeconds(sec float64) int64 {
	return int64(math.Round(sec * 1000))
}
