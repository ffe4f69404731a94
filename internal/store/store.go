// Package store reads and writes the per-stage artifact files. Every
// artifact is addressed by content identifier (the source video ID) and
// stage name; writes are whole-file replaces done atomically through a temp
// file and rename.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Stage names the four pipeline artifacts.
type Stage string

const (
	StageRaw         Stage = "raw"
	StageTranscribed Stage = "transcribed"
	StageAnalyzed    Stage = "analyzed"
	StageFinal       Stage = "final"
)

// ErrNotFound is returned by Read when the artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// Store lays artifacts out as {root}/{stage}/{id}.json, with downloaded
// audio and its metadata sidecar under {root}/audio/.
type Store struct {
	root string
}

// New returns a store rooted at dir and creates the stage directories.
func New(dir string) (*Store, error) {
	s := &Store{root: dir}
	for _, sub := range []string{
		string(StageRaw), string(StageTranscribed),
		string(StageAnalyzed), string(StageFinal), "audio",
	} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return s, nil
}

// Path returns the on-disk location for one stage artifact.
func (s *Store) Path(stage Stage, id string) string {
	return filepath.Join(s.root, string(stage), id+".json")
}

// AudioPath returns the location the downloader extracts audio to.
func (s *Store) AudioPath(id string) string {
	return filepath.Join(s.root, "audio", id+".m4a")
}

// MetaPath returns the location of the acquisition metadata sidecar.
func (s *Store) MetaPath(id string) string {
	return filepath.Join(s.root, "audio", id+".info.json")
}

// Exists reports whether the stage artifact is present on disk.
func (s *Store) Exists(stage Stage, id string) bool {
	return fileExists(s.Path(stage, id))
}

// AudioExists reports whether both the audio file and its metadata sidecar
// from the acquisition stage are present.
func (s *Store) AudioExists(id string) bool {
	return fileExists(s.AudioPath(id)) && fileExists(s.MetaPath(id))
}

// Read decodes the stage artifact into v. Returns ErrNotFound when the
// artifact does not exist.
func (s *Store) Read(stage Stage, id string, v any) error {
	return readJSON(s.Path(stage, id), v)
}

// Write replaces the stage artifact with the JSON encoding of v. The write
// goes to a temp file in the same directory and is renamed into place, so a
// reader never observes a partially written artifact.
func (s *Store) Write(stage Stage, id string, v any) error {
	return writeJSON(s.Path(stage, id), v)
}

// ReadMeta decodes the acquisition metadata sidecar into v.
func (s *Store) ReadMeta(id string, v any) error {
	return readJSON(s.MetaPath(id), v)
}

// WriteMeta replaces the acquisition metadata sidecar.
func (s *Store) WriteMeta(id string, v any) error {
	return writeJSON(s.MetaPath(id), v)
}

// List returns the sorted content identifiers that have an artifact for the
// given stage.
func (s *Store) List(stage Stage) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, string(stage)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s artifacts: %w", stage, err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
