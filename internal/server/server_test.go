package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jantznick/easy-song-sub001/internal/song"
	"github.com/jantznick/easy-song-sub001/internal/store"
)

type fakePipeline struct {
	mu   sync.Mutex
	runs []string
	done chan string
}

func (f *fakePipeline) Run(ctx context.Context, videoID string) (*song.Song, error) {
	f.mu.Lock()
	f.runs = append(f.runs, videoID)
	f.mu.Unlock()
	if f.done != nil {
		f.done <- videoID
	}
	return &song.Song{VideoID: videoID}, nil
}

func newTestServer(t *testing.T, p Pipeline) (*Server, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	srv := New(st, p, 0)
	t.Cleanup(srv.Close)
	return srv, st
}

func TestHandleSong_ServesRichestStage(t *testing.T) {
	srv, st := newTestServer(t, &fakePipeline{})

	const id = "dQw4w9WgXcQ"
	require.NoError(t, st.Write(store.StageRaw, id, []song.Segment{{Text: "hello", EndMs: 1000}}))
	require.NoError(t, st.Write(store.StageTranscribed, id, song.TranscribedSong{VideoID: id}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/song/"+id, nil)
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Stage string          `json:"stage"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "transcribed", resp.Stage)
}

func TestHandleSong_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, &fakePipeline{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/song/dQw4w9WgXcQ", nil)
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleSongs_ListsKnownIDs(t *testing.T) {
	srv, st := newTestServer(t, &fakePipeline{})

	require.NoError(t, st.Write(store.StageRaw, "aaaaaaaaaaa", []song.Segment{}))
	require.NoError(t, st.Write(store.StageTranscribed, "bbbbbbbbbbb", song.TranscribedSong{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/songs", nil)
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Songs []string `json:"songs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{"aaaaaaaaaaa", "bbbbbbbbbbb"}, resp.Songs)
}

func TestHandleProcess_RunsNewIDsInBackground(t *testing.T) {
	fp := &fakePipeline{done: make(chan string, 4)}
	srv, st := newTestServer(t, fp)

	// Already known; must be reported as existing and not re-run.
	require.NoError(t, st.Write(store.StageRaw, "dQw4w9WgXcQ", []song.Segment{}))

	body, _ := json.Marshal(map[string]any{"urls": []string{
		"https://www.youtube.com/watch?v=kJQP7kiw5Fk",
		"https://youtu.be/dQw4w9WgXcQ",
		"not a url at all",
	}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success     bool     `json:"success"`
		RunID       string   `json:"run_id"`
		NewVideoIDs []string `json:"new_video_ids"`
		Existing    []string `json:"existing"`
		InvalidURLs []string `json:"invalid_urls"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, []string{"kJQP7kiw5Fk"}, resp.NewVideoIDs)
	assert.Equal(t, []string{"dQw4w9WgXcQ"}, resp.Existing)
	assert.Equal(t, []string{"not a url at all"}, resp.InvalidURLs)

	select {
	case id := <-fp.done:
		assert.Equal(t, "kJQP7kiw5Fk", id)
	case <-time.After(2 * time.Second):
		t.Fatal("background run did not happen")
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()
	assert.Equal(t, []string{"kJQP7kiw5Fk"}, fp.runs)
}

func TestProcessBatch_CloseInterruptsPacing(t *testing.T) {
	fp := &fakePipeline{done: make(chan string, 4)}
	gin.SetMode(gin.TestMode)
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	// A pause far longer than the test; only cancellation can get past it.
	srv := New(st, fp, time.Hour)

	go srv.processBatch("run", []string{"aaaaaaaaaaa", "bbbbbbbbbbb"})

	// The first item runs immediately, the second sits behind the pause.
	select {
	case id := <-fp.done:
		require.Equal(t, "aaaaaaaaaaa", id)
	case <-time.After(2 * time.Second):
		t.Fatal("first item did not run")
	}

	srv.Close()

	select {
	case id := <-fp.done:
		t.Fatalf("item %s ran after close", id)
	case <-time.After(100 * time.Millisecond):
	}

	fp.mu.Lock()
	defer fp.mu.Unlock()
	assert.Equal(t, []string{"aaaaaaaaaaa"}, fp.runs)
}

func TestHandleProcess_AllExisting(t *testing.T) {
	fp := &fakePipeline{}
	srv, st := newTestServer(t, fp)
	require.NoError(t, st.Write(store.StageTranscribed, "dQw4w9WgXcQ", song.TranscribedSong{}))

	body, _ := json.Marshal(map[string]any{"urls": []string{"dQw4w9WgXcQ"}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Skipped bool `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Skipped)
	assert.Empty(t, fp.runs)
}

func TestHandleProcess_NoValidIDs(t *testing.T) {
	srv, _ := newTestServer(t, &fakePipeline{})

	body, _ := json.Marshal(map[string]any{"urls": []string{"nope"}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/process", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
