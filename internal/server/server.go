// Package server exposes the content pipeline over HTTP: the song list,
// per-song artifact data, and a processing trigger that runs the pipeline
// in the background.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jantznick/easy-song-sub001/internal/song"
	"github.com/jantznick/easy-song-sub001/internal/store"
	"github.com/jantznick/easy-song-sub001/internal/video"
)

// Pipeline runs the full stage sequence for one video ID.
type Pipeline interface {
	Run(ctx context.Context, videoID string) (*song.Song, error)
}

// Server holds the handlers' dependencies.
type Server struct {
	store    *store.Store
	pipeline Pipeline
	limiter  *rate.Limiter

	// ctx bounds the background batches; Close cancels it so shutdown does
	// not hang on an inter-item pause.
	ctx    context.Context
	cancel context.CancelFunc
}

// New returns a server processing background batches with the given
// courtesy delay between items.
func New(st *store.Store, p Pipeline, delay time.Duration) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		store:    st,
		pipeline: p,
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Close stops any in-flight background batch.
func (s *Server) Close() {
	s.cancel()
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api", corsAllowAll())
	api.GET("/songs", s.handleSongs)
	api.GET("/song/:id", s.handleSong)
	api.POST("/process", s.handleProcess)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// requestLogger writes one structured log line per request with an
// injected request ID.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := uuid.NewString()
		c.Writer.Header().Set("X-Request-ID", reqID)

		c.Next()

		slog.Info("http_request",
			"rid", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

func corsAllowAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Next()
	}
}

func (s *Server) handleSongs(c *gin.Context) {
	seen := make(map[string]bool)
	for _, stage := range []store.Stage{store.StageRaw, store.StageTranscribed} {
		list, err := s.store.List(stage)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		for _, id := range list {
			seen[id] = true
		}
	}
	songs := make([]string, 0, len(seen))
	for id := range seen {
		songs = append(songs, id)
	}
	sort.Strings(songs)
	c.JSON(http.StatusOK, gin.H{"songs": songs})
}

// handleSong serves the richest artifact available for one video ID.
func (s *Server) handleSong(c *gin.Context) {
	id := c.Param("id")
	if _, ok := video.ExtractID(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid video ID"})
		return
	}

	for _, stage := range []store.Stage{
		store.StageFinal, store.StageAnalyzed, store.StageTranscribed, store.StageRaw,
	} {
		var raw json.RawMessage
		err := s.store.Read(stage, id, &raw)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stage": string(stage), "data": raw})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "no artifacts for video ID"})
}

type processRequest struct {
	URLs []string `json:"urls"`
}

// handleProcess extracts video IDs from the posted URLs and processes the
// new ones sequentially in the background, exactly one pipeline run at a
// time.
func (s *Server) handleProcess(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid JSON"})
		return
	}
	if len(req.URLs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "no URLs provided"})
		return
	}

	var videoIDs, invalid, existing, fresh []string
	seen := make(map[string]bool)
	for _, url := range req.URLs {
		id, ok := video.ExtractID(url)
		if !ok {
			invalid = append(invalid, url)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		videoIDs = append(videoIDs, id)
		if s.store.Exists(store.StageRaw, id) || s.store.Exists(store.StageTranscribed, id) {
			existing = append(existing, id)
		} else {
			fresh = append(fresh, id)
		}
	}

	if len(videoIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":      false,
			"error":        "no valid YouTube video IDs found",
			"invalid_urls": invalid,
		})
		return
	}
	if len(fresh) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"message":      "all videos already exist",
			"video_ids":    videoIDs,
			"existing":     existing,
			"invalid_urls": invalid,
			"skipped":      true,
		})
		return
	}

	runID := uuid.NewString()
	go s.processBatch(runID, fresh)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "processing in background",
		"run_id":        runID,
		"video_ids":     videoIDs,
		"new_video_ids": fresh,
		"existing":      existing,
		"invalid_urls":  invalid,
	})
}

func (s *Server) processBatch(runID string, ids []string) {
	for _, id := range ids {
		if err := s.limiter.Wait(s.ctx); err != nil {
			slog.Info("background batch canceled", "run_id", runID, "err", err)
			return
		}
		if _, err := s.pipeline.Run(s.ctx, id); err != nil {
			slog.Error("background processing failed", "run_id", runID, "video_id", id, "err", err)
			continue
		}
		slog.Info("background processing done", "run_id", runID, "video_id", id)
	}
}
