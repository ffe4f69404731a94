package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/jantznick/easy-song-sub001/internal/config"
	"github.com/jantznick/easy-song-sub001/internal/download"
	"github.com/jantznick/easy-song-sub001/internal/openai"
	"github.com/jantznick/easy-song-sub001/internal/pipeline"
	"github.com/jantznick/easy-song-sub001/internal/store"
	"github.com/jantznick/easy-song-sub001/internal/translate"
	"github.com/jantznick/easy-song-sub001/internal/video"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <video-id-or-url>",
	Short: "Run the full pipeline for one song",
	Long: `Process downloads, transcribes, analyzes, and translates one song,
skipping every stage whose artifact is already on disk. Translation is
checkpointed per language, so re-running after a failure only does the
remaining work.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

var forceRebuild bool

func init() {
	processCmd.Flags().BoolVar(&forceRebuild, "force-rebuild", false, "rerun transcription and analysis even if artifacts exist (completed translations are kept)")

	rootCmd.AddCommand(processCmd)
}

// buildOrchestrator wires the store and the collaborators from the loaded
// configuration. Shared by process, batch, and serve.
func buildOrchestrator(cfg *config.Config) (*pipeline.Orchestrator, *store.Store, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	st, err := store.New(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open data dir: %w", err)
	}

	dl := download.New(cfg.YTDLPPath)
	if !dl.Available() {
		return nil, nil, fmt.Errorf("yt-dlp not found: %s", cfg.YTDLPPath)
	}

	client := openai.NewClient(cfg.OpenAI)
	cp := translate.NewCheckpointer(st, client, cfg.Languages)
	return pipeline.New(st, dl, client, client, cp), st, nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	videoID, ok := video.ExtractID(args[0])
	if !ok {
		return fmt.Errorf("not a recognizable YouTube video ID or URL: %s", args[0])
	}

	orch, _, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}
	orch.ForceRebuild = forceRebuild

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := orch.Run(ctx, videoID)
	if err != nil {
		return err
	}

	if !quiet {
		slog.Info("done",
			"video_id", result.VideoID,
			"title", result.Title,
			"lines", len(result.Lyrics),
			"languages", len(cfg.Languages),
		)
	}
	return nil
}
