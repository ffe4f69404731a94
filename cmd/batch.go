package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/jantznick/easy-song-sub001/internal/store"
	"github.com/jantznick/easy-song-sub001/internal/video"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var batchCmd = &cobra.Command{
	Use:   "batch <video-id-or-url>...",
	Short: "Process several songs sequentially",
	Long: `Batch runs the pipeline for each argument in order, pausing briefly
between songs. A failed song does not stop the batch; failures are
summarized at the end and reflected in the exit code.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

var skipExisting bool

func init() {
	batchCmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "skip songs that already have a transcript artifact")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	orch, st, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	var processed, skipped, failed int

	// Paces pipeline runs; rate.Every treats a zero delay as unlimited.
	limiter := rate.NewLimiter(rate.Every(cfg.BatchDelay), 1)

	for i, arg := range args {
		videoID, ok := video.ExtractID(arg)
		if !ok {
			slog.Error("skipping unrecognizable argument", "run_id", runID, "arg", arg)
			failed++
			continue
		}

		if skipExisting && st.Exists(store.StageTranscribed, videoID) {
			slog.Info("skipping existing song", "run_id", runID, "video_id", videoID)
			skipped++
			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		slog.Info("processing", "run_id", runID, "video_id", videoID, "position", i+1, "of", len(args))
		if _, err := orch.Run(ctx, videoID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("song failed", "run_id", runID, "video_id", videoID, "err", err)
			failed++
			continue
		}
		processed++
	}

	if !quiet {
		slog.Info("batch finished",
			"run_id", runID,
			"processed", processed,
			"skipped", skipped,
			"failed", failed,
		)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d songs failed", failed, len(args))
	}
	return nil
}
