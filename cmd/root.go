package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jantznick/easy-song-sub001/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	verbose bool
	quiet   bool
	cfgFile string
	dataDir string
	logFile string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "easysongsub",
	Short: "Turn songs into analyzed, multi-language synchronized lyrics",
	Long: `Easysongsub downloads a song's audio, transcribes it with timestamps,
has an LLM correct the lyrics and annotate the song structure, and then
translates the result into every configured language, checkpointing after
each one so interrupted runs resume where they stopped.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if logFile != "" {
			cfg.Log.File = logFile
		}
		setupLogging(cfg.Log)
		return nil
	},
}

func setupLogging(lc config.LogConfig) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	var out io.Writer = os.Stderr
	if lc.File != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   lc.File,
			MaxSize:    lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAge:     14, // days
		})
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this rotating file")
}
