// Package config builds the process-wide configuration object. It is
// constructed once at process entry and passed into the orchestrator and
// collaborators; core logic never reads the environment itself.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// OpenAIConfig selects the models and endpoint for the transcription,
// analysis, and translation collaborators.
type OpenAIConfig struct {
	APIKey             string `yaml:"-"`
	BaseURL            string `yaml:"base_url"`
	TranscriptionModel string `yaml:"transcription_model"`
	AnalysisModel      string `yaml:"analysis_model"`
	TranslationModel   string `yaml:"translation_model"`
}

// LogConfig controls the optional rotating log file.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// Config holds the full application configuration.
type Config struct {
	DataDir   string   `yaml:"data_dir"`
	Languages []string `yaml:"languages"`
	YTDLPPath string   `yaml:"ytdlp_path"`

	// BatchDelay is the courtesy pause between batch items; set via the
	// EASYSONG_BATCH_DELAY environment variable (Go duration syntax).
	BatchDelay time.Duration `yaml:"-"`

	OpenAI OpenAIConfig `yaml:"openai"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

// Default returns a Config with the hardcoded defaults.
func Default() *Config {
	return &Config{
		DataDir:    "./data",
		Languages:  []string{"en", "es", "fr", "de", "zh", "it"},
		BatchDelay: 3 * time.Second,
		YTDLPPath:  "yt-dlp",
		OpenAI: OpenAIConfig{
			BaseURL:            "https://api.openai.com/v1",
			TranscriptionModel: "whisper-1",
			AnalysisModel:      "gpt-4o-mini",
			TranslationModel:   "gpt-4o-mini",
		},
		Log: LogConfig{
			MaxSizeMB:  20,
			MaxBackups: 3,
		},
		Server: ServerConfig{Port: "8000"},
	}
}

// Load builds the configuration: defaults, then the optional YAML file,
// then environment overrides. An empty path skips the file step.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.DataDir = getEnv("EASYSONG_DATA_DIR", cfg.DataDir)
	cfg.YTDLPPath = getEnv("EASYSONG_YTDLP", cfg.YTDLPPath)
	if langs := os.Getenv("EASYSONG_LANGUAGES"); langs != "" {
		cfg.Languages = parseList(langs)
	}
	cfg.OpenAI.APIKey = getEnv("OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.BaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAI.BaseURL)
	cfg.OpenAI.AnalysisModel = getEnv("EASYSONG_ANALYSIS_MODEL", cfg.OpenAI.AnalysisModel)
	cfg.OpenAI.TranslationModel = getEnv("EASYSONG_TRANSLATION_MODEL", cfg.OpenAI.TranslationModel)
	cfg.OpenAI.TranscriptionModel = getEnv("EASYSONG_TRANSCRIPTION_MODEL", cfg.OpenAI.TranscriptionModel)
	cfg.Server.Port = getEnv("EASYSONG_PORT", cfg.Server.Port)
	if delay := os.Getenv("EASYSONG_BATCH_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return nil, fmt.Errorf("parse EASYSONG_BATCH_DELAY: %w", err)
		}
		cfg.BatchDelay = d
	}

	if len(cfg.Languages) == 0 {
		return nil, fmt.Errorf("no target languages configured")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
