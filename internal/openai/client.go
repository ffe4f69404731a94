// Package openai implements the transcription, analysis, and translation
// collaborators against the OpenAI HTTP API. The pipeline only depends on
// the collaborator interfaces; everything in here is request/response
// plumbing.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jantznick/easy-song-sub001/internal/config"
)

const requestTimeout = 10 * time.Minute

// Client calls the OpenAI API for all three model-backed collaborators.
type Client struct {
	apiKey             string
	baseURL            string
	transcriptionModel string
	analysisModel      string
	translationModel   string

	httpClient *http.Client
}

// NewClient builds a client from the OpenAI section of the configuration.
func NewClient(cfg config.OpenAIConfig) *Client {
	return &Client{
		apiKey:             cfg.APIKey,
		baseURL:            cfg.BaseURL,
		transcriptionModel: cfg.TranscriptionModel,
		analysisModel:      cfg.AnalysisModel,
		translationModel:   cfg.TranslationModel,
		httpClient:         &http.Client{Timeout: requestTimeout},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
	Temperature    float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatJSON sends one chat-completion request in JSON mode and decodes the
// model's reply into out.
func (c *Client) chatJSON(ctx context.Context, model, system, user string, out any) error {
	if c.apiKey == "" {
		return fmt.Errorf("missing OPENAI_API_KEY")
	}

	reqBody := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
	}

	var chat chatResponse
	if err := json.Unmarshal(data, &chat); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return fmt.Errorf("response contained no choices")
	}
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}
