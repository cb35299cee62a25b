package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIConfig points the generator at an OpenAI-compatible
// chat-completions endpoint.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type OpenAIGenerator struct {
	cfg        OpenAIConfig
	httpClient *http.Client
}

func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	return &OpenAIGenerator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, message string) (string, error) {
	reqBody := map[string]interface{}{
		"model": g.cfg.Model,
		"messages": []chatMessage{
			{Role: "system", Content: "You are a concise and helpful AI assistant."},
			{Role: "user", Content: message},
		},
		"stream": false,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal generation request failed: %w", err)
	}

	url := strings.TrimRight(g.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build generation request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generation response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("generation response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse generation json failed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty generation choices")
	}

	answer := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("empty generation content")
	}
	return answer, nil
}
