// Package ollama provides the text analysis adapter backed by a local Ollama instance.
// It asks the model to translate a text and explain it at the learner's level.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/ewilliams-labs/melon/internal/core/domain"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.1:8b"
)

const (
	systemPrompt     = "You are an experienced language teacher."
	chatSystemPrompt = "You are a helpful assistant and an experienced language teacher."
)

const analysisPrompt = `You are a highly skilled language teacher.
Your task is to translate the following text into the candidate's target language, and then explain the translated text in their native language.
Please consider the candidate's proficiency level when translating and explaining.
Translate text based on candidate's proficiency level:
%s

Explain translated text in the user's native language: %s
Candidate's proficiency level: %s
`

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     hclog.Logger
}

type chatRequest struct {
	Model    string               `json:"model"`
	Messages []domain.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type chatResponse struct {
	Message domain.ChatMessage `json:"message"`
	Error   string             `json:"error,omitempty"`
}

// NewClient builds an analyzer. Empty arguments fall back to defaults.
func NewClient(baseURL, model string, httpClient *http.Client, logger hclog.Logger) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Client{
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger.Named("ollama"),
	}
}

func buildPrompt(req domain.AnalysisRequest) string {
	return fmt.Sprintf(analysisPrompt, req.Text, req.Language, req.Level)
}

// AnalyzeText sends one non-streaming chat turn and returns the trimmed reply.
func (c *Client) AnalyzeText(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	reply, err := c.send(ctx, []domain.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(req)},
	})
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return domain.AnalysisResult{Analysis: reply}, nil
}

// Chat answers message in the context of the earlier turns. The returned
// history is a copy of history extended by the user turn and the reply.
func (c *Client) Chat(ctx context.Context, message string, history []domain.ChatMessage) (domain.ChatReply, error) {
	user := domain.ChatMessage{Role: "user", Content: message}

	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, domain.ChatMessage{Role: "system", Content: chatSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, user)

	reply, err := c.send(ctx, messages)
	if err != nil {
		return domain.ChatReply{}, err
	}

	extended := make([]domain.ChatMessage, 0, len(history)+2)
	extended = append(extended, history...)
	extended = append(extended, user, domain.ChatMessage{Role: "assistant", Content: reply})
	return domain.ChatReply{Reply: reply, History: extended}, nil
}

func (c *Client) send(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Stream: false})
	if err != nil {
		return "", fmt.Errorf("ollama: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama: request failed: %w: %w", &domain.ProviderError{Provider: "ollama"}, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("chat rejected", "status", resp.StatusCode, "body", strings.TrimSpace(string(snippet)))
		return "", fmt.Errorf("ollama: %w", &domain.ProviderError{Provider: "ollama", Status: resp.StatusCode})
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama: %s: %w", parsed.Error, &domain.ProviderError{Provider: "ollama", Status: resp.StatusCode})
	}

	reply := strings.TrimSpace(parsed.Message.Content)
	if reply == "" {
		return "", fmt.Errorf("ollama: empty response: %w", &domain.ProviderError{Provider: "ollama", Status: resp.StatusCode})
	}

	c.logger.Debug("chat complete", "model", c.model, "turns", len(messages), "elapsed", time.Since(start))
	return reply, nil
}
