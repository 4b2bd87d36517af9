package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Summarizer generates short situating summaries via chat completions.
type Summarizer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// SummarizerConfig holds the generative provider settings.
type SummarizerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewSummarizer creates a chat-completion summarizer.
func NewSummarizer(cfg *SummarizerConfig) *Summarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Summarizer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Summarize implements domain.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   160,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty chat completion response")
	}

	s.logger.Debug("Summary generated",
		zap.String("model", s.model),
		zap.Duration("duration", time.Since(start)),
	)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
