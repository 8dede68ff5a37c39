package service

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/cadencehq/cadence/internal/config"
)

// GeneratorService wraps the language-model call that generates or rewrites
// post text. The core treats it as an opaque, slow, fallible function
// returning plain text and never inspects the output.
type GeneratorService struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewGeneratorService(cfg *config.OpenAIConfig, logger *zap.Logger) *GeneratorService {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &GeneratorService{
		client:  openai.NewClient(cfg.APIKey),
		model:   cfg.Model,
		timeout: timeout,
		logger:  logger,
	}
}

// GenerateOrRewrite produces post text for the prompt, with optional extra
// context appended as a separate message.
func (g *GeneratorService) GenerateOrRewrite(ctx context.Context, prompt, contextText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: "You write concise social media posts. Return only the post text.",
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		},
	}
	if contextText != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: "Context: " + contextText,
		})
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("text generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("text generation returned no choices")
	}

	g.logger.Debug("Generated text",
		zap.String("model", g.model),
		zap.Duration("duration", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}
