package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"

	domai "github.com/finarth/regdesk/internal/domain/ai"
	domain "github.com/finarth/regdesk/internal/domain/circulars"
	"github.com/finarth/regdesk/internal/infra/ai/prompt"
	"github.com/finarth/regdesk/internal/middleware"
)

const defaultModel = "mistralai/Mistral-7B-Instruct-v0.3"

// Client talks to an OpenAI-compatible chat-completions endpoint. The
// production deployment points BaseURL at a self-hosted Mistral server.
type Client struct {
	*openai.Client
	Model string
}

// NewClient builds a client against baseURL. An empty baseURL falls back to
// the public OpenAI endpoint.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

// complete runs one chat completion and returns the raw assistant message.
func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessage, temperature float32, maxTokens int) (string, error) {
	middleware.IncrementGenerations()
	resp, err := c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		middleware.IncrementGenerationsFailed()
		return "", wrapErr(err)
	}
	if len(resp.Choices) == 0 {
		middleware.IncrementGenerationsFailed()
		return "", domai.ErrUnavailable
	}
	return resp.Choices[0].Message.Content, nil
}

func user(content string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: content},
	}
}

// wrapErr maps provider errors onto domain sentinels.
func wrapErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", domai.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %v", domai.ErrUnavailable, err)
}

func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	raw, err := c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.ChatSystem()},
		{Role: openai.ChatMessageRoleUser, Content: message},
	}, 0.2, 900)
	if err != nil {
		return "", err
	}
	return stripMarkdown(raw), nil
}

func (c *Client) SummarizeCircular(ctx context.Context, subject, text string) (string, error) {
	raw, err := c.complete(ctx, user(prompt.CircularSummary(subject, text)), 0.25, 900)
	if err != nil {
		return "", err
	}
	return stripMarkdown(raw), nil
}

func (c *Client) ExtractClauses(ctx context.Context, text string) ([]domain.Clause, error) {
	raw, err := c.complete(ctx, user(prompt.Clauses(text)), 0.1, 1500)
	if err != nil {
		return nil, err
	}
	return parseClauses(raw)
}

func (c *Client) GenerateInsights(ctx context.Context, text string) (*domain.Insights, error) {
	raw, err := c.complete(ctx, user(prompt.Insights(text)), 0.1, 900)
	if err != nil {
		return nil, err
	}
	return parseInsights(raw)
}

func (c *Client) SummarizeReference(ctx context.Context, title, text string) (string, error) {
	raw, err := c.complete(ctx, user(prompt.ReferenceSummary(title, text)), 0.25, 700)
	if err != nil {
		return "", err
	}
	return stripMarkdown(raw), nil
}

func (c *Client) GenerateChapters(ctx context.Context, text string) ([]domain.Chapter, error) {
	raw, err := c.complete(ctx, user(prompt.Chapters(text)), 0.2, 350)
	if err != nil {
		return nil, err
	}
	return parseChapters(raw)
}

func (c *Client) SummarizeChapter(ctx context.Context, title, parentSummary, text string) (string, error) {
	raw, err := c.complete(ctx, user(prompt.ChapterSummary(title, parentSummary, text)), 0.2, 300)
	if err != nil {
		return "", err
	}
	return stripMarkdown(raw), nil
}

func (c *Client) GenerateActionables(ctx context.Context, clause string) ([]domain.Actionable, error) {
	raw, err := c.complete(ctx, user(prompt.Actionables(clause)), 0.2, 600)
	if err != nil {
		return nil, err
	}
	return parseActionables(raw)
}
