package assist

import (
	"context"
	"fmt"
	"strings"

	domai "github.com/finarth/regdesk/internal/domain/ai"
	domain "github.com/finarth/regdesk/internal/domain/circulars"
)

// ErrEmptyInput indicates a chat message or clause body with no content.
var ErrEmptyInput = fmt.Errorf("empty input")

// Service wraps the conversational and clause-to-actionable use cases.
type Service struct {
	client domai.Client
}

func NewService(client domai.Client) *Service {
	return &Service{client: client}
}

// Chat answers a free-form compliance question.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyInput
	}
	return s.client.Chat(ctx, message)
}

// Actionables converts a clause into structured tasks.
func (s *Service) Actionables(ctx context.Context, clause string) ([]domain.Actionable, error) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil, ErrEmptyInput
	}
	return s.client.GenerateActionables(ctx, clause)
}
