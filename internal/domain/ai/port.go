package ai

import (
	"context"

	"github.com/finarth/regdesk/internal/domain/circulars"
)

// Client is the LLM port. Implementations return canonical domain values;
// markdown stripping and JSON repair happen behind this interface.
type Client interface {
	Chat(ctx context.Context, message string) (string, error)
	SummarizeCircular(ctx context.Context, subject, text string) (string, error)
	ExtractClauses(ctx context.Context, text string) ([]circulars.Clause, error)
	GenerateInsights(ctx context.Context, text string) (*circulars.Insights, error)
	SummarizeReference(ctx context.Context, title, text string) (string, error)
	GenerateChapters(ctx context.Context, text string) ([]circulars.Chapter, error)
	SummarizeChapter(ctx context.Context, title, parentSummary, text string) (string, error)
	GenerateActionables(ctx context.Context, clause string) ([]circulars.Actionable, error)
}
