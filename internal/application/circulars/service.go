package circulars

import (
	"context"
	"fmt"

	domai "github.com/finarth/regdesk/internal/domain/ai"
	domain "github.com/finarth/regdesk/internal/domain/circulars"
)

// Prompt context windows, in bytes of source text. The production model runs
// with a limited context, so each use case clips the document the same way
// the original pipeline did.
const (
	summaryTextLimit    = 20000
	clausesTextLimit    = 25000
	insightsTextLimit   = 18000
	chaptersTextLimit   = 7000
	chapterSumTextLimit = 9000
)

// Service implements use-cases over circulars and their references.
// Safe for concurrent use.
type Service struct {
	Repo domain.Repository
	AI   domai.Client
}

func NewService(repo domain.Repository, ai domai.Client) *Service {
	return &Service{Repo: repo, AI: ai}
}

//
// ==== LISTS ====
//

func (s *Service) ListCirculars(ctx context.Context) ([]domain.Circular, error) {
	return s.Repo.ListCirculars(ctx)
}

func (s *Service) ListSEBICirculars(ctx context.Context) ([]domain.Circular, error) {
	return s.Repo.ListSEBICirculars(ctx)
}

//
// ==== CIRCULAR ENRICHMENTS ====
//

// Summary generates a live plain-text summary for a circular. A circular
// without extracted text yields a fixed placeholder, not an error.
func (s *Service) Summary(ctx context.Context, id domain.CircularID) (string, error) {
	c, err := s.Repo.GetCircular(ctx, id)
	if err != nil {
		return "", err
	}
	if c.PDFText == "" {
		return "No PDF text available.", nil
	}
	summary, err := s.AI.SummarizeCircular(ctx, c.Subject, clip(c.PDFText, summaryTextLimit))
	if err != nil {
		return "", fmt.Errorf("summarize circular %d: %w", id, err)
	}
	return summary, nil
}

// Clauses extracts compliance clauses. Numbers are assigned here, in extraction
// order, so the model never controls ordinals.
func (s *Service) Clauses(ctx context.Context, id domain.CircularID) ([]domain.Clause, error) {
	c, err := s.Repo.GetCircular(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.PDFText == "" {
		return []domain.Clause{}, nil
	}
	clauses, err := s.AI.ExtractClauses(ctx, clip(c.PDFText, clausesTextLimit))
	if err != nil {
		return nil, fmt.Errorf("extract clauses for circular %d: %w", id, err)
	}
	for i := range clauses {
		clauses[i].Number = i + 1
	}
	return clauses, nil
}

// Insights generates the four-field impact assessment. A circular without
// text yields the zero-value object.
func (s *Service) Insights(ctx context.Context, id domain.CircularID) (*domain.Insights, error) {
	c, err := s.Repo.GetCircular(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.PDFText == "" {
		return &domain.Insights{}, nil
	}
	in, err := s.AI.GenerateInsights(ctx, clip(c.PDFText, insightsTextLimit))
	if err != nil {
		return nil, fmt.Errorf("insights for circular %d: %w", id, err)
	}
	return in, nil
}

//
// ==== REFERENCES ====
//

func (s *Service) References(ctx context.Context, id domain.CircularID) (domain.ReferenceGroups, error) {
	refs, err := s.Repo.ListReferences(ctx, id)
	if err != nil {
		return domain.ReferenceGroups{}, err
	}
	return domain.Classify(refs), nil
}

func (s *Service) Reference(ctx context.Context, id domain.CircularID, refID int64) (*domain.Reference, error) {
	return s.Repo.GetReference(ctx, id, refID)
}

func (s *Service) ReferenceSummary(ctx context.Context, id domain.CircularID, refID int64) (string, error) {
	ref, err := s.Repo.GetReference(ctx, id, refID)
	if err != nil {
		return "", err
	}
	if ref.PDFText == "" {
		return "No extracted PDF text available.", nil
	}
	summary, err := s.AI.SummarizeReference(ctx, ref.Text, clip(ref.PDFText, summaryTextLimit))
	if err != nil {
		return "", fmt.Errorf("summarize reference %d: %w", refID, err)
	}
	return summary, nil
}

// Chapters generates a table of chapters for a reference. A missing reference
// maps to an empty list rather than 404; the panel treats both the same.
func (s *Service) Chapters(ctx context.Context, refID int64) ([]domain.Chapter, error) {
	ref, err := s.Repo.GetReferenceByID(ctx, refID)
	if err != nil {
		return []domain.Chapter{}, nil
	}
	text := ref.PDFText
	if text == "" {
		text = ref.Text
	}
	chapters, err := s.AI.GenerateChapters(ctx, clip(text, chaptersTextLimit))
	if err != nil {
		return nil, fmt.Errorf("chapters for reference %d: %w", refID, err)
	}
	for i := range chapters {
		chapters[i].ID = fmt.Sprintf("%d.0", i+1)
	}
	return chapters, nil
}

func (s *Service) ChapterSummary(ctx context.Context, refID int64, title, parentSummary string) (string, error) {
	ref, err := s.Repo.GetReferenceByID(ctx, refID)
	if err != nil {
		return "", err
	}
	text := ref.PDFText
	if text == "" {
		text = ref.Text
	}
	summary, err := s.AI.SummarizeChapter(ctx, title, parentSummary, clip(text, chapterSumTextLimit))
	if err != nil {
		return "", fmt.Errorf("chapter summary for reference %d: %w", refID, err)
	}
	return summary, nil
}

// clip truncates text to at most n bytes.
func clip(text string, n int) string {
	if len(text) > n {
		return text[:n]
	}
	return text
}
