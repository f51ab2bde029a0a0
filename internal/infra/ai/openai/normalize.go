package openai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	domai "github.com/finarth/regdesk/internal/domain/ai"
	domain "github.com/finarth/regdesk/internal/domain/circulars"
)

// The model is instructed to avoid markdown but does not always comply, and
// JSON answers frequently arrive wrapped in prose or code fences. Everything
// in this file repairs raw model output into canonical domain values; nothing
// past this boundary sees aliases or markup.

var markdownChars = regexp.MustCompile(`[*_#•\-]+`)

// stripMarkdown removes leftover markdown decoration from plain-text answers.
func stripMarkdown(s string) string {
	return strings.TrimSpace(markdownChars.ReplaceAllString(strings.TrimSpace(s), ""))
}

// sliceJSON cuts raw down to the region between the first open and last close
// delimiter, discarding any surrounding prose or fences.
func sliceJSON(raw string, open, closing byte) (string, error) {
	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, closing)
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON payload in model output", domai.ErrUnavailable)
	}
	return raw[start : end+1], nil
}

// rawClause carries the legacy field aliases older model checkpoints emit.
// canonical() folds them into the one field the rest of the system uses.
type rawClause struct {
	Clause           string `json:"clause"`
	Text             string `json:"text"`
	ComplianceClause string `json:"compliance_clause"`
	Impact           string `json:"impact"`
	Penalty          string `json:"penalty"`
}

func (r rawClause) canonical() domain.Clause {
	text := r.Clause
	if text == "" {
		text = r.Text
	}
	if text == "" {
		text = r.ComplianceClause
	}
	return domain.Clause{Text: text, Impact: r.Impact, Penalty: r.Penalty}
}

func parseClauses(raw string) ([]domain.Clause, error) {
	payload, err := sliceJSON(raw, '[', ']')
	if err != nil {
		return nil, err
	}
	var rows []rawClause
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		return nil, fmt.Errorf("%w: decode clauses: %v", domai.ErrUnavailable, err)
	}
	clauses := make([]domain.Clause, 0, len(rows))
	for _, r := range rows {
		c := r.canonical()
		if c.Text == "" {
			continue
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

func parseInsights(raw string) (*domain.Insights, error) {
	payload, err := sliceJSON(raw, '{', '}')
	if err != nil {
		return nil, err
	}
	var in domain.Insights
	if err := json.Unmarshal([]byte(payload), &in); err != nil {
		return nil, fmt.Errorf("%w: decode insights: %v", domai.ErrUnavailable, err)
	}
	return &in, nil
}

func parseChapters(raw string) ([]domain.Chapter, error) {
	payload, err := sliceJSON(raw, '[', ']')
	if err != nil {
		return nil, err
	}
	var chapters []domain.Chapter
	if err := json.Unmarshal([]byte(payload), &chapters); err != nil {
		return nil, fmt.Errorf("%w: decode chapters: %v", domai.ErrUnavailable, err)
	}
	out := chapters[:0]
	for _, ch := range chapters {
		if strings.TrimSpace(ch.Title) != "" {
			out = append(out, ch)
		}
	}
	return out, nil
}

func parseActionables(raw string) ([]domain.Actionable, error) {
	payload, err := sliceJSON(raw, '[', ']')
	if err != nil {
		return nil, err
	}
	var acts []domain.Actionable
	if err := json.Unmarshal([]byte(payload), &acts); err != nil {
		return nil, fmt.Errorf("%w: decode actionables: %v", domai.ErrUnavailable, err)
	}
	return acts, nil
}
