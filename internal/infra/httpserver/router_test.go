package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appassist "github.com/finarth/regdesk/internal/application/assist"
	appcirculars "github.com/finarth/regdesk/internal/application/circulars"
	"github.com/finarth/regdesk/internal/dashboard/audit"
	domai "github.com/finarth/regdesk/internal/domain/ai"
	domain "github.com/finarth/regdesk/internal/domain/circulars"
)

type stubRepo struct {
	circulars map[domain.CircularID]*domain.Circular
	refs      map[int64]*domain.Reference
}

func (s *stubRepo) ListCirculars(ctx context.Context) ([]domain.Circular, error) {
	var out []domain.Circular
	for _, c := range s.circulars {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubRepo) ListSEBICirculars(ctx context.Context) ([]domain.Circular, error) {
	return []domain.Circular{}, nil
}

func (s *stubRepo) GetCircular(ctx context.Context, id domain.CircularID) (*domain.Circular, error) {
	c, ok := s.circulars[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *stubRepo) ListReferences(ctx context.Context, id domain.CircularID) ([]domain.Reference, error) {
	var out []domain.Reference
	for _, r := range s.refs {
		if r.CircularID == id {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *stubRepo) GetReference(ctx context.Context, id domain.CircularID, refID int64) (*domain.Reference, error) {
	r, ok := s.refs[refID]
	if !ok || r.CircularID != id {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (s *stubRepo) GetReferenceByID(ctx context.Context, refID int64) (*domain.Reference, error) {
	r, ok := s.refs[refID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (s *stubRepo) UpsertCircular(ctx context.Context, c *domain.Circular) (domain.CircularID, error) {
	return c.ID, nil
}

func (s *stubRepo) UpsertSEBICircular(ctx context.Context, c *domain.Circular) (domain.CircularID, error) {
	return c.ID, nil
}

func (s *stubRepo) UpsertReference(ctx context.Context, r *domain.Reference) (int64, error) {
	return r.ID, nil
}

// stubAI returns canned values, or err from every method when set.
type stubAI struct {
	err      error
	summary  string
	reply    string
	clauses  []domain.Clause
	insights *domain.Insights
	chapters []domain.Chapter
	acts     []domain.Actionable
}

func (s *stubAI) Chat(ctx context.Context, message string) (string, error) {
	return s.reply, s.err
}

func (s *stubAI) SummarizeCircular(ctx context.Context, subject, text string) (string, error) {
	return s.summary, s.err
}

func (s *stubAI) ExtractClauses(ctx context.Context, text string) ([]domain.Clause, error) {
	return s.clauses, s.err
}

func (s *stubAI) GenerateInsights(ctx context.Context, text string) (*domain.Insights, error) {
	return s.insights, s.err
}

func (s *stubAI) SummarizeReference(ctx context.Context, title, text string) (string, error) {
	return s.summary, s.err
}

func (s *stubAI) GenerateChapters(ctx context.Context, text string) ([]domain.Chapter, error) {
	return s.chapters, s.err
}

func (s *stubAI) SummarizeChapter(ctx context.Context, title, parentSummary, text string) (string, error) {
	return s.summary, s.err
}

func (s *stubAI) GenerateActionables(ctx context.Context, clause string) ([]domain.Actionable, error) {
	return s.acts, s.err
}

func newTestRouter(repo *stubRepo, ai domai.Client) http.Handler {
	return NewRouter(
		appcirculars.NewService(repo, ai),
		appassist.NewService(ai),
		audit.NewStaticProvider(),
	)
}

func seededRepo() *stubRepo {
	return &stubRepo{
		circulars: map[domain.CircularID]*domain.Circular{
			42: {ID: 42, Subject: "KYC norms", DateOfIssue: "2025-01-02", PDFText: "full circular text"},
		},
		refs: map[int64]*domain.Reference{
			7: {ID: 7, CircularID: 42, Text: "Master Direction on KYC", URL: "https://rbi.org.in/md", LinkType: "Master Direction", PDFText: "reference text"},
		},
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{})
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestListCirculars(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{})
	rec := do(t, h, http.MethodGet, "/circulars", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []domain.Circular
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "KYC norms", list[0].Subject)
}

func TestSummaryLive(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{summary: "Text"})
	rec := do(t, h, http.MethodGet, "/circulars/42/summary-live", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Text", decode(t, rec)["summary"])
}

func TestSummaryLiveNotFound(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{})
	rec := do(t, h, http.MethodGet, "/circulars/99/summary-live", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Circular not found", decode(t, rec)["error"])
}

func TestSummaryLiveLLMFailure(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{err: domai.ErrUnavailable})
	rec := do(t, h, http.MethodGet, "/circulars/42/summary-live", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "LLM summarization failed", decode(t, rec)["summary"])
}

func TestClausesLiveFallsBackToEmptyList(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{err: domai.ErrUnavailable})
	rec := do(t, h, http.MethodGet, "/circulars/42/clauses-live", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []any{}, body["clauses"])
}

func TestClausesLiveNumbersRows(t *testing.T) {
	ai := &stubAI{clauses: []domain.Clause{{Text: "first"}, {Text: "second"}}}
	h := newTestRouter(seededRepo(), ai)
	rec := do(t, h, http.MethodGet, "/circulars/42/clauses-live", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Clauses []domain.Clause `json:"clauses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Clauses, 2)
	assert.Equal(t, 1, body.Clauses[0].Number)
	assert.Equal(t, 2, body.Clauses[1].Number)
}

func TestInsightsLiveFallsBackToZeroObject(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{err: domai.ErrUnavailable})
	rec := do(t, h, http.MethodGet, "/circulars/42/insights-live", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "", body["organizationImpact"])
}

func TestReferencesGrouped(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{})
	rec := do(t, h, http.MethodGet, "/circulars/42/references", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var groups domain.ReferenceGroups
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	require.Len(t, groups.External, 1)
	assert.Empty(t, groups.Internal)
	assert.Equal(t, 1, groups.Count)
}

func TestGetReferenceNotFound(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{})
	rec := do(t, h, http.MethodGet, "/circulars/42/references/99", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Reference not found", decode(t, rec)["error"])
}

func TestChaptersLiveOnUnavailable(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{err: domai.ErrUnavailable})
	rec := do(t, h, http.MethodGet, "/references/7/chapters-live", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["chapters"])
}

func TestChapterSummaryRequiresTitle(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{})
	rec := do(t, h, http.MethodGet, "/references/7/chapter-summary", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid chapter title", decode(t, rec)["summary"])
}

func TestChapterSummarySoftFailure(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{err: domai.ErrUnavailable})
	rec := do(t, h, http.MethodGet, "/references/7/chapter-summary?title=Preliminary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Failed to load summary.", decode(t, rec)["summary"])
}

func TestActionablesMissingClause(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{})
	rec := do(t, h, http.MethodPost, "/generate-actionables", `{"clause":"  "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Clause text missing", body["error"])
	assert.Equal(t, []any{}, body["actionables"])
}

func TestActionablesFallsBackToEmpty(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{err: domai.ErrUnavailable})
	rec := do(t, h, http.MethodPost, "/generate-actionables", `{"clause":"Banks shall verify identity."}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["actionables"])
}

func TestChat(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{reply: "Hello"})
	rec := do(t, h, http.MethodPost, "/chat", `{"message":"What is KYC?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello", decode(t, rec)["reply"])
}

func TestChatEmptyMessage(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{})
	rec := do(t, h, http.MethodPost, "/chat", `{"message":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter a valid question.", decode(t, rec)["reply"])
}

func TestChatUnavailable(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{err: domai.ErrUnavailable})
	rec := do(t, h, http.MethodPost, "/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "FinArthGPT is currently unavailable.", decode(t, rec)["reply"])
}

func TestQuotaExceededMapsTo429(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{err: domai.ErrQuotaExceeded})
	rec := do(t, h, http.MethodGet, "/circulars/42/summary-live", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestListAudits(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{})
	rec := do(t, h, http.MethodGet, "/audits", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var audits []audit.Audit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &audits))
	require.NotEmpty(t, audits)
	assert.NotEmpty(t, audits[0].Controls)
}

func TestGetAuditNotFound(t *testing.T) {
	h := newTestRouter(seededRepo(), &stubAI{})
	rec := do(t, h, http.MethodGet, "/audits/AUD-0000-00", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Audit not found", decode(t, rec)["error"])
}
