package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/finarth/regdesk/internal/domain/circulars"
)

var errBoom = errors.New("boom")

// fakeAPI implements API with per-method function hooks. Unset hooks
// return zero values.
type fakeAPI struct {
	SummaryFn          func(ctx context.Context, id domain.CircularID) (string, error)
	ClausesFn          func(ctx context.Context, id domain.CircularID) ([]domain.Clause, error)
	InsightsFn         func(ctx context.Context, id domain.CircularID) (*domain.Insights, error)
	ReferencesFn       func(ctx context.Context, id domain.CircularID) (domain.ReferenceGroups, error)
	ReferenceFn        func(ctx context.Context, circularID domain.CircularID, refID int64) (domain.Reference, error)
	ReferenceSummaryFn func(ctx context.Context, circularID domain.CircularID, refID int64) (string, error)
	ChaptersFn         func(ctx context.Context, refID int64) ([]domain.Chapter, error)
	ChapterSummaryFn   func(ctx context.Context, refID int64, title, parentSummary string) (string, error)
}

func (f *fakeAPI) Summary(ctx context.Context, id domain.CircularID) (string, error) {
	if f.SummaryFn == nil {
		return "", nil
	}
	return f.SummaryFn(ctx, id)
}

func (f *fakeAPI) Clauses(ctx context.Context, id domain.CircularID) ([]domain.Clause, error) {
	if f.ClausesFn == nil {
		return nil, nil
	}
	return f.ClausesFn(ctx, id)
}

func (f *fakeAPI) Insights(ctx context.Context, id domain.CircularID) (*domain.Insights, error) {
	if f.InsightsFn == nil {
		return nil, nil
	}
	return f.InsightsFn(ctx, id)
}

func (f *fakeAPI) References(ctx context.Context, id domain.CircularID) (domain.ReferenceGroups, error) {
	if f.ReferencesFn == nil {
		return domain.ReferenceGroups{}, nil
	}
	return f.ReferencesFn(ctx, id)
}

func (f *fakeAPI) Reference(ctx context.Context, circularID domain.CircularID, refID int64) (domain.Reference, error) {
	if f.ReferenceFn == nil {
		return domain.Reference{}, nil
	}
	return f.ReferenceFn(ctx, circularID, refID)
}

func (f *fakeAPI) ReferenceSummary(ctx context.Context, circularID domain.CircularID, refID int64) (string, error) {
	if f.ReferenceSummaryFn == nil {
		return "", nil
	}
	return f.ReferenceSummaryFn(ctx, circularID, refID)
}

func (f *fakeAPI) Chapters(ctx context.Context, refID int64) ([]domain.Chapter, error) {
	if f.ChaptersFn == nil {
		return nil, nil
	}
	return f.ChaptersFn(ctx, refID)
}

func (f *fakeAPI) ChapterSummary(ctx context.Context, refID int64, title, parentSummary string) (string, error) {
	if f.ChapterSummaryFn == nil {
		return "", nil
	}
	return f.ChapterSummaryFn(ctx, refID, title, parentSummary)
}

func circular(id int64) domain.Circular {
	return domain.Circular{ID: domain.CircularID(id), Subject: "Circular"}
}

func settled(s *Session) func() bool {
	return func() bool {
		l := s.Snapshot().Loading
		return !l.Summary && !l.Clauses && !l.Insights
	}
}

func waitSettled(t *testing.T, s *Session) {
	t.Helper()
	require.Eventually(t, settled(s), time.Second, time.Millisecond)
}

func TestSelectHappyPath(t *testing.T) {
	api := &fakeAPI{
		SummaryFn: func(_ context.Context, id domain.CircularID) (string, error) {
			return "Text", nil
		},
		ClausesFn: func(_ context.Context, id domain.CircularID) ([]domain.Clause, error) {
			return []domain.Clause{{Number: 1, Text: "Clause one"}}, nil
		},
		InsightsFn: func(_ context.Context, id domain.CircularID) (*domain.Insights, error) {
			return &domain.Insights{OrganizationImpact: "X"}, nil
		},
	}
	s := New(api, nil)

	s.Select(context.Background(), circular(42))
	waitSettled(t, s)

	snap := s.Snapshot()
	assert.Equal(t, "Text", snap.Summary)
	require.Len(t, snap.Clauses, 1)
	assert.Equal(t, "Clause one", snap.Clauses[0].Text)
	require.NotNil(t, snap.Insights)
	assert.Equal(t, "X", snap.Insights.OrganizationImpact)
}

func TestSelectResetsStateBeforeFetch(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{
		SummaryFn: func(_ context.Context, id domain.CircularID) (string, error) {
			<-release
			return "fresh", nil
		},
		ClausesFn: func(_ context.Context, id domain.CircularID) ([]domain.Clause, error) {
			<-release
			return []domain.Clause{{Number: 1, Text: "fresh clause"}}, nil
		},
		InsightsFn: func(_ context.Context, id domain.CircularID) (*domain.Insights, error) {
			<-release
			return &domain.Insights{OrganizationImpact: "fresh"}, nil
		},
	}
	s := New(api, nil)

	// Seed state from a first selection.
	close(release)
	s.Select(context.Background(), circular(1))
	waitSettled(t, s)
	require.Equal(t, "fresh", s.Snapshot().Summary)

	// Second selection with fetches blocked: no stale data may be visible.
	blocked := make(chan struct{})
	api.SummaryFn = func(_ context.Context, id domain.CircularID) (string, error) {
		<-blocked
		return "second", nil
	}
	api.ClausesFn = func(_ context.Context, id domain.CircularID) ([]domain.Clause, error) {
		<-blocked
		return nil, nil
	}
	api.InsightsFn = func(_ context.Context, id domain.CircularID) (*domain.Insights, error) {
		<-blocked
		return nil, nil
	}
	s.Select(context.Background(), circular(2))

	snap := s.Snapshot()
	assert.Empty(t, snap.Summary)
	assert.Empty(t, snap.Clauses)
	assert.Nil(t, snap.Insights)
	assert.True(t, snap.Loading.Summary)
	assert.True(t, snap.Loading.Clauses)
	assert.True(t, snap.Loading.Insights)

	close(blocked)
	waitSettled(t, s)
}

func TestFallbackDefaultsOnFailure(t *testing.T) {
	api := &fakeAPI{
		SummaryFn: func(_ context.Context, id domain.CircularID) (string, error) {
			return "", errBoom
		},
		ClausesFn: func(_ context.Context, id domain.CircularID) ([]domain.Clause, error) {
			return nil, errBoom
		},
		InsightsFn: func(_ context.Context, id domain.CircularID) (*domain.Insights, error) {
			return nil, errBoom
		},
	}
	s := New(api, nil)

	s.Select(context.Background(), circular(42))
	waitSettled(t, s)

	snap := s.Snapshot()
	assert.Equal(t, SummaryFailure, snap.Summary)
	require.NotNil(t, snap.Clauses)
	assert.Empty(t, snap.Clauses)
	assert.Nil(t, snap.Insights)
}

func TestPartialFailureDoesNotBlockOthers(t *testing.T) {
	api := &fakeAPI{
		SummaryFn: func(_ context.Context, id domain.CircularID) (string, error) {
			return "Text", nil
		},
		ClausesFn: func(_ context.Context, id domain.CircularID) ([]domain.Clause, error) {
			return nil, errBoom
		},
		InsightsFn: func(_ context.Context, id domain.CircularID) (*domain.Insights, error) {
			return &domain.Insights{OrganizationImpact: "X"}, nil
		},
	}
	s := New(api, nil)

	s.Select(context.Background(), circular(42))
	waitSettled(t, s)

	snap := s.Snapshot()
	assert.Equal(t, "Text", snap.Summary)
	assert.NotNil(t, snap.Clauses)
	assert.Empty(t, snap.Clauses)
	require.NotNil(t, snap.Insights)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	first := make(chan struct{})
	api := &fakeAPI{}
	api.SummaryFn = func(_ context.Context, id domain.CircularID) (string, error) {
		if id == 1 {
			<-first
			return "stale", nil
		}
		return "current", nil
	}
	s := New(api, nil)

	s.Select(context.Background(), circular(1))
	s.Select(context.Background(), circular(2))
	waitSettled(t, s)
	require.Equal(t, "current", s.Snapshot().Summary)

	// Let the first selection's fetch complete late; it must be dropped.
	close(first)
	assert.Never(t, func() bool {
		return s.Snapshot().Summary == "stale"
	}, 50*time.Millisecond, 5*time.Millisecond)
}

func TestReferencePromotion(t *testing.T) {
	api := &fakeAPI{
		ReferencesFn: func(_ context.Context, id domain.CircularID) (domain.ReferenceGroups, error) {
			return domain.ReferenceGroups{
				External: []domain.Reference{{ID: 7, Text: "Master Direction KYC"}},
				Internal: []domain.Reference{{ID: 8, Text: "Para 4 above"}},
				Count:    2,
			}, nil
		},
		ReferenceFn: func(_ context.Context, circularID domain.CircularID, refID int64) (domain.Reference, error) {
			return domain.Reference{ID: refID, Text: "Master Direction KYC", PDFText: "full text"}, nil
		},
		ReferenceSummaryFn: func(_ context.Context, circularID domain.CircularID, refID int64) (string, error) {
			return "Ref summary", nil
		},
		ChaptersFn: func(_ context.Context, refID int64) ([]domain.Chapter, error) {
			return []domain.Chapter{{ID: "1.0", Title: "Preliminary"}}, nil
		},
	}
	s := New(api, nil)
	ctx := context.Background()

	s.Select(ctx, circular(42))
	waitSettled(t, s)

	s.OpenReferences(ctx)
	require.Eventually(t, func() bool { return !s.Snapshot().Loading.Refs }, time.Second, time.Millisecond)
	snap := s.Snapshot()
	assert.True(t, snap.RefModalOpen)
	require.Len(t, snap.References, 2)
	assert.Equal(t, int64(7), snap.References[0].ID)

	s.SelectReference(ctx, 7)
	require.Eventually(t, func() bool { return s.Snapshot().ActiveRef != nil }, time.Second, time.Millisecond)

	s.Promote(ctx)
	require.Eventually(t, func() bool { return s.Snapshot().View == ViewReference }, time.Second, time.Millisecond)

	snap = s.Snapshot()
	assert.False(t, snap.RefModalOpen)
	require.NotNil(t, snap.PromotedRef)
	assert.Equal(t, int64(7), snap.PromotedRef.ID)
	assert.Equal(t, "Ref summary", snap.PromotedRef.Summary)
	require.Len(t, snap.PromotedRef.Chapters, 1)
}

func TestPromotionSurvivesEnrichmentFailure(t *testing.T) {
	api := &fakeAPI{
		ReferenceFn: func(_ context.Context, circularID domain.CircularID, refID int64) (domain.Reference, error) {
			return domain.Reference{ID: refID, Text: "Master Direction KYC"}, nil
		},
		ReferenceSummaryFn: func(_ context.Context, circularID domain.CircularID, refID int64) (string, error) {
			return "", errBoom
		},
		ChaptersFn: func(_ context.Context, refID int64) ([]domain.Chapter, error) {
			return nil, errBoom
		},
	}
	s := New(api, nil)
	ctx := context.Background()

	s.Select(ctx, circular(42))
	waitSettled(t, s)
	s.SelectReference(ctx, 7)
	require.Eventually(t, func() bool { return s.Snapshot().ActiveRef != nil }, time.Second, time.Millisecond)

	s.Promote(ctx)
	require.Eventually(t, func() bool { return s.Snapshot().View == ViewReference }, time.Second, time.Millisecond)

	snap := s.Snapshot()
	require.NotNil(t, snap.PromotedRef)
	assert.Equal(t, SummaryFailure, snap.PromotedRef.Summary)
	assert.NotNil(t, snap.PromotedRef.Chapters)
	assert.Empty(t, snap.PromotedRef.Chapters)
}

func TestChapterSummaryPassesParentContext(t *testing.T) {
	var gotTitle, gotParent string
	api := &fakeAPI{
		ReferenceFn: func(_ context.Context, circularID domain.CircularID, refID int64) (domain.Reference, error) {
			return domain.Reference{ID: refID}, nil
		},
		ReferenceSummaryFn: func(_ context.Context, circularID domain.CircularID, refID int64) (string, error) {
			return "Parent summary", nil
		},
		ChapterSummaryFn: func(_ context.Context, refID int64, title, parentSummary string) (string, error) {
			gotTitle, gotParent = title, parentSummary
			return "Chapter text", nil
		},
	}
	s := New(api, nil)
	ctx := context.Background()

	s.Select(ctx, circular(42))
	waitSettled(t, s)
	s.SelectReference(ctx, 7)
	require.Eventually(t, func() bool { return s.Snapshot().ActiveRef != nil }, time.Second, time.Millisecond)
	s.Promote(ctx)
	require.Eventually(t, func() bool { return s.Snapshot().View == ViewReference }, time.Second, time.Millisecond)

	s.OpenChapter(ctx, domain.Chapter{ID: "1.0", Title: "Preliminary"})
	require.Eventually(t, func() bool { return s.Snapshot().ChapterSummary != "" }, time.Second, time.Millisecond)

	assert.Equal(t, "Chapter text", s.Snapshot().ChapterSummary)
	assert.Equal(t, "Preliminary", gotTitle)
	assert.Equal(t, "Parent summary", gotParent)
}

func TestDeselectClearsEverything(t *testing.T) {
	api := &fakeAPI{
		SummaryFn: func(_ context.Context, id domain.CircularID) (string, error) {
			return "Text", nil
		},
	}
	s := New(api, nil)

	s.Select(context.Background(), circular(42))
	waitSettled(t, s)
	s.Deselect()

	snap := s.Snapshot()
	assert.Nil(t, snap.Selected)
	assert.Empty(t, snap.Summary)
	assert.Equal(t, ViewCirculars, snap.View)
	assert.Equal(t, Loading{}, snap.Loading)
}

func TestSupersededPromotionClearsLoadingFlag(t *testing.T) {
	block := make(chan struct{})
	api := &fakeAPI{
		ReferenceFn: func(_ context.Context, _ domain.CircularID, refID int64) (domain.Reference, error) {
			return domain.Reference{ID: refID, Text: "Ref"}, nil
		},
		ReferenceSummaryFn: func(_ context.Context, _ domain.CircularID, _ int64) (string, error) {
			<-block
			return "Ref summary", nil
		},
	}
	s := New(api, nil)

	s.Select(context.Background(), circular(42))
	waitSettled(t, s)
	s.SelectReference(context.Background(), 7)
	require.Eventually(t, func() bool { return s.Snapshot().ActiveRef != nil }, time.Second, time.Millisecond)

	s.Promote(context.Background())
	require.True(t, s.Snapshot().Loading.Promotion)

	// A new detail fetch supersedes the promotion while it is in flight.
	s.SelectReference(context.Background(), 8)
	assert.False(t, s.Snapshot().Loading.Promotion)

	close(block)
	assert.Never(t, func() bool {
		snap := s.Snapshot()
		return snap.Loading.Promotion || snap.View == ViewReference
	}, 100*time.Millisecond, 5*time.Millisecond)
}

func TestBackToCircularsDiscardsLateChapterSummary(t *testing.T) {
	block := make(chan struct{})
	api := &fakeAPI{
		ReferenceFn: func(_ context.Context, _ domain.CircularID, refID int64) (domain.Reference, error) {
			return domain.Reference{ID: refID, Text: "Ref"}, nil
		},
		ChapterSummaryFn: func(_ context.Context, _ int64, _, _ string) (string, error) {
			<-block
			return "Late chapter text", nil
		},
	}
	s := New(api, nil)

	s.Select(context.Background(), circular(42))
	waitSettled(t, s)
	s.SelectReference(context.Background(), 7)
	require.Eventually(t, func() bool { return s.Snapshot().ActiveRef != nil }, time.Second, time.Millisecond)
	s.Promote(context.Background())
	require.Eventually(t, func() bool { return s.Snapshot().View == ViewReference }, time.Second, time.Millisecond)

	s.OpenChapter(context.Background(), domain.Chapter{Title: "Scope"})
	require.True(t, s.Snapshot().Loading.Chapter)

	s.BackToCirculars()
	close(block)

	assert.Never(t, func() bool {
		snap := s.Snapshot()
		return snap.ChapterSummary != "" || snap.Loading.Chapter
	}, 100*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, ViewCirculars, s.Snapshot().View)
}
