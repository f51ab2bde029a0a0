// Package session coordinates the dashboard's selection-driven fetches: when
// a circular is selected, three independent enrichments (summary, clauses,
// insights) are requested concurrently and tracked separately so each can
// render as it arrives.
package session

import (
	"context"
	"sync"

	domain "github.com/finarth/regdesk/internal/domain/circulars"
)

// SummaryFailure is shown when the summary fetch fails. Clauses and
// insights fall back silently to their empty defaults instead; the
// asymmetry is deliberate product behavior.
const SummaryFailure = "Failed to load summary."

// API is the slice of the backend the session consumes. *client.Client
// satisfies it.
type API interface {
	Summary(ctx context.Context, id domain.CircularID) (string, error)
	Clauses(ctx context.Context, id domain.CircularID) ([]domain.Clause, error)
	Insights(ctx context.Context, id domain.CircularID) (*domain.Insights, error)
	References(ctx context.Context, id domain.CircularID) (domain.ReferenceGroups, error)
	Reference(ctx context.Context, circularID domain.CircularID, refID int64) (domain.Reference, error)
	ReferenceSummary(ctx context.Context, circularID domain.CircularID, refID int64) (string, error)
	Chapters(ctx context.Context, refID int64) ([]domain.Chapter, error)
	ChapterSummary(ctx context.Context, refID int64, title, parentSummary string) (string, error)
}

// View names the top-level pane the session is showing.
type View string

const (
	ViewCirculars View = "circulars"
	ViewReference View = "reference"
)

// Loading tracks the in-flight flag for each enrichment. A flag is true
// from the moment a fetch is issued until it settles, success or failure.
type Loading struct {
	Summary   bool
	Clauses   bool
	Insights  bool
	Refs      bool
	RefDetail bool
	Promotion bool
	Chapter   bool
}

// Snapshot is a consistent copy of the session state for rendering.
type Snapshot struct {
	Selected *domain.Circular
	Summary  string
	Clauses  []domain.Clause
	Insights *domain.Insights
	Loading  Loading

	References     []domain.Reference
	ActiveRef      *domain.Reference
	RefModalOpen   bool
	View           View
	PromotedRef    *PromotedReference
	ChapterSummary string
}

// Session owns the selection state. Fetches run in goroutines; each
// captures the selection token active at issue time and discards its
// result if the selection has moved on, so a late response for a stale
// selection can never overwrite the current one.
type Session struct {
	mu  sync.Mutex
	api API

	token    uint64
	refToken uint64

	selected *domain.Circular
	summary  string
	clauses  []domain.Clause
	insights *domain.Insights
	loading  Loading

	references     []domain.Reference
	activeRef      *domain.Reference
	refModalOpen   bool
	view           View
	promotedRef    *PromotedReference
	chapterSummary string

	onChange func()
}

// New builds a session over api. onChange fires after every state
// mutation; it runs on the mutating goroutine and may be nil.
func New(api API, onChange func()) *Session {
	return &Session{api: api, view: ViewCirculars, onChange: onChange}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Selected:       s.selected,
		Summary:        s.summary,
		Clauses:        s.clauses,
		Insights:       s.insights,
		Loading:        s.loading,
		References:     s.references,
		ActiveRef:      s.activeRef,
		RefModalOpen:   s.refModalOpen,
		View:           s.view,
		PromotedRef:    s.promotedRef,
		ChapterSummary: s.chapterSummary,
	}
}

// Select makes c the active circular. Previous enrichment state is cleared
// to its empty default before any request is issued, then the three
// fetches run concurrently.
func (s *Session) Select(ctx context.Context, c domain.Circular) {
	s.mu.Lock()
	s.token++
	tok := s.token
	sel := c
	s.selected = &sel
	s.summary = ""
	s.clauses = nil
	s.insights = nil
	s.references = nil
	s.activeRef = nil
	s.promotedRef = nil
	s.refModalOpen = false
	s.view = ViewCirculars
	s.loading = Loading{Summary: true, Clauses: true, Insights: true}
	s.mu.Unlock()
	s.notify()

	go s.fetchSummary(ctx, tok, c.ID)
	go s.fetchClauses(ctx, tok, c.ID)
	go s.fetchInsights(ctx, tok, c.ID)
}

// Deselect returns to the list view and drops all enrichment state.
func (s *Session) Deselect() {
	s.mu.Lock()
	s.token++
	s.refToken++
	s.selected = nil
	s.summary = ""
	s.clauses = nil
	s.insights = nil
	s.references = nil
	s.activeRef = nil
	s.promotedRef = nil
	s.refModalOpen = false
	s.view = ViewCirculars
	s.chapterSummary = ""
	s.loading = Loading{}
	s.mu.Unlock()
	s.notify()
}

func (s *Session) fetchSummary(ctx context.Context, tok uint64, id domain.CircularID) {
	summary, err := s.api.Summary(ctx, id)
	s.apply(tok, func() {
		if err != nil {
			s.summary = SummaryFailure
		} else {
			s.summary = summary
		}
		s.loading.Summary = false
	})
}

func (s *Session) fetchClauses(ctx context.Context, tok uint64, id domain.CircularID) {
	clauses, err := s.api.Clauses(ctx, id)
	s.apply(tok, func() {
		if err != nil {
			s.clauses = []domain.Clause{}
		} else if clauses == nil {
			s.clauses = []domain.Clause{}
		} else {
			s.clauses = clauses
		}
		s.loading.Clauses = false
	})
}

func (s *Session) fetchInsights(ctx context.Context, tok uint64, id domain.CircularID) {
	insights, err := s.api.Insights(ctx, id)
	s.apply(tok, func() {
		if err != nil {
			s.insights = nil
		} else {
			s.insights = insights
		}
		s.loading.Insights = false
	})
}

// apply runs fn under the lock only if the selection token still matches.
func (s *Session) apply(tok uint64, fn func()) {
	s.mu.Lock()
	if tok != s.token {
		s.mu.Unlock()
		return
	}
	fn()
	s.mu.Unlock()
	s.notify()
}

func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
