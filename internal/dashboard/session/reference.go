package session

import (
	"context"
	"sync"

	domain "github.com/finarth/regdesk/internal/domain/circulars"
)

const refDetailFailure = "Failed to load reference."

// PromotedReference is a reference enriched for the full-page view.
type PromotedReference struct {
	domain.Reference
	Summary  string
	Chapters []domain.Chapter
}

// OpenReferences opens the reference modal for the selected circular and
// loads its reference list. External entries come first, then internal,
// matching the backend's own grouping.
func (s *Session) OpenReferences(ctx context.Context) {
	s.mu.Lock()
	if s.selected == nil {
		s.mu.Unlock()
		return
	}
	tok := s.token
	id := s.selected.ID
	s.refModalOpen = true
	s.references = nil
	s.activeRef = nil
	s.loading.Refs = true
	s.mu.Unlock()
	s.notify()

	go func() {
		groups, err := s.api.References(ctx, id)
		s.apply(tok, func() {
			if err == nil {
				list := make([]domain.Reference, 0, len(groups.External)+len(groups.Internal))
				list = append(list, groups.External...)
				list = append(list, groups.Internal...)
				s.references = list
			} else {
				s.references = []domain.Reference{}
			}
			s.loading.Refs = false
		})
	}()
}

// CloseReferences closes the modal without touching the loaded list.
func (s *Session) CloseReferences() {
	s.mu.Lock()
	s.refModalOpen = false
	s.mu.Unlock()
	s.notify()
}

// SelectReference fetches full detail for one reference. Only the latest
// detail fetch is considered active; starting a new one replaces any
// in-flight result.
func (s *Session) SelectReference(ctx context.Context, refID int64) {
	s.mu.Lock()
	if s.selected == nil {
		s.mu.Unlock()
		return
	}
	tok := s.token
	s.refToken++
	rtok := s.refToken
	id := s.selected.ID
	s.loading.RefDetail = true
	// Bumping the token discards in-flight promotion and chapter fetches,
	// so their flags must not stay latched.
	s.loading.Promotion = false
	s.loading.Chapter = false
	s.mu.Unlock()
	s.notify()

	go func() {
		ref, err := s.api.Reference(ctx, id, refID)
		s.applyRef(tok, rtok, func() {
			if err != nil {
				s.activeRef = &domain.Reference{ID: refID, Text: refDetailFailure}
			} else {
				s.activeRef = &ref
			}
			s.loading.RefDetail = false
		})
	}()
}

// Promote enriches the active reference with its summary and chapters,
// merges both onto the record, closes the modal, and switches to the
// full-page reference view. Each enrichment fails independently.
func (s *Session) Promote(ctx context.Context) {
	s.mu.Lock()
	if s.selected == nil || s.activeRef == nil {
		s.mu.Unlock()
		return
	}
	tok := s.token
	rtok := s.refToken
	id := s.selected.ID
	ref := *s.activeRef
	s.loading.Promotion = true
	s.mu.Unlock()
	s.notify()

	var (
		wg       sync.WaitGroup
		summary  string
		chapters []domain.Chapter
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		got, err := s.api.ReferenceSummary(ctx, id, ref.ID)
		if err != nil {
			summary = SummaryFailure
			return
		}
		summary = got
	}()
	go func() {
		defer wg.Done()
		got, err := s.api.Chapters(ctx, ref.ID)
		if err != nil {
			chapters = []domain.Chapter{}
			return
		}
		chapters = got
	}()
	wg.Wait()

	s.applyRef(tok, rtok, func() {
		s.promotedRef = &PromotedReference{Reference: ref, Summary: summary, Chapters: chapters}
		s.refModalOpen = false
		s.view = ViewReference
		s.chapterSummary = ""
		s.loading.Promotion = false
	})
}

// OpenChapter fetches a chapter-scoped summary for the promoted reference,
// passing the reference summary as context for the generator.
func (s *Session) OpenChapter(ctx context.Context, ch domain.Chapter) {
	s.mu.Lock()
	if s.promotedRef == nil {
		s.mu.Unlock()
		return
	}
	tok := s.token
	rtok := s.refToken
	refID := s.promotedRef.ID
	parent := s.promotedRef.Summary
	s.chapterSummary = ""
	s.loading.Chapter = true
	s.mu.Unlock()
	s.notify()

	go func() {
		got, err := s.api.ChapterSummary(ctx, refID, ch.Title, parent)
		s.applyRef(tok, rtok, func() {
			if err != nil {
				s.chapterSummary = SummaryFailure
			} else {
				s.chapterSummary = got
			}
			s.loading.Chapter = false
		})
	}()
}

// BackToCirculars leaves the full-page reference view. Responses from
// fetches issued for the abandoned view are discarded.
func (s *Session) BackToCirculars() {
	s.mu.Lock()
	s.refToken++
	s.view = ViewCirculars
	s.promotedRef = nil
	s.chapterSummary = ""
	s.loading.Promotion = false
	s.loading.Chapter = false
	s.mu.Unlock()
	s.notify()
}

// applyRef runs fn only if both the selection and the reference tokens
// still match.
func (s *Session) applyRef(tok, rtok uint64, fn func()) {
	s.mu.Lock()
	if tok != s.token || rtok != s.refToken {
		s.mu.Unlock()
		return
	}
	fn()
	s.mu.Unlock()
	s.notify()
}
