package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appassist "github.com/finarth/regdesk/internal/application/assist"
	appcirculars "github.com/finarth/regdesk/internal/application/circulars"
	"github.com/finarth/regdesk/internal/dashboard/audit"
	domai "github.com/finarth/regdesk/internal/domain/ai"
	domain "github.com/finarth/regdesk/internal/domain/circulars"
	"github.com/finarth/regdesk/internal/middleware"
)

// errBadRequest marks handler errors caused by unusable request input.
var errBadRequest = errors.New("bad request")

type Router struct {
	circularsSvc *appcirculars.Service
	assistSvc    *appassist.Service
	audits       audit.Provider
}

func NewRouter(circularsSvc *appcirculars.Service, assistSvc *appassist.Service, audits audit.Provider) http.Handler {
	r := &Router{circularsSvc: circularsSvc, assistSvc: assistSvc, audits: audits}
	mux := chi.NewRouter()

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Get("/circulars", r.wrap(r.handleListCirculars))
	mux.Get("/sebi-circulars", r.wrap(r.handleListSEBICirculars))

	mux.Route("/circulars/{id}", func(rt chi.Router) {
		rt.Get("/summary-live", r.wrap(r.handleCircularSummary))
		rt.Get("/clauses-live", r.wrap(r.handleCircularClauses))
		rt.Get("/insights-live", r.wrap(r.handleCircularInsights))
		rt.Get("/references", r.wrap(r.handleListReferences))
		rt.Get("/references/{refID}", r.wrap(r.handleGetReference))
		rt.Get("/references/{refID}/summary-live", r.wrap(r.handleReferenceSummary))
	})

	mux.Route("/references/{refID}", func(rt chi.Router) {
		rt.Get("/chapters-live", r.wrap(r.handleChapters))
		rt.Get("/chapter-summary", r.wrap(r.handleChapterSummary))
	})

	mux.Get("/audits", r.wrap(r.handleListAudits))
	mux.Get("/audits/{id}", r.wrap(r.handleGetAudit))

	mux.Post("/generate-actionables", r.wrap(r.handleActionables))
	mux.Post("/chat", r.wrap(r.handleChat))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, errBadRequest):
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			case errors.Is(err, domain.ErrNotFound):
				writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			case errors.Is(err, domai.ErrQuotaExceeded):
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "ai quota exceeded"})
			default:
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error": "Database error", "details": err.Error(),
				})
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func pathID(req *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(req, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return id, nil
}

// GET /circulars
func (r *Router) handleListCirculars(w http.ResponseWriter, req *http.Request) error {
	list, err := r.circularsSvc.ListCirculars(req.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /sebi-circulars
func (r *Router) handleListSEBICirculars(w http.ResponseWriter, req *http.Request) error {
	list, err := r.circularsSvc.ListSEBICirculars(req.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /circulars/{id}/summary-live
//
// LLM failure degrades to a fixed summary string with 503 so the dashboard
// can show it inline; a missing circular is still a hard 404.
func (r *Router) handleCircularSummary(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req, "id")
	if err != nil {
		return err
	}
	summary, err := r.circularsSvc.Summary(req.Context(), domain.CircularID(id))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Circular not found"})
		return nil
	case errors.Is(err, domai.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"summary": "LLM summarization failed"})
		return nil
	case err != nil:
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
	return nil
}

// GET /circulars/{id}/clauses-live
//
// LLM failure degrades to an empty list with 200, not an error payload.
func (r *Router) handleCircularClauses(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req, "id")
	if err != nil {
		return err
	}
	clauses, err := r.circularsSvc.Clauses(req.Context(), domain.CircularID(id))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Circular not found"})
		return nil
	case errors.Is(err, domai.ErrUnavailable):
		clauses = []domain.Clause{}
	case err != nil:
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"clauses": clauses})
	return nil
}

// GET /circulars/{id}/insights-live
//
// LLM failure degrades to the zero-value object with 200.
func (r *Router) handleCircularInsights(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req, "id")
	if err != nil {
		return err
	}
	insights, err := r.circularsSvc.Insights(req.Context(), domain.CircularID(id))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Circular not found"})
		return nil
	case errors.Is(err, domai.ErrUnavailable):
		insights = &domain.Insights{}
	case err != nil:
		return err
	}
	writeJSON(w, http.StatusOK, insights)
	return nil
}

// GET /circulars/{id}/references
func (r *Router) handleListReferences(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req, "id")
	if err != nil {
		return err
	}
	groups, err := r.circularsSvc.References(req.Context(), domain.CircularID(id))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, groups)
	return nil
}

// GET /circulars/{id}/references/{refID}
func (r *Router) handleGetReference(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req, "id")
	if err != nil {
		return err
	}
	refID, err := pathID(req, "refID")
	if err != nil {
		return err
	}
	ref, err := r.circularsSvc.Reference(req.Context(), domain.CircularID(id), refID)
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Reference not found"})
		return nil
	}
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, ref)
	return nil
}

// GET /circulars/{id}/references/{refID}/summary-live
func (r *Router) handleReferenceSummary(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req, "id")
	if err != nil {
		return err
	}
	refID, err := pathID(req, "refID")
	if err != nil {
		return err
	}
	summary, err := r.circularsSvc.ReferenceSummary(req.Context(), domain.CircularID(id), refID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"summary": "Reference not found"})
		return nil
	case errors.Is(err, domai.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"summary": "LLM summarization failed"})
		return nil
	case err != nil:
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
	return nil
}

// GET /references/{refID}/chapters-live
func (r *Router) handleChapters(w http.ResponseWriter, req *http.Request) error {
	refID, err := pathID(req, "refID")
	if err != nil {
		return err
	}
	chapters, err := r.circularsSvc.Chapters(req.Context(), refID)
	if errors.Is(err, domai.ErrUnavailable) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"chapters": []domain.Chapter{}})
		return nil
	}
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"chapters": chapters})
	return nil
}

// GET /references/{refID}/chapter-summary?title=&parent_summary=
func (r *Router) handleChapterSummary(w http.ResponseWriter, req *http.Request) error {
	refID, err := pathID(req, "refID")
	if err != nil {
		return err
	}
	title := req.URL.Query().Get("title")
	if err := middleware.ValidateChapterTitle(title); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"summary": "Invalid chapter title"})
		return nil
	}
	parent := req.URL.Query().Get("parent_summary")

	summary, err := r.circularsSvc.ChapterSummary(req.Context(), refID, title, parent)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"summary": "Reference not found"})
		return nil
	case errors.Is(err, domai.ErrUnavailable):
		// Soft failure: the chapter modal renders this string as the body.
		writeJSON(w, http.StatusOK, map[string]string{"summary": "Failed to load summary."})
		return nil
	case err != nil:
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
	return nil
}

// POST /generate-actionables
// Body: {"clause": "<text>"}
func (r *Router) handleActionables(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Clause string `json:"clause"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}

	acts, err := r.assistSvc.Actionables(req.Context(), body.Clause)
	switch {
	case errors.Is(err, appassist.ErrEmptyInput):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"actionables": []domain.Actionable{}, "error": "Clause text missing",
		})
		return nil
	case errors.Is(err, domai.ErrUnavailable):
		acts = []domain.Actionable{}
	case err != nil:
		return err
	}
	if acts == nil {
		acts = []domain.Actionable{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"actionables": acts})
	return nil
}

// POST /chat
// Body: {"message": "<question>"}
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}

	reply, err := r.assistSvc.Chat(req.Context(), middleware.SanitizeString(body.Message))
	switch {
	case errors.Is(err, appassist.ErrEmptyInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"reply": "Please enter a valid question."})
		return nil
	case errors.Is(err, domai.ErrUnavailable):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"reply": "FinArthGPT is currently unavailable."})
		return nil
	case err != nil:
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
	return nil
}

// GET /audits
func (r *Router) handleListAudits(w http.ResponseWriter, req *http.Request) error {
	list, err := r.audits.Audits(req.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /audits/{id}
func (r *Router) handleGetAudit(w http.ResponseWriter, req *http.Request) error {
	a, err := r.audits.Audit(req.Context(), chi.URLParam(req, "id"))
	if errors.Is(err, audit.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Audit not found"})
		return nil
	}
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, a)
	return nil
}
