package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prepdeck/prepdeck/internal/corpus"
	"github.com/prepdeck/prepdeck/internal/export"
)

const maxSampleSize = 50

// questionResponse is a QARecord plus its answer rendered to HTML,
// localized to the request's Accept-Language when overlays exist.
type questionResponse struct {
	corpus.QARecord
	AnswerHTML string `json:"answerHTML,omitempty"`
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.store.ListTopics(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

func (s *Server) handleTopicQuestions(w http.ResponseWriter, r *http.Request) {
	topic := r.PathValue("topic")

	recs, err := s.store.GetByTopic(r.Context(), topic)
	s.logLookup("get_by_topic", topic, err == nil)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"topic":     topic,
		"questions": recs,
	})
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := s.store.GetByID(r.Context(), id)
	s.logLookup("get_by_id", id, err == nil)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, questionResponse{
		QARecord:   rec,
		AnswerHTML: s.renderAnswer(rec, r.Header.Get("Accept-Language")),
	})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")

	n := 1
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid sample size %q", raw))
			return
		}
		n = parsed
	}
	if n > maxSampleSize {
		n = maxSampleSize
	}

	recs, err := s.store.Sample(r.Context(), topic, n)
	s.logLookup("sample", topic, err == nil)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"questions": recs})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	plan := s.source.Corpus().Plan()
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	records := s.source.Corpus().Records()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="corpus.xlsx"`)
	if err := export.Workbook(w, records); err != nil {
		// Headers are already sent; all we can do is log.
		slog.Error("export failed", "error", err)
	}
}

// renderAnswer prefers the corpus's localized overlays and falls back
// to rendering the record's own answer.
func (s *Server) renderAnswer(rec corpus.QARecord, acceptLanguage string) string {
	if s.source != nil {
		if html, ok := s.source.Corpus().AnswerHTML(rec.ID, acceptLanguage); ok {
			return html
		}
	}
	html, err := corpus.RenderHTML(rec.Answer)
	if err != nil {
		return ""
	}
	return html
}
