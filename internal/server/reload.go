package server

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/prepdeck/prepdeck/internal/corpus"
)

// handleReload re-loads the corpus from disk and swaps it in
// atomically. Guarded by a bearer token checked against the configured
// bcrypt hash; with no hash configured the endpoint is disabled.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reloadTokenHash == "" {
		writeError(w, http.StatusNotFound, "reload is not enabled")
		return
	}

	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.reloadTokenHash), []byte(token)); err != nil {
		writeError(w, http.StatusForbidden, "invalid token")
		return
	}

	c, err := corpus.Load(s.corpusPath)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.source.SetCorpus(c)

	if s.sync != nil {
		if err := s.sync(r.Context(), c); err != nil {
			writeError(w, http.StatusInternalServerError, "corpus loaded but backend sync failed: "+err.Error())
			return
		}
	}
	if s.invalidate != nil {
		if err := s.invalidate(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "corpus loaded but cache invalidation failed: "+err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records":   len(c.Records()),
		"planWeeks": c.Plan().TotalWeeks(),
	})
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
