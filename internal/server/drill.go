package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/prepdeck/prepdeck/internal/corpus"
	"github.com/prepdeck/prepdeck/internal/store"
)

// drillRequest asks for the next practice question.
type drillRequest struct {
	Topic string `json:"topic,omitempty"`
}

// drillResponse carries one sampled question, or an error for an
// unknown topic. The connection stays open either way.
type drillResponse struct {
	Question *corpus.QARecord `json:"question,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// handleDrill serves an interactive practice session: each client
// message requests one random question, optionally scoped to a topic.
func (s *Server) handleDrill(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("drill accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	for {
		var req drillRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			// Client closed or context cancelled; both end the session.
			return
		}

		recs, err := s.store.Sample(ctx, req.Topic, 1)
		s.logLookup("sample", req.Topic, err == nil)

		var resp drillResponse
		switch {
		case errors.Is(err, store.ErrNotFound):
			resp.Error = err.Error()
		case err != nil:
			slog.Error("drill sample failed", "error", err)
			resp.Error = "internal error"
		case len(recs) == 0:
			resp.Error = "no questions available"
		default:
			resp.Question = &recs[0]
		}

		if err := wsjson.Write(ctx, conn, resp); err != nil {
			return
		}
	}
}
