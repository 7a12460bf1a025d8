package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/voicescore/voicescore/internal/api/middleware"
	"github.com/voicescore/voicescore/internal/api/response"
	"github.com/voicescore/voicescore/internal/stream"
	"github.com/voicescore/voicescore/internal/team"
)

// StreamHandler serves the live board over server-sent events.
type StreamHandler struct {
	repo        team.Repository
	broadcaster *stream.Broadcaster
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(repo team.Repository, broadcaster *stream.Broadcaster) *StreamHandler {
	return &StreamHandler{repo: repo, broadcaster: broadcaster}
}

// Serve handles GET /teams/stream. The full board is sent on connect and
// again after every change notice; clients render whatever arrives last.
func (h *StreamHandler) Serve(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Streaming is not supported", requestID)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	notices, cancel := h.broadcaster.Subscribe(identity.UserID)
	defer cancel()

	if err := h.writeBoard(r.Context(), w, identity.UserID); err != nil {
		slog.Error("failed to write initial board", "error", err, "owner", identity.UserID)
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case notice, open := <-notices:
			if !open {
				return
			}
			if notice.Event != "teams" {
				continue
			}
			if err := h.writeBoard(r.Context(), w, identity.UserID); err != nil {
				slog.Error("failed to write board update", "error", err, "owner", identity.UserID)
				return
			}
			flusher.Flush()
		}
	}
}

func (h *StreamHandler) writeBoard(ctx context.Context, w http.ResponseWriter, ownerID string) error {
	teams, err := h.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(toTeamResponses(teams))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: teams\ndata: %s\n\n", payload)
	return err
}
