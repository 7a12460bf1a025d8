package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/voicescore/voicescore/internal/api/middleware"
	"github.com/voicescore/voicescore/internal/api/response"
	"github.com/voicescore/voicescore/internal/api/validation"
	"github.com/voicescore/voicescore/internal/command"
	"github.com/voicescore/voicescore/internal/ledger"
	"github.com/voicescore/voicescore/internal/stream"
)

type commandRequest struct {
	Text string `json:"text"`
}

type commandResponse struct {
	Outcome string        `json:"outcome"`
	Message string        `json:"message,omitempty"`
	Listen  *bool         `json:"listen,omitempty"`
	Team    *teamResponse `json:"team,omitempty"`
}

// CommandHandler turns submitted transcripts into score mutations.
type CommandHandler struct {
	interpreter *command.Interpreter
	ledger      *ledger.Ledger
	broadcaster *stream.Broadcaster
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(interpreter *command.Interpreter, led *ledger.Ledger, broadcaster *stream.Broadcaster) *CommandHandler {
	return &CommandHandler{interpreter: interpreter, ledger: led, broadcaster: broadcaster}
}

// Submit handles POST /commands. Unrecognized or unresolvable commands are
// ordinary 200 responses with the outcome spelled out; only persistence
// failures surface as 500s.
func (h *CommandHandler) Submit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCommandRequest(validation.CommandRequest{Text: req.Text})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	intent := h.interpreter.Interpret(req.Text)
	outcome, err := h.ledger.Apply(r.Context(), intent, identity.UserID)
	if err != nil {
		slog.Error("failed to apply command", "error", err, "owner", identity.UserID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to apply command", requestID)
		return
	}

	resp := commandResponse{
		Outcome: outcome.Kind.String(),
		Message: outcome.Message,
	}
	if outcome.Kind == ledger.OutcomeListening {
		listen := outcome.Listen
		resp.Listen = &listen
	}
	if outcome.Team != nil {
		t := toTeamResponse(outcome.Team)
		resp.Team = &t
	}

	if outcome.Kind == ledger.OutcomeApplied || outcome.Kind == ledger.OutcomeReset {
		h.broadcaster.Publish(identity.UserID, stream.Notice{Event: "teams"})
	}

	response.Success(w, http.StatusOK, resp, requestID)
}
