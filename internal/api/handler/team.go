package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voicescore/voicescore/internal/api/middleware"
	"github.com/voicescore/voicescore/internal/api/response"
	"github.com/voicescore/voicescore/internal/api/validation"
	"github.com/voicescore/voicescore/internal/stream"
	"github.com/voicescore/voicescore/internal/team"
)

type createTeamsRequest struct {
	TeamCount        int `json:"teamCount"`
	ParticipantCount int `json:"participantCount"`
}

type adjustPointsRequest struct {
	Delta int `json:"delta"`
}

type teamResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Members      []int  `json:"members"`
	Points       int    `json:"points"`
	CreatedAt    string `json:"createdAt"`
	LastAccessed string `json:"lastAccessed"`
}

type cleanupResponse struct {
	Removed int `json:"removed"`
}

func toTeamResponse(t *team.Team) teamResponse {
	members := t.Members
	if members == nil {
		members = []int{}
	}
	return teamResponse{
		ID:           t.ID.String(),
		Name:         t.Name,
		Members:      members,
		Points:       t.Points,
		CreatedAt:    t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		LastAccessed: t.LastAccessed.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func toTeamResponses(teams []team.Team) []teamResponse {
	items := make([]teamResponse, 0, len(teams))
	for i := range teams {
		items = append(items, toTeamResponse(&teams[i]))
	}
	return items
}

// TeamHandler handles the team board endpoints.
type TeamHandler struct {
	repo        team.Repository
	svc         *team.Service
	broadcaster *stream.Broadcaster
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(repo team.Repository, svc *team.Service, broadcaster *stream.Broadcaster) *TeamHandler {
	return &TeamHandler{repo: repo, svc: svc, broadcaster: broadcaster}
}

// List handles GET /teams. Teams come back highest points first.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	teams, err := h.repo.ListByOwner(r.Context(), identity.UserID)
	if err != nil {
		slog.Error("failed to list teams", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list teams", requestID)
		return
	}

	response.Success(w, http.StatusOK, toTeamResponses(teams), requestID)
}

// Create handles POST /teams: it replaces the owner's current generation
// with a freshly partitioned one.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createTeamsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateTeamsRequest(validation.CreateTeamsRequest{
		TeamCount:        req.TeamCount,
		ParticipantCount: req.ParticipantCount,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	created, err := h.svc.CreateTeams(r.Context(), identity.UserID, req.TeamCount, req.ParticipantCount)
	if err != nil {
		slog.Error("failed to create teams", "error", err, "owner", identity.UserID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create teams", requestID)
		return
	}

	h.broadcaster.Publish(identity.UserID, stream.Notice{Event: "teams"})
	response.Success(w, http.StatusCreated, toTeamResponses(created), requestID)
}

// AdjustPoints handles POST /teams/{id}/points: the +1/-1 board buttons.
func (h *TeamHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req adjustPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateAdjustPointsRequest(validation.AdjustPointsRequest{Delta: req.Delta})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	updated, err := h.repo.AdjustPoints(r.Context(), id, identity.UserID, req.Delta)
	if err != nil {
		h.writeMutationError(w, err, id, requestID)
		return
	}

	h.broadcaster.Publish(identity.UserID, stream.Notice{Event: "teams"})
	response.Success(w, http.StatusOK, toTeamResponse(updated), requestID)
}

// ResetPoints handles POST /teams/{id}/reset.
func (h *TeamHandler) ResetPoints(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	updated, err := h.repo.ResetPoints(r.Context(), id, identity.UserID)
	if err != nil {
		h.writeMutationError(w, err, id, requestID)
		return
	}

	h.broadcaster.Publish(identity.UserID, stream.Notice{Event: "teams"})
	response.Success(w, http.StatusOK, toTeamResponse(updated), requestID)
}

// CleanupInactive handles DELETE /teams/inactive?olderThan=<seconds>.
func (h *TeamHandler) CleanupInactive(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity := middleware.GetIdentity(r.Context())

	olderThan := 24 * time.Hour
	if raw := r.URL.Query().Get("olderThan"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 0 {
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "olderThan must be a non-negative number of seconds", requestID)
			return
		}
		olderThan = time.Duration(seconds) * time.Second
	}

	removed, err := h.svc.CleanupInactive(r.Context(), identity.UserID, olderThan)
	if err != nil {
		slog.Error("failed to cleanup inactive teams", "error", err, "owner", identity.UserID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to cleanup inactive teams", requestID)
		return
	}

	if removed > 0 {
		h.broadcaster.Publish(identity.UserID, stream.Notice{Event: "teams"})
	}
	response.Success(w, http.StatusOK, cleanupResponse{Removed: removed}, requestID)
}

func (h *TeamHandler) writeMutationError(w http.ResponseWriter, err error, id uuid.UUID, requestID string) {
	switch {
	case errors.Is(err, team.ErrTeamNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
	case errors.Is(err, team.ErrNotOwner):
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Team belongs to another user", requestID)
	default:
		slog.Error("failed to update team points", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update team points", requestID)
	}
}
