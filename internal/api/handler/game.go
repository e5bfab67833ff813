package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wam-arcade/games-service/internal/api/apierr"
	"github.com/wam-arcade/games-service/internal/model"
	"github.com/wam-arcade/games-service/internal/services/game"
)

// Games exposes the game lifecycle operations over HTTP
type Games struct {
	controller game.ControllerInterface
	logger     *slog.Logger
}

// NewGames creates a new games handler
func NewGames(controller game.ControllerInterface, logger *slog.Logger) *Games {
	return &Games{controller: controller, logger: logger}
}

// joinRequest is the body for POST /api/games/{code}/join
type joinRequest struct {
	UserID  uuid.UUID `json:"userId"`
	Voucher string    `json:"voucher,omitempty"`
}

// leaveRequest is the body for POST /api/games/{id}/leave
type leaveRequest struct {
	PlayerID uuid.UUID `json:"playerId"`
}

// Create handles POST /api/games
func (h *Games) Create(w http.ResponseWriter, r *http.Request) {
	details, err := h.controller.Create(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, details)
}

// GetUpcoming handles GET /api/games/next
func (h *Games) GetUpcoming(w http.ResponseWriter, r *http.Request) {
	details, err := h.controller.GetUpcoming(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if details == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// GetActive handles GET /api/games/active
func (h *Games) GetActive(w http.ResponseWriter, r *http.Request) {
	details, err := h.controller.GetActive(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if details == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// GetByID handles GET /api/games/{id}
func (h *Games) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	details, err := h.controller.Get(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// GetByCode handles GET /api/games/code/{code}
func (h *Games) GetByCode(w http.ResponseWriter, r *http.Request) {
	details, err := h.controller.GetByCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Join handles POST /api/games/{code}/join
func (h *Games) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteInvalidRequest(w, "invalid join request body")
		return
	}
	if req.UserID == uuid.Nil {
		apierr.WriteInvalidRequest(w, "userId is required")
		return
	}

	details, err := h.controller.Join(r.Context(), mux.Vars(r)["code"], req.UserID, req.Voucher)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Leave handles POST /api/games/{id}/leave
func (h *Games) Leave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteInvalidRequest(w, "invalid leave request body")
		return
	}
	if req.PlayerID == uuid.Nil {
		apierr.WriteInvalidRequest(w, "playerId is required")
		return
	}

	details, err := h.controller.Leave(r.Context(), id, req.PlayerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// DeletePlayer handles DELETE /api/games/{id}/players/{playerId}
func (h *Games) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	playerID, ok := pathUUID(w, r, "playerId")
	if !ok {
		return
	}

	details, err := h.controller.DeletePlayer(r.Context(), id, playerID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// Activate handles POST /api/games/{id}/activate
func (h *Games) Activate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.controller.Activate)
}

// Start handles POST /api/games/{id}/start
func (h *Games) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.controller.Start)
}

// Finish handles POST /api/games/{id}/finish
func (h *Games) Finish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.controller.Finish)
}

// Cancel handles POST /api/games/{id}/cancel
func (h *Games) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.controller.Cancel)
}

// GetConfiguration handles GET /api/configuration
func (h *Games) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.controller.GetConfiguration(r.Context()))
}

// transition factors the shared shape of the state-change endpoints
func (h *Games) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id uuid.UUID) (*model.GameDetails, error),
) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	details, err := op(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}
