package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/PlantCare/internal/middleware"
	"github.com/atinyakov/PlantCare/internal/models"
)

const logNotFound = "Log not found."

// LogService defines the care log operations required by LogHandler.
type LogService interface {
	List(ctx context.Context, ownerID int64) ([]models.Log, error)
	ListForPlant(ctx context.Context, ownerID, plantID int64) ([]models.Log, error)
	Create(ctx context.Context, ownerID int64, in models.LogInput) (*models.Log, error)
	Get(ctx context.Context, ownerID, id int64) (*models.Log, error)
	Update(ctx context.Context, ownerID, id int64, patch models.LogPatch) (*models.Log, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

// LogHandler serves /api/logs/ and /api/plants/{id}/logs/.
type LogHandler struct {
	LogService LogService
}

// List handles GET /api/logs/.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.LogService.List(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// ListForPlant handles GET /api/plants/{id}/logs/.
func (h *LogHandler) ListForPlant(w http.ResponseWriter, r *http.Request) {
	plantID, err := pathID(r, "id", plantNotFound)
	if err != nil {
		writeError(w, err)
		return
	}
	logs, err := h.LogService.ListForPlant(r.Context(), middleware.GetUserIDFromContext(r.Context()), plantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// Create handles POST /api/logs/. Logging against someone else's plant is
// forbidden.
func (h *LogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.LogInput
	if err := decodeJSON(r, &in, false); err != nil {
		writeError(w, err)
		return
	}
	l, err := h.LogService.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// Get handles GET /api/logs/{id}/.
func (h *LogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", logNotFound)
	if err != nil {
		writeError(w, err)
		return
	}
	l, err := h.LogService.Get(r.Context(), middleware.GetUserIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// Update handles PATCH /api/logs/{id}/. The plant and timestamp are fixed.
func (h *LogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", logNotFound)
	if err != nil {
		writeError(w, err)
		return
	}
	var patch models.LogPatch
	if err := decodeJSON(r, &patch, true); err != nil {
		writeError(w, err)
		return
	}
	l, err := h.LogService.Update(r.Context(), middleware.GetUserIDFromContext(r.Context()), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// Delete handles DELETE /api/logs/{id}/.
func (h *LogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", logNotFound)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.LogService.Delete(r.Context(), middleware.GetUserIDFromContext(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
