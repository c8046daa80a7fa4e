package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/PlantCare/internal/middleware"
	"github.com/atinyakov/PlantCare/internal/models"
	"github.com/atinyakov/PlantCare/internal/service"
)

const plantNotFound = "Plant not found."

// PlantService defines the plant operations required by PlantHandler.
type PlantService interface {
	List(ctx context.Context, ownerID int64) ([]models.Plant, error)
	Create(ctx context.Context, ownerID int64, in models.PlantInput) (*models.Plant, error)
	Get(ctx context.Context, ownerID, id int64) (*models.Plant, error)
	Update(ctx context.Context, ownerID, id int64, patch models.PlantPatch) (*models.Plant, error)
	Delete(ctx context.Context, ownerID, id int64) error
	Summary(ctx context.Context, ownerID, id int64, days, thresholdDays int) (*models.CareSummary, error)
}

// PlantHandler serves /api/plants/. Every request is scoped to the
// authenticated owner.
type PlantHandler struct {
	PlantService PlantService
}

// List handles GET /api/plants/.
func (h *PlantHandler) List(w http.ResponseWriter, r *http.Request) {
	plants, err := h.PlantService.List(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plants)
}

// Create handles POST /api/plants/. Any owner in the body is ignored.
func (h *PlantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.PlantInput
	if err := decodeJSON(r, &in, false); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.PlantService.Create(r.Context(), middleware.GetUserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Get handles GET /api/plants/{id}/. The plant is returned with its logs.
func (h *PlantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", plantNotFound)
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.PlantService.Get(r.Context(), middleware.GetUserIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if p.Logs == nil {
		p.Logs = []models.Log{}
	}
	writeJSON(w, http.StatusOK, plantDetail{Plant: p, Logs: p.Logs})
}

// Update handles PATCH /api/plants/{id}/. Unknown fields, including owner
// and added_at, are rejected.
func (h *PlantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", plantNotFound)
	if err != nil {
		writeError(w, err)
		return
	}
	var patch models.PlantPatch
	if err := decodeJSON(r, &patch, true); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.PlantService.Update(r.Context(), middleware.GetUserIDFromContext(r.Context()), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/plants/{id}/.
func (h *PlantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", plantNotFound)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.PlantService.Delete(r.Context(), middleware.GetUserIDFromContext(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/plants/{id}/summary/?days=&threshold=.
func (h *PlantHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", plantNotFound)
	if err != nil {
		writeError(w, err)
		return
	}
	days, err := queryInt(r, "days", service.DefaultSummaryDays)
	if err != nil {
		writeError(w, err)
		return
	}
	threshold, err := queryInt(r, "threshold", service.DefaultWaterThresholdDays)
	if err != nil {
		writeError(w, err)
		return
	}
	s, err := h.PlantService.Summary(r.Context(), middleware.GetUserIDFromContext(r.Context()), id, days, threshold)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// plantDetail always renders the logs array, even when empty.
type plantDetail struct {
	*models.Plant
	Logs []models.Log `json:"logs"`
}
