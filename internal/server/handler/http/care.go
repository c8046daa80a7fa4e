package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/PlantCare/internal/apperr"
	"github.com/atinyakov/PlantCare/internal/care"
	"github.com/atinyakov/PlantCare/internal/models"
)

// CareCatalog lists the per-category care templates.
type CareCatalog interface {
	All() []care.Template
	Lookup(cat models.Category) (care.Template, bool)
}

// CareHandler serves the read-only care templates.
type CareHandler struct {
	Catalog CareCatalog
}

// List handles GET /api/care-templates/.
func (h *CareHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.All())
}

// Get handles GET /api/care-templates/{category}/.
func (h *CareHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := h.Catalog.Lookup(models.Category(chi.URLParam(r, "category")))
	if !ok {
		writeError(w, apperr.NotFound("Care template not found."))
		return
	}
	writeJSON(w, http.StatusOK, t)
}
