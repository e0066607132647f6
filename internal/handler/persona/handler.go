package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gemsales/voice-trainer/backend/internal/model/persona"
	"github.com/gemsales/voice-trainer/backend/pkg/utils"
)

// Handler serves the persona catalog.
type Handler struct {
	personas persona.Store
}

// New creates a persona handler.
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes mounts the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
}

// handleListPersonas lists public persona fields. Scripts stay server-side
// until a session is created.
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, persona.Summaries(h.personas.List()))
}
