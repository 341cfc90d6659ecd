package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apilab/apilab/internal/handler/dto"
	"github.com/apilab/apilab/internal/scenario"
)

// ScenarioHandler serves the learning scenario catalog.
type ScenarioHandler struct{}

// NewScenarioHandler creates a new ScenarioHandler.
func NewScenarioHandler() *ScenarioHandler {
	return &ScenarioHandler{}
}

// List handles GET /api/scenarios. Steps are omitted.
func (h *ScenarioHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.NewListResponse(scenario.Summaries()))
}

// Get handles GET /api/scenarios/{id}.
func (h *ScenarioHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := scenario.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "SCENARIO_NOT_FOUND", "Scenario not found")
		return
	}

	writeJSON(w, http.StatusOK, dto.DataResponse[*scenario.Scenario]{Data: s})
}
