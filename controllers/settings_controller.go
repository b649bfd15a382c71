package controllers

import (
	"net/http"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/services"
)

// SettingsController handles school settings endpoints
type SettingsController struct {
	services *services.Services
}

// NewSettingsController creates a new settings controller
func NewSettingsController(services *services.Services) *SettingsController {
	return &SettingsController{services: services}
}

// Get returns the school settings
func (sc *SettingsController) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := sc.services.Settings.GetSettings(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// Update modifies the school settings
func (sc *SettingsController) Update(w http.ResponseWriter, r *http.Request) {
	var req models.SettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := sc.services.Settings.UpdateSettings(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}
