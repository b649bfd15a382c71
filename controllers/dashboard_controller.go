package controllers

import (
	"net/http"

	"github.com/schoolplan/timetable-server/services"
)

// DashboardController handles the dashboard endpoint
type DashboardController struct {
	services *services.Services
}

// NewDashboardController creates a new dashboard controller
func NewDashboardController(services *services.Services) *DashboardController {
	return &DashboardController{services: services}
}

// Show returns entity counts, the active timetable and its compliance report
func (dc *DashboardController) Show(w http.ResponseWriter, r *http.Request) {
	data, err := dc.services.Timetable.GetDashboardData(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, data)
}
