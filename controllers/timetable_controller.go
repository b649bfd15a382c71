package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/services"
)

// TimetableController handles timetable and slot endpoints
type TimetableController struct {
	services *services.Services
}

// NewTimetableController creates a new timetable controller
func NewTimetableController(services *services.Services) *TimetableController {
	return &TimetableController{services: services}
}

func publicIDParam(r *http.Request) string {
	return chi.URLParam(r, "publicID")
}

// List returns all timetables, newest first
func (tc *TimetableController) List(w http.ResponseWriter, r *http.Request) {
	timetables, err := tc.services.Timetable.GetAllTimetables(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, timetables)
}

// Get returns one timetable
func (tc *TimetableController) Get(w http.ResponseWriter, r *http.Request) {
	timetable, err := tc.services.Timetable.GetTimetable(r.Context(), publicIDParam(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, timetable)
}

// Create adds a new empty timetable
func (tc *TimetableController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.TimetableRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	timetable, err := tc.services.Timetable.CreateTimetable(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, timetable)
}

// Update modifies a timetable's name and status
func (tc *TimetableController) Update(w http.ResponseWriter, r *http.Request) {
	var req models.TimetableRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	timetable, err := tc.services.Timetable.UpdateTimetable(r.Context(), publicIDParam(r), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, timetable)
}

// Delete removes a timetable and its slots
func (tc *TimetableController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := tc.services.Timetable.DeleteTimetable(r.Context(), publicIDParam(r)); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Grid returns the timetable as per-class weekly matrices
func (tc *TimetableController) Grid(w http.ResponseWriter, r *http.Request) {
	grid, err := tc.services.Timetable.GetGrid(r.Context(), publicIDParam(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, grid)
}

// Validate runs the compliance validator and returns the report
func (tc *TimetableController) Validate(w http.ResponseWriter, r *http.Request) {
	report, err := tc.services.Timetable.Validate(r.Context(), publicIDParam(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// AutoFill returns a greedy fill preview without persisting anything
func (tc *TimetableController) AutoFill(w http.ResponseWriter, r *http.Request) {
	result, err := tc.services.Timetable.AutoFillPreview(r.Context(), publicIDParam(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Generate (re)generates the timetable's slots
func (tc *TimetableController) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerationRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := tc.services.Timetable.Generate(r.Context(), publicIDParam(r), req.Force)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if !result.Success {
		respondJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// MoveSlot moves or swaps one slot, backing the drag-and-drop editor
func (tc *TimetableController) MoveSlot(w http.ResponseWriter, r *http.Request) {
	var req models.MoveSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slots, err := tc.services.Timetable.MoveSlot(r.Context(), publicIDParam(r), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slots)
}

// UpdateSlot sets one cell's assignment directly
func (tc *TimetableController) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slot, err := tc.services.Timetable.UpdateSlot(r.Context(), publicIDParam(r), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if slot == nil {
		respondJSON(w, http.StatusNoContent, nil)
		return
	}
	respondJSON(w, http.StatusOK, slot)
}

// ClearSlot empties one cell
func (tc *TimetableController) ClearSlot(w http.ResponseWriter, r *http.Request) {
	var req models.ClearSlotRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := tc.services.Timetable.ClearSlot(r.Context(), publicIDParam(r), &req); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
