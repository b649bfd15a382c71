package controllers

import (
	"net/http"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/services"
)

// SchoolClassController handles class group management endpoints
type SchoolClassController struct {
	services *services.Services
}

// NewSchoolClassController creates a new school class controller
func NewSchoolClassController(services *services.Services) *SchoolClassController {
	return &SchoolClassController{services: services}
}

// List returns all class groups
func (cc *SchoolClassController) List(w http.ResponseWriter, r *http.Request) {
	classes, err := cc.services.SchoolClass.GetAllClasses(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, classes)
}

// Get returns one class group
func (cc *SchoolClassController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid class ID")
		return
	}

	class, err := cc.services.SchoolClass.GetClass(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, class)
}

// Create adds a new class group
func (cc *SchoolClassController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.SchoolClassRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	class, err := cc.services.SchoolClass.CreateClass(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, class)
}

// Update modifies an existing class group
func (cc *SchoolClassController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid class ID")
		return
	}

	var req models.SchoolClassRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	class, err := cc.services.SchoolClass.UpdateClass(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, class)
}

// Delete removes a class group
func (cc *SchoolClassController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid class ID")
		return
	}

	if err := cc.services.SchoolClass.DeleteClass(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
