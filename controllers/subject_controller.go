package controllers

import (
	"net/http"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/services"
)

// SubjectController handles subject management endpoints
type SubjectController struct {
	services *services.Services
}

// NewSubjectController creates a new subject controller
func NewSubjectController(services *services.Services) *SubjectController {
	return &SubjectController{services: services}
}

// List returns all subjects
func (sc *SubjectController) List(w http.ResponseWriter, r *http.Request) {
	subjects, err := sc.services.Subject.GetAllSubjects(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, subjects)
}

// Get returns one subject
func (sc *SubjectController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid subject ID")
		return
	}

	subject, err := sc.services.Subject.GetSubject(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, subject)
}

// Create adds a new subject
func (sc *SubjectController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.SubjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subject, err := sc.services.Subject.CreateSubject(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, subject)
}

// Update modifies an existing subject
func (sc *SubjectController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid subject ID")
		return
	}

	var req models.SubjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	subject, err := sc.services.Subject.UpdateSubject(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, subject)
}

// Delete removes a subject
func (sc *SubjectController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid subject ID")
		return
	}

	if err := sc.services.Subject.DeleteSubject(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
