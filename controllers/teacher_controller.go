package controllers

import (
	"net/http"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/services"
)

// TeacherController handles teacher management endpoints
type TeacherController struct {
	services *services.Services
}

// NewTeacherController creates a new teacher controller
func NewTeacherController(services *services.Services) *TeacherController {
	return &TeacherController{services: services}
}

// List returns all teachers with their subject qualifications
func (tc *TeacherController) List(w http.ResponseWriter, r *http.Request) {
	teachers, err := tc.services.Teacher.GetAllTeachers(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teachers)
}

// Get returns one teacher
func (tc *TeacherController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid teacher ID")
		return
	}

	teacher, err := tc.services.Teacher.GetTeacher(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teacher)
}

// Create adds a new teacher
func (tc *TeacherController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.TeacherRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	teacher, err := tc.services.Teacher.CreateTeacher(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, teacher)
}

// Update modifies an existing teacher
func (tc *TeacherController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid teacher ID")
		return
	}

	var req models.TeacherRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	teacher, err := tc.services.Teacher.UpdateTeacher(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, teacher)
}

// Delete removes a teacher
func (tc *TeacherController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid teacher ID")
		return
	}

	if err := tc.services.Teacher.DeleteTeacher(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
