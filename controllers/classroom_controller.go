package controllers

import (
	"net/http"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/services"
)

// ClassroomController handles classroom management endpoints
type ClassroomController struct {
	services *services.Services
}

// NewClassroomController creates a new classroom controller
func NewClassroomController(services *services.Services) *ClassroomController {
	return &ClassroomController{services: services}
}

// List returns all classrooms
func (cc *ClassroomController) List(w http.ResponseWriter, r *http.Request) {
	classrooms, err := cc.services.Classroom.GetAllClassrooms(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, classrooms)
}

// Get returns one classroom
func (cc *ClassroomController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid classroom ID")
		return
	}

	room, err := cc.services.Classroom.GetClassroom(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, room)
}

// Create adds a new classroom
func (cc *ClassroomController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ClassroomRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := cc.services.Classroom.CreateClassroom(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, room)
}

// Update modifies an existing classroom
func (cc *ClassroomController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid classroom ID")
		return
	}

	var req models.ClassroomRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := cc.services.Classroom.UpdateClassroom(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, room)
}

// Delete removes a classroom
func (cc *ClassroomController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid classroom ID")
		return
	}

	if err := cc.services.Classroom.DeleteClassroom(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
