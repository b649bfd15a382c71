package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/schoolplan/timetable-server/services"
)

// respondJSON writes data as a JSON response with the given status code
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// respondError writes an error message as a JSON response
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{"error": message})
}

// respondServiceError maps a service error onto an HTTP status
func respondServiceError(w http.ResponseWriter, err error) {
	message := err.Error()
	switch {
	case strings.Contains(message, "not found"), strings.Contains(message, "no slot at"):
		respondError(w, http.StatusNotFound, message)
	case strings.Contains(message, "validation failed"), strings.Contains(message, "outside the school"):
		respondError(w, http.StatusBadRequest, message)
	case strings.Contains(message, "already"), strings.Contains(message, "Remove"):
		respondError(w, http.StatusConflict, message)
	case strings.Contains(message, "invalid email or password"),
		strings.Contains(message, "invalid refresh token"),
		strings.Contains(message, "token expired"):
		respondError(w, http.StatusUnauthorized, message)
	default:
		respondError(w, http.StatusInternalServerError, message)
	}
}

// decodeJSON parses the request body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

// idParam extracts the numeric id route parameter
func idParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

// Controllers holds all controller instances
type Controllers struct {
	Auth        *AuthController
	Dashboard   *DashboardController
	Teacher     *TeacherController
	Subject     *SubjectController
	Classroom   *ClassroomController
	SchoolClass *SchoolClassController
	Settings    *SettingsController
	Timetable   *TimetableController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services) *Controllers {
	return &Controllers{
		Auth:        NewAuthController(services),
		Dashboard:   NewDashboardController(services),
		Teacher:     NewTeacherController(services),
		Subject:     NewSubjectController(services),
		Classroom:   NewClassroomController(services),
		SchoolClass: NewSchoolClassController(services),
		Settings:    NewSettingsController(services),
		Timetable:   NewTimetableController(services),
	}
}
