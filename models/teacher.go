package models

import (
	"time"
)

// Teacher represents a teaching staff member
type Teacher struct {
	ID               int       `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Email            string    `json:"email" db:"email"`
	Active           bool      `json:"active" db:"active"`
	MaxWeeklyPeriods int       `json:"max_weekly_periods" db:"max_weekly_periods"` // 0 = no limit
	DateAdded        time.Time `json:"date_added" db:"date_added"`

	// SubjectIDs lists the subjects this teacher is qualified to teach
	SubjectIDs []int `json:"subject_ids"`

	AuditFields
}

// CanTeach reports whether the teacher is qualified for the given subject
func (t *Teacher) CanTeach(subjectID int) bool {
	for _, id := range t.SubjectIDs {
		if id == subjectID {
			return true
		}
	}
	return false
}

// TeacherRequest represents the payload for creating/updating teachers
type TeacherRequest struct {
	Name             string `json:"name" validate:"required,max=100"`
	Email            string `json:"email" validate:"omitempty,email,max=255"`
	Active           bool   `json:"active"`
	MaxWeeklyPeriods int    `json:"max_weekly_periods" validate:"min=0,max=48"`
	SubjectIDs       []int  `json:"subject_ids" validate:"omitempty,dive,min=1"`
}

// Validate applies semantic checks not expressible as struct tags
func (r *TeacherRequest) Validate() ValidationErrors {
	errors := ValidateStruct(r)

	seen := make(map[int]bool)
	for _, id := range r.SubjectIDs {
		if seen[id] {
			errors = append(errors, ValidationError{
				Field:   "subject_ids",
				Message: "subject_ids must not contain duplicates",
			})
			break
		}
		seen[id] = true
	}

	return errors
}
