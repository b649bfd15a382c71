package models

// SchoolClass represents a class group of students, e.g. grade 2 class "2-B"
type SchoolClass struct {
	ID                int    `json:"id" db:"id"`
	Grade             int    `json:"grade" db:"grade"`
	Label             string `json:"label" db:"label"`
	HomeroomTeacherID *int   `json:"homeroom_teacher_id,omitempty" db:"homeroom_teacher_id"`

	AuditFields
}

// SchoolClassRequest represents the payload for creating/updating classes
type SchoolClassRequest struct {
	Grade             int    `json:"grade" validate:"min=1,max=12"`
	Label             string `json:"label" validate:"required,max=20"`
	HomeroomTeacherID *int   `json:"homeroom_teacher_id" validate:"omitempty,min=1"`
}

// Validate applies semantic checks on the class payload
func (r *SchoolClassRequest) Validate() ValidationErrors {
	return ValidateStruct(r)
}
