package models

import (
	"fmt"
	"time"
)

// Timetable statuses
const (
	TimetableDraft    = "draft"
	TimetableActive   = "active"
	TimetableArchived = "archived"
)

// Timetable represents one generated weekly timetable
type Timetable struct {
	ID          int        `json:"id" db:"id"`
	PublicID    string     `json:"public_id" db:"public_id"` // uuid exposed in the API
	Name        string     `json:"name" db:"name"`
	Status      string     `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	GeneratedAt *time.Time `json:"generated_at,omitempty" db:"generated_at"`

	AuditFields
}

// TimetableSlot represents one assigned (class, day, period) cell.
// Rows exist only for cells that carry an assignment; empty cells have no row.
type TimetableSlot struct {
	ID          int  `json:"id" db:"id"`
	TimetableID int  `json:"timetable_id" db:"timetable_id"`
	ClassID     int  `json:"class_id" db:"class_id"`
	Day         int  `json:"day" db:"day"`       // 0=Monday
	Period      int  `json:"period" db:"period"` // 0-based
	SubjectID   *int `json:"subject_id,omitempty" db:"subject_id"`
	TeacherID   *int `json:"teacher_id,omitempty" db:"teacher_id"`
	ClassroomID *int `json:"classroom_id,omitempty" db:"classroom_id"`
	Pinned      bool `json:"pinned" db:"pinned"` // manual edits survive regeneration

	// Joined fields (populated from joins for display)
	SubjectName   string `json:"subject_name,omitempty" db:"subject_name"`
	TeacherName   string `json:"teacher_name,omitempty" db:"teacher_name"`
	ClassroomName string `json:"classroom_name,omitempty" db:"classroom_name"`
}

// IsFilled reports whether the slot carries a complete assignment
func (s *TimetableSlot) IsFilled() bool {
	return s.SubjectID != nil && s.TeacherID != nil
}

// SlotRef identifies a single grid cell within a timetable
type SlotRef struct {
	ClassID int `json:"class_id" validate:"min=1"`
	Day     int `json:"day" validate:"min=0,max=5"`
	Period  int `json:"period" validate:"min=0,max=7"`
}

func (ref SlotRef) String() string {
	return fmt.Sprintf("class %d, %s period %d", ref.ClassID, DayName(ref.Day), ref.Period+1)
}

// SlotAssignment is the editable part of a slot
type SlotAssignment struct {
	SubjectID   *int `json:"subject_id" validate:"omitempty,min=1"`
	TeacherID   *int `json:"teacher_id" validate:"omitempty,min=1"`
	ClassroomID *int `json:"classroom_id" validate:"omitempty,min=1"`
}

// ClassWeekGrid is one class's weekly schedule as a day x period matrix.
// Days[day][period] is nil for empty cells.
type ClassWeekGrid struct {
	ClassID    int                `json:"class_id"`
	Grade      int                `json:"grade"`
	ClassLabel string             `json:"class_label"`
	Days       [][]*TimetableSlot `json:"days"`
}

// TimetableGrid is the full display form of a timetable. PeriodTimes holds
// the HH:MM start time of each period index.
type TimetableGrid struct {
	Timetable   Timetable       `json:"timetable"`
	Settings    SchoolSettings  `json:"settings"`
	PeriodTimes []string        `json:"period_times"`
	Classes     []ClassWeekGrid `json:"classes"`
}

// Violation kinds
const (
	ViolationTeacherConflict    = "teacher_conflict"
	ViolationRoomConflict       = "room_conflict"
	ViolationUnqualifiedTeacher = "unqualified_teacher"
	ViolationEmptySlot          = "empty_slot"
)

// Violation severities
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Violation represents a detected problem in one grid cell
type Violation struct {
	ClassID  int    `json:"class_id"`
	Day      int    `json:"day"`
	Period   int    `json:"period"`
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ClassCompliance summarizes one class's grid
type ClassCompliance struct {
	ClassID    int     `json:"class_id"`
	ClassLabel string  `json:"class_label"`
	Rate       float64 `json:"rate"`
	TotalCells int     `json:"total_cells"`
	CleanCells int     `json:"clean_cells"`
	Violations int     `json:"violations"`
}

// ComplianceReport is the validator's output for a whole timetable
type ComplianceReport struct {
	Rate        float64           `json:"rate"` // percent, one decimal
	TotalCells  int               `json:"total_cells"`
	FilledCells int               `json:"filled_cells"`
	CleanCells  int               `json:"clean_cells"`
	Classes     []ClassCompliance `json:"classes"`
	Violations  []Violation       `json:"violations"`
}

// AutoFillResult is the preview produced by greedy auto-fill. Never persisted.
type AutoFillResult struct {
	Slots    []TimetableSlot `json:"slots"`
	Filled   int             `json:"filled"`
	Unfilled int             `json:"unfilled"`
}

// TimetableRequest represents the payload for creating a timetable
type TimetableRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Status string `json:"status" validate:"omitempty,oneof=draft active archived"`
}

// Validate applies semantic checks on the timetable payload
func (r *TimetableRequest) Validate() ValidationErrors {
	return ValidateStruct(r)
}

// MoveSlotRequest represents a drag-and-drop reassignment of one cell
type MoveSlotRequest struct {
	From SlotRef `json:"from"`
	To   SlotRef `json:"to"`
}

// Validate applies semantic checks on the move payload
func (r *MoveSlotRequest) Validate() ValidationErrors {
	errors := ValidateStruct(r)

	if r.From.ClassID != r.To.ClassID {
		errors = append(errors, ValidationError{
			Field:   "to",
			Message: "slots can only be moved within the same class",
		})
	}

	if r.From == r.To {
		errors = append(errors, ValidationError{
			Field:   "to",
			Message: "source and destination cells are the same",
		})
	}

	return errors
}

// UpdateSlotRequest represents a direct cell edit
type UpdateSlotRequest struct {
	Ref        SlotRef        `json:"ref"`
	Assignment SlotAssignment `json:"assignment"`
}

// Validate applies semantic checks on the slot update payload
func (r *UpdateSlotRequest) Validate() ValidationErrors {
	errors := ValidateStruct(r)

	if r.Assignment.SubjectID == nil && r.Assignment.TeacherID != nil {
		errors = append(errors, ValidationError{
			Field:   "assignment",
			Message: "a teacher cannot be assigned without a subject",
		})
	}

	return errors
}

// ClearSlotRequest empties one cell
type ClearSlotRequest struct {
	Ref SlotRef `json:"ref"`
}

// Validate applies semantic checks on the clear payload
func (r *ClearSlotRequest) Validate() ValidationErrors {
	return ValidateStruct(r)
}

// GenerationRequest represents a request to (re)generate a timetable
type GenerationRequest struct {
	Force bool `json:"force"` // regenerate even if recently generated
}

// GenerationResult represents the outcome of timetable generation
type GenerationResult struct {
	Success         bool      `json:"success"`
	Message         string    `json:"message"`
	SlotsCreated    int       `json:"slots_created"`
	UnfilledDemands int       `json:"unfilled_demands"`
	GeneratedAt     time.Time `json:"generated_at"`
}
