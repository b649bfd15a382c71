package models

// Subject represents a taught subject
type Subject struct {
	ID            int    `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	Code          string `json:"code" db:"code"` // short code, e.g. "MATH"
	WeeklyPeriods int    `json:"weekly_periods" db:"weekly_periods"`
	RoomKind      string `json:"room_kind" db:"room_kind"` // required classroom kind, "" = any
	Active        bool   `json:"active" db:"active"`

	AuditFields
}

// SubjectRequest represents the payload for creating/updating subjects
type SubjectRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	Code          string `json:"code" validate:"required,max=10"`
	WeeklyPeriods int    `json:"weekly_periods" validate:"min=0,max=48"`
	RoomKind      string `json:"room_kind" validate:"omitempty,oneof=standard science gym music art"`
	Active        bool   `json:"active"`
}

// Validate applies semantic checks on the subject payload
func (r *SubjectRequest) Validate() ValidationErrors {
	return ValidateStruct(r)
}
