package models

// Classroom kinds. Subjects may require a specific kind.
const (
	RoomStandard = "standard"
	RoomScience  = "science"
	RoomGym      = "gym"
	RoomMusic    = "music"
	RoomArt      = "art"
)

// Classroom represents a physical room
type Classroom struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Kind     string `json:"kind" db:"kind"`
	Capacity int    `json:"capacity" db:"capacity"`

	AuditFields
}

// Suits reports whether the room satisfies a subject's room requirement
func (c *Classroom) Suits(roomKind string) bool {
	return roomKind == "" || c.Kind == roomKind
}

// ClassroomRequest represents the payload for creating/updating classrooms
type ClassroomRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Kind     string `json:"kind" validate:"required,oneof=standard science gym music art"`
	Capacity int    `json:"capacity" validate:"min=0,max=500"`
}

// Validate applies semantic checks on the classroom payload
func (r *ClassroomRequest) Validate() ValidationErrors {
	return ValidateStruct(r)
}
