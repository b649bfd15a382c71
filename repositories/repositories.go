package repositories

import (
	"database/sql"
)

// Repositories struct holds all repository interfaces
type Repositories struct {
	Teacher      TeacherRepository
	Subject      SubjectRepository
	Classroom    ClassroomRepository
	SchoolClass  SchoolClassRepository
	Settings     SettingsRepository
	Timetable    TimetableRepository
	User         UserRepository
	RefreshToken RefreshTokenRepository
	Audit        AuditRepository
}

// NewRepositories creates and initializes all repositories
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Teacher:      NewTeacherRepository(db),
		Subject:      NewSubjectRepository(db),
		Classroom:    NewClassroomRepository(db),
		SchoolClass:  NewSchoolClassRepository(db),
		Settings:     NewSettingsRepository(db),
		Timetable:    NewTimetableRepository(db),
		User:         NewUserRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Audit:        NewAuditRepository(db),
	}
}
