package services

import (
	"github.com/schoolplan/timetable-server/authenticator"
	"github.com/schoolplan/timetable-server/repositories"
)

// Services holds all service instances
type Services struct {
	Teacher     TeacherService
	Subject     SubjectService
	Classroom   ClassroomService
	SchoolClass SchoolClassService
	Settings    SettingsService
	Timetable   TimetableService
	Validator   ValidatorService
	Auth        AuthService
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories, issuer *authenticator.TokenIssuer) *Services {
	validator := NewValidatorService()

	return &Services{
		Teacher:     NewTeacherService(repos.Teacher, repos.Subject, repos.Timetable),
		Subject:     NewSubjectService(repos.Subject, repos.Timetable),
		Classroom:   NewClassroomService(repos.Classroom, repos.Timetable),
		SchoolClass: NewSchoolClassService(repos.SchoolClass, repos.Teacher, repos.Timetable),
		Settings:    NewSettingsService(repos.Settings),
		Timetable: NewTimetableService(
			repos.Timetable,
			repos.Teacher,
			repos.Subject,
			repos.Classroom,
			repos.SchoolClass,
			repos.Settings,
			validator,
		),
		Validator: validator,
		Auth:      NewAuthService(repos.User, repos.RefreshToken, issuer),
	}
}
