package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/repositories"
)

// TeacherService interface defines teacher management business logic
type TeacherService interface {
	GetAllTeachers(ctx context.Context) ([]models.Teacher, error)
	GetTeacher(ctx context.Context, id int) (*models.Teacher, error)
	CreateTeacher(ctx context.Context, req *models.TeacherRequest) (*models.Teacher, error)
	UpdateTeacher(ctx context.Context, id int, req *models.TeacherRequest) (*models.Teacher, error)
	DeleteTeacher(ctx context.Context, id int) error
}

// teacherService implements TeacherService interface
type teacherService struct {
	teacherRepo   repositories.TeacherRepository
	subjectRepo   repositories.SubjectRepository
	timetableRepo repositories.TimetableRepository
}

// NewTeacherService creates a new teacher service
func NewTeacherService(
	teacherRepo repositories.TeacherRepository,
	subjectRepo repositories.SubjectRepository,
	timetableRepo repositories.TimetableRepository,
) TeacherService {
	return &teacherService{
		teacherRepo:   teacherRepo,
		subjectRepo:   subjectRepo,
		timetableRepo: timetableRepo,
	}
}

// GetAllTeachers retrieves all teachers with their subject qualifications
func (s *teacherService) GetAllTeachers(ctx context.Context) ([]models.Teacher, error) {
	return s.teacherRepo.GetAll(ctx)
}

// GetTeacher retrieves a teacher by ID
func (s *teacherService) GetTeacher(ctx context.Context, id int) (*models.Teacher, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid teacher ID: %d", id)
	}
	return s.teacherRepo.GetByID(ctx, id)
}

// CreateTeacher creates a new teacher
func (s *teacherService) CreateTeacher(ctx context.Context, req *models.TeacherRequest) (*models.Teacher, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	teacher := &models.Teacher{
		Name:             strings.TrimSpace(req.Name),
		Email:            strings.TrimSpace(req.Email),
		Active:           req.Active,
		MaxWeeklyPeriods: req.MaxWeeklyPeriods,
		SubjectIDs:       req.SubjectIDs,
	}

	if err := s.teacherRepo.Create(ctx, teacher); err != nil {
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}

	return teacher, nil
}

// UpdateTeacher updates an existing teacher and their qualifications
func (s *teacherService) UpdateTeacher(ctx context.Context, id int, req *models.TeacherRequest) (*models.Teacher, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	teacher, err := s.teacherRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("teacher not found: %w", err)
	}

	teacher.Name = strings.TrimSpace(req.Name)
	teacher.Email = strings.TrimSpace(req.Email)
	teacher.Active = req.Active
	teacher.MaxWeeklyPeriods = req.MaxWeeklyPeriods
	teacher.SubjectIDs = req.SubjectIDs

	if err := s.teacherRepo.Update(ctx, teacher); err != nil {
		return nil, fmt.Errorf("failed to update teacher: %w", err)
	}

	return teacher, nil
}

// DeleteTeacher deletes a teacher unless a timetable still references them
func (s *teacherService) DeleteTeacher(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("invalid teacher ID: %d", id)
	}

	if _, err := s.teacherRepo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("teacher not found: %w", err)
	}

	referenced, err := s.timetableRepo.TeacherReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return fmt.Errorf("teacher is assigned in a timetable. Remove their slots first")
	}

	return s.teacherRepo.Delete(ctx, id)
}

// validateRequest validates the payload and checks that the referenced
// subjects exist
func (s *teacherService) validateRequest(ctx context.Context, req *models.TeacherRequest) error {
	if errors := req.Validate(); errors.HasErrors() {
		return fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	for _, subjectID := range req.SubjectIDs {
		if _, err := s.subjectRepo.GetByID(ctx, subjectID); err != nil {
			return fmt.Errorf("subject %d not found: %w", subjectID, err)
		}
	}

	return nil
}
