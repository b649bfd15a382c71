package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/repositories"
)

// SchoolClassService interface defines class group management business logic
type SchoolClassService interface {
	GetAllClasses(ctx context.Context) ([]models.SchoolClass, error)
	GetClass(ctx context.Context, id int) (*models.SchoolClass, error)
	CreateClass(ctx context.Context, req *models.SchoolClassRequest) (*models.SchoolClass, error)
	UpdateClass(ctx context.Context, id int, req *models.SchoolClassRequest) (*models.SchoolClass, error)
	DeleteClass(ctx context.Context, id int) error
}

// schoolClassService implements SchoolClassService interface
type schoolClassService struct {
	classRepo     repositories.SchoolClassRepository
	teacherRepo   repositories.TeacherRepository
	timetableRepo repositories.TimetableRepository
}

// NewSchoolClassService creates a new school class service
func NewSchoolClassService(
	classRepo repositories.SchoolClassRepository,
	teacherRepo repositories.TeacherRepository,
	timetableRepo repositories.TimetableRepository,
) SchoolClassService {
	return &schoolClassService{
		classRepo:     classRepo,
		teacherRepo:   teacherRepo,
		timetableRepo: timetableRepo,
	}
}

// GetAllClasses retrieves all class groups ordered by grade and label
func (s *schoolClassService) GetAllClasses(ctx context.Context) ([]models.SchoolClass, error) {
	return s.classRepo.GetAll(ctx)
}

// GetClass retrieves a class group by ID
func (s *schoolClassService) GetClass(ctx context.Context, id int) (*models.SchoolClass, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid class ID: %d", id)
	}
	return s.classRepo.GetByID(ctx, id)
}

// CreateClass creates a new class group
func (s *schoolClassService) CreateClass(ctx context.Context, req *models.SchoolClassRequest) (*models.SchoolClass, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	class := &models.SchoolClass{
		Grade:             req.Grade,
		Label:             strings.TrimSpace(req.Label),
		HomeroomTeacherID: req.HomeroomTeacherID,
	}

	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}

	return class, nil
}

// UpdateClass updates an existing class group
func (s *schoolClassService) UpdateClass(ctx context.Context, id int, req *models.SchoolClassRequest) (*models.SchoolClass, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	class, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("class not found: %w", err)
	}

	class.Grade = req.Grade
	class.Label = strings.TrimSpace(req.Label)
	class.HomeroomTeacherID = req.HomeroomTeacherID

	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, fmt.Errorf("failed to update class: %w", err)
	}

	return class, nil
}

// DeleteClass deletes a class group unless a timetable still references it
func (s *schoolClassService) DeleteClass(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("invalid class ID: %d", id)
	}

	if _, err := s.classRepo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("class not found: %w", err)
	}

	referenced, err := s.timetableRepo.ClassReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return fmt.Errorf("class appears in a timetable. Remove its slots first")
	}

	return s.classRepo.Delete(ctx, id)
}

// validateRequest validates the payload and checks that the homeroom teacher
// exists
func (s *schoolClassService) validateRequest(ctx context.Context, req *models.SchoolClassRequest) error {
	if errors := req.Validate(); errors.HasErrors() {
		return fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	if req.HomeroomTeacherID != nil {
		if _, err := s.teacherRepo.GetByID(ctx, *req.HomeroomTeacherID); err != nil {
			return fmt.Errorf("homeroom teacher not found: %w", err)
		}
	}

	return nil
}
