package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/repositories"
)

// ClassroomService interface defines classroom management business logic
type ClassroomService interface {
	GetAllClassrooms(ctx context.Context) ([]models.Classroom, error)
	GetClassroom(ctx context.Context, id int) (*models.Classroom, error)
	CreateClassroom(ctx context.Context, req *models.ClassroomRequest) (*models.Classroom, error)
	UpdateClassroom(ctx context.Context, id int, req *models.ClassroomRequest) (*models.Classroom, error)
	DeleteClassroom(ctx context.Context, id int) error
}

// classroomService implements ClassroomService interface
type classroomService struct {
	classroomRepo repositories.ClassroomRepository
	timetableRepo repositories.TimetableRepository
}

// NewClassroomService creates a new classroom service
func NewClassroomService(
	classroomRepo repositories.ClassroomRepository,
	timetableRepo repositories.TimetableRepository,
) ClassroomService {
	return &classroomService{
		classroomRepo: classroomRepo,
		timetableRepo: timetableRepo,
	}
}

// GetAllClassrooms retrieves all classrooms
func (s *classroomService) GetAllClassrooms(ctx context.Context) ([]models.Classroom, error) {
	return s.classroomRepo.GetAll(ctx)
}

// GetClassroom retrieves a classroom by ID
func (s *classroomService) GetClassroom(ctx context.Context, id int) (*models.Classroom, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid classroom ID: %d", id)
	}
	return s.classroomRepo.GetByID(ctx, id)
}

// CreateClassroom creates a new classroom
func (s *classroomService) CreateClassroom(ctx context.Context, req *models.ClassroomRequest) (*models.Classroom, error) {
	if errors := req.Validate(); errors.HasErrors() {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	room := &models.Classroom{
		Name:     strings.TrimSpace(req.Name),
		Kind:     req.Kind,
		Capacity: req.Capacity,
	}

	if err := s.classroomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create classroom: %w", err)
	}

	return room, nil
}

// UpdateClassroom updates an existing classroom
func (s *classroomService) UpdateClassroom(ctx context.Context, id int, req *models.ClassroomRequest) (*models.Classroom, error) {
	if errors := req.Validate(); errors.HasErrors() {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	room, err := s.classroomRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("classroom not found: %w", err)
	}

	room.Name = strings.TrimSpace(req.Name)
	room.Kind = req.Kind
	room.Capacity = req.Capacity

	if err := s.classroomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update classroom: %w", err)
	}

	return room, nil
}

// DeleteClassroom deletes a classroom unless a timetable still references it
func (s *classroomService) DeleteClassroom(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("invalid classroom ID: %d", id)
	}

	if _, err := s.classroomRepo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("classroom not found: %w", err)
	}

	referenced, err := s.timetableRepo.ClassroomReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return fmt.Errorf("classroom is booked in a timetable. Remove its slots first")
	}

	return s.classroomRepo.Delete(ctx, id)
}
