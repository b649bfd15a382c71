package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/repositories"
)

// SubjectService interface defines subject management business logic
type SubjectService interface {
	GetAllSubjects(ctx context.Context) ([]models.Subject, error)
	GetSubject(ctx context.Context, id int) (*models.Subject, error)
	CreateSubject(ctx context.Context, req *models.SubjectRequest) (*models.Subject, error)
	UpdateSubject(ctx context.Context, id int, req *models.SubjectRequest) (*models.Subject, error)
	DeleteSubject(ctx context.Context, id int) error
}

// subjectService implements SubjectService interface
type subjectService struct {
	subjectRepo   repositories.SubjectRepository
	timetableRepo repositories.TimetableRepository
}

// NewSubjectService creates a new subject service
func NewSubjectService(
	subjectRepo repositories.SubjectRepository,
	timetableRepo repositories.TimetableRepository,
) SubjectService {
	return &subjectService{
		subjectRepo:   subjectRepo,
		timetableRepo: timetableRepo,
	}
}

// GetAllSubjects retrieves all subjects
func (s *subjectService) GetAllSubjects(ctx context.Context) ([]models.Subject, error) {
	return s.subjectRepo.GetAll(ctx)
}

// GetSubject retrieves a subject by ID
func (s *subjectService) GetSubject(ctx context.Context, id int) (*models.Subject, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid subject ID: %d", id)
	}
	return s.subjectRepo.GetByID(ctx, id)
}

// CreateSubject creates a new subject
func (s *subjectService) CreateSubject(ctx context.Context, req *models.SubjectRequest) (*models.Subject, error) {
	if errors := req.Validate(); errors.HasErrors() {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	subject := &models.Subject{
		Name:          strings.TrimSpace(req.Name),
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		WeeklyPeriods: req.WeeklyPeriods,
		RoomKind:      req.RoomKind,
		Active:        req.Active,
	}

	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}

	return subject, nil
}

// UpdateSubject updates an existing subject
func (s *subjectService) UpdateSubject(ctx context.Context, id int, req *models.SubjectRequest) (*models.Subject, error) {
	if errors := req.Validate(); errors.HasErrors() {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	subject, err := s.subjectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("subject not found: %w", err)
	}

	subject.Name = strings.TrimSpace(req.Name)
	subject.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	subject.WeeklyPeriods = req.WeeklyPeriods
	subject.RoomKind = req.RoomKind
	subject.Active = req.Active

	if err := s.subjectRepo.Update(ctx, subject); err != nil {
		return nil, fmt.Errorf("failed to update subject: %w", err)
	}

	return subject, nil
}

// DeleteSubject deletes a subject unless a timetable still references it
func (s *subjectService) DeleteSubject(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("invalid subject ID: %d", id)
	}

	if _, err := s.subjectRepo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("subject not found: %w", err)
	}

	referenced, err := s.timetableRepo.SubjectReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return fmt.Errorf("subject is scheduled in a timetable. Remove its slots first")
	}

	return s.subjectRepo.Delete(ctx, id)
}
