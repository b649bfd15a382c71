package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/repositories"
)

var timeNow = func() time.Time {
	return time.Now()
}

// Regeneration is skipped when the timetable was generated within this window,
// unless forced
const regenerationInterval = time.Hour

// TimetableService interface defines timetable management business logic
type TimetableService interface {
	GetAllTimetables(ctx context.Context) ([]models.Timetable, error)
	GetTimetable(ctx context.Context, publicID string) (*models.Timetable, error)
	CreateTimetable(ctx context.Context, req *models.TimetableRequest) (*models.Timetable, error)
	UpdateTimetable(ctx context.Context, publicID string, req *models.TimetableRequest) (*models.Timetable, error)
	DeleteTimetable(ctx context.Context, publicID string) error

	GetGrid(ctx context.Context, publicID string) (*models.TimetableGrid, error)
	Validate(ctx context.Context, publicID string) (*models.ComplianceReport, error)
	AutoFillPreview(ctx context.Context, publicID string) (*models.AutoFillResult, error)
	Generate(ctx context.Context, publicID string, force bool) (*models.GenerationResult, error)

	MoveSlot(ctx context.Context, publicID string, req *models.MoveSlotRequest) ([]models.TimetableSlot, error)
	UpdateSlot(ctx context.Context, publicID string, req *models.UpdateSlotRequest) (*models.TimetableSlot, error)
	ClearSlot(ctx context.Context, publicID string, req *models.ClearSlotRequest) error

	GetDashboardData(ctx context.Context) (*DashboardData, error)
}

// DashboardData represents data for the dashboard view
type DashboardData struct {
	TeacherCount    int                      `json:"teacher_count"`
	SubjectCount    int                      `json:"subject_count"`
	ClassroomCount  int                      `json:"classroom_count"`
	ClassCount      int                      `json:"class_count"`
	TimetableCount  int                      `json:"timetable_count"`
	ActiveTimetable *models.Timetable        `json:"active_timetable,omitempty"`
	ActiveReport    *models.ComplianceReport `json:"active_report,omitempty"`
}

// timetableService implements TimetableService interface
type timetableService struct {
	timetableRepo repositories.TimetableRepository
	teacherRepo   repositories.TeacherRepository
	subjectRepo   repositories.SubjectRepository
	classroomRepo repositories.ClassroomRepository
	classRepo     repositories.SchoolClassRepository
	settingsRepo  repositories.SettingsRepository
	validator     ValidatorService
}

// NewTimetableService creates a new timetable service
func NewTimetableService(
	timetableRepo repositories.TimetableRepository,
	teacherRepo repositories.TeacherRepository,
	subjectRepo repositories.SubjectRepository,
	classroomRepo repositories.ClassroomRepository,
	classRepo repositories.SchoolClassRepository,
	settingsRepo repositories.SettingsRepository,
	validator ValidatorService,
) TimetableService {
	return &timetableService{
		timetableRepo: timetableRepo,
		teacherRepo:   teacherRepo,
		subjectRepo:   subjectRepo,
		classroomRepo: classroomRepo,
		classRepo:     classRepo,
		settingsRepo:  settingsRepo,
		validator:     validator,
	}
}

// GetAllTimetables retrieves all timetables, newest first
func (s *timetableService) GetAllTimetables(ctx context.Context) ([]models.Timetable, error) {
	return s.timetableRepo.GetAll(ctx)
}

// GetTimetable retrieves a timetable by its public ID
func (s *timetableService) GetTimetable(ctx context.Context, publicID string) (*models.Timetable, error) {
	return s.timetableRepo.GetByPublicID(ctx, publicID)
}

// CreateTimetable creates a new empty timetable in draft status
func (s *timetableService) CreateTimetable(ctx context.Context, req *models.TimetableRequest) (*models.Timetable, error) {
	if errors := req.Validate(); errors.HasErrors() {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	status := req.Status
	if status == "" {
		status = models.TimetableDraft
	}

	timetable := &models.Timetable{
		PublicID: uuid.New().String(),
		Name:     strings.TrimSpace(req.Name),
		Status:   status,
	}

	if status == models.TimetableActive {
		if err := s.archiveCurrentActive(ctx, 0); err != nil {
			return nil, err
		}
	}

	if err := s.timetableRepo.Create(ctx, timetable); err != nil {
		return nil, fmt.Errorf("failed to create timetable: %w", err)
	}

	return timetable, nil
}

// UpdateTimetable updates a timetable's name and status. Activating a
// timetable archives the previously active one so at most one is active.
func (s *timetableService) UpdateTimetable(ctx context.Context, publicID string, req *models.TimetableRequest) (*models.Timetable, error) {
	if errors := req.Validate(); errors.HasErrors() {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	timetable, err := s.timetableRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	timetable.Name = strings.TrimSpace(req.Name)
	if req.Status != "" {
		if req.Status == models.TimetableActive && timetable.Status != models.TimetableActive {
			if err := s.archiveCurrentActive(ctx, timetable.ID); err != nil {
				return nil, err
			}
		}
		timetable.Status = req.Status
	}

	if err := s.timetableRepo.Update(ctx, timetable); err != nil {
		return nil, err
	}

	return timetable, nil
}

// archiveCurrentActive demotes the active timetable, if any, skipping the
// given ID
func (s *timetableService) archiveCurrentActive(ctx context.Context, skipID int) error {
	active, err := s.timetableRepo.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to get active timetable: %w", err)
	}
	if active == nil || active.ID == skipID {
		return nil
	}

	active.Status = models.TimetableArchived
	if err := s.timetableRepo.Update(ctx, active); err != nil {
		return fmt.Errorf("failed to archive timetable: %w", err)
	}
	return nil
}

// DeleteTimetable deletes a timetable and all of its slots
func (s *timetableService) DeleteTimetable(ctx context.Context, publicID string) error {
	timetable, err := s.timetableRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	return s.timetableRepo.Delete(ctx, timetable.ID)
}

// GetGrid retrieves a timetable as a per-class day x period matrix for display
func (s *timetableService) GetGrid(ctx context.Context, publicID string) (*models.TimetableGrid, error) {
	timetable, err := s.timetableRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get school settings: %w", err)
	}

	classes, err := s.classRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get classes: %w", err)
	}

	slots, err := s.timetableRepo.GetSlots(ctx, timetable.ID)
	if err != nil {
		return nil, err
	}

	return buildGrid(timetable, settings, classes, slots), nil
}

// buildGrid lays sparse slot rows into per-class matrices. Rows outside the
// configured grid or referencing unknown classes are dropped.
func buildGrid(timetable *models.Timetable, settings *models.SchoolSettings, classes []models.SchoolClass, slots []models.TimetableSlot) *models.TimetableGrid {
	grid := &models.TimetableGrid{
		Timetable:   *timetable,
		Settings:    *settings,
		PeriodTimes: make([]string, settings.PeriodsPerDay),
		Classes:     make([]models.ClassWeekGrid, 0, len(classes)),
	}
	for period := range grid.PeriodTimes {
		grid.PeriodTimes[period] = settings.PeriodStart(period)
	}

	byClass := make(map[int]*models.ClassWeekGrid, len(classes))
	for _, class := range classes {
		days := make([][]*models.TimetableSlot, settings.DaysPerWeek)
		for day := range days {
			days[day] = make([]*models.TimetableSlot, settings.PeriodsOn(day))
		}

		grid.Classes = append(grid.Classes, models.ClassWeekGrid{
			ClassID:    class.ID,
			Grade:      class.Grade,
			ClassLabel: class.Label,
			Days:       days,
		})
		byClass[class.ID] = &grid.Classes[len(grid.Classes)-1]
	}

	for i := range slots {
		slot := &slots[i]
		classGrid, ok := byClass[slot.ClassID]
		if !ok {
			continue
		}
		if slot.Day < 0 || slot.Day >= len(classGrid.Days) {
			continue
		}
		if slot.Period < 0 || slot.Period >= len(classGrid.Days[slot.Day]) {
			continue
		}
		classGrid.Days[slot.Day][slot.Period] = slot
	}

	return grid
}

// Validate runs the compliance validator against a stored timetable
func (s *timetableService) Validate(ctx context.Context, publicID string) (*models.ComplianceReport, error) {
	_, settings, classes, slots, err := s.getValidationData(ctx, publicID)
	if err != nil {
		return nil, err
	}

	teachers, err := s.teacherRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get teachers: %w", err)
	}

	return s.validator.Validate(settings, classes, teachers, slots), nil
}

// AutoFillPreview computes a greedy fill of the empty cells without persisting
// anything
func (s *timetableService) AutoFillPreview(ctx context.Context, publicID string) (*models.AutoFillResult, error) {
	_, settings, classes, slots, err := s.getValidationData(ctx, publicID)
	if err != nil {
		return nil, err
	}

	teachers, err := s.teacherRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active teachers: %w", err)
	}

	subjects, err := s.subjectRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active subjects: %w", err)
	}

	return s.validator.AutoFill(settings, classes, teachers, subjects, slots), nil
}

// getValidationData loads everything the validator needs for one timetable
func (s *timetableService) getValidationData(ctx context.Context, publicID string) (*models.Timetable, *models.SchoolSettings, []models.SchoolClass, []models.TimetableSlot, error) {
	timetable, err := s.timetableRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to get school settings: %w", err)
	}

	classes, err := s.classRepo.GetAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to get classes: %w", err)
	}

	slots, err := s.timetableRepo.GetSlots(ctx, timetable.ID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return timetable, settings, classes, slots, nil
}

// Generate (re)generates a timetable's slots. Pinned slots are preserved,
// everything else is rebuilt with the greedy engine.
func (s *timetableService) Generate(ctx context.Context, publicID string, force bool) (*models.GenerationResult, error) {
	timetable, err := s.timetableRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	// Validate that generation is possible
	settings, classes, teachers, subjects, classrooms, err := s.getGenerationData(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateGenerationInputs(settings, classes, teachers, subjects); err != nil {
		return &models.GenerationResult{
			Success: false,
			Message: err.Error(),
		}, nil
	}

	// Check if regeneration is needed
	if !force && s.isUpToDate(timetable) {
		return &models.GenerationResult{
			Success:     true,
			Message:     "Timetable is up to date",
			GeneratedAt: *timetable.GeneratedAt,
		}, nil
	}

	// Clean up previous run while keeping manual edits
	if err := s.timetableRepo.DeleteUnpinnedSlots(ctx, timetable.ID); err != nil {
		return nil, err
	}

	pinned, err := s.timetableRepo.GetSlots(ctx, timetable.ID)
	if err != nil {
		return nil, err
	}

	// Generate new slot rows
	created, unfilled := s.generateSlots(timetable.ID, settings, classes, teachers, subjects, classrooms, pinned)
	if err := s.timetableRepo.InsertSlots(ctx, created); err != nil {
		return nil, err
	}

	return s.finalizeGeneration(ctx, timetable, len(created), unfilled)
}

// isUpToDate checks whether the timetable was generated recently
func (s *timetableService) isUpToDate(timetable *models.Timetable) bool {
	return timetable.GeneratedAt != nil && timeNow().Sub(*timetable.GeneratedAt) < regenerationInterval
}

// getGenerationData retrieves the configuration and resources generation
// works from
func (s *timetableService) getGenerationData(ctx context.Context) (*models.SchoolSettings, []models.SchoolClass, []models.Teacher, []models.Subject, []models.Classroom, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to get school settings: %w", err)
	}

	classes, err := s.classRepo.GetAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to get classes: %w", err)
	}

	teachers, err := s.teacherRepo.GetActive(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to get active teachers: %w", err)
	}

	subjects, err := s.subjectRepo.GetActive(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to get active subjects: %w", err)
	}

	classrooms, err := s.classroomRepo.GetAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("failed to get classrooms: %w", err)
	}

	return settings, classes, teachers, subjects, classrooms, nil
}

// validateGenerationInputs checks that generation has something to work with
func validateGenerationInputs(settings *models.SchoolSettings, classes []models.SchoolClass, teachers []models.Teacher, subjects []models.Subject) error {
	if settings.TotalCells() == 0 {
		return fmt.Errorf("school settings define an empty week. Configure days and periods before generating")
	}
	if len(classes) == 0 {
		return fmt.Errorf("no classes found. Add classes before generating a timetable")
	}
	if len(teachers) == 0 {
		return fmt.Errorf("no active teachers found. Add teachers before generating a timetable")
	}
	if len(activeSubjectsWithDemand(subjects)) == 0 {
		return fmt.Errorf("no subjects with weekly periods found. Configure subjects before generating a timetable")
	}
	return nil
}

// generateSlots fills every empty cell with the neediest subject taught by a
// free qualified teacher, reserving a suitable classroom when the subject
// requires a special room. Returns the new rows and the count of cells no
// assignment could be found for.
func (s *timetableService) generateSlots(timetableID int, settings *models.SchoolSettings, classes []models.SchoolClass, teachers []models.Teacher, subjects []models.Subject, classrooms []models.Classroom, pinned []models.TimetableSlot) ([]models.TimetableSlot, int) {
	cells := buildCellMap(settings, classes, pinned)
	candidates := activeSubjectsWithDemand(subjects)

	demand := make(map[int]map[int]int)
	for _, class := range classes {
		demand[class.ID] = make(map[int]int)
		for _, subject := range candidates {
			demand[class.ID][subject.ID] = subject.WeeklyPeriods
		}
	}

	busy := make(map[timeKey]map[int]bool)
	roomBusy := make(map[timeKey]map[int]bool)
	load := make(map[int]int)
	for _, slot := range cells {
		tk := timeKey{slot.Day, slot.Period}
		if slot.SubjectID != nil {
			if _, ok := demand[slot.ClassID][*slot.SubjectID]; ok {
				demand[slot.ClassID][*slot.SubjectID]--
			}
		}
		if slot.TeacherID != nil {
			if busy[tk] == nil {
				busy[tk] = make(map[int]bool)
			}
			busy[tk][*slot.TeacherID] = true
			load[*slot.TeacherID]++
		}
		if slot.ClassroomID != nil {
			if roomBusy[tk] == nil {
				roomBusy[tk] = make(map[int]bool)
			}
			roomBusy[tk][*slot.ClassroomID] = true
		}
	}

	var created []models.TimetableSlot
	unfilled := 0

	for _, class := range classes {
		for day := 0; day < settings.DaysPerWeek; day++ {
			for period := 0; period < settings.PeriodsOn(day); period++ {
				if _, occupied := cells[cellKey{class.ID, day, period}]; occupied {
					continue
				}

				slot, ok := s.generateCell(timetableID, class.ID, day, period, candidates, teachers, classrooms, demand[class.ID], busy, roomBusy, load)
				if !ok {
					unfilled++
					continue
				}

				created = append(created, *slot)
			}
		}
	}

	return created, unfilled
}

// generateCell picks an assignment for one empty cell, or reports that none
// is possible
func (s *timetableService) generateCell(timetableID, classID, day, period int, subjects []models.Subject, teachers []models.Teacher, classrooms []models.Classroom, demand map[int]int, busy, roomBusy map[timeKey]map[int]bool, load map[int]int) (*models.TimetableSlot, bool) {
	tk := timeKey{day, period}

	ordered := make([]models.Subject, len(subjects))
	copy(ordered, subjects)
	sortSubjectsByDeficit(ordered, demand)

	for _, subject := range ordered {
		if demand[subject.ID] <= 0 {
			continue
		}

		teacher := pickTeacher(teachers, subject.ID, tk, busy, load)
		if teacher == nil {
			continue
		}

		var classroomID *int
		if subject.RoomKind != "" {
			room := pickClassroom(classrooms, subject.RoomKind, tk, roomBusy)
			if room == nil {
				continue
			}
			id := room.ID
			classroomID = &id
		}

		subjectID := subject.ID
		teacherID := teacher.ID

		demand[subjectID]--
		if busy[tk] == nil {
			busy[tk] = make(map[int]bool)
		}
		busy[tk][teacherID] = true
		load[teacherID]++
		if classroomID != nil {
			if roomBusy[tk] == nil {
				roomBusy[tk] = make(map[int]bool)
			}
			roomBusy[tk][*classroomID] = true
		}

		return &models.TimetableSlot{
			TimetableID: timetableID,
			ClassID:     classID,
			Day:         day,
			Period:      period,
			SubjectID:   &subjectID,
			TeacherID:   &teacherID,
			ClassroomID: classroomID,
		}, true
	}

	return nil, false
}

// pickClassroom finds the first classroom of a suitable kind that is free at
// the given time
func pickClassroom(classrooms []models.Classroom, roomKind string, tk timeKey, roomBusy map[timeKey]map[int]bool) *models.Classroom {
	for i := range classrooms {
		room := &classrooms[i]
		if !room.Suits(roomKind) {
			continue
		}
		if roomBusy[tk][room.ID] {
			continue
		}
		return room
	}
	return nil
}

// sortSubjectsByDeficit orders subjects by remaining weekly demand, keeping
// the given order on ties
func sortSubjectsByDeficit(subjects []models.Subject, demand map[int]int) {
	for i := 1; i < len(subjects); i++ {
		for j := i; j > 0 && demand[subjects[j].ID] > demand[subjects[j-1].ID]; j-- {
			subjects[j], subjects[j-1] = subjects[j-1], subjects[j]
		}
	}
}

// finalizeGeneration records the generation time and creates the final result
func (s *timetableService) finalizeGeneration(ctx context.Context, timetable *models.Timetable, created, unfilled int) (*models.GenerationResult, error) {
	generatedAt := timeNow()
	if err := s.timetableRepo.SetGeneratedAt(ctx, timetable.ID, generatedAt); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Successfully generated timetable with %d slots", created)
	if unfilled > 0 {
		message += fmt.Sprintf(", %d cells could not be filled", unfilled)
	}

	return &models.GenerationResult{
		Success:         true,
		Message:         message,
		SlotsCreated:    created,
		UnfilledDemands: unfilled,
		GeneratedAt:     generatedAt,
	}, nil
}

// MoveSlot moves an assigned slot to another cell of the same class,
// swapping when the destination is occupied. Moved slots become pinned so
// regeneration keeps them in place.
func (s *timetableService) MoveSlot(ctx context.Context, publicID string, req *models.MoveSlotRequest) ([]models.TimetableSlot, error) {
	if errors := req.Validate(); errors.HasErrors() {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	timetable, err := s.timetableRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get school settings: %w", err)
	}
	if err := checkCellBounds(settings, req.To); err != nil {
		return nil, err
	}

	source, err := s.timetableRepo.GetSlot(ctx, timetable.ID, req.From)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("no slot at %s", req.From)
	}

	target, err := s.timetableRepo.GetSlot(ctx, timetable.ID, req.To)
	if err != nil {
		return nil, err
	}

	slots, err := s.timetableRepo.GetSlots(ctx, timetable.ID)
	if err != nil {
		return nil, err
	}

	exclude := map[int]bool{source.ID: true}
	if target != nil {
		exclude[target.ID] = true
	}

	if err := checkSlotConflicts(slots, exclude, req.To.Day, req.To.Period, source.TeacherID, source.ClassroomID); err != nil {
		return nil, err
	}
	if target != nil {
		if err := checkSlotConflicts(slots, exclude, req.From.Day, req.From.Period, target.TeacherID, target.ClassroomID); err != nil {
			return nil, err
		}
	}

	if target == nil {
		source.Day = req.To.Day
		source.Period = req.To.Period
		source.Pinned = true
		if err := s.timetableRepo.UpdateSlot(ctx, source); err != nil {
			return nil, err
		}
		return []models.TimetableSlot{*source}, nil
	}

	source.Day = req.To.Day
	source.Period = req.To.Period
	source.Pinned = true
	target.Day = req.From.Day
	target.Period = req.From.Period
	target.Pinned = true
	if err := s.timetableRepo.SwapSlots(ctx, source, target); err != nil {
		return nil, err
	}

	return []models.TimetableSlot{*source, *target}, nil
}

// UpdateSlot sets the assignment of one cell directly. An empty assignment
// clears the cell.
func (s *timetableService) UpdateSlot(ctx context.Context, publicID string, req *models.UpdateSlotRequest) (*models.TimetableSlot, error) {
	if errors := req.Validate(); errors.HasErrors() {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	timetable, err := s.timetableRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get school settings: %w", err)
	}
	if err := checkCellBounds(settings, req.Ref); err != nil {
		return nil, err
	}

	existing, err := s.timetableRepo.GetSlot(ctx, timetable.ID, req.Ref)
	if err != nil {
		return nil, err
	}

	if req.Assignment.SubjectID == nil {
		if existing == nil {
			return nil, nil
		}
		if err := s.timetableRepo.DeleteSlot(ctx, existing.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := s.validateAssignmentReferences(ctx, &req.Assignment); err != nil {
		return nil, err
	}

	slots, err := s.timetableRepo.GetSlots(ctx, timetable.ID)
	if err != nil {
		return nil, err
	}

	exclude := map[int]bool{}
	if existing != nil {
		exclude[existing.ID] = true
	}
	if err := checkSlotConflicts(slots, exclude, req.Ref.Day, req.Ref.Period, req.Assignment.TeacherID, req.Assignment.ClassroomID); err != nil {
		return nil, err
	}

	if existing == nil {
		slot := &models.TimetableSlot{
			TimetableID: timetable.ID,
			ClassID:     req.Ref.ClassID,
			Day:         req.Ref.Day,
			Period:      req.Ref.Period,
			SubjectID:   req.Assignment.SubjectID,
			TeacherID:   req.Assignment.TeacherID,
			ClassroomID: req.Assignment.ClassroomID,
			Pinned:      true,
		}
		if err := s.timetableRepo.CreateSlot(ctx, slot); err != nil {
			return nil, err
		}
		return s.timetableRepo.GetSlot(ctx, timetable.ID, req.Ref)
	}

	existing.SubjectID = req.Assignment.SubjectID
	existing.TeacherID = req.Assignment.TeacherID
	existing.ClassroomID = req.Assignment.ClassroomID
	existing.Pinned = true
	if err := s.timetableRepo.UpdateSlot(ctx, existing); err != nil {
		return nil, err
	}

	return s.timetableRepo.GetSlot(ctx, timetable.ID, req.Ref)
}

// validateAssignmentReferences checks that the assigned entities exist
func (s *timetableService) validateAssignmentReferences(ctx context.Context, assignment *models.SlotAssignment) error {
	if assignment.SubjectID != nil {
		if _, err := s.subjectRepo.GetByID(ctx, *assignment.SubjectID); err != nil {
			return fmt.Errorf("subject not found: %w", err)
		}
	}
	if assignment.TeacherID != nil {
		if _, err := s.teacherRepo.GetByID(ctx, *assignment.TeacherID); err != nil {
			return fmt.Errorf("teacher not found: %w", err)
		}
	}
	if assignment.ClassroomID != nil {
		if _, err := s.classroomRepo.GetByID(ctx, *assignment.ClassroomID); err != nil {
			return fmt.Errorf("classroom not found: %w", err)
		}
	}
	return nil
}

// ClearSlot empties one cell
func (s *timetableService) ClearSlot(ctx context.Context, publicID string, req *models.ClearSlotRequest) error {
	if errors := req.Validate(); errors.HasErrors() {
		return fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	timetable, err := s.timetableRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return err
	}

	slot, err := s.timetableRepo.GetSlot(ctx, timetable.ID, req.Ref)
	if err != nil {
		return err
	}
	if slot == nil {
		return fmt.Errorf("no slot at %s", req.Ref)
	}

	return s.timetableRepo.DeleteSlot(ctx, slot.ID)
}

// checkCellBounds verifies a cell reference falls inside the configured grid
func checkCellBounds(settings *models.SchoolSettings, ref models.SlotRef) error {
	if ref.Day < 0 || ref.Day >= settings.DaysPerWeek {
		return fmt.Errorf("day %d is outside the school week", ref.Day)
	}
	if ref.Period < 0 || ref.Period >= settings.PeriodsOn(ref.Day) {
		return fmt.Errorf("period %d is outside the school day", ref.Period)
	}
	return nil
}

// checkSlotConflicts verifies a teacher and classroom are free at (day,
// period) across all classes, ignoring the excluded slot rows
func checkSlotConflicts(slots []models.TimetableSlot, exclude map[int]bool, day, period int, teacherID, classroomID *int) error {
	for i := range slots {
		slot := &slots[i]
		if exclude[slot.ID] || slot.Day != day || slot.Period != period {
			continue
		}
		if teacherID != nil && slot.TeacherID != nil && *slot.TeacherID == *teacherID {
			return fmt.Errorf("%s already teaches class %d at %s period %d",
				teacherLabel(slot), slot.ClassID, models.DayName(day), period+1)
		}
		if classroomID != nil && slot.ClassroomID != nil && *slot.ClassroomID == *classroomID {
			return fmt.Errorf("%s is already occupied by class %d at %s period %d",
				roomLabel(slot), slot.ClassID, models.DayName(day), period+1)
		}
	}
	return nil
}

// GetDashboardData retrieves data for the dashboard
func (s *timetableService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	teacherCount, err := s.teacherRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count teachers: %w", err)
	}

	subjectCount, err := s.subjectRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count subjects: %w", err)
	}

	classroomCount, err := s.classroomRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count classrooms: %w", err)
	}

	classCount, err := s.classRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count classes: %w", err)
	}

	timetableCount, err := s.timetableRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count timetables: %w", err)
	}

	data := &DashboardData{
		TeacherCount:   teacherCount,
		SubjectCount:   subjectCount,
		ClassroomCount: classroomCount,
		ClassCount:     classCount,
		TimetableCount: timetableCount,
	}

	active, err := s.timetableRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active timetable: %w", err)
	}
	if active != nil {
		data.ActiveTimetable = active

		report, err := s.Validate(ctx, active.PublicID)
		if err != nil {
			return nil, err
		}
		data.ActiveReport = report
	}

	return data, nil
}
