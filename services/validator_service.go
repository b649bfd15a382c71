package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/schoolplan/timetable-server/models"
)

// ValidatorService checks a populated weekly grid for conflicts and computes
// the assignment compliance rate. It is a pure function of its inputs and
// never touches the database.
type ValidatorService interface {
	Validate(settings *models.SchoolSettings, classes []models.SchoolClass, teachers []models.Teacher, slots []models.TimetableSlot) *models.ComplianceReport
	AutoFill(settings *models.SchoolSettings, classes []models.SchoolClass, teachers []models.Teacher, subjects []models.Subject, slots []models.TimetableSlot) *models.AutoFillResult
}

// validatorService implements ValidatorService interface
type validatorService struct{}

// NewValidatorService creates a new validator service
func NewValidatorService() ValidatorService {
	return &validatorService{}
}

// cellKey identifies one grid cell
type cellKey struct {
	classID int
	day     int
	period  int
}

// timeKey identifies one (day, period) column across classes
type timeKey struct {
	day    int
	period int
}

// Validate scans the grid and emits a violation list plus a compliance score.
// Malformed input (nil settings, zero-sized grid, no classes) yields a zero
// report rather than an error.
func (v *validatorService) Validate(settings *models.SchoolSettings, classes []models.SchoolClass, teachers []models.Teacher, slots []models.TimetableSlot) *models.ComplianceReport {
	report := &models.ComplianceReport{
		Classes:    []models.ClassCompliance{},
		Violations: []models.Violation{},
	}

	if settings == nil || settings.TotalCells() == 0 || len(classes) == 0 {
		return report
	}

	cells := buildCellMap(settings, classes, slots)
	teacherAt, roomAt := buildOccupancy(cells)
	qualified := buildQualificationMap(teachers)

	for _, class := range classes {
		classReport := models.ClassCompliance{
			ClassID:    class.ID,
			ClassLabel: class.Label,
		}

		for day := 0; day < settings.DaysPerWeek; day++ {
			for period := 0; period < settings.PeriodsOn(day); period++ {
				classReport.TotalCells++
				report.TotalCells++

				slot, ok := cells[cellKey{class.ID, day, period}]
				if !ok || !slot.IsFilled() {
					message := "slot has no assignment"
					if ok && slot.SubjectID != nil {
						message = "slot has a subject but no teacher"
					}
					report.Violations = append(report.Violations, models.Violation{
						ClassID:  class.ID,
						Day:      day,
						Period:   period,
						Kind:     models.ViolationEmptySlot,
						Severity: models.SeverityLow,
						Message:  message,
					})
					classReport.Violations++
					continue
				}

				report.FilledCells++
				violations := 0
				tk := timeKey{day, period}

				if teacherAt[tk][*slot.TeacherID] > 1 {
					report.Violations = append(report.Violations, models.Violation{
						ClassID:  class.ID,
						Day:      day,
						Period:   period,
						Kind:     models.ViolationTeacherConflict,
						Severity: models.SeverityHigh,
						Message: fmt.Sprintf("%s is assigned to %d classes at %s period %d",
							teacherLabel(slot), teacherAt[tk][*slot.TeacherID], models.DayName(day), period+1),
					})
					violations++
				}

				if slot.ClassroomID != nil && roomAt[tk][*slot.ClassroomID] > 1 {
					report.Violations = append(report.Violations, models.Violation{
						ClassID:  class.ID,
						Day:      day,
						Period:   period,
						Kind:     models.ViolationRoomConflict,
						Severity: models.SeverityHigh,
						Message: fmt.Sprintf("%s is occupied by %d classes at %s period %d",
							roomLabel(slot), roomAt[tk][*slot.ClassroomID], models.DayName(day), period+1),
					})
					violations++
				}

				if !qualified[*slot.TeacherID][*slot.SubjectID] {
					report.Violations = append(report.Violations, models.Violation{
						ClassID:  class.ID,
						Day:      day,
						Period:   period,
						Kind:     models.ViolationUnqualifiedTeacher,
						Severity: models.SeverityMedium,
						Message: fmt.Sprintf("%s is not qualified to teach %s",
							teacherLabel(slot), subjectLabel(slot)),
					})
					violations++
				}

				if violations == 0 {
					classReport.CleanCells++
					report.CleanCells++
				}
				classReport.Violations += violations
			}
		}

		classReport.Rate = percentage(classReport.CleanCells, classReport.TotalCells)
		report.Classes = append(report.Classes, classReport)
	}

	report.Rate = percentage(report.CleanCells, report.TotalCells)
	return report
}

// AutoFill greedily assigns an available qualified teacher and the neediest
// subject into each empty cell. The result is a display preview and is never
// persisted. The returned slot set contains the kept input slots plus the
// newly filled ones.
func (v *validatorService) AutoFill(settings *models.SchoolSettings, classes []models.SchoolClass, teachers []models.Teacher, subjects []models.Subject, slots []models.TimetableSlot) *models.AutoFillResult {
	result := &models.AutoFillResult{Slots: []models.TimetableSlot{}}

	if settings == nil || settings.TotalCells() == 0 || len(classes) == 0 {
		return result
	}

	cells := buildCellMap(settings, classes, slots)

	// Remaining weekly demand per class and subject
	demand := make(map[int]map[int]int)
	candidates := activeSubjectsWithDemand(subjects)
	for _, class := range classes {
		demand[class.ID] = make(map[int]int)
		for _, subject := range candidates {
			demand[class.ID][subject.ID] = subject.WeeklyPeriods
		}
	}

	// Teacher occupancy and weekly load from the existing assignments
	busy := make(map[timeKey]map[int]bool)
	load := make(map[int]int)
	for _, slot := range cells {
		if slot.SubjectID != nil {
			if _, ok := demand[slot.ClassID][*slot.SubjectID]; ok {
				demand[slot.ClassID][*slot.SubjectID]--
			}
		}
		if slot.TeacherID != nil {
			tk := timeKey{slot.Day, slot.Period}
			if busy[tk] == nil {
				busy[tk] = make(map[int]bool)
			}
			busy[tk][*slot.TeacherID] = true
			load[*slot.TeacherID]++
		}
		result.Slots = append(result.Slots, *slot)
	}

	// Keep the preview output stable regardless of map iteration order
	sort.Slice(result.Slots, func(i, j int) bool {
		a, b := result.Slots[i], result.Slots[j]
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.Period < b.Period
	})

	for _, class := range classes {
		for day := 0; day < settings.DaysPerWeek; day++ {
			for period := 0; period < settings.PeriodsOn(day); period++ {
				if _, occupied := cells[cellKey{class.ID, day, period}]; occupied {
					continue
				}

				slot, ok := v.fillCell(class.ID, day, period, candidates, teachers, demand[class.ID], busy, load)
				if !ok {
					result.Unfilled++
					continue
				}

				result.Slots = append(result.Slots, *slot)
				result.Filled++
			}
		}
	}

	return result
}

// fillCell picks the subject with the largest remaining deficit that has a
// qualified teacher free at (day, period), preferring subjects and teachers
// in their given (repository) order on ties.
func (v *validatorService) fillCell(classID, day, period int, subjects []models.Subject, teachers []models.Teacher, demand map[int]int, busy map[timeKey]map[int]bool, load map[int]int) (*models.TimetableSlot, bool) {
	tk := timeKey{day, period}

	ordered := make([]models.Subject, len(subjects))
	copy(ordered, subjects)
	sort.SliceStable(ordered, func(i, j int) bool {
		return demand[ordered[i].ID] > demand[ordered[j].ID]
	})

	for _, subject := range ordered {
		if demand[subject.ID] <= 0 {
			continue
		}

		teacher := pickTeacher(teachers, subject.ID, tk, busy, load)
		if teacher == nil {
			continue
		}

		subjectID := subject.ID
		teacherID := teacher.ID

		demand[subjectID]--
		if busy[tk] == nil {
			busy[tk] = make(map[int]bool)
		}
		busy[tk][teacherID] = true
		load[teacherID]++

		return &models.TimetableSlot{
			ClassID:     classID,
			Day:         day,
			Period:      period,
			SubjectID:   &subjectID,
			TeacherID:   &teacherID,
			SubjectName: subject.Name,
			TeacherName: teacher.Name,
		}, true
	}

	return nil, false
}

// pickTeacher finds the first active teacher qualified for the subject who is
// free at the given time and under their weekly maximum
func pickTeacher(teachers []models.Teacher, subjectID int, tk timeKey, busy map[timeKey]map[int]bool, load map[int]int) *models.Teacher {
	for i := range teachers {
		teacher := &teachers[i]
		if !teacher.Active || !teacher.CanTeach(subjectID) {
			continue
		}
		if busy[tk][teacher.ID] {
			continue
		}
		if teacher.MaxWeeklyPeriods > 0 && load[teacher.ID] >= teacher.MaxWeeklyPeriods {
			continue
		}
		return teacher
	}
	return nil
}

// buildCellMap indexes slots by grid cell, dropping rows that fall outside
// the configured grid or reference unknown classes. The first row wins when
// duplicates target the same cell.
func buildCellMap(settings *models.SchoolSettings, classes []models.SchoolClass, slots []models.TimetableSlot) map[cellKey]*models.TimetableSlot {
	known := make(map[int]bool, len(classes))
	for _, class := range classes {
		known[class.ID] = true
	}

	cells := make(map[cellKey]*models.TimetableSlot)
	for i := range slots {
		slot := &slots[i]
		if !known[slot.ClassID] {
			continue
		}
		if slot.Day < 0 || slot.Day >= settings.DaysPerWeek {
			continue
		}
		if slot.Period < 0 || slot.Period >= settings.PeriodsOn(slot.Day) {
			continue
		}

		key := cellKey{slot.ClassID, slot.Day, slot.Period}
		if _, exists := cells[key]; exists {
			continue
		}
		cells[key] = slot
	}

	return cells
}

// buildOccupancy counts, per (day, period), how many cells each teacher and
// classroom appears in
func buildOccupancy(cells map[cellKey]*models.TimetableSlot) (map[timeKey]map[int]int, map[timeKey]map[int]int) {
	teacherAt := make(map[timeKey]map[int]int)
	roomAt := make(map[timeKey]map[int]int)

	for key, slot := range cells {
		tk := timeKey{key.day, key.period}
		if slot.TeacherID != nil {
			if teacherAt[tk] == nil {
				teacherAt[tk] = make(map[int]int)
			}
			teacherAt[tk][*slot.TeacherID]++
		}
		if slot.ClassroomID != nil {
			if roomAt[tk] == nil {
				roomAt[tk] = make(map[int]int)
			}
			roomAt[tk][*slot.ClassroomID]++
		}
	}

	return teacherAt, roomAt
}

// buildQualificationMap indexes teacher qualifications for O(1) lookup
func buildQualificationMap(teachers []models.Teacher) map[int]map[int]bool {
	qualified := make(map[int]map[int]bool, len(teachers))
	for _, teacher := range teachers {
		subjects := make(map[int]bool, len(teacher.SubjectIDs))
		for _, subjectID := range teacher.SubjectIDs {
			subjects[subjectID] = true
		}
		qualified[teacher.ID] = subjects
	}
	return qualified
}

// activeSubjectsWithDemand filters subjects that participate in auto-fill
func activeSubjectsWithDemand(subjects []models.Subject) []models.Subject {
	var out []models.Subject
	for _, subject := range subjects {
		if subject.Active && subject.WeeklyPeriods > 0 {
			out = append(out, subject)
		}
	}
	return out
}

// percentage computes a one-decimal percent value
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

func teacherLabel(slot *models.TimetableSlot) string {
	if slot.TeacherName != "" {
		return slot.TeacherName
	}
	return fmt.Sprintf("teacher %d", *slot.TeacherID)
}

func roomLabel(slot *models.TimetableSlot) string {
	if slot.ClassroomName != "" {
		return slot.ClassroomName
	}
	return fmt.Sprintf("classroom %d", *slot.ClassroomID)
}

func subjectLabel(slot *models.TimetableSlot) string {
	if slot.SubjectName != "" {
		return slot.SubjectName
	}
	return fmt.Sprintf("subject %d", *slot.SubjectID)
}
