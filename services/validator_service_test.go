package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schoolplan/timetable-server/models"
)

func intPtr(v int) *int {
	return &v
}

func testSettings(days, periods int) *models.SchoolSettings {
	return &models.SchoolSettings{
		ID:            1,
		DaysPerWeek:   days,
		PeriodsPerDay: periods,
		DayStartTime:  "08:30",
		PeriodMinutes: 50,
	}
}

func filledSlot(classID, day, period, subjectID, teacherID int) models.TimetableSlot {
	return models.TimetableSlot{
		ClassID:   classID,
		Day:       day,
		Period:    period,
		SubjectID: intPtr(subjectID),
		TeacherID: intPtr(teacherID),
	}
}

func TestValidate_EmptyGridReportsEverythingUnfilled(t *testing.T) {
	validator := NewValidatorService()

	settings := testSettings(5, 2)
	classes := []models.SchoolClass{{ID: 1, Grade: 7, Label: "7A"}}

	report := validator.Validate(settings, classes, nil, nil)

	assert.Equal(t, 10, report.TotalCells)
	assert.Equal(t, 0, report.FilledCells)
	assert.Equal(t, 0, report.CleanCells)
	assert.Equal(t, 0.0, report.Rate)
	assert.Len(t, report.Violations, 10)
	for _, v := range report.Violations {
		assert.Equal(t, models.ViolationEmptySlot, v.Kind)
		assert.Equal(t, models.SeverityLow, v.Severity)
	}
}

func TestValidate_CleanGridScoresFullCompliance(t *testing.T) {
	validator := NewValidatorService()

	settings := testSettings(5, 1)
	classes := []models.SchoolClass{{ID: 1, Grade: 7, Label: "7A"}}
	teachers := []models.Teacher{{ID: 1, Name: "Ada", Active: true, SubjectIDs: []int{10}}}

	var slots []models.TimetableSlot
	for day := 0; day < 5; day++ {
		slots = append(slots, filledSlot(1, day, 0, 10, 1))
	}

	report := validator.Validate(settings, classes, teachers, slots)

	assert.Equal(t, 100.0, report.Rate)
	assert.Equal(t, 5, report.CleanCells)
	assert.Empty(t, report.Violations)
	assert.Len(t, report.Classes, 1)
	assert.Equal(t, 100.0, report.Classes[0].Rate)
}

func TestValidate_TeacherConflictFlagsEveryCollidingCell(t *testing.T) {
	validator := NewValidatorService()

	settings := testSettings(5, 1)
	classes := []models.SchoolClass{
		{ID: 1, Grade: 7, Label: "7A"},
		{ID: 2, Grade: 7, Label: "7B"},
	}
	teachers := []models.Teacher{{ID: 1, Name: "Ada", Active: true, SubjectIDs: []int{10}}}

	// Same teacher in two classes at Monday period 1
	slots := []models.TimetableSlot{
		filledSlot(1, 0, 0, 10, 1),
		filledSlot(2, 0, 0, 10, 1),
	}

	report := validator.Validate(settings, classes, teachers, slots)

	var conflicts []models.Violation
	for _, v := range report.Violations {
		if v.Kind == models.ViolationTeacherConflict {
			conflicts = append(conflicts, v)
		}
	}

	assert.Len(t, conflicts, 2)
	assert.Equal(t, models.SeverityHigh, conflicts[0].Severity)
	assert.Equal(t, 1, conflicts[0].ClassID)
	assert.Equal(t, 2, conflicts[1].ClassID)
}

func TestValidate_RoomConflict(t *testing.T) {
	validator := NewValidatorService()

	settings := testSettings(5, 1)
	classes := []models.SchoolClass{
		{ID: 1, Grade: 7, Label: "7A"},
		{ID: 2, Grade: 7, Label: "7B"},
	}
	teachers := []models.Teacher{
		{ID: 1, Name: "Ada", Active: true, SubjectIDs: []int{10}},
		{ID: 2, Name: "Grace", Active: true, SubjectIDs: []int{10}},
	}

	slotA := filledSlot(1, 0, 0, 10, 1)
	slotA.ClassroomID = intPtr(5)
	slotB := filledSlot(2, 0, 0, 10, 2)
	slotB.ClassroomID = intPtr(5)

	report := validator.Validate(settings, classes, teachers, []models.TimetableSlot{slotA, slotB})

	roomConflicts := 0
	for _, v := range report.Violations {
		if v.Kind == models.ViolationRoomConflict {
			roomConflicts++
			assert.Equal(t, models.SeverityHigh, v.Severity)
		}
	}
	assert.Equal(t, 2, roomConflicts)
}

func TestValidate_UnqualifiedTeacher(t *testing.T) {
	validator := NewValidatorService()

	settings := testSettings(5, 1)
	classes := []models.SchoolClass{{ID: 1, Grade: 7, Label: "7A"}}
	teachers := []models.Teacher{{ID: 1, Name: "Ada", Active: true, SubjectIDs: []int{11}}}

	report := validator.Validate(settings, classes, teachers, []models.TimetableSlot{
		filledSlot(1, 0, 0, 10, 1),
	})

	var unqualified []models.Violation
	for _, v := range report.Violations {
		if v.Kind == models.ViolationUnqualifiedTeacher {
			unqualified = append(unqualified, v)
		}
	}

	assert.Len(t, unqualified, 1)
	assert.Equal(t, models.SeverityMedium, unqualified[0].Severity)
}

func TestValidate_SlotWithSubjectButNoTeacherIsEmpty(t *testing.T) {
	validator := NewValidatorService()

	settings := testSettings(5, 1)
	classes := []models.SchoolClass{{ID: 1, Grade: 7, Label: "7A"}}

	slot := models.TimetableSlot{ClassID: 1, Day: 0, Period: 0, SubjectID: intPtr(10)}
	report := validator.Validate(settings, classes, nil, []models.TimetableSlot{slot})

	assert.Equal(t, 0, report.FilledCells)
	assert.Equal(t, models.ViolationEmptySlot, report.Violations[0].Kind)
	assert.Contains(t, report.Violations[0].Message, "no teacher")
}

func TestValidate_RowsOutsideGridAreDropped(t *testing.T) {
	validator := NewValidatorService()

	settings := testSettings(5, 2)
	classes := []models.SchoolClass{{ID: 1, Grade: 7, Label: "7A"}}
	teachers := []models.Teacher{{ID: 1, Name: "Ada", Active: true, SubjectIDs: []int{10}}}

	slots := []models.TimetableSlot{
		filledSlot(1, 0, 0, 10, 1),
		filledSlot(1, 6, 0, 10, 1),  // day outside the week
		filledSlot(1, 0, 9, 10, 1),  // period outside the day
		filledSlot(99, 0, 1, 10, 1), // unknown class
	}

	report := validator.Validate(settings, classes, teachers, slots)

	assert.Equal(t, 10, report.TotalCells)
	assert.Equal(t, 1, report.FilledCells)
}

func TestValidate_MalformedInputYieldsZeroReport(t *testing.T) {
	validator := NewValidatorService()

	report := validator.Validate(nil, []models.SchoolClass{{ID: 1}}, nil, nil)
	assert.Equal(t, 0.0, report.Rate)
	assert.Empty(t, report.Violations)

	report = validator.Validate(testSettings(5, 2), nil, nil, nil)
	assert.Equal(t, 0, report.TotalCells)
	assert.Empty(t, report.Classes)
}

func TestValidate_RateRoundsToOneDecimal(t *testing.T) {
	validator := NewValidatorService()

	// 1 clean cell out of 3: 33.3%
	settings := testSettings(5, 3)
	settings.DaysPerWeek = 1
	classes := []models.SchoolClass{{ID: 1, Grade: 7, Label: "7A"}}
	teachers := []models.Teacher{{ID: 1, Name: "Ada", Active: true, SubjectIDs: []int{10}}}

	report := validator.Validate(settings, classes, teachers, []models.TimetableSlot{
		filledSlot(1, 0, 0, 10, 1),
	})

	assert.Equal(t, 33.3, report.Rate)
}

func TestAutoFill_FillsEmptyCellsByLargestDeficit(t *testing.T) {
	validator := NewValidatorService()

	settings := testSettings(5, 1)
	settings.DaysPerWeek = 2
	classes := []models.SchoolClass{{ID: 1, Grade: 7, Label: "7A"}}
	teachers := []models.Teacher{{ID: 1, Name: "Ada", Active: true, SubjectIDs: []int{10, 11}}}
	subjects := []models.Subject{
		{ID: 10, Name: "Math", WeeklyPeriods: 1, Active: true},
		{ID: 11, Name: "History", WeeklyPeriods: 2, Active: true},
	}

	result := validator.AutoFill(settings, classes, teachers, subjects, nil)

	assert.Equal(t, 2, result.Filled)
	assert.Equal(t, 0, result.Unfilled)
	// History has the larger weekly demand so it wins the first cell
	assert.Equal(t, 11, *result.Slots[0].SubjectID)
}

func TestAutoFill_KeepsExistingSlotsAndCountsTheirDemand(t *testing.T) {
	validator := NewValidatorService()

	settings := testSettings(5, 1)
	settings.DaysPerWeek = 2
	classes := []models.SchoolClass{{ID: 1, Grade: 7, Label: "7A"}}
	teachers := []models.Teacher{{ID: 1, Name: "Ada", Active: true, SubjectIDs: []int{10}}}
	subjects := []models.Subject{{ID: 10, Name: "Math", WeeklyPeriods: 1, Active: true}}

	existing := []models.TimetableSlot{filledSlot(1, 0, 0, 10, 1)}
	result := validator.AutoFill(settings, classes, teachers, subjects, existing)

	// Math's single weekly period is already scheduled, nothing left to place
	assert.Equal(t, 0, result.Filled)
	assert.Equal(t, 1, result.Unfilled)
	assert.Len(t, result.Slots, 1)
}

func TestAutoFill_RespectsTeacherAvailability(t *testing.T) {
	validator := NewValidatorService()

	settings := testSettings(5, 1)
	settings.DaysPerWeek = 1
	classes := []models.SchoolClass{
		{ID: 1, Grade: 7, Label: "7A"},
		{ID: 2, Grade: 7, Label: "7B"},
	}
	// One teacher for two classes at the same time: only one cell fillable
	teachers := []models.Teacher{{ID: 1, Name: "Ada", Active: true, SubjectIDs: []int{10}}}
	subjects := []models.Subject{{ID: 10, Name: "Math", WeeklyPeriods: 1, Active: true}}

	result := validator.AutoFill(settings, classes, teachers, subjects, nil)

	assert.Equal(t, 1, result.Filled)
	assert.Equal(t, 1, result.Unfilled)
}

func TestAutoFill_RespectsMaxWeeklyPeriods(t *testing.T) {
	validator := NewValidatorService()

	settings := testSettings(5, 1)
	settings.DaysPerWeek = 3
	classes := []models.SchoolClass{{ID: 1, Grade: 7, Label: "7A"}}
	teachers := []models.Teacher{{ID: 1, Name: "Ada", Active: true, MaxWeeklyPeriods: 2, SubjectIDs: []int{10}}}
	subjects := []models.Subject{{ID: 10, Name: "Math", WeeklyPeriods: 3, Active: true}}

	result := validator.AutoFill(settings, classes, teachers, subjects, nil)

	assert.Equal(t, 2, result.Filled)
	assert.Equal(t, 1, result.Unfilled)
}

func TestAutoFill_SkipsInactiveTeachersAndSubjects(t *testing.T) {
	validator := NewValidatorService()

	settings := testSettings(5, 1)
	settings.DaysPerWeek = 1
	classes := []models.SchoolClass{{ID: 1, Grade: 7, Label: "7A"}}
	teachers := []models.Teacher{{ID: 1, Name: "Ada", Active: false, SubjectIDs: []int{10}}}
	subjects := []models.Subject{{ID: 10, Name: "Math", WeeklyPeriods: 1, Active: true}}

	result := validator.AutoFill(settings, classes, teachers, subjects, nil)
	assert.Equal(t, 0, result.Filled)
	assert.Equal(t, 1, result.Unfilled)

	teachers[0].Active = true
	subjects[0].Active = false
	result = validator.AutoFill(settings, classes, teachers, subjects, nil)
	assert.Equal(t, 0, result.Filled)
}
