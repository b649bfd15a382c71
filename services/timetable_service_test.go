package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolplan/timetable-server/database"
	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/repositories"
)

type testEnv struct {
	repos   *repositories.Repositories
	service TimetableService
}

func setupTestEnv(t *testing.T) *testEnv {
	dbPath := "test_" + time.Now().Format("20060102150405.000000000") + ".db"
	t.Cleanup(func() {
		database.CloseDB()
		os.Remove(dbPath)
	})

	if err := database.InitializeDatabase(dbPath); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	repos := repositories.NewRepositories(database.GetDB())
	service := NewTimetableService(
		repos.Timetable,
		repos.Teacher,
		repos.Subject,
		repos.Classroom,
		repos.SchoolClass,
		repos.Settings,
		NewValidatorService(),
	)

	return &testEnv{repos: repos, service: service}
}

// seedSchool writes a 5 day x 2 period week with one class, two subjects and
// one teacher qualified for both
func (env *testEnv) seedSchool(t *testing.T) (classID int, subjectIDs []int, teacherID int) {
	ctx := context.Background()

	settings, err := env.repos.Settings.Get(ctx)
	require.NoError(t, err)
	settings.DaysPerWeek = 5
	settings.PeriodsPerDay = 2
	settings.SaturdayPeriods = 0
	require.NoError(t, env.repos.Settings.Update(ctx, settings))

	math := &models.Subject{Name: "Mathematics", Code: "MATH", WeeklyPeriods: 5, Active: true}
	require.NoError(t, env.repos.Subject.Create(ctx, math))
	english := &models.Subject{Name: "English", Code: "ENG", WeeklyPeriods: 5, Active: true}
	require.NoError(t, env.repos.Subject.Create(ctx, english))

	teacher := &models.Teacher{Name: "Ada Lovelace", Active: true, SubjectIDs: []int{math.ID, english.ID}}
	require.NoError(t, env.repos.Teacher.Create(ctx, teacher))

	class := &models.SchoolClass{Grade: 7, Label: "7A"}
	require.NoError(t, env.repos.SchoolClass.Create(ctx, class))

	return class.ID, []int{math.ID, english.ID}, teacher.ID
}

func (env *testEnv) createTimetable(t *testing.T) *models.Timetable {
	timetable, err := env.service.CreateTimetable(context.Background(), &models.TimetableRequest{Name: "Autumn term"})
	require.NoError(t, err)
	return timetable
}

func TestGenerate_FillsTheWholeGrid(t *testing.T) {
	env := setupTestEnv(t)
	env.seedSchool(t)
	timetable := env.createTimetable(t)
	ctx := context.Background()

	result, err := env.service.Generate(ctx, timetable.PublicID, false)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 10, result.SlotsCreated)
	assert.Equal(t, 0, result.UnfilledDemands)

	stored, err := env.repos.Timetable.GetByPublicID(ctx, timetable.PublicID)
	require.NoError(t, err)
	assert.NotNil(t, stored.GeneratedAt)

	slots, err := env.repos.Timetable.GetSlots(ctx, timetable.ID)
	require.NoError(t, err)
	assert.Len(t, slots, 10)

	report, err := env.service.Validate(ctx, timetable.PublicID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, report.Rate)
}

func TestGenerate_SkipsWhenRecentUnlessForced(t *testing.T) {
	env := setupTestEnv(t)
	env.seedSchool(t)
	timetable := env.createTimetable(t)
	ctx := context.Background()

	_, err := env.service.Generate(ctx, timetable.PublicID, false)
	require.NoError(t, err)

	result, err := env.service.Generate(ctx, timetable.PublicID, false)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.Message, "up to date")

	result, err = env.service.Generate(ctx, timetable.PublicID, true)
	require.NoError(t, err)
	assert.Equal(t, 10, result.SlotsCreated)
}

func TestGenerate_PreservesPinnedSlots(t *testing.T) {
	env := setupTestEnv(t)
	classID, subjectIDs, teacherID := env.seedSchool(t)
	timetable := env.createTimetable(t)
	ctx := context.Background()

	pinned := &models.TimetableSlot{
		TimetableID: timetable.ID,
		ClassID:     classID,
		Day:         2,
		Period:      1,
		SubjectID:   &subjectIDs[0],
		TeacherID:   &teacherID,
		Pinned:      true,
	}
	require.NoError(t, env.repos.Timetable.CreateSlot(ctx, pinned))

	result, err := env.service.Generate(ctx, timetable.PublicID, false)
	require.NoError(t, err)
	assert.Equal(t, 9, result.SlotsCreated)

	kept, err := env.repos.Timetable.GetSlot(ctx, timetable.ID, models.SlotRef{ClassID: classID, Day: 2, Period: 1})
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, pinned.ID, kept.ID)
	assert.True(t, kept.Pinned)
}

func TestGenerate_FailsWithoutClasses(t *testing.T) {
	env := setupTestEnv(t)
	timetable := env.createTimetable(t)

	result, err := env.service.Generate(context.Background(), timetable.PublicID, false)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "no classes")
}

func TestGenerate_FailsWithoutTeachers(t *testing.T) {
	env := setupTestEnv(t)
	timetable := env.createTimetable(t)
	ctx := context.Background()

	require.NoError(t, env.repos.SchoolClass.Create(ctx, &models.SchoolClass{Grade: 7, Label: "7A"}))
	require.NoError(t, env.repos.Subject.Create(ctx, &models.Subject{
		Name: "Mathematics", Code: "MATH", WeeklyPeriods: 5, Active: true,
	}))

	result, err := env.service.Generate(ctx, timetable.PublicID, false)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "no active teachers")
}

func TestMoveSlot_MovesToEmptyCellAndPins(t *testing.T) {
	env := setupTestEnv(t)
	classID, subjectIDs, teacherID := env.seedSchool(t)
	timetable := env.createTimetable(t)
	ctx := context.Background()

	slot := &models.TimetableSlot{
		TimetableID: timetable.ID,
		ClassID:     classID,
		Day:         0,
		Period:      0,
		SubjectID:   &subjectIDs[0],
		TeacherID:   &teacherID,
	}
	require.NoError(t, env.repos.Timetable.CreateSlot(ctx, slot))

	moved, err := env.service.MoveSlot(ctx, timetable.PublicID, &models.MoveSlotRequest{
		From: models.SlotRef{ClassID: classID, Day: 0, Period: 0},
		To:   models.SlotRef{ClassID: classID, Day: 1, Period: 1},
	})
	require.NoError(t, err)

	require.Len(t, moved, 1)
	assert.Equal(t, 1, moved[0].Day)
	assert.Equal(t, 1, moved[0].Period)
	assert.True(t, moved[0].Pinned)

	empty, err := env.repos.Timetable.GetSlot(ctx, timetable.ID, models.SlotRef{ClassID: classID, Day: 0, Period: 0})
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestMoveSlot_RejectsTeacherConflict(t *testing.T) {
	env := setupTestEnv(t)
	classID, subjectIDs, teacherID := env.seedSchool(t)
	timetable := env.createTimetable(t)
	ctx := context.Background()

	other := &models.SchoolClass{Grade: 7, Label: "7B"}
	require.NoError(t, env.repos.SchoolClass.Create(ctx, other))

	// Teacher already in the other class at Monday period 1
	require.NoError(t, env.repos.Timetable.CreateSlot(ctx, &models.TimetableSlot{
		TimetableID: timetable.ID,
		ClassID:     other.ID,
		Day:         0,
		Period:      0,
		SubjectID:   &subjectIDs[0],
		TeacherID:   &teacherID,
	}))
	require.NoError(t, env.repos.Timetable.CreateSlot(ctx, &models.TimetableSlot{
		TimetableID: timetable.ID,
		ClassID:     classID,
		Day:         0,
		Period:      1,
		SubjectID:   &subjectIDs[0],
		TeacherID:   &teacherID,
	}))

	_, err := env.service.MoveSlot(ctx, timetable.PublicID, &models.MoveSlotRequest{
		From: models.SlotRef{ClassID: classID, Day: 0, Period: 1},
		To:   models.SlotRef{ClassID: classID, Day: 0, Period: 0},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already")
}

func TestGenerate_ReservesRequiredRoomsWithoutDoubleBooking(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	settings, err := env.repos.Settings.Get(ctx)
	require.NoError(t, err)
	settings.DaysPerWeek = 5
	settings.PeriodsPerDay = 1
	settings.SaturdayPeriods = 0
	require.NoError(t, env.repos.Settings.Update(ctx, settings))

	physics := &models.Subject{
		Name: "Physics", Code: "PHY", WeeklyPeriods: 5,
		RoomKind: models.RoomScience, Active: true,
	}
	require.NoError(t, env.repos.Subject.Create(ctx, physics))

	lab := &models.Classroom{Name: "Lab 1", Kind: models.RoomScience, Capacity: 30}
	require.NoError(t, env.repos.Classroom.Create(ctx, lab))

	for _, name := range []string{"Marie Curie", "Lise Meitner"} {
		require.NoError(t, env.repos.Teacher.Create(ctx, &models.Teacher{
			Name: name, Active: true, SubjectIDs: []int{physics.ID},
		}))
	}

	for _, label := range []string{"7A", "7B"} {
		require.NoError(t, env.repos.SchoolClass.Create(ctx, &models.SchoolClass{Grade: 7, Label: label}))
	}

	timetable := env.createTimetable(t)
	result, err := env.service.Generate(ctx, timetable.PublicID, false)
	require.NoError(t, err)

	// One lab over two classes: only half of the ten cells can be filled
	assert.True(t, result.Success)
	assert.Equal(t, 5, result.SlotsCreated)
	assert.Equal(t, 5, result.UnfilledDemands)

	slots, err := env.repos.Timetable.GetSlots(ctx, timetable.ID)
	require.NoError(t, err)
	require.Len(t, slots, 5)

	labAt := make(map[[2]int]bool)
	for _, slot := range slots {
		require.NotNil(t, slot.ClassroomID)
		assert.Equal(t, lab.ID, *slot.ClassroomID)

		at := [2]int{slot.Day, slot.Period}
		assert.False(t, labAt[at], "lab booked twice at day %d period %d", slot.Day, slot.Period)
		labAt[at] = true
	}
}

func TestMoveSlot_RejectsClassroomConflict(t *testing.T) {
	env := setupTestEnv(t)
	classID, subjectIDs, teacherID := env.seedSchool(t)
	timetable := env.createTimetable(t)
	ctx := context.Background()

	other := &models.SchoolClass{Grade: 7, Label: "7B"}
	require.NoError(t, env.repos.SchoolClass.Create(ctx, other))

	second := &models.Teacher{Name: "Grace Hopper", Active: true, SubjectIDs: subjectIDs}
	require.NoError(t, env.repos.Teacher.Create(ctx, second))

	lab := &models.Classroom{Name: "Lab 1", Kind: models.RoomScience, Capacity: 30}
	require.NoError(t, env.repos.Classroom.Create(ctx, lab))

	// The other class already holds the lab at Monday period 1
	require.NoError(t, env.repos.Timetable.CreateSlot(ctx, &models.TimetableSlot{
		TimetableID: timetable.ID,
		ClassID:     other.ID,
		Day:         0,
		Period:      0,
		SubjectID:   &subjectIDs[0],
		TeacherID:   &second.ID,
		ClassroomID: &lab.ID,
	}))
	require.NoError(t, env.repos.Timetable.CreateSlot(ctx, &models.TimetableSlot{
		TimetableID: timetable.ID,
		ClassID:     classID,
		Day:         0,
		Period:      1,
		SubjectID:   &subjectIDs[0],
		TeacherID:   &teacherID,
		ClassroomID: &lab.ID,
	}))

	_, err := env.service.MoveSlot(ctx, timetable.PublicID, &models.MoveSlotRequest{
		From: models.SlotRef{ClassID: classID, Day: 0, Period: 1},
		To:   models.SlotRef{ClassID: classID, Day: 0, Period: 0},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "occupied")
}

func TestMoveSlot_SwapsOccupiedCells(t *testing.T) {
	env := setupTestEnv(t)
	classID, subjectIDs, teacherID := env.seedSchool(t)
	timetable := env.createTimetable(t)
	ctx := context.Background()

	second := &models.Teacher{Name: "Grace Hopper", Active: true, SubjectIDs: subjectIDs}
	require.NoError(t, env.repos.Teacher.Create(ctx, second))

	require.NoError(t, env.repos.Timetable.CreateSlot(ctx, &models.TimetableSlot{
		TimetableID: timetable.ID,
		ClassID:     classID,
		Day:         0,
		Period:      0,
		SubjectID:   &subjectIDs[0],
		TeacherID:   &teacherID,
	}))
	require.NoError(t, env.repos.Timetable.CreateSlot(ctx, &models.TimetableSlot{
		TimetableID: timetable.ID,
		ClassID:     classID,
		Day:         0,
		Period:      1,
		SubjectID:   &subjectIDs[1],
		TeacherID:   &second.ID,
	}))

	moved, err := env.service.MoveSlot(ctx, timetable.PublicID, &models.MoveSlotRequest{
		From: models.SlotRef{ClassID: classID, Day: 0, Period: 0},
		To:   models.SlotRef{ClassID: classID, Day: 0, Period: 1},
	})
	require.NoError(t, err)
	require.Len(t, moved, 2)

	first, err := env.repos.Timetable.GetSlot(ctx, timetable.ID, models.SlotRef{ClassID: classID, Day: 0, Period: 0})
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, subjectIDs[1], *first.SubjectID)
	assert.True(t, first.Pinned)

	secondCell, err := env.repos.Timetable.GetSlot(ctx, timetable.ID, models.SlotRef{ClassID: classID, Day: 0, Period: 1})
	require.NoError(t, err)
	require.NotNil(t, secondCell)
	assert.Equal(t, subjectIDs[0], *secondCell.SubjectID)
}

func TestMoveSlot_RejectsCellOutsideGrid(t *testing.T) {
	env := setupTestEnv(t)
	classID, subjectIDs, teacherID := env.seedSchool(t)
	timetable := env.createTimetable(t)
	ctx := context.Background()

	require.NoError(t, env.repos.Timetable.CreateSlot(ctx, &models.TimetableSlot{
		TimetableID: timetable.ID,
		ClassID:     classID,
		Day:         0,
		Period:      0,
		SubjectID:   &subjectIDs[0],
		TeacherID:   &teacherID,
	}))

	_, err := env.service.MoveSlot(ctx, timetable.PublicID, &models.MoveSlotRequest{
		From: models.SlotRef{ClassID: classID, Day: 0, Period: 0},
		To:   models.SlotRef{ClassID: classID, Day: 5, Period: 0},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the school week")
}

func TestUpdateSlot_CreatesAndClearsCells(t *testing.T) {
	env := setupTestEnv(t)
	classID, subjectIDs, teacherID := env.seedSchool(t)
	timetable := env.createTimetable(t)
	ctx := context.Background()

	ref := models.SlotRef{ClassID: classID, Day: 1, Period: 0}

	slot, err := env.service.UpdateSlot(ctx, timetable.PublicID, &models.UpdateSlotRequest{
		Ref: ref,
		Assignment: models.SlotAssignment{
			SubjectID: &subjectIDs[0],
			TeacherID: &teacherID,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.True(t, slot.Pinned)
	assert.Equal(t, "Mathematics", slot.SubjectName)

	// An empty assignment clears the cell
	cleared, err := env.service.UpdateSlot(ctx, timetable.PublicID, &models.UpdateSlotRequest{Ref: ref})
	require.NoError(t, err)
	assert.Nil(t, cleared)

	empty, err := env.repos.Timetable.GetSlot(ctx, timetable.ID, ref)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestUpdateSlot_RejectsUnknownTeacher(t *testing.T) {
	env := setupTestEnv(t)
	classID, subjectIDs, _ := env.seedSchool(t)
	timetable := env.createTimetable(t)

	missing := 999
	_, err := env.service.UpdateSlot(context.Background(), timetable.PublicID, &models.UpdateSlotRequest{
		Ref: models.SlotRef{ClassID: classID, Day: 0, Period: 0},
		Assignment: models.SlotAssignment{
			SubjectID: &subjectIDs[0],
			TeacherID: &missing,
		},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "teacher not found")
}

func TestClearSlot_ErrorsOnEmptyCell(t *testing.T) {
	env := setupTestEnv(t)
	classID, _, _ := env.seedSchool(t)
	timetable := env.createTimetable(t)

	err := env.service.ClearSlot(context.Background(), timetable.PublicID, &models.ClearSlotRequest{
		Ref: models.SlotRef{ClassID: classID, Day: 0, Period: 0},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no slot at")
}

func TestUpdateTimetable_ActivatingArchivesPrevious(t *testing.T) {
	env := setupTestEnv(t)
	env.seedSchool(t)
	ctx := context.Background()

	first := env.createTimetable(t)
	_, err := env.service.UpdateTimetable(ctx, first.PublicID, &models.TimetableRequest{
		Name:   first.Name,
		Status: models.TimetableActive,
	})
	require.NoError(t, err)

	second := env.createTimetable(t)
	_, err = env.service.UpdateTimetable(ctx, second.PublicID, &models.TimetableRequest{
		Name:   second.Name,
		Status: models.TimetableActive,
	})
	require.NoError(t, err)

	firstStored, err := env.repos.Timetable.GetByPublicID(ctx, first.PublicID)
	require.NoError(t, err)
	assert.Equal(t, models.TimetableArchived, firstStored.Status)

	active, err := env.repos.Timetable.GetActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.PublicID, active.PublicID)
}

func TestGetGrid_LaysSlotsIntoMatrices(t *testing.T) {
	env := setupTestEnv(t)
	classID, subjectIDs, teacherID := env.seedSchool(t)
	timetable := env.createTimetable(t)
	ctx := context.Background()

	require.NoError(t, env.repos.Timetable.CreateSlot(ctx, &models.TimetableSlot{
		TimetableID: timetable.ID,
		ClassID:     classID,
		Day:         3,
		Period:      1,
		SubjectID:   &subjectIDs[1],
		TeacherID:   &teacherID,
	}))

	grid, err := env.service.GetGrid(ctx, timetable.PublicID)
	require.NoError(t, err)

	// Default schedule starts 08:30 with 50 minute periods and 10 minute breaks
	assert.Equal(t, []string{"08:30", "09:30"}, grid.PeriodTimes)

	require.Len(t, grid.Classes, 1)
	classGrid := grid.Classes[0]
	assert.Equal(t, "7A", classGrid.ClassLabel)
	require.Len(t, classGrid.Days, 5)
	require.Len(t, classGrid.Days[3], 2)

	assert.Nil(t, classGrid.Days[0][0])
	cell := classGrid.Days[3][1]
	require.NotNil(t, cell)
	assert.Equal(t, "English", cell.SubjectName)
	assert.Equal(t, "Ada Lovelace", cell.TeacherName)
}
