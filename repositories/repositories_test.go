package repositories

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/schoolplan/timetable-server/database"
	"github.com/schoolplan/timetable-server/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	// Create a temporary database for testing
	dbPath := "test_" + time.Now().Format("20060102150405.000000000") + ".db"

	// Clean up function
	t.Cleanup(func() {
		database.CloseDB()
		os.Remove(dbPath)
	})

	// Initialize test database using the actual migration system
	if err := database.InitializeDatabase(dbPath); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	return database.GetDB()
}

func TestTeacherRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	subjectRepo := NewSubjectRepository(db)
	subject := &models.Subject{Name: "Mathematics", Code: "MATH", WeeklyPeriods: 4, Active: true}
	if err := subjectRepo.Create(ctx, subject); err != nil {
		t.Fatalf("Failed to create subject: %v", err)
	}

	repo := NewTeacherRepository(db)

	// Test Create with qualifications
	teacher := &models.Teacher{
		Name:       "Ada Lovelace",
		Email:      "ada@example.org",
		Active:     true,
		SubjectIDs: []int{subject.ID},
	}
	if err := repo.Create(ctx, teacher); err != nil {
		t.Fatalf("Failed to create teacher: %v", err)
	}
	if teacher.ID == 0 {
		t.Error("Expected teacher ID to be set after creation")
	}

	// Test GetByID loads qualifications
	retrieved, err := repo.GetByID(ctx, teacher.ID)
	if err != nil {
		t.Fatalf("Failed to get teacher by ID: %v", err)
	}
	if retrieved.Name != teacher.Name {
		t.Errorf("Expected name %s, got %s", teacher.Name, retrieved.Name)
	}
	if len(retrieved.SubjectIDs) != 1 || retrieved.SubjectIDs[0] != subject.ID {
		t.Errorf("Expected subject IDs [%d], got %v", subject.ID, retrieved.SubjectIDs)
	}

	// Test Update replaces qualifications
	retrieved.SubjectIDs = nil
	retrieved.Active = false
	if err := repo.Update(ctx, retrieved); err != nil {
		t.Fatalf("Failed to update teacher: %v", err)
	}

	updated, err := repo.GetByID(ctx, teacher.ID)
	if err != nil {
		t.Fatalf("Failed to get updated teacher: %v", err)
	}
	if len(updated.SubjectIDs) != 0 {
		t.Errorf("Expected no subject IDs, got %v", updated.SubjectIDs)
	}

	// Test GetActive excludes the deactivated teacher
	active, err := repo.GetActive(ctx)
	if err != nil {
		t.Fatalf("Failed to get active teachers: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("Expected 0 active teachers, got %d", len(active))
	}

	// Test Delete
	if err := repo.Delete(ctx, teacher.ID); err != nil {
		t.Fatalf("Failed to delete teacher: %v", err)
	}
	if _, err := repo.GetByID(ctx, teacher.ID); err == nil {
		t.Error("Expected error getting deleted teacher")
	}
}

func TestSettingsRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo := NewSettingsRepository(db)

	// The migration seeds the singleton row
	settings, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Failed to get settings: %v", err)
	}
	if settings.DaysPerWeek != 5 {
		t.Errorf("Expected default 5 days per week, got %d", settings.DaysPerWeek)
	}

	settings.DaysPerWeek = 6
	settings.SaturdayPeriods = 4
	if err := repo.Update(ctx, settings); err != nil {
		t.Fatalf("Failed to update settings: %v", err)
	}

	updated, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Failed to get updated settings: %v", err)
	}
	if updated.DaysPerWeek != 6 || updated.SaturdayPeriods != 4 {
		t.Errorf("Settings update not persisted: %+v", updated)
	}
}

func TestTimetableRepositorySlots(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	classRepo := NewSchoolClassRepository(db)
	class := &models.SchoolClass{Grade: 8, Label: "8B"}
	if err := classRepo.Create(ctx, class); err != nil {
		t.Fatalf("Failed to create class: %v", err)
	}

	subjectRepo := NewSubjectRepository(db)
	subject := &models.Subject{Name: "History", Code: "HIST", WeeklyPeriods: 2, Active: true}
	if err := subjectRepo.Create(ctx, subject); err != nil {
		t.Fatalf("Failed to create subject: %v", err)
	}

	teacherRepo := NewTeacherRepository(db)
	teacher := &models.Teacher{Name: "Grace Hopper", Active: true, SubjectIDs: []int{subject.ID}}
	if err := teacherRepo.Create(ctx, teacher); err != nil {
		t.Fatalf("Failed to create teacher: %v", err)
	}

	repo := NewTimetableRepository(db)
	timetable := &models.Timetable{PublicID: uuid.New().String(), Name: "Test", Status: models.TimetableDraft}
	if err := repo.Create(ctx, timetable); err != nil {
		t.Fatalf("Failed to create timetable: %v", err)
	}

	slot := &models.TimetableSlot{
		TimetableID: timetable.ID,
		ClassID:     class.ID,
		Day:         1,
		Period:      2,
		SubjectID:   &subject.ID,
		TeacherID:   &teacher.ID,
	}
	if err := repo.CreateSlot(ctx, slot); err != nil {
		t.Fatalf("Failed to create slot: %v", err)
	}

	// GetSlot joins display names
	stored, err := repo.GetSlot(ctx, timetable.ID, models.SlotRef{ClassID: class.ID, Day: 1, Period: 2})
	if err != nil {
		t.Fatalf("Failed to get slot: %v", err)
	}
	if stored == nil {
		t.Fatal("Expected slot, got nil")
	}
	if stored.SubjectName != "History" || stored.TeacherName != "Grace Hopper" {
		t.Errorf("Expected joined names, got %q / %q", stored.SubjectName, stored.TeacherName)
	}

	// Empty cells return nil without error
	empty, err := repo.GetSlot(ctx, timetable.ID, models.SlotRef{ClassID: class.ID, Day: 0, Period: 0})
	if err != nil {
		t.Fatalf("Unexpected error for empty cell: %v", err)
	}
	if empty != nil {
		t.Error("Expected nil for empty cell")
	}

	// The same cell cannot hold two rows
	dup := &models.TimetableSlot{
		TimetableID: timetable.ID,
		ClassID:     class.ID,
		Day:         1,
		Period:      2,
		SubjectID:   &subject.ID,
		TeacherID:   &teacher.ID,
	}
	if err := repo.CreateSlot(ctx, dup); err == nil {
		t.Error("Expected unique constraint error for duplicate cell")
	}

	// Reference checks guard deletions
	referenced, err := repo.TeacherReferenced(ctx, teacher.ID)
	if err != nil {
		t.Fatalf("Failed to check teacher references: %v", err)
	}
	if !referenced {
		t.Error("Expected teacher to be referenced")
	}

	// DeleteUnpinnedSlots spares pinned rows
	pinned := &models.TimetableSlot{
		TimetableID: timetable.ID,
		ClassID:     class.ID,
		Day:         2,
		Period:      0,
		SubjectID:   &subject.ID,
		TeacherID:   &teacher.ID,
		Pinned:      true,
	}
	if err := repo.CreateSlot(ctx, pinned); err != nil {
		t.Fatalf("Failed to create pinned slot: %v", err)
	}
	if err := repo.DeleteUnpinnedSlots(ctx, timetable.ID); err != nil {
		t.Fatalf("Failed to delete unpinned slots: %v", err)
	}

	slots, err := repo.GetSlots(ctx, timetable.ID)
	if err != nil {
		t.Fatalf("Failed to get slots: %v", err)
	}
	if len(slots) != 1 || !slots[0].Pinned {
		t.Errorf("Expected only the pinned slot to survive, got %d slots", len(slots))
	}

	// Deleting the timetable cascades to its slots
	if err := repo.Delete(ctx, timetable.ID); err != nil {
		t.Fatalf("Failed to delete timetable: %v", err)
	}
	slots, err = repo.GetSlots(ctx, timetable.ID)
	if err != nil {
		t.Fatalf("Failed to get slots after delete: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("Expected no slots after cascade delete, got %d", len(slots))
	}
}

func TestTimetableRepositorySwapSlots(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	classRepo := NewSchoolClassRepository(db)
	class := &models.SchoolClass{Grade: 9, Label: "9A"}
	if err := classRepo.Create(ctx, class); err != nil {
		t.Fatalf("Failed to create class: %v", err)
	}

	subjectRepo := NewSubjectRepository(db)
	math := &models.Subject{Name: "Mathematics", Code: "MATH", WeeklyPeriods: 4, Active: true}
	if err := subjectRepo.Create(ctx, math); err != nil {
		t.Fatalf("Failed to create subject: %v", err)
	}
	art := &models.Subject{Name: "Art", Code: "ART", WeeklyPeriods: 2, Active: true}
	if err := subjectRepo.Create(ctx, art); err != nil {
		t.Fatalf("Failed to create subject: %v", err)
	}

	repo := NewTimetableRepository(db)
	timetable := &models.Timetable{PublicID: uuid.New().String(), Name: "Test", Status: models.TimetableDraft}
	if err := repo.Create(ctx, timetable); err != nil {
		t.Fatalf("Failed to create timetable: %v", err)
	}

	source := &models.TimetableSlot{
		TimetableID: timetable.ID, ClassID: class.ID, Day: 0, Period: 0, SubjectID: &math.ID,
	}
	if err := repo.CreateSlot(ctx, source); err != nil {
		t.Fatalf("Failed to create source slot: %v", err)
	}
	target := &models.TimetableSlot{
		TimetableID: timetable.ID, ClassID: class.ID, Day: 0, Period: 1, SubjectID: &art.ID,
	}
	if err := repo.CreateSlot(ctx, target); err != nil {
		t.Fatalf("Failed to create target slot: %v", err)
	}

	// Trade cells. A plain update pair would collide with the unique
	// cell constraint; SwapSlots must not.
	source.Day, source.Period, source.Pinned = 0, 1, true
	target.Day, target.Period, target.Pinned = 0, 0, true
	if err := repo.SwapSlots(ctx, source, target); err != nil {
		t.Fatalf("Failed to swap slots: %v", err)
	}

	first, err := repo.GetSlot(ctx, timetable.ID, models.SlotRef{ClassID: class.ID, Day: 0, Period: 0})
	if err != nil {
		t.Fatalf("Failed to get slot: %v", err)
	}
	if first == nil || first.SubjectID == nil || *first.SubjectID != art.ID {
		t.Errorf("Expected Art at period 0 after swap, got %+v", first)
	}

	second, err := repo.GetSlot(ctx, timetable.ID, models.SlotRef{ClassID: class.ID, Day: 0, Period: 1})
	if err != nil {
		t.Fatalf("Failed to get slot: %v", err)
	}
	if second == nil || second.SubjectID == nil || *second.SubjectID != math.ID {
		t.Errorf("Expected Mathematics at period 1 after swap, got %+v", second)
	}

	slots, err := repo.GetSlots(ctx, timetable.ID)
	if err != nil {
		t.Fatalf("Failed to get slots: %v", err)
	}
	if len(slots) != 2 {
		t.Errorf("Expected 2 slots after swap, got %d", len(slots))
	}
}

func TestRefreshTokenRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	userRepo := NewUserRepository(db)
	user := &models.User{Email: "staff@example.org", Name: "Staff", Role: models.RoleStaff}
	if err := userRepo.Create(ctx, user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	repo := NewRefreshTokenRepository(db)
	token := &models.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := repo.Create(ctx, token); err != nil {
		t.Fatalf("Failed to create refresh token: %v", err)
	}

	stored, err := repo.Get(ctx, token.ID)
	if err != nil {
		t.Fatalf("Failed to get refresh token: %v", err)
	}
	if stored.UserID != user.ID {
		t.Errorf("Expected user ID %d, got %d", user.ID, stored.UserID)
	}

	if err := repo.Delete(ctx, token.ID); err != nil {
		t.Fatalf("Failed to delete refresh token: %v", err)
	}
	if _, err := repo.Get(ctx, token.ID); err == nil {
		t.Error("Expected error getting deleted token")
	}
}
