package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/userctx"
)

// TimetableRepository interface defines timetable and slot database operations
type TimetableRepository interface {
	GetAll(ctx context.Context) ([]models.Timetable, error)
	GetByPublicID(ctx context.Context, publicID string) (*models.Timetable, error)
	GetActive(ctx context.Context) (*models.Timetable, error)
	Create(ctx context.Context, timetable *models.Timetable) error
	Update(ctx context.Context, timetable *models.Timetable) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
	SetGeneratedAt(ctx context.Context, id int, generatedAt time.Time) error

	GetSlots(ctx context.Context, timetableID int) ([]models.TimetableSlot, error)
	GetSlot(ctx context.Context, timetableID int, ref models.SlotRef) (*models.TimetableSlot, error)
	CreateSlot(ctx context.Context, slot *models.TimetableSlot) error
	UpdateSlot(ctx context.Context, slot *models.TimetableSlot) error
	DeleteSlot(ctx context.Context, id int) error
	DeleteUnpinnedSlots(ctx context.Context, timetableID int) error
	InsertSlots(ctx context.Context, slots []models.TimetableSlot) error
	SwapSlots(ctx context.Context, source, target *models.TimetableSlot) error

	TeacherReferenced(ctx context.Context, teacherID int) (bool, error)
	SubjectReferenced(ctx context.Context, subjectID int) (bool, error)
	ClassroomReferenced(ctx context.Context, classroomID int) (bool, error)
	ClassReferenced(ctx context.Context, classID int) (bool, error)
}

// timetableRepository implements TimetableRepository interface
type timetableRepository struct {
	db *sql.DB
}

// NewTimetableRepository creates a new timetable repository
func NewTimetableRepository(db *sql.DB) TimetableRepository {
	return &timetableRepository{db: db}
}

const timetableColumns = `id, public_id, name, status, created_at, generated_at,
	       created_by, modified_by, modified_at`

// GetAll retrieves all timetables, newest first
func (r *timetableRepository) GetAll(ctx context.Context) ([]models.Timetable, error) {
	query := `
		SELECT ` + timetableColumns + `
		FROM timetables
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query timetables: %w", err)
	}
	defer rows.Close()

	var timetables []models.Timetable
	for rows.Next() {
		timetable, err := scanTimetable(rows.Scan)
		if err != nil {
			return nil, err
		}
		timetables = append(timetables, *timetable)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timetables: %w", err)
	}

	return timetables, nil
}

func scanTimetable(scan func(...interface{}) error) (*models.Timetable, error) {
	var timetable models.Timetable
	var generatedAt sql.NullTime
	var modifiedBy sql.NullString
	var modifiedAt sql.NullTime

	err := scan(
		&timetable.ID,
		&timetable.PublicID,
		&timetable.Name,
		&timetable.Status,
		&timetable.CreatedAt,
		&generatedAt,
		&timetable.CreatedBy,
		&modifiedBy,
		&modifiedAt,
	)
	if err != nil {
		return nil, err
	}

	if generatedAt.Valid {
		timetable.GeneratedAt = &generatedAt.Time
	}
	if modifiedBy.Valid {
		timetable.ModifiedBy = modifiedBy.String
	}
	if modifiedAt.Valid {
		timetable.ModifiedAt = &modifiedAt.Time
	}

	return &timetable, nil
}

// GetByPublicID retrieves a timetable by its public uuid
func (r *timetableRepository) GetByPublicID(ctx context.Context, publicID string) (*models.Timetable, error) {
	query := `
		SELECT ` + timetableColumns + `
		FROM timetables
		WHERE public_id = ?
	`

	row := r.db.QueryRowContext(ctx, query, publicID)
	timetable, err := scanTimetable(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("timetable %s not found", publicID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get timetable: %w", err)
	}

	return timetable, nil
}

// GetActive retrieves the active timetable, or nil when none is active
func (r *timetableRepository) GetActive(ctx context.Context) (*models.Timetable, error) {
	query := `
		SELECT ` + timetableColumns + `
		FROM timetables
		WHERE status = 'active'
		ORDER BY created_at DESC
		LIMIT 1
	`

	row := r.db.QueryRowContext(ctx, query)
	timetable, err := scanTimetable(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active timetable: %w", err)
	}

	return timetable, nil
}

// Create creates a new timetable
func (r *timetableRepository) Create(ctx context.Context, timetable *models.Timetable) error {
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = time.Now()
	}

	userEmail := userctx.GetUserEmail(ctx)

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO timetables (public_id, name, status, created_at, created_by)
		VALUES (?, ?, ?, ?, ?)
	`,
		timetable.PublicID,
		timetable.Name,
		timetable.Status,
		timetable.CreatedAt,
		userEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to create timetable: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	timetable.ID = int(id)
	timetable.CreatedBy = userEmail
	return nil
}

// Update updates a timetable's name and status
func (r *timetableRepository) Update(ctx context.Context, timetable *models.Timetable) error {
	userEmail := userctx.GetUserEmail(ctx)
	now := time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE timetables
		SET name = ?, status = ?, modified_by = ?, modified_at = ?
		WHERE id = ?
	`,
		timetable.Name,
		timetable.Status,
		userEmail,
		now,
		timetable.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update timetable: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("timetable with ID %d not found", timetable.ID)
	}

	timetable.ModifiedBy = userEmail
	timetable.ModifiedAt = &now
	return nil
}

// Delete deletes a timetable and (via cascade) its slots
func (r *timetableRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM timetables WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete timetable: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("timetable with ID %d not found", id)
	}

	return nil
}

// Count returns the total number of timetables
func (r *timetableRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM timetables`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count timetables: %w", err)
	}
	return count, nil
}

// SetGeneratedAt records when generation last ran for a timetable
func (r *timetableRepository) SetGeneratedAt(ctx context.Context, id int, generatedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE timetables SET generated_at = ? WHERE id = ?`, generatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to set generated_at: %w", err)
	}
	return nil
}

const slotColumns = `
	s.id, s.timetable_id, s.class_id, s.day, s.period,
	s.subject_id, s.teacher_id, s.classroom_id, s.pinned,
	sub.name AS subject_name, t.name AS teacher_name, room.name AS classroom_name`

const slotJoins = `
	LEFT JOIN subjects sub ON s.subject_id = sub.id
	LEFT JOIN teachers t ON s.teacher_id = t.id
	LEFT JOIN classrooms room ON s.classroom_id = room.id`

// GetSlots retrieves all slots of a timetable with display names joined
func (r *timetableRepository) GetSlots(ctx context.Context, timetableID int) ([]models.TimetableSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM timetable_slots s` + slotJoins + `
		WHERE s.timetable_id = ?
		ORDER BY s.class_id ASC, s.day ASC, s.period ASC
	`

	rows, err := r.db.QueryContext(ctx, query, timetableID)
	if err != nil {
		return nil, fmt.Errorf("failed to query timetable slots: %w", err)
	}
	defer rows.Close()

	var slots []models.TimetableSlot
	for rows.Next() {
		slot, err := scanSlot(rows.Scan)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *slot)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timetable slots: %w", err)
	}

	return slots, nil
}

func scanSlot(scan func(...interface{}) error) (*models.TimetableSlot, error) {
	var slot models.TimetableSlot
	var subjectID, teacherID, classroomID sql.NullInt64
	var subjectName, teacherName, classroomName sql.NullString

	err := scan(
		&slot.ID,
		&slot.TimetableID,
		&slot.ClassID,
		&slot.Day,
		&slot.Period,
		&subjectID,
		&teacherID,
		&classroomID,
		&slot.Pinned,
		&subjectName,
		&teacherName,
		&classroomName,
	)
	if err != nil {
		return nil, err
	}

	if subjectID.Valid {
		id := int(subjectID.Int64)
		slot.SubjectID = &id
	}
	if teacherID.Valid {
		id := int(teacherID.Int64)
		slot.TeacherID = &id
	}
	if classroomID.Valid {
		id := int(classroomID.Int64)
		slot.ClassroomID = &id
	}
	if subjectName.Valid {
		slot.SubjectName = subjectName.String
	}
	if teacherName.Valid {
		slot.TeacherName = teacherName.String
	}
	if classroomName.Valid {
		slot.ClassroomName = classroomName.String
	}

	return &slot, nil
}

// GetSlot retrieves the slot at one grid cell, or nil when the cell is empty
func (r *timetableRepository) GetSlot(ctx context.Context, timetableID int, ref models.SlotRef) (*models.TimetableSlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM timetable_slots s` + slotJoins + `
		WHERE s.timetable_id = ? AND s.class_id = ? AND s.day = ? AND s.period = ?
	`

	row := r.db.QueryRowContext(ctx, query, timetableID, ref.ClassID, ref.Day, ref.Period)
	slot, err := scanSlot(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get timetable slot: %w", err)
	}

	return slot, nil
}

// CreateSlot inserts a single slot row
func (r *timetableRepository) CreateSlot(ctx context.Context, slot *models.TimetableSlot) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO timetable_slots
			(timetable_id, class_id, day, period, subject_id, teacher_id, classroom_id, pinned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		slot.TimetableID,
		slot.ClassID,
		slot.Day,
		slot.Period,
		nullableInt(slot.SubjectID),
		nullableInt(slot.TeacherID),
		nullableInt(slot.ClassroomID),
		slot.Pinned,
	)
	if err != nil {
		return fmt.Errorf("failed to create timetable slot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	slot.ID = int(id)
	return nil
}

// UpdateSlot updates a slot's position and assignment
func (r *timetableRepository) UpdateSlot(ctx context.Context, slot *models.TimetableSlot) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE timetable_slots
		SET class_id = ?, day = ?, period = ?,
		    subject_id = ?, teacher_id = ?, classroom_id = ?, pinned = ?
		WHERE id = ?
	`,
		slot.ClassID,
		slot.Day,
		slot.Period,
		nullableInt(slot.SubjectID),
		nullableInt(slot.TeacherID),
		nullableInt(slot.ClassroomID),
		slot.Pinned,
		slot.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update timetable slot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("timetable slot with ID %d not found", slot.ID)
	}

	return nil
}

// DeleteSlot deletes a single slot row
func (r *timetableRepository) DeleteSlot(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM timetable_slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete timetable slot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("timetable slot with ID %d not found", id)
	}

	return nil
}

// DeleteUnpinnedSlots removes all non-pinned slots of a timetable
func (r *timetableRepository) DeleteUnpinnedSlots(ctx context.Context, timetableID int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM timetable_slots WHERE timetable_id = ? AND pinned = 0`, timetableID)
	if err != nil {
		return fmt.Errorf("failed to delete unpinned slots: %w", err)
	}
	return nil
}

// InsertSlots bulk-inserts slot rows in a single transaction
func (r *timetableRepository) InsertSlots(ctx context.Context, slots []models.TimetableSlot) error {
	if len(slots) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO timetable_slots
			(timetable_id, class_id, day, period, subject_id, teacher_id, classroom_id, pinned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare slot insert: %w", err)
	}
	defer stmt.Close()

	for i := range slots {
		slot := &slots[i]
		result, err := stmt.ExecContext(ctx,
			slot.TimetableID,
			slot.ClassID,
			slot.Day,
			slot.Period,
			nullableInt(slot.SubjectID),
			nullableInt(slot.TeacherID),
			nullableInt(slot.ClassroomID),
			slot.Pinned,
		)
		if err != nil {
			return fmt.Errorf("failed to insert timetable slot: %w", err)
		}
		if id, err := result.LastInsertId(); err == nil {
			slot.ID = int(id)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit slot insert: %w", err)
	}

	return nil
}

// SwapSlots writes two slots that traded cells in a single transaction.
// The target row is deleted and re-inserted because a plain double update
// would trip the unique cell constraint mid-flight. Both slots carry their
// new positions when passed in; target gets a fresh ID on return.
func (r *timetableRepository) SwapSlots(ctx context.Context, source, target *models.TimetableSlot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM timetable_slots WHERE id = ?`, target.ID); err != nil {
		return fmt.Errorf("failed to delete timetable slot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE timetable_slots
		SET class_id = ?, day = ?, period = ?,
		    subject_id = ?, teacher_id = ?, classroom_id = ?, pinned = ?
		WHERE id = ?
	`,
		source.ClassID,
		source.Day,
		source.Period,
		nullableInt(source.SubjectID),
		nullableInt(source.TeacherID),
		nullableInt(source.ClassroomID),
		source.Pinned,
		source.ID,
	); err != nil {
		return fmt.Errorf("failed to update timetable slot: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO timetable_slots
			(timetable_id, class_id, day, period, subject_id, teacher_id, classroom_id, pinned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		target.TimetableID,
		target.ClassID,
		target.Day,
		target.Period,
		nullableInt(target.SubjectID),
		nullableInt(target.TeacherID),
		nullableInt(target.ClassroomID),
		target.Pinned,
	)
	if err != nil {
		return fmt.Errorf("failed to create timetable slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit slot swap: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		target.ID = int(id)
	}
	return nil
}

// TeacherReferenced reports whether any slot references the teacher
func (r *timetableRepository) TeacherReferenced(ctx context.Context, teacherID int) (bool, error) {
	return r.referenced(ctx, "teacher_id", teacherID)
}

// SubjectReferenced reports whether any slot references the subject
func (r *timetableRepository) SubjectReferenced(ctx context.Context, subjectID int) (bool, error) {
	return r.referenced(ctx, "subject_id", subjectID)
}

// ClassroomReferenced reports whether any slot references the classroom
func (r *timetableRepository) ClassroomReferenced(ctx context.Context, classroomID int) (bool, error) {
	return r.referenced(ctx, "classroom_id", classroomID)
}

// ClassReferenced reports whether any slot references the class group
func (r *timetableRepository) ClassReferenced(ctx context.Context, classID int) (bool, error) {
	return r.referenced(ctx, "class_id", classID)
}

func (r *timetableRepository) referenced(ctx context.Context, column string, id int) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM timetable_slots WHERE ` + column + ` = ?`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check slot references: %w", err)
	}
	return count > 0, nil
}
