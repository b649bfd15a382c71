package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/userctx"
)

// TeacherRepository interface defines teacher database operations
type TeacherRepository interface {
	GetAll(ctx context.Context) ([]models.Teacher, error)
	GetByID(ctx context.Context, id int) (*models.Teacher, error)
	GetActive(ctx context.Context) ([]models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

// teacherRepository implements TeacherRepository interface
type teacherRepository struct {
	db *sql.DB
}

// NewTeacherRepository creates a new teacher repository
func NewTeacherRepository(db *sql.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

const teacherColumns = `id, name, email, active, max_weekly_periods, date_added,
	       created_by, modified_by, modified_at`

// GetAll retrieves all teachers with their subject qualifications
func (r *teacherRepository) GetAll(ctx context.Context) ([]models.Teacher, error) {
	query := `
		SELECT ` + teacherColumns + `
		FROM teachers
		ORDER BY name ASC
	`
	return r.queryTeachers(ctx, query)
}

// GetActive retrieves only active teachers
func (r *teacherRepository) GetActive(ctx context.Context) ([]models.Teacher, error) {
	query := `
		SELECT ` + teacherColumns + `
		FROM teachers
		WHERE active = 1
		ORDER BY id ASC
	`
	return r.queryTeachers(ctx, query)
}

func (r *teacherRepository) queryTeachers(ctx context.Context, query string, args ...interface{}) ([]models.Teacher, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teachers: %w", err)
	}
	defer rows.Close()

	var teachers []models.Teacher
	for rows.Next() {
		teacher, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, *teacher)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teachers: %w", err)
	}

	if err := r.attachSubjects(ctx, teachers); err != nil {
		return nil, err
	}

	return teachers, nil
}

func scanTeacher(rows *sql.Rows) (*models.Teacher, error) {
	var teacher models.Teacher
	var modifiedBy sql.NullString
	var modifiedAt sql.NullTime

	err := rows.Scan(
		&teacher.ID,
		&teacher.Name,
		&teacher.Email,
		&teacher.Active,
		&teacher.MaxWeeklyPeriods,
		&teacher.DateAdded,
		&teacher.CreatedBy,
		&modifiedBy,
		&modifiedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan teacher: %w", err)
	}

	if modifiedBy.Valid {
		teacher.ModifiedBy = modifiedBy.String
	}
	if modifiedAt.Valid {
		teacher.ModifiedAt = &modifiedAt.Time
	}

	return &teacher, nil
}

// attachSubjects populates SubjectIDs for the given teachers
func (r *teacherRepository) attachSubjects(ctx context.Context, teachers []models.Teacher) error {
	if len(teachers) == 0 {
		return nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT teacher_id, subject_id
		FROM teacher_subjects
		ORDER BY teacher_id ASC, subject_id ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to query teacher subjects: %w", err)
	}
	defer rows.Close()

	byTeacher := make(map[int][]int)
	for rows.Next() {
		var teacherID, subjectID int
		if err := rows.Scan(&teacherID, &subjectID); err != nil {
			return fmt.Errorf("failed to scan teacher subject: %w", err)
		}
		byTeacher[teacherID] = append(byTeacher[teacherID], subjectID)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating teacher subjects: %w", err)
	}

	for i := range teachers {
		teachers[i].SubjectIDs = byTeacher[teachers[i].ID]
	}

	return nil
}

// GetByID retrieves a teacher by ID
func (r *teacherRepository) GetByID(ctx context.Context, id int) (*models.Teacher, error) {
	query := `
		SELECT ` + teacherColumns + `
		FROM teachers
		WHERE id = ?
	`

	var teacher models.Teacher
	var modifiedBy sql.NullString
	var modifiedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&teacher.ID,
		&teacher.Name,
		&teacher.Email,
		&teacher.Active,
		&teacher.MaxWeeklyPeriods,
		&teacher.DateAdded,
		&teacher.CreatedBy,
		&modifiedBy,
		&modifiedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("teacher with ID %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}

	if modifiedBy.Valid {
		teacher.ModifiedBy = modifiedBy.String
	}
	if modifiedAt.Valid {
		teacher.ModifiedAt = &modifiedAt.Time
	}

	subjectRows, err := r.db.QueryContext(ctx,
		`SELECT subject_id FROM teacher_subjects WHERE teacher_id = ? ORDER BY subject_id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query teacher subjects: %w", err)
	}
	defer subjectRows.Close()

	for subjectRows.Next() {
		var subjectID int
		if err := subjectRows.Scan(&subjectID); err != nil {
			return nil, fmt.Errorf("failed to scan teacher subject: %w", err)
		}
		teacher.SubjectIDs = append(teacher.SubjectIDs, subjectID)
	}
	if err = subjectRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teacher subjects: %w", err)
	}

	return &teacher, nil
}

// Create creates a new teacher together with their qualifications
func (r *teacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.DateAdded.IsZero() {
		teacher.DateAdded = time.Now()
	}

	userEmail := userctx.GetUserEmail(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO teachers (name, email, active, max_weekly_periods, date_added, created_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		teacher.Name,
		teacher.Email,
		teacher.Active,
		teacher.MaxWeeklyPeriods,
		teacher.DateAdded,
		userEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to create teacher: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}
	teacher.ID = int(id)

	if err := insertTeacherSubjects(ctx, tx, teacher.ID, teacher.SubjectIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit teacher: %w", err)
	}

	teacher.CreatedBy = userEmail
	return nil
}

// Update updates an existing teacher and replaces their qualifications
func (r *teacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	userEmail := userctx.GetUserEmail(ctx)
	now := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE teachers
		SET name = ?, email = ?, active = ?, max_weekly_periods = ?,
		    modified_by = ?, modified_at = ?
		WHERE id = ?
	`,
		teacher.Name,
		teacher.Email,
		teacher.Active,
		teacher.MaxWeeklyPeriods,
		userEmail,
		now,
		teacher.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update teacher: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("teacher with ID %d not found", teacher.ID)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM teacher_subjects WHERE teacher_id = ?`, teacher.ID); err != nil {
		return fmt.Errorf("failed to clear teacher subjects: %w", err)
	}

	if err := insertTeacherSubjects(ctx, tx, teacher.ID, teacher.SubjectIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit teacher update: %w", err)
	}

	teacher.ModifiedBy = userEmail
	teacher.ModifiedAt = &now
	return nil
}

func insertTeacherSubjects(ctx context.Context, tx *sql.Tx, teacherID int, subjectIDs []int) error {
	for _, subjectID := range subjectIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO teacher_subjects (teacher_id, subject_id) VALUES (?, ?)`,
			teacherID, subjectID); err != nil {
			return fmt.Errorf("failed to insert teacher subject: %w", err)
		}
	}
	return nil
}

// Delete deletes a teacher by ID
func (r *teacherRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete teacher: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("teacher with ID %d not found", id)
	}

	return nil
}

// Count returns the total number of teachers
func (r *teacherRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teachers`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teachers: %w", err)
	}
	return count, nil
}
