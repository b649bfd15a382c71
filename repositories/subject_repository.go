package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/userctx"
)

// SubjectRepository interface defines subject database operations
type SubjectRepository interface {
	GetAll(ctx context.Context) ([]models.Subject, error)
	GetByID(ctx context.Context, id int) (*models.Subject, error)
	GetActive(ctx context.Context) ([]models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

// subjectRepository implements SubjectRepository interface
type subjectRepository struct {
	db *sql.DB
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(db *sql.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

const subjectColumns = `id, name, code, weekly_periods, room_kind, active,
	       created_by, modified_by, modified_at`

// GetAll retrieves all subjects
func (r *subjectRepository) GetAll(ctx context.Context) ([]models.Subject, error) {
	query := `
		SELECT ` + subjectColumns + `
		FROM subjects
		ORDER BY name ASC
	`
	return r.querySubjects(ctx, query)
}

// GetActive retrieves only active subjects
func (r *subjectRepository) GetActive(ctx context.Context) ([]models.Subject, error) {
	query := `
		SELECT ` + subjectColumns + `
		FROM subjects
		WHERE active = 1
		ORDER BY id ASC
	`
	return r.querySubjects(ctx, query)
}

func (r *subjectRepository) querySubjects(ctx context.Context, query string, args ...interface{}) ([]models.Subject, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subjects: %w", err)
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var subject models.Subject
		var modifiedBy sql.NullString
		var modifiedAt sql.NullTime

		err := rows.Scan(
			&subject.ID,
			&subject.Name,
			&subject.Code,
			&subject.WeeklyPeriods,
			&subject.RoomKind,
			&subject.Active,
			&subject.CreatedBy,
			&modifiedBy,
			&modifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}

		if modifiedBy.Valid {
			subject.ModifiedBy = modifiedBy.String
		}
		if modifiedAt.Valid {
			subject.ModifiedAt = &modifiedAt.Time
		}

		subjects = append(subjects, subject)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subjects: %w", err)
	}

	return subjects, nil
}

// GetByID retrieves a subject by ID
func (r *subjectRepository) GetByID(ctx context.Context, id int) (*models.Subject, error) {
	query := `
		SELECT ` + subjectColumns + `
		FROM subjects
		WHERE id = ?
	`

	var subject models.Subject
	var modifiedBy sql.NullString
	var modifiedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&subject.ID,
		&subject.Name,
		&subject.Code,
		&subject.WeeklyPeriods,
		&subject.RoomKind,
		&subject.Active,
		&subject.CreatedBy,
		&modifiedBy,
		&modifiedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subject with ID %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}

	if modifiedBy.Valid {
		subject.ModifiedBy = modifiedBy.String
	}
	if modifiedAt.Valid {
		subject.ModifiedAt = &modifiedAt.Time
	}

	return &subject, nil
}

// Create creates a new subject
func (r *subjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	userEmail := userctx.GetUserEmail(ctx)

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO subjects (name, code, weekly_periods, room_kind, active, created_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		subject.Name,
		subject.Code,
		subject.WeeklyPeriods,
		subject.RoomKind,
		subject.Active,
		userEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to create subject: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	subject.ID = int(id)
	subject.CreatedBy = userEmail
	return nil
}

// Update updates an existing subject
func (r *subjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	userEmail := userctx.GetUserEmail(ctx)
	now := time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE subjects
		SET name = ?, code = ?, weekly_periods = ?, room_kind = ?, active = ?,
		    modified_by = ?, modified_at = ?
		WHERE id = ?
	`,
		subject.Name,
		subject.Code,
		subject.WeeklyPeriods,
		subject.RoomKind,
		subject.Active,
		userEmail,
		now,
		subject.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subject: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("subject with ID %d not found", subject.ID)
	}

	subject.ModifiedBy = userEmail
	subject.ModifiedAt = &now
	return nil
}

// Delete deletes a subject by ID
func (r *subjectRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("subject with ID %d not found", id)
	}

	return nil
}

// Count returns the total number of subjects
func (r *subjectRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subjects`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subjects: %w", err)
	}
	return count, nil
}
