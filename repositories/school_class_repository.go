package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/userctx"
)

// SchoolClassRepository interface defines class group database operations
type SchoolClassRepository interface {
	GetAll(ctx context.Context) ([]models.SchoolClass, error)
	GetByID(ctx context.Context, id int) (*models.SchoolClass, error)
	Create(ctx context.Context, class *models.SchoolClass) error
	Update(ctx context.Context, class *models.SchoolClass) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

// schoolClassRepository implements SchoolClassRepository interface
type schoolClassRepository struct {
	db *sql.DB
}

// NewSchoolClassRepository creates a new school class repository
func NewSchoolClassRepository(db *sql.DB) SchoolClassRepository {
	return &schoolClassRepository{db: db}
}

// GetAll retrieves all class groups ordered by grade then label
func (r *schoolClassRepository) GetAll(ctx context.Context) ([]models.SchoolClass, error) {
	query := `
		SELECT id, grade, label, homeroom_teacher_id, created_by, modified_by, modified_at
		FROM school_classes
		ORDER BY grade ASC, label ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query school classes: %w", err)
	}
	defer rows.Close()

	var classes []models.SchoolClass
	for rows.Next() {
		var class models.SchoolClass
		var homeroom sql.NullInt64
		var modifiedBy sql.NullString
		var modifiedAt sql.NullTime

		err := rows.Scan(
			&class.ID,
			&class.Grade,
			&class.Label,
			&homeroom,
			&class.CreatedBy,
			&modifiedBy,
			&modifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan school class: %w", err)
		}

		if homeroom.Valid {
			id := int(homeroom.Int64)
			class.HomeroomTeacherID = &id
		}
		if modifiedBy.Valid {
			class.ModifiedBy = modifiedBy.String
		}
		if modifiedAt.Valid {
			class.ModifiedAt = &modifiedAt.Time
		}

		classes = append(classes, class)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school classes: %w", err)
	}

	return classes, nil
}

// GetByID retrieves a class group by ID
func (r *schoolClassRepository) GetByID(ctx context.Context, id int) (*models.SchoolClass, error) {
	query := `
		SELECT id, grade, label, homeroom_teacher_id, created_by, modified_by, modified_at
		FROM school_classes
		WHERE id = ?
	`

	var class models.SchoolClass
	var homeroom sql.NullInt64
	var modifiedBy sql.NullString
	var modifiedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&class.ID,
		&class.Grade,
		&class.Label,
		&homeroom,
		&class.CreatedBy,
		&modifiedBy,
		&modifiedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("class with ID %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}

	if homeroom.Valid {
		hid := int(homeroom.Int64)
		class.HomeroomTeacherID = &hid
	}
	if modifiedBy.Valid {
		class.ModifiedBy = modifiedBy.String
	}
	if modifiedAt.Valid {
		class.ModifiedAt = &modifiedAt.Time
	}

	return &class, nil
}

// Create creates a new class group
func (r *schoolClassRepository) Create(ctx context.Context, class *models.SchoolClass) error {
	userEmail := userctx.GetUserEmail(ctx)

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO school_classes (grade, label, homeroom_teacher_id, created_by)
		VALUES (?, ?, ?, ?)
	`,
		class.Grade,
		class.Label,
		nullableInt(class.HomeroomTeacherID),
		userEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to create class: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	class.ID = int(id)
	class.CreatedBy = userEmail
	return nil
}

// Update updates an existing class group
func (r *schoolClassRepository) Update(ctx context.Context, class *models.SchoolClass) error {
	userEmail := userctx.GetUserEmail(ctx)
	now := time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE school_classes
		SET grade = ?, label = ?, homeroom_teacher_id = ?, modified_by = ?, modified_at = ?
		WHERE id = ?
	`,
		class.Grade,
		class.Label,
		nullableInt(class.HomeroomTeacherID),
		userEmail,
		now,
		class.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update class: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("class with ID %d not found", class.ID)
	}

	class.ModifiedBy = userEmail
	class.ModifiedAt = &now
	return nil
}

// Delete deletes a class group by ID
func (r *schoolClassRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM school_classes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete class: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("class with ID %d not found", id)
	}

	return nil
}

// Count returns the total number of class groups
func (r *schoolClassRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM school_classes`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count classes: %w", err)
	}
	return count, nil
}

// nullableInt converts *int to a driver-friendly value
func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
