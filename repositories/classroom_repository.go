package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/userctx"
)

// ClassroomRepository interface defines classroom database operations
type ClassroomRepository interface {
	GetAll(ctx context.Context) ([]models.Classroom, error)
	GetByID(ctx context.Context, id int) (*models.Classroom, error)
	GetByKind(ctx context.Context, kind string) ([]models.Classroom, error)
	Create(ctx context.Context, room *models.Classroom) error
	Update(ctx context.Context, room *models.Classroom) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

// classroomRepository implements ClassroomRepository interface
type classroomRepository struct {
	db *sql.DB
}

// NewClassroomRepository creates a new classroom repository
func NewClassroomRepository(db *sql.DB) ClassroomRepository {
	return &classroomRepository{db: db}
}

const classroomColumns = `id, name, kind, capacity, created_by, modified_by, modified_at`

// GetAll retrieves all classrooms
func (r *classroomRepository) GetAll(ctx context.Context) ([]models.Classroom, error) {
	query := `
		SELECT ` + classroomColumns + `
		FROM classrooms
		ORDER BY name ASC
	`
	return r.queryClassrooms(ctx, query)
}

// GetByKind retrieves classrooms of one kind
func (r *classroomRepository) GetByKind(ctx context.Context, kind string) ([]models.Classroom, error) {
	query := `
		SELECT ` + classroomColumns + `
		FROM classrooms
		WHERE kind = ?
		ORDER BY id ASC
	`
	return r.queryClassrooms(ctx, query, kind)
}

func (r *classroomRepository) queryClassrooms(ctx context.Context, query string, args ...interface{}) ([]models.Classroom, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query classrooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.Classroom
	for rows.Next() {
		var room models.Classroom
		var modifiedBy sql.NullString
		var modifiedAt sql.NullTime

		err := rows.Scan(
			&room.ID,
			&room.Name,
			&room.Kind,
			&room.Capacity,
			&room.CreatedBy,
			&modifiedBy,
			&modifiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan classroom: %w", err)
		}

		if modifiedBy.Valid {
			room.ModifiedBy = modifiedBy.String
		}
		if modifiedAt.Valid {
			room.ModifiedAt = &modifiedAt.Time
		}

		rooms = append(rooms, room)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classrooms: %w", err)
	}

	return rooms, nil
}

// GetByID retrieves a classroom by ID
func (r *classroomRepository) GetByID(ctx context.Context, id int) (*models.Classroom, error) {
	query := `
		SELECT ` + classroomColumns + `
		FROM classrooms
		WHERE id = ?
	`

	var room models.Classroom
	var modifiedBy sql.NullString
	var modifiedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&room.ID,
		&room.Name,
		&room.Kind,
		&room.Capacity,
		&room.CreatedBy,
		&modifiedBy,
		&modifiedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("classroom with ID %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get classroom: %w", err)
	}

	if modifiedBy.Valid {
		room.ModifiedBy = modifiedBy.String
	}
	if modifiedAt.Valid {
		room.ModifiedAt = &modifiedAt.Time
	}

	return &room, nil
}

// Create creates a new classroom
func (r *classroomRepository) Create(ctx context.Context, room *models.Classroom) error {
	userEmail := userctx.GetUserEmail(ctx)

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO classrooms (name, kind, capacity, created_by)
		VALUES (?, ?, ?, ?)
	`,
		room.Name,
		room.Kind,
		room.Capacity,
		userEmail,
	)
	if err != nil {
		return fmt.Errorf("failed to create classroom: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	room.ID = int(id)
	room.CreatedBy = userEmail
	return nil
}

// Update updates an existing classroom
func (r *classroomRepository) Update(ctx context.Context, room *models.Classroom) error {
	userEmail := userctx.GetUserEmail(ctx)
	now := time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE classrooms
		SET name = ?, kind = ?, capacity = ?, modified_by = ?, modified_at = ?
		WHERE id = ?
	`,
		room.Name,
		room.Kind,
		room.Capacity,
		userEmail,
		now,
		room.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update classroom: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("classroom with ID %d not found", room.ID)
	}

	room.ModifiedBy = userEmail
	room.ModifiedAt = &now
	return nil
}

// Delete deletes a classroom by ID
func (r *classroomRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM classrooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete classroom: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("classroom with ID %d not found", id)
	}

	return nil
}

// Count returns the total number of classrooms
func (r *classroomRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM classrooms`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count classrooms: %w", err)
	}
	return count, nil
}
