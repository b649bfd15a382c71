package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/userctx"
)

// SettingsRepository interface defines school settings database operations.
// Settings are a single row seeded by the initial migration.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.SchoolSettings, error)
	Update(ctx context.Context, settings *models.SchoolSettings) error
}

// settingsRepository implements SettingsRepository interface
type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get retrieves the school settings row
func (r *settingsRepository) Get(ctx context.Context) (*models.SchoolSettings, error) {
	query := `
		SELECT id, days_per_week, periods_per_day, saturday_periods,
		       day_start_time, period_minutes, break_minutes,
		       created_by, modified_by, modified_at
		FROM school_settings
		WHERE id = 1
	`

	var settings models.SchoolSettings
	var modifiedBy sql.NullString
	var modifiedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query).Scan(
		&settings.ID,
		&settings.DaysPerWeek,
		&settings.PeriodsPerDay,
		&settings.SaturdayPeriods,
		&settings.DayStartTime,
		&settings.PeriodMinutes,
		&settings.BreakMinutes,
		&settings.CreatedBy,
		&modifiedBy,
		&modifiedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("school settings not initialized")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get school settings: %w", err)
	}

	if modifiedBy.Valid {
		settings.ModifiedBy = modifiedBy.String
	}
	if modifiedAt.Valid {
		settings.ModifiedAt = &modifiedAt.Time
	}

	return &settings, nil
}

// Update updates the school settings row
func (r *settingsRepository) Update(ctx context.Context, settings *models.SchoolSettings) error {
	userEmail := userctx.GetUserEmail(ctx)
	now := time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE school_settings
		SET days_per_week = ?, periods_per_day = ?, saturday_periods = ?,
		    day_start_time = ?, period_minutes = ?, break_minutes = ?,
		    modified_by = ?, modified_at = ?
		WHERE id = 1
	`,
		settings.DaysPerWeek,
		settings.PeriodsPerDay,
		settings.SaturdayPeriods,
		settings.DayStartTime,
		settings.PeriodMinutes,
		settings.BreakMinutes,
		userEmail,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to update school settings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("school settings not initialized")
	}

	settings.ModifiedBy = userEmail
	settings.ModifiedAt = &now
	return nil
}
