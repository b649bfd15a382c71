package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/schoolplan/timetable-server/models"
	"github.com/schoolplan/timetable-server/repositories"
)

// SettingsService interface defines school settings business logic
type SettingsService interface {
	GetSettings(ctx context.Context) (*models.SchoolSettings, error)
	UpdateSettings(ctx context.Context, req *models.SettingsRequest) (*models.SchoolSettings, error)
}

// settingsService implements SettingsService interface
type settingsService struct {
	settingsRepo repositories.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repositories.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

// GetSettings retrieves the school settings
func (s *settingsService) GetSettings(ctx context.Context) (*models.SchoolSettings, error) {
	return s.settingsRepo.Get(ctx)
}

// UpdateSettings updates the school settings. Slots that fall outside a
// shrunken grid stay in the database and are dropped from display and
// flagged by the validator.
func (s *settingsService) UpdateSettings(ctx context.Context, req *models.SettingsRequest) (*models.SchoolSettings, error) {
	if errors := req.Validate(); errors.HasErrors() {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errors.GetMessages(), ", "))
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings.DaysPerWeek = req.DaysPerWeek
	settings.PeriodsPerDay = req.PeriodsPerDay
	settings.SaturdayPeriods = req.SaturdayPeriods
	settings.DayStartTime = req.DayStartTime
	settings.PeriodMinutes = req.PeriodMinutes
	settings.BreakMinutes = req.BreakMinutes

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}

	return settings, nil
}
