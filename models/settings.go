package models

// SchoolSettings holds the school-wide schedule shape. A single row exists.
type SchoolSettings struct {
	ID              int    `json:"id" db:"id"`
	DaysPerWeek     int    `json:"days_per_week" db:"days_per_week"`         // 5 or 6
	PeriodsPerDay   int    `json:"periods_per_day" db:"periods_per_day"`     // 1..8
	SaturdayPeriods int    `json:"saturday_periods" db:"saturday_periods"`   // used when days_per_week is 6
	DayStartTime    string `json:"day_start_time" db:"day_start_time"`       // "08:30" format
	PeriodMinutes   int    `json:"period_minutes" db:"period_minutes"`       // length of one period
	BreakMinutes    int    `json:"break_minutes" db:"break_minutes"`         // gap between periods

	AuditFields
}

// PeriodsOn returns the number of periods scheduled on the given day (0=Monday)
func (s *SchoolSettings) PeriodsOn(day int) int {
	if day < 0 || day >= s.DaysPerWeek {
		return 0
	}
	if day == 5 {
		return s.SaturdayPeriods
	}
	return s.PeriodsPerDay
}

// TotalCells returns the number of grid cells in one class's weekly schedule
func (s *SchoolSettings) TotalCells() int {
	total := 0
	for day := 0; day < s.DaysPerWeek; day++ {
		total += s.PeriodsOn(day)
	}
	return total
}

// PeriodStart returns the HH:MM start time of a period index
func (s *SchoolSettings) PeriodStart(period int) string {
	if !IsValidClockTime(s.DayStartTime) {
		return ""
	}
	start := ClockTimeToMinutes(s.DayStartTime) + period*(s.PeriodMinutes+s.BreakMinutes)
	return MinutesToClockTime(start)
}

// SettingsRequest represents the payload for updating school settings
type SettingsRequest struct {
	DaysPerWeek     int    `json:"days_per_week" validate:"min=5,max=6"`
	PeriodsPerDay   int    `json:"periods_per_day" validate:"min=1,max=8"`
	SaturdayPeriods int    `json:"saturday_periods" validate:"min=0,max=8"`
	DayStartTime    string `json:"day_start_time" validate:"required"`
	PeriodMinutes   int    `json:"period_minutes" validate:"min=20,max=120"`
	BreakMinutes    int    `json:"break_minutes" validate:"min=0,max=60"`
}

// Validate applies semantic checks on the settings payload
func (r *SettingsRequest) Validate() ValidationErrors {
	errors := ValidateStruct(r)

	if !IsValidClockTime(r.DayStartTime) {
		errors = append(errors, ValidationError{
			Field:   "day_start_time",
			Message: "day_start_time must be in HH:MM format (e.g., 08:30)",
		})
	}

	if r.SaturdayPeriods > r.PeriodsPerDay {
		errors = append(errors, ValidationError{
			Field:   "saturday_periods",
			Message: "saturday_periods cannot exceed periods_per_day",
		})
	}

	if r.DaysPerWeek == 6 && r.SaturdayPeriods == 0 {
		errors = append(errors, ValidationError{
			Field:   "saturday_periods",
			Message: "saturday_periods must be set when the week has 6 days",
		})
	}

	return errors
}
