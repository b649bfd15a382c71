package models

import (
	"time"
)

// AuditFields contains common audit tracking fields
type AuditFields struct {
	CreatedBy  string     `json:"created_by,omitempty"`
	ModifiedBy string     `json:"modified_by,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}

// DayNames maps day numbers to readable names (0=Monday)
var DayNames = map[int]string{
	0: "Monday",
	1: "Tuesday",
	2: "Wednesday",
	3: "Thursday",
	4: "Friday",
	5: "Saturday",
}

// DayName returns the readable name for a day number
func DayName(day int) string {
	if name, ok := DayNames[day]; ok {
		return name
	}
	return "Unknown"
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// HasErrors returns true if there are validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// GetMessages returns all error messages as a slice of strings
func (ve ValidationErrors) GetMessages() []string {
	messages := make([]string, len(ve))
	for i, err := range ve {
		messages[i] = err.Message
	}
	return messages
}

// IsValidClockTime validates HH:MM format
func IsValidClockTime(timeStr string) bool {
	if len(timeStr) != 5 {
		return false
	}

	if timeStr[2] != ':' {
		return false
	}

	hours := timeStr[0:2]
	if !isNumeric(hours) {
		return false
	}
	h := parseNumber(hours)
	if h < 0 || h > 23 {
		return false
	}

	minutes := timeStr[3:5]
	if !isNumeric(minutes) {
		return false
	}
	m := parseNumber(minutes)
	if m < 0 || m > 59 {
		return false
	}

	return true
}

// ClockTimeToMinutes converts HH:MM to total minutes (assumes valid input)
func ClockTimeToMinutes(timeStr string) int {
	hours := parseNumber(timeStr[0:2])
	minutes := parseNumber(timeStr[3:5])
	return hours*60 + minutes
}

// MinutesToClockTime converts total minutes to HH:MM
func MinutesToClockTime(minutes int) string {
	h := (minutes / 60) % 24
	m := minutes % 60
	return string([]byte{
		byte('0' + h/10), byte('0' + h%10),
		':',
		byte('0' + m/10), byte('0' + m%10),
	})
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, char := range s {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}

// parseNumber converts a numeric string to int (assumes valid input)
func parseNumber(s string) int {
	result := 0
	for _, char := range s {
		result = result*10 + int(char-'0')
	}
	return result
}
