package models

import (
	"strings"
	"time"
)

// ScheduleStatus enumerates the lifecycle states of a timetable entry.
type ScheduleStatus string

const (
	// ScheduleStatusActive marks an entry that occupies its slot.
	ScheduleStatusActive ScheduleStatus = "active"
	// ScheduleStatusCancelled marks an entry that keeps its row but frees the slot.
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

// ScheduleEntry represents one recurring timetable slot. Times are wall-clock
// "HH:MM" strings and the interval is half-open, so an entry ending 10:00 does
// not collide with one starting 10:00.
type ScheduleEntry struct {
	ID           string         `gorm:"primaryKey;size:64" json:"id"`
	Subject      string         `gorm:"size:255;not null" json:"subject"`
	FacultyName  string         `gorm:"size:255;not null" json:"faculty"`
	Classroom    string         `gorm:"size:255;not null" json:"classroom"`
	DayOfWeek    string         `gorm:"size:16;not null" json:"day"`
	StartTime    string         `gorm:"size:8;not null" json:"startTime"`
	EndTime      string         `gorm:"size:8;not null" json:"endTime"`
	Status       ScheduleStatus `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	CreatedBy    string         `gorm:"size:128" json:"created_by"`
	LastModified time.Time      `json:"last_modified"`
	ModifiedBy   string         `gorm:"size:128" json:"modified_by"`
	CancelledAt  *time.Time     `json:"cancelled_at,omitempty"`
	CancelledBy  *string        `gorm:"size:128" json:"cancelled_by,omitempty"`
}

// IsActive reports whether the entry currently occupies its slot.
func (e ScheduleEntry) IsActive() bool {
	return e.Status == ScheduleStatusActive
}

// Data projects the schedule-relevant fields into the wire form exchanged
// with the assistant.
func (e ScheduleEntry) Data() EntryData {
	return EntryData{
		ID:        e.ID,
		Subject:   e.Subject,
		Faculty:   e.FacultyName,
		Classroom: e.Classroom,
		Day:       e.DayOfWeek,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Status:    string(e.Status),
	}
}

// ParseClock converts an "HH:MM" string into minutes since midnight.
func ParseClock(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if len(value) != 5 || value[2] != ':' {
		return 0, false
	}

	hours, ok := parseClockPair(value[0], value[1])
	if !ok || hours > 23 {
		return 0, false
	}
	minutes, ok := parseClockPair(value[3], value[4])
	if !ok || minutes > 59 {
		return 0, false
	}

	return hours*60 + minutes, true
}

func parseClockPair(tens, ones byte) (int, bool) {
	if tens < '0' || tens > '9' || ones < '0' || ones > '9' {
		return 0, false
	}
	return int(tens-'0')*10 + int(ones-'0'), true
}

// ValidTimeRange reports whether both clocks parse and start precedes end.
func ValidTimeRange(start, end string) bool {
	s, okStart := ParseClock(start)
	e, okEnd := ParseClock(end)
	return okStart && okEnd && s < e
}
