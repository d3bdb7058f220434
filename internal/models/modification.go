package models

import "strings"

// ModificationType enumerates the schedule change kinds the assistant may propose.
type ModificationType string

const (
	// ModificationMove relocates an existing entry to a new slot or room.
	ModificationMove ModificationType = "move"
	// ModificationCancel marks an existing entry cancelled without deleting it.
	ModificationCancel ModificationType = "cancel"
	// ModificationAdd creates a new entry.
	ModificationAdd ModificationType = "add"
	// ModificationUpdate edits fields of an existing entry in place.
	ModificationUpdate ModificationType = "update"
)

// Valid reports whether the type is one of the four supported kinds.
func (t ModificationType) Valid() bool {
	switch t {
	case ModificationMove, ModificationCancel, ModificationAdd, ModificationUpdate:
		return true
	default:
		return false
	}
}

// EntryData is the schedule-facing projection of an entry as exchanged with
// the assistant: originalData snapshots the state before a change, newData
// the state after. Empty fields mean "not stated", not "clear".
type EntryData struct {
	ID        string `json:"id,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Faculty   string `json:"faculty,omitempty"`
	Classroom string `json:"classroom,omitempty"`
	Day       string `json:"day,omitempty"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	Status    string `json:"status,omitempty"`
}

// ApplyTo copies the non-empty fields onto the entry.
func (d EntryData) ApplyTo(entry *ScheduleEntry) {
	if d.Subject != "" {
		entry.Subject = d.Subject
	}
	if d.Faculty != "" {
		entry.FacultyName = d.Faculty
	}
	if d.Classroom != "" {
		entry.Classroom = d.Classroom
	}
	if d.Day != "" {
		entry.DayOfWeek = d.Day
	}
	if d.StartTime != "" {
		entry.StartTime = d.StartTime
	}
	if d.EndTime != "" {
		entry.EndTime = d.EndTime
	}
	if d.Status != "" {
		entry.Status = ScheduleStatus(strings.ToLower(d.Status))
	}
}

// Matches reports whether every non-empty field still describes the entry.
// The assistant echoes originalData back from prose, so absent fields are not
// treated as a mismatch.
func (d EntryData) Matches(entry ScheduleEntry) bool {
	if d.Subject != "" && !strings.EqualFold(d.Subject, entry.Subject) {
		return false
	}
	if d.Faculty != "" && !strings.EqualFold(d.Faculty, entry.FacultyName) {
		return false
	}
	if d.Classroom != "" && !strings.EqualFold(d.Classroom, entry.Classroom) {
		return false
	}
	if d.Day != "" && !strings.EqualFold(d.Day, entry.DayOfWeek) {
		return false
	}
	if d.StartTime != "" && d.StartTime != entry.StartTime {
		return false
	}
	if d.EndTime != "" && d.EndTime != entry.EndTime {
		return false
	}
	if d.Status != "" && !strings.EqualFold(d.Status, string(entry.Status)) {
		return false
	}
	return true
}

// Modification is one validated schedule change proposed by the assistant.
// OriginalData is nil for add, NewData is nil for cancel.
type Modification struct {
	ID           string           `json:"id"`
	Type         ModificationType `json:"type"`
	Description  string           `json:"description"`
	OriginalData *EntryData       `json:"originalData"`
	NewData      *EntryData       `json:"newData"`
	Affected     []string         `json:"affected,omitempty"`
}

// TargetID returns the persisted entry the modification addresses.
func (m Modification) TargetID() string {
	if m.Type == ModificationAdd {
		if m.NewData != nil {
			return m.NewData.ID
		}
		return ""
	}
	if m.OriginalData != nil {
		return m.OriginalData.ID
	}
	return ""
}

// ModificationSet is the structured outcome of one assistant exchange.
type ModificationSet struct {
	Response      string         `json:"response"`
	Modifications []Modification `json:"modifications"`
	Conflicts     []string       `json:"conflicts"`
	Warnings      []string       `json:"warnings"`
}

// ConflictKind separates double-booked faculty from double-booked rooms.
type ConflictKind string

const (
	// ConflictFaculty means the same person teaches two overlapping slots.
	ConflictFaculty ConflictKind = "faculty_conflict"
	// ConflictRoom means the same room hosts two overlapping slots.
	ConflictRoom ConflictKind = "room_conflict"
)

// Conflict describes one collision between a proposed change and an existing
// active entry.
type Conflict struct {
	Kind    ConflictKind `json:"kind"`
	Message string       `json:"message"`
	EntryID string       `json:"entry_id"`
}
