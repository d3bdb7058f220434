package service

import (
	"fmt"
	"strings"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
)

// DetectConflicts checks the candidate slot against every active entry on
// the same day. Intervals are half-open, so an entry ending 10:00 never
// collides with one starting 10:00. The entry sharing the candidate's id is
// skipped: a moved entry does not conflict with its own old slot. Both a
// faculty and a room conflict may fire against the same entry.
func DetectConflicts(candidate models.EntryData, entries []models.ScheduleEntry) []models.Conflict {
	candStart, okStart := models.ParseClock(candidate.StartTime)
	candEnd, okEnd := models.ParseClock(candidate.EndTime)
	if !okStart || !okEnd || candStart >= candEnd {
		return nil
	}

	var conflicts []models.Conflict
	for _, entry := range entries {
		if entry.ID == candidate.ID {
			continue
		}
		if !entry.IsActive() {
			continue
		}
		if !strings.EqualFold(entry.DayOfWeek, candidate.Day) {
			continue
		}

		entryStart, ok := models.ParseClock(entry.StartTime)
		if !ok {
			continue
		}
		entryEnd, ok := models.ParseClock(entry.EndTime)
		if !ok {
			continue
		}
		if candStart >= entryEnd || candEnd <= entryStart {
			continue
		}

		if candidate.Faculty != "" && strings.EqualFold(entry.FacultyName, candidate.Faculty) {
			conflicts = append(conflicts, models.Conflict{
				Kind:    models.ConflictFaculty,
				Message: conflictMessage("faculty", entry.FacultyName, entry),
				EntryID: entry.ID,
			})
		}
		if candidate.Classroom != "" && strings.EqualFold(entry.Classroom, candidate.Classroom) {
			conflicts = append(conflicts, models.Conflict{
				Kind:    models.ConflictRoom,
				Message: conflictMessage("classroom", entry.Classroom, entry),
				EntryID: entry.ID,
			})
		}
	}

	return conflicts
}

// DetectModificationConflicts runs the detector over the resulting slot of
// every proposed modification. Cancels free a slot and cannot conflict.
func DetectModificationConflicts(mods []models.Modification, entries []models.ScheduleEntry) []models.Conflict {
	var conflicts []models.Conflict
	for _, mod := range mods {
		candidate, ok := resultingSlot(mod)
		if !ok {
			continue
		}
		conflicts = append(conflicts, DetectConflicts(candidate, entries)...)
	}
	return conflicts
}

// resultingSlot materialises the slot a modification would occupy, filling
// fields the newData omits from originalData.
func resultingSlot(mod models.Modification) (models.EntryData, bool) {
	switch mod.Type {
	case models.ModificationCancel:
		return models.EntryData{}, false
	case models.ModificationAdd:
		if mod.NewData == nil {
			return models.EntryData{}, false
		}
		return *mod.NewData, true
	case models.ModificationMove, models.ModificationUpdate:
		if mod.NewData == nil {
			return models.EntryData{}, false
		}
		candidate := *mod.NewData
		if mod.OriginalData != nil {
			if candidate.ID == "" {
				candidate.ID = mod.OriginalData.ID
			}
			if candidate.Faculty == "" {
				candidate.Faculty = mod.OriginalData.Faculty
			}
			if candidate.Classroom == "" {
				candidate.Classroom = mod.OriginalData.Classroom
			}
			if candidate.Day == "" {
				candidate.Day = mod.OriginalData.Day
			}
			if candidate.StartTime == "" {
				candidate.StartTime = mod.OriginalData.StartTime
			}
			if candidate.EndTime == "" {
				candidate.EndTime = mod.OriginalData.EndTime
			}
		}
		return candidate, true
	default:
		return models.EntryData{}, false
	}
}

func conflictMessage(dimension, name string, entry models.ScheduleEntry) string {
	return fmt.Sprintf("%s %s is already booked for %s on %s %s-%s (entry %s)",
		dimension, name, entry.Subject, entry.DayOfWeek, entry.StartTime, entry.EndTime, entry.ID,
	)
}
