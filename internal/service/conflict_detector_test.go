package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
)

func activeEntry(id, faculty, room, day, start, end string) models.ScheduleEntry {
	return models.ScheduleEntry{
		ID:          id,
		Subject:     "Mathematics",
		FacultyName: faculty,
		Classroom:   room,
		DayOfWeek:   day,
		StartTime:   start,
		EndTime:     end,
		Status:      models.ScheduleStatusActive,
	}
}

func TestDetectConflictsFacultyOverlap(t *testing.T) {
	entries := []models.ScheduleEntry{
		activeEntry("e1", "Dr. Sharma", "Room 101", "Monday", "09:00", "10:00"),
	}

	candidate := models.EntryData{
		Faculty: "dr. sharma", Classroom: "Room 204",
		Day: "monday", StartTime: "09:30", EndTime: "10:30",
	}

	conflicts := DetectConflicts(candidate, entries)
	require.Len(t, conflicts, 1)
	require.Equal(t, models.ConflictFaculty, conflicts[0].Kind)
	require.Equal(t, "e1", conflicts[0].EntryID)
	require.Contains(t, conflicts[0].Message, "Dr. Sharma")
	require.Contains(t, conflicts[0].Message, "already booked")
}

func TestDetectConflictsRoomAndFacultyBothFire(t *testing.T) {
	entries := []models.ScheduleEntry{
		activeEntry("e1", "Dr. Sharma", "Room 101", "Monday", "09:00", "10:00"),
	}

	candidate := models.EntryData{
		Faculty: "Dr. Sharma", Classroom: "Room 101",
		Day: "Monday", StartTime: "09:00", EndTime: "11:00",
	}

	conflicts := DetectConflicts(candidate, entries)
	require.Len(t, conflicts, 2)
	kinds := map[models.ConflictKind]bool{}
	for _, conflict := range conflicts {
		kinds[conflict.Kind] = true
	}
	require.True(t, kinds[models.ConflictFaculty])
	require.True(t, kinds[models.ConflictRoom])
}

func TestDetectConflictsHalfOpenIntervals(t *testing.T) {
	entries := []models.ScheduleEntry{
		activeEntry("e1", "Dr. Sharma", "Room 101", "Monday", "09:00", "10:00"),
	}

	backToBack := models.EntryData{
		Faculty: "Dr. Sharma", Classroom: "Room 101",
		Day: "Monday", StartTime: "10:00", EndTime: "11:00",
	}
	require.Empty(t, DetectConflicts(backToBack, entries), "an entry starting when another ends does not collide")

	before := models.EntryData{
		Faculty: "Dr. Sharma", Classroom: "Room 101",
		Day: "Monday", StartTime: "08:00", EndTime: "09:00",
	}
	require.Empty(t, DetectConflicts(before, entries))
}

func TestDetectConflictsSkipsSelfCancelledAndOtherDays(t *testing.T) {
	entries := []models.ScheduleEntry{
		activeEntry("e1", "Dr. Sharma", "Room 101", "Monday", "09:00", "10:00"),
		activeEntry("e2", "Dr. Sharma", "Room 101", "Tuesday", "09:00", "10:00"),
	}
	cancelled := activeEntry("e3", "Dr. Sharma", "Room 101", "Monday", "09:00", "10:00")
	cancelled.Status = models.ScheduleStatusCancelled
	entries = append(entries, cancelled)

	candidate := models.EntryData{
		ID:      "e1",
		Faculty: "Dr. Sharma", Classroom: "Room 101",
		Day: "Monday", StartTime: "09:00", EndTime: "10:00",
	}

	// e1 is the candidate itself, e2 sits on another day, e3 is cancelled
	require.Empty(t, DetectConflicts(candidate, entries))
}

func TestDetectConflictsIgnoresUnparseableCandidate(t *testing.T) {
	entries := []models.ScheduleEntry{
		activeEntry("e1", "Dr. Sharma", "Room 101", "Monday", "09:00", "10:00"),
	}

	candidate := models.EntryData{Faculty: "Dr. Sharma", Day: "Monday", StartTime: "morning", EndTime: "noon"}
	require.Empty(t, DetectConflicts(candidate, entries))
}

func TestDetectModificationConflictsInheritsOriginalFields(t *testing.T) {
	entries := []models.ScheduleEntry{
		activeEntry("e1", "Dr. Sharma", "Room 101", "Monday", "09:00", "10:00"),
		activeEntry("e2", "Prof. Verma", "Room 204", "Monday", "14:00", "15:00"),
	}

	// moving e2 into e1's slot; newData omits faculty and room, which stay
	// what originalData says
	mods := []models.Modification{{
		ID:   "mod-1",
		Type: models.ModificationMove,
		OriginalData: &models.EntryData{
			ID: "e2", Faculty: "Prof. Verma", Classroom: "Room 101",
			Day: "Monday", StartTime: "14:00", EndTime: "15:00",
		},
		NewData: &models.EntryData{StartTime: "09:30", EndTime: "10:30"},
	}}

	conflicts := DetectModificationConflicts(mods, entries)
	require.Len(t, conflicts, 1)
	require.Equal(t, models.ConflictRoom, conflicts[0].Kind)
	require.Equal(t, "e1", conflicts[0].EntryID)
}

func TestDetectModificationConflictsCancelNeverConflicts(t *testing.T) {
	entries := []models.ScheduleEntry{
		activeEntry("e1", "Dr. Sharma", "Room 101", "Monday", "09:00", "10:00"),
	}

	mods := []models.Modification{{
		ID:           "mod-1",
		Type:         models.ModificationCancel,
		OriginalData: &models.EntryData{ID: "e1", Day: "Monday", StartTime: "09:00", EndTime: "10:00"},
	}}

	require.Empty(t, DetectModificationConflicts(mods, entries))
}
