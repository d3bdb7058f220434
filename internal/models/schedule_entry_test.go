package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		value   string
		minutes int
		ok      bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{" 10:00 ", 600, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"9:30", 0, false},
		{"09.30", 0, false},
		{"ab:cd", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		minutes, ok := ParseClock(tc.value)
		require.Equal(t, tc.ok, ok, "value %q", tc.value)
		if tc.ok {
			require.Equal(t, tc.minutes, minutes, "value %q", tc.value)
		}
	}
}

func TestValidTimeRange(t *testing.T) {
	require.True(t, ValidTimeRange("09:00", "10:30"))
	require.False(t, ValidTimeRange("10:30", "09:00"))
	require.False(t, ValidTimeRange("10:00", "10:00"))
	require.False(t, ValidTimeRange("9am", "10:00"))
}

func TestEntryDataApplyToCopiesOnlyStatedFields(t *testing.T) {
	entry := ScheduleEntry{
		ID:          "entry-1",
		Subject:     "Mathematics",
		FacultyName: "Dr. Sharma",
		Classroom:   "Room 101",
		DayOfWeek:   "Monday",
		StartTime:   "09:00",
		EndTime:     "10:00",
		Status:      ScheduleStatusActive,
	}

	data := EntryData{Classroom: "Room 204", StartTime: "11:00", EndTime: "12:00"}
	data.ApplyTo(&entry)

	require.Equal(t, "Room 204", entry.Classroom)
	require.Equal(t, "11:00", entry.StartTime)
	require.Equal(t, "12:00", entry.EndTime)
	require.Equal(t, "Mathematics", entry.Subject)
	require.Equal(t, "Dr. Sharma", entry.FacultyName)
	require.Equal(t, "Monday", entry.DayOfWeek)
}

func TestEntryDataApplyToNormalisesStatus(t *testing.T) {
	entry := ScheduleEntry{Status: ScheduleStatusActive}
	EntryData{Status: "Cancelled"}.ApplyTo(&entry)
	require.Equal(t, ScheduleStatusCancelled, entry.Status)
}

func TestEntryDataMatches(t *testing.T) {
	entry := ScheduleEntry{
		ID:          "entry-1",
		Subject:     "Physics",
		FacultyName: "Prof. Verma",
		Classroom:   "Lab 2",
		DayOfWeek:   "Tuesday",
		StartTime:   "14:00",
		EndTime:     "15:00",
		Status:      ScheduleStatusActive,
	}

	require.True(t, EntryData{}.Matches(entry), "absent fields must not mismatch")
	require.True(t, EntryData{Faculty: "prof. verma", Day: "TUESDAY"}.Matches(entry))
	require.False(t, EntryData{StartTime: "09:00"}.Matches(entry))
	require.False(t, EntryData{Classroom: "Lab 3"}.Matches(entry))
}

func TestModificationTargetID(t *testing.T) {
	move := Modification{
		Type:         ModificationMove,
		OriginalData: &EntryData{ID: "entry-7"},
		NewData:      &EntryData{Day: "Friday"},
	}
	require.Equal(t, "entry-7", move.TargetID())

	add := Modification{
		Type:    ModificationAdd,
		NewData: &EntryData{ID: "entry-new"},
	}
	require.Equal(t, "entry-new", add.TargetID())

	require.Empty(t, Modification{Type: ModificationAdd}.TargetID())
}

func TestModificationTypeValid(t *testing.T) {
	for _, valid := range []ModificationType{ModificationMove, ModificationCancel, ModificationAdd, ModificationUpdate} {
		require.True(t, valid.Valid())
	}
	require.False(t, ModificationType("delete").Valid())
	require.False(t, ModificationType("").Valid())
}
