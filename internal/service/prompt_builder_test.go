package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
	"github.com/rajpratham1/EduScheduler-sub001/pkg/tabular"
)

func sampleSnapshot() ScheduleSnapshot {
	cancelled := models.ScheduleEntry{
		ID: "e2", Subject: "History", FacultyName: "Dr. Iyer", Classroom: "Room 105",
		DayOfWeek: "Tuesday", StartTime: "11:00", EndTime: "12:00",
		Status: models.ScheduleStatusCancelled,
	}
	return ScheduleSnapshot{
		Entries: []models.ScheduleEntry{
			{
				ID: "e1", Subject: "Mathematics", FacultyName: "Dr. Sharma", Classroom: "Room 101",
				DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00",
				Status: models.ScheduleStatusActive,
			},
			cancelled,
		},
		Faculty:      []models.Faculty{{Name: "Dr. Sharma"}, {Name: "Dr. Iyer"}},
		Classrooms:   []models.Classroom{{Name: "Room 101"}, {Name: "Room 105"}},
		StudentCount: 240,
	}
}

func TestBuildSchedulePromptRendersSnapshot(t *testing.T) {
	prompt := buildSchedulePrompt(sampleSnapshot(), "Move maths to Friday", nil)

	require.Contains(t, prompt, "2 schedule entries, 2 faculty members, 2 classrooms, 240 students")
	require.Contains(t, prompt, "- Mathematics with Dr. Sharma in Room 101 on Monday at 09:00-10:00 (id: e1)")
	require.NotContains(t, prompt, "History", "cancelled entries stay out of the active list")
	require.Contains(t, prompt, "Faculty: Dr. Sharma, Dr. Iyer")
	require.Contains(t, prompt, "Classrooms: Room 101, Room 105")
	require.Contains(t, prompt, "Move maths to Friday")
}

func TestBuildSchedulePromptStatesOutputContract(t *testing.T) {
	prompt := buildSchedulePrompt(sampleSnapshot(), "anything", nil)

	for _, key := range []string{`"response"`, `"modifications"`, `"conflicts"`, `"warnings"`, `"originalData"`, `"newData"`, `"startTime"`, `"endTime"`} {
		require.Contains(t, prompt, key)
	}
	require.Contains(t, prompt, `"move", "cancel", "add", "update"`)
	require.Contains(t, prompt, "Never invent entry ids")
}

func TestBuildSchedulePromptEmptySchedule(t *testing.T) {
	prompt := buildSchedulePrompt(ScheduleSnapshot{}, "add a maths class", nil)

	require.Contains(t, prompt, "The schedule has no active entries.")
	require.Contains(t, prompt, "Faculty: none registered")
	require.Contains(t, prompt, "Classrooms: none registered")
}

func TestBuildSchedulePromptFileOnlyInstruction(t *testing.T) {
	records := []tabular.Record{{"subject": "Biology", "day": "Wednesday"}}
	prompt := buildSchedulePrompt(sampleSnapshot(), "   ", records)

	require.Contains(t, prompt, "(no written instruction; incorporate the uploaded schedule data)")
	require.Contains(t, prompt, "Uploaded schedule data (1 rows)")
	require.Contains(t, prompt, "day | subject", "headers are sorted")
	require.Contains(t, prompt, "Wednesday | Biology")
}

func TestBuildSchedulePromptTruncatesLongUploads(t *testing.T) {
	records := make([]tabular.Record, 0, maxPromptRecords+25)
	for i := 0; i < maxPromptRecords+25; i++ {
		records = append(records, tabular.Record{"subject": fmt.Sprintf("Course %d", i)})
	}

	prompt := buildSchedulePrompt(sampleSnapshot(), "import these", records)
	require.Contains(t, prompt, fmt.Sprintf("Uploaded schedule data (%d rows)", maxPromptRecords+25))
	require.Contains(t, prompt, "(and 25 more rows)")
	require.Equal(t, 1, strings.Count(prompt, fmt.Sprintf("Course %d", maxPromptRecords-1)))
	require.NotContains(t, prompt, fmt.Sprintf("Course %d\n", maxPromptRecords))
}
