package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
	"github.com/rajpratham1/EduScheduler-sub001/pkg/tabular"
)

// maxPromptRecords caps how many uploaded rows are rendered into the prompt;
// the full file is still archived.
const maxPromptRecords = 200

func schedulerSystemPrompt() string {
	return "You are the scheduling assistant for an institution's timetable management system. " +
		"You translate operator instructions into precise schedule modifications. " +
		"You only ever respond with a single JSON object and never with prose outside of it."
}

// buildSchedulePrompt renders the snapshot, the operator instruction and any
// uploaded rows into the user message. The same snapshot must later feed
// conflict detection so both sides reason over identical state.
func buildSchedulePrompt(snapshot ScheduleSnapshot, instruction string, records []tabular.Record) string {
	builder := strings.Builder{}

	builder.WriteString(fmt.Sprintf(
		"Current institution data: %d schedule entries, %d faculty members, %d classrooms, %d students.\n\n",
		len(snapshot.Entries), len(snapshot.Faculty), len(snapshot.Classrooms), snapshot.StudentCount,
	))

	active := snapshot.ActiveEntries()
	if len(active) == 0 {
		builder.WriteString("The schedule has no active entries.\n")
	} else {
		builder.WriteString("Active schedule entries:\n")
		for _, entry := range active {
			builder.WriteString(formatEntryLine(entry))
			builder.WriteString("\n")
		}
	}

	builder.WriteString("\nFaculty: ")
	builder.WriteString(joinNamesOrNone(facultyNames(snapshot.Faculty)))
	builder.WriteString("\nClassrooms: ")
	builder.WriteString(joinNamesOrNone(classroomNames(snapshot.Classrooms)))
	builder.WriteString("\n")

	builder.WriteString("\nInstruction from the operator:\n")
	if strings.TrimSpace(instruction) == "" {
		builder.WriteString("(no written instruction; incorporate the uploaded schedule data)")
	} else {
		builder.WriteString(strings.TrimSpace(instruction))
	}
	builder.WriteString("\n")

	if len(records) > 0 {
		builder.WriteString(fmt.Sprintf("\nUploaded schedule data (%d rows):\n", len(records)))
		writeRecordTable(&builder, records)
		builder.WriteString("Reconcile the uploaded rows with the instruction; where they disagree, the instruction wins.\n")
	}

	builder.WriteString("\n")
	builder.WriteString(outputContract())

	return builder.String()
}

// formatEntryLine renders one entry the way the assistant must echo it back.
func formatEntryLine(entry models.ScheduleEntry) string {
	return fmt.Sprintf("- %s with %s in %s on %s at %s-%s (id: %s)",
		entry.Subject, entry.FacultyName, entry.Classroom,
		entry.DayOfWeek, entry.StartTime, entry.EndTime, entry.ID,
	)
}

func outputContract() string {
	return "Respond with a single JSON object and nothing else, using exactly these keys:\n" +
		"  \"response\": a short human-readable summary of what you did,\n" +
		"  \"modifications\": a list of schedule changes,\n" +
		"  \"conflicts\": a list of strings describing conflicts you could not avoid,\n" +
		"  \"warnings\": a list of strings for anything the operator should double-check.\n" +
		"\n" +
		"Every element of \"modifications\" must contain exactly these keys:\n" +
		"  \"id\": a unique identifier for the modification,\n" +
		"  \"type\": one of \"move\", \"cancel\", \"add\", \"update\",\n" +
		"  \"description\": a one-sentence summary of the change,\n" +
		"  \"originalData\": the entry as it exists today (null for \"add\"),\n" +
		"  \"newData\": the entry after the change (null for \"cancel\"),\n" +
		"  \"affected\": a list of affected group or faculty names (may be empty).\n" +
		"\n" +
		"Entry objects use the keys \"id\", \"subject\", \"faculty\", \"classroom\", \"day\", " +
		"\"startTime\", \"endTime\" and \"status\"; times are 24-hour \"HH:MM\" strings. " +
		"For \"move\", \"update\" and \"cancel\", copy the entry id from the schedule above into originalData.id. " +
		"Never invent entry ids that are not listed above.\n" +
		"\n" +
		"Before proposing any change, check it against every active entry above: a faculty member " +
		"cannot teach two overlapping slots on the same day, and a classroom cannot host two " +
		"overlapping slots on the same day. Report anything unavoidable in \"conflicts\"."
}

func facultyNames(faculty []models.Faculty) []string {
	names := make([]string, 0, len(faculty))
	for _, member := range faculty {
		if member.Name != "" {
			names = append(names, member.Name)
		}
	}
	return names
}

func classroomNames(classrooms []models.Classroom) []string {
	names := make([]string, 0, len(classrooms))
	for _, room := range classrooms {
		if room.Name != "" {
			names = append(names, room.Name)
		}
	}
	return names
}

func joinNamesOrNone(names []string) string {
	if len(names) == 0 {
		return "none registered"
	}
	return strings.Join(names, ", ")
}

func writeRecordTable(builder *strings.Builder, records []tabular.Record) {
	headers := recordHeaders(records)
	builder.WriteString(strings.Join(headers, " | "))
	builder.WriteString("\n")

	shown := records
	truncated := 0
	if len(shown) > maxPromptRecords {
		truncated = len(shown) - maxPromptRecords
		shown = shown[:maxPromptRecords]
	}

	for _, record := range shown {
		values := make([]string, len(headers))
		for i, header := range headers {
			values[i] = record[header]
		}
		builder.WriteString(strings.Join(values, " | "))
		builder.WriteString("\n")
	}

	if truncated > 0 {
		builder.WriteString(fmt.Sprintf("(and %d more rows)\n", truncated))
	}
}

func recordHeaders(records []tabular.Record) []string {
	seen := make(map[string]struct{})
	headers := make([]string, 0, 8)
	for _, record := range records {
		for key := range record {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				headers = append(headers, key)
			}
		}
	}
	sort.Strings(headers)
	return headers
}
