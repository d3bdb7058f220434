package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rajpratham1/EduScheduler-sub001/internal/dto"
	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
	"github.com/rajpratham1/EduScheduler-sub001/pkg/ai"
	"github.com/rajpratham1/EduScheduler-sub001/pkg/tabular"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type stubSnapshots struct {
	snapshot ScheduleSnapshot
	err      error
}

func (s stubSnapshots) Load(context.Context) (ScheduleSnapshot, error) {
	return s.snapshot, s.err
}

type completionStep struct {
	reply string
	err   error
}

type scriptedCompleter struct {
	script   []completionStep
	requests []ai.CompletionRequest
}

func (c *scriptedCompleter) Complete(_ context.Context, req ai.CompletionRequest) (string, error) {
	c.requests = append(c.requests, req)
	if len(c.script) == 0 {
		return "", errors.New("completer called more times than scripted")
	}
	next := c.script[0]
	c.script = c.script[1:]
	return next.reply, next.err
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

type stubArchiver struct {
	url  string
	err  error
	name string
	data []byte
}

func (a *stubArchiver) Archive(_ context.Context, name string, reader io.Reader) (string, error) {
	a.name = name
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	a.data = data
	if a.err != nil {
		return "", a.err
	}
	return a.url, nil
}

type recordingAudit struct {
	entries []AuditEntry
	err     error
}

func (r *recordingAudit) Record(_ context.Context, entry AuditEntry) error {
	r.entries = append(r.entries, entry)
	return r.err
}

type assistFixture struct {
	completer *scriptedCompleter
	limiter   *stubLimiter
	archiver  *stubArchiver
	audit     *recordingAudit
	service   AssistService
}

func fastAssistConfig() AssistConfig {
	return AssistConfig{Timeout: time.Second, RetryBackoff: time.Millisecond}
}

func newAssistFixture(loader SnapshotLoader, cfg AssistConfig, script ...completionStep) *assistFixture {
	fix := &assistFixture{
		completer: &scriptedCompleter{script: script},
		limiter:   &stubLimiter{allowed: true},
		archiver:  &stubArchiver{url: "https://files.example.edu/uploads/schedule-doc"},
		audit:     &recordingAudit{},
	}
	fix.service = NewAssistService(
		loader,
		fix.completer,
		fix.limiter,
		fix.archiver,
		fix.audit,
		validator.New(validator.WithRequiredStructEnabled()),
		cfg,
		testLogger(),
	)
	return fix
}

func assistSnapshot() ScheduleSnapshot {
	return ScheduleSnapshot{
		Entries: []models.ScheduleEntry{
			{ID: "entry-1", Subject: "Mathematics", FacultyName: "Dr. Sharma", Classroom: "Room 101", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00", Status: models.ScheduleStatusActive},
		},
		Faculty:      []models.Faculty{{Name: "Dr. Sharma"}},
		Classrooms:   []models.Classroom{{Name: "Room 101"}},
		StudentCount: 120,
	}
}

func TestAssistProposeParsesReply(t *testing.T) {
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, fastAssistConfig(), completionStep{reply: validMoveReply})

	resp, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{
		Message:   "Move maths to Friday afternoon",
		SessionID: "sess-42",
	})
	require.NoError(t, err)

	require.Equal(t, "sess-42", resp.SessionID)
	require.Equal(t, "Moved the Monday maths lecture to Friday afternoon.", resp.Response)
	require.Len(t, resp.Modifications, 1)
	require.Equal(t, models.ModificationMove, resp.Modifications[0].Type)
	require.False(t, resp.Degraded)
	require.Empty(t, resp.Conflicts)

	require.Len(t, fix.completer.requests, 1)
	sent := fix.completer.requests[0]
	require.Contains(t, sent.SystemPrompt, "single JSON object")
	require.Contains(t, sent.UserMessage, "Move maths to Friday afternoon")
	require.Contains(t, sent.UserMessage, "Mathematics with Dr. Sharma")
	require.Equal(t, 1024, sent.MaxTokens)

	require.Equal(t, []string{"admin-1"}, fix.limiter.keys)

	require.Len(t, fix.audit.entries, 1)
	recorded := fix.audit.entries[0]
	require.Equal(t, "admin-1", recorded.Actor)
	require.Equal(t, models.AuditActionAssist, recorded.Action)
	require.Equal(t, "assistant proposed 1 modification(s)", recorded.Summary)
	require.Equal(t, "sess-42", recorded.Metadata["session_id"])
	require.Equal(t, 1, recorded.Metadata["modifications"])
	require.Equal(t, false, recorded.Metadata["degraded"])
}

func TestAssistProposeRequiresInput(t *testing.T) {
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, fastAssistConfig())

	_, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{Message: "   "})
	require.ErrorIs(t, err, ErrEmptyRequest)
	require.Empty(t, fix.completer.requests)
}

func TestAssistProposeRejectsOverlongMessage(t *testing.T) {
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, fastAssistConfig())

	_, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{
		Message: strings.Repeat("x", 4001),
	})
	require.Error(t, err)
	require.Empty(t, fix.completer.requests)
}

func TestAssistProposeRateLimited(t *testing.T) {
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, fastAssistConfig())
	fix.limiter.allowed = false

	_, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{Message: "anything"})
	require.ErrorIs(t, err, ErrRateLimited)
	require.Empty(t, fix.completer.requests)
	require.Empty(t, fix.audit.entries)
}

func TestAssistProposeAllowsWhenLimiterFails(t *testing.T) {
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, fastAssistConfig(), completionStep{reply: validMoveReply})
	fix.limiter.allowed = false
	fix.limiter.err = errors.New("redis connection refused")

	_, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{Message: "move maths"})
	require.NoError(t, err)
	require.Len(t, fix.completer.requests, 1)
}

func TestAssistProposeRetriesOnce(t *testing.T) {
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, fastAssistConfig(),
		completionStep{err: errors.New("upstream 503")},
		completionStep{reply: validMoveReply},
	)

	resp, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{Message: "move maths"})
	require.NoError(t, err)
	require.Len(t, fix.completer.requests, 2)
	require.Len(t, resp.Modifications, 1)
}

func TestAssistProposeCompletionUnavailable(t *testing.T) {
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, fastAssistConfig(),
		completionStep{err: errors.New("upstream 503")},
		completionStep{err: errors.New("upstream 503")},
	)

	_, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{Message: "move maths"})
	require.ErrorIs(t, err, ErrCompletionUnavailable)
	require.Len(t, fix.completer.requests, 2)
}

func TestAssistProposeSnapshotErrorPropagates(t *testing.T) {
	boom := errors.New("database gone")
	fix := newAssistFixture(stubSnapshots{err: boom}, fastAssistConfig())

	_, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{Message: "move maths"})
	require.ErrorIs(t, err, boom)
}

func TestAssistProposeDegradedReply(t *testing.T) {
	prose := "The timetable looks balanced this week; I would not change anything."
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, fastAssistConfig(), completionStep{reply: prose})

	resp, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{Message: "any ideas?"})
	require.NoError(t, err)
	require.True(t, resp.Degraded)
	require.Equal(t, prose, resp.Response)
	require.Empty(t, resp.Modifications)

	require.Len(t, fix.audit.entries, 1)
	require.Equal(t, true, fix.audit.entries[0].Metadata["degraded"])
}

func TestAssistProposeMintsSessionID(t *testing.T) {
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, fastAssistConfig(), completionStep{reply: validMoveReply})

	resp, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{Message: "move maths"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)
	require.Equal(t, resp.SessionID, fix.audit.entries[0].Metadata["session_id"])
}

func TestAssistProposeParsesUploadedFile(t *testing.T) {
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, fastAssistConfig(), completionStep{reply: validMoveReply})
	csv := []byte("subject,day\nBiology,Wednesday\n")

	resp, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{
		FileName: "roster.csv",
		FileData: csv,
	})
	require.NoError(t, err)

	require.Equal(t, 1, resp.RecordCount)
	require.Equal(t, "https://files.example.edu/uploads/schedule-doc", resp.FileURL)
	require.Equal(t, "roster.csv", fix.archiver.name)
	require.Equal(t, csv, fix.archiver.data)

	sent := fix.completer.requests[0].UserMessage
	require.Contains(t, sent, "Uploaded schedule data (1 rows)")
	require.Contains(t, sent, "Biology")

	require.Equal(t, 1, fix.audit.entries[0].Metadata["record_count"])
	require.Equal(t, resp.FileURL, fix.audit.entries[0].Metadata["file_url"])
}

func TestAssistProposeRejectsOversizeFile(t *testing.T) {
	cfg := fastAssistConfig()
	cfg.MaxFileBytes = 16
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, cfg)

	_, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{
		FileName: "roster.csv",
		FileData: []byte(strings.Repeat("a,b\n", 10)),
	})
	require.ErrorIs(t, err, tabular.ErrTooLarge)
	require.Empty(t, fix.completer.requests)
}

func TestAssistProposeToleratesArchiveFailure(t *testing.T) {
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, fastAssistConfig(), completionStep{reply: validMoveReply})
	fix.archiver.err = errors.New("bucket unavailable")

	resp, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{
		FileName: "roster.csv",
		FileData: []byte("subject,day\nBiology,Wednesday\n"),
	})
	require.NoError(t, err)
	require.Empty(t, resp.FileURL)
}

func TestAssistProposeToleratesAuditFailure(t *testing.T) {
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, fastAssistConfig(), completionStep{reply: validMoveReply})
	fix.audit.err = errors.New("trail unavailable")

	_, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{Message: "move maths"})
	require.NoError(t, err)
}

const conflictingMoveReply = `{
  "response": "Moved the Monday maths lecture into Room 201 on Friday.",
  "modifications": [
    {
      "id": "mod-1",
      "type": "move",
      "description": "Move Mathematics to Friday afternoon in Room 201",
      "originalData": {"id": "entry-1", "day": "Monday", "startTime": "09:00", "endTime": "10:00", "classroom": "Room 101"},
      "newData": {"day": "Friday", "startTime": "14:00", "endTime": "15:00", "classroom": "Room 201"},
      "affected": []
    }
  ],
  "conflicts": [],
  "warnings": []
}`

func TestAssistProposeAnnotatesConflicts(t *testing.T) {
	snapshot := assistSnapshot()
	snapshot.Entries = append(snapshot.Entries, models.ScheduleEntry{
		ID: "entry-9", Subject: "Chemistry", FacultyName: "Dr. Verma", Classroom: "Room 201",
		DayOfWeek: "Friday", StartTime: "14:00", EndTime: "15:00", Status: models.ScheduleStatusActive,
	})
	fix := newAssistFixture(stubSnapshots{snapshot: snapshot}, fastAssistConfig(), completionStep{reply: conflictingMoveReply})

	resp, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{Message: "move maths to room 201"})
	require.NoError(t, err)

	require.Len(t, resp.Conflicts, 1)
	require.Contains(t, resp.Conflicts[0], "already booked")
	require.Contains(t, resp.Conflicts[0], "Room 201")
	require.Contains(t, resp.Conflicts[0], "entry-9")
}

func TestAssistProposeSanitizesReply(t *testing.T) {
	reply := `{
  "response": "Done. <script>alert('x')</script>Review the change below.",
  "modifications": [],
  "conflicts": ["<b>clash</b> with the Friday assembly"],
  "warnings": []
}`
	fix := newAssistFixture(stubSnapshots{snapshot: assistSnapshot()}, fastAssistConfig(), completionStep{reply: reply})

	resp, err := fix.service.Propose(context.Background(), "admin-1", dto.AssistRequest{Message: "tidy up"})
	require.NoError(t, err)
	require.Equal(t, "Done. Review the change below.", resp.Response)
	require.Equal(t, []string{"clash with the Friday assembly"}, resp.Conflicts)
}
