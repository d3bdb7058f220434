package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rajpratham1/EduScheduler-sub001/internal/dto"
	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
	"github.com/rajpratham1/EduScheduler-sub001/internal/observability"
	"github.com/rajpratham1/EduScheduler-sub001/internal/ratelimit"
	"github.com/rajpratham1/EduScheduler-sub001/pkg/ai"
	"github.com/rajpratham1/EduScheduler-sub001/pkg/tabular"
)

// Assist pipeline errors surfaced to handlers.
var (
	ErrEmptyRequest          = errors.New("message or file is required")
	ErrRateLimited           = errors.New("too many assistant requests")
	ErrCompletionUnavailable = errors.New("completion service unavailable")
)

// FileArchiver stores the uploaded document and returns a retrievable URL.
type FileArchiver interface {
	Archive(ctx context.Context, name string, reader io.Reader) (string, error)
}

// AssistConfig tunes the assistant exchange.
type AssistConfig struct {
	MaxTokens    int
	Temperature  float32
	Timeout      time.Duration
	RetryBackoff time.Duration
	MaxFileBytes int64
}

// AssistService runs the natural-language modification pipeline: prompt the
// model with the live schedule, parse its reply into a validated set and
// annotate it with detected conflicts. Nothing here writes to the schedule.
type AssistService interface {
	Propose(ctx context.Context, actor string, req dto.AssistRequest) (dto.ModificationSetResponse, error)
}

type assistService struct {
	snapshots SnapshotLoader
	completer ai.Completer
	limiter   ratelimit.Limiter
	archiver  FileArchiver
	audit     AuditRecorder
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	cfg       AssistConfig
}

// NewAssistService wires the assistant pipeline. archiver and audit may be
// nil; the pipeline then skips archiving or trail writes.
func NewAssistService(
	snapshots SnapshotLoader,
	completer ai.Completer,
	limiter ratelimit.Limiter,
	archiver FileArchiver,
	audit AuditRecorder,
	validate *validator.Validate,
	cfg AssistConfig,
	logger zerolog.Logger,
) AssistService {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = 2 << 20
	}

	return &assistService{
		snapshots: snapshots,
		completer: completer,
		limiter:   limiter,
		archiver:  archiver,
		audit:     audit,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "assist_service").Logger(),
		tracer:    otel.Tracer("github.com/rajpratham1/EduScheduler-sub001/internal/service/assist"),
		cfg:       cfg,
	}
}

func (s *assistService) Propose(ctx context.Context, actor string, req dto.AssistRequest) (dto.ModificationSetResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assist.propose", trace.WithAttributes(
		attribute.String("assist.actor", actor),
		attribute.Bool("assist.has_file", len(req.FileData) > 0),
	))
	defer span.End()

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, actor)
		if err != nil {
			// a broken limiter backend must not take the assistant down
			s.logger.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		} else if !allowed {
			observability.AssistRequests().WithLabelValues("rate_limited").Inc()
			span.SetStatus(codes.Error, "rate limited")
			return dto.ModificationSetResponse{}, ErrRateLimited
		}
	}

	if err := s.validator.Struct(req); err != nil {
		return dto.ModificationSetResponse{}, err
	}

	message := strings.TrimSpace(req.Message)
	if message == "" && len(req.FileData) == 0 {
		observability.AssistRequests().WithLabelValues("empty").Inc()
		return dto.ModificationSetResponse{}, ErrEmptyRequest
	}

	var records []tabular.Record
	fileURL := ""
	if len(req.FileData) > 0 {
		parsed, err := tabular.Parse(req.FileName, req.FileData, s.cfg.MaxFileBytes)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "file parse failed")
			return dto.ModificationSetResponse{}, err
		}
		records = parsed
		fileURL = s.archiveFile(ctx, req.FileName, req.FileData)
	}

	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		observability.AssistRequests().WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot load failed")
		return dto.ModificationSetResponse{}, err
	}

	prompt := buildSchedulePrompt(snapshot, message, records)
	span.SetAttributes(
		attribute.Int("assist.prompt_chars", len(prompt)),
		attribute.Int("assist.records", len(records)),
	)

	raw, err := s.complete(ctx, prompt)
	if err != nil {
		observability.AssistRequests().WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return dto.ModificationSetResponse{}, err
	}

	set, degraded := ParseModificationSet(raw)
	if degraded {
		observability.ParseDegraded().Inc()
		observability.AssistRequests().WithLabelValues("degraded").Inc()
		s.logger.Warn().Str("actor", actor).Msg("assistant reply not parseable, serving raw text")
	} else {
		observability.AssistRequests().WithLabelValues("ok").Inc()
	}

	for _, mod := range set.Modifications {
		observability.ModificationsProposed().WithLabelValues(string(mod.Type)).Inc()
	}

	s.annotateConflicts(&set, snapshot.Entries)
	s.sanitizeSet(&set)

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s.recordExchange(ctx, actor, sessionID, message, fileURL, len(records), set, degraded)

	s.logger.Info().
		Str("actor", actor).
		Str("session_id", sessionID).
		Int("modifications", len(set.Modifications)).
		Int("conflicts", len(set.Conflicts)).
		Bool("degraded", degraded).
		Msg("assistant exchange completed")

	return dto.NewModificationSetResponse(set, sessionID, fileURL, len(records), degraded), nil
}

// complete issues the blocking completion call with a hard per-attempt
// timeout, retrying once after a short backoff on transient failure.
func (s *assistService) complete(ctx context.Context, prompt string) (string, error) {
	request := ai.CompletionRequest{
		SystemPrompt: schedulerSystemPrompt(),
		UserMessage:  prompt,
		MaxTokens:    s.cfg.MaxTokens,
		Temperature:  s.cfg.Temperature,
	}

	attempt := func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
		return s.completer.Complete(callCtx, request)
	}

	raw, err := attempt()
	if err == nil {
		return raw, nil
	}
	if ctx.Err() != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionUnavailable, ctx.Err())
	}

	s.logger.Warn().Err(err).Msg("completion failed, retrying once")
	select {
	case <-time.After(s.cfg.RetryBackoff):
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrCompletionUnavailable, ctx.Err())
	}

	raw, err = attempt()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionUnavailable, err)
	}
	return raw, nil
}

func (s *assistService) archiveFile(ctx context.Context, name string, data []byte) string {
	if s.archiver == nil {
		return ""
	}

	url, err := s.archiver.Archive(ctx, name, bytes.NewReader(data))
	if err != nil {
		// archival is provenance, not the critical path
		s.logger.Warn().Err(err).Str("file", name).Msg("failed to archive uploaded document")
		return ""
	}
	return url
}

// annotateConflicts merges detector findings into the set after the model's
// own conflict reports, deduplicated by message.
func (s *assistService) annotateConflicts(set *models.ModificationSet, entries []models.ScheduleEntry) {
	detected := DetectModificationConflicts(set.Modifications, entries)
	if len(detected) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(set.Conflicts))
	for _, message := range set.Conflicts {
		seen[message] = struct{}{}
	}

	for _, conflict := range detected {
		observability.ConflictsDetected().WithLabelValues(string(conflict.Kind)).Inc()
		if _, ok := seen[conflict.Message]; ok {
			continue
		}
		seen[conflict.Message] = struct{}{}
		set.Conflicts = append(set.Conflicts, conflict.Message)
	}
}

func (s *assistService) sanitizeSet(set *models.ModificationSet) {
	set.Response = strings.TrimSpace(s.sanitizer.Sanitize(set.Response))
	for i, message := range set.Conflicts {
		set.Conflicts[i] = strings.TrimSpace(s.sanitizer.Sanitize(message))
	}
	for i, message := range set.Warnings {
		set.Warnings[i] = strings.TrimSpace(s.sanitizer.Sanitize(message))
	}
	for i := range set.Modifications {
		set.Modifications[i].Description = strings.TrimSpace(s.sanitizer.Sanitize(set.Modifications[i].Description))
	}
}

func (s *assistService) recordExchange(ctx context.Context, actor, sessionID, message, fileURL string, records int, set models.ModificationSet, degraded bool) {
	if s.audit == nil {
		return
	}

	entry := AuditEntry{
		Actor:   actor,
		Action:  models.AuditActionAssist,
		Summary: fmt.Sprintf("assistant proposed %d modification(s)", len(set.Modifications)),
		Metadata: map[string]interface{}{
			"session_id":    sessionID,
			"instruction":   truncateForAudit(message, 500),
			"file_url":      fileURL,
			"record_count":  records,
			"modifications": len(set.Modifications),
			"conflicts":     len(set.Conflicts),
			"warnings":      len(set.Warnings),
			"degraded":      degraded,
		},
	}

	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to audit assistant exchange")
	}
}

func truncateForAudit(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
