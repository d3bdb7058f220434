package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rajpratham1/EduScheduler-sub001/internal/dto"
	"github.com/rajpratham1/EduScheduler-sub001/internal/middleware"
	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
	"github.com/rajpratham1/EduScheduler-sub001/internal/observability"
	"github.com/rajpratham1/EduScheduler-sub001/internal/repository"
)

// Apply pipeline errors surfaced to handlers.
var (
	ErrEmptyBatch          = errors.New("modification batch is empty")
	ErrInvalidModification = errors.New("invalid modification")
	ErrEntryNotFound       = errors.New("schedule entry not found")
	ErrStaleModification   = errors.New("schedule changed since the modifications were proposed")
)

// ApplyService turns accepted modification batches into schedule writes and
// reverts individual modifications.
type ApplyService interface {
	Apply(ctx context.Context, actor string, mods []models.Modification) (dto.ApplyResultResponse, error)
	Undo(ctx context.Context, actor string, mod models.Modification) (dto.UndoResultResponse, error)
}

type applyService struct {
	repo   repository.ModificationRepository
	events EventPublisher
	logger zerolog.Logger
	tracer trace.Tracer
}

// NewApplyService creates the applier. events may be nil when no feed is
// configured.
func NewApplyService(repo repository.ModificationRepository, events EventPublisher, logger zerolog.Logger) ApplyService {
	return &applyService{
		repo:   repo,
		events: events,
		logger: logger.With().Str("component", "apply_service").Logger(),
		tracer: otel.Tracer("github.com/rajpratham1/EduScheduler-sub001/internal/service/apply"),
	}
}

func (s *applyService) Apply(ctx context.Context, actor string, mods []models.Modification) (dto.ApplyResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "schedule.apply_batch", trace.WithAttributes(
		attribute.Int("batch.size", len(mods)),
		attribute.String("batch.actor", actor),
	))
	defer span.End()

	if len(mods) == 0 {
		return dto.ApplyResultResponse{}, ErrEmptyBatch
	}

	for i := range mods {
		if mods[i].ID == "" {
			return dto.ApplyResultResponse{}, fmt.Errorf("%w: modification %d: missing id", ErrInvalidModification, i+1)
		}
		if err := validateModificationShape(&mods[i]); err != nil {
			return dto.ApplyResultResponse{}, fmt.Errorf("%w: modification %d: %v", ErrInvalidModification, i+1, err)
		}
		if mods[i].Type == models.ModificationAdd && mods[i].NewData.ID == "" {
			return dto.ApplyResultResponse{}, fmt.Errorf("%w: modification %d: add requires newData.id", ErrInvalidModification, i+1)
		}
	}

	batchID := uuid.NewString()
	now := time.Now().UTC()

	batch := repository.ModificationBatch{
		Actor:         actor,
		Modifications: mods,
		AppliedAt:     now,
		Audit: models.AuditRecord{
			Actor:         actor,
			Action:        models.AuditActionApply,
			Summary:       fmt.Sprintf("applied %d schedule modification(s)", len(mods)),
			CorrelationID: middleware.CorrelationIDFromContext(ctx),
			Metadata: datatypes.JSONMap{
				"batch_id": batchID,
				"count":    len(mods),
				"ids":      modificationIDs(mods),
				"types":    modificationTypes(mods),
			},
			CreatedAt: now,
		},
	}

	if err := s.repo.ApplyBatch(ctx, batch); err != nil {
		observability.ApplyBatches().WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.ApplyResultResponse{}, s.mapRepoError(err)
	}

	observability.ApplyBatches().WithLabelValues("applied").Inc()
	for _, mod := range mods {
		observability.ModificationsApplied().WithLabelValues(string(mod.Type)).Inc()
	}

	s.logger.Info().
		Str("batch_id", batchID).
		Str("actor", actor).
		Int("count", len(mods)).
		Msg("modification batch applied")

	if s.events != nil {
		s.events.PublishChange(ctx, ScheduleEvent{
			Kind:    EventBatchApplied,
			BatchID: batchID,
			Actor:   actor,
			Count:   len(mods),
			At:      now,
		})
	}

	return dto.ApplyResultResponse{
		BatchID:   batchID,
		Applied:   len(mods),
		AppliedAt: now,
	}, nil
}

func (s *applyService) Undo(ctx context.Context, actor string, mod models.Modification) (dto.UndoResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "schedule.undo", trace.WithAttributes(
		attribute.String("modification.id", mod.ID),
		attribute.String("modification.type", string(mod.Type)),
	))
	defer span.End()

	if mod.ID == "" {
		return dto.UndoResultResponse{}, fmt.Errorf("%w: missing id", ErrInvalidModification)
	}
	if err := validateModificationShape(&mod); err != nil {
		return dto.UndoResultResponse{}, fmt.Errorf("%w: %v", ErrInvalidModification, err)
	}
	if mod.Type == models.ModificationAdd && mod.NewData.ID == "" {
		return dto.UndoResultResponse{}, fmt.Errorf("%w: add requires newData.id", ErrInvalidModification)
	}

	now := time.Now().UTC()
	undo := repository.ModificationUndo{
		Actor:        actor,
		Modification: mod,
		UndoneAt:     now,
		Audit: models.AuditRecord{
			Actor:         actor,
			Action:        models.AuditActionUndo,
			Summary:       fmt.Sprintf("reverted %s modification %s", mod.Type, mod.ID),
			CorrelationID: middleware.CorrelationIDFromContext(ctx),
			Metadata: datatypes.JSONMap{
				"modification_id": mod.ID,
				"type":            string(mod.Type),
				"entry_id":        mod.TargetID(),
			},
			CreatedAt: now,
		},
	}

	if err := s.repo.Undo(ctx, undo); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.UndoResultResponse{}, s.mapRepoError(err)
	}

	observability.ModificationsUndone().WithLabelValues(string(mod.Type)).Inc()

	s.logger.Info().
		Str("modification_id", mod.ID).
		Str("type", string(mod.Type)).
		Str("actor", actor).
		Msg("modification reverted")

	if s.events != nil {
		s.events.PublishChange(ctx, ScheduleEvent{
			Kind:    EventModificationUndone,
			BatchID: mod.ID,
			Actor:   actor,
			Count:   1,
			At:      now,
		})
	}

	return dto.UndoResultResponse{
		ModificationID: mod.ID,
		Type:           string(mod.Type),
		UndoneAt:       now,
	}, nil
}

// mapRepoError translates storage failures into the service sentinels
// handlers know how to render.
func (s *applyService) mapRepoError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrEntryNotFound, err)
	case errors.Is(err, repository.ErrStaleEntry):
		return fmt.Errorf("%w: %v", ErrStaleModification, err)
	case errors.Is(err, repository.ErrInvalidTimeRange):
		return fmt.Errorf("%w: %v", ErrInvalidModification, err)
	default:
		return err
	}
}

func modificationIDs(mods []models.Modification) []string {
	ids := make([]string, 0, len(mods))
	for _, mod := range mods {
		ids = append(ids, mod.ID)
	}
	return ids
}

func modificationTypes(mods []models.Modification) []string {
	types := make([]string, 0, len(mods))
	for _, mod := range mods {
		types = append(types, string(mod.Type))
	}
	return types
}
