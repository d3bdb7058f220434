package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rajpratham1/EduScheduler-sub001/internal/dto"
	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
	"github.com/rajpratham1/EduScheduler-sub001/internal/repository"
)

var (
	ErrScheduleEntryNotFound = errors.New("schedule entry not found")
	ErrInvalidEntry          = errors.New("invalid schedule entry")
)

var canonicalDays = map[string]string{
	"monday":    "Monday",
	"tuesday":   "Tuesday",
	"wednesday": "Wednesday",
	"thursday":  "Thursday",
	"friday":    "Friday",
	"saturday":  "Saturday",
	"sunday":    "Sunday",
}

// normalizeDay maps any casing of a weekday name onto its canonical form.
func normalizeDay(day string) (string, bool) {
	canonical, ok := canonicalDays[strings.ToLower(strings.TrimSpace(day))]
	return canonical, ok
}

// ScheduleService manages the hand-edited side of the timetable.
type ScheduleService interface {
	List(ctx context.Context, query dto.ScheduleListQuery) (dto.ScheduleListResponse, error)
	Get(ctx context.Context, id string) (dto.ScheduleEntryResponse, error)
	Create(ctx context.Context, actor string, req dto.ScheduleCreateRequest) (dto.ScheduleEntryResponse, error)
	Update(ctx context.Context, actor, id string, req dto.ScheduleUpdateRequest) (dto.ScheduleEntryResponse, error)
	Delete(ctx context.Context, actor, id string) error
}

type scheduleService struct {
	repo      repository.ScheduleRepository
	events    EventPublisher
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewScheduleService wires the timetable CRUD service. events may be nil.
func NewScheduleService(repo repository.ScheduleRepository, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) ScheduleService {
	return &scheduleService{
		repo:      repo,
		events:    events,
		validator: validate,
		logger:    logger.With().Str("component", "schedule_service").Logger(),
	}
}

func (s *scheduleService) List(ctx context.Context, query dto.ScheduleListQuery) (dto.ScheduleListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.ScheduleListResponse{}, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	filter := repository.ScheduleFilter{
		Day:       strings.TrimSpace(query.Day),
		Faculty:   strings.TrimSpace(query.Faculty),
		Classroom: strings.TrimSpace(query.Classroom),
		Status:    strings.ToLower(strings.TrimSpace(query.Status)),
		Page:      page,
		PageSize:  pageSize,
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ScheduleListResponse{}, err
	}

	return dto.ScheduleListResponse{
		Items: dto.NewScheduleEntryResponseSlice(entries),
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	}, nil
}

func (s *scheduleService) Get(ctx context.Context, id string) (dto.ScheduleEntryResponse, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScheduleEntryResponse{}, ErrScheduleEntryNotFound
		}
		return dto.ScheduleEntryResponse{}, err
	}
	return dto.NewScheduleEntryResponse(entry), nil
}

func (s *scheduleService) Create(ctx context.Context, actor string, req dto.ScheduleCreateRequest) (dto.ScheduleEntryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ScheduleEntryResponse{}, err
	}

	day, ok := normalizeDay(req.DayOfWeek)
	if !ok {
		return dto.ScheduleEntryResponse{}, fmt.Errorf("%w: unknown day %q", ErrInvalidEntry, req.DayOfWeek)
	}
	if !models.ValidTimeRange(req.StartTime, req.EndTime) {
		return dto.ScheduleEntryResponse{}, fmt.Errorf("%w: start %q must precede end %q", ErrInvalidEntry, req.StartTime, req.EndTime)
	}

	now := time.Now().UTC()
	entry := models.ScheduleEntry{
		ID:           uuid.NewString(),
		Subject:      strings.TrimSpace(req.Subject),
		FacultyName:  strings.TrimSpace(req.FacultyName),
		Classroom:    strings.TrimSpace(req.Classroom),
		DayOfWeek:    day,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Status:       models.ScheduleStatusActive,
		CreatedAt:    now,
		CreatedBy:    actor,
		LastModified: now,
		ModifiedBy:   actor,
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		return dto.ScheduleEntryResponse{}, err
	}

	s.logger.Info().Str("entry_id", entry.ID).Str("actor", actor).Msg("schedule entry created")
	s.publishEntryChange(ctx, actor, entry.ID)

	return dto.NewScheduleEntryResponse(entry), nil
}

func (s *scheduleService) Update(ctx context.Context, actor, id string, req dto.ScheduleUpdateRequest) (dto.ScheduleEntryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ScheduleEntryResponse{}, err
	}

	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScheduleEntryResponse{}, ErrScheduleEntryNotFound
		}
		return dto.ScheduleEntryResponse{}, err
	}

	if req.Subject != nil {
		entry.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.FacultyName != nil {
		entry.FacultyName = strings.TrimSpace(*req.FacultyName)
	}
	if req.Classroom != nil {
		entry.Classroom = strings.TrimSpace(*req.Classroom)
	}
	if req.DayOfWeek != nil {
		day, ok := normalizeDay(*req.DayOfWeek)
		if !ok {
			return dto.ScheduleEntryResponse{}, fmt.Errorf("%w: unknown day %q", ErrInvalidEntry, *req.DayOfWeek)
		}
		entry.DayOfWeek = day
	}
	if req.StartTime != nil {
		entry.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		entry.EndTime = *req.EndTime
	}
	if req.Status != nil {
		status := models.ScheduleStatus(strings.ToLower(*req.Status))
		entry.Status = status
		if status == models.ScheduleStatusActive {
			entry.CancelledAt = nil
			entry.CancelledBy = nil
		}
	}

	if !models.ValidTimeRange(entry.StartTime, entry.EndTime) {
		return dto.ScheduleEntryResponse{}, fmt.Errorf("%w: start %q must precede end %q", ErrInvalidEntry, entry.StartTime, entry.EndTime)
	}

	entry.LastModified = time.Now().UTC()
	entry.ModifiedBy = actor

	if err := s.repo.Update(ctx, &entry); err != nil {
		return dto.ScheduleEntryResponse{}, err
	}

	s.logger.Info().Str("entry_id", entry.ID).Str("actor", actor).Msg("schedule entry updated")
	s.publishEntryChange(ctx, actor, entry.ID)

	return dto.NewScheduleEntryResponse(entry), nil
}

func (s *scheduleService) Delete(ctx context.Context, actor, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleEntryNotFound
		}
		return err
	}

	s.logger.Info().Str("entry_id", id).Str("actor", actor).Msg("schedule entry deleted")
	s.publishEntryChange(ctx, actor, id)
	return nil
}

func (s *scheduleService) publishEntryChange(ctx context.Context, actor, entryID string) {
	if s.events == nil {
		return
	}
	s.events.PublishChange(ctx, ScheduleEvent{
		Kind:    EventEntryChanged,
		BatchID: entryID,
		Actor:   actor,
		Count:   1,
		At:      time.Now().UTC(),
	})
}
