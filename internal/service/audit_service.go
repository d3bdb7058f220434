package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/rajpratham1/EduScheduler-sub001/internal/dto"
	"github.com/rajpratham1/EduScheduler-sub001/internal/middleware"
	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
	"github.com/rajpratham1/EduScheduler-sub001/internal/repository"
)

// AuditEntry captures the details required to persist one trail record.
type AuditEntry struct {
	Actor    string
	Action   string
	Summary  string
	Metadata map[string]interface{}
}

// AuditRecorder defines behaviour for appending to the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditService exposes methods to append to and query the audit trail.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, query dto.AuditListQuery) (dto.AuditListResponse, error)
}

type auditService struct {
	repo   repository.AuditRepository
	logger zerolog.Logger
}

// NewAuditService constructs the audit trail service.
func NewAuditService(repo repository.AuditRepository, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:   repo,
		logger: logger.With().Str("component", "audit_service").Logger(),
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) error {
	if strings.TrimSpace(entry.Action) == "" {
		return fmt.Errorf("audit action is required")
	}

	actor := strings.TrimSpace(entry.Actor)
	if actor == "" {
		actor = "system"
	}

	record := models.AuditRecord{
		Actor:         actor,
		Action:        strings.ToLower(strings.TrimSpace(entry.Action)),
		Summary:       entry.Summary,
		CorrelationID: middleware.CorrelationIDFromContext(ctx),
		Metadata:      sanitizeMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		s.logger.Error().Err(err).Str("action", record.Action).Msg("failed to persist audit record")
		return err
	}

	return nil
}

func (s *auditService) List(ctx context.Context, query dto.AuditListQuery) (dto.AuditListResponse, error) {
	filter := repository.AuditFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		Actor:    strings.TrimSpace(query.Actor),
		Action:   strings.ToLower(strings.TrimSpace(query.Action)),
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AuditListResponse{}, err
	}

	items := make([]dto.AuditRecordResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.NewAuditRecordResponse(record))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(query.Page, 1),
		PageSize:   query.PageSize,
		TotalItems: total,
	}
	if query.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(query.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.AuditListResponse{Items: items, Pagination: pagination}, nil
}

// sanitizeMetadata masks values whose keys look like credentials or personal
// contact data before they reach the trail.
func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") || strings.Contains(lower, "secret") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
