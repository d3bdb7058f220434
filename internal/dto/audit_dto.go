package dto

import (
	"time"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
)

// AuditListQuery represents query filters for browsing the audit trail.
type AuditListQuery struct {
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=200"`
	Actor    string `query:"actor" validate:"omitempty,max=120"`
	Action   string `query:"action" validate:"omitempty,max=64"`
}

// AuditRecordResponse is the serialized representation of one trail record.
type AuditRecordResponse struct {
	ID            uint                   `json:"id"`
	Actor         string                 `json:"actor"`
	Action        string                 `json:"action"`
	Summary       string                 `json:"summary"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// AuditListResponse wraps a paginated audit trail page.
type AuditListResponse struct {
	Items      []AuditRecordResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}

// NewAuditRecordResponse converts an audit record model into a DTO.
func NewAuditRecordResponse(record models.AuditRecord) AuditRecordResponse {
	return AuditRecordResponse{
		ID:            record.ID,
		Actor:         record.Actor,
		Action:        record.Action,
		Summary:       record.Summary,
		CorrelationID: record.CorrelationID,
		Metadata:      map[string]interface{}(record.Metadata),
		CreatedAt:     record.CreatedAt,
	}
}
