package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
)

// AuditFilter narrows audit trail queries.
type AuditFilter struct {
	Page     int
	PageSize int
	Actor    string
	Action   string
}

// AuditRepository persists the append-only audit trail. There is no update
// or delete on purpose.
type AuditRepository interface {
	Create(ctx context.Context, record *models.AuditRecord) error
	List(ctx context.Context, filter AuditFilter) ([]models.AuditRecord, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository constructs the audit trail repository.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]models.AuditRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditRecord{})

	if filter.Actor != "" {
		query = query.Where("actor = ?", filter.Actor)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var records []models.AuditRecord
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
