package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
)

// ScheduleFilter narrows schedule listings.
type ScheduleFilter struct {
	Day       string
	Faculty   string
	Classroom string
	Status    string
	Page      int
	PageSize  int
}

// ScheduleRepository defines persistence operations for timetable entries.
type ScheduleRepository interface {
	List(ctx context.Context, filter ScheduleFilter) ([]models.ScheduleEntry, int64, error)
	ListAll(ctx context.Context) ([]models.ScheduleEntry, error)
	GetByID(ctx context.Context, id string) (models.ScheduleEntry, error)
	Create(ctx context.Context, entry *models.ScheduleEntry) error
	Update(ctx context.Context, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository instantiates a GORM-backed schedule repository.
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) List(ctx context.Context, filter ScheduleFilter) ([]models.ScheduleEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ScheduleEntry{})

	if filter.Day != "" {
		query = query.Where("LOWER(day_of_week) = ?", strings.ToLower(strings.TrimSpace(filter.Day)))
	}
	if filter.Faculty != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Faculty)) + "%"
		query = query.Where("LOWER(faculty_name) LIKE ?", pattern)
	}
	if filter.Classroom != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Classroom)) + "%"
		query = query.Where("LOWER(classroom) LIKE ?", pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", strings.ToLower(strings.TrimSpace(filter.Status)))
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

	var entries []models.ScheduleEntry
	if err := query.Order("day_of_week ASC, start_time ASC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *scheduleRepository) ListAll(ctx context.Context) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	if err := r.db.WithContext(ctx).Order("day_of_week ASC, start_time ASC").Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id string) (models.ScheduleEntry, error) {
	var entry models.ScheduleEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return models.ScheduleEntry{}, err
	}

	return entry, nil
}

func (r *scheduleRepository) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *scheduleRepository) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *scheduleRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.ScheduleEntry{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *scheduleRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ScheduleEntry{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
