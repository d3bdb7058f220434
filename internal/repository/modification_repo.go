package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
)

// ErrStaleEntry signals that a targeted entry no longer matches the
// originalData captured when the modification was proposed. The whole batch
// rolls back.
var ErrStaleEntry = errors.New("schedule entry changed since the modification was proposed")

// ErrInvalidTimeRange signals that a write would leave an entry whose start
// does not precede its end.
var ErrInvalidTimeRange = errors.New("entry time range is invalid")

// ModificationBatch groups schedule writes that must land atomically,
// together with the audit record persisted in the same transaction.
type ModificationBatch struct {
	Actor         string
	Modifications []models.Modification
	Audit         models.AuditRecord
	AppliedAt     time.Time
}

// ModificationUndo describes the inversion of one previously applied
// modification.
type ModificationUndo struct {
	Actor        string
	Modification models.Modification
	Audit        models.AuditRecord
	UndoneAt     time.Time
}

// ModificationRepository persists modification batches and their inversions.
// Either every write in a call succeeds or none do.
type ModificationRepository interface {
	ApplyBatch(ctx context.Context, batch ModificationBatch) error
	Undo(ctx context.Context, undo ModificationUndo) error
}

type modificationRepository struct {
	db *gorm.DB
}

// NewModificationRepository constructs the GORM-backed batch repository.
func NewModificationRepository(db *gorm.DB) ModificationRepository {
	return &modificationRepository{db: db}
}

func (r *modificationRepository) ApplyBatch(ctx context.Context, batch ModificationBatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, mod := range batch.Modifications {
			if err := applyModification(tx, mod, batch.Actor, batch.AppliedAt); err != nil {
				return err
			}
		}

		audit := batch.Audit
		return tx.Create(&audit).Error
	})
}

func (r *modificationRepository) Undo(ctx context.Context, undo ModificationUndo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := revertModification(tx, undo.Modification, undo.Actor, undo.UndoneAt); err != nil {
			return err
		}

		audit := undo.Audit
		return tx.Create(&audit).Error
	})
}

func applyModification(tx *gorm.DB, mod models.Modification, actor string, at time.Time) error {
	switch mod.Type {
	case models.ModificationAdd:
		if mod.NewData == nil || mod.NewData.ID == "" {
			return fmt.Errorf("add modification %s: missing newData id", mod.ID)
		}

		entry := models.ScheduleEntry{ID: mod.NewData.ID}
		mod.NewData.ApplyTo(&entry)
		if entry.Status == "" {
			entry.Status = models.ScheduleStatusActive
		}
		if !models.ValidTimeRange(entry.StartTime, entry.EndTime) {
			return fmt.Errorf("entry %s: %w", entry.ID, ErrInvalidTimeRange)
		}
		entry.CreatedAt = at
		entry.CreatedBy = actor
		entry.LastModified = at
		entry.ModifiedBy = actor

		return tx.Create(&entry).Error

	case models.ModificationMove, models.ModificationUpdate:
		if mod.OriginalData == nil || mod.OriginalData.ID == "" {
			return fmt.Errorf("%s modification %s: missing originalData id", mod.Type, mod.ID)
		}
		if mod.NewData == nil {
			return fmt.Errorf("%s modification %s: missing newData", mod.Type, mod.ID)
		}

		entry, err := lockEntry(tx, mod.OriginalData.ID)
		if err != nil {
			return err
		}
		if !mod.OriginalData.Matches(entry) {
			return fmt.Errorf("entry %s: %w", entry.ID, ErrStaleEntry)
		}

		mod.NewData.ApplyTo(&entry)
		if !models.ValidTimeRange(entry.StartTime, entry.EndTime) {
			return fmt.Errorf("entry %s: %w", entry.ID, ErrInvalidTimeRange)
		}
		entry.LastModified = at
		entry.ModifiedBy = actor

		return tx.Save(&entry).Error

	case models.ModificationCancel:
		if mod.OriginalData == nil || mod.OriginalData.ID == "" {
			return fmt.Errorf("cancel modification %s: missing originalData id", mod.ID)
		}

		entry, err := lockEntry(tx, mod.OriginalData.ID)
		if err != nil {
			return err
		}
		if !mod.OriginalData.Matches(entry) {
			return fmt.Errorf("entry %s: %w", entry.ID, ErrStaleEntry)
		}

		cancelledBy := actor
		entry.Status = models.ScheduleStatusCancelled
		entry.CancelledAt = &at
		entry.CancelledBy = &cancelledBy
		entry.LastModified = at
		entry.ModifiedBy = actor

		return tx.Save(&entry).Error

	default:
		return fmt.Errorf("modification %s: unsupported type %q", mod.ID, mod.Type)
	}
}

func revertModification(tx *gorm.DB, mod models.Modification, actor string, at time.Time) error {
	switch mod.Type {
	case models.ModificationAdd:
		if mod.NewData == nil || mod.NewData.ID == "" {
			return fmt.Errorf("add modification %s: missing newData id", mod.ID)
		}

		result := tx.Delete(&models.ScheduleEntry{}, "id = ?", mod.NewData.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil

	case models.ModificationMove, models.ModificationUpdate:
		if mod.OriginalData == nil || mod.OriginalData.ID == "" {
			return fmt.Errorf("%s modification %s: missing originalData id", mod.Type, mod.ID)
		}

		entry, err := lockEntry(tx, mod.OriginalData.ID)
		if err != nil {
			return err
		}

		mod.OriginalData.ApplyTo(&entry)
		entry.LastModified = at
		entry.ModifiedBy = actor

		return tx.Save(&entry).Error

	case models.ModificationCancel:
		if mod.OriginalData == nil || mod.OriginalData.ID == "" {
			return fmt.Errorf("cancel modification %s: missing originalData id", mod.ID)
		}

		entry, err := lockEntry(tx, mod.OriginalData.ID)
		if err != nil {
			return err
		}

		mod.OriginalData.ApplyTo(&entry)
		entry.Status = models.ScheduleStatusActive
		entry.CancelledAt = nil
		entry.CancelledBy = nil
		entry.LastModified = at
		entry.ModifiedBy = actor

		return tx.Save(&entry).Error

	default:
		return fmt.Errorf("modification %s: unsupported type %q", mod.ID, mod.Type)
	}
}

func lockEntry(tx *gorm.DB, id string) (models.ScheduleEntry, error) {
	var entry models.ScheduleEntry
	if err := tx.First(&entry, "id = ?", id).Error; err != nil {
		return models.ScheduleEntry{}, err
	}
	return entry, nil
}
