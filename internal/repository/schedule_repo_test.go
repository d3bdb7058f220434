package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
)

func setupScheduleTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:schedule_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ScheduleEntry{}))
	return db
}

func seedEntry(t *testing.T, db *gorm.DB, entry models.ScheduleEntry) models.ScheduleEntry {
	t.Helper()
	if entry.Status == "" {
		entry.Status = models.ScheduleStatusActive
	}
	require.NoError(t, db.Create(&entry).Error)
	return entry
}

func TestScheduleRepositoryListFilters(t *testing.T) {
	db := setupScheduleTestDB(t)
	repo := NewScheduleRepository(db)

	seedEntry(t, db, models.ScheduleEntry{ID: "e1", Subject: "Maths", FacultyName: "Dr. Sharma", Classroom: "Room 101", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00"})
	seedEntry(t, db, models.ScheduleEntry{ID: "e2", Subject: "Physics", FacultyName: "Prof. Verma", Classroom: "Lab 2", DayOfWeek: "Monday", StartTime: "10:00", EndTime: "11:00"})
	seedEntry(t, db, models.ScheduleEntry{ID: "e3", Subject: "Chemistry", FacultyName: "Dr. Sharma", Classroom: "Lab 1", DayOfWeek: "Tuesday", StartTime: "09:00", EndTime: "10:00", Status: models.ScheduleStatusCancelled})

	byDay, total, err := repo.List(context.Background(), ScheduleFilter{Day: "monday"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, byDay, 2)
	require.Equal(t, "e1", byDay[0].ID, "ordered by start time")

	byFaculty, total, err := repo.List(context.Background(), ScheduleFilter{Faculty: "sharma"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, byFaculty, 2)

	byStatus, total, err := repo.List(context.Background(), ScheduleFilter{Status: "cancelled"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "e3", byStatus[0].ID)

	byRoom, total, err := repo.List(context.Background(), ScheduleFilter{Classroom: "lab"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, byRoom, 2)
}

func TestScheduleRepositoryListPaginates(t *testing.T) {
	db := setupScheduleTestDB(t)
	repo := NewScheduleRepository(db)

	for i := 0; i < 5; i++ {
		seedEntry(t, db, models.ScheduleEntry{
			ID:          fmt.Sprintf("page-%d", i),
			Subject:     "Maths",
			FacultyName: "Dr. Sharma",
			Classroom:   "Room 101",
			DayOfWeek:   "Monday",
			StartTime:   fmt.Sprintf("0%d:00", i+1),
			EndTime:     fmt.Sprintf("0%d:30", i+1),
		})
	}

	page, total, err := repo.List(context.Background(), ScheduleFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	require.Equal(t, "page-2", page[0].ID)
}

func TestScheduleRepositoryGetAndUpdate(t *testing.T) {
	db := setupScheduleTestDB(t)
	repo := NewScheduleRepository(db)

	seeded := seedEntry(t, db, models.ScheduleEntry{ID: "e1", Subject: "Maths", FacultyName: "Dr. Sharma", Classroom: "Room 101", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00"})

	entry, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.Equal(t, "Maths", entry.Subject)

	entry.Classroom = "Room 204"
	require.NoError(t, repo.Update(context.Background(), &entry))

	updated, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.Equal(t, "Room 204", updated.Classroom)

	_, err = repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestScheduleRepositoryDelete(t *testing.T) {
	db := setupScheduleTestDB(t)
	repo := NewScheduleRepository(db)

	seedEntry(t, db, models.ScheduleEntry{ID: "e1", Subject: "Maths", FacultyName: "Dr. Sharma", Classroom: "Room 101", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "10:00"})

	require.NoError(t, repo.Delete(context.Background(), "e1"))
	require.ErrorIs(t, repo.Delete(context.Background(), "e1"), gorm.ErrRecordNotFound)

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, total)
}
