package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rajpratham1/EduScheduler-sub001/internal/dto"
	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
	"github.com/rajpratham1/EduScheduler-sub001/internal/repository"
)

type memoryScheduleRepo struct {
	entries    map[string]models.ScheduleEntry
	lastFilter repository.ScheduleFilter
}

func newMemoryScheduleRepo() *memoryScheduleRepo {
	return &memoryScheduleRepo{entries: map[string]models.ScheduleEntry{}}
}

func (m *memoryScheduleRepo) List(_ context.Context, filter repository.ScheduleFilter) ([]models.ScheduleEntry, int64, error) {
	m.lastFilter = filter
	entries, _ := m.ListAll(context.Background())
	return entries, int64(len(entries)), nil
}

func (m *memoryScheduleRepo) ListAll(context.Context) ([]models.ScheduleEntry, error) {
	entries := make([]models.ScheduleEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		entries = append(entries, entry)
	}
	return entries, nil
}

func (m *memoryScheduleRepo) GetByID(_ context.Context, id string) (models.ScheduleEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return models.ScheduleEntry{}, gorm.ErrRecordNotFound
	}
	return entry, nil
}

func (m *memoryScheduleRepo) Create(_ context.Context, entry *models.ScheduleEntry) error {
	m.entries[entry.ID] = *entry
	return nil
}

func (m *memoryScheduleRepo) Update(_ context.Context, entry *models.ScheduleEntry) error {
	m.entries[entry.ID] = *entry
	return nil
}

func (m *memoryScheduleRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.entries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *memoryScheduleRepo) Count(context.Context) (int64, error) {
	return int64(len(m.entries)), nil
}

func newScheduleFixture() (*memoryScheduleRepo, *recordingPublisher, ScheduleService) {
	repo := newMemoryScheduleRepo()
	publisher := &recordingPublisher{}
	service := NewScheduleService(repo, publisher, validator.New(validator.WithRequiredStructEnabled()), testLogger())
	return repo, publisher, service
}

func mathsCreateRequest() dto.ScheduleCreateRequest {
	return dto.ScheduleCreateRequest{
		Subject:     "  Mathematics  ",
		FacultyName: " Dr. Sharma ",
		Classroom:   " Room 101 ",
		DayOfWeek:   "monday",
		StartTime:   "09:00",
		EndTime:     "10:00",
	}
}

func TestScheduleServiceCreateNormalises(t *testing.T) {
	repo, publisher, service := newScheduleFixture()

	resp, err := service.Create(context.Background(), "admin-1", mathsCreateRequest())
	require.NoError(t, err)

	require.NotEmpty(t, resp.ID)
	require.Equal(t, "Mathematics", resp.Subject)
	require.Equal(t, "Dr. Sharma", resp.FacultyName)
	require.Equal(t, "Room 101", resp.Classroom)
	require.Equal(t, "Monday", resp.DayOfWeek)
	require.Equal(t, "active", resp.Status)
	require.Equal(t, "admin-1", resp.CreatedBy)
	require.Contains(t, repo.entries, resp.ID)

	require.Len(t, publisher.events, 1)
	require.Equal(t, EventEntryChanged, publisher.events[0].Kind)
	require.Equal(t, resp.ID, publisher.events[0].BatchID)
	require.Equal(t, "admin-1", publisher.events[0].Actor)
}

func TestScheduleServiceCreateRejectsUnknownDay(t *testing.T) {
	_, publisher, service := newScheduleFixture()

	req := mathsCreateRequest()
	req.DayOfWeek = "Funday"

	_, err := service.Create(context.Background(), "admin-1", req)
	require.ErrorIs(t, err, ErrInvalidEntry)
	require.Empty(t, publisher.events)
}

func TestScheduleServiceCreateRejectsBadTimeRange(t *testing.T) {
	_, _, service := newScheduleFixture()

	req := mathsCreateRequest()
	req.StartTime = "10:00"
	req.EndTime = "09:00"

	_, err := service.Create(context.Background(), "admin-1", req)
	require.ErrorIs(t, err, ErrInvalidEntry)
}

func TestScheduleServiceCreateValidatesPayload(t *testing.T) {
	_, _, service := newScheduleFixture()

	req := mathsCreateRequest()
	req.Subject = ""
	_, err := service.Create(context.Background(), "admin-1", req)
	require.Error(t, err)

	req = mathsCreateRequest()
	req.StartTime = "9:00"
	_, err = service.Create(context.Background(), "admin-1", req)
	require.Error(t, err)
}

func TestScheduleServiceGetMissing(t *testing.T) {
	_, _, service := newScheduleFixture()

	_, err := service.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrScheduleEntryNotFound)
}

func TestScheduleServiceUpdatePartial(t *testing.T) {
	_, publisher, service := newScheduleFixture()

	created, err := service.Create(context.Background(), "admin-1", mathsCreateRequest())
	require.NoError(t, err)

	subject := "  Applied Mathematics "
	day := "FRIDAY"
	resp, err := service.Update(context.Background(), "admin-2", created.ID, dto.ScheduleUpdateRequest{
		Subject:   &subject,
		DayOfWeek: &day,
	})
	require.NoError(t, err)

	require.Equal(t, "Applied Mathematics", resp.Subject)
	require.Equal(t, "Friday", resp.DayOfWeek)
	require.Equal(t, "Dr. Sharma", resp.FacultyName)
	require.Equal(t, "09:00", resp.StartTime)
	require.Equal(t, "admin-2", resp.ModifiedBy)
	require.Len(t, publisher.events, 2)
}

func TestScheduleServiceUpdateReactivates(t *testing.T) {
	repo, _, service := newScheduleFixture()

	created, err := service.Create(context.Background(), "admin-1", mathsCreateRequest())
	require.NoError(t, err)

	now := time.Now().UTC()
	cancelledBy := "admin-1"
	stored := repo.entries[created.ID]
	stored.Status = models.ScheduleStatusCancelled
	stored.CancelledAt = &now
	stored.CancelledBy = &cancelledBy
	repo.entries[created.ID] = stored

	status := "active"
	resp, err := service.Update(context.Background(), "admin-2", created.ID, dto.ScheduleUpdateRequest{Status: &status})
	require.NoError(t, err)
	require.Equal(t, "active", resp.Status)
	require.Nil(t, resp.CancelledAt)
	require.Nil(t, resp.CancelledBy)
}

func TestScheduleServiceUpdateRejectsBadTimeRange(t *testing.T) {
	_, _, service := newScheduleFixture()

	created, err := service.Create(context.Background(), "admin-1", mathsCreateRequest())
	require.NoError(t, err)

	end := "08:00"
	_, err = service.Update(context.Background(), "admin-1", created.ID, dto.ScheduleUpdateRequest{EndTime: &end})
	require.ErrorIs(t, err, ErrInvalidEntry)
}

func TestScheduleServiceUpdateMissing(t *testing.T) {
	_, _, service := newScheduleFixture()

	subject := "Physics"
	_, err := service.Update(context.Background(), "admin-1", "ghost", dto.ScheduleUpdateRequest{Subject: &subject})
	require.ErrorIs(t, err, ErrScheduleEntryNotFound)
}

func TestScheduleServiceDelete(t *testing.T) {
	repo, publisher, service := newScheduleFixture()

	created, err := service.Create(context.Background(), "admin-1", mathsCreateRequest())
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), "admin-1", created.ID))
	require.Empty(t, repo.entries)
	require.Len(t, publisher.events, 2)

	err = service.Delete(context.Background(), "admin-1", created.ID)
	require.ErrorIs(t, err, ErrScheduleEntryNotFound)
}

func TestScheduleServiceListDefaultsAndTrims(t *testing.T) {
	repo, _, service := newScheduleFixture()

	_, err := service.Create(context.Background(), "admin-1", mathsCreateRequest())
	require.NoError(t, err)

	resp, err := service.List(context.Background(), dto.ScheduleListQuery{Day: "  Monday ", Status: "active"})
	require.NoError(t, err)

	require.Equal(t, "Monday", repo.lastFilter.Day)
	require.Equal(t, "active", repo.lastFilter.Status)
	require.Equal(t, 1, repo.lastFilter.Page)
	require.Equal(t, 50, repo.lastFilter.PageSize)

	require.Len(t, resp.Items, 1)
	require.Equal(t, 1, resp.Pagination.Page)
	require.Equal(t, 50, resp.Pagination.PageSize)
	require.EqualValues(t, 1, resp.Pagination.TotalItems)
	require.Equal(t, 1, resp.Pagination.TotalPages)
}
