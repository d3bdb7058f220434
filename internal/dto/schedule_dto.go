package dto

import (
	"time"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
)

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ScheduleCreateRequest is the payload for creating a timetable entry by hand.
type ScheduleCreateRequest struct {
	Subject     string `json:"subject" validate:"required,max=160"`
	FacultyName string `json:"faculty_name" validate:"required,max=120"`
	Classroom   string `json:"classroom" validate:"required,max=120"`
	DayOfWeek   string `json:"day_of_week" validate:"required,max=16"`
	StartTime   string `json:"start_time" validate:"required,len=5"`
	EndTime     string `json:"end_time" validate:"required,len=5"`
}

// ScheduleUpdateRequest captures partial update payloads for an entry.
type ScheduleUpdateRequest struct {
	Subject     *string `json:"subject" validate:"omitempty,min=1,max=160"`
	FacultyName *string `json:"faculty_name" validate:"omitempty,min=1,max=120"`
	Classroom   *string `json:"classroom" validate:"omitempty,min=1,max=120"`
	DayOfWeek   *string `json:"day_of_week" validate:"omitempty,max=16"`
	StartTime   *string `json:"start_time" validate:"omitempty,len=5"`
	EndTime     *string `json:"end_time" validate:"omitempty,len=5"`
	Status      *string `json:"status" validate:"omitempty,oneof=active cancelled"`
}

// ScheduleListQuery represents query filters for listing timetable entries.
type ScheduleListQuery struct {
	Day       string `query:"day" validate:"omitempty,max=16"`
	Faculty   string `query:"faculty" validate:"omitempty,max=120"`
	Classroom string `query:"classroom" validate:"omitempty,max=120"`
	Status    string `query:"status" validate:"omitempty,oneof=active cancelled"`
	Page      int    `query:"page" validate:"omitempty,min=1"`
	PageSize  int    `query:"page_size" validate:"omitempty,min=1,max=200"`
}

// ScheduleEntryResponse is the serialized representation of a timetable entry.
type ScheduleEntryResponse struct {
	ID           string     `json:"id"`
	Subject      string     `json:"subject"`
	FacultyName  string     `json:"faculty_name"`
	Classroom    string     `json:"classroom"`
	DayOfWeek    string     `json:"day_of_week"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CreatedBy    string     `json:"created_by,omitempty"`
	LastModified time.Time  `json:"last_modified"`
	ModifiedBy   string     `json:"modified_by,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy  *string    `json:"cancelled_by,omitempty"`
}

// ScheduleListResponse wraps a paginated timetable listing.
type ScheduleListResponse struct {
	Items      []ScheduleEntryResponse `json:"items"`
	Pagination PaginationMeta          `json:"pagination"`
}

// NewScheduleEntryResponse converts a timetable entry model into a DTO.
func NewScheduleEntryResponse(entry models.ScheduleEntry) ScheduleEntryResponse {
	return ScheduleEntryResponse{
		ID:           entry.ID,
		Subject:      entry.Subject,
		FacultyName:  entry.FacultyName,
		Classroom:    entry.Classroom,
		DayOfWeek:    entry.DayOfWeek,
		StartTime:    entry.StartTime,
		EndTime:      entry.EndTime,
		Status:       string(entry.Status),
		CreatedAt:    entry.CreatedAt,
		CreatedBy:    entry.CreatedBy,
		LastModified: entry.LastModified,
		ModifiedBy:   entry.ModifiedBy,
		CancelledAt:  entry.CancelledAt,
		CancelledBy:  entry.CancelledBy,
	}
}

// NewScheduleEntryResponseSlice converts a slice of models into DTOs.
func NewScheduleEntryResponseSlice(entries []models.ScheduleEntry) []ScheduleEntryResponse {
	out := make([]ScheduleEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, NewScheduleEntryResponse(entry))
	}
	return out
}
