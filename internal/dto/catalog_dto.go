package dto

import (
	"time"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
)

// CatalogListQuery represents the shared filters for catalog listings.
type CatalogListQuery struct {
	Search   string `query:"search" validate:"omitempty,max=160"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=200"`
}

// FacultyCreateRequest is the payload for registering a faculty member.
type FacultyCreateRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Email      string `json:"email" validate:"omitempty,email,max=160"`
	Department string `json:"department" validate:"omitempty,max=120"`
}

// FacultyUpdateRequest captures partial update payloads for a faculty member.
type FacultyUpdateRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=120"`
	Email      *string `json:"email" validate:"omitempty,email,max=160"`
	Department *string `json:"department" validate:"omitempty,max=120"`
}

// FacultyResponse serializes a faculty member.
type FacultyResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FacultyListResponse wraps a paginated faculty listing.
type FacultyListResponse struct {
	Items      []FacultyResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewFacultyResponse converts a faculty model into a DTO.
func NewFacultyResponse(faculty models.Faculty) FacultyResponse {
	return FacultyResponse{
		ID:         faculty.ID,
		Name:       faculty.Name,
		Email:      faculty.Email,
		Department: faculty.Department,
		CreatedAt:  faculty.CreatedAt,
		UpdatedAt:  faculty.UpdatedAt,
	}
}

// ClassroomCreateRequest is the payload for registering a classroom.
type ClassroomCreateRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Building string `json:"building" validate:"omitempty,max=120"`
	Capacity int    `json:"capacity" validate:"omitempty,min=0,max=10000"`
}

// ClassroomUpdateRequest captures partial update payloads for a classroom.
type ClassroomUpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	Building *string `json:"building" validate:"omitempty,max=120"`
	Capacity *int    `json:"capacity" validate:"omitempty,min=0,max=10000"`
}

// ClassroomResponse serializes a classroom.
type ClassroomResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Building  string    `json:"building,omitempty"`
	Capacity  int       `json:"capacity,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClassroomListResponse wraps a paginated classroom listing.
type ClassroomListResponse struct {
	Items      []ClassroomResponse `json:"items"`
	Pagination PaginationMeta      `json:"pagination"`
}

// NewClassroomResponse converts a classroom model into a DTO.
func NewClassroomResponse(classroom models.Classroom) ClassroomResponse {
	return ClassroomResponse{
		ID:        classroom.ID,
		Name:      classroom.Name,
		Building:  classroom.Building,
		Capacity:  classroom.Capacity,
		CreatedAt: classroom.CreatedAt,
		UpdatedAt: classroom.UpdatedAt,
	}
}

// SubjectCreateRequest is the payload for registering a subject.
type SubjectCreateRequest struct {
	Name string `json:"name" validate:"required,max=160"`
	Code string `json:"code" validate:"omitempty,max=32"`
}

// SubjectUpdateRequest captures partial update payloads for a subject.
type SubjectUpdateRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=160"`
	Code *string `json:"code" validate:"omitempty,max=32"`
}

// SubjectResponse serializes a subject.
type SubjectResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubjectListResponse wraps a paginated subject listing.
type SubjectListResponse struct {
	Items      []SubjectResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewSubjectResponse converts a subject model into a DTO.
func NewSubjectResponse(subject models.Subject) SubjectResponse {
	return SubjectResponse{
		ID:        subject.ID,
		Name:      subject.Name,
		Code:      subject.Code,
		CreatedAt: subject.CreatedAt,
		UpdatedAt: subject.UpdatedAt,
	}
}

// StudentCreateRequest is the payload for registering a student.
type StudentCreateRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email,max=160"`
	Section string `json:"section" validate:"omitempty,max=64"`
}

// StudentUpdateRequest captures partial update payloads for a student.
type StudentUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=120"`
	Email   *string `json:"email" validate:"omitempty,email,max=160"`
	Section *string `json:"section" validate:"omitempty,max=64"`
}

// StudentResponse serializes a student.
type StudentResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Section   string    `json:"section,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentListResponse wraps a paginated student listing.
type StudentListResponse struct {
	Items      []StudentResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewStudentResponse converts a student model into a DTO.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:        student.ID,
		Name:      student.Name,
		Email:     student.Email,
		Section:   student.Section,
		CreatedAt: student.CreatedAt,
		UpdatedAt: student.UpdatedAt,
	}
}
