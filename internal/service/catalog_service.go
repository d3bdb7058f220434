package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rajpratham1/EduScheduler-sub001/internal/dto"
	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
	"github.com/rajpratham1/EduScheduler-sub001/internal/repository"
)

var (
	ErrFacultyNotFound   = errors.New("faculty member not found")
	ErrClassroomNotFound = errors.New("classroom not found")
	ErrSubjectNotFound   = errors.New("subject not found")
	ErrStudentNotFound   = errors.New("student not found")
)

// CatalogService manages the reference data the assistant grounds its
// proposals on: faculty, classrooms, subjects and the student roster.
type CatalogService interface {
	ListFaculty(ctx context.Context, query dto.CatalogListQuery) (dto.FacultyListResponse, error)
	GetFaculty(ctx context.Context, id uint) (dto.FacultyResponse, error)
	CreateFaculty(ctx context.Context, req dto.FacultyCreateRequest) (dto.FacultyResponse, error)
	UpdateFaculty(ctx context.Context, id uint, req dto.FacultyUpdateRequest) (dto.FacultyResponse, error)
	DeleteFaculty(ctx context.Context, id uint) error

	ListClassrooms(ctx context.Context, query dto.CatalogListQuery) (dto.ClassroomListResponse, error)
	GetClassroom(ctx context.Context, id uint) (dto.ClassroomResponse, error)
	CreateClassroom(ctx context.Context, req dto.ClassroomCreateRequest) (dto.ClassroomResponse, error)
	UpdateClassroom(ctx context.Context, id uint, req dto.ClassroomUpdateRequest) (dto.ClassroomResponse, error)
	DeleteClassroom(ctx context.Context, id uint) error

	ListSubjects(ctx context.Context, query dto.CatalogListQuery) (dto.SubjectListResponse, error)
	GetSubject(ctx context.Context, id uint) (dto.SubjectResponse, error)
	CreateSubject(ctx context.Context, req dto.SubjectCreateRequest) (dto.SubjectResponse, error)
	UpdateSubject(ctx context.Context, id uint, req dto.SubjectUpdateRequest) (dto.SubjectResponse, error)
	DeleteSubject(ctx context.Context, id uint) error

	ListStudents(ctx context.Context, query dto.CatalogListQuery) (dto.StudentListResponse, error)
	GetStudent(ctx context.Context, id uint) (dto.StudentResponse, error)
	CreateStudent(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error)
	UpdateStudent(ctx context.Context, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error)
	DeleteStudent(ctx context.Context, id uint) error
}

type catalogService struct {
	faculty    repository.FacultyRepository
	classrooms repository.ClassroomRepository
	subjects   repository.SubjectRepository
	students   repository.StudentRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewCatalogService wires the catalog CRUD service.
func NewCatalogService(
	faculty repository.FacultyRepository,
	classrooms repository.ClassroomRepository,
	subjects repository.SubjectRepository,
	students repository.StudentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		faculty:    faculty,
		classrooms: classrooms,
		subjects:   subjects,
		students:   students,
		validator:  validate,
		logger:     logger.With().Str("component", "catalog_service").Logger(),
	}
}

func (s *catalogService) listFilter(query dto.CatalogListQuery) (repository.CatalogFilter, dto.PaginationMeta) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 50
	}

	filter := repository.CatalogFilter{
		Search:   strings.TrimSpace(query.Search),
		Page:     page,
		PageSize: pageSize,
	}
	return filter, dto.PaginationMeta{Page: page, PageSize: pageSize}
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

func notFoundAs(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func (s *catalogService) ListFaculty(ctx context.Context, query dto.CatalogListQuery) (dto.FacultyListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.FacultyListResponse{}, err
	}

	filter, pagination := s.listFilter(query)
	members, total, err := s.faculty.List(ctx, filter)
	if err != nil {
		return dto.FacultyListResponse{}, err
	}

	items := make([]dto.FacultyResponse, 0, len(members))
	for _, member := range members {
		items = append(items, dto.NewFacultyResponse(member))
	}

	pagination.TotalItems = total
	pagination.TotalPages = totalPages(total, pagination.PageSize)
	return dto.FacultyListResponse{Items: items, Pagination: pagination}, nil
}

func (s *catalogService) GetFaculty(ctx context.Context, id uint) (dto.FacultyResponse, error) {
	member, err := s.faculty.GetByID(ctx, id)
	if err != nil {
		return dto.FacultyResponse{}, notFoundAs(err, ErrFacultyNotFound)
	}
	return dto.NewFacultyResponse(member), nil
}

func (s *catalogService) CreateFaculty(ctx context.Context, req dto.FacultyCreateRequest) (dto.FacultyResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FacultyResponse{}, err
	}

	member := models.Faculty{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Department: strings.TrimSpace(req.Department),
	}
	if err := s.faculty.Create(ctx, &member); err != nil {
		return dto.FacultyResponse{}, err
	}

	s.logger.Info().Uint("faculty_id", member.ID).Msg("faculty member registered")
	return dto.NewFacultyResponse(member), nil
}

func (s *catalogService) UpdateFaculty(ctx context.Context, id uint, req dto.FacultyUpdateRequest) (dto.FacultyResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FacultyResponse{}, err
	}

	member, err := s.faculty.GetByID(ctx, id)
	if err != nil {
		return dto.FacultyResponse{}, notFoundAs(err, ErrFacultyNotFound)
	}

	if req.Name != nil {
		member.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		member.Email = strings.TrimSpace(*req.Email)
	}
	if req.Department != nil {
		member.Department = strings.TrimSpace(*req.Department)
	}

	if err := s.faculty.Update(ctx, &member); err != nil {
		return dto.FacultyResponse{}, err
	}
	return dto.NewFacultyResponse(member), nil
}

func (s *catalogService) DeleteFaculty(ctx context.Context, id uint) error {
	if err := s.faculty.Delete(ctx, id); err != nil {
		return notFoundAs(err, ErrFacultyNotFound)
	}
	s.logger.Info().Uint("faculty_id", id).Msg("faculty member removed")
	return nil
}

func (s *catalogService) ListClassrooms(ctx context.Context, query dto.CatalogListQuery) (dto.ClassroomListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.ClassroomListResponse{}, err
	}

	filter, pagination := s.listFilter(query)
	rooms, total, err := s.classrooms.List(ctx, filter)
	if err != nil {
		return dto.ClassroomListResponse{}, err
	}

	items := make([]dto.ClassroomResponse, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, dto.NewClassroomResponse(room))
	}

	pagination.TotalItems = total
	pagination.TotalPages = totalPages(total, pagination.PageSize)
	return dto.ClassroomListResponse{Items: items, Pagination: pagination}, nil
}

func (s *catalogService) GetClassroom(ctx context.Context, id uint) (dto.ClassroomResponse, error) {
	room, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		return dto.ClassroomResponse{}, notFoundAs(err, ErrClassroomNotFound)
	}
	return dto.NewClassroomResponse(room), nil
}

func (s *catalogService) CreateClassroom(ctx context.Context, req dto.ClassroomCreateRequest) (dto.ClassroomResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassroomResponse{}, err
	}

	room := models.Classroom{
		Name:     strings.TrimSpace(req.Name),
		Building: strings.TrimSpace(req.Building),
		Capacity: req.Capacity,
	}
	if err := s.classrooms.Create(ctx, &room); err != nil {
		return dto.ClassroomResponse{}, err
	}

	s.logger.Info().Uint("classroom_id", room.ID).Msg("classroom registered")
	return dto.NewClassroomResponse(room), nil
}

func (s *catalogService) UpdateClassroom(ctx context.Context, id uint, req dto.ClassroomUpdateRequest) (dto.ClassroomResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ClassroomResponse{}, err
	}

	room, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		return dto.ClassroomResponse{}, notFoundAs(err, ErrClassroomNotFound)
	}

	if req.Name != nil {
		room.Name = strings.TrimSpace(*req.Name)
	}
	if req.Building != nil {
		room.Building = strings.TrimSpace(*req.Building)
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}

	if err := s.classrooms.Update(ctx, &room); err != nil {
		return dto.ClassroomResponse{}, err
	}
	return dto.NewClassroomResponse(room), nil
}

func (s *catalogService) DeleteClassroom(ctx context.Context, id uint) error {
	if err := s.classrooms.Delete(ctx, id); err != nil {
		return notFoundAs(err, ErrClassroomNotFound)
	}
	s.logger.Info().Uint("classroom_id", id).Msg("classroom removed")
	return nil
}

func (s *catalogService) ListSubjects(ctx context.Context, query dto.CatalogListQuery) (dto.SubjectListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.SubjectListResponse{}, err
	}

	filter, pagination := s.listFilter(query)
	subjects, total, err := s.subjects.List(ctx, filter)
	if err != nil {
		return dto.SubjectListResponse{}, err
	}

	items := make([]dto.SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		items = append(items, dto.NewSubjectResponse(subject))
	}

	pagination.TotalItems = total
	pagination.TotalPages = totalPages(total, pagination.PageSize)
	return dto.SubjectListResponse{Items: items, Pagination: pagination}, nil
}

func (s *catalogService) GetSubject(ctx context.Context, id uint) (dto.SubjectResponse, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return dto.SubjectResponse{}, notFoundAs(err, ErrSubjectNotFound)
	}
	return dto.NewSubjectResponse(subject), nil
}

func (s *catalogService) CreateSubject(ctx context.Context, req dto.SubjectCreateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject := models.Subject{
		Name: strings.TrimSpace(req.Name),
		Code: strings.TrimSpace(req.Code),
	}
	if err := s.subjects.Create(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, err
	}

	s.logger.Info().Uint("subject_id", subject.ID).Msg("subject registered")
	return dto.NewSubjectResponse(subject), nil
}

func (s *catalogService) UpdateSubject(ctx context.Context, id uint, req dto.SubjectUpdateRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return dto.SubjectResponse{}, notFoundAs(err, ErrSubjectNotFound)
	}

	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		subject.Code = strings.TrimSpace(*req.Code)
	}

	if err := s.subjects.Update(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, err
	}
	return dto.NewSubjectResponse(subject), nil
}

func (s *catalogService) DeleteSubject(ctx context.Context, id uint) error {
	if err := s.subjects.Delete(ctx, id); err != nil {
		return notFoundAs(err, ErrSubjectNotFound)
	}
	s.logger.Info().Uint("subject_id", id).Msg("subject removed")
	return nil
}

func (s *catalogService) ListStudents(ctx context.Context, query dto.CatalogListQuery) (dto.StudentListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.StudentListResponse{}, err
	}

	filter, pagination := s.listFilter(query)
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return dto.StudentListResponse{}, err
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		items = append(items, dto.NewStudentResponse(student))
	}

	pagination.TotalItems = total
	pagination.TotalPages = totalPages(total, pagination.PageSize)
	return dto.StudentListResponse{Items: items, Pagination: pagination}, nil
}

func (s *catalogService) GetStudent(ctx context.Context, id uint) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, notFoundAs(err, ErrStudentNotFound)
	}
	return dto.NewStudentResponse(student), nil
}

func (s *catalogService) CreateStudent(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Section: strings.TrimSpace(req.Section),
	}
	if err := s.students.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Msg("student registered")
	return dto.NewStudentResponse(student), nil
}

func (s *catalogService) UpdateStudent(ctx context.Context, id uint, req dto.StudentUpdateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return dto.StudentResponse{}, notFoundAs(err, ErrStudentNotFound)
	}

	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		student.Email = strings.TrimSpace(*req.Email)
	}
	if req.Section != nil {
		student.Section = strings.TrimSpace(*req.Section)
	}

	if err := s.students.Update(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}
	return dto.NewStudentResponse(student), nil
}

func (s *catalogService) DeleteStudent(ctx context.Context, id uint) error {
	if err := s.students.Delete(ctx, id); err != nil {
		return notFoundAs(err, ErrStudentNotFound)
	}
	s.logger.Info().Uint("student_id", id).Msg("student removed")
	return nil
}
