package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/rajpratham1/EduScheduler-sub001/internal/models"
)

// CatalogFilter narrows catalogue listings by name search.
type CatalogFilter struct {
	Search   string
	Page     int
	PageSize int
}

// FacultyRepository defines persistence operations for faculty members.
type FacultyRepository interface {
	List(ctx context.Context, filter CatalogFilter) ([]models.Faculty, int64, error)
	ListAll(ctx context.Context) ([]models.Faculty, error)
	GetByID(ctx context.Context, id uint) (models.Faculty, error)
	Create(ctx context.Context, faculty *models.Faculty) error
	Update(ctx context.Context, faculty *models.Faculty) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// ClassroomRepository defines persistence operations for classrooms.
type ClassroomRepository interface {
	List(ctx context.Context, filter CatalogFilter) ([]models.Classroom, int64, error)
	ListAll(ctx context.Context) ([]models.Classroom, error)
	GetByID(ctx context.Context, id uint) (models.Classroom, error)
	Create(ctx context.Context, classroom *models.Classroom) error
	Update(ctx context.Context, classroom *models.Classroom) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// SubjectRepository defines persistence operations for subjects.
type SubjectRepository interface {
	List(ctx context.Context, filter CatalogFilter) ([]models.Subject, int64, error)
	GetByID(ctx context.Context, id uint) (models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// StudentRepository defines persistence operations for students.
type StudentRepository interface {
	List(ctx context.Context, filter CatalogFilter) ([]models.Student, int64, error)
	GetByID(ctx context.Context, id uint) (models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type facultyRepository struct{ db *gorm.DB }
type classroomRepository struct{ db *gorm.DB }
type subjectRepository struct{ db *gorm.DB }
type studentRepository struct{ db *gorm.DB }

// NewFacultyRepository constructs the faculty repository.
func NewFacultyRepository(db *gorm.DB) FacultyRepository { return &facultyRepository{db: db} }

// NewClassroomRepository constructs the classroom repository.
func NewClassroomRepository(db *gorm.DB) ClassroomRepository { return &classroomRepository{db: db} }

// NewSubjectRepository constructs the subject repository.
func NewSubjectRepository(db *gorm.DB) SubjectRepository { return &subjectRepository{db: db} }

// NewStudentRepository constructs the student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository { return &studentRepository{db: db} }

func searchByName(query *gorm.DB, search string) *gorm.DB {
	if search == "" {
		return query
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
	return query.Where("LOWER(name) LIKE ?", pattern)
}

func paginate(query *gorm.DB, filter CatalogFilter) *gorm.DB {
	if filter.PageSize <= 0 {
		return query
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	return query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
}

func (r *facultyRepository) List(ctx context.Context, filter CatalogFilter) ([]models.Faculty, int64, error) {
	query := searchByName(r.db.WithContext(ctx).Model(&models.Faculty{}), filter.Search)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var faculty []models.Faculty
	if err := paginate(query, filter).Order("name ASC").Find(&faculty).Error; err != nil {
		return nil, 0, err
	}
	return faculty, total, nil
}

func (r *facultyRepository) ListAll(ctx context.Context) ([]models.Faculty, error) {
	var faculty []models.Faculty
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&faculty).Error; err != nil {
		return nil, err
	}
	return faculty, nil
}

func (r *facultyRepository) GetByID(ctx context.Context, id uint) (models.Faculty, error) {
	var faculty models.Faculty
	if err := r.db.WithContext(ctx).First(&faculty, id).Error; err != nil {
		return models.Faculty{}, err
	}
	return faculty, nil
}

func (r *facultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	return r.db.WithContext(ctx).Create(faculty).Error
}

func (r *facultyRepository) Update(ctx context.Context, faculty *models.Faculty) error {
	return r.db.WithContext(ctx).Save(faculty).Error
}

func (r *facultyRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Faculty{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *facultyRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Faculty{}).Count(&total).Error
	return total, err
}

func (r *classroomRepository) List(ctx context.Context, filter CatalogFilter) ([]models.Classroom, int64, error) {
	query := searchByName(r.db.WithContext(ctx).Model(&models.Classroom{}), filter.Search)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var classrooms []models.Classroom
	if err := paginate(query, filter).Order("name ASC").Find(&classrooms).Error; err != nil {
		return nil, 0, err
	}
	return classrooms, total, nil
}

func (r *classroomRepository) ListAll(ctx context.Context) ([]models.Classroom, error) {
	var classrooms []models.Classroom
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&classrooms).Error; err != nil {
		return nil, err
	}
	return classrooms, nil
}

func (r *classroomRepository) GetByID(ctx context.Context, id uint) (models.Classroom, error) {
	var classroom models.Classroom
	if err := r.db.WithContext(ctx).First(&classroom, id).Error; err != nil {
		return models.Classroom{}, err
	}
	return classroom, nil
}

func (r *classroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	return r.db.WithContext(ctx).Create(classroom).Error
}

func (r *classroomRepository) Update(ctx context.Context, classroom *models.Classroom) error {
	return r.db.WithContext(ctx).Save(classroom).Error
}

func (r *classroomRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Classroom{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *classroomRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Classroom{}).Count(&total).Error
	return total, err
}

func (r *subjectRepository) List(ctx context.Context, filter CatalogFilter) ([]models.Subject, int64, error) {
	query := searchByName(r.db.WithContext(ctx).Model(&models.Subject{}), filter.Search)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subjects []models.Subject
	if err := paginate(query, filter).Order("name ASC").Find(&subjects).Error; err != nil {
		return nil, 0, err
	}
	return subjects, total, nil
}

func (r *subjectRepository) GetByID(ctx context.Context, id uint) (models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

func (r *subjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Save(subject).Error
}

func (r *subjectRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Subject{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *subjectRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Subject{}).Count(&total).Error
	return total, err
}

func (r *studentRepository) List(ctx context.Context, filter CatalogFilter) ([]models.Student, int64, error) {
	query := searchByName(r.db.WithContext(ctx).Model(&models.Student{}), filter.Search)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var students []models.Student
	if err := paginate(query, filter).Order("name ASC").Find(&students).Error; err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

func (r *studentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Student{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Count(&total).Error
	return total, err
}
