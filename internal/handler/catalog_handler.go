package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rajpratham1/EduScheduler-sub001/internal/dto"
	"github.com/rajpratham1/EduScheduler-sub001/internal/service"
	"github.com/rajpratham1/EduScheduler-sub001/internal/utils"
)

// CatalogHandler wires the reference-data routes: faculty, classrooms,
// subjects and students.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("component", "catalog_handler").Logger(),
	}
}

// Register attaches catalog endpoints to the router group.
func (h *CatalogHandler) Register(router fiber.Router) {
	faculty := router.Group("/faculty")
	faculty.Get("", h.listFaculty)
	faculty.Get("/:id", h.getFaculty)
	faculty.Post("", h.createFaculty)
	faculty.Patch("/:id", h.updateFaculty)
	faculty.Delete("/:id", h.deleteFaculty)

	classrooms := router.Group("/classrooms")
	classrooms.Get("", h.listClassrooms)
	classrooms.Get("/:id", h.getClassroom)
	classrooms.Post("", h.createClassroom)
	classrooms.Patch("/:id", h.updateClassroom)
	classrooms.Delete("/:id", h.deleteClassroom)

	subjects := router.Group("/subjects")
	subjects.Get("", h.listSubjects)
	subjects.Get("/:id", h.getSubject)
	subjects.Post("", h.createSubject)
	subjects.Patch("/:id", h.updateSubject)
	subjects.Delete("/:id", h.deleteSubject)

	students := router.Group("/students")
	students.Get("", h.listStudents)
	students.Get("/:id", h.getStudent)
	students.Post("", h.createStudent)
	students.Patch("/:id", h.updateStudent)
	students.Delete("/:id", h.deleteStudent)
}

func (h *CatalogHandler) listQuery(c *fiber.Ctx) (dto.CatalogListQuery, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return dto.CatalogListQuery{}, errors.New("invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return dto.CatalogListQuery{}, errors.New("invalid page_size")
	}

	return dto.CatalogListQuery{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (h *CatalogHandler) listFaculty(c *fiber.Ctx) error {
	query, err := h.listQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.ListFaculty(requestContext(c), query)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "faculty retrieved", result)
}

func (h *CatalogHandler) getFaculty(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	member, err := h.service.GetFaculty(requestContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "faculty member retrieved", member)
}

func (h *CatalogHandler) createFaculty(c *fiber.Ctx) error {
	payload := dto.FacultyCreateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	member, err := h.service.CreateFaculty(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "faculty member created", member)
}

func (h *CatalogHandler) updateFaculty(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.FacultyUpdateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	member, err := h.service.UpdateFaculty(requestContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "faculty member updated", member)
}

func (h *CatalogHandler) deleteFaculty(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteFaculty(requestContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "faculty member deleted", fiber.Map{"id": id})
}

func (h *CatalogHandler) listClassrooms(c *fiber.Ctx) error {
	query, err := h.listQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.ListClassrooms(requestContext(c), query)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "classrooms retrieved", result)
}

func (h *CatalogHandler) getClassroom(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	room, err := h.service.GetClassroom(requestContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "classroom retrieved", room)
}

func (h *CatalogHandler) createClassroom(c *fiber.Ctx) error {
	payload := dto.ClassroomCreateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	room, err := h.service.CreateClassroom(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "classroom created", room)
}

func (h *CatalogHandler) updateClassroom(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.ClassroomUpdateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	room, err := h.service.UpdateClassroom(requestContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "classroom updated", room)
}

func (h *CatalogHandler) deleteClassroom(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteClassroom(requestContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "classroom deleted", fiber.Map{"id": id})
}

func (h *CatalogHandler) listSubjects(c *fiber.Ctx) error {
	query, err := h.listQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.ListSubjects(requestContext(c), query)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "subjects retrieved", result)
}

func (h *CatalogHandler) getSubject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	subject, err := h.service.GetSubject(requestContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "subject retrieved", subject)
}

func (h *CatalogHandler) createSubject(c *fiber.Ctx) error {
	payload := dto.SubjectCreateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	subject, err := h.service.CreateSubject(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subject created", subject)
}

func (h *CatalogHandler) updateSubject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.SubjectUpdateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	subject, err := h.service.UpdateSubject(requestContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "subject updated", subject)
}

func (h *CatalogHandler) deleteSubject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteSubject(requestContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "subject deleted", fiber.Map{"id": id})
}

func (h *CatalogHandler) listStudents(c *fiber.Ctx) error {
	query, err := h.listQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.ListStudents(requestContext(c), query)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "students retrieved", result)
}

func (h *CatalogHandler) getStudent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	student, err := h.service.GetStudent(requestContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "student retrieved", student)
}

func (h *CatalogHandler) createStudent(c *fiber.Ctx) error {
	payload := dto.StudentCreateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.service.CreateStudent(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

func (h *CatalogHandler) updateStudent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.StudentUpdateRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.service.UpdateStudent(requestContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "student updated", student)
}

func (h *CatalogHandler) deleteStudent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteStudent(requestContext(c), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "student deleted", fiber.Map{"id": id})
}

func (h *CatalogHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrFacultyNotFound),
		errors.Is(err, service.ErrClassroomNotFound),
		errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}
