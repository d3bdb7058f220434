package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rajpratham1/EduScheduler-sub001/internal/dto"
	"github.com/rajpratham1/EduScheduler-sub001/internal/service"
	"github.com/rajpratham1/EduScheduler-sub001/internal/utils"
	"github.com/rajpratham1/EduScheduler-sub001/pkg/tabular"
)

// AssistHandler wires the assistant endpoints: proposing modifications,
// committing them, reverting them and browsing the trail.
type AssistHandler struct {
	assist    service.AssistService
	apply     service.ApplyService
	audit     service.AuditService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssistHandler constructs the handler.
func NewAssistHandler(assist service.AssistService, apply service.ApplyService, audit service.AuditService, validator *validator.Validate, logger zerolog.Logger) *AssistHandler {
	return &AssistHandler{
		assist:    assist,
		apply:     apply,
		audit:     audit,
		validator: validator,
		logger:    logger.With().Str("component", "assist_handler").Logger(),
	}
}

// Register attaches assistant endpoints to the router group.
func (h *AssistHandler) Register(router fiber.Router) {
	router.Post("/modification-request", h.propose)
	router.Post("/apply", h.applyModifications)
	router.Post("/undo", h.undo)
	router.Get("/history", h.history)
}

func (h *AssistHandler) propose(c *fiber.Ctx) error {
	req := dto.AssistRequest{}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		req.Message = c.FormValue("message")
		req.SessionID = c.FormValue("session_id")

		if file, err := c.FormFile("file"); err == nil && file != nil {
			data, err := readUpload(file)
			if err != nil {
				return utils.SendError(c, fiber.StatusBadRequest, "could not read uploaded file")
			}
			req.FileName = file.Filename
			req.FileData = data
		}
	} else if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.assist.Propose(requestContext(c), actorFromContext(c), req)
	if err != nil {
		return h.handleAssistError(c, err)
	}

	return utils.SendSuccess(c, "modification request processed", result)
}

func (h *AssistHandler) applyModifications(c *fiber.Ctx) error {
	payload := dto.ApplyModificationsRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.apply.Apply(requestContext(c), actorFromContext(c), payload.Modifications)
	if err != nil {
		return h.handleApplyError(c, err)
	}

	return utils.SendSuccess(c, "modifications applied", result)
}

func (h *AssistHandler) undo(c *fiber.Ctx) error {
	payload := dto.UndoModificationRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.apply.Undo(requestContext(c), actorFromContext(c), *payload.Modification)
	if err != nil {
		return h.handleApplyError(c, err)
	}

	return utils.SendSuccess(c, "modification reverted", result)
}

func (h *AssistHandler) history(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	query := dto.AuditListQuery{
		Page:     page,
		PageSize: pageSize,
		Actor:    c.Query("actor"),
		Action:   c.Query("action"),
	}

	result, err := h.audit.List(requestContext(c), query)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "audit trail retrieved", result)
}

func (h *AssistHandler) handleAssistError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEmptyRequest):
		return utils.SendError(c, fiber.StatusBadRequest, "message or file is required")
	case errors.Is(err, service.ErrRateLimited):
		return utils.SendError(c, fiber.StatusTooManyRequests, "too many assistant requests, slow down")
	case errors.Is(err, tabular.ErrTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "uploaded file exceeds the size limit")
	case errors.Is(err, tabular.ErrEmptyFile):
		return utils.SendError(c, fiber.StatusBadRequest, "uploaded file is empty")
	case errors.Is(err, tabular.ErrUnsupportedFormat):
		return utils.SendError(c, fiber.StatusBadRequest, "uploaded file format not supported, use xlsx, csv or json")
	case errors.Is(err, service.ErrCompletionUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "scheduling assistant unavailable, try again shortly")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AssistHandler) handleApplyError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEmptyBatch):
		return utils.SendError(c, fiber.StatusBadRequest, "no modifications to apply")
	case errors.Is(err, service.ErrInvalidModification):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEntryNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "schedule entry not found")
	case errors.Is(err, service.ErrStaleModification):
		return utils.SendError(c, fiber.StatusConflict, "schedule entry changed since the proposal, request a fresh one")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *AssistHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}
