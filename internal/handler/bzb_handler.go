package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/middleware"
	"github.com/noah-isme/qazaq-teachers/internal/service"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// BZBHandler wires standardized assessment routes for both portals.
type BZBHandler struct {
	tasks     service.BZBService
	accounts  service.AccountService
	maxUpload int64
	logger    zerolog.Logger
}

// NewBZBHandler constructs the handler.
func NewBZBHandler(tasks service.BZBService, accounts service.AccountService, maxUploadBytes int64, logger zerolog.Logger) *BZBHandler {
	return &BZBHandler{
		tasks:     tasks,
		accounts:  accounts,
		maxUpload: maxUploadBytes,
		logger:    logger.With().Str("component", "bzb_handler").Logger(),
	}
}

// RegisterTeacher attaches teacher endpoints.
func (h *BZBHandler) RegisterTeacher(router fiber.Router) {
	router.Get("/bzb-tasks", h.list)
	router.Post("/bzb-tasks", h.create)
	router.Get("/bzb-tasks/:id", h.teacherFile)
	router.Delete("/bzb-tasks/:id", h.delete)
}

// RegisterStudent attaches student endpoints.
func (h *BZBHandler) RegisterStudent(router fiber.Router) {
	router.Get("/bzb-tasks", h.listForStudent)
	router.Get("/bzb-tasks/:id", h.studentFile)
}

func (h *BZBHandler) list(c *fiber.Ctx) error {
	tasks, err := h.tasks.ListByTeacher(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "bzb tasks retrieved", tasks)
}

func (h *BZBHandler) create(c *fiber.Ctx) error {
	var payload dto.BZBCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	file, err := formUpload(c, "file", h.maxUpload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	task, err := h.tasks.Create(c.UserContext(), middleware.UserID(c), payload, file)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "bzb task created", task)
}

func (h *BZBHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.tasks.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "bzb task deleted", fiber.Map{"id": id})
}

func (h *BZBHandler) teacherFile(c *fiber.Ctx) error {
	return h.file(c, service.BZBAccess{TeacherID: middleware.UserID(c)})
}

func (h *BZBHandler) listForStudent(c *fiber.Ctx) error {
	classID, err := studentClassID(c, h.accounts)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	tasks, err := h.tasks.ListByClass(c.UserContext(), classID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "bzb tasks retrieved", tasks)
}

func (h *BZBHandler) studentFile(c *fiber.Ctx) error {
	classID, err := studentClassID(c, h.accounts)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return h.file(c, service.BZBAccess{ClassID: classID})
}

func (h *BZBHandler) file(c *fiber.Ctx, access service.BZBAccess) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	file, err := h.tasks.File(c.UserContext(), access, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return sendFile(c, file)
}
