package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/middleware"
	"github.com/noah-isme/qazaq-teachers/internal/service"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// MaterialHandler wires visual material routes for both portals.
type MaterialHandler struct {
	materials service.MaterialService
	accounts  service.AccountService
	maxUpload int64
	logger    zerolog.Logger
}

// NewMaterialHandler constructs the handler. accounts resolves a student's class.
func NewMaterialHandler(materials service.MaterialService, accounts service.AccountService, maxUploadBytes int64, logger zerolog.Logger) *MaterialHandler {
	return &MaterialHandler{
		materials: materials,
		accounts:  accounts,
		maxUpload: maxUploadBytes,
		logger:    logger.With().Str("component", "material_handler").Logger(),
	}
}

// RegisterTeacher attaches teacher endpoints.
func (h *MaterialHandler) RegisterTeacher(router fiber.Router) {
	router.Get("/materials", h.list)
	router.Post("/materials", h.upload)
	router.Get("/materials/:id", h.teacherFile)
	router.Delete("/materials/:id", h.delete)
}

// RegisterStudent attaches student endpoints.
func (h *MaterialHandler) RegisterStudent(router fiber.Router) {
	router.Get("/materials", h.listForStudent)
	router.Get("/materials/:id", h.studentFile)
}

func (h *MaterialHandler) list(c *fiber.Ctx) error {
	materials, err := h.materials.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "materials retrieved", materials)
}

func (h *MaterialHandler) upload(c *fiber.Ctx) error {
	var payload dto.MaterialUploadRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	file, err := formUpload(c, "file", h.maxUpload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	material, err := h.materials.Upload(c.UserContext(), middleware.UserID(c), payload, file)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "material uploaded", material)
}

func (h *MaterialHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.materials.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "material deleted", fiber.Map{"id": id})
}

func (h *MaterialHandler) teacherFile(c *fiber.Ctx) error {
	return h.file(c, service.MaterialAccess{TeacherID: middleware.UserID(c)})
}

func (h *MaterialHandler) listForStudent(c *fiber.Ctx) error {
	classID, err := studentClassID(c, h.accounts)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	materials, err := h.materials.ListForClass(c.UserContext(), classID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "materials retrieved", materials)
}

func (h *MaterialHandler) studentFile(c *fiber.Ctx) error {
	classID, err := studentClassID(c, h.accounts)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return h.file(c, service.MaterialAccess{ClassID: classID})
}

func (h *MaterialHandler) file(c *fiber.Ctx, access service.MaterialAccess) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	file, err := h.materials.File(c.UserContext(), access, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return sendFile(c, file)
}

// studentClassID resolves the class of the signed-in student.
func studentClassID(c *fiber.Ctx, accounts service.AccountService) (uint, error) {
	profile, err := accounts.Student(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return 0, err
	}
	return profile.ClassID, nil
}
