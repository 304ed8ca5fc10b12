package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/middleware"
	"github.com/noah-isme/qazaq-teachers/internal/service"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// AssignmentHandler wires assignment routes for both portals.
type AssignmentHandler struct {
	service   service.AssignmentService
	maxUpload int64
	logger    zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(svc service.AssignmentService, maxUploadBytes int64, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service:   svc,
		maxUpload: maxUploadBytes,
		logger:    logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// RegisterTeacher attaches the teacher portal assignment endpoints.
func (h *AssignmentHandler) RegisterTeacher(router fiber.Router) {
	router.Get("/assignments", h.listForTeacher)
	router.Post("/assignments", h.create)
	router.Post("/assignments/batch", h.createBatch)
	router.Get("/assignments/statistics", h.statistics)
	router.Get("/assignments/:id", h.getForTeacher)
	router.Delete("/assignments/:id", h.delete)
	router.Patch("/assignments/:id/review", h.review)
	router.Get("/assignments/:id/files/:kind", h.teacherFile)
}

// RegisterStudent attaches the student portal assignment endpoints.
func (h *AssignmentHandler) RegisterStudent(router fiber.Router) {
	router.Get("/assignments", h.listForStudent)
	router.Get("/assignments/:id", h.getForStudent)
	router.Post("/assignments/:id/answer", h.submitAnswer)
	router.Get("/assignments/:id/files/:kind", h.studentFile)
}

func (h *AssignmentHandler) listForTeacher(c *fiber.Ctx) error {
	assignments, err := h.service.ListByTeacher(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) listForStudent(c *fiber.Ctx) error {
	assignments, err := h.service.ListByStudent(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	file, err := formUpload(c, "file", h.maxUpload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	assignment, err := h.service.Create(c.UserContext(), middleware.UserID(c), payload, file)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) createBatch(c *fiber.Ctx) error {
	var payload dto.AssignmentBatchRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	file, err := formUpload(c, "file", h.maxUpload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	results, err := h.service.CreateBatch(c.UserContext(), middleware.UserID(c), payload, file)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	succeeded := 0
	for _, result := range results {
		if result.Success {
			succeeded++
		}
	}

	status := fiber.StatusCreated
	message := "assignments created"
	if succeeded < len(results) {
		status = fiber.StatusMultiStatus
		message = "some assignments could not be created"
	}
	return utils.SendSuccessWithStatus(c, status, message, results)
}

func (h *AssignmentHandler) statistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "statistics retrieved", stats)
}

func (h *AssignmentHandler) getForTeacher(c *fiber.Ctx) error {
	return h.get(c, service.Access{TeacherID: middleware.UserID(c)})
}

func (h *AssignmentHandler) getForStudent(c *fiber.Ctx) error {
	return h.get(c, service.Access{StudentID: middleware.UserID(c)})
}

func (h *AssignmentHandler) get(c *fiber.Ctx, access service.Access) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	assignment, err := h.service.Get(c.UserContext(), access, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assignment deleted", fiber.Map{"id": id})
}

// review clamps the score into [0, points] before handing it to the service.
func (h *AssignmentHandler) review(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.ReviewRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	teacherID := middleware.UserID(c)
	if payload.Score != nil {
		current, err := h.service.Get(c.UserContext(), service.Access{TeacherID: teacherID}, id)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		score := clampScore(*payload.Score, current.Points)
		payload.Score = &score
	}

	assignment, err := h.service.Review(c.UserContext(), teacherID, id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "assignment reviewed", assignment)
}

func (h *AssignmentHandler) submitAnswer(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.AnswerRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	file, err := formUpload(c, "file", h.maxUpload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	assignment, err := h.service.SubmitAnswer(c.UserContext(), middleware.UserID(c), id, payload, file)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "answer submitted", assignment)
}

func (h *AssignmentHandler) teacherFile(c *fiber.Ctx) error {
	return h.file(c, service.Access{TeacherID: middleware.UserID(c)})
}

func (h *AssignmentHandler) studentFile(c *fiber.Ctx) error {
	return h.file(c, service.Access{StudentID: middleware.UserID(c)})
}

func (h *AssignmentHandler) file(c *fiber.Ctx, access service.Access) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	kind := c.Params("kind")
	if kind != service.FileKindTask && kind != service.FileKindAnswer {
		return badRequest(c, "file kind must be task or answer")
	}

	file, err := h.service.File(c.UserContext(), access, id, kind)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return sendFile(c, file)
}

func clampScore(score, points int) int {
	if score < 0 {
		return 0
	}
	if points >= 0 && score > points {
		return points
	}
	return score
}
