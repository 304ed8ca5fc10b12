package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/middleware"
	"github.com/noah-isme/qazaq-teachers/internal/service"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// ClassHandler wires class and roster routes for the teacher portal.
type ClassHandler struct {
	classes  service.ClassService
	students service.StudentService
	logger   zerolog.Logger
}

// NewClassHandler constructs the handler.
func NewClassHandler(classes service.ClassService, students service.StudentService, logger zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		classes:  classes,
		students: students,
		logger:   logger.With().Str("component", "class_handler").Logger(),
	}
}

// Register attaches class, student and student login endpoints.
func (h *ClassHandler) Register(router fiber.Router) {
	router.Get("/classes", h.listClasses)
	router.Post("/classes", h.createClass)
	router.Get("/classes/:id", h.getClass)
	router.Delete("/classes/:id", h.deleteClass)
	router.Get("/classes/:id/students", h.listStudents)
	router.Post("/classes/:id/students", h.createStudent)

	router.Get("/students/performance", h.performance)
	router.Patch("/students/:id", h.updateStudent)
	router.Delete("/students/:id", h.deleteStudent)
	router.Get("/students/:id/login", h.getLogin)
	router.Post("/students/:id/login", h.registerLogin)
	router.Delete("/students/:id/login", h.deleteStudentLogin)

	router.Put("/student-logins/:id/password", h.resetPassword)
	router.Delete("/student-logins/:id", h.deleteLogin)
}

func (h *ClassHandler) listClasses(c *fiber.Ctx) error {
	classes, err := h.classes.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "classes retrieved", classes)
}

func (h *ClassHandler) createClass(c *fiber.Ctx) error {
	var payload dto.ClassCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	class, err := h.classes.Create(c.UserContext(), middleware.UserID(c), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

func (h *ClassHandler) getClass(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	class, err := h.classes.Get(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "class retrieved", class)
}

func (h *ClassHandler) deleteClass(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.classes.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "class deleted", fiber.Map{"id": id})
}

func (h *ClassHandler) listStudents(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	students, err := h.students.ListByClass(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *ClassHandler) createStudent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.StudentCreateRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	student, err := h.students.Create(c.UserContext(), middleware.UserID(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student added", student)
}

func (h *ClassHandler) performance(c *fiber.Ctx) error {
	var classID uint
	if raw := c.Query("class_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			return badRequest(c, "invalid class_id")
		}
		classID = uint(parsed)
	}

	overview, err := h.students.PerformanceOverview(c.UserContext(), middleware.UserID(c), classID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student performance retrieved", overview)
}

func (h *ClassHandler) updateStudent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.StudentUpdateRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	student, err := h.students.Update(c.UserContext(), middleware.UserID(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student updated", student)
}

func (h *ClassHandler) deleteStudent(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.students.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student deleted", fiber.Map{"id": id})
}

func (h *ClassHandler) getLogin(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	login, err := h.students.GetLogin(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student login retrieved", login)
}

func (h *ClassHandler) registerLogin(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.LoginRegisterRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	login, err := h.students.RegisterLogin(c.UserContext(), middleware.UserID(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student login registered", login)
}

func (h *ClassHandler) deleteStudentLogin(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	teacherID := middleware.UserID(c)
	login, err := h.students.GetLogin(c.UserContext(), teacherID, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.students.DeleteLogin(c.UserContext(), teacherID, login.ID); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student login deleted", fiber.Map{"id": login.ID})
}

func (h *ClassHandler) resetPassword(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var payload dto.PasswordResetRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	login, err := h.students.ResetPassword(c.UserContext(), middleware.UserID(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "password reset", login)
}

func (h *ClassHandler) deleteLogin(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.students.DeleteLogin(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "student login deleted", fiber.Map{"id": id})
}
