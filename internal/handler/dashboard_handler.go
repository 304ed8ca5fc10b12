package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/middleware"
	"github.com/noah-isme/qazaq-teachers/internal/service"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// DashboardHandler serves the teacher landing summary.
type DashboardHandler struct {
	classes     service.ClassService
	assignments service.AssignmentService
	logger      zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(classes service.ClassService, assignments service.AssignmentService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		classes:     classes,
		assignments: assignments,
		logger:      logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches dashboard routes.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.summary)
}

func (h *DashboardHandler) summary(c *fiber.Ctx) error {
	teacherID := middleware.UserID(c)

	counts, err := h.classes.Counts(c.UserContext(), teacherID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	stats, err := h.assignments.Statistics(c.UserContext(), teacherID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dto.DashboardResponse{Counts: counts, Statistics: stats})
}
