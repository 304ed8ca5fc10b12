package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/qazaq-teachers/internal/middleware"
	"github.com/noah-isme/qazaq-teachers/internal/service"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// GradeHandler serves the student grade card.
type GradeHandler struct {
	grades service.GradeService
	logger zerolog.Logger
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(grades service.GradeService, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{grades: grades, logger: logger.With().Str("component", "grade_handler").Logger()}
}

// Register attaches grade routes.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Get("/grades", h.card)
}

func (h *GradeHandler) card(c *fiber.Ctx) error {
	card, err := h.grades.Grades(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "grades retrieved", card)
}
