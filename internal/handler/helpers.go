package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/middleware"
	"github.com/noah-isme/qazaq-teachers/internal/service"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// formUpload reads the optional multipart file field. A missing field yields nil.
func formUpload(c *fiber.Ctx, field string, maxBytes int64) (*dto.FileUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return service.ReadUpload(header, maxBytes)
}

// respondError maps service errors onto HTTP responses.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrClassNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrLoginNotFound),
		errors.Is(err, service.ErrBZBTaskNotFound),
		errors.Is(err, service.ErrMaterialNotFound),
		errors.Is(err, service.ErrFileNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateStudentCode),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrStudentHasLogin),
		errors.Is(err, service.ErrAssignmentReviewed):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionInvalid):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	default:
		requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return utils.SendError(c, fiber.StatusBadRequest, message)
}

func sendFile(c *fiber.Ctx, file dto.FileDownload) error {
	return utils.SendAttachment(c, file.Name, file.ContentType, file.Data)
}

// parseBody decodes JSON, urlencoded or multipart bodies. An empty body leaves
// out untouched.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return errors.New("invalid payload")
	}
	return nil
}
