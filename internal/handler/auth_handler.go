package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/qazaq-teachers/internal/dto"
	"github.com/noah-isme/qazaq-teachers/internal/middleware"
	"github.com/noah-isme/qazaq-teachers/internal/service"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// AuthHandler serves sign-in, sign-out and profile routes for one portal.
type AuthHandler struct {
	accounts service.AccountService
	sessions service.SessionService
	cookie   CookieConfig
	role     string
	logger   zerolog.Logger
}

// NewAuthHandler constructs the handler for the given portal role.
func NewAuthHandler(accounts service.AccountService, sessions service.SessionService, cookie CookieConfig, role string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
		cookie:   cookie,
		role:     role,
		logger:   logger.With().Str("component", "auth_handler").Str("portal", role).Logger(),
	}
}

// RegisterPublic attaches the unauthenticated routes. loginGuard throttles sign-in.
func (h *AuthHandler) RegisterPublic(router fiber.Router, loginGuard fiber.Handler) {
	if h.role == service.RoleTeacher {
		router.Post("/auth/register", loginGuard, h.register)
	}
	router.Post("/auth/login", loginGuard, h.login)
	router.Post("/auth/logout", h.logout)
}

// Register attaches the authenticated profile routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Get("/me", h.me)
	if h.role == service.RoleStudent {
		router.Put("/me/password", h.changePassword)
	}
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.TeacherRegisterRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	profile, err := h.accounts.RegisterTeacher(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.startSession(c, profile.ID); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registration successful", profile)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	var (
		subject uint
		profile interface{}
	)
	switch h.role {
	case service.RoleTeacher:
		teacher, err := h.accounts.LoginTeacher(c.UserContext(), payload)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		subject, profile = teacher.ID, teacher
	default:
		student, err := h.accounts.LoginStudent(c.UserContext(), payload)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		subject, profile = student.ID, student
	}

	if err := h.startSession(c, subject); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "signed in", profile)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if token := middleware.SessionToken(c, h.cookie.Name); token != "" {
		if err := h.sessions.Revoke(c.UserContext(), token); err != nil {
			requestLogger(h.logger, c).Warn().Err(err).Msg("failed to revoke session")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return utils.SendSuccess(c, "signed out", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	id := middleware.UserID(c)
	if h.role == service.RoleTeacher {
		profile, err := h.accounts.Teacher(c.UserContext(), id)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		return utils.SendSuccess(c, "profile retrieved", profile)
	}

	profile, err := h.accounts.Student(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *AuthHandler) changePassword(c *fiber.Ctx) error {
	var payload dto.ChangePasswordRequest
	if err := parseBody(c, &payload); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.accounts.ChangeStudentPassword(c.UserContext(), middleware.UserID(c), payload); err != nil {
		return respondError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "password changed", nil)
}

func (h *AuthHandler) startSession(c *fiber.Ctx, subject uint) error {
	token, session, err := h.sessions.Issue(c.UserContext(), subject, h.role)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	requestLogger(h.logger, c).Info().Uint("subject", subject).Msg("session started")
	return nil
}
