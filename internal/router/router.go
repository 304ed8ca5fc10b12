package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/qazaq-teachers/internal/config"
	"github.com/noah-isme/qazaq-teachers/internal/handler"
	"github.com/noah-isme/qazaq-teachers/internal/observability"
)

// TeacherDependencies groups teacher portal handlers for registration.
type TeacherDependencies struct {
	Auth         *handler.AuthHandler
	Dashboard    *handler.DashboardHandler
	Classes      *handler.ClassHandler
	Assignments  *handler.AssignmentHandler
	BZB          *handler.BZBHandler
	Materials    *handler.MaterialHandler
	Session      fiber.Handler
	Authorize    fiber.Handler
	LoginGuard   fiber.Handler
	HealthChecks map[string]handler.HealthCheck
}

// StudentDependencies groups student portal handlers for registration.
type StudentDependencies struct {
	Auth         *handler.AuthHandler
	Assignments  *handler.AssignmentHandler
	Grades       *handler.GradeHandler
	BZB          *handler.BZBHandler
	Materials    *handler.MaterialHandler
	Session      fiber.Handler
	Authorize    fiber.Handler
	LoginGuard   fiber.Handler
	HealthChecks map[string]handler.HealthCheck
}

func apiGroup(app *fiber.App, cfg config.Config, portal string, checks map[string]handler.HealthCheck) fiber.Router {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.Health(cfg, portal, checks))
	api.Get("/metrics", observability.MetricsHandler())
	return api
}

func passthrough(h fiber.Handler) fiber.Handler {
	if h == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return h
}

// RegisterTeacherPortal wires the teacher portal routes into app.
func RegisterTeacherPortal(app *fiber.App, cfg config.Config, deps TeacherDependencies) {
	api := apiGroup(app, cfg, "teacher", deps.HealthChecks)
	deps.Auth.RegisterPublic(api, passthrough(deps.LoginGuard))

	protected := api.Group("", passthrough(deps.Session), passthrough(deps.Authorize))
	deps.Auth.Register(protected)
	deps.Dashboard.Register(protected)
	deps.Classes.Register(protected)
	deps.Assignments.RegisterTeacher(protected)
	deps.BZB.RegisterTeacher(protected)
	deps.Materials.RegisterTeacher(protected)
}

// RegisterStudentPortal wires the student portal routes into app.
func RegisterStudentPortal(app *fiber.App, cfg config.Config, deps StudentDependencies) {
	api := apiGroup(app, cfg, "student", deps.HealthChecks)
	deps.Auth.RegisterPublic(api, passthrough(deps.LoginGuard))

	protected := api.Group("", passthrough(deps.Session), passthrough(deps.Authorize))
	deps.Auth.Register(protected)
	deps.Assignments.RegisterStudent(protected)
	deps.Grades.Register(protected)
	deps.BZB.RegisterStudent(protected)
	deps.Materials.RegisterStudent(protected)
}
