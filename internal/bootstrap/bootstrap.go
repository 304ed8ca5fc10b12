package bootstrap

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/config"
	"github.com/noah-isme/qazaq-teachers/internal/handler"
	"github.com/noah-isme/qazaq-teachers/internal/middleware"
	"github.com/noah-isme/qazaq-teachers/internal/repository"
	"github.com/noah-isme/qazaq-teachers/internal/router"
	"github.com/noah-isme/qazaq-teachers/internal/service"
	"github.com/noah-isme/qazaq-teachers/internal/utils"
	"github.com/noah-isme/qazaq-teachers/pkg/events"
)

// Infra holds the external connections shared by both portals.
type Infra struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Publisher events.Publisher
	Mirror    service.MaterialMirror
}

// Services are the domain services built over Infra.
type Services struct {
	Accounts    service.AccountService
	Sessions    service.SessionService
	Classes     service.ClassService
	Students    service.StudentService
	Assignments service.AssignmentService
	BZB         service.BZBService
	Materials   service.MaterialService
	Grades      service.GradeService
}

// NewServices wires repositories and services.
func NewServices(cfg config.Config, infra Infra, logger zerolog.Logger) Services {
	validate := validator.New(validator.WithRequiredStructEnabled())
	maxUpload := cfg.UploadMaxBytes()

	teachers := repository.NewTeacherRepository(infra.DB)
	classes := repository.NewClassRepository(infra.DB)
	students := repository.NewStudentRepository(infra.DB)
	logins := repository.NewStudentLoginRepository(infra.DB)
	materials := repository.NewVisualMaterialRepository(infra.DB)
	bzbTasks := repository.NewBZBTaskRepository(infra.DB)
	assignments := repository.NewAssignmentRepository(infra.DB)

	sessions := service.NewSessionService(infra.Redis, cfg.SessionSecret, cfg.SessionTTL, logger)

	return Services{
		Accounts:    service.NewAccountService(teachers, students, logins, validate, logger),
		Sessions:    sessions,
		Classes:     service.NewClassService(classes, students, sessions, validate, logger),
		Students:    service.NewStudentService(classes, students, logins, sessions, validate, logger),
		Assignments: service.NewAssignmentService(assignments, students, teachers, validate, infra.Publisher, maxUpload, logger),
		BZB:         service.NewBZBService(bzbTasks, classes, validate, maxUpload, logger),
		Materials:   service.NewMaterialService(materials, classes, infra.Mirror, validate, maxUpload, logger),
		Grades:      service.NewGradeService(students, assignments, logger),
	}
}

// NewTeacherApp builds the teacher portal application.
func NewTeacherApp(cfg config.Config, infra Infra, logger zerolog.Logger) *fiber.App {
	services := NewServices(cfg, infra, logger)
	app := newApp(cfg, "teacher", logger)
	maxUpload := cfg.UploadMaxBytes()

	router.RegisterTeacherPortal(app, cfg, router.TeacherDependencies{
		Auth:         handler.NewAuthHandler(services.Accounts, services.Sessions, cookieConfig(cfg, service.RoleTeacher), service.RoleTeacher, logger),
		Dashboard:    handler.NewDashboardHandler(services.Classes, services.Assignments, logger),
		Classes:      handler.NewClassHandler(services.Classes, services.Students, logger),
		Assignments:  handler.NewAssignmentHandler(services.Assignments, maxUpload, logger),
		BZB:          handler.NewBZBHandler(services.BZB, services.Accounts, maxUpload, logger),
		Materials:    handler.NewMaterialHandler(services.Materials, services.Accounts, maxUpload, logger),
		Session:      sessionGuard(cfg, services, service.RoleTeacher),
		Authorize:    middleware.RequireRole(service.RoleTeacher),
		LoginGuard:   middleware.LoginRateLimit("teacher", cfg.LoginRateLimit, time.Minute),
		HealthChecks: healthChecks(infra),
	})
	return app
}

// NewStudentApp builds the student portal application.
func NewStudentApp(cfg config.Config, infra Infra, logger zerolog.Logger) *fiber.App {
	services := NewServices(cfg, infra, logger)
	app := newApp(cfg, "student", logger)
	maxUpload := cfg.UploadMaxBytes()

	router.RegisterStudentPortal(app, cfg, router.StudentDependencies{
		Auth:         handler.NewAuthHandler(services.Accounts, services.Sessions, cookieConfig(cfg, service.RoleStudent), service.RoleStudent, logger),
		Assignments:  handler.NewAssignmentHandler(services.Assignments, maxUpload, logger),
		Grades:       handler.NewGradeHandler(services.Grades, logger),
		BZB:          handler.NewBZBHandler(services.BZB, services.Accounts, maxUpload, logger),
		Materials:    handler.NewMaterialHandler(services.Materials, services.Accounts, maxUpload, logger),
		Session:      sessionGuard(cfg, services, service.RoleStudent),
		Authorize:    middleware.RequireRole(service.RoleStudent),
		LoginGuard:   middleware.LoginRateLimit("student", cfg.LoginRateLimit, time.Minute),
		HealthChecks: healthChecks(infra),
	})
	return app
}

func newApp(cfg config.Config, portal string, logger zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName + " " + portal,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.UploadMaxBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fiberErr, ok := err.(*fiber.Error); ok {
				code = fiberErr.Code
			}
			return utils.SendError(c, code, err.Error())
		},
	})

	portalLogger := logger.With().Str("portal", portal).Logger()
	middleware.Register(app, middleware.Config{
		Portal:    portal,
		Logger:    &portalLogger,
		AccessLog: cfg.AppEnv == "development",
	})
	return app
}

// SessionCookieName returns the session cookie name for one portal.
func SessionCookieName(cfg config.Config, portal string) string {
	return cfg.SessionCookieName + "_" + portal
}

func cookieConfig(cfg config.Config, portal string) handler.CookieConfig {
	return handler.CookieConfig{
		Name:   SessionCookieName(cfg, portal),
		Secure: cfg.SessionSecureCookie,
		TTL:    cfg.SessionTTL,
	}
}

func sessionGuard(cfg config.Config, services Services, role string) fiber.Handler {
	return middleware.SessionProtected(middleware.SessionConfig{
		Sessions:   services.Sessions,
		CookieName: SessionCookieName(cfg, role),
	})
}

func healthChecks(infra Infra) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{}
	if infra.DB != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := infra.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if infra.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return infra.Redis.Ping(ctx).Err()
		}
	}
	return checks
}
