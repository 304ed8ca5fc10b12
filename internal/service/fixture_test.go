package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/models"
	"github.com/noah-isme/qazaq-teachers/internal/repository"
	"github.com/noah-isme/qazaq-teachers/pkg/events"
)

var fixedNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

type portalFixture struct {
	db          *gorm.DB
	validate    *validator.Validate
	logger      zerolog.Logger
	teachers    repository.TeacherRepository
	classes     repository.ClassRepository
	students    repository.StudentRepository
	logins      repository.StudentLoginRepository
	materials   repository.VisualMaterialRepository
	bzb         repository.BZBTaskRepository
	assignments repository.AssignmentRepository
}

func newPortalFixture(t *testing.T) *portalFixture {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Teacher{},
		&models.Class{},
		&models.Student{},
		&models.StudentLogin{},
		&models.VisualMaterial{},
		&models.BZBTask{},
		&models.Assignment{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return &portalFixture{
		db:          db,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      zerolog.Nop(),
		teachers:    repository.NewTeacherRepository(db),
		classes:     repository.NewClassRepository(db),
		students:    repository.NewStudentRepository(db),
		logins:      repository.NewStudentLoginRepository(db),
		materials:   repository.NewVisualMaterialRepository(db),
		bzb:         repository.NewBZBTaskRepository(db),
		assignments: repository.NewAssignmentRepository(db),
	}
}

func (f *portalFixture) teacher(t *testing.T, username, fullName string) models.Teacher {
	t.Helper()
	teacher := models.Teacher{Username: username, PasswordDigest: "x", FullName: fullName}
	require.NoError(t, f.teachers.Create(context.Background(), &teacher))
	return teacher
}

func (f *portalFixture) class(t *testing.T, teacherID uint, name string) models.Class {
	t.Helper()
	class := models.Class{TeacherID: teacherID, Name: name, Subject: "Mathematics"}
	require.NoError(t, f.classes.Create(context.Background(), &class))
	return class
}

func (f *portalFixture) student(t *testing.T, classID uint, fullName, code string) models.Student {
	t.Helper()
	student := models.Student{ClassID: classID, FullName: fullName, StudentCode: code, GradePoints: 7, AcademicPerformance: models.PerformanceGood}
	require.NoError(t, f.students.Create(context.Background(), &student))
	return student
}

func (f *portalFixture) assignmentService(publisher events.Publisher) AssignmentService {
	svc := NewAssignmentService(f.assignments, f.students, f.teachers, f.validate, publisher, 1024, f.logger)
	svc.(*assignmentService).now = func() time.Time { return fixedNow }
	return svc
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.AssignmentEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.AssignmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Type)
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
