package database

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/qazaq-teachers/internal/models"
)

// MigrationTable records applied schema versions.
const MigrationTable = "schema_migrations"

// studentTaskColumns lists the assignment fields that stores created by the
// legacy application may be missing.
var studentTaskColumns = []string{
	"TaskFileSize",
	"StudentAnswerFileName",
	"StudentAnswerFileSize",
	"Points",
	"DueDate",
	"TaskFileType",
	"TaskFileName",
	"TeacherName",
	"StudentName",
	"ClassName",
	"Tags",
	"Difficulty",
	"CheckedDate",
	"StudentAnswerFileType",
	"Status",
	"TeacherFeedback",
	"Score",
	"StudentAnswerText",
	"StudentAnswerFile",
	"StudentSubmittedDate",
	"AssignedDate",
}

var studentTaskIndexes = []string{
	"idx_student_tasks_student_id",
	"idx_student_tasks_teacher_id",
	"idx_student_tasks_status",
	"idx_student_tasks_due_date",
}

// legacyLabels maps values written by the legacy application onto the
// labels used today.
var legacyLabels = []struct {
	table  string
	column string
	from   string
	to     string
}{
	{"student_tasks", "status", "Тағайындалды", models.AssignmentStatusAssigned},
	{"student_tasks", "status", "Жіберілді", models.AssignmentStatusSubmitted},
	{"student_tasks", "status", "Тексерілді", models.AssignmentStatusReviewed},
	{"student_tasks", "difficulty", "Оңай", models.DifficultyEasy},
	{"student_tasks", "difficulty", "Орташа", models.DifficultyMedium},
	{"student_tasks", "difficulty", "Қиын", models.DifficultyHard},
	{"bzb_tasks", "difficulty_level", "Оңай", models.DifficultyEasy},
	{"bzb_tasks", "difficulty_level", "Орташа", models.DifficultyMedium},
	{"bzb_tasks", "difficulty_level", "Қиын", models.DifficultyHard},
	{"students", "academic_performance", "Өте жақсы", models.PerformanceExcellent},
	{"students", "academic_performance", "Жақсы", models.PerformanceGood},
	{"students", "academic_performance", "Орташа", models.PerformanceAverage},
	{"students", "academic_performance", "Қанағаттанарлық", models.PerformanceSatisfactory},
	{"students", "academic_performance", "Әлсіз", models.PerformanceWeak},
}

// credentialTables hold a password digest that the legacy application kept in
// a plain "password" column as unsalted SHA-256 hex.
var credentialTables = []interface{}{&models.Teacher{}, &models.StudentLogin{}}

// upgradeCredentials moves legacy SHA-256 digests into password_digest with
// models.LegacyDigestPrefix so the next successful sign-in rehashes them.
func upgradeCredentials(tx *gorm.DB, table interface{}) error {
	stmt := &gorm.Statement{DB: tx}
	if err := stmt.Parse(table); err != nil {
		return err
	}
	name := stmt.Schema.Table

	if !tx.Migrator().HasTable(table) {
		return nil
	}
	if !tx.Migrator().HasColumn(table, "password_digest") {
		if err := tx.Exec("ALTER TABLE " + name + " ADD COLUMN password_digest VARCHAR(255) NOT NULL DEFAULT ''").Error; err != nil {
			return fmt.Errorf("add %s.password_digest: %w", name, err)
		}
	}
	if !tx.Migrator().HasColumn(table, "password") {
		return nil
	}

	if err := tx.Exec(
		"UPDATE "+name+" SET password_digest = ? || password WHERE password_digest = '' AND password IS NOT NULL",
		models.LegacyDigestPrefix,
	).Error; err != nil {
		return fmt.Errorf("copy %s.password: %w", name, err)
	}
	if err := tx.Exec("ALTER TABLE " + name + " DROP COLUMN password").Error; err != nil {
		return fmt.Errorf("drop %s.password: %w", name, err)
	}
	return nil
}

// Migrations returns the ordered schema migrations. IDs must never be
// reordered or reused once released.
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "0001_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				tables := []interface{}{
					&models.Teacher{},
					&models.Class{},
					&models.Student{},
					&models.StudentLogin{},
					&models.VisualMaterial{},
					&models.BZBTask{},
					&models.Assignment{},
				}
				for _, table := range tables {
					if tx.Migrator().HasTable(table) {
						continue
					}
					if err := tx.Migrator().CreateTable(table); err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&models.Assignment{},
					&models.BZBTask{},
					&models.VisualMaterial{},
					&models.StudentLogin{},
					&models.Student{},
					&models.Class{},
					&models.Teacher{},
				)
			},
		},
		{
			ID: "0002_backfill_student_task_columns",
			Migrate: func(tx *gorm.DB) error {
				for _, column := range studentTaskColumns {
					if tx.Migrator().HasColumn(&models.Assignment{}, column) {
						continue
					}
					if err := tx.Migrator().AddColumn(&models.Assignment{}, column); err != nil {
						return fmt.Errorf("add student_tasks column %s: %w", column, err)
					}
				}
				return nil
			},
		},
		{
			ID: "0003_student_task_indexes",
			Migrate: func(tx *gorm.DB) error {
				for _, index := range studentTaskIndexes {
					if tx.Migrator().HasIndex(&models.Assignment{}, index) {
						continue
					}
					if err := tx.Migrator().CreateIndex(&models.Assignment{}, index); err != nil {
						return fmt.Errorf("create index %s: %w", index, err)
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				for _, index := range studentTaskIndexes {
					if !tx.Migrator().HasIndex(&models.Assignment{}, index) {
						continue
					}
					if err := tx.Migrator().DropIndex(&models.Assignment{}, index); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			ID: "0004_visual_material_public_url",
			Migrate: func(tx *gorm.DB) error {
				if tx.Migrator().HasColumn(&models.VisualMaterial{}, "PublicURL") {
					return nil
				}
				return tx.Migrator().AddColumn(&models.VisualMaterial{}, "PublicURL")
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropColumn(&models.VisualMaterial{}, "PublicURL")
			},
		},
		{
			ID: "0005_normalize_legacy_labels",
			Migrate: func(tx *gorm.DB) error {
				for _, label := range legacyLabels {
					if !tx.Migrator().HasTable(label.table) {
						continue
					}
					if err := tx.Table(label.table).
						Where(label.column+" = ?", label.from).
						Update(label.column, label.to).Error; err != nil {
						return fmt.Errorf("normalize %s.%s: %w", label.table, label.column, err)
					}
				}
				if tx.Dialector.Name() == "sqlite" {
					if err := tx.Exec("UPDATE student_tasks SET due_date = NULL WHERE due_date = ''").Error; err != nil {
						return fmt.Errorf("normalize student_tasks.due_date: %w", err)
					}
				}
				return nil
			},
		},
		{
			ID: "0006_password_digests",
			Migrate: func(tx *gorm.DB) error {
				for _, table := range credentialTables {
					if err := upgradeCredentials(tx, table); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}

// Migrate applies every pending migration in order.
func Migrate(db *gorm.DB, logger zerolog.Logger) error {
	options := *gormigrate.DefaultOptions
	options.TableName = MigrationTable

	m := gormigrate.New(db, &options, Migrations())
	if err := m.Migrate(); err != nil {
		logger.Error().Err(err).Msg("schema migration failed")
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info().Int("migrations", len(Migrations())).Msg("schema up to date")
	return nil
}
