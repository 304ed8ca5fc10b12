package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Connect opens the relational store named by url. Postgres URLs use the
// postgres driver; anything else is treated as a SQLite DSN, with an optional
// sqlite:// prefix stripped.
func Connect(url string) (*gorm.DB, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil, fmt.Errorf("database url must not be empty")
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return ConnectPostgres(trimmed)
	case strings.HasPrefix(lower, "sqlite://"):
		return ConnectSQLite(trimmed[len("sqlite://"):])
	default:
		return ConnectSQLite(trimmed)
	}
}
