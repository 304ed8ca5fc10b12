package utils

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Display layouts used by both portals.
const (
	DateTimeLayout = "02.01.2006 15:04"
	DateLayout     = "02.01.2006"
	DueDateLayout  = "2006-01-02"
)

// FormatFileSize renders a byte count as B, KB, MB or GB with one decimal.
func FormatFileSize(size int64) string {
	const unit = 1024
	switch {
	case size < 0:
		return "0 B"
	case size < unit:
		return fmt.Sprintf("%d B", size)
	case size < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(size)/unit)
	case size < unit*unit*unit:
		return fmt.Sprintf("%.1f MB", float64(size)/(unit*unit))
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/(unit*unit*unit))
	}
}

// FormatDateTime renders t using DateTimeLayout, or an empty string for nil/zero values.
func FormatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateTimeLayout)
}

// FormatDate renders a calendar day using DateLayout.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// FileExtension derives an extension from a MIME type such as "application/pdf".
func FileExtension(mimeType string) string {
	mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	if idx := strings.LastIndex(mimeType, "/"); idx >= 0 && idx < len(mimeType)-1 {
		return mimeType[idx+1:]
	}
	return "file"
}

// SplitTags turns a comma-joined tag column into a list.
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// JoinTags stores a tag list as a single comma-joined column.
func JoinTags(tags []string) string {
	return strings.Join(SplitTags(strings.Join(tags, ",")), ",")
}

// SafeFileName keeps letters, digits, spaces, dashes and underscores.
func SafeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		case r > 127 && unicode.IsLetter(r):
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return "file"
	}
	return cleaned
}
