package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ParseLevel maps a config level name to a slog level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelName converts a PocketBase log level to a string
func LevelName(level int) string {
	switch slog.Level(level) {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL_%d", level)
	}
}

// DailyFilePath returns logs/<name>.YYYY-MM-DD.log
func DailyFilePath(dir, name string, now time.Time) string {
	return fmt.Sprintf("%s/%s.%s.log", dir, name, now.Format("2006-01-02"))
}

// rotateIfNeeded rotates filePath once it reaches maxSize (maxSize 0 forces rotation).
// Rotation strategy: app.log -> app.log.1 -> app.log.2 -> ... (keeps last maxBackups rotations)
func rotateIfNeeded(filePath string, maxSize int64, maxBackups int) error {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	if maxSize > 0 && info.Size() < maxSize {
		return nil
	}

	if maxBackups <= 0 {
		maxBackups = 5
	}

	// the oldest backup falls off the end
	os.Remove(fmt.Sprintf("%s.%d", filePath, maxBackups))
	for i := maxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", filePath, i)
		if _, err := os.Stat(oldPath); err == nil {
			os.Rename(oldPath, fmt.Sprintf("%s.%d", filePath, i+1))
		}
	}

	if err := os.Rename(filePath, filePath+".1"); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	return nil
}
