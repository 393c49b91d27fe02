package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"mohaa-portal/internal/logger"

	"github.com/pocketbase/pocketbase/core"
)

const fileWriterKey = "logger:filewriter"

// setupLogger mirrors PocketBase log entries into a daily JSON log file.
// This must be called AFTER app.Config is loaded
func (app *App) setupLogger() error {
	if app.Config == nil {
		return fmt.Errorf("config not loaded")
	}

	logCfg := app.Config.Logging
	level := logger.ParseLevel(logCfg.Level)
	writerCfg := logger.FileWriterConfig{
		FilePath:   logger.DailyFilePath("logs", "mohaa-portal", time.Now()),
		MaxSize:    int64(logCfg.MaxSizeMB) * 1024 * 1024,
		MaxBackups: logCfg.MaxBackups,
	}

	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		if fw, ok := app.Store().Get(fileWriterKey).(*logger.FileWriter); ok {
			if err := fw.Close(); err != nil {
				app.Logger().Error("Failed to close log file writer", "component", "APP", "error", err)
			}
		}
		return e.Next()
	})

	// The writer is opened on the first log entry so CLI commands that never
	// log leave no empty files behind.
	app.OnModelCreate(core.LogsTableName).BindFunc(func(e *core.ModelEvent) error {
		l, ok := e.Model.(*core.Log)
		if !ok || slog.Level(l.Level) < level {
			return e.Next()
		}

		writerVal := e.App.Store().GetOrSet(fileWriterKey, func() any {
			fw, err := logger.NewFileWriter(writerCfg)
			if err != nil {
				return err
			}
			return fw
		})
		if err, ok := writerVal.(error); ok {
			e.App.Store().Remove(fileWriterKey)
			fmt.Fprintf(os.Stderr, "Failed to create log file writer: %v\n", err)
			return e.Next()
		}

		_ = writerVal.(*logger.FileWriter).WriteLog(l)

		return e.Next()
	})

	return nil
}
