package jobs

import (
	"context"
	"log/slog"
	"time"

	"mohaa-portal/internal/database"

	"github.com/pocketbase/pocketbase/core"
)

// SnapshotRetention is how long server snapshots are kept.
const SnapshotRetention = 30 * 24 * time.Hour

// RegisterPruneOldData sets up a cron job that deletes snapshots older than
// 30 days and expired claim codes and device tokens.
func RegisterPruneOldData(app core.App, logger *slog.Logger) {
	scheduler := app.Cron()

	// Run prune job daily at 3 AM UTC
	scheduler.MustAdd("prune_old_data", "0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		pruneOldData(ctx, app, logger, time.Now())
	})

	logger.Info("Registered cron job to prune old data daily at 3 AM UTC")
}

func pruneOldData(ctx context.Context, app core.App, logger *slog.Logger, now time.Time) (database.PruneResult, error) {
	logger.Info("Starting prune job")

	var res database.PruneResult
	err := app.RunInTransaction(func(txApp core.App) error {
		var err error
		res, err = database.PruneOldData(ctx, txApp, now, SnapshotRetention)
		return err
	})
	if err != nil {
		logger.Error("Prune job failed", "error", err)
		return res, err
	}

	logger.Info("Prune job completed successfully",
		"snapshots", res.Snapshots,
		"claim_codes", res.ClaimCodes,
		"device_tokens", res.DeviceTokens,
		"cutoff_date", now.Add(-SnapshotRetention).Format("2006-01-02"))

	return res, nil
}
