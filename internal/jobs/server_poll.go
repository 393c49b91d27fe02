package jobs

import (
	"context"
	"log/slog"
	"time"

	"mohaa-portal/internal/database"
	"mohaa-portal/internal/query"
	"mohaa-portal/internal/stats"

	"github.com/pocketbase/pocketbase/core"
)

// StatusPoller is the part of query.ServerPool the poll job needs.
type StatusPoller interface {
	QueryAll(ctx context.Context) map[string]*query.ServerStatus
}

// RegisterServerStatusPoll sets up a cron job that queries every configured
// game server each minute and records the result as a snapshot.
func RegisterServerStatusPoll(app core.App, pool StatusPoller, logger *slog.Logger) {
	scheduler := app.Cron()

	scheduler.MustAdd("server_status_poll", "* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pollServers(ctx, app, pool, logger)
	})

	logger.Info("Registered cron job to poll server status every minute")
}

// pollServers queries all servers and persists one snapshot per server.
// It returns how many servers answered.
func pollServers(ctx context.Context, app core.App, pool StatusPoller, logger *slog.Logger) int {
	if pool == nil {
		logger.Warn("Query pool not available")
		return 0
	}

	results := pool.QueryAll(ctx)
	online := 0

	for address, status := range results {
		poll := database.Poll{
			Address: address,
			Name:    status.Name,
			Online:  status.Online && status.Error == nil,
			At:      status.LastQuery,
		}

		if poll.Online && status.Status != nil {
			online++
			poll.Players = status.PlayerCount()
			poll.MaxPlayers = status.Status.MaxPlayers
			poll.Map = status.Status.Map
			poll.Gametype = status.Status.Gametype
			if poll.Name == "" {
				poll.Name = stats.StripColors(status.Status.Hostname)
			}
		} else {
			logger.Debug("Server offline", "address", address, "error", status.Error)
		}

		if err := database.RecordPoll(ctx, app, poll); err != nil {
			logger.Error("Failed to record poll", "address", address, "error", err)
		}
	}

	logger.Debug("Polled servers", "total", len(results), "online", online)
	return online
}
