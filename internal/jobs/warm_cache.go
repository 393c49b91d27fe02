package jobs

import (
	"context"
	"log/slog"
	"time"

	"mohaa-portal/internal/statsapi"

	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/sync/errgroup"
)

// WarmSchedule runs the warmer every minute, the cron's finest step.
const WarmSchedule = "* * * * *"

// Warmer is the subset of the stats API client behind the busiest pages.
// Live matches are left out: their cache expires in seconds, well inside
// one warm interval.
type Warmer interface {
	GetGlobalStats(ctx context.Context) (*statsapi.GlobalStats, error)
	GetLeaderboard(ctx context.Context, stat string, limit, offset int, period string) (*statsapi.Leaderboard, error)
	GetServers(ctx context.Context) ([]statsapi.Server, error)
}

// RegisterCacheWarmer sets up a cron job that prefetches the landing page
// data so the first visitor after expiry does not wait on the API. A cache
// ttl shorter than the one-minute interval would expire between runs, so
// the job is skipped then.
func RegisterCacheWarmer(app core.App, api Warmer, ttl time.Duration, logger *slog.Logger) bool {
	if ttl < time.Minute {
		logger.Info("Cache warmer disabled, cache ttl is shorter than a minute", "ttl", ttl)
		return false
	}

	app.Cron().MustAdd("warm_cache", WarmSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := warmCache(ctx, api); err != nil {
			logger.Warn("Cache warm failed", "error", err)
			return
		}
		logger.Debug("Cache warmed")
	})

	logger.Info("Registered cron job to warm the API cache every minute", "ttl", ttl)
	return true
}

func warmCache(ctx context.Context, api Warmer) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := api.GetGlobalStats(ctx)
		return err
	})
	g.Go(func() error {
		_, err := api.GetLeaderboard(ctx, "kills", 10, 0, "all")
		return err
	})
	g.Go(func() error {
		_, err := api.GetServers(ctx)
		return err
	})

	return g.Wait()
}
