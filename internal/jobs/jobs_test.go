package jobs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"mohaa-portal/internal/database"
	"mohaa-portal/internal/query"
	"mohaa-portal/internal/statsapi"

	"github.com/pocketbase/pocketbase/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "mohaa-portal/migrations"
)

func setupTestApp(t *testing.T) *tests.TestApp {
	t.Helper()

	testApp, err := tests.NewTestApp(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(testApp.Cleanup)
	return testApp
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePoller map[string]*query.ServerStatus

func (f fakePoller) QueryAll(ctx context.Context) map[string]*query.ServerStatus {
	return f
}

func TestPollServersRecordsSnapshots(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	pool := fakePoller{
		"10.0.0.1:12203": {
			Address: "10.0.0.1:12203",
			Online:  true,
			Status: &query.Status{
				Hostname:   "^1Red ^7Server",
				Map:        "dm/mohdm6",
				Gametype:   "Free-For-All",
				MaxPlayers: 20,
				Players:    []query.Player{{Name: "a"}, {Name: "b"}},
			},
			LastQuery: time.Now(),
		},
		"10.0.0.2:12203": {
			Address:   "10.0.0.2:12203",
			Name:      "Down Server",
			Error:     errors.New("i/o timeout"),
			LastQuery: time.Now(),
		},
	}

	online := pollServers(ctx, app, pool, discardLogger())
	assert.Equal(t, 1, online)

	up, err := database.GetServerByAddress(ctx, app, "10.0.0.1:12203")
	require.NoError(t, err)
	assert.True(t, up.Online)
	assert.Equal(t, "Red Server", up.Name)
	assert.Equal(t, 2, up.Players)
	assert.Equal(t, "dm/mohdm6", up.Map)

	down, err := database.GetServerByAddress(ctx, app, "10.0.0.2:12203")
	require.NoError(t, err)
	assert.False(t, down.Online)
	assert.Equal(t, "Down Server", down.Name)

	history, err := database.PlayerHistory(ctx, app, up.ID, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPollServersWithoutPool(t *testing.T) {
	app := setupTestApp(t)
	assert.Equal(t, 0, pollServers(context.Background(), app, nil, discardLogger()))
}

func TestPruneOldDataRunsInTransaction(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	require.NoError(t, database.RecordPoll(ctx, app, database.Poll{Address: "10.0.0.3:12203", Online: true}))

	res, err := pruneOldData(ctx, app, discardLogger(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, res.Snapshots, "fresh snapshots are kept")

	res, err = pruneOldData(ctx, app, discardLogger(), time.Now().Add(SnapshotRetention+time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Snapshots)
}

type fakeWarmer struct {
	calls atomic.Int32
	fail  bool
}

func (f *fakeWarmer) GetGlobalStats(ctx context.Context) (*statsapi.GlobalStats, error) {
	f.calls.Add(1)
	if f.fail {
		return nil, errors.New("api down")
	}
	return &statsapi.GlobalStats{}, nil
}

func (f *fakeWarmer) GetLeaderboard(ctx context.Context, stat string, limit, offset int, period string) (*statsapi.Leaderboard, error) {
	f.calls.Add(1)
	return &statsapi.Leaderboard{}, nil
}

func (f *fakeWarmer) GetServers(ctx context.Context) ([]statsapi.Server, error) {
	f.calls.Add(1)
	return nil, nil
}

func TestWarmCache(t *testing.T) {
	w := &fakeWarmer{}
	require.NoError(t, warmCache(context.Background(), w))
	assert.EqualValues(t, 3, w.calls.Load())

	failing := &fakeWarmer{fail: true}
	assert.Error(t, warmCache(context.Background(), failing))
}

func TestRegisterJobs(t *testing.T) {
	app := setupTestApp(t)
	logger := discardLogger()

	RegisterServerStatusPoll(app, fakePoller{}, logger)
	RegisterPruneOldData(app, logger)
	assert.True(t, RegisterCacheWarmer(app, &fakeWarmer{}, time.Minute, logger))

	ids := map[string]string{}
	for _, job := range app.Cron().Jobs() {
		ids[job.Id()] = job.Expression()
	}
	for _, id := range []string{"server_status_poll", "prune_old_data", "warm_cache"} {
		assert.Contains(t, ids, id, "missing cron job %s", id)
	}
	assert.Equal(t, WarmSchedule, ids["warm_cache"])
}

func TestCacheWarmerKeepsUpWithTTL(t *testing.T) {
	app := setupTestApp(t)

	assert.False(t, RegisterCacheWarmer(app, &fakeWarmer{}, 30*time.Second, discardLogger()))
	for _, job := range app.Cron().Jobs() {
		assert.NotEqual(t, "warm_cache", job.Id())
	}

	// the default 60s ttl must not lapse between one-minute runs
	assert.True(t, RegisterCacheWarmer(app, &fakeWarmer{}, 60*time.Second, discardLogger()))
}

func TestJobLogsCarryComponentOnce(t *testing.T) {
	app := setupTestApp(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil)).With("component", "PRUNE_JOB")

	_, err := pruneOldData(context.Background(), app, logger, time.Now())
	require.NoError(t, err)

	out := strings.TrimSpace(buf.String())
	require.NotEmpty(t, out)
	for _, line := range strings.Split(out, "\n") {
		assert.Equal(t, 1, strings.Count(line, "component="), line)
	}
}
