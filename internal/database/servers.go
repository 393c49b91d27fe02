package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

const (
	serversCollection   = "game_servers"
	snapshotsCollection = "server_snapshots"
)

var ErrServerNotFound = errors.New("server not found")

// GameServer is a locally polled server.
type GameServer struct {
	ID         string
	Name       string
	Address    string
	Online     bool
	Map        string
	Gametype   string
	Players    int
	MaxPlayers int
	LastSeen   time.Time
}

// Snapshot is one poll of one server.
type Snapshot struct {
	ServerID string
	Players  int
	Online   bool
	Map      string
	Created  time.Time
}

// HourBucket is the average and peak population for one hour of day.
type HourBucket struct {
	Hour       int     `db:"hour"`
	AvgPlayers float64 `db:"avg_players"`
	MaxPlayers int     `db:"max_players"`
	Samples    int     `db:"samples"`
}

// Poll is the outcome of one status query, ready to persist.
type Poll struct {
	Address    string
	Name       string
	Online     bool
	Map        string
	Gametype   string
	Players    int
	MaxPlayers int
	At         time.Time
}

func serverFromRecord(r *core.Record) GameServer {
	return GameServer{
		ID:         r.Id,
		Name:       r.GetString("name"),
		Address:    r.GetString("address"),
		Online:     r.GetBool("online"),
		Map:        r.GetString("map"),
		Gametype:   r.GetString("gametype"),
		Players:    r.GetInt("players"),
		MaxPlayers: r.GetInt("max_players"),
		LastSeen:   r.GetDateTime("last_seen").Time(),
	}
}

// dateString formats t the way PocketBase stores date and autodate fields,
// so raw SQL comparisons against them sort correctly.
func dateString(t time.Time) string {
	dt, _ := types.ParseDateTime(t.UTC())
	return dt.String()
}

// GetServers returns every locally known server ordered by name.
func GetServers(ctx context.Context, pbApp core.App) ([]GameServer, error) {
	records, err := pbApp.FindRecordsByFilter(serversCollection, "", "name", 0, 0)
	if err != nil {
		return nil, err
	}

	servers := make([]GameServer, 0, len(records))
	for _, r := range records {
		servers = append(servers, serverFromRecord(r))
	}
	return servers, nil
}

func GetServerByAddress(ctx context.Context, pbApp core.App, address string) (*GameServer, error) {
	record, err := pbApp.FindFirstRecordByFilter(
		serversCollection,
		"address = {:address}",
		dbx.Params{"address": address},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrServerNotFound, address)
	}
	s := serverFromRecord(record)
	return &s, nil
}

// RecordPoll updates the server row and appends a snapshot in one
// transaction. Unknown addresses are created.
func RecordPoll(ctx context.Context, pbApp core.App, poll Poll) error {
	if poll.At.IsZero() {
		poll.At = time.Now()
	}

	return pbApp.RunInTransaction(func(txApp core.App) error {
		servers, err := txApp.FindCollectionByNameOrId(serversCollection)
		if err != nil {
			return err
		}

		record, err := txApp.FindFirstRecordByFilter(
			serversCollection,
			"address = {:address}",
			dbx.Params{"address": poll.Address},
		)
		if err != nil {
			record = core.NewRecord(servers)
			record.Set("address", poll.Address)
			record.Set("name", poll.Name)
		}

		record.Set("online", poll.Online)
		record.Set("players", poll.Players)
		if poll.Online {
			record.Set("map", poll.Map)
			record.Set("gametype", poll.Gametype)
			record.Set("max_players", poll.MaxPlayers)
			record.Set("last_seen", poll.At)
			if poll.Name != "" && record.GetString("name") == "" {
				record.Set("name", poll.Name)
			}
		}
		if err := txApp.Save(record); err != nil {
			return fmt.Errorf("failed to save server %s: %w", poll.Address, err)
		}

		snapshots, err := txApp.FindCollectionByNameOrId(snapshotsCollection)
		if err != nil {
			return err
		}
		snap := core.NewRecord(snapshots)
		snap.Set("server", record.Id)
		snap.Set("players", poll.Players)
		snap.Set("online", poll.Online)
		snap.Set("map", poll.Map)
		if err := txApp.Save(snap); err != nil {
			return fmt.Errorf("failed to save snapshot for %s: %w", poll.Address, err)
		}
		return nil
	})
}

// PlayerHistory returns snapshots for serverID since the given time, oldest first.
func PlayerHistory(ctx context.Context, pbApp core.App, serverID string, since time.Time) ([]Snapshot, error) {
	records, err := pbApp.FindRecordsByFilter(
		snapshotsCollection,
		"server = {:server} && created >= {:since}",
		"created",
		0, 0,
		dbx.Params{"server": serverID, "since": dateString(since)},
	)
	if err != nil {
		return nil, err
	}

	out := make([]Snapshot, 0, len(records))
	for _, r := range records {
		out = append(out, Snapshot{
			ServerID: r.GetString("server"),
			Players:  r.GetInt("players"),
			Online:   r.GetBool("online"),
			Map:      r.GetString("map"),
			Created:  r.GetDateTime("created").Time(),
		})
	}
	return out, nil
}

// PeakHours buckets snapshots by UTC hour of day. Hours with no samples are
// returned with zero values so the result always has 24 entries.
func PeakHours(ctx context.Context, pbApp core.App, serverID string, since time.Time) ([]HourBucket, error) {
	var rows []HourBucket

	err := pbApp.DB().
		NewQuery(`
			SELECT
				CAST(strftime('%H', created) AS INTEGER) as hour,
				AVG(players) as avg_players,
				MAX(players) as max_players,
				COUNT(*) as samples
			FROM server_snapshots
			WHERE server = {:server} AND created >= {:since} AND online = TRUE
			GROUP BY hour
			ORDER BY hour
		`).
		Bind(dbx.Params{"server": serverID, "since": dateString(since)}).
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, err
	}

	buckets := make([]HourBucket, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}
	for _, r := range rows {
		if r.Hour >= 0 && r.Hour < 24 {
			buckets[r.Hour] = r
		}
	}
	return buckets, nil
}

// Uptime is the share of snapshots since the given time where the server
// answered, as a percentage. No snapshots means 0.
func Uptime(ctx context.Context, pbApp core.App, serverID string, since time.Time) (float64, error) {
	var row struct {
		Total  int `db:"total"`
		Online int `db:"online_count"`
	}

	err := pbApp.DB().
		NewQuery(`
			SELECT
				COUNT(*) as total,
				COALESCE(SUM(CASE WHEN online THEN 1 ELSE 0 END), 0) as online_count
			FROM server_snapshots
			WHERE server = {:server} AND created >= {:since}
		`).
		Bind(dbx.Params{"server": serverID, "since": dateString(since)}).
		WithContext(ctx).
		One(&row)
	if err != nil {
		return 0, err
	}
	if row.Total == 0 {
		return 0, nil
	}
	return float64(row.Online) / float64(row.Total) * 100, nil
}
