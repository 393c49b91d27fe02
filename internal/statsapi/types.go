package statsapi

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// GlobalStats is the /stats/global summary.
type GlobalStats struct {
	TotalPlayers   int64   `json:"total_players"`
	TotalKills     int64   `json:"total_kills"`
	TotalDeaths    int64   `json:"total_deaths"`
	TotalHeadshots int64   `json:"total_headshots"`
	TotalMatches   int64   `json:"total_matches"`
	ActivePlayers  int64   `json:"active_players_24h"`
	ServersOnline  int64   `json:"servers_online"`
	TotalPlaytime  float64 `json:"total_playtime_seconds"`
}

// ActivityPoint is one bucket of a player/server activity series.
type ActivityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Players   int       `json:"players"`
	Kills     int64     `json:"kills,omitempty"`
	Matches   int64     `json:"matches,omitempty"`
}

// PlayerStats is the aggregate record for a single GUID.
type PlayerStats struct {
	PlayerID       string    `json:"player_id"`
	PlayerName     string    `json:"player_name"`
	TotalKills     int64     `json:"total_kills"`
	TotalDeaths    int64     `json:"total_deaths"`
	TotalDamage    int64     `json:"total_damage"`
	TotalHeadshots int64     `json:"total_headshots"`
	ShotsFired     int64     `json:"shots_fired"`
	ShotsHit       int64     `json:"shots_hit"`
	MatchesPlayed  int64     `json:"matches_played"`
	MatchesWon     int64     `json:"matches_won"`
	PlayTime       float64   `json:"play_time_seconds"`
	LastActive     time.Time `json:"last_active"`

	KDRatio   float64 `json:"kd_ratio"`
	Accuracy  float64 `json:"accuracy"`
	HSPercent float64 `json:"headshot_percent"`
	WinRate   float64 `json:"win_rate"`

	LongRangeKills  int64 `json:"long_range_kills"`
	CloseRangeKills int64 `json:"close_range_kills"`
	WallbangKills   int64 `json:"wallbang_kills"`
	CollateralKills int64 `json:"collateral_kills"`

	KillsWhileProne     int64 `json:"kills_while_prone"`
	KillsWhileCrouching int64 `json:"kills_while_crouching"`
	KillsWhileStanding  int64 `json:"kills_while_standing"`
	KillsWhileMoving    int64 `json:"kills_while_moving"`

	TotalDistance  float64 `json:"total_distance_km"`
	SprintDistance float64 `json:"sprint_distance_km"`
	JumpCount      int64   `json:"jump_count"`
	CrouchTime     float64 `json:"crouch_time_seconds"`
	ProneTime      float64 `json:"prone_time_seconds"`

	ObjectivesCaptured int64   `json:"objectives_captured"`
	ObjectiveTime      float64 `json:"objective_time_seconds"`
	Score              int64   `json:"score"`
}

// WeaponStats is one weapon row, for a player or globally.
type WeaponStats struct {
	Weapon     string  `json:"weapon"`
	Kills      int64   `json:"kills"`
	Deaths     int64   `json:"deaths"`
	Damage     int64   `json:"damage"`
	Headshots  int64   `json:"headshots"`
	ShotsFired int64   `json:"shots_fired"`
	ShotsHit   int64   `json:"shots_hit"`
	Accuracy   float64 `json:"accuracy"`
}

// MapStats is one map row, for a player or globally.
type MapStats struct {
	MapName       string  `json:"map_name"`
	Kills         int64   `json:"kills"`
	Deaths        int64   `json:"deaths"`
	MatchesPlayed int64   `json:"matches_played"`
	MatchesWon    int64   `json:"matches_won"`
	WinRate       float64 `json:"win_rate"`
	AvgDuration   float64 `json:"avg_duration_seconds,omitempty"`
}

// GametypeStats is one game mode row.
type GametypeStats struct {
	Gametype      string  `json:"gametype"`
	MatchesPlayed int64   `json:"matches_played"`
	MatchesWon    int64   `json:"matches_won"`
	MatchesLost   int64   `json:"matches_lost"`
	WinRate       float64 `json:"win_rate"`
	TotalKills    int64   `json:"total_kills,omitempty"`
}

// LeaderboardEntry carries every stat a leaderboard can be ordered by.
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"id"`
	PlayerName string `json:"name"`

	Kills      int64   `json:"kills"`
	Deaths     int64   `json:"deaths"`
	Headshots  int64   `json:"headshots"`
	Accuracy   float64 `json:"accuracy"`
	ShotsFired int64   `json:"shots_fired"`
	ShotsHit   int64   `json:"shots_hit"`
	Damage     int64   `json:"damage"`

	Suicides  int64 `json:"suicides"`
	TeamKills int64 `json:"teamkills"`
	Roadkills int64 `json:"roadkills"`
	BashKills int64 `json:"bash_kills"`
	Grenades  int64 `json:"grenades_thrown"`

	Wins       int64 `json:"wins"`
	FFAWins    int64 `json:"ffa_wins"`
	TeamWins   int64 `json:"team_wins"`
	Losses     int64 `json:"losses"`
	Rounds     int64 `json:"rounds"`
	Objectives int64 `json:"objectives"`

	Distance float64 `json:"distance_km"`
	Jumps    int64   `json:"jumps"`
	Playtime int64   `json:"playtime_seconds"`

	// Value is the ordering stat for single-stat boards.
	Value float64 `json:"value,omitempty"`
}

// Leaderboard is one page of a global leaderboard.
type Leaderboard struct {
	Players []LeaderboardEntry `json:"players"`
	Total   int                `json:"total"`
	Page    int                `json:"page"`
}

type LeaderboardCardEntry struct {
	PlayerID     string  `json:"player_id"`
	PlayerName   string  `json:"player_name"`
	Value        float64 `json:"value"`
	Rank         int     `json:"rank"`
	DisplayValue string  `json:"display_value,omitempty"`
}

type LeaderboardCard struct {
	Title  string                 `json:"title"`
	Metric string                 `json:"metric"`
	Icon   string                 `json:"icon"`
	Top    []LeaderboardCardEntry `json:"top"`
}

// LeaderboardDashboard groups the cards shown on the leaderboard landing page.
type LeaderboardDashboard struct {
	Combat   map[string]LeaderboardCard `json:"combat"`
	GameFlow map[string]LeaderboardCard `json:"game_flow"`
	Niche    map[string]LeaderboardCard `json:"niche"`
}

// MatchSummary is a row in the recent matches list.
type MatchSummary struct {
	MatchID      string    `json:"match_id"`
	ServerID     string    `json:"server_id"`
	ServerName   string    `json:"server_name"`
	MapName      string    `json:"map_name"`
	Gametype     string    `json:"gametype"`
	Duration     float64   `json:"duration"`
	WinningTeam  string    `json:"winning_team"`
	AlliesScore  int       `json:"allies_score"`
	AxisScore    int       `json:"axis_score"`
	TotalRounds  int       `json:"total_rounds"`
	PlayerCount  int       `json:"player_count"`
	TotalKills   int64     `json:"total_kills"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	TournamentID string    `json:"tournament_id,omitempty"`
}

// MatchPlayer is one scoreboard line of a match.
type MatchPlayer struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Team       string `json:"team"`
	Kills      int64  `json:"kills"`
	Deaths     int64  `json:"deaths"`
	Headshots  int64  `json:"headshots"`
	Damage     int64  `json:"damage"`
	ShotsFired int64  `json:"shots_fired"`
	ShotsHit   int64  `json:"shots_hit"`
	Score      int64  `json:"score"`
}

// MatchDetails is the full match view.
type MatchDetails struct {
	MatchSummary
	Players  []MatchPlayer `json:"players"`
	Timeline []MatchEvent  `json:"timeline"`
	Weapons  []WeaponStats `json:"weapons"`
}

type MatchEvent struct {
	Time    float64 `json:"time"`
	Type    string  `json:"type"`
	Actor   string  `json:"actor"`
	Target  string  `json:"target,omitempty"`
	Weapon  string  `json:"weapon,omitempty"`
	Details string  `json:"details,omitempty"`
}

type HeatmapPoint struct {
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Count int     `json:"count"`
}

type HeatmapData struct {
	MapName string         `json:"map_name"`
	Type    string         `json:"type,omitempty"`
	Points  []HeatmapPoint `json:"points"`
}

// LiveMatch is a match currently in progress.
type LiveMatch struct {
	MatchID      string    `json:"match_id"`
	ServerID     string    `json:"server_id"`
	ServerName   string    `json:"server_name"`
	MapName      string    `json:"map_name"`
	Gametype     string    `json:"gametype"`
	AlliesScore  int       `json:"allies_score"`
	AxisScore    int       `json:"axis_score"`
	PlayerCount  int       `json:"player_count"`
	MaxPlayers   int       `json:"max_players"`
	RoundNumber  int       `json:"round_number"`
	StartedAt    time.Time `json:"started_at"`
	TournamentID string    `json:"tournament_id,omitempty"`
}

// MapDetails is the single map page.
type MapDetails struct {
	MapStats
	TopPlayers []LeaderboardEntry `json:"top_players"`
	Weapons    []WeaponStats      `json:"weapons"`
	Recent     []MatchSummary     `json:"recent_matches"`
}

// WeaponDetails is the single weapon page.
type WeaponDetails struct {
	WeaponStats
	TopPlayers []LeaderboardEntry `json:"top_players"`
	Maps       []MapStats         `json:"maps"`
}

type GametypeDetails struct {
	GametypeStats
	Maps       []MapStats         `json:"maps"`
	TopPlayers []LeaderboardEntry `json:"top_players"`
}

// Server is a game server known to the stats backend.
type Server struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	DisplayName    string    `json:"display_name"`
	Address        string    `json:"address"`
	Port           int       `json:"port"`
	IsOnline       bool      `json:"is_online"`
	CurrentPlayers int       `json:"current_players"`
	MaxPlayers     int       `json:"max_players"`
	CurrentMap     string    `json:"current_map"`
	Gametype       string    `json:"gametype"`
	Rank           int       `json:"rank"`
	TotalKills     int64     `json:"total_kills"`
	TotalMatches   int64     `json:"total_matches"`
	UniquePlayers  int64     `json:"unique_players"`
	AvgPlayers24h  float64   `json:"avg_players_24h"`
	PeakPlayers24h int       `json:"peak_players_24h"`
	UptimePercent  float64   `json:"uptime_percent"`
	LastSeen       time.Time `json:"last_seen"`
	Country        string    `json:"country"`
	Region         string    `json:"region"`
}

// Label prefers the display name.
func (s Server) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	if s.Name != "" {
		return s.Name
	}
	return s.Address
}

// ServerGlobalStats is the /servers/stats summary.
type ServerGlobalStats struct {
	TotalServers      int     `json:"total_servers"`
	OnlineServers     int     `json:"online_servers"`
	TotalPlayersNow   int     `json:"total_players_now"`
	TotalKillsToday   int64   `json:"total_kills_today"`
	TotalMatchesToday int64   `json:"total_matches_today"`
	PeakPlayersToday  int     `json:"peak_players_today"`
	AvgPlayersNow     float64 `json:"avg_players_now"`
	TotalKillsAllTime int64   `json:"total_kills_all_time"`
}

// LivePlayer is a player on a server right now.
type LivePlayer struct {
	Name   string `json:"name"`
	GUID   string `json:"guid"`
	Team   string `json:"team"`
	Score  int    `json:"score"`
	Kills  int    `json:"kills"`
	Deaths int    `json:"deaths"`
	Ping   int    `json:"ping"`
}

type ServerLive struct {
	ServerID    string       `json:"server_id"`
	MapName     string       `json:"map_name"`
	Gametype    string       `json:"gametype"`
	Players     []LivePlayer `json:"players"`
	AlliesScore int          `json:"allies_score"`
	AxisScore   int          `json:"axis_score"`
	MatchID     string       `json:"match_id"`
}

// HourBucket is one hour of day with its average and peak population.
type HourBucket struct {
	Hour       int     `json:"hour"`
	AvgPlayers float64 `json:"avg_players"`
	MaxPlayers int     `json:"max_players"`
}

type ServerLeaderboardEntry struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Value      float64 `json:"value"`
	Rank       int     `json:"rank"`
	Kills      int64   `json:"kills,omitempty"`
	Deaths     int64   `json:"deaths,omitempty"`
}

// Achievement is a definition from the achievement catalogue.
type Achievement struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	IconURL     string  `json:"icon_url"`
	Tier        int     `json:"tier"`
	Points      int     `json:"points"`
	UnlockCount int     `json:"unlock_count"`
	UnlockRate  float64 `json:"unlock_rate"`
	IsHidden    bool    `json:"is_hidden"`
	Progress    int64   `json:"progress,omitempty"`
	Target      int64   `json:"target,omitempty"`
}

type PlayerAchievement struct {
	PlayerGUID    string       `json:"player_guid"`
	PlayerName    string       `json:"player_name,omitempty"`
	AchievementID string       `json:"achievement_id"`
	UnlockedAt    time.Time    `json:"unlocked_at"`
	MatchID       string       `json:"match_id,omitempty"`
	Achievement   *Achievement `json:"achievement,omitempty"`
}

type AchievementLeader struct {
	PlayerGUID   string `json:"player_guid"`
	PlayerName   string `json:"player_name"`
	Points       int    `json:"points"`
	Unlocked     int    `json:"unlocked"`
	Rank         int    `json:"rank"`
	RarestUnlock string `json:"rarest_unlock,omitempty"`
}

// Tournament is a bracket event run by the stats backend.
type Tournament struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Format      string    `json:"format"`
	MaxTeams    int       `json:"max_teams"`
	TeamCount   int       `json:"team_count"`
	StartsAt    time.Time `json:"starts_at"`
	WinnerTeam  string    `json:"winner_team,omitempty"`
}

type BracketMatch struct {
	ID       string `json:"id"`
	Round    int    `json:"round"`
	Position int    `json:"position"`
	TeamA    string `json:"team_a"`
	TeamB    string `json:"team_b"`
	ScoreA   int    `json:"score_a"`
	ScoreB   int    `json:"score_b"`
	Winner   string `json:"winner"`
	MatchID  string `json:"match_id,omitempty"`
}

type TournamentDetails struct {
	Tournament
	Teams   []string       `json:"teams"`
	Matches []BracketMatch `json:"matches"`
}

type TournamentStats struct {
	TotalMatches int64              `json:"total_matches"`
	TotalKills   int64              `json:"total_kills"`
	TopPlayers   []LeaderboardEntry `json:"top_players"`
	MVP          *LeaderboardEntry  `json:"mvp,omitempty"`
}

// DeviceAuth is returned by /auth/device.
type DeviceAuth struct {
	UserCode        string `json:"user_code"`
	DeviceCode      string `json:"device_code"`
	VerificationURL string `json:"verification_url"`
	ExpiresIn       int    `json:"expires_in"`
}

// ClaimInit is returned by /auth/claim/init.
type ClaimInit struct {
	Code      string `json:"code"`
	ExpiresIn int    `json:"expires_in"`
}

// BoardEntry is a row of the contextual, combo and peak leaderboards.
// Value is the ranked metric; peak boards rank by KD instead.
type BoardEntry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Value      float64 `json:"value"`
	Secondary  float64 `json:"secondary,omitempty"`
	Kills      int64   `json:"kills,omitempty"`
	Deaths     int64   `json:"deaths,omitempty"`
	KD         float64 `json:"kd,omitempty"`
}

// Object is an untyped API payload for endpoints whose shape varies
// (deep stats, war room, playstyle, advanced match reports).
type Object map[string]any

func (o Object) value(path ...string) (any, bool) {
	var cur any = map[string]any(o)
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// Float reads a number at path, 0 when missing or not numeric. Numeric
// strings and booleans convert.
func (o Object) Float(path ...string) float64 {
	v, ok := o.value(path...)
	if !ok {
		return 0
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}

// Int reads a number at path truncated toward zero.
func (o Object) Int(path ...string) int64 {
	v, ok := o.value(path...)
	if !ok {
		return 0
	}
	if n, err := cast.ToInt64E(v); err == nil {
		return n
	}
	return int64(o.Float(path...))
}

// String reads a scalar at path as text, def when missing or empty.
func (o Object) String(def string, path ...string) string {
	v, ok := o.value(path...)
	if !ok {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil || s == "" {
		return def
	}
	return s
}

// Object returns the nested object at path, empty when missing.
func (o Object) Object(path ...string) Object {
	v, ok := o.value(path...)
	if !ok {
		return Object{}
	}
	if m, ok := v.(map[string]any); ok {
		return Object(m)
	}
	return Object{}
}

// List returns the nested array of objects at path.
func (o Object) List(path ...string) []Object {
	v, ok := o.value(path...)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Object, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, Object(m))
		}
	}
	return out
}

// Fact is one scalar entry of an Object.
type Fact struct {
	Key   string
	Value string
}

// Label turns a snake_case key into words.
func (f Fact) Label() string {
	s := strings.ReplaceAll(f.Key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Facts lists the scalar entries of o sorted by key. Nested objects, arrays
// and nulls are skipped.
func (o Object) Facts() []Fact {
	out := make([]Fact, 0, len(o))
	for _, k := range slices.Sorted(maps.Keys(o)) {
		if o[k] == nil {
			continue
		}
		s, err := cast.ToStringE(o[k])
		if err != nil {
			continue
		}
		out = append(out, Fact{Key: k, Value: s})
	}
	return out
}
