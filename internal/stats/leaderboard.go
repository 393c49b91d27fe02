package stats

import (
	"sort"
	"strings"

	"mohaa-portal/internal/statsapi"
)

// Format tells templates how to print a stat value.
type Format int

const (
	FormatCount Format = iota
	FormatRatio
	FormatPercent
	FormatDistance
	FormatDuration
)

// StatDef describes one leaderboard the stat picker offers.
type StatDef struct {
	Key      string
	Label    string
	Desc     string
	Icon     string
	Category string
	Format   Format
}

var statCatalogue = []StatDef{
	{"kills", "Kills", "Total enemies eliminated in combat.", "🗡️", "Combat", FormatCount},
	{"deaths", "Deaths", "Times eliminated by enemy fire or mishaps.", "🪦", "Combat", FormatCount},
	{"kd", "K/D Ratio", "Kill-to-death ratio.", "⚖️", "Combat", FormatRatio},
	{"headshots", "Headshots", "Precision kills resulting in instant death.", "🤯", "Combat", FormatCount},
	{"accuracy", "Accuracy", "Percentage of shots that hit a target.", "🎯", "Combat", FormatPercent},
	{"shots_fired", "Trigger Happy", "Total ammunition expended.", "💥", "Combat", FormatCount},
	{"damage", "Damage Dealer", "Total damage inflicted on opponents.", "🩸", "Combat", FormatCount},

	{"bash_kills", "Executioner", "Kills with pistol whips or rifle butts.", "🔨", "Special Kills", FormatCount},
	{"grenade_kills", "Grenadier", "Explosive kills with hand grenades.", "💣", "Special Kills", FormatCount},
	{"roadkills", "Road Rage", "Enemies run over by vehicles.", "🚗", "Special Kills", FormatCount},
	{"telefrags", "Telefrags", "Occupying the same space as an enemy.", "🌌", "Special Kills", FormatCount},
	{"teamkills", "Betrayals", "Teammates eliminated.", "🔪", "Special Kills", FormatCount},
	{"suicides", "Suicides", "Self-inflicted eliminations.", "💀", "Special Kills", FormatCount},

	{"reloads", "Reloader", "Times a weapon clip was swapped.", "🔄", "Weapon Handling", FormatCount},
	{"weapon_swaps", "Fickle", "Times weapons were switched during combat.", "🔀", "Weapon Handling", FormatCount},
	{"no_ammo", "Empty Clip", "Times caught clicking with an empty gun.", "⛽", "Weapon Handling", FormatCount},
	{"looter", "Looter", "Weapons picked up from the ground.", "🎒", "Weapon Handling", FormatCount},

	{"distance", "Marathon Man", "Total distance travelled on foot.", "🏃", "Movement", FormatDistance},
	{"sprinted", "Sprinter", "Distance covered while sprinting.", "⚡", "Movement", FormatDistance},
	{"jumps", "Bunny Hopper", "Total number of jumps performed.", "🐇", "Movement", FormatCount},
	{"crouch_time", "Tactical Crouch", "Time spent moving crouched.", "🦵", "Movement", FormatDuration},
	{"prone_time", "Camper", "Time spent laying on the ground.", "⛺", "Movement", FormatDuration},

	{"wins", "Wins", "Total games won.", "🏆", "Results", FormatCount},
	{"team_wins", "Team Wins", "Games won as part of a team.", "🚩", "Results", FormatCount},
	{"ffa_wins", "FFA Wins", "Deathmatch games won solo.", "⚔️", "Results", FormatCount},
	{"losses", "Losses", "Matches lost.", "☠️", "Results", FormatCount},
	{"objectives", "Objective Master", "Mission objectives completed.", "🎯", "Results", FormatCount},
	{"rounds", "Veteran", "Rounds played in round-based modes.", "⏳", "Results", FormatCount},
	{"playtime", "Time Sink", "Total time spent on the servers.", "⏱️", "Results", FormatDuration},
}

var statIndex = func() map[string]StatDef {
	m := make(map[string]StatDef, len(statCatalogue))
	for _, d := range statCatalogue {
		m[d.Key] = d
	}
	return m
}()

// Stats returns the full catalogue in display order.
func Stats() []StatDef {
	return statCatalogue
}

// LookupStat returns the definition for key; unknown keys fall back to kills.
func LookupStat(key string) (StatDef, bool) {
	d, ok := statIndex[strings.ToLower(key)]
	if !ok {
		return statIndex["kills"], false
	}
	return d, true
}

// StatGroup is one optgroup of the stat picker.
type StatGroup struct {
	Category string
	Stats    []StatDef
}

// GroupStats groups the catalogue by category, keeping first-seen category order.
func GroupStats(defs []StatDef) []StatGroup {
	var groups []StatGroup
	index := map[string]int{}
	for _, d := range defs {
		i, ok := index[d.Category]
		if !ok {
			i = len(groups)
			index[d.Category] = i
			groups = append(groups, StatGroup{Category: d.Category})
		}
		groups[i].Stats = append(groups[i].Stats, d)
	}
	return groups
}

// Value extracts stat from an entry. Stats the entry has no column for use
// the server supplied Value.
func Value(e statsapi.LeaderboardEntry, stat string) float64 {
	switch stat {
	case "kills":
		return float64(e.Kills)
	case "deaths":
		return float64(e.Deaths)
	case "kd":
		return KD(e.Kills, e.Deaths)
	case "headshots":
		return float64(e.Headshots)
	case "accuracy":
		if e.Accuracy > 0 {
			return e.Accuracy
		}
		return Accuracy(e.ShotsHit, e.ShotsFired)
	case "shots_fired":
		return float64(e.ShotsFired)
	case "damage":
		return float64(e.Damage)
	case "bash_kills":
		return float64(e.BashKills)
	case "roadkills":
		return float64(e.Roadkills)
	case "teamkills":
		return float64(e.TeamKills)
	case "suicides":
		return float64(e.Suicides)
	case "distance":
		return e.Distance
	case "jumps":
		return float64(e.Jumps)
	case "wins":
		return float64(e.Wins)
	case "team_wins":
		return float64(e.TeamWins)
	case "ffa_wins":
		return float64(e.FFAWins)
	case "losses":
		return float64(e.Losses)
	case "objectives":
		return float64(e.Objectives)
	case "rounds":
		return float64(e.Rounds)
	case "playtime":
		return float64(e.Playtime)
	default:
		return e.Value
	}
}

// FormatValue prints v the way the stat's definition asks for.
func FormatValue(def StatDef, v float64) string {
	switch def.Format {
	case FormatRatio:
		return Fixed(v, 2)
	case FormatPercent:
		return Percent(v)
	case FormatDistance:
		return Decimal(v, 1) + " km"
	case FormatDuration:
		return Duration(v)
	default:
		return Number(int64(v))
	}
}

// SortEntries orders entries by stat, highest first, ties broken by name.
func SortEntries(entries []statsapi.LeaderboardEntry, stat string) {
	sort.SliceStable(entries, func(i, j int) bool {
		vi, vj := Value(entries[i], stat), Value(entries[j], stat)
		if vi != vj {
			return vi > vj
		}
		return strings.ToLower(entries[i].PlayerName) < strings.ToLower(entries[j].PlayerName)
	})
}

// AssignRanks numbers sorted entries from offset+1 with competition ranking:
// equal values share a rank and the next distinct value skips ahead.
func AssignRanks(entries []statsapi.LeaderboardEntry, stat string, offset int) {
	for i := range entries {
		if i > 0 && Value(entries[i], stat) == Value(entries[i-1], stat) {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = offset + i + 1
	}
}

// RankIcon returns the badge for a lifetime kill count.
func RankIcon(kills int64) string {
	switch {
	case kills >= 100000:
		return "👑"
	case kills >= 50000:
		return "🏆"
	case kills >= 10000:
		return "💎"
	case kills >= 5000:
		return "🥇"
	case kills >= 1000:
		return "🥈"
	case kills >= 100:
		return "🥉"
	default:
		return "🎖️"
	}
}

// RankTitle names the tier RankIcon draws.
func RankTitle(kills int64) string {
	switch {
	case kills >= 100000:
		return "Legend"
	case kills >= 50000:
		return "Warlord"
	case kills >= 10000:
		return "Elite"
	case kills >= 5000:
		return "Veteran"
	case kills >= 1000:
		return "Soldier"
	case kills >= 100:
		return "Private"
	default:
		return "Recruit"
	}
}

// MedalClass styles the top three rows of a board.
func MedalClass(rank int) string {
	switch rank {
	case 1:
		return "rank-gold"
	case 2:
		return "rank-silver"
	case 3:
		return "rank-bronze"
	default:
		return ""
	}
}
