package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

const (
	teamsCollection       = "mohaa_teams"
	teamMembersCollection = "mohaa_team_members"

	RoleCaptain = "captain"
	RoleMember  = "member"

	// MaxTagLength is counted in characters, not bytes.
	MaxTagLength = 5
)

var (
	ErrTeamNotFound  = errors.New("team not found")
	ErrAlreadyInTeam = errors.New("member already belongs to a team")
	ErrNotTeamMember = errors.New("member is not on this team")
	ErrInvalidTeam   = errors.New("team name is required and tag must be at most 5 characters")
)

// Team is a clan registered on the forum.
type Team struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Tag         string    `db:"tag"`
	Description string    `db:"description"`
	CaptainID   string    `db:"captain"`
	MemberCount int       `db:"member_count"`
	Created     time.Time `db:"-"`
	Members     []TeamMember
}

// TeamMember is one roster line; PlayerGUID is filled from the member's
// first linked identity when there is one.
type TeamMember struct {
	MemberID   string
	Username   string
	Role       string
	PlayerGUID string
	JoinedAt   time.Time
}

// CreateTeam creates a team with captainID as its first member.
func CreateTeam(ctx context.Context, pbApp core.App, name, tag, description, captainID string) (*Team, error) {
	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)
	if name == "" || utf8.RuneCountInString(tag) > MaxTagLength {
		return nil, ErrInvalidTeam
	}

	var team *core.Record
	err := pbApp.RunInTransaction(func(txApp core.App) error {
		if existing, _ := teamOf(txApp, captainID); existing != nil {
			return ErrAlreadyInTeam
		}

		teams, err := txApp.FindCollectionByNameOrId(teamsCollection)
		if err != nil {
			return err
		}
		team = core.NewRecord(teams)
		team.Set("name", name)
		team.Set("tag", tag)
		team.Set("description", description)
		team.Set("captain", captainID)
		if err := txApp.Save(team); err != nil {
			return err
		}

		return addMember(txApp, team.Id, captainID, RoleCaptain)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyInTeam) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return GetTeam(ctx, pbApp, team.Id)
}

func addMember(txApp core.App, teamID, memberID, role string) error {
	members, err := txApp.FindCollectionByNameOrId(teamMembersCollection)
	if err != nil {
		return err
	}
	r := core.NewRecord(members)
	r.Set("team", teamID)
	r.Set("member", memberID)
	r.Set("role", role)
	return txApp.Save(r)
}

func teamOf(pbApp core.App, memberID string) (*core.Record, error) {
	return pbApp.FindFirstRecordByFilter(
		teamMembersCollection,
		"member = {:member}",
		dbx.Params{"member": memberID},
	)
}

// TeamOf returns the id of memberID's team, or "" when they have none.
func TeamOf(ctx context.Context, pbApp core.App, memberID string) string {
	if memberID == "" {
		return ""
	}
	r, err := teamOf(pbApp, memberID)
	if err != nil {
		return ""
	}
	return r.GetString("team")
}

// JoinTeam adds memberID to teamID. A member can only belong to one team.
func JoinTeam(ctx context.Context, pbApp core.App, teamID, memberID string) error {
	return pbApp.RunInTransaction(func(txApp core.App) error {
		if _, err := txApp.FindRecordById(teamsCollection, teamID); err != nil {
			return ErrTeamNotFound
		}
		if existing, _ := teamOf(txApp, memberID); existing != nil {
			return ErrAlreadyInTeam
		}
		return addMember(txApp, teamID, memberID, RoleMember)
	})
}

// LeaveTeam removes memberID from teamID. A departing captain hands the team
// to the longest serving member; the last member leaving deletes the team.
func LeaveTeam(ctx context.Context, pbApp core.App, teamID, memberID string) error {
	return pbApp.RunInTransaction(func(txApp core.App) error {
		row, err := txApp.FindFirstRecordByFilter(
			teamMembersCollection,
			"team = {:team} && member = {:member}",
			dbx.Params{"team": teamID, "member": memberID},
		)
		if err != nil {
			return ErrNotTeamMember
		}
		wasCaptain := row.GetString("role") == RoleCaptain
		if err := txApp.Delete(row); err != nil {
			return err
		}

		rest, err := txApp.FindRecordsByFilter(
			teamMembersCollection,
			"team = {:team}",
			"created",
			0, 0,
			dbx.Params{"team": teamID},
		)
		if err != nil {
			return err
		}

		team, err := txApp.FindRecordById(teamsCollection, teamID)
		if err != nil {
			return ErrTeamNotFound
		}
		if len(rest) == 0 {
			return txApp.Delete(team)
		}
		if !wasCaptain {
			return nil
		}

		heir := rest[0]
		heir.Set("role", RoleCaptain)
		if err := txApp.Save(heir); err != nil {
			return err
		}
		team.Set("captain", heir.GetString("member"))
		return txApp.Save(team)
	})
}

// ListTeams returns a page of teams with member counts, largest first.
func ListTeams(ctx context.Context, pbApp core.App, limit, offset int) ([]Team, error) {
	if limit <= 0 {
		limit = 25
	}
	var rows []Team

	err := pbApp.DB().
		NewQuery(`
			SELECT
				t.id as id,
				t.name as name,
				t.tag as tag,
				t.description as description,
				t.captain as captain,
				COUNT(m.id) as member_count
			FROM mohaa_teams t
			LEFT JOIN mohaa_team_members m ON m.team = t.id
			GROUP BY t.id
			ORDER BY member_count DESC, t.name ASC
			LIMIT {:limit} OFFSET {:offset}
		`).
		Bind(dbx.Params{"limit": limit, "offset": offset}).
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func CountTeams(ctx context.Context, pbApp core.App) (int, error) {
	total, err := pbApp.CountRecords(teamsCollection)
	return int(total), err
}

// GetTeam loads a team with its roster, captain first.
func GetTeam(ctx context.Context, pbApp core.App, teamID string) (*Team, error) {
	record, err := pbApp.FindRecordById(teamsCollection, teamID)
	if err != nil {
		return nil, ErrTeamNotFound
	}

	team := &Team{
		ID:          record.Id,
		Name:        record.GetString("name"),
		Tag:         record.GetString("tag"),
		Description: record.GetString("description"),
		CaptainID:   record.GetString("captain"),
		Created:     record.GetDateTime("created").Time(),
	}

	rows, err := pbApp.FindRecordsByFilter(
		teamMembersCollection,
		"team = {:team}",
		"created",
		0, 0,
		dbx.Params{"team": teamID},
	)
	if err != nil {
		return nil, err
	}

	if errs := pbApp.ExpandRecords(rows, []string{"member"}, nil); len(errs) > 0 {
		return nil, fmt.Errorf("failed to expand team members: %v", errs)
	}

	for _, r := range rows {
		m := TeamMember{
			MemberID: r.GetString("member"),
			Role:     r.GetString("role"),
			JoinedAt: r.GetDateTime("created").Time(),
		}
		if u := r.ExpandedOne("member"); u != nil {
			m.Username = u.GetString("name")
			if m.Username == "" {
				m.Username = u.Email()
			}
		}
		m.PlayerGUID, _ = PrimaryGUID(ctx, pbApp, m.MemberID)
		if m.Role == RoleCaptain {
			team.Members = append([]TeamMember{m}, team.Members...)
		} else {
			team.Members = append(team.Members, m)
		}
	}
	team.MemberCount = len(team.Members)
	return team, nil
}

// GUIDs returns the linked player GUIDs of a team's roster.
func (t *Team) GUIDs() []string {
	var guids []string
	for _, m := range t.Members {
		if m.PlayerGUID != "" {
			guids = append(guids, m.PlayerGUID)
		}
	}
	return guids
}
