package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

const (
	identitiesCollection = "mohaa_identities"

	// DefaultMaxIdentities is the number of GUIDs a member may link when
	// the site does not configure a limit.
	DefaultMaxIdentities = 3
)

var (
	ErrIdentityNotFound  = errors.New("identity not found")
	ErrInvalidGUID       = errors.New("invalid player guid")
	ErrTooManyIdentities = errors.New("member has reached the identity limit")
)

// Identity links a forum member to an in-game player GUID.
type Identity struct {
	ID         string
	MemberID   string
	PlayerGUID string
	PlayerName string
	Verified   bool
	LinkedAt   time.Time
}

func identityFromRecord(r *core.Record) Identity {
	linked := r.GetDateTime("linked_date").Time()
	if linked.IsZero() {
		linked = r.GetDateTime("created").Time()
	}
	return Identity{
		ID:         r.Id,
		MemberID:   r.GetString("member"),
		PlayerGUID: r.GetString("player_guid"),
		PlayerName: r.GetString("player_name"),
		Verified:   r.GetBool("verified"),
		LinkedAt:   linked,
	}
}

// LinkIdentity creates or refreshes the link between memberID and guid,
// allowing at most DefaultMaxIdentities GUIDs per member.
func LinkIdentity(ctx context.Context, pbApp core.App, memberID, guid, name string, verified bool) (*Identity, error) {
	return linkIdentity(pbApp, memberID, guid, name, verified, DefaultMaxIdentities)
}

// linkIdentity upserts on (member, guid). Relinking a GUID the member already
// owns never counts against maxIdentities.
func linkIdentity(pbApp core.App, memberID, guid, name string, verified bool, maxIdentities int) (*Identity, error) {
	guid = strings.TrimSpace(guid)
	if guid == "" || len(guid) > 64 {
		return nil, ErrInvalidGUID
	}
	if maxIdentities <= 0 {
		maxIdentities = DefaultMaxIdentities
	}

	record, err := pbApp.FindFirstRecordByFilter(
		identitiesCollection,
		"member = {:member} && player_guid = {:guid}",
		dbx.Params{"member": memberID, "guid": guid},
	)
	if err != nil {
		count, err := pbApp.CountRecords(identitiesCollection, dbx.HashExp{"member": memberID})
		if err != nil {
			return nil, err
		}
		if count >= int64(maxIdentities) {
			return nil, ErrTooManyIdentities
		}

		collection, err := pbApp.FindCollectionByNameOrId(identitiesCollection)
		if err != nil {
			return nil, err
		}
		record = core.NewRecord(collection)
		record.Set("member", memberID)
		record.Set("player_guid", guid)
		record.Set("linked_date", time.Now())
	}

	if name != "" {
		record.Set("player_name", name)
	}
	if verified {
		record.Set("verified", true)
	}

	if err := pbApp.Save(record); err != nil {
		return nil, fmt.Errorf("failed to link identity: %w", err)
	}

	id := identityFromRecord(record)
	return &id, nil
}

// GetIdentities lists a member's linked GUIDs, oldest first.
func GetIdentities(ctx context.Context, pbApp core.App, memberID string) ([]Identity, error) {
	records, err := pbApp.FindRecordsByFilter(
		identitiesCollection,
		"member = {:member}",
		"created",
		0, 0,
		dbx.Params{"member": memberID},
	)
	if err != nil {
		return nil, err
	}

	out := make([]Identity, 0, len(records))
	for _, r := range records {
		out = append(out, identityFromRecord(r))
	}
	return out, nil
}

// PrimaryGUID is the member's first linked GUID, or "" when none.
func PrimaryGUID(ctx context.Context, pbApp core.App, memberID string) (string, error) {
	if memberID == "" {
		return "", nil
	}
	ids, err := GetIdentities(ctx, pbApp, memberID)
	if err != nil || len(ids) == 0 {
		return "", err
	}
	return ids[0].PlayerGUID, nil
}

// MemberForGUID returns the member that linked guid, or "" when nobody has.
func MemberForGUID(ctx context.Context, pbApp core.App, guid string) (string, error) {
	record, err := pbApp.FindFirstRecordByFilter(
		identitiesCollection,
		"player_guid = {:guid}",
		dbx.Params{"guid": guid},
	)
	if err != nil {
		return "", nil
	}
	return record.GetString("member"), nil
}

// UnlinkIdentity removes identityID if it belongs to memberID.
func UnlinkIdentity(ctx context.Context, pbApp core.App, memberID, identityID string) error {
	record, err := pbApp.FindRecordById(identitiesCollection, identityID)
	if err != nil || record.GetString("member") != memberID {
		return ErrIdentityNotFound
	}
	return pbApp.Delete(record)
}

// LinkedPlayer is a linked GUID together with the member's display name.
type LinkedPlayer struct {
	PlayerGUID string `db:"player_guid"`
	PlayerName string `db:"player_name"`
	MemberID   string `db:"member"`
	MemberName string `db:"member_name"`
}

// LinkedPlayers returns one row per linked GUID for pickers, most recently
// linked first.
func LinkedPlayers(ctx context.Context, pbApp core.App, limit int) ([]LinkedPlayer, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []LinkedPlayer

	err := pbApp.DB().
		NewQuery(`
			SELECT
				i.player_guid as player_guid,
				i.player_name as player_name,
				i.member as member,
				COALESCE(NULLIF(u.name, ''), u.email, '') as member_name
			FROM mohaa_identities i
			LEFT JOIN users u ON u.id = i.member
			ORDER BY i.created DESC
			LIMIT {:limit}
		`).
		Bind(dbx.Params{"limit": limit}).
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
