package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tests"

	_ "mohaa-portal/migrations"
)

func setupTestApp(t *testing.T) (*tests.TestApp, func()) {
	// Use temp directory for test database
	tempDir := t.TempDir()

	testApp, err := tests.NewTestApp(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test app: %v", err)
	}

	// Verify collections exist
	collections := []string{
		serversCollection,
		snapshotsCollection,
		identitiesCollection,
		claimCodesCollection,
		deviceTokensCollection,
		teamsCollection,
		teamMembersCollection,
	}
	for _, name := range collections {
		if _, err := testApp.FindCollectionByNameOrId(name); err != nil {
			t.Fatalf("Collection %s not found after migration: %v", name, err)
		}
	}

	return testApp, func() { testApp.Cleanup() }
}

func createTestUser(t *testing.T, app core.App, email string) string {
	t.Helper()

	users, err := app.FindCollectionByNameOrId("users")
	if err != nil {
		t.Fatalf("Failed to find users collection: %v", err)
	}
	user := core.NewRecord(users)
	user.SetEmail(email)
	user.SetPassword("1234567890")
	user.Set("name", email[:len(email)-len("@example.com")])
	if err := app.Save(user); err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user.Id
}

// backdate rewrites an autodate column, which cannot be set through Save.
func backdate(t *testing.T, app core.App, table, column string, at time.Time) {
	t.Helper()

	_, err := app.DB().
		NewQuery("UPDATE " + table + " SET " + column + " = {:at}").
		Bind(dbx.Params{"at": dateString(at)}).
		Execute()
	if err != nil {
		t.Fatalf("Failed to backdate %s.%s: %v", table, column, err)
	}
}

func TestRecordPollCreatesServerAndSnapshot(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	poll := Poll{
		Address:    "10.0.0.1:12203",
		Name:       "Omaha Beach",
		Online:     true,
		Map:        "obj/obj_team2",
		Gametype:   "Objective",
		Players:    12,
		MaxPlayers: 32,
	}
	if err := RecordPoll(ctx, testApp, poll); err != nil {
		t.Fatalf("RecordPoll failed: %v", err)
	}

	server, err := GetServerByAddress(ctx, testApp, poll.Address)
	if err != nil {
		t.Fatalf("GetServerByAddress failed: %v", err)
	}
	if server.Name != "Omaha Beach" || server.Players != 12 || !server.Online {
		t.Errorf("unexpected server row: %+v", server)
	}
	if server.LastSeen.IsZero() {
		t.Error("Expected last_seen to be set for an online poll")
	}

	// An offline poll keeps the last known map and name.
	poll.Online = false
	poll.Players = 0
	poll.Map = ""
	if err := RecordPoll(ctx, testApp, poll); err != nil {
		t.Fatalf("RecordPoll (offline) failed: %v", err)
	}

	server, _ = GetServerByAddress(ctx, testApp, poll.Address)
	if server.Online {
		t.Error("Expected server to be offline")
	}
	if server.Map != "obj/obj_team2" {
		t.Errorf("Expected map to be kept, got %q", server.Map)
	}

	history, err := PlayerHistory(ctx, testApp, server.ID, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("PlayerHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(history))
	}
	if history[0].Players != 12 || history[1].Players != 0 {
		t.Errorf("Expected snapshots oldest first, got %+v", history)
	}

	servers, err := GetServers(ctx, testApp)
	if err != nil {
		t.Fatalf("GetServers failed: %v", err)
	}
	if len(servers) != 1 {
		t.Errorf("Expected 1 server, got %d", len(servers))
	}
}

func TestGetServerByAddressNotFound(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	_, err := GetServerByAddress(context.Background(), testApp, "127.0.0.1:1")
	if !errors.Is(err, ErrServerNotFound) {
		t.Errorf("Expected ErrServerNotFound, got %v", err)
	}
}

func TestUptimeAndPeakHours(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	addr := "10.0.0.2:12203"
	for i, online := range []bool{true, true, true, false} {
		err := RecordPoll(ctx, testApp, Poll{Address: addr, Online: online, Players: (i + 1) * 2})
		if err != nil {
			t.Fatalf("RecordPoll failed: %v", err)
		}
	}
	server, _ := GetServerByAddress(ctx, testApp, addr)
	since := time.Now().Add(-time.Hour)

	uptime, err := Uptime(ctx, testApp, server.ID, since)
	if err != nil {
		t.Fatalf("Uptime failed: %v", err)
	}
	if uptime != 75 {
		t.Errorf("Expected 75%% uptime, got %v", uptime)
	}

	buckets, err := PeakHours(ctx, testApp, server.ID, since)
	if err != nil {
		t.Fatalf("PeakHours failed: %v", err)
	}
	if len(buckets) != 24 {
		t.Fatalf("Expected 24 buckets, got %d", len(buckets))
	}

	var samples, peak int
	for h, b := range buckets {
		if b.Hour != h {
			t.Errorf("bucket %d has hour %d", h, b.Hour)
		}
		samples += b.Samples
		peak = max(peak, b.MaxPlayers)
	}
	if samples != 3 {
		t.Errorf("Expected 3 online samples, got %d", samples)
	}
	if peak != 6 {
		t.Errorf("Expected peak of 6 players among online samples, got %d", peak)
	}
}

func TestUptimeWithoutSnapshots(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	uptime, err := Uptime(context.Background(), testApp, "missing", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Uptime failed: %v", err)
	}
	if uptime != 0 {
		t.Errorf("Expected 0, got %v", uptime)
	}
}

func TestLinkIdentity(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	member := createTestUser(t, testApp, "sarge@example.com")

	id, err := LinkIdentity(ctx, testApp, member, "  abc123  ", "Sarge", false)
	if err != nil {
		t.Fatalf("LinkIdentity failed: %v", err)
	}
	if id.PlayerGUID != "abc123" {
		t.Errorf("Expected trimmed guid, got %q", id.PlayerGUID)
	}
	if id.Verified {
		t.Error("Expected identity to start unverified")
	}

	// Relinking upgrades the same row.
	again, err := LinkIdentity(ctx, testApp, member, "abc123", "", true)
	if err != nil {
		t.Fatalf("LinkIdentity (relink) failed: %v", err)
	}
	if again.ID != id.ID || !again.Verified || again.PlayerName != "Sarge" {
		t.Errorf("Expected same verified row with kept name, got %+v", again)
	}

	if _, err := LinkIdentity(ctx, testApp, member, "def456", "Alt", false); err != nil {
		t.Fatalf("LinkIdentity (second) failed: %v", err)
	}

	ids, err := GetIdentities(ctx, testApp, member)
	if err != nil {
		t.Fatalf("GetIdentities failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected 2 identities, got %d", len(ids))
	}

	primary, _ := PrimaryGUID(ctx, testApp, member)
	if primary != "abc123" {
		t.Errorf("Expected primary guid abc123, got %q", primary)
	}

	owner, _ := MemberForGUID(ctx, testApp, "def456")
	if owner != member {
		t.Errorf("Expected owner %s, got %q", member, owner)
	}
	if owner, _ := MemberForGUID(ctx, testApp, "nobody"); owner != "" {
		t.Errorf("Expected no owner, got %q", owner)
	}
}

func TestLinkedPlayers(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	sarge := createTestUser(t, testApp, "sarge@example.com")
	medic := createTestUser(t, testApp, "medic@example.com")

	if _, err := LinkIdentity(ctx, testApp, sarge, "abc123", "Sarge", true); err != nil {
		t.Fatalf("LinkIdentity failed: %v", err)
	}
	if _, err := LinkIdentity(ctx, testApp, medic, "def456", "Doc", false); err != nil {
		t.Fatalf("LinkIdentity failed: %v", err)
	}

	players, err := LinkedPlayers(ctx, testApp, 0)
	if err != nil {
		t.Fatalf("LinkedPlayers failed: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("Expected 2 linked players, got %d", len(players))
	}

	names := map[string]string{}
	for _, p := range players {
		names[p.PlayerGUID] = p.MemberName
	}
	if names["abc123"] != "sarge" || names["def456"] != "medic" {
		t.Errorf("Unexpected member names: %v", names)
	}

	limited, _ := LinkedPlayers(ctx, testApp, 1)
	if len(limited) != 1 {
		t.Errorf("Expected limit to apply, got %d rows", len(limited))
	}
}

func TestLinkIdentityRejectsBadGUID(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	member := createTestUser(t, testApp, "empty@example.com")
	_, err := LinkIdentity(context.Background(), testApp, member, "   ", "", false)
	if !errors.Is(err, ErrInvalidGUID) {
		t.Errorf("Expected ErrInvalidGUID, got %v", err)
	}
}

func TestLinkIdentityLimit(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	member := createTestUser(t, testApp, "collector@example.com")

	for i := 0; i < DefaultMaxIdentities; i++ {
		if _, err := LinkIdentity(ctx, testApp, member, fmt.Sprintf("guid-%d", i), "", false); err != nil {
			t.Fatalf("LinkIdentity %d failed: %v", i, err)
		}
	}

	if _, err := LinkIdentity(ctx, testApp, member, "guid-extra", "", false); !errors.Is(err, ErrTooManyIdentities) {
		t.Errorf("Expected ErrTooManyIdentities, got %v", err)
	}

	// relinking an owned GUID is not a new identity
	if _, err := LinkIdentity(ctx, testApp, member, "guid-0", "Renamed", true); err != nil {
		t.Errorf("Relink at the limit failed: %v", err)
	}
}

func TestVerifyCode(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()
	member := createTestUser(t, testApp, "verify@example.com")

	_, err := SaveDeviceToken(ctx, testApp, member, DeviceToken{
		UserCode:   "ABCD-EFGH",
		DeviceCode: "device",
		ExpiresAt:  now.Add(10 * time.Minute),
	})
	if err != nil {
		t.Fatalf("SaveDeviceToken failed: %v", err)
	}

	id, err := VerifyCode(ctx, testApp, " ABCD-EFGH ", "guid-v", "Verified", 0, now)
	if err != nil {
		t.Fatalf("VerifyCode failed: %v", err)
	}
	if id.MemberID != member || !id.Verified || id.PlayerName != "Verified" {
		t.Errorf("Unexpected identity %+v", id)
	}

	if tok, _ := ActiveDeviceToken(ctx, testApp, member, now); tok != nil {
		t.Errorf("Expected the token to be consumed, still pending: %+v", tok)
	}
	if _, err := VerifyCode(ctx, testApp, "ABCD-EFGH", "guid-v", "", 0, now); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("Expected ErrCodeNotFound on reuse, got %v", err)
	}

	if _, err := SaveClaimCode(ctx, testApp, member, "OLDCODE", time.Minute); err != nil {
		t.Fatalf("SaveClaimCode failed: %v", err)
	}
	if _, err := VerifyCode(ctx, testApp, "OLDCODE", "guid-w", "", 0, now.Add(time.Hour)); !errors.Is(err, ErrCodeNotFound) {
		t.Errorf("Expected ErrCodeNotFound for an expired claim, got %v", err)
	}
}

func TestUnlinkIdentity(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, testApp, "owner@example.com")
	other := createTestUser(t, testApp, "other@example.com")

	id, err := LinkIdentity(ctx, testApp, owner, "guid-1", "Owner", true)
	if err != nil {
		t.Fatalf("LinkIdentity failed: %v", err)
	}

	if err := UnlinkIdentity(ctx, testApp, other, id.ID); !errors.Is(err, ErrIdentityNotFound) {
		t.Errorf("Expected ErrIdentityNotFound for a foreign identity, got %v", err)
	}
	if err := UnlinkIdentity(ctx, testApp, owner, id.ID); err != nil {
		t.Fatalf("UnlinkIdentity failed: %v", err)
	}

	ids, _ := GetIdentities(ctx, testApp, owner)
	if len(ids) != 0 {
		t.Errorf("Expected no identities after unlink, got %d", len(ids))
	}
}

func TestClaimCodes(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	member := createTestUser(t, testApp, "claim@example.com")

	if _, err := SaveClaimCode(ctx, testApp, member, "MOH-AAAA", 10*time.Minute); err != nil {
		t.Fatalf("SaveClaimCode failed: %v", err)
	}
	second, err := SaveClaimCode(ctx, testApp, member, "MOH-BBBB", 10*time.Minute)
	if err != nil {
		t.Fatalf("SaveClaimCode (second) failed: %v", err)
	}

	active, err := ActiveClaimCode(ctx, testApp, member, time.Now())
	if err != nil {
		t.Fatalf("ActiveClaimCode failed: %v", err)
	}
	if active == nil || active.Code != "MOH-BBBB" || active.ID != second.ID {
		t.Fatalf("Expected newest code to be active, got %+v", active)
	}

	count, _ := testApp.CountRecords(claimCodesCollection)
	if count != 1 {
		t.Errorf("Expected older unused code to be replaced, have %d codes", count)
	}

	later := time.Now().Add(time.Hour)
	if !active.Expired(later) {
		t.Error("Expected code to be expired an hour later")
	}
	expired, err := ActiveClaimCode(ctx, testApp, member, later)
	if err != nil {
		t.Fatalf("ActiveClaimCode failed: %v", err)
	}
	if expired != nil {
		t.Errorf("Expected no active code after expiry, got %+v", expired)
	}
}

func TestDeviceTokens(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	member := createTestUser(t, testApp, "device@example.com")

	tok := DeviceToken{
		UserCode:        "WXYZ-1234",
		DeviceCode:      "secret-device-code",
		VerificationURL: "https://stats.example.com/device",
		ExpiresAt:       time.Now().Add(15 * time.Minute),
	}
	if _, err := SaveDeviceToken(ctx, testApp, member, tok); err != nil {
		t.Fatalf("SaveDeviceToken failed: %v", err)
	}
	tok.UserCode = "WXYZ-5678"
	saved, err := SaveDeviceToken(ctx, testApp, member, tok)
	if err != nil {
		t.Fatalf("SaveDeviceToken (replace) failed: %v", err)
	}
	if saved.DeviceCode != "secret-device-code" {
		t.Errorf("Expected device code to round trip, got %q", saved.DeviceCode)
	}

	active, err := ActiveDeviceToken(ctx, testApp, member, time.Now())
	if err != nil {
		t.Fatalf("ActiveDeviceToken failed: %v", err)
	}
	if active == nil || active.UserCode != "WXYZ-5678" {
		t.Fatalf("Expected replacement token, got %+v", active)
	}

	count, _ := testApp.CountRecords(deviceTokensCollection)
	if count != 1 {
		t.Errorf("Expected pending token to be replaced, have %d", count)
	}
}

func TestTeamLifecycle(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	captain := createTestUser(t, testApp, "captain@example.com")
	rookie := createTestUser(t, testApp, "rookie@example.com")
	if _, err := LinkIdentity(ctx, testApp, rookie, "rookie-guid", "Rookie", true); err != nil {
		t.Fatalf("LinkIdentity failed: %v", err)
	}

	team, err := CreateTeam(ctx, testApp, " Easy Company ", "E/506", "Currahee", captain)
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}
	if team.Name != "Easy Company" || team.CaptainID != captain || team.MemberCount != 1 {
		t.Errorf("unexpected team: %+v", team)
	}

	if _, err := CreateTeam(ctx, testApp, "Dog Company", "D", "", captain); !errors.Is(err, ErrAlreadyInTeam) {
		t.Errorf("Expected ErrAlreadyInTeam, got %v", err)
	}

	if err := JoinTeam(ctx, testApp, team.ID, rookie); err != nil {
		t.Fatalf("JoinTeam failed: %v", err)
	}
	if err := JoinTeam(ctx, testApp, team.ID, rookie); err == nil {
		t.Error("Expected second join to fail")
	}
	if got := TeamOf(ctx, testApp, rookie); got != team.ID {
		t.Errorf("Expected TeamOf %s, got %q", team.ID, got)
	}

	team, err = GetTeam(ctx, testApp, team.ID)
	if err != nil {
		t.Fatalf("GetTeam failed: %v", err)
	}
	if len(team.Members) != 2 || team.Members[0].Role != RoleCaptain {
		t.Fatalf("Expected captain first in a roster of 2, got %+v", team.Members)
	}
	if team.Members[1].Username != "rookie" {
		t.Errorf("Expected rookie username, got %q", team.Members[1].Username)
	}
	if guids := team.GUIDs(); len(guids) != 1 || guids[0] != "rookie-guid" {
		t.Errorf("Expected only the rookie's guid, got %v", guids)
	}

	teams, err := ListTeams(ctx, testApp, 10, 0)
	if err != nil {
		t.Fatalf("ListTeams failed: %v", err)
	}
	if len(teams) != 1 || teams[0].MemberCount != 2 {
		t.Errorf("Expected one team with 2 members, got %+v", teams)
	}

	// Captain leaves; the rookie inherits the team.
	if err := LeaveTeam(ctx, testApp, team.ID, captain); err != nil {
		t.Fatalf("LeaveTeam (captain) failed: %v", err)
	}
	team, err = GetTeam(ctx, testApp, team.ID)
	if err != nil {
		t.Fatalf("GetTeam after captain left failed: %v", err)
	}
	if team.CaptainID != rookie || team.Members[0].Role != RoleCaptain {
		t.Errorf("Expected rookie to become captain, got %+v", team)
	}

	// Last member leaving deletes the team.
	if err := LeaveTeam(ctx, testApp, team.ID, rookie); err != nil {
		t.Fatalf("LeaveTeam (last) failed: %v", err)
	}
	if _, err := GetTeam(ctx, testApp, team.ID); !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("Expected ErrTeamNotFound, got %v", err)
	}
	if n, _ := CountTeams(ctx, testApp); n != 0 {
		t.Errorf("Expected 0 teams, got %d", n)
	}
}

func TestCreateTeamValidation(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	captain := createTestUser(t, testApp, "bad@example.com")
	cases := []struct{ name, tag string }{
		{"", "OK"},
		{"Valid", "TOOLONGTAG"},
		{"Six", "SIXCHR"},
		{"Runes", "ÄÖÜßÉÈ"},
	}
	for _, tc := range cases {
		_, err := CreateTeam(context.Background(), testApp, tc.name, tc.tag, "", captain)
		if !errors.Is(err, ErrInvalidTeam) {
			t.Errorf("CreateTeam(%q, %q): expected ErrInvalidTeam, got %v", tc.name, tc.tag, err)
		}
	}
}

func TestCreateTeamTagLength(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	cases := []struct {
		tag string
		ok  bool
	}{
		{"FIVE5", true},
		{" FIVE ", true},
		{"ÄÖÜßÉ", true},
		{"SIXCHR", false},
	}
	for i, tc := range cases {
		captain := createTestUser(t, testApp, fmt.Sprintf("tag%d@example.com", i))
		team, err := CreateTeam(ctx, testApp, fmt.Sprintf("Squad %d", i), tc.tag, "", captain)
		if tc.ok {
			if err != nil {
				t.Errorf("CreateTeam(tag %q) failed: %v", tc.tag, err)
				continue
			}
			if team.Tag != strings.TrimSpace(tc.tag) {
				t.Errorf("Expected tag %q, got %q", strings.TrimSpace(tc.tag), team.Tag)
			}
		} else if !errors.Is(err, ErrInvalidTeam) {
			t.Errorf("CreateTeam(tag %q): expected ErrInvalidTeam, got %v", tc.tag, err)
		}
	}
}

func TestMemberIndexAllowsOneTeam(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	a := createTestUser(t, testApp, "alpha@example.com")
	b := createTestUser(t, testApp, "bravo@example.com")

	if _, err := CreateTeam(ctx, testApp, "Alpha", "A", "", a); err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}
	second, err := CreateTeam(ctx, testApp, "Bravo", "B", "", b)
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}

	// Skips the teamOf check, as two racing requests would.
	if err := addMember(testApp, second.ID, a, RoleMember); err == nil {
		t.Error("Expected the unique member index to reject a second team")
	}
}

func TestLeaveTeamNotMember(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	captain := createTestUser(t, testApp, "cpt@example.com")
	outsider := createTestUser(t, testApp, "outsider@example.com")

	team, err := CreateTeam(ctx, testApp, "Baker", "B", "", captain)
	if err != nil {
		t.Fatalf("CreateTeam failed: %v", err)
	}
	if err := LeaveTeam(ctx, testApp, team.ID, outsider); !errors.Is(err, ErrNotTeamMember) {
		t.Errorf("Expected ErrNotTeamMember, got %v", err)
	}
}

func TestPruneOldData(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()
	member := createTestUser(t, testApp, "prune@example.com")

	for i := 0; i < 3; i++ {
		if err := RecordPoll(ctx, testApp, Poll{Address: "10.0.0.3:12203", Online: true, Players: i}); err != nil {
			t.Fatalf("RecordPoll failed: %v", err)
		}
	}
	backdate(t, testApp, snapshotsCollection, "created", now.Add(-40*24*time.Hour))
	if err := RecordPoll(ctx, testApp, Poll{Address: "10.0.0.3:12203", Online: true, Players: 9}); err != nil {
		t.Fatalf("RecordPoll failed: %v", err)
	}

	if _, err := SaveClaimCode(ctx, testApp, member, "MOH-OLD1", -time.Minute); err != nil {
		t.Fatalf("SaveClaimCode failed: %v", err)
	}
	_, err := SaveDeviceToken(ctx, testApp, member, DeviceToken{
		UserCode:   "OLD-CODE",
		DeviceCode: "old",
		ExpiresAt:  now.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("SaveDeviceToken failed: %v", err)
	}

	res, err := PruneOldData(ctx, testApp, now, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("PruneOldData failed: %v", err)
	}
	if res.Snapshots != 3 || res.ClaimCodes != 1 || res.DeviceTokens != 1 {
		t.Errorf("unexpected prune result: %+v", res)
	}
	if res.Total() != 5 {
		t.Errorf("Expected total 5, got %d", res.Total())
	}

	left, _ := testApp.CountRecords(snapshotsCollection)
	if left != 1 {
		t.Errorf("Expected the recent snapshot to survive, have %d", left)
	}
}

func TestPruneExpiredVerifiedTokens(t *testing.T) {
	testApp, cleanup := setupTestApp(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()
	soon := createTestUser(t, testApp, "soon@example.com")
	later := createTestUser(t, testApp, "later@example.com")

	tokens := map[string]DeviceToken{
		soon:  {UserCode: "SOON-0001", DeviceCode: "soon", ExpiresAt: now.Add(time.Minute)},
		later: {UserCode: "LATE-0001", DeviceCode: "later", ExpiresAt: now.Add(time.Hour)},
	}
	for member, tok := range tokens {
		if _, err := SaveDeviceToken(ctx, testApp, member, tok); err != nil {
			t.Fatalf("SaveDeviceToken failed: %v", err)
		}
		guid := "guid-" + tok.DeviceCode
		if _, err := VerifyCode(ctx, testApp, tok.UserCode, guid, "Player", DefaultMaxIdentities, now); err != nil {
			t.Fatalf("VerifyCode(%s) failed: %v", tok.UserCode, err)
		}
	}

	res, err := PruneOldData(ctx, testApp, now.Add(2*time.Minute), 30*24*time.Hour)
	if err != nil {
		t.Fatalf("PruneOldData failed: %v", err)
	}
	if res.DeviceTokens != 1 {
		t.Errorf("Expected one expired verified token pruned, got %d", res.DeviceTokens)
	}

	left, _ := testApp.CountRecords(deviceTokensCollection)
	if left != 1 {
		t.Errorf("Expected the unexpired verified token to survive, have %d", left)
	}
	ids, _ := testApp.CountRecords(identitiesCollection)
	if ids != 2 {
		t.Errorf("Expected linked identities to outlive their tokens, have %d", ids)
	}
}
