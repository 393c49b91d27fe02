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
	claimCodesCollection   = "mohaa_claim_codes"
	deviceTokensCollection = "mohaa_device_tokens"
)

// ErrCodeNotFound means no pending, unexpired login token or claim code
// matches what the player typed.
var ErrCodeNotFound = errors.New("login code is invalid or expired")

// ClaimCode is a one-time code the player types in game to prove ownership.
type ClaimCode struct {
	ID        string
	MemberID  string
	Code      string
	ExpiresAt time.Time
	Used      bool
}

// DeviceToken mirrors a device authorization started with the stats API.
type DeviceToken struct {
	ID              string
	MemberID        string
	UserCode        string
	DeviceCode      string
	VerificationURL string
	ExpiresAt       time.Time
	Verified        bool
}

// Expired reports whether the token is past its expiry at now.
func (t DeviceToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (c ClaimCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// SaveClaimCode stores a freshly issued claim code and invalidates the
// member's older unused ones.
func SaveClaimCode(ctx context.Context, pbApp core.App, memberID, code string, ttl time.Duration) (*ClaimCode, error) {
	expires := time.Now().Add(ttl)
	var saved *core.Record

	err := pbApp.RunInTransaction(func(txApp core.App) error {
		old, err := txApp.FindRecordsByFilter(
			claimCodesCollection,
			"member = {:member} && used = false",
			"", 0, 0,
			dbx.Params{"member": memberID},
		)
		if err != nil {
			return err
		}
		for _, r := range old {
			if err := txApp.Delete(r); err != nil {
				return err
			}
		}

		collection, err := txApp.FindCollectionByNameOrId(claimCodesCollection)
		if err != nil {
			return err
		}
		saved = core.NewRecord(collection)
		saved.Set("member", memberID)
		saved.Set("code", code)
		saved.Set("expires_at", expires)
		return txApp.Save(saved)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save claim code: %w", err)
	}

	return &ClaimCode{
		ID:        saved.Id,
		MemberID:  memberID,
		Code:      code,
		ExpiresAt: saved.GetDateTime("expires_at").Time(),
	}, nil
}

// ActiveClaimCode returns the member's newest unexpired unused code, or nil.
func ActiveClaimCode(ctx context.Context, pbApp core.App, memberID string, now time.Time) (*ClaimCode, error) {
	records, err := pbApp.FindRecordsByFilter(
		claimCodesCollection,
		"member = {:member} && used = false && expires_at > {:now}",
		"-expires_at",
		1, 0,
		dbx.Params{"member": memberID, "now": dateString(now)},
	)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	r := records[0]
	return &ClaimCode{
		ID:        r.Id,
		MemberID:  memberID,
		Code:      r.GetString("code"),
		ExpiresAt: r.GetDateTime("expires_at").Time(),
		Used:      r.GetBool("used"),
	}, nil
}

// SaveDeviceToken records a device authorization for memberID, replacing
// any pending one.
func SaveDeviceToken(ctx context.Context, pbApp core.App, memberID string, tok DeviceToken) (*DeviceToken, error) {
	var saved *core.Record

	err := pbApp.RunInTransaction(func(txApp core.App) error {
		pending, err := txApp.FindRecordsByFilter(
			deviceTokensCollection,
			"member = {:member} && verified = false",
			"", 0, 0,
			dbx.Params{"member": memberID},
		)
		if err != nil {
			return err
		}
		for _, r := range pending {
			if err := txApp.Delete(r); err != nil {
				return err
			}
		}

		collection, err := txApp.FindCollectionByNameOrId(deviceTokensCollection)
		if err != nil {
			return err
		}
		saved = core.NewRecord(collection)
		saved.Set("member", memberID)
		saved.Set("user_code", tok.UserCode)
		saved.Set("device_code", tok.DeviceCode)
		saved.Set("verification_url", tok.VerificationURL)
		saved.Set("expires_at", tok.ExpiresAt)
		return txApp.Save(saved)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save device token: %w", err)
	}

	out := deviceTokenFromRecord(saved)
	return &out, nil
}

// ActiveDeviceToken returns the member's pending unexpired token, or nil.
func ActiveDeviceToken(ctx context.Context, pbApp core.App, memberID string, now time.Time) (*DeviceToken, error) {
	records, err := pbApp.FindRecordsByFilter(
		deviceTokensCollection,
		"member = {:member} && verified = false && expires_at > {:now}",
		"-expires_at",
		1, 0,
		dbx.Params{"member": memberID, "now": dateString(now)},
	)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	t := deviceTokenFromRecord(records[0])
	return &t, nil
}

func deviceTokenFromRecord(r *core.Record) DeviceToken {
	return DeviceToken{
		ID:              r.Id,
		MemberID:        r.GetString("member"),
		UserCode:        r.GetString("user_code"),
		DeviceCode:      r.GetString("device_code"),
		VerificationURL: r.GetString("verification_url"),
		ExpiresAt:       r.GetDateTime("expires_at").Time(),
		Verified:        r.GetBool("verified"),
	}
}

// VerifyCode consumes the pending device token or claim code matching code
// and links guid to its member as a verified identity. The code is only
// consumed when the link succeeds.
func VerifyCode(ctx context.Context, pbApp core.App, code, guid, name string, maxIdentities int, now time.Time) (*Identity, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCodeNotFound
	}

	var linked *Identity
	err := pbApp.RunInTransaction(func(txApp core.App) error {
		pending, consumed, err := findPendingCode(txApp, code, now)
		if err != nil {
			return err
		}

		linked, err = linkIdentity(txApp, pending.GetString("member"), guid, name, true, maxIdentities)
		if err != nil {
			return err
		}

		pending.Set(consumed, true)
		return txApp.Save(pending)
	})
	if err != nil {
		return nil, err
	}
	return linked, nil
}

// findPendingCode looks up code among device tokens first, then claim codes,
// and returns the record with the field that marks it consumed.
func findPendingCode(txApp core.App, code string, now time.Time) (*core.Record, string, error) {
	params := dbx.Params{"code": code, "now": dateString(now)}

	if r, err := txApp.FindFirstRecordByFilter(deviceTokensCollection,
		"user_code = {:code} && verified = false && expires_at > {:now}", params); err == nil {
		return r, "verified", nil
	}
	if r, err := txApp.FindFirstRecordByFilter(claimCodesCollection,
		"code = {:code} && used = false && expires_at > {:now}", params); err == nil {
		return r, "used", nil
	}
	return nil, "", ErrCodeNotFound
}
