package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"mohaa-portal/internal/database"

	"github.com/pocketbase/pocketbase/core"
)

const (
	defaultTokenExpiry = 600 * time.Second

	// serverTokenHeader carries the key game servers share with the portal.
	serverTokenHeader = "X-Server-Token"
)

var identityNotices = map[string]string{
	"token":    "A new login token was generated. Enter it in game with /login.",
	"claim":    "A claim code was generated. Type it in game chat to link your player.",
	"unlinked": "The identity was unlinked.",
}

func (h *Handlers) identityArea() *Dispatcher {
	return NewDispatcher("identity", "link").
		On("link", h.identityLink)
}

type identityData struct {
	Identities []database.Identity
	Claim      *database.ClaimCode
	Token      *database.DeviceToken
}

func (h *Handlers) identityLink(re *core.RequestEvent) error {
	member, err := h.requireMember(re)
	if member == nil {
		return err
	}
	page := h.identityPage(re, member.Id)
	page.Notice = identityNotices[queryString(re, "notice")]
	return h.render(re, page, "identity.html")
}

func (h *Handlers) identityPage(re *core.RequestEvent, memberID string) *Page {
	ctx := re.Request.Context()
	now := time.Now()
	var data identityData
	var err error

	if data.Identities, err = database.GetIdentities(ctx, h.app, memberID); err != nil {
		h.warn(re, "Failed to load identities", err)
	}
	if data.Claim, err = database.ActiveClaimCode(ctx, h.app, memberID, now); err != nil {
		h.warn(re, "Failed to load claim code", err)
	}
	if data.Token, err = database.ActiveDeviceToken(ctx, h.app, memberID, now); err != nil {
		h.warn(re, "Failed to load device token", err)
	}

	return h.page(re, "identity", "link", "Link Game Identity", data)
}

// identityPost handles token and claim generation and unlinking.
func (h *Handlers) identityPost(re *core.RequestEvent) error {
	member, err := h.requireMember(re)
	if member == nil {
		return err
	}
	ctx := re.Request.Context()

	fail := func(status int, msg string, err error) error {
		if err != nil {
			h.warn(re, msg, err, "member", member.Id)
		}
		page := h.identityPage(re, member.Id)
		page.Error = msg
		return h.renderStatus(re, status, page, "identity.html")
	}

	switch re.Request.FormValue("action_type") {
	case "generate_token":
		auth, err := h.api.InitDeviceAuth(ctx, member.Id, re.Request.FormValue("regenerate") == "1")
		if err != nil {
			return fail(http.StatusBadGateway, "Failed to generate a login token.", err)
		}
		expiry := time.Duration(auth.ExpiresIn) * time.Second
		if expiry <= 0 {
			expiry = defaultTokenExpiry
		}
		_, err = database.SaveDeviceToken(ctx, h.app, member.Id, database.DeviceToken{
			UserCode:        auth.UserCode,
			DeviceCode:      auth.DeviceCode,
			VerificationURL: auth.VerificationURL,
			ExpiresAt:       time.Now().Add(expiry),
		})
		if err != nil {
			return fail(http.StatusInternalServerError, "Failed to store the login token.", err)
		}
		return re.Redirect(http.StatusSeeOther, "/identity?notice=token")

	case "generate_claim":
		claim, err := h.api.InitClaim(ctx, member.Id)
		if err != nil {
			return fail(http.StatusBadGateway, "Failed to generate a claim code.", err)
		}
		expiry := time.Duration(claim.ExpiresIn) * time.Second
		if expiry <= 0 {
			expiry = defaultTokenExpiry
		}
		if _, err := database.SaveClaimCode(ctx, h.app, member.Id, claim.Code, expiry); err != nil {
			return fail(http.StatusInternalServerError, "Failed to store the claim code.", err)
		}
		return re.Redirect(http.StatusSeeOther, "/identity?notice=claim")

	case "unlink":
		err := database.UnlinkIdentity(ctx, h.app, member.Id, re.Request.FormValue("identity_id"))
		if errors.Is(err, database.ErrIdentityNotFound) {
			return fail(http.StatusNotFound, "That identity is not linked to your account.", nil)
		}
		if err != nil {
			return fail(http.StatusInternalServerError, "Failed to unlink the identity.", err)
		}
		h.logger.Info("Identity unlinked", "member", member.Id)
		return re.Redirect(http.StatusSeeOther, "/identity?notice=unlinked")
	}

	return fail(http.StatusBadRequest, "Unknown action.", nil)
}

// identityVerify is called by a game server when a player enters a login
// token or claim code in game. It consumes the code and links the player's
// GUID to the member that generated it.
func (h *Handlers) identityVerify(re *core.RequestEvent) error {
	key := h.cfg.API.ServerToken
	given := re.Request.Header.Get(serverTokenHeader)
	if key == "" || subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
		return re.JSON(http.StatusUnauthorized, map[string]any{"success": false, "error": "invalid server token"})
	}

	code := re.Request.FormValue("token")
	guid := re.Request.FormValue("guid")
	if code == "" || guid == "" {
		return re.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "token and guid are required"})
	}

	id, err := database.VerifyCode(re.Request.Context(), h.app, code, guid,
		re.Request.FormValue("player_name"), h.cfg.Site.MaxIdentities, time.Now())
	switch {
	case errors.Is(err, database.ErrCodeNotFound):
		return re.JSON(http.StatusNotFound, map[string]any{"success": false, "error": "invalid or expired token"})
	case errors.Is(err, database.ErrInvalidGUID):
		return re.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "invalid guid"})
	case errors.Is(err, database.ErrTooManyIdentities):
		return re.JSON(http.StatusConflict, map[string]any{"success": false, "error": "identity limit reached"})
	case err != nil:
		h.warn(re, "Failed to verify identity", err, "guid", guid)
		return re.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "verification failed"})
	}

	name := ""
	if member, err := h.app.FindRecordById(usersCollection, id.MemberID); err == nil {
		name = memberName(member)
	}
	h.logger.Info("Identity verified", "member", id.MemberID, "guid", id.PlayerGUID)

	return re.JSON(http.StatusOK, map[string]any{
		"success":     true,
		"member_id":   id.MemberID,
		"member_name": name,
		"guid":        id.PlayerGUID,
	})
}
