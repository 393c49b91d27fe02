package statsapi

import "context"

// InitDeviceAuth asks the backend for a login token the member types in game.
// regenerate invalidates any token issued earlier for the member.
func (c *Client) InitDeviceAuth(ctx context.Context, forumUserID string, regenerate bool) (*DeviceAuth, error) {
	payload := map[string]any{
		"forum_user_id": forumUserID,
		"regenerate":    regenerate,
	}
	var out DeviceAuth
	if err := c.post(ctx, "/auth/device", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitClaim asks the backend for a claim code proving ownership of a GUID.
func (c *Client) InitClaim(ctx context.Context, forumUserID string) (*ClaimInit, error) {
	var out ClaimInit
	if err := c.post(ctx, "/auth/claim/init", map[string]any{"forum_user_id": forumUserID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
