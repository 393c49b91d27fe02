package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// PruneResult counts what a prune pass removed.
type PruneResult struct {
	Snapshots    int64
	ClaimCodes   int64
	DeviceTokens int64
}

func (r PruneResult) Total() int64 {
	return r.Snapshots + r.ClaimCodes + r.DeviceTokens
}

// PruneOldData deletes snapshots older than retention, used or expired claim
// codes, and every device token that expired before now. A verified token is
// kept until it expires; the identity it linked lives on its own. Callers that
// want atomicity pass a transaction app.
func PruneOldData(ctx context.Context, pbApp core.App, now time.Time, retention time.Duration) (PruneResult, error) {
	var res PruneResult
	var err error

	res.Snapshots, err = deleteWhere(ctx, pbApp,
		`DELETE FROM server_snapshots WHERE created < {:cutoff}`,
		dbx.Params{"cutoff": dateString(now.Add(-retention))})
	if err != nil {
		return res, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	expired := dbx.Params{"now": dateString(now)}

	res.ClaimCodes, err = deleteWhere(ctx, pbApp,
		`DELETE FROM mohaa_claim_codes WHERE expires_at < {:now} OR used = TRUE`, expired)
	if err != nil {
		return res, fmt.Errorf("failed to prune claim codes: %w", err)
	}

	res.DeviceTokens, err = deleteWhere(ctx, pbApp,
		`DELETE FROM mohaa_device_tokens WHERE expires_at < {:now}`, expired)
	if err != nil {
		return res, fmt.Errorf("failed to prune device tokens: %w", err)
	}

	return res, nil
}

func deleteWhere(ctx context.Context, pbApp core.App, sql string, params dbx.Params) (int64, error) {
	result, err := pbApp.DB().NewQuery(sql).Bind(params).WithContext(ctx).Execute()
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
