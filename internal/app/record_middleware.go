package app

import (
	"github.com/pocketbase/pocketbase/core"
)

// secretFields are record fields only superusers may read through the
// records API. The portal pages never expose them either.
var secretFields = map[string][]string{
	"mohaa_device_tokens": {"device_code"},
	"mohaa_claim_codes":   {"code"},
}

// BindRecordMiddlewares hides secret fields from non-superuser API reads.
func BindRecordMiddlewares(app core.App) {
	for collection, fields := range secretFields {
		app.OnRecordsListRequest(collection).BindFunc(func(e *core.RecordsListRequestEvent) error {
			if !e.HasSuperuserAuth() {
				for _, record := range e.Records {
					record.Hide(fields...)
				}
			}
			return e.Next()
		})

		app.OnRecordViewRequest(collection).BindFunc(func(e *core.RecordRequestEvent) error {
			if !e.HasSuperuserAuth() {
				e.Record.Hide(fields...)
			}
			return e.Next()
		})
	}
}
