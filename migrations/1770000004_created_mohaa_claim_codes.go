package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"createRule": null,
			"deleteRule": null,
			"fields": [
				{
					"autogeneratePattern": "[a-z0-9]{15}",
					"hidden": false,
					"id": "text3208210256",
					"max": 15,
					"min": 15,
					"name": "id",
					"pattern": "^[a-z0-9]+$",
					"presentable": false,
					"primaryKey": true,
					"required": true,
					"system": true,
					"type": "text"
				},
				{
					"cascadeDelete": true,
					"collectionId": "_pb_users_auth_",
					"hidden": false,
					"id": "relation2924424093",
					"maxSelect": 1,
					"minSelect": 0,
					"name": "member",
					"presentable": false,
					"required": true,
					"system": false,
					"type": "relation"
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text3796862722",
					"max": 32,
					"min": 0,
					"name": "code",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": true,
					"system": false,
					"type": "text"
				},
				{
					"hidden": false,
					"id": "date1324349214",
					"max": "",
					"min": "",
					"name": "expires_at",
					"presentable": false,
					"required": true,
					"system": false,
					"type": "date"
				},
				{
					"hidden": false,
					"id": "bool3961377922",
					"name": "used",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "bool"
				},
				{
					"hidden": false,
					"id": "autodate1652755102",
					"name": "created",
					"onCreate": true,
					"onUpdate": false,
					"presentable": false,
					"system": false,
					"type": "autodate"
				}
			],
			"id": "pbc_1184766203",
			"indexes": [
				"CREATE UNIQUE INDEX IF NOT EXISTS ` + "`" + `idx_mohaa_claim_codes_code` + "`" + ` ON ` + "`" + `mohaa_claim_codes` + "`" + ` (` + "`" + `code` + "`" + `)",
				"CREATE INDEX IF NOT EXISTS ` + "`" + `idx_mohaa_claim_codes_expires` + "`" + ` ON ` + "`" + `mohaa_claim_codes` + "`" + ` (` + "`" + `expires_at` + "`" + `)"
			],
			"listRule": "member = @request.auth.id",
			"name": "mohaa_claim_codes",
			"system": false,
			"type": "base",
			"updateRule": null,
			"viewRule": "member = @request.auth.id"
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("pbc_1184766203")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
