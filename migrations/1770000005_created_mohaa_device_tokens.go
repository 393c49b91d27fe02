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
					"id": "relation2100274733",
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
					"id": "text2103155047",
					"max": 32,
					"min": 0,
					"name": "user_code",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": true,
					"system": false,
					"type": "text"
				},
				{
					"autogeneratePattern": "",
					"hidden": true,
					"id": "text2807042799",
					"max": 0,
					"min": 0,
					"name": "device_code",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": false,
					"system": false,
					"type": "text"
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text4062257703",
					"max": 0,
					"min": 0,
					"name": "verification_url",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": false,
					"system": false,
					"type": "text"
				},
				{
					"hidden": false,
					"id": "date3226982814",
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
					"id": "bool2857649692",
					"name": "verified",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "bool"
				},
				{
					"hidden": false,
					"id": "autodate2838616479",
					"name": "created",
					"onCreate": true,
					"onUpdate": false,
					"presentable": false,
					"system": false,
					"type": "autodate"
				}
			],
			"id": "pbc_2839047715",
			"indexes": [
				"CREATE UNIQUE INDEX IF NOT EXISTS ` + "`" + `idx_mohaa_device_tokens_user_code` + "`" + ` ON ` + "`" + `mohaa_device_tokens` + "`" + ` (` + "`" + `user_code` + "`" + `)",
				"CREATE INDEX IF NOT EXISTS ` + "`" + `idx_mohaa_device_tokens_expires` + "`" + ` ON ` + "`" + `mohaa_device_tokens` + "`" + ` (` + "`" + `expires_at` + "`" + `)"
			],
			"listRule": "member = @request.auth.id",
			"name": "mohaa_device_tokens",
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
		collection, err := app.FindCollectionByNameOrId("pbc_2839047715")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
