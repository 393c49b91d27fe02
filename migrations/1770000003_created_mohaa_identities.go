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
			"deleteRule": "member = @request.auth.id",
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
					"id": "relation3938062575",
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
					"id": "text3189613815",
					"max": 64,
					"min": 0,
					"name": "player_guid",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": true,
					"system": false,
					"type": "text"
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text3411088707",
					"max": 0,
					"min": 0,
					"name": "player_name",
					"pattern": "",
					"presentable": true,
					"primaryKey": false,
					"required": false,
					"system": false,
					"type": "text"
				},
				{
					"hidden": false,
					"id": "bool1905947388",
					"name": "verified",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "bool"
				},
				{
					"hidden": false,
					"id": "date1233246582",
					"max": "",
					"min": "",
					"name": "linked_date",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "date"
				},
				{
					"hidden": false,
					"id": "autodate3704418229",
					"name": "created",
					"onCreate": true,
					"onUpdate": false,
					"presentable": false,
					"system": false,
					"type": "autodate"
				},
				{
					"hidden": false,
					"id": "autodate2825572090",
					"name": "updated",
					"onCreate": true,
					"onUpdate": true,
					"presentable": false,
					"system": false,
					"type": "autodate"
				}
			],
			"id": "pbc_3091552710",
			"indexes": [
				"CREATE UNIQUE INDEX IF NOT EXISTS ` + "`" + `idx_mohaa_identities_member_guid` + "`" + ` ON ` + "`" + `mohaa_identities` + "`" + ` (` + "`" + `member` + "`" + `, ` + "`" + `player_guid` + "`" + `)",
				"CREATE INDEX IF NOT EXISTS ` + "`" + `idx_mohaa_identities_guid` + "`" + ` ON ` + "`" + `mohaa_identities` + "`" + ` (` + "`" + `player_guid` + "`" + `)"
			],
			"listRule": "",
			"name": "mohaa_identities",
			"system": false,
			"type": "base",
			"updateRule": null,
			"viewRule": ""
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("pbc_3091552710")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
