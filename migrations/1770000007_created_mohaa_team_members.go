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
					"collectionId": "pbc_4020558164",
					"hidden": false,
					"id": "relation2254526299",
					"maxSelect": 1,
					"minSelect": 0,
					"name": "team",
					"presentable": false,
					"required": true,
					"system": false,
					"type": "relation"
				},
				{
					"cascadeDelete": true,
					"collectionId": "_pb_users_auth_",
					"hidden": false,
					"id": "relation776728690",
					"maxSelect": 1,
					"minSelect": 0,
					"name": "member",
					"presentable": false,
					"required": true,
					"system": false,
					"type": "relation"
				},
				{
					"hidden": false,
					"id": "select367557422",
					"maxSelect": 1,
					"name": "role",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "select",
					"values": [
						"captain",
						"member"
					]
				},
				{
					"hidden": false,
					"id": "autodate1387721132",
					"name": "created",
					"onCreate": true,
					"onUpdate": false,
					"presentable": false,
					"system": false,
					"type": "autodate"
				}
			],
			"id": "pbc_3377120586",
			"indexes": [
				"CREATE UNIQUE INDEX IF NOT EXISTS ` + "`" + `idx_mohaa_team_members_team_member` + "`" + ` ON ` + "`" + `mohaa_team_members` + "`" + ` (` + "`" + `team` + "`" + `, ` + "`" + `member` + "`" + `)",
				"CREATE UNIQUE INDEX IF NOT EXISTS ` + "`" + `idx_mohaa_team_members_member` + "`" + ` ON ` + "`" + `mohaa_team_members` + "`" + ` (` + "`" + `member` + "`" + `)"
			],
			"listRule": "",
			"name": "mohaa_team_members",
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
		collection, err := app.FindCollectionByNameOrId("pbc_3377120586")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
