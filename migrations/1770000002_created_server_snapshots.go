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
					"collectionId": "pbc_1650443201",
					"hidden": false,
					"id": "relation507388156",
					"maxSelect": 1,
					"minSelect": 0,
					"name": "server",
					"presentable": false,
					"required": true,
					"system": false,
					"type": "relation"
				},
				{
					"hidden": false,
					"id": "number3336567117",
					"max": null,
					"min": 0,
					"name": "players",
					"onlyInt": true,
					"presentable": false,
					"required": false,
					"system": false,
					"type": "number"
				},
				{
					"hidden": false,
					"id": "bool3663809504",
					"name": "online",
					"presentable": false,
					"required": false,
					"system": false,
					"type": "bool"
				},
				{
					"autogeneratePattern": "",
					"hidden": false,
					"id": "text2407333057",
					"max": 0,
					"min": 0,
					"name": "map",
					"pattern": "",
					"presentable": false,
					"primaryKey": false,
					"required": false,
					"system": false,
					"type": "text"
				},
				{
					"hidden": false,
					"id": "autodate1387007315",
					"name": "created",
					"onCreate": true,
					"onUpdate": false,
					"presentable": false,
					"system": false,
					"type": "autodate"
				}
			],
			"id": "pbc_2210874532",
			"indexes": [
				"CREATE INDEX IF NOT EXISTS ` + "`" + `idx_server_snapshots_server_created` + "`" + ` ON ` + "`" + `server_snapshots` + "`" + ` (` + "`" + `server` + "`" + `, ` + "`" + `created` + "`" + ` DESC)",
				"CREATE INDEX IF NOT EXISTS ` + "`" + `idx_server_snapshots_created` + "`" + ` ON ` + "`" + `server_snapshots` + "`" + ` (` + "`" + `created` + "`" + `)"
			],
			"listRule": "",
			"name": "server_snapshots",
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
		collection, err := app.FindCollectionByNameOrId("pbc_2210874532")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
