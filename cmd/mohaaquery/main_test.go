package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"mohaa-portal/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() map[string]*query.ServerStatus {
	return map[string]*query.ServerStatus{
		"10.0.0.2:12203": {
			Address: "10.0.0.2:12203",
			Name:    "down",
			Error:   errors.New("i/o timeout"),
		},
		"10.0.0.1:12203": {
			Address:   "10.0.0.1:12203",
			Name:      "main",
			Online:    true,
			QueryTime: 42 * time.Millisecond,
			Status: &query.Status{
				Hostname:   "^1Red ^7Server",
				Map:        "obj/obj_team2",
				Gametype:   "Objective",
				MaxPlayers: 32,
				Players:    []query.Player{{Name: "^2Sniper", Score: 12, Ping: 50}},
			},
		},
	}
}

func TestPrintResultsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResults(&buf, sampleResults(), options{players: true}))

	out := buf.String()
	assert.Contains(t, out, "Red Server")
	assert.NotContains(t, out, "^1")
	assert.Contains(t, out, "1/32")
	assert.Contains(t, out, "(offline)")
	assert.Contains(t, out, "Sniper")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("10.0.0.1")), bytes.Index(buf.Bytes(), []byte("10.0.0.2")))
}

func TestPrintResultsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResults(&buf, sampleResults(), options{asJSON: true}))

	var rows []result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "10.0.0.1:12203", rows[0].Address)
	assert.Equal(t, int64(42), rows[0].PingMS)
	assert.Empty(t, rows[0].Roster)
	assert.False(t, rows[1].Online)
	assert.Equal(t, "i/o timeout", rows[1].Error)
}

func TestTargetsFromArgs(t *testing.T) {
	servers, err := targets([]string{"a:1", "b:2"})
	require.NoError(t, err)
	require.Len(t, servers, 2)
	assert.Equal(t, "b:2", servers[1].Address)
}

func TestTargetsWithoutConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := targets(nil)
	assert.Error(t, err)
}
