package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	app := &App{}

	cmd := app.initConfigCommand()
	cmd.SetArgs([]string{"--format", "toml"})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile("mohaa-portal.toml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "[api]")

	t.Run("refuses to overwrite", func(t *testing.T) {
		cmd := app.initConfigCommand()
		cmd.SetArgs([]string{"--format", "yml"})
		assert.Error(t, cmd.Execute())
	})

	t.Run("force overwrites", func(t *testing.T) {
		cmd := app.initConfigCommand()
		cmd.SetArgs([]string{"--format", "yml", "--force"})
		require.NoError(t, cmd.Execute())
		_, err := os.Stat("mohaa-portal.yml")
		assert.NoError(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	app := &App{Version: "1.2.3", Commit: "abc", Date: "today"}
	cmd := app.versionCommand()
	cmd.SetArgs([]string{})
	assert.NoError(t, cmd.Execute())
}
