package render

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func baseFS() fstest.MapFS {
	return fstest.MapFS{
		"layout.html": {Data: []byte(`{{define "layout"}}<main>{{template "content" .}}</main>{{end}}{{template "layout" .}}`)},
		"page.html":   {Data: []byte(`{{define "content"}}{{.Title}}: {{number .Kills}}{{end}}`)},
	}
}

func TestPageRendersLayoutAndContent(t *testing.T) {
	r := New(baseFS(), "", testLogger())

	html, err := r.Page(map[string]any{"Title": "Kills", "Kills": int64(1234567)}, "page.html")
	require.NoError(t, err)
	assert.Equal(t, "<main>Kills: 1,234,567</main>", html)
}

func TestThemeDirOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"),
		[]byte(`{{define "content"}}themed {{.Title}}{{end}}`), 0644))

	r := New(baseFS(), dir, testLogger())

	html, err := r.Page(map[string]any{"Title": "x"}, "page.html")
	require.NoError(t, err)
	assert.Equal(t, "<main>themed x</main>", html)
}

func TestReloadPicksUpChanges(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte(`{{define "content"}}v1{{end}}`), 0644))

	r := New(baseFS(), dir, testLogger())
	html, err := r.Page(nil, "page.html")
	require.NoError(t, err)
	assert.Contains(t, html, "v1")

	require.NoError(t, os.WriteFile(page, []byte(`{{define "content"}}v2{{end}}`), 0644))

	html, _ = r.Page(nil, "page.html")
	assert.Contains(t, html, "v1", "parsed templates are cached until Reload")

	r.Reload()
	html, err = r.Page(nil, "page.html")
	require.NoError(t, err)
	assert.Contains(t, html, "v2")
}

func TestThemeWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte(`{{define "content"}}before{{end}}`), 0644))

	r := New(baseFS(), dir, testLogger())
	_, err := r.Page(nil, "page.html")
	require.NoError(t, err)

	w, err := NewThemeWatcher(r, dir)
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(page, []byte(`{{define "content"}}after{{end}}`), 0644))

	assert.Eventually(t, func() bool {
		html, err := r.Page(nil, "page.html")
		return err == nil && strings.Contains(html, "after")
	}, 5*time.Second, 50*time.Millisecond)
	assert.GreaterOrEqual(t, w.Reloads(), 1)
}

func TestThemeWatcherLogsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil)).With("component", "RENDER")

	dir := t.TempDir()
	r := New(baseFS(), dir, logger)
	w, err := NewThemeWatcher(r, dir)
	require.NoError(t, err)
	w.Start()
	w.Stop()

	out := strings.TrimSpace(buf.String())
	require.Equal(t, 1, strings.Count(out, "Watching theme directory"))
	for _, line := range strings.Split(out, "\n") {
		assert.Equal(t, 1, strings.Count(line, "component="), line)
	}
}

func TestFuncs(t *testing.T) {
	base := fstest.MapFS{
		"f.html": {Data: []byte(
			`{{kd 10 4}}|{{percent 12.345}}|{{duration 3700}}|{{default "n/a" ""}}|{{add 1 2}}|{{rankIcon 150}}|{{len (seq 3)}}|{{(dict "a" 1).a}}`,
		)},
	}
	r := New(base, "", testLogger())

	html, err := r.Render(nil, "f.html")
	require.NoError(t, err)

	parts := strings.Split(html, "|")
	require.Len(t, parts, 8)
	assert.Equal(t, "2.50", parts[0])
	assert.Equal(t, "12.3%", parts[1])
	assert.Equal(t, "1h 01m", parts[2])
	assert.Equal(t, "n/a", parts[3])
	assert.Equal(t, "3", parts[4])
	assert.Equal(t, "🥉", parts[5])
	assert.Equal(t, "3", parts[6])
	assert.Equal(t, "1", parts[7])
}

func TestDictRejectsOddArgs(t *testing.T) {
	_, err := dict("a")
	assert.Error(t, err)

	_, err = dict(1, 2)
	assert.Error(t, err)
}
