// Package render turns page view models into HTML using the embedded
// templates, optionally overridden by files in a theme directory.
package render

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/pocketbase/pocketbase/tools/template"
)

// LayoutFile wraps every full page.
const LayoutFile = "layout.html"

// Renderer renders named templates. It is safe for concurrent use; Reload
// swaps the underlying registry so themes can change at runtime.
type Renderer struct {
	mu       sync.RWMutex
	registry *template.Registry
	fsys     fs.FS
	logger   *slog.Logger
}

// New creates a Renderer over base (the embedded templates directory). When
// themeDir is non-empty, files found there take precedence over base.
func New(base fs.FS, themeDir string, logger *slog.Logger) *Renderer {
	fsys := base
	if themeDir != "" {
		fsys = overlayFS{top: os.DirFS(themeDir), base: base}
	}

	r := &Renderer{fsys: fsys, logger: logger}
	r.Reload()
	return r
}

// Reload drops every parsed template so the next render reads them again.
func (r *Renderer) Reload() {
	registry := template.NewRegistry()
	registry.AddFuncs(Funcs())

	r.mu.Lock()
	r.registry = registry
	r.mu.Unlock()
}

// Page renders a full page: the layout plus the page's own template and any
// partials it includes.
func (r *Renderer) Page(data any, page string, partials ...string) (string, error) {
	files := append([]string{LayoutFile, page}, partials...)
	return r.Render(data, files...)
}

// Render renders the given template files, the first of which is executed.
func (r *Renderer) Render(data any, files ...string) (string, error) {
	r.mu.RLock()
	registry := r.registry
	r.mu.RUnlock()

	return registry.LoadFS(r.fsys, files...).Render(data)
}

// overlayFS serves files from top, falling back to base when top does not
// have them.
type overlayFS struct {
	top  fs.FS
	base fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.top.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.base.Open(name)
}
