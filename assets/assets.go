package assets

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

//go:embed templates/*.html static/* configs/*
var webFS embed.FS

// WebAssets holds the embedded templates, static files and example configs
type WebAssets struct {
	fs embed.FS
}

// NewWebAssets creates a new WebAssets instance with the provided embed.FS
func NewWebAssets(embedFS embed.FS) *WebAssets {
	return &WebAssets{fs: embedFS}
}

// GetWebAssets returns the default WebAssets instance with embedded files
func GetWebAssets() *WebAssets {
	return &WebAssets{fs: webFS}
}

// FS returns the embedded filesystem
func (w *WebAssets) FS() embed.FS {
	return w.fs
}

// Sub returns a sub-filesystem rooted at dir
func (w *WebAssets) Sub(dir string) (fs.FS, error) {
	return fs.Sub(w.fs, dir)
}

// ReadFile reads and returns the content of the named file
func (w *WebAssets) ReadFile(name string) ([]byte, error) {
	return w.fs.ReadFile(name)
}

// Templates lists the embedded template file names.
func (w *WebAssets) Templates() ([]string, error) {
	return fs.Glob(w.fs, "templates/*.html")
}

// GetExampleConfig returns the example config for "yml" or "toml".
func (w *WebAssets) GetExampleConfig(format string) ([]byte, error) {
	switch format {
	case "yml", "yaml":
		return w.fs.ReadFile("configs/mohaa-portal.example.yml")
	case "toml":
		return w.fs.ReadFile("configs/mohaa-portal.example.toml")
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}

// WriteExampleConfig writes the example config to path, replacing it atomically.
func (w *WebAssets) WriteExampleConfig(path string, format string) error {
	data, err := w.GetExampleConfig(format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}
