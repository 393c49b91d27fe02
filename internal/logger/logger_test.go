package logger

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", sc.Text(), err)
		}
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRotateIfNeeded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	os.WriteFile(path, []byte(strings.Repeat("x", 100)), 0644)
	os.WriteFile(path+".1", []byte("first"), 0644)
	os.WriteFile(path+".2", []byte("second"), 0644)

	// below the limit, nothing moves
	if err := rotateIfNeeded(path, 1000, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal("log file should remain in place")
	}

	if err := rotateIfNeeded(path, 50, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("log file should have been moved to .1")
	}
	data, _ := os.ReadFile(path + ".2")
	if string(data) != "first" {
		t.Errorf(".2 = %q, want previous .1 contents", data)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("backups beyond maxBackups should not exist")
	}
}

func TestFileWriterRotatesWhileWriting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portal.log")

	fw, err := NewFileWriter(FileWriterConfig{FilePath: path, MaxSize: 64, MaxBackups: 3, FlushEvery: time.Hour})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		if err := fw.WriteEntry(map[string]any{"message": strings.Repeat("m", 30)}); err != nil {
			t.Fatalf("WriteEntry: %v", err)
		}
	}
	if err := fw.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Error("expected a rotated backup")
	}
	if lines := readLines(t, path); len(lines) == 0 {
		t.Error("current log file should hold the latest entries")
	}
}

func TestTeeHandlerMirrorsToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tee.log")

	fw, err := NewFileWriter(FileWriterConfig{FilePath: path, FlushEvery: time.Hour})
	if err != nil {
		t.Fatal(err)
	}

	var console strings.Builder
	primary := slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn})
	log := slog.New(NewTeeHandler(primary, fw, slog.LevelDebug)).With("component", "TEST")

	log.Debug("only in file", "n", 1)
	log.Warn("everywhere")

	if err := fw.Close(); err != nil {
		t.Fatal(err)
	}

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("file lines = %d, want 2", len(lines))
	}
	if lines[0]["message"] != "only in file" || lines[0]["component"] != "TEST" {
		t.Errorf("unexpected first line: %v", lines[0])
	}
	if strings.Contains(console.String(), "only in file") {
		t.Error("debug record should not reach the warn-level console handler")
	}
	if !strings.Contains(console.String(), "everywhere") {
		t.Error("warn record missing from console output")
	}
}
