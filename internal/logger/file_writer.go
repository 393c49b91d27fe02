package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// FileWriter writes JSON log lines to a file with buffering and size based rotation
type FileWriter struct {
	filePath   string
	maxSize    int64
	maxBackups int
	size       int64
	file       *os.File
	writer     *bufio.Writer
	bufferSize int
	ticker     *time.Ticker
	done       chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
}

// FileWriterConfig configures the file writer
type FileWriterConfig struct {
	FilePath   string        // Path to log file
	MaxSize    int64         // Max file size in bytes (0 = no rotation)
	MaxBackups int           // Number of rotated log files to keep (default: 5)
	BufferSize int           // Buffer size in bytes (default: 8192)
	FlushEvery time.Duration // How often to flush buffer (default: 3s)
}

// NewFileWriter creates a new file writer with buffering and rotation
func NewFileWriter(config FileWriterConfig) (*FileWriter, error) {
	if config.MaxBackups <= 0 {
		config.MaxBackups = 5
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 8192
	}
	if config.FlushEvery <= 0 {
		config.FlushEvery = 3 * time.Second
	}

	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if config.MaxSize > 0 {
		if err := rotateIfNeeded(config.FilePath, config.MaxSize, config.MaxBackups); err != nil {
			return nil, fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	fw := &FileWriter{
		filePath:   config.FilePath,
		maxSize:    config.MaxSize,
		maxBackups: config.MaxBackups,
		bufferSize: config.BufferSize,
		done:       make(chan struct{}),
	}
	if err := fw.open(); err != nil {
		return nil, err
	}

	fw.ticker = time.NewTicker(config.FlushEvery)
	fw.wg.Add(1)
	go fw.periodicFlush()

	return fw, nil
}

func (fw *FileWriter) open() error {
	file, err := os.OpenFile(fw.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	fw.file = file
	fw.size = info.Size()
	fw.writer = bufio.NewWriterSize(file, fw.bufferSize)
	return nil
}

// Write implements io.Writer. Each call is expected to be one log line.
func (fw *FileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.writeLocked(p)
}

func (fw *FileWriter) writeLocked(p []byte) (int, error) {
	if fw.maxSize > 0 && fw.size+int64(len(p)) > fw.maxSize && fw.size > 0 {
		if err := fw.rotateLocked(); err != nil {
			return 0, err
		}
	}

	n, err := fw.writer.Write(p)
	fw.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("failed to write log entry: %w", err)
	}

	if fw.writer.Available() < 1024 {
		return n, fw.writer.Flush()
	}
	return n, nil
}

func (fw *FileWriter) rotateLocked() error {
	if err := fw.writer.Flush(); err != nil {
		return err
	}
	if err := fw.file.Close(); err != nil {
		return err
	}
	if err := rotateIfNeeded(fw.filePath, 0, fw.maxBackups); err != nil {
		return err
	}
	return fw.open()
}

// WriteEntry marshals entry as one JSON line.
func (fw *FileWriter) WriteEntry(entry map[string]any) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}
	_, err = fw.Write(append(data, '\n'))
	return err
}

// WriteLog writes a PocketBase log entry to the file
func (fw *FileWriter) WriteLog(log *core.Log) error {
	entry := map[string]any{
		"time":    log.Created.Time().Format(time.RFC3339Nano),
		"level":   LevelName(log.Level),
		"message": log.Message,
	}
	for k, v := range log.Data {
		entry[k] = v
	}
	return fw.WriteEntry(entry)
}

// Flush flushes the buffer to disk
func (fw *FileWriter) Flush() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.writer.Flush()
}

// Close stops the flush loop and closes the file
func (fw *FileWriter) Close() error {
	if fw.ticker != nil {
		fw.ticker.Stop()
		close(fw.done)
		fw.wg.Wait()
		fw.ticker = nil
	}
	if err := fw.Flush(); err != nil {
		return err
	}
	return fw.file.Close()
}

func (fw *FileWriter) periodicFlush() {
	defer fw.wg.Done()
	for {
		select {
		case <-fw.ticker.C:
			if err := fw.Flush(); err != nil {
				fmt.Fprintf(os.Stderr, "logger: periodic flush failed: %v\n", err)
			}
		case <-fw.done:
			return
		}
	}
}
