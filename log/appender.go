package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogAppender is an output destination for finished log lines.
type LogAppender interface {
	Write(p []byte) (int, error)
	Refresh()
}

// ConsoleAppender writes log lines to stdout.
type ConsoleAppender struct{}

// NewConsoleAppender creates a stdout appender.
func NewConsoleAppender() *ConsoleAppender {
	return &ConsoleAppender{}
}

func (a *ConsoleAppender) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

// Refresh is a no-op for the console.
func (a *ConsoleAppender) Refresh() {}

// FileAppender appends log lines to a file and rotates it once it grows past
// FileSplitMB megabytes.
type FileAppender struct {
	mu      sync.Mutex
	path    string
	splitMB int
	file    *os.File
	written int64
}

// NewFileAppender creates a file appender for cfg.LogPath. The file is opened lazily.
func NewFileAppender(cfg *LogCfg) *FileAppender {
	return &FileAppender{
		path:    cfg.LogPath,
		splitMB: cfg.FileSplitMB,
	}
}

func (a *FileAppender) open() error {
	if dir := filepath.Dir(a.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	a.file = f
	a.written = st.Size()
	return nil
}

func (a *FileAppender) rotate() error {
	if err := a.file.Close(); err != nil {
		return err
	}
	a.file = nil
	rotated := fmt.Sprintf("%s.%s", a.path, time.Now().Format("20060102150405.000"))
	if err := os.Rename(a.path, rotated); err != nil {
		return err
	}
	return a.open()
}

func (a *FileAppender) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		if err := a.open(); err != nil {
			return 0, err
		}
	}
	if a.splitMB > 0 && a.written+int64(len(p)) > int64(a.splitMB)<<20 {
		if err := a.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := a.file.Write(p)
	a.written += int64(n)
	return n, err
}

// Refresh flushes the file to disk.
func (a *FileAppender) Refresh() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file != nil {
		_ = a.file.Sync()
	}
}

// Close closes the underlying file.
func (a *FileAppender) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}
