package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// sink is where log lines go. A nil out means logging is off.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	counts map[string]int
}

var std = &sink{counts: map[string]int{}}

// Path is the default log location, ~/.config/go-rhythm/debug.log
func Path() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "go-rhythm", "debug.log")
}

// Enable starts debug logging to Path()
func Enable() error {
	return EnableAt(Path())
}

// EnableAt starts debug logging to path, truncating it. A second call while
// enabled is a no-op.
func EnableAt(path string) error {
	if Enabled() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	std.set(f, f)
	Log("debug", "=== Debug logging started ===")
	return nil
}

// SetOutput sends log lines to w. nil turns logging off.
func SetOutput(w io.Writer) {
	std.set(w, nil)
}

func (s *sink) set(w io.Writer, c io.Closer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer != nil {
		s.closer.Close()
	}
	s.out, s.closer = w, c
	s.counts = map[string]int{}
}

// Enabled reports whether Log writes anywhere
func Enabled() bool {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.out != nil
}

// Disable stops debug logging and closes the log file
func Disable() {
	std.set(nil, nil)
}

// Log writes one line under category
func Log(category, format string, args ...any) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.write(category, fmt.Sprintf(format, args...))
}

func (s *sink) write(category, msg string) {
	if s.out == nil {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(s.out, "[%s] %-10s %s\n", ts, category, msg)
	if f, ok := s.out.(*os.File); ok {
		f.Sync() // keep the tail on disk if we crash
	}
}

// LogEvery logs only every nth call with the same category and format.
// Use it for per-block events.
func LogEvery(n int, category, format string, args ...any) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if std.out == nil {
		return
	}
	key := category + format
	std.counts[key]++
	count := std.counts[key]
	if n <= 1 || count%n == 0 {
		std.write(category, fmt.Sprintf(format, args...)+fmt.Sprintf(" (every %d, count=%d)", n, count))
	}
}

// Printer logs Print calls under one category. It satisfies loggers that
// only need Print, such as chi's request logger.
type Printer string

func (p Printer) Print(v ...any) {
	Log(string(p), "%s", fmt.Sprint(v...))
}
