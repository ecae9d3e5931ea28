package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Log flags
const (
	LstdFlags     = log.LstdFlags
	Lmicroseconds = log.Lmicroseconds
)

// Logger wraps the standard log.Logger and adds a single status line that
// is rewritten in place. Every write holds mu, so log lines and status
// updates from different goroutines never interleave.
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	std       *log.Logger
	statusLen int // width of the status line on screen, 0 if none
}

// New creates a new logger
func New() *Logger {
	return NewWriter(os.Stdout)
}

// NewWriter creates a new logger that writes to the provided writer
func NewWriter(w io.Writer) *Logger {
	return &Logger{
		out: w,
		std: log.New(w, "", log.LstdFlags),
	}
}

// SetFlags sets the output flags for the logger
func (l *Logger) SetFlags(flag int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.std.SetFlags(flag)
}

// Printf writes a log line, ending any status line first.
func (l *Logger) Printf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.endStatus()
	l.std.Printf(format, v...)
}

// Println writes a log line, ending any status line first.
func (l *Logger) Println(v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.endStatus()
	l.std.Println(v...)
}

// Status replaces the current status line.
func (l *Logger) Status(format string, v ...any) {
	line := fmt.Sprintf(format, v...)

	l.mu.Lock()
	defer l.mu.Unlock()
	pad := ""
	if n := l.statusLen - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprintf(l.out, "\r%s%s", line, pad)
	l.statusLen = len(line)
}

// EndStatus moves past the status line so it stays on screen.
func (l *Logger) EndStatus() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.endStatus()
}

func (l *Logger) endStatus() {
	if l.statusLen > 0 {
		fmt.Fprintln(l.out)
		l.statusLen = 0
	}
}
