// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Level orders log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	default:
		return "INFO"
	}
}

// Logger writes timestamped "[15:04:05] LEVEL: msg" lines. A nil *Logger discards
// everything, so callers never need to check whether verbose output is on.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	min   Level
	clock func() time.Time
}

// New returns a logger writing lines at or above min to out.
func New(out io.Writer, min Level) *Logger {
	return &Logger{out: out, min: min, clock: time.Now}
}

func (l *Logger) Debugf(format string, args ...any) { l.printf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.printf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.printf(LevelWarn, format, args...) }

func (l *Logger) printf(level Level, format string, args ...any) {
	if l == nil || l.out == nil || level < l.min {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "[%s] %s: %s\n", l.clock().Format("15:04:05"), level, line)
}
