package internal

// Scan diagnostics.

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	// error levels that should almost always be printed
	LevelFatal LogLevel = iota // error that stops the scan
	LevelError                 // error that does not need to stop the scan

	// debugging levels, okay to disable
	LevelWarn // something may be wrong with the dataset
	LevelInfo // nothing wrong, informational only

	// Production code by default only shows warnings and above.
	LogLevelDefault = LevelWarn

	// min, max levels for setting print level
	LevelMin = LevelFatal
	LevelMax = LevelInfo
)

var levelToLogrus = []logrus.Level{
	logrus.ErrorLevel, // fatal for the scan, not for the process
	logrus.ErrorLevel,
	logrus.WarnLevel,
	logrus.InfoLevel,
}

var levelToPrefix = []string{
	"FATAL",
	"ERROR",
	"WARN",
	"INFO",
}

// Diagnostic is one recorded message.
type Diagnostic struct {
	Level   LogLevel
	Message string
}

func (d Diagnostic) String() string {
	return levelToPrefix[d.Level] + " " + d.Message
}

// Logger records scan diagnostics and forwards them to logrus.
// Identical warnings are emitted once per Logger.
type Logger struct {
	logLevel LogLevel
	logger   *logrus.Entry
	state    *logState
}

type logState struct {
	mu      sync.Mutex
	seen    map[string]bool
	records []Diagnostic
}

// NewLogger returns a Logger writing through base. A nil base uses the
// logrus standard logger.
func NewLogger(base *logrus.Logger) *Logger {
	if base == nil {
		base = logrus.StandardLogger()
	}
	return &Logger{
		logLevel: LogLevelDefault,
		logger:   logrus.NewEntry(base),
		state:    &logState{seen: map[string]bool{}},
	}
}

// With returns a Logger sharing records and dedup state with l, whose
// output carries the given field.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{
		logLevel: l.logLevel,
		logger:   l.logger.WithField(key, value),
		state:    l.state,
	}
}

func (l *Logger) LogLevel() LogLevel {
	return l.logLevel
}

// SetLogLevel returns the old level
func (l *Logger) SetLogLevel(level LogLevel) LogLevel {
	if level < LevelMin || level > LevelMax {
		panic("trying to set invalid log level")
	}
	old := l.logLevel
	l.logLevel = level
	return old
}

func (l *Logger) output(level LogLevel, s string) {
	s = strings.TrimRight(s, "\n")
	st := l.state
	st.mu.Lock()
	if level == LevelWarn {
		if st.seen[s] {
			st.mu.Unlock()
			return
		}
		st.seen[s] = true
	}
	st.records = append(st.records, Diagnostic{Level: level, Message: s})
	st.mu.Unlock()
	if level > l.logLevel {
		return
	}
	l.logger.Log(levelToLogrus[level], s)
}

// Diagnostics returns everything recorded so far, including messages below
// the print level.
func (l *Logger) Diagnostics() []Diagnostic {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	ret := make([]Diagnostic, len(l.state.records))
	copy(ret, l.state.records)
	return ret
}

// Count returns the number of recorded diagnostics at the given level.
func (l *Logger) Count(level LogLevel) int {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	n := 0
	for _, d := range l.state.records {
		if d.Level == level {
			n++
		}
	}
	return n
}

func (l *Logger) Info(v ...any)                 { l.output(LevelInfo, fmt.Sprintln(v...)) }
func (l *Logger) Infof(format string, v ...any) { l.output(LevelInfo, fmt.Sprintf(format, v...)) }

func (l *Logger) Warn(v ...any)                 { l.output(LevelWarn, fmt.Sprintln(v...)) }
func (l *Logger) Warnf(format string, v ...any) { l.output(LevelWarn, fmt.Sprintf(format, v...)) }

func (l *Logger) Error(v ...any)                 { l.output(LevelError, fmt.Sprintln(v...)) }
func (l *Logger) Errorf(format string, v ...any) { l.output(LevelError, fmt.Sprintf(format, v...)) }

// Fatalf records a scan-fatal condition. It does not exit; the caller
// unwinds the scan.
func (l *Logger) Fatalf(format string, v ...any) { l.output(LevelFatal, fmt.Sprintf(format, v...)) }

func (l LogLevel) String() string {
	if l < LevelMin || l > LevelMax {
		return "unknown"
	}
	return strings.ToLower(levelToPrefix[l])
}

// ParseLogLevel maps a level name such as "warn" to its LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	for l := LevelMin; l <= LevelMax; l++ {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
