// Package logging wraps a process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger    *logrus.Logger
	once      sync.Once
	runID     string
	runIDOnce sync.Once
)

type Fields = logrus.Fields

// Options controls logger construction. Zero values give a debug-level
// stderr logger with colors.
type Options struct {
	Level      string // logrus level name, e.g. "info"
	File       string // rotating log file; empty disables file output
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	NoColors   bool
	Caller     bool // prefix each line with file:line and function
}

// Init configures the logger. Only the first call has any effect.
func Init(opts Options) *logrus.Logger {
	once.Do(func() {
		logger = build(opts)
	})
	return logger
}

func build(opts Options) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = logrus.DebugLevel
	}
	l.SetLevel(level)

	l.SetFormatter(&formatter.Formatter{
		NoColors:        opts.NoColors,
		TimestampFormat: "15:04:05.000",
		HideKeys:        false,
		CallerFirst:     true,
		FieldsOrder:     []string{"component", "run_id"},
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, funcName)
		},
	})

	writers := []io.Writer{os.Stderr}
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    opts.MaxSizeMB,
			MaxAge:     opts.MaxAgeDays,
			MaxBackups: opts.MaxBackups,
		})
	}
	l.SetOutput(io.MultiWriter(writers...))
	l.SetReportCaller(opts.Caller)

	return l
}

// L returns the process logger, initializing it with defaults if needed.
func L() *logrus.Logger {
	return Init(Options{})
}

// RunID identifies this process run in every log line.
func RunID() string {
	runIDOnce.Do(func() {
		runID = uuid.NewString()
	})
	return runID
}

// WithComponent returns an entry tagged with the component name and run id.
func WithComponent(name string) *logrus.Entry {
	return L().WithFields(Fields{
		"component": name,
		"run_id":    RunID(),
	})
}
