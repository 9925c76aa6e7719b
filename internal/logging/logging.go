// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields is shorthand for structured log fields.
type Fields = logrus.Fields

// Options configures the logger.
type Options struct {
	// Level is a logrus level name; empty means info.
	Level string
	// File, when set, also writes to a size-rotated log file.
	File string
	// NoColors disables ANSI colours on the console.
	NoColors bool
	// Caller adds the calling function to every entry.
	Caller bool
	// Console is where entries are printed; nil means stderr.
	Console io.Writer
}

// New creates a logger with the nested formatter. The returned closer
// flushes and closes the log file, if any.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		l, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&formatter.Formatter{
		NoColors:        opts.NoColors,
		TimestampFormat: "02 Jan 06 15:04:05.000",
		FieldsOrder:     []string{"component", "session", "gesture", "side"},
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, s[len(s)-1])
		},
	})
	logger.SetReportCaller(opts.Caller)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    50,
			MaxAge:     14,
			MaxBackups: 5,
		}
		logger.SetOutput(io.MultiWriter(console, file))
		closer = file
	} else {
		logger.SetOutput(console)
	}

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
