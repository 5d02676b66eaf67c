package log

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file rotation settings.
const (
	logFileMaxSizeMB  = 5
	logFileMaxBackups = 3
	logFileMaxAgeDays = 30
)

// Options configures NewLogger.
type Options struct {
	// Verbose lowers the level from Warn to Debug.
	Verbose bool

	// JSON selects the JSON handler instead of the text handler.
	JSON bool

	// LogFile, when set, also writes log output to a rotating file.
	LogFile string
}

// NewLogger creates a sanitizing logger writing to w and, when
// opts.LogFile is set, to a rotating log file.
// The returned io.Closer closes the log file; it is a no-op otherwise.
func NewLogger(w io.Writer, opts Options) (*slog.Logger, io.Closer) {
	var closer io.Closer = nopCloser{}

	if opts.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
			Compress:   true,
		}
		w = io.MultiWriter(w, rotator)
		closer = rotator
	}

	handlerOpts := &slog.HandlerOptions{Level: level(opts.Verbose)}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	return slog.New(NewSecureHandler(handler)), closer
}

// NewSecureLogger creates a sanitizing text logger.
// verbose selects Debug level; otherwise only warnings and errors are logged.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	logger, _ := NewLogger(w, Options{Verbose: verbose})
	return logger
}

// NewSecureJSONLogger creates a sanitizing JSON logger.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	logger, _ := NewLogger(w, Options{Verbose: verbose, JSON: true})
	return logger
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
