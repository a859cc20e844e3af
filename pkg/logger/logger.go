package logger

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

/* Structs */

type Config struct {
	// File is the path of the rotated activity log; empty disables file output.
	File string
	// Verbosity follows the -v count: 0 info, 1 debug, 2+ trace.
	Verbosity  int
	MaxSizeMB  int
	MaxBackups int
}

/* Vars */

var (
	rootLogger = newRootLogger(os.Stderr)
)

/* Public */

// Init reconfigures the shared logger used by GetLogger.
func Init(cfg Config) {
	switch {
	case cfg.Verbosity >= 2:
		rootLogger.SetLevel(logrus.TraceLevel)
	case cfg.Verbosity == 1:
		rootLogger.SetLevel(logrus.DebugLevel)
	default:
		rootLogger.SetLevel(logrus.InfoLevel)
	}

	if cfg.File == "" {
		rootLogger.SetOutput(os.Stderr)
		return
	}

	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 5
	}
	maxBackups := cfg.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 10
	}

	rootLogger.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     14,
		Compress:   true,
	}))
}

// GetLogger returns an entry tagged with the given prefix.
func GetLogger(prefix string) *logrus.Entry {
	return rootLogger.WithField("prefix", prefix)
}

// New builds a standalone logger writing to w, for callers that want their own sink.
func New(w io.Writer, level logrus.Level) *logrus.Logger {
	l := newRootLogger(w)
	l.SetLevel(level)
	return l
}

/* Private */

func newRootLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceFormatting: true,
	})
	return l
}
