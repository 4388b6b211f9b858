package logging

import (
	"io"
	"os"
	"strings"

	"github.com/2beens/fitlife/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 10
)

type LoggerSetupParams struct {
	// LogFileName enables the rotated log file, ".log" is appended when missing.
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
	MaxSizeMB     int
	MaxBackups    int

	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

// Setup configures the global logrus logger. The returned func closes the
// log file, if any, and is safe to call when there is none.
func Setup(params LoggerSetupParams) func() {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.SentryEnabled {
		setupSentry(params)
	}

	out, closeOut := newOutput(params)
	logrus.SetOutput(out)

	return func() {
		if err := closeOut(); err != nil {
			logrus.SetOutput(os.Stderr)
			logrus.Errorf("close log file: %s", err)
		}
	}
}

func setupSentry(params LoggerSetupParams) {
	err := sentry.Init(sentry.ClientOptions{
		Environment:      params.Environment,
		Dsn:              params.SentryDSN,
		TracesSampleRate: 1.0,
		ServerName:       params.SentryServerName,
	})
	if err != nil {
		logrus.Errorf("sentry.Init: %s", err)
		return
	}

	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infoln("sentry set up")
}

func newOutput(params LoggerSetupParams) (io.Writer, func() error) {
	noop := func() error { return nil }
	if params.LogFileName == "" {
		return os.Stdout, noop
	}

	fileName := params.LogFileName
	if !strings.HasSuffix(fileName, ".log") {
		fileName += ".log"
	}

	maxSize := params.MaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := params.MaxBackups
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}

	rotated := &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		LocalTime:  false, // UTC
		Compress:   true,
	}

	if params.LogToStdout {
		return pkg.NewCombinedWriter(os.Stdout, rotated), rotated.Close
	}
	return rotated, rotated.Close
}

// GetLevel parses level case-insensitively. Unknown levels fall back to info.
func GetLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
