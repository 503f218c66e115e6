package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/2beens/gymcycle/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogFileMaxSizeMB = 50
	defaultLevel            = logrus.TraceLevel
)

type LoggerSetupParams struct {
	LogFileName      string
	LogFileMaxSizeMB int
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

func Setup(params LoggerSetupParams) {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))
	logrus.SetOutput(output(params))

	if params.SentryEnabled {
		setupSentry(params)
	}
}

// output resolves where the logs go: stdout only when no log file is set,
// else a rotated log file, optionally mirrored to stdout.
func output(params LoggerSetupParams) io.Writer {
	if params.LogFileName == "" {
		return os.Stdout
	}

	fileName := params.LogFileName
	if filepath.Ext(fileName) != ".log" {
		fileName += ".log"
	}
	maxSize := params.LogFileMaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultLogFileMaxSizeMB
	}

	// rotated files are kept, no MaxBackups / MaxAge
	fileLogger := &lumberjack.Logger{
		Filename:  fileName,
		MaxSize:   maxSize,
		LocalTime: false,
		Compress:  true,
	}
	if !params.LogToStdout {
		return fileLogger
	}
	return pkg.NewCombinedWriter(os.Stdout, fileLogger)
}

func setupSentry(params LoggerSetupParams) {
	if err := sentry.Init(sentry.ClientOptions{
		Environment:      params.Environment,
		Dsn:              params.SentryDSN,
		TracesSampleRate: 1.0,
		ServerName:       params.SentryServerName,
	}); err != nil {
		logrus.Errorf("sentry init: %s", err)
		return
	}

	logrus.AddHook(newSentryHook(sentry.CurrentHub().Client(), params.SentryServerName))
	logrus.Infof("sentry set up for env [%s]", params.Environment)
}

// GetLevel parses the level name case-insensitively; unknown names give trace.
func GetLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return defaultLevel
	}
	return lvl
}
