// internal/infra/logger/logger.go
package logger

import (
	"io"
	"os"
	"strings"

	"team_attendance_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the global logger instance
var Log = logrus.New()

// Init configures the global logger from the application configuration.
func Init(cfg *config.AppConfig) {
	Configure(Log, os.Stdout, cfg.LogLevel, cfg.Environment)

	Log.Info("Logger initialized successfully.")
	Log.Debugf("Log level set to: %s", Log.GetLevel().String())
	Log.Debugf("Log format set for environment: %s", cfg.Environment)
}

// Configure sets output, level and formatter on l.
// Production and staging log JSON; everything else logs colored text.
func Configure(l *logrus.Logger, out io.Writer, level, environment string) {
	l.SetOutput(out)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		l.SetLevel(logrus.InfoLevel)
		l.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", level, err)
	} else {
		l.SetLevel(parsed)
	}

	switch strings.ToLower(environment) {
	case "production", "staging":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
		})
	default:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}
}

// Component returns an entry tagged with the component name, e.g. "scheduler".
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}
