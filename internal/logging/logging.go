package logging

import (
	"io"
	"os"
	"strings"

	smithylogging "github.com/aws/smithy-go/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultLevel = zerolog.InfoLevel

// ParseLevel maps a LOG_LEVEL value to a zerolog level, falling back to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "panic":
		return zerolog.PanicLevel
	case "fatal":
		return zerolog.FatalLevel
	case "error":
		return zerolog.ErrorLevel
	case "warn":
		return zerolog.WarnLevel
	case "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	case "trace":
		return zerolog.TraceLevel
	default:
		return DefaultLevel
	}
}

func SetLogLevel(level string) {
	zerolog.SetGlobalLevel(ParseLevel(level))
}

// Setup points the global logger at the writer for the current mode.
func Setup(level string, console bool) {
	SetLogLevel(level)
	log.Logger = zerolog.New(Writer(console)).With().Timestamp().Logger()
}

// Writer returns JSON lines on stdout for Lambda. The console writer goes to
// stderr since stdout carries the result of a local invocation.
func Writer(console bool) io.Writer {
	if console {
		return zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return os.Stdout
}

// RetryLogger wraps a zerolog.Logger so the AWS SDK can log retries through it
type RetryLogger struct {
	Log *zerolog.Logger
}

func (l *RetryLogger) Logf(classification smithylogging.Classification, format string, v ...interface{}) {
	switch classification {
	case smithylogging.Warn:
		l.Log.Warn().Msgf(format, v...)
	case smithylogging.Debug:
		if strings.Contains(format, "retrying request") {
			l.Log.Info().Msgf(format, v...)
		} else {
			l.Log.Debug().Msgf(format, v...)
		}
	default:
		l.Log.Error().Msgf(format, v...)
	}
}
