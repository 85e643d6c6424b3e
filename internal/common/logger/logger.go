package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configures Init. JSON writes one object per line instead of the
// console format; Out defaults to stdout.
type Options struct {
	Service string
	Debug   bool
	JSON    bool
	Out     io.Writer
}

// Init replaces the global logger. Every record carries the service name.
func Init(opts Options) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.MessageFieldName = "message"

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if !opts.JSON {
		out = consoleWriter(out)
	}

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	log.Logger = zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", opts.Service).
		Logger()

	log.Debug().Bool("json", opts.JSON).Msg("logger ready")
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:              out,
		TimeFormat:       time.RFC3339,
		FormatLevel:      func(i interface{}) string { return fmt.Sprintf("| %-6s|", i) },
		FormatMessage:    func(i interface{}) string { return fmt.Sprintf("| %s", i) },
		FormatFieldName:  func(i interface{}) string { return fmt.Sprintf("%s:", i) },
		FormatFieldValue: func(i interface{}) string { return fmt.Sprint(i) },
	}
}

// Component returns a child of the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str("component", name).Logger()
}

func Debug() *zerolog.Event { return log.Debug() }

func Info() *zerolog.Event { return log.Info() }

func Warn() *zerolog.Event { return log.Warn() }

func Error() *zerolog.Event { return log.Error() }

// Fatal exits the process after the event is sent.
func Fatal() *zerolog.Event { return log.Fatal() }
