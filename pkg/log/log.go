// Package log gives the renderer and the CLI a shared leveled logger built
// on op/go-logging. Components grab a named Logger once at package scope;
// the process configures the single backend with Configure.
package log

import (
	"io"
	"os"

	logging "github.com/op/go-logging"
)

// Logger is the level surface components log against.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Level selects the minimum severity that reaches the sink.
type Level int

const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

// renderer output interleaves with the stats table, so keep lines short:
// time, module, level, message
var format = logging.MustStringFormatter(
	`%{color}%{time:15:04:05} %{module}/%{level:.4s}%{color:reset} %{message}`,
)

// New returns the named logger. Safe to call before Configure; messages use
// the default backend until then.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// Configure points every logger at the given sink with the given minimum
// level, replacing any previous backend.
func Configure(sink io.Writer, level Level) {
	backend := logging.NewBackendFormatter(logging.NewLogBackend(sink, "", 0), format)
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(toBackendLevel(level), "")
	logging.SetBackend(leveled)
}

func toBackendLevel(level Level) logging.Level {
	switch level {
	case Debug:
		return logging.DEBUG
	case Notice:
		return logging.NOTICE
	case Warning:
		return logging.WARNING
	case Error:
		return logging.ERROR
	default:
		return logging.INFO
	}
}

func init() {
	Configure(os.Stdout, Info)
}
