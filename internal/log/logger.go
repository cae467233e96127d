package log

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

// Level selects the minimum severity that reaches the sink
type Level int

const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var backendLevels = map[Level]logging.Level{
	Debug:   logging.DEBUG,
	Info:    logging.INFO,
	Notice:  logging.NOTICE,
	Warning: logging.WARNING,
	Error:   logging.ERROR,
}

// Logger is the printf-style leveled surface handed to each package.
// Loggers are named so output can be attributed to a module.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Noticef(format string, v ...interface{})
	Warningf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

var format = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{module}: %{level:.4s} %{color}%{message}%{color:reset}`,
)

var backend logging.LeveledBackend

// New returns the named module logger
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// SetSink redirects all log output to the given writer. Verbosity
// resets to the notice default, so call SetLevel afterwards if needed.
func SetSink(sink io.Writer) {
	formatted := logging.NewBackendFormatter(logging.NewLogBackend(sink, "", 0), format)
	backend = logging.AddModuleLevel(formatted)
	backend.SetLevel(logging.NOTICE, "")
	logging.SetBackend(backend)
}

// SetLevel sets the minimum severity for every module
func SetLevel(level Level) {
	backend.SetLevel(backendLevels[level], "")
}

func init() {
	SetSink(os.Stderr)
}
