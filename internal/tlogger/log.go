package tlogger

import (
	"io"
	"os"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Log is the default logger for the build pipeline
var Log log.Logger

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stdout
	filter           = level.AllowInfo()
	hlog   log.Logger
)

func init() {
	rebuild()
}

func rebuild() {
	base := log.NewLogfmtLogger(log.NewSyncWriter(out))
	Log = level.NewFilter(log.With(base, "ts", log.DefaultTimestampUTC, "caller", log.Caller(5)), filter)
	hlog = level.NewFilter(log.With(base, "ts", log.DefaultTimestampUTC, "caller", log.Caller(6)), filter)
}

// ApplyLogLevel sets the minimum level: debug, warn, error, all, anything else means info.
func ApplyLogLevel(lvl string) {
	mu.Lock()
	defer mu.Unlock()

	switch lvl {
	case "debug":
		filter = level.AllowDebug()
	case "warn":
		filter = level.AllowWarn()
	case "error":
		filter = level.AllowError()
	case "all":
		filter = level.AllowAll()
	default:
		filter = level.AllowInfo()
	}
	rebuild()
}

// SetOutput redirects every log entry to w. Tests use it with io.Discard or a buffer.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	rebuild()
}

func current() log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return hlog
}

// Debug add a log entry w/ Debug level
func Debug(keyvals ...interface{}) {
	level.Debug(current()).Log(keyvals...)
}

// Info add a log entry w/ Info level
func Info(keyvals ...interface{}) {
	level.Info(current()).Log(keyvals...)
}

// Warn add a log entry w/ Warn level
func Warn(keyvals ...interface{}) {
	level.Warn(current()).Log(keyvals...)
}

// Error add a log entry w/ Error level
func Error(keyvals ...interface{}) {
	level.Error(current()).Log(keyvals...)
}

// FatalIf prints a fatal Error level and exits if err != nil
func FatalIf(err error) {
	if err == nil {
		return
	}
	level.Error(current()).Log("err", err)
	os.Exit(1)
}
