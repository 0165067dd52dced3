package logsvc

import (
	"log"

	"github.com/mkuprys/gradefold/core"
)

// ConsoleLogger writes leveled lines to a standard logger. It is the
// default for local runs and environments without a Rollbar token.
type ConsoleLogger struct {
	std     *log.Logger
	enabled bool
	debug   bool
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(std *log.Logger, conf *core.Config) *ConsoleLogger {
	return &ConsoleLogger{std: std, enabled: true, debug: conf.Debug}
}

func (l *ConsoleLogger) Enable(enabled bool) { l.enabled = enabled }

func (l *ConsoleLogger) log(level, msg string, args []interface{}) {
	if !l.enabled {
		return
	}
	if len(args) == 0 {
		l.std.Printf("%s %s\n", level, msg)
		return
	}
	l.std.Printf("%s %s %+v\n", level, msg, args)
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.log("DEBUG", msg, args)
	}
}

func (l *ConsoleLogger) Info(msg string, args ...interface{}) { l.log("INFO", msg, args) }
func (l *ConsoleLogger) Warn(msg string, args ...interface{}) { l.log("WARN", msg, args) }

func (l *ConsoleLogger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
