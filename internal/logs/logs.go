// Package logs hands out the package level loggers used by the engines.
//
// Library modules log at DEBUG on failure paths and default to WARNING so a host that never configures
// logging sees nothing. Hosts call SetLevel (or configure go-logging backends themselves) to see more.
package logs

import (
	"github.com/op/go-logging"
)

// Root - Prefix of every module name handed out by this package
const Root = "memhashmap"

var modules = map[string]bool{}

// MustGetLogger - Returns the logger for a library module and silences it below WARNING
func MustGetLogger(module string) *logging.Logger {
	name := Root + "." + module
	modules[name] = true
	logging.SetLevel(logging.WARNING, name)

	return logging.MustGetLogger(name)
}

// SetLevel - Sets level for every library module registered so far
func SetLevel(level logging.Level) {
	for name := range modules {
		logging.SetLevel(level, name)
	}
}
