// Package logging provides the package-level diagnostic loggers used by the
// view-state core. Recovered failures (a missing viewport during restore, an
// unavailable tool group) are reported here rather than returned as errors.
package logging

import "log"

// Warnf reports a recovered failure. It defaults to log.Printf but may be
// replaced by SetWarnLogger. Tests or production code can redirect or mute it.
var Warnf func(format string, v ...interface{}) = log.Printf

// Debugf reports diagnostic detail. Muted by default.
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// SetWarnLogger replaces the warning logger. Passing nil sets a no-op logger.
func SetWarnLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Warnf = func(string, ...interface{}) {}
		return
	}
	Warnf = f
}

// SetDebugLogger replaces the debug logger. Passing nil sets a no-op logger.
func SetDebugLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Debugf = func(string, ...interface{}) {}
		return
	}
	Debugf = f
}
