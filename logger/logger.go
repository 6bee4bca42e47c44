// Package logger reports errors to Rollbar when a token is configured. Plain logging
// stays on the standard log package.
package logger

import (
	"log"

	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"
)

var enabled bool

// Init configures Rollbar. An empty token leaves reporting disabled.
func Init(token, env, host string) {
	enabled = token != ""
	rollbar.SetEnabled(enabled)
	if !enabled {
		return
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetServerHost(host)
	rollbar.SetStackTracer(rollbarerrors.StackTracer)
	log.Printf("Rollbar error reporting enabled (%s)", env)
}

// Error logs err and reports it. extras are attached as custom data.
func Error(msg string, err error, extras map[string]interface{}) {
	log.Printf("%s: %+v", msg, err)
	if !enabled {
		return
	}
	if extras == nil {
		extras = map[string]interface{}{}
	}
	extras["message"] = msg
	rollbar.Error(err, extras)
}

// Critical reports a recovered panic.
func Critical(value interface{}) {
	log.Printf("panic recovered: %v", value)
	if enabled {
		rollbar.Critical(value)
	}
}

// Close flushes pending reports.
func Close() {
	if enabled {
		rollbar.Close()
	}
}
