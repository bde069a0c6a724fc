package logger

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	corelogger "github.com/kilianp07/vesselpower/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// Env holds the logging settings read from the process environment.
type Env struct {
	AppEnv string `env:"APP_ENV" envDefault:"prod"`
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads logging settings from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// New returns a Logger for the given component. The environment is detected via
// the APP_ENV and LOG_LEVEL variables.
func New(component string) Logger {
	e, err := ParseEnv()
	if err != nil {
		e = Env{AppEnv: "prod", Level: "info"}
	}
	return NewZerologLogger(component, e)
}
