package host

import (
	"io"
	"log/slog"

	"github.com/tetratelabs/wazero"
)

type config struct {
	logger  *slog.Logger
	version versionPolicy
}

func defaultConfig() config {
	return config{version: defaultVersionPolicy()}
}

func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Option configures a Guest.
type Option func(*config)

// WithLogger sets the logger for failed guest calls.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithVersionConstraint replaces the default version range with expr,
// a semver constraint such as ">=0.3.0, <0.5.0".
func WithVersionConstraint(expr string) Option {
	return func(c *config) {
		c.version.constraint = expr
		c.version.exact = false
	}
}

// WithExactVersion accepts only guests built against exactly the host version.
func WithExactVersion() Option {
	return func(c *config) {
		c.version.exact = true
	}
}

// WithHostVersion overrides the version the host reports. It defaults to
// the SDK version the host was built with.
func WithHostVersion(v string) Option {
	return func(c *config) {
		c.version.host = v
	}
}

type executorConfig struct {
	runtime wazero.RuntimeConfig
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
}

// ExecutorOption defines a functional option for configuring the Executor.
type ExecutorOption func(*executorConfig)

// WithRuntimeConfig sets the wazero runtime configuration, for example to
// enable context cancellation with WithCloseOnContextDone.
func WithRuntimeConfig(rc wazero.RuntimeConfig) ExecutorOption {
	return func(c *executorConfig) {
		c.runtime = rc
	}
}

// WithModuleOutput connects the WASI stdout and stderr of loaded guests.
// Output written through flush_io is not affected.
func WithModuleOutput(stdout, stderr io.Writer) ExecutorOption {
	return func(c *executorConfig) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// WithExecutorLogger sets the logger for module loading and export failures.
func WithExecutorLogger(l *slog.Logger) ExecutorOption {
	return func(c *executorConfig) {
		c.logger = l
	}
}
