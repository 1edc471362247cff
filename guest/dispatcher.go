package guest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/metaview-dev/mapp-sdk/application/plugin"
	"github.com/metaview-dev/mapp-sdk/domain/errors"
	"github.com/metaview-dev/mapp-sdk/domain/signature"
	"github.com/metaview-dev/mapp-sdk/wireformat"
)

// invocation runs one decoded call against the instance and returns the
// value to encode, or nil for methods without a result.
type invocation func(m plugin.Mapp) any

// binder decodes the positional argument tuple of one method.
type binder func(text string) (invocation, error)

// Dispatcher is the guest entry point. It owns the Guard holding the plugin
// instance and serves the raw export contract: every call names a method and
// carries its arguments as wire text.
type Dispatcher struct {
	factory func() plugin.Mapp
	logger  *slog.Logger
	guard   Guard[plugin.Mapp]
}

type dispatcherConfig struct {
	logger *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*dispatcherConfig)

// WithLogger sets the logger used for failed calls.
func WithLogger(l *slog.Logger) Option {
	return func(c *dispatcherConfig) {
		c.logger = l
	}
}

// NewDispatcher creates a dispatcher whose initialize export builds the
// instance with factory. T must implement every method of the Signature
// Table; a type that does not fails to compile here.
func NewDispatcher[T plugin.Mapp](factory func() T, opts ...Option) *Dispatcher {
	cfg := dispatcherConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Dispatcher{
		factory: func() plugin.Mapp { return factory() },
		logger:  cfg.logger,
	}
}

// Initialize constructs the instance, discarding any previous one.
func (d *Dispatcher) Initialize() error {
	return d.guard.Initialize(d.factory)
}

// APIVersion returns the binding version the guest was generated with.
// It needs no instance.
func (d *Dispatcher) APIVersion() string {
	return plugin.Versioned{}.APIVersion()
}

// State returns the lifecycle state of the instance.
func (d *Dispatcher) State() State {
	return d.guard.State()
}

// Names returns the table methods served, in declaration order.
func (d *Dispatcher) Names() []string {
	out := make([]string, len(methodOrder))
	copy(out, methodOrder)
	return out
}

// Call decodes args, runs the named method under the guard and encodes the
// result. Arguments are decoded before the guard is taken, so a malformed
// payload is never partially applied. Every error is a broken contract.
func (d *Dispatcher) Call(ctx context.Context, name, args string) (string, error) {
	text, err := d.call(name, args)
	if err != nil {
		d.logger.ErrorContext(ctx, "mapp call failed", "method", name, "state", d.guard.State().String(), "error", err)
		return "", err
	}
	return text, nil
}

func (d *Dispatcher) call(name, args string) (string, error) {
	switch name {
	case signature.ExportInitialize:
		if err := wireformat.DecodeArgs(args); err != nil {
			return "", &errors.DecodeError{Method: name, Stage: errors.StageArgs, Err: err}
		}
		if err := d.Initialize(); err != nil {
			return "", err
		}
		return wireformat.Null, nil

	case signature.ExportAPIVersion:
		if err := wireformat.DecodeArgs(args); err != nil {
			return "", &errors.DecodeError{Method: name, Stage: errors.StageArgs, Err: err}
		}
		return wireformat.Marshal(d.APIVersion())
	}

	bind, ok := binders[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownMethod, name)
	}
	invoke, err := bind(args)
	if err != nil {
		return "", &errors.DecodeError{Method: name, Stage: errors.StageArgs, Err: err}
	}

	var result any
	if err := d.guard.With(name, func(m plugin.Mapp) {
		result = invoke(m)
	}); err != nil {
		return "", err
	}

	text, err := wireformat.Marshal(result)
	if err != nil {
		return "", &errors.EncodeError{Method: name, Stage: errors.StageResult, Err: err}
	}
	return text, nil
}
