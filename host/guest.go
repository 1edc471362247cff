package host

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/metaview-dev/mapp-sdk/application/plugin"
	"github.com/metaview-dev/mapp-sdk/domain/errors"
	"github.com/metaview-dev/mapp-sdk/domain/signature"
	"github.com/metaview-dev/mapp-sdk/wireformat"
)

// Exports is the raw export contract of a guest: a method name and its
// positional argument text in, result text out. It is implemented by the
// wazero adapter and, in process, by guest.Dispatcher.
type Exports interface {
	Call(ctx context.Context, name, args string) (string, error)
}

// Guest is the typed host facade over a guest's exports. Calls are
// serialised. After the first broken contract every call fails with
// ErrPoisoned wrapping the original cause.
type Guest struct {
	exports  Exports
	logger   *slog.Logger
	closer   io.Closer
	poisoned error
	version  string
	mu       sync.Mutex
}

var _ plugin.Client = (*Guest)(nil)

// NewGuest checks the guest's binding version against the host policy and
// then initializes it. initialize is called exactly once.
func NewGuest(ctx context.Context, exports Exports, opts ...Option) (*Guest, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	g := &Guest{exports: exports, logger: cfg.log()}

	version, err := invoke[string](ctx, g, signature.ExportAPIVersion)
	if err != nil {
		return nil, fmt.Errorf("query guest version: %w", err)
	}
	if err := cfg.version.check(version); err != nil {
		g.logger.ErrorContext(ctx, "host: incompatible guest", "error", err)
		return nil, err
	}
	g.version = version

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := g.exports.Call(ctx, signature.ExportInitialize, ""); err != nil {
		return nil, g.fail(ctx, signature.ExportInitialize, &errors.ExportError{Method: signature.ExportInitialize, Err: err})
	}
	return g, nil
}

// APIVersion returns the binding version the guest reported at construction.
func (g *Guest) APIVersion(_ context.Context) (string, error) {
	return g.version, nil
}

// Poisoned returns the error every call fails with, or nil.
func (g *Guest) Poisoned() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.poisoned
}

// Close releases the underlying module, if the Guest owns one.
func (g *Guest) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer.Close()
}

// fail poisons g with cause and returns cause. Must be called with mu held.
func (g *Guest) fail(ctx context.Context, method string, cause error) error {
	if g.poisoned == nil && errors.IsContractError(cause) {
		g.poisoned = fmt.Errorf("%w: %w", errors.ErrPoisoned, cause)
		g.logger.ErrorContext(ctx, "host: guest poisoned", "method", method, "error", cause)
	}
	return cause
}

// invoke encodes args, calls method and decodes its result as R.
func invoke[R any](ctx context.Context, g *Guest, method string, args ...any) (R, error) {
	var out R

	text, encodeErr := wireformat.EncodeArgs(args...)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.poisoned != nil {
		return out, g.poisoned
	}
	if encodeErr != nil {
		return out, g.fail(ctx, method, &errors.EncodeError{Method: method, Stage: errors.StageArgs, Err: encodeErr})
	}

	result, err := g.exports.Call(ctx, method, text)
	if err != nil {
		return out, g.fail(ctx, method, &errors.ExportError{Method: method, Err: err})
	}
	if err := wireformat.Unmarshal(result, &out); err != nil {
		return out, g.fail(ctx, method, &errors.DecodeError{Method: method, Stage: errors.StageResult, Err: err})
	}
	return out, nil
}
