package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero/api"

	"github.com/metaview-dev/mapp-sdk/domain/signature"
	"github.com/metaview-dev/mapp-sdk/internal/abi"
)

// Names of the memory exports every guest provides.
const (
	ExportAllocate   = "allocate"
	ExportDeallocate = "deallocate"
)

// DefaultMaxMessageSize bounds argument and result text (1 MiB).
const DefaultMaxMessageSize = 1 << 20

// Module is the part of api.Module the adapter uses.
type Module interface {
	ExportedFunction(name string) api.Function
	Memory() api.Memory
}

// AdapterConfig holds configuration for the exports adapter.
type AdapterConfig struct {
	// Logger receives call failures. Defaults to slog.Default().
	Logger *slog.Logger

	// MaxRequestSize limits the argument text written into guest memory.
	MaxRequestSize uint32

	// MaxResponseSize limits the result text read from guest memory.
	MaxResponseSize uint32
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithLogger sets the logger for call failures.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		c.Logger = l
	}
}

// WithMaxRequestSize sets the maximum argument size written to guest memory.
func WithMaxRequestSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxRequestSize = size
	}
}

// WithMaxResponseSize sets the maximum result size read from guest memory.
func WithMaxResponseSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxResponseSize = size
	}
}

// defaultAdapterConfig returns the default adapter configuration.
func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		MaxRequestSize:  DefaultMaxMessageSize,
		MaxResponseSize: DefaultMaxMessageSize,
	}
}

// Exports calls the table exports of one guest module. It is not safe for
// concurrent use; the host facade serialises calls.
type Exports struct {
	mod Module
	cfg AdapterConfig
}

// NewExports wraps mod, usually an api.Module returned by wazero.
func NewExports(mod Module, opts ...AdapterOption) *Exports {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Exports{mod: mod, cfg: cfg}
}

// Call invokes the export name with args and returns its result text.
// initialize returns the empty string.
func (e *Exports) Call(ctx context.Context, name, args string) (string, error) {
	text, err := e.call(ctx, name, args)
	if err != nil {
		e.cfg.Logger.ErrorContext(ctx, "wazero: guest export failed",
			"guest", guestName(ctx, e.mod), "export", name, "error", err)
		return "", err
	}
	return text, nil
}

func (e *Exports) call(ctx context.Context, name, args string) (string, error) {
	fn := e.mod.ExportedFunction(name)
	if fn == nil {
		return "", fmt.Errorf("export %q not found", name)
	}

	var (
		results []uint64
		err     error
	)
	switch name {
	case signature.ExportInitialize, signature.ExportAPIVersion:
		results, err = fn.Call(ctx)
	default:
		var ptr, length uint32
		if ptr, length, err = e.writeArgs(ctx, args); err != nil {
			return "", err
		}
		results, err = fn.Call(ctx, uint64(ptr), uint64(length))
		e.release(ctx, ptr, length)
	}
	if err != nil {
		return "", err
	}

	if name == signature.ExportInitialize {
		return "", nil
	}
	if len(results) == 0 {
		return "", fmt.Errorf("export %q returned no result", name)
	}
	return e.readResult(ctx, results[0])
}

// writeArgs copies args into guest memory obtained from allocate.
func (e *Exports) writeArgs(ctx context.Context, args string) (ptr, length uint32, err error) {
	if len(args) == 0 {
		return 0, 0, nil
	}
	if uint64(len(args)) > uint64(e.cfg.MaxRequestSize) {
		return 0, 0, fmt.Errorf("request size %d exceeds maximum %d bytes", len(args), e.cfg.MaxRequestSize)
	}
	length = uint32(len(args)) //nolint:gosec // G115: bounded by MaxRequestSize

	allocate := e.mod.ExportedFunction(ExportAllocate)
	if allocate == nil {
		return 0, 0, fmt.Errorf("guest module missing %q export", ExportAllocate)
	}
	results, err := allocate.Call(ctx, uint64(length))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to call guest allocate: %w", err)
	}
	if len(results) == 0 || results[0] == 0 {
		return 0, 0, fmt.Errorf("guest allocate returned no memory for %d bytes", length)
	}
	ptr = uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit

	if !e.mod.Memory().Write(ptr, []byte(args)) {
		return 0, 0, fmt.Errorf("failed to write %d bytes to guest memory at %#x", length, ptr)
	}
	return ptr, length, nil
}

// readResult copies the packed result out of guest memory and releases it.
func (e *Exports) readResult(ctx context.Context, packed uint64) (string, error) {
	ptr, length, err := abi.UnpackPtrLen(packed)
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}
	defer e.release(ctx, ptr, length)

	if length > e.cfg.MaxResponseSize {
		return "", fmt.Errorf("response size %d exceeds maximum %d bytes", length, e.cfg.MaxResponseSize)
	}
	data, ok := e.mod.Memory().Read(ptr, length)
	if !ok {
		return "", fmt.Errorf("failed to read %d bytes from guest memory at %#x", length, ptr)
	}
	// Read aliases guest memory; copy before the buffer is released.
	return string(data), nil
}

// release hands a buffer back to the guest. Failures are logged only: the
// call itself already completed.
func (e *Exports) release(ctx context.Context, ptr, length uint32) {
	if ptr == 0 {
		return
	}
	deallocate := e.mod.ExportedFunction(ExportDeallocate)
	if deallocate == nil {
		return
	}
	if _, err := deallocate.Call(ctx, uint64(ptr), uint64(length)); err != nil {
		e.cfg.Logger.DebugContext(ctx, "wazero: guest deallocate failed", "ptr", ptr, "error", err)
	}
}
