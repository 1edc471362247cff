package host

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	mappwazero "github.com/metaview-dev/mapp-sdk/infrastructure/wazero"
)

// Executor owns the wazero runtime guests are loaded into.
type Executor struct {
	runtime wazero.Runtime
	cfg     executorConfig
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(ctx context.Context, opts ...ExecutorOption) (*Executor, error) {
	cfg := executorConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	var rt wazero.Runtime
	if cfg.runtime != nil {
		rt = wazero.NewRuntimeWithConfig(ctx, cfg.runtime)
	} else {
		rt = wazero.NewRuntime(ctx)
	}
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	return &Executor{runtime: rt, cfg: cfg}, nil
}

// Close releases the runtime and every guest loaded into it.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// LoadGuest compiles and instantiates a guest module, runs its reactor
// initializer and wraps it in a Guest. The version check and the initialize
// export run as part of NewGuest.
func (e *Executor) LoadGuest(ctx context.Context, name string, wasmBytes []byte, opts ...Option) (*Guest, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile module %q: %w", name, err)
	}

	modCfg := wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions()
	if e.cfg.stdout != nil {
		modCfg = modCfg.WithStdout(e.cfg.stdout)
	}
	if e.cfg.stderr != nil {
		modCfg = modCfg.WithStderr(e.cfg.stderr)
	}

	mod, err := e.runtime.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module %q: %w", name, err)
	}

	// Reactor modules initialize the Go runtime here; main is never run.
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("failed to call _initialize: %w", err)
		}
	}

	exports := mappwazero.NewExports(mod, mappwazero.WithLogger(e.cfg.logger))
	g, err := NewGuest(mappwazero.WithGuestName(ctx, name), exports, opts...)
	if err != nil {
		_ = mod.Close(ctx)
		return nil, err
	}
	g.closer = moduleCloser{mod: mod}
	return g, nil
}

type moduleCloser struct {
	mod api.Module
}

func (c moduleCloser) Close() error {
	return c.mod.Close(context.Background())
}
