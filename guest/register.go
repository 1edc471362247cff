package guest

import (
	"sync/atomic"

	"github.com/metaview-dev/mapp-sdk/application/plugin"
)

// active is the dispatcher the wasm export shims call into. Exports are
// plain functions, so this is the one process-wide reference they need.
var active atomic.Pointer[Dispatcher]

// Register makes a dispatcher for factory the target of the module exports.
// Call it from an init function of the plugin's main package. A later call
// replaces the earlier registration.
func Register[T plugin.Mapp](factory func() T, opts ...Option) *Dispatcher {
	d := NewDispatcher(factory, opts...)
	active.Store(d)
	return d
}

// Active returns the registered dispatcher, or nil.
func Active() *Dispatcher {
	return active.Load()
}
