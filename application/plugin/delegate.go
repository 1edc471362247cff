package plugin

import (
	"runtime/debug"
	"sync"

	"github.com/metaview-dev/mapp-sdk/domain/errors"
)

var _ Client = (*Delegate)(nil)

// Delegate forwards Client calls straight to a Mapp in the same process,
// without encoding. Calls are serialised. A panic in the plugin poisons the
// delegate the same way it poisons a sandboxed guest.
type Delegate struct {
	impl     Mapp
	poisoned *errors.PoisonedError
	mu       sync.Mutex
}

// NewDelegate wraps impl.
func NewDelegate(impl Mapp) *Delegate {
	return &Delegate{impl: impl}
}

func (d *Delegate) do(method string, fn func(Mapp)) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.poisoned != nil {
		return d.poisoned
	}
	if d.impl == nil {
		return errors.ErrUninitialized
	}

	defer func() {
		if r := recover(); r != nil {
			d.poisoned = &errors.PoisonedError{Method: method, Panic: r, Stack: debug.Stack()}
			err = d.poisoned
		}
	}()
	fn(d.impl)
	return nil
}
