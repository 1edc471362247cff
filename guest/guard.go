package guest

import (
	"runtime/debug"
	"sync"

	"github.com/metaview-dev/mapp-sdk/domain/errors"
)

// State is the lifecycle state of a Guard.
type State int

const (
	// Uninitialized is the initial state: no instance exists yet.
	Uninitialized State = iota
	// Ready means an instance is held and calls are allowed.
	Ready
	// Poisoned is terminal: a call did not complete and the instance is gone.
	Poisoned
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	case Poisoned:
		return "poisoned"
	default:
		return "unknown"
	}
}

// Guard owns the single plugin instance and hands out exclusive access to it
// one call at a time. A panic while access is held poisons the guard for good.
// The zero value is Uninitialized.
type Guard[T any] struct {
	instance T
	poison   *errors.PoisonedError
	state    State
	mu       sync.Mutex
}

// Initialize builds a fresh instance with factory, replacing any previous
// one. It fails once the guard is poisoned; a panicking factory poisons it.
func (g *Guard[T]) Initialize(factory func() T) (err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Poisoned {
		return g.poison
	}

	defer g.recoverInto("initialize", &err)
	instance := factory()
	g.instance = instance
	g.state = Ready
	return nil
}

// With runs fn with exclusive access to the instance. fn must not keep the
// instance after it returns.
func (g *Guard[T]) With(method string, fn func(T)) (err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case Uninitialized:
		return errors.ErrUninitialized
	case Poisoned:
		return g.poison
	}

	defer g.recoverInto(method, &err)
	fn(g.instance)
	return nil
}

// State returns the current lifecycle state.
func (g *Guard[T]) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// recoverInto must be deferred directly so recover sees the panic.
func (g *Guard[T]) recoverInto(method string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	var zero T
	g.instance = zero
	g.state = Poisoned
	g.poison = &errors.PoisonedError{Method: method, Panic: r, Stack: debug.Stack()}
	*err = g.poison
}
