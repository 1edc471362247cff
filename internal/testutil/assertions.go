// Package testutil provides a recording Mapp and common assertions for SDK tests.
package testutil

import (
	"bytes"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaview-dev/mapp-sdk/application/plugin"
	"github.com/metaview-dev/mapp-sdk/domain/entities"
	"github.com/metaview-dev/mapp-sdk/domain/errors"
)

// Call is one recorded plugin method invocation.
type Call struct {
	Method string
	Args   []any
}

// Recorder is a plugin.Mapp that records every call in order. It returns
// queued commands from SendCommand and detects overlapping calls.
type Recorder struct {
	plugin.Versioned

	Calls    []Call
	Commands []*entities.Command
	Out      bytes.Buffer
	Err      bytes.Buffer

	// PanicOn names a method (wire name) that panics when called.
	PanicOn string
	// Delay is slept inside every call to widen race windows.
	Delay time.Duration

	active   atomic.Int32
	overlaps atomic.Int32
}

var _ plugin.Mapp = (*Recorder)(nil)

// NewRecorder returns a Recorder that will send the given commands in order.
func NewRecorder(commands ...*entities.Command) *Recorder {
	return &Recorder{Commands: commands}
}

// Overlaps returns how many calls started while another was running.
func (r *Recorder) Overlaps() int {
	return int(r.overlaps.Load())
}

func (r *Recorder) enter(method string, args ...any) func() {
	if r.active.Add(1) > 1 {
		r.overlaps.Add(1)
	}
	if r.Delay > 0 {
		time.Sleep(r.Delay)
	}
	r.Calls = append(r.Calls, Call{Method: method, Args: args})
	if r.PanicOn == method {
		r.active.Add(-1)
		panic("testutil: " + method + " exploded")
	}
	return func() { r.active.Add(-1) }
}

// Update implements plugin.Mapp.
func (r *Recorder) Update(elapsed time.Duration) {
	defer r.enter("update", elapsed)()
}

// SendCommand implements plugin.Mapp.
func (r *Recorder) SendCommand() *entities.Command {
	defer r.enter("send_command")()
	if len(r.Commands) == 0 {
		return nil
	}
	next := r.Commands[0]
	r.Commands = r.Commands[1:]
	return next
}

// ReceiveCommandResponse implements plugin.Mapp.
func (r *Recorder) ReceiveCommandResponse(response entities.CommandResponse) {
	defer r.enter("receive_command_response", response)()
}

// FlushIO implements plugin.Mapp.
func (r *Recorder) FlushIO() entities.IO {
	defer r.enter("flush_io")()
	io := entities.NewIO(r.Out.Bytes(), r.Err.Bytes())
	r.Out.Reset()
	r.Err.Reset()
	return io
}

// ReceiveEvent implements plugin.Mapp.
func (r *Recorder) ReceiveEvent(event entities.Event) {
	defer r.enter("receive_event", event)()
}

// Methods returns the recorded method names in call order.
func (r *Recorder) Methods() []string {
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.Method
	}
	return out
}

// AssertPoisoned asserts err is a poisoning error naming method.
func AssertPoisoned(t *testing.T, err error, method string) {
	t.Helper()
	require.ErrorIs(t, err, errors.ErrPoisoned)

	var poisoned *errors.PoisonedError
	if assert.ErrorAs(t, err, &poisoned) {
		assert.Equal(t, method, poisoned.Method)
		assert.NotEmpty(t, poisoned.Stack)
	}
}

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting.
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()
	assert.JSONEq(t, expected, actual, msgAndArgs...)
}
