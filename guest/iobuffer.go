package guest

import (
	"bytes"
	"io"
	"sync"

	"github.com/metaview-dev/mapp-sdk/domain/entities"
)

// IOBuffer accumulates plugin output between flushes. Embed it in a plugin
// type to get a FlushIO that satisfies the Mapp contract.
type IOBuffer struct {
	out bytes.Buffer
	err bytes.Buffer
	mu  sync.Mutex
}

type stream struct {
	b   *IOBuffer
	buf *bytes.Buffer
}

func (s stream) Write(p []byte) (int, error) {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return s.buf.Write(p)
}

// Stdout returns a writer into the output stream.
func (b *IOBuffer) Stdout() io.Writer {
	return stream{b: b, buf: &b.out}
}

// Stderr returns a writer into the error stream.
func (b *IOBuffer) Stderr() io.Writer {
	return stream{b: b, buf: &b.err}
}

// FlushIO returns everything written since the last flush and resets both
// streams, so no byte is returned twice.
func (b *IOBuffer) FlushIO() entities.IO {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := entities.NewIO(b.out.Bytes(), b.err.Bytes())
	b.out.Reset()
	b.err.Reset()
	return out
}
