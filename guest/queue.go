package guest

import (
	"fmt"

	"github.com/metaview-dev/mapp-sdk/domain/entities"
	"github.com/metaview-dev/mapp-sdk/domain/errors"
)

// CommandQueue is the outbound command bookkeeping a plugin needs: it assigns
// ids, hands commands out one per SendCommand and matches responses against
// what is outstanding. The zero value is ready to use. It is not safe for
// concurrent use; the guard already serialises plugin calls.
type CommandQueue struct {
	pending map[uint64]entities.CommandKind
	queued  []entities.Command
	nextID  uint64
}

// Enqueue schedules kind and returns the id it will be sent with.
func (q *CommandQueue) Enqueue(kind entities.CommandKind) uint64 {
	id := q.nextID
	q.nextID++
	q.queued = append(q.queued, entities.Command{ID: id, Kind: kind})
	return id
}

// Next pops the oldest queued command and marks it outstanding, or returns
// nil when nothing is queued. It is meant to back SendCommand directly.
func (q *CommandQueue) Next() *entities.Command {
	if len(q.queued) == 0 {
		return nil
	}
	cmd := q.queued[0]
	q.queued = q.queued[1:]
	if q.pending == nil {
		q.pending = make(map[uint64]entities.CommandKind)
	}
	q.pending[cmd.ID] = cmd.Kind
	return &cmd
}

// Resolve matches resp against the outstanding commands and returns the kind
// of the command it answers. A response for an unknown id, or of a different
// variant than the command, fails with ErrUnmatchedResponse.
func (q *CommandQueue) Resolve(resp entities.CommandResponse) (entities.CommandKind, error) {
	kind, ok := q.pending[resp.CommandID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", errors.ErrUnmatchedResponse, resp.CommandID)
	}
	if !resp.Answers(entities.Command{ID: resp.CommandID, Kind: kind}) {
		return nil, fmt.Errorf("%w: id %d is a %s command, got a %s response",
			errors.ErrUnmatchedResponse, resp.CommandID, kind.VariantName(), variantOf(resp.Kind))
	}
	delete(q.pending, resp.CommandID)
	return kind, nil
}

// Pending returns the number of commands sent but not yet answered.
func (q *CommandQueue) Pending() int {
	return len(q.pending)
}

// Queued returns the number of commands not yet sent.
func (q *CommandQueue) Queued() int {
	return len(q.queued)
}

func variantOf(kind entities.CommandResponseKind) string {
	if kind == nil {
		return "<nil>"
	}
	return kind.VariantName()
}
