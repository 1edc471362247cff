package host

import (
	"fmt"

	"github.com/metaview-dev/mapp-sdk/domain/entities"
	"github.com/metaview-dev/mapp-sdk/domain/errors"
)

// CommandTracker correlates the commands a guest sent with the responses
// delivered back to it. It is not safe for concurrent use.
type CommandTracker struct {
	outstanding map[uint64]entities.CommandKind
}

// NewCommandTracker returns an empty tracker.
func NewCommandTracker() *CommandTracker {
	return &CommandTracker{outstanding: make(map[uint64]entities.CommandKind)}
}

// Track records cmd as outstanding. Reusing the id of a command that has not
// been answered yet fails with ErrDuplicateCommand.
func (t *CommandTracker) Track(cmd entities.Command) error {
	if cmd.Kind == nil {
		return fmt.Errorf("command %d has no kind", cmd.ID)
	}
	if prev, ok := t.outstanding[cmd.ID]; ok {
		return fmt.Errorf("%w: id %d (%s) still awaits a response", errors.ErrDuplicateCommand, cmd.ID, prev.VariantName())
	}
	t.outstanding[cmd.ID] = cmd.Kind
	return nil
}

// Resolve retires the command resp answers. A response for an id that is not
// outstanding, or of another variant than the command, fails with
// ErrUnmatchedResponse and leaves the tracker unchanged.
func (t *CommandTracker) Resolve(resp entities.CommandResponse) (entities.Command, error) {
	kind, ok := t.outstanding[resp.CommandID]
	if !ok {
		return entities.Command{}, fmt.Errorf("%w: id %d", errors.ErrUnmatchedResponse, resp.CommandID)
	}
	cmd := entities.Command{ID: resp.CommandID, Kind: kind}
	if !resp.Answers(cmd) {
		return entities.Command{}, fmt.Errorf("%w: id %d is %s", errors.ErrUnmatchedResponse, resp.CommandID, kind.VariantName())
	}
	delete(t.outstanding, resp.CommandID)
	return cmd, nil
}

// Outstanding returns the number of commands awaiting a response.
func (t *CommandTracker) Outstanding() int {
	return len(t.outstanding)
}
