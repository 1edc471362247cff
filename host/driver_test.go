package host_test

import (
	"bytes"
	"context"
	stdErrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/metaview-dev/mapp-sdk/domain/entities"
	"github.com/metaview-dev/mapp-sdk/domain/errors"
	"github.com/metaview-dev/mapp-sdk/host"
	"github.com/metaview-dev/mapp-sdk/internal/testutil"
	mapplog "github.com/metaview-dev/mapp-sdk/log"
)

// DriverSuite runs the tick protocol against a recorded guest behind the
// full encoding path.
type DriverSuite struct {
	suite.Suite
	ctx    context.Context
	rec    *testutil.Recorder
	scene  *host.Scene
	stdout bytes.Buffer
	stderr bytes.Buffer
	logs   bytes.Buffer
}

func (s *DriverSuite) SetupTest() {
	s.ctx = context.Background()
	s.rec = testutil.NewRecorder()
	s.scene = host.NewScene()
	s.stdout.Reset()
	s.stderr.Reset()
	s.logs.Reset()
}

func (s *DriverSuite) driver(handler host.CommandHandler, opts ...host.DriverOption) *host.Driver {
	g := inProcess(s.T(), s.rec)
	logger := slog.New(slog.NewJSONHandler(&s.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	base := []host.DriverOption{host.WithOutput(&s.stdout, &s.stderr), host.WithDriverLogger(logger)}
	return host.NewDriver(g, handler, append(base, opts...)...)
}

func (s *DriverSuite) TestTickOrder() {
	s.rec.Commands = []*entities.Command{
		{ID: 0, Kind: entities.EntityRootGetArgs{}},
		{ID: 1, Kind: entities.EntityCreateArgs{}},
	}
	d := s.driver(s.scene)

	focus := entities.NewWindowEvent(entities.WindowFocused{Focused: true})
	d.Deliver(focus, entities.NewWindowEvent(entities.WindowDestroyed{}))

	stats, err := d.Tick(s.ctx, 16*time.Millisecond)
	s.Require().NoError(err)
	s.Equal(host.TickStats{Events: 2, Commands: 2}, stats)

	s.Equal([]string{
		"receive_event", "receive_event",
		"update",
		"send_command", "receive_command_response",
		"send_command", "receive_command_response",
		"send_command",
		"flush_io",
	}, s.rec.Methods())
	s.Equal(focus, s.rec.Calls[0].Args[0])
	s.Equal(entities.CommandResponse{CommandID: 0, Kind: entities.EntityRootGetResult{Root: s.scene.Root()}},
		s.rec.Calls[4].Args[0])
	s.Zero(d.Tracker().Outstanding())
	s.Equal(2, s.scene.Len())

	// Events are delivered once.
	stats, err = d.Tick(s.ctx, time.Millisecond)
	s.Require().NoError(err)
	s.Zero(stats.Events)
}

func (s *DriverSuite) TestCommandLimit() {
	for i := 0; i < 5; i++ {
		s.rec.Commands = append(s.rec.Commands, &entities.Command{ID: uint64(i), Kind: entities.EntityCreateArgs{}})
	}
	d := s.driver(s.scene, host.WithMaxCommandsPerTick(2))

	for _, want := range []int{2, 2, 1, 0} {
		stats, err := d.Tick(s.ctx, time.Millisecond)
		s.Require().NoError(err)
		s.Equal(want, stats.Commands)
	}
	s.Equal(6, s.scene.Len())
	s.Zero(d.Tracker().Outstanding())
	s.Contains(s.logs.String(), `"msg":"host: command limit reached"`)

	// Every command is answered exactly once, in order.
	var answered []uint64
	for _, call := range s.rec.Calls {
		if call.Method == "receive_command_response" {
			answered = append(answered, call.Args[0].(entities.CommandResponse).CommandID)
		}
	}
	s.Equal([]uint64{0, 1, 2, 3, 4}, answered)
}

func (s *DriverSuite) TestCommandLimitExactlyDrained() {
	s.rec.Commands = []*entities.Command{
		{ID: 0, Kind: entities.EntityCreateArgs{}},
		{ID: 1, Kind: entities.EntityCreateArgs{}},
	}
	d := s.driver(s.scene, host.WithMaxCommandsPerTick(2))

	stats, err := d.Tick(s.ctx, time.Millisecond)
	s.Require().NoError(err)
	s.Equal(2, stats.Commands)
	s.Equal([]string{
		"update",
		"send_command", "receive_command_response",
		"send_command", "receive_command_response",
		"send_command",
		"flush_io",
	}, s.rec.Methods())
	s.NotContains(s.logs.String(), "command limit reached")
}

func (s *DriverSuite) TestExit() {
	s.rec.Commands = []*entities.Command{
		{ID: 1, Kind: entities.ExitArgs{}},
		{ID: 2, Kind: entities.EntityCreateArgs{}},
	}
	d := s.driver(s.scene)

	stats, err := d.Tick(s.ctx, time.Millisecond)
	s.Require().NoError(err)
	s.Equal(1, stats.Commands)
	s.True(d.Exited())
	s.True(s.scene.Exited())
	s.Equal("flush_io", s.rec.Methods()[len(s.rec.Calls)-1])

	_, err = d.Tick(s.ctx, time.Millisecond)
	s.ErrorIs(err, host.ErrExited)
}

func (s *DriverSuite) TestOutputAndLogs() {
	s.rec.Out.WriteString("frame\n")
	slog.New(mapplog.NewHandler(&s.rec.Err)).Warn("low fuel", "left", 3)
	s.rec.Err.WriteString("raw stderr\n")
	d := s.driver(s.scene)

	stats, err := d.Tick(s.ctx, time.Millisecond)
	s.Require().NoError(err)
	s.Equal(len("frame\n"), stats.Out)
	s.Positive(stats.Err)

	s.Equal("frame\n", s.stdout.String())
	s.Equal("raw stderr\n", s.stderr.String())
	s.Contains(s.logs.String(), `"msg":"low fuel"`)
	s.Contains(s.logs.String(), `"source":"guest"`)
}

func (s *DriverSuite) TestRawStderr() {
	s.rec.Err.WriteString(`{"level":"INFO","message":"kept verbatim"}` + "\n")
	d := s.driver(s.scene, host.WithGuestLogs(false))

	_, err := d.Tick(s.ctx, time.Millisecond)
	s.Require().NoError(err)
	s.Contains(s.stderr.String(), "kept verbatim")
	s.Empty(s.logs.String())
}

func (s *DriverSuite) TestHandlerFailureLeavesCommandOutstanding() {
	s.rec.Commands = []*entities.Command{
		{ID: 1, Kind: entities.EntityCreateArgs{}},
		{ID: 1, Kind: entities.EntityCreateArgs{}},
	}
	calls := 0
	handler := host.CommandHandlerFunc(func(ctx context.Context, cmd entities.Command) (entities.CommandResponseKind, error) {
		calls++
		if calls == 1 {
			return nil, stdErrors.New("renderer busy")
		}
		return s.scene.HandleCommand(ctx, cmd)
	})
	d := s.driver(handler)

	_, err := d.Tick(s.ctx, time.Millisecond)
	s.ErrorContains(err, "renderer busy")
	s.Equal(1, d.Tracker().Outstanding())

	_, err = d.Tick(s.ctx, time.Millisecond)
	s.ErrorIs(err, errors.ErrDuplicateCommand)
}

func (s *DriverSuite) TestMismatchedResponse() {
	s.rec.Commands = []*entities.Command{{ID: 4, Kind: entities.EntityCreateArgs{}}}
	handler := host.CommandHandlerFunc(func(context.Context, entities.Command) (entities.CommandResponseKind, error) {
		return entities.ExitResult{}, nil
	})
	d := s.driver(handler)

	_, err := d.Tick(s.ctx, time.Millisecond)
	s.ErrorIs(err, errors.ErrUnmatchedResponse)
	s.NotContains(s.rec.Methods(), "receive_command_response")
}

func (s *DriverSuite) TestPoisonedGuestStopsTicks() {
	s.rec.PanicOn = "update"
	d := s.driver(s.scene)

	_, err := d.Tick(s.ctx, time.Millisecond)
	s.ErrorIs(err, errors.ErrPoisoned)
	_, err = d.Tick(s.ctx, time.Millisecond)
	s.ErrorIs(err, errors.ErrPoisoned)
	s.Equal([]string{"update"}, s.rec.Methods())
}

func TestDriverSuite(t *testing.T) {
	suite.Run(t, new(DriverSuite))
}
