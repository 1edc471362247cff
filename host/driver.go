package host

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/metaview-dev/mapp-sdk/application/plugin"
	"github.com/metaview-dev/mapp-sdk/domain/entities"
	mapplog "github.com/metaview-dev/mapp-sdk/log"
)

// DefaultMaxCommandsPerTick bounds how many commands one tick drains.
const DefaultMaxCommandsPerTick = 64

// ErrExited is returned by Tick once the guest has asked to exit.
var ErrExited = stdErrors.New("host: guest has exited")

type driverConfig struct {
	logger      *slog.Logger
	stdout      io.Writer
	stderr      io.Writer
	maxCommands int
	forwardLogs bool
}

// DriverOption configures a Driver.
type DriverOption func(*driverConfig)

// WithMaxCommandsPerTick bounds the commands handled per tick. Commands
// beyond the bound wait until the next tick.
func WithMaxCommandsPerTick(n int) DriverOption {
	return func(c *driverConfig) {
		c.maxCommands = n
	}
}

// WithOutput sets where flushed guest output is copied. Nil discards.
func WithOutput(stdout, stderr io.Writer) DriverOption {
	return func(c *driverConfig) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// WithGuestLogs re-emits guest log records found in the error stream through
// the driver's logger instead of copying them to stderr.
func WithGuestLogs(enabled bool) DriverOption {
	return func(c *driverConfig) {
		c.forwardLogs = enabled
	}
}

// WithDriverLogger sets the driver's logger.
func WithDriverLogger(l *slog.Logger) DriverOption {
	return func(c *driverConfig) {
		c.logger = l
	}
}

// TickStats summarises one tick.
type TickStats struct {
	Events   int
	Commands int
	Out      int
	Err      int
}

// Driver runs the per-tick protocol against a guest: queued events, update,
// command exchange, then output. It is not safe for concurrent Tick calls.
type Driver struct {
	client  plugin.Client
	handler CommandHandler
	tracker *CommandTracker
	events  []entities.Event
	cfg     driverConfig
	exited  bool
	// carried is a command fetched past the per-tick limit.
	carried *entities.Command
}

// NewDriver creates a driver for client whose commands are performed by handler.
func NewDriver(client plugin.Client, handler CommandHandler, opts ...DriverOption) *Driver {
	cfg := driverConfig{maxCommands: DefaultMaxCommandsPerTick, forwardLogs: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.stdout == nil {
		cfg.stdout = io.Discard
	}
	if cfg.stderr == nil {
		cfg.stderr = io.Discard
	}
	if cfg.maxCommands <= 0 {
		cfg.maxCommands = DefaultMaxCommandsPerTick
	}
	return &Driver{
		client:  client,
		handler: handler,
		tracker: NewCommandTracker(),
		cfg:     cfg,
	}
}

// Deliver queues events for the next tick.
func (d *Driver) Deliver(events ...entities.Event) {
	d.events = append(d.events, events...)
}

// Exited reports whether the guest sent an Exit command.
func (d *Driver) Exited() bool {
	return d.exited
}

// Tracker returns the command tracker of the driver.
func (d *Driver) Tracker() *CommandTracker {
	return d.tracker
}

// Tick advances the guest by elapsed.
func (d *Driver) Tick(ctx context.Context, elapsed time.Duration) (TickStats, error) {
	var stats TickStats
	if d.exited {
		return stats, ErrExited
	}

	events := d.events
	d.events = nil
	for i, ev := range events {
		if err := d.client.ReceiveEvent(ctx, ev); err != nil {
			d.events = append(events[i+1:], d.events...)
			return stats, fmt.Errorf("deliver event: %w", err)
		}
		stats.Events++
	}

	if err := d.client.Update(ctx, elapsed); err != nil {
		return stats, fmt.Errorf("update: %w", err)
	}

	for !d.exited {
		cmd := d.carried
		d.carried = nil
		if cmd == nil {
			var err error
			if cmd, err = d.client.SendCommand(ctx); err != nil {
				return stats, fmt.Errorf("send command: %w", err)
			}
		}
		if cmd == nil {
			break
		}
		if stats.Commands == d.cfg.maxCommands {
			// Already handed over by the guest, so it is answered first
			// next tick.
			d.carried = cmd
			d.cfg.logger.DebugContext(ctx, "host: command limit reached",
				"limit", d.cfg.maxCommands, "carried", cmd.ID)
			break
		}
		stats.Commands++
		if err := d.exchange(ctx, *cmd); err != nil {
			return stats, err
		}
	}

	out, errOut, err := d.flush(ctx)
	stats.Out, stats.Err = out, errOut
	return stats, err
}

func (d *Driver) exchange(ctx context.Context, cmd entities.Command) error {
	if err := d.tracker.Track(cmd); err != nil {
		return err
	}
	kind, err := d.handler.HandleCommand(ctx, cmd)
	if err != nil {
		return fmt.Errorf("handle command %d (%s): %w", cmd.ID, cmd.Kind.VariantName(), err)
	}

	resp := entities.CommandResponse{CommandID: cmd.ID, Kind: kind}
	if _, err := d.tracker.Resolve(resp); err != nil {
		return err
	}
	if err := d.client.ReceiveCommandResponse(ctx, resp); err != nil {
		return fmt.Errorf("receive command response: %w", err)
	}

	if _, ok := cmd.Kind.(entities.ExitArgs); ok {
		d.exited = true
		d.cfg.logger.InfoContext(ctx, "host: guest exited", "command", cmd.ID)
	}
	return nil
}

func (d *Driver) flush(ctx context.Context) (int, int, error) {
	flushed, err := d.client.FlushIO(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("flush io: %w", err)
	}
	out, err := flushed.Out.Decode()
	if err != nil {
		return 0, 0, fmt.Errorf("flush io: %w", err)
	}
	errOut, err := flushed.Err.Decode()
	if err != nil {
		return 0, 0, fmt.Errorf("flush io: %w", err)
	}

	if _, err := d.cfg.stdout.Write(out); err != nil {
		return len(out), len(errOut), fmt.Errorf("write guest stdout: %w", err)
	}
	if d.cfg.forwardLogs {
		err = mapplog.Forward(ctx, d.cfg.logger, errOut, d.cfg.stderr)
	} else {
		_, err = d.cfg.stderr.Write(errOut)
	}
	if err != nil {
		return len(out), len(errOut), fmt.Errorf("write guest stderr: %w", err)
	}
	return len(out), len(errOut), nil
}
