package robot

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/teslashibe/go-gaze/internal/log"
	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// DispatcherConfig holds the command parameters.
type DispatcherConfig struct {
	// Duration is how long each command runs on the robot. It is also the
	// minimum spacing between gaze-driven commands.
	Duration time.Duration

	// Velocity is the motor PWM value, 0-255.
	Velocity int

	// Enabled is the initial state of the control toggle.
	Enabled bool
}

// DefaultDispatcherConfig returns 250ms commands at velocity 150, enabled.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Duration: DefaultDuration,
		Velocity: DefaultVelocity,
		Enabled:  true,
	}
}

// DispatchStats summarizes dispatcher activity.
type DispatchStats struct {
	Enabled     bool      `json:"enabled"`
	Sent        uint64    `json:"sent"`
	Failed      uint64    `json:"failed"`
	Throttled   uint64    `json:"throttled"`
	LastCommand Command   `json:"last_command,omitempty"`
	LastSentAt  time.Time `json:"last_sent_at,omitempty"`
}

// Dispatcher turns smoothed gaze directions into robot commands.
// Sends are fire-and-forget: each runs on its own goroutine and failures
// are only logged.
type Dispatcher struct {
	actuator Actuator
	duration time.Duration
	velocity int
	limiter  *rate.Limiter
	logger   *slog.Logger

	enabled atomic.Bool
	wg      sync.WaitGroup

	sent      atomic.Uint64
	failed    atomic.Uint64
	throttled atomic.Uint64

	mu       sync.Mutex
	lastCmd  Command
	lastSent time.Time
}

// NewDispatcher creates a dispatcher that paces gaze-driven commands to one
// per cfg.Duration.
func NewDispatcher(a Actuator, cfg DispatcherConfig) *Dispatcher {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultDuration
	}
	d := &Dispatcher{
		actuator: a,
		duration: cfg.Duration,
		velocity: clampVelocity(cfg.Velocity),
		limiter:  rate.NewLimiter(rate.Every(cfg.Duration), 1),
		logger:   log.With("component", "dispatcher"),
	}
	d.enabled.Store(cfg.Enabled)
	return d
}

// Dispatch sends the command for dir if control is enabled and the previous
// command has had time to run. It returns the command issued, or one of
// ErrNoCommand, ErrDisabled, ErrThrottled.
func (d *Dispatcher) Dispatch(ctx context.Context, dir gaze.Direction) (Command, error) {
	cmd, ok := CommandFor(dir)
	if !ok {
		return "", ErrNoCommand
	}
	if !d.enabled.Load() {
		return "", ErrDisabled
	}
	if !d.limiter.Allow() {
		d.throttled.Add(1)
		return "", ErrThrottled
	}
	d.send(ctx, cmd)
	return cmd, nil
}

// Manual sends cmd immediately, ignoring pacing and the control toggle.
func (d *Dispatcher) Manual(ctx context.Context, cmd Command) error {
	if !cmd.Valid() {
		return ErrUnknownCommand
	}
	d.send(ctx, cmd)
	return nil
}

func (d *Dispatcher) send(ctx context.Context, cmd Command) {
	d.mu.Lock()
	d.lastCmd = cmd
	d.lastSent = time.Now()
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.actuator.Send(ctx, cmd, d.duration, d.velocity); err != nil {
			d.failed.Add(1)
			d.logger.Warn("command failed", "cmd", string(cmd), "error", err)
			return
		}
		d.sent.Add(1)
		d.logger.Debug("command sent", "cmd", string(cmd))
	}()
}

// SetEnabled sets the control toggle.
func (d *Dispatcher) SetEnabled(on bool) {
	if d.enabled.Swap(on) != on {
		d.logger.Info("gaze control toggled", "enabled", on)
	}
}

// Toggle flips the control toggle and returns the new state.
func (d *Dispatcher) Toggle() bool {
	for {
		cur := d.enabled.Load()
		if d.enabled.CompareAndSwap(cur, !cur) {
			d.logger.Info("gaze control toggled", "enabled", !cur)
			return !cur
		}
	}
}

// Enabled reports whether gaze-driven commands are sent.
func (d *Dispatcher) Enabled() bool {
	return d.enabled.Load()
}

// Stats returns dispatcher counters.
func (d *Dispatcher) Stats() DispatchStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DispatchStats{
		Enabled:     d.enabled.Load(),
		Sent:        d.sent.Load(),
		Failed:      d.failed.Load(),
		Throttled:   d.throttled.Load(),
		LastCommand: d.lastCmd,
		LastSentAt:  d.lastSent,
	}
}

// Wait blocks until all in-flight sends finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
