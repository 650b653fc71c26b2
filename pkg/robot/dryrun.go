package robot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/go-gaze/internal/log"
)

// SentCommand records a command accepted by DryRunController.
type SentCommand struct {
	Command  Command
	Duration time.Duration
	Velocity int
}

// DryRunController logs commands instead of sending them.
type DryRunController struct {
	logger *slog.Logger

	mu   sync.Mutex
	sent []SentCommand
}

// NewDryRunController creates a controller that never touches the network.
func NewDryRunController() *DryRunController {
	return &DryRunController{
		logger: log.With("component", "robot", "mode", "dry-run"),
	}
}

// Send logs the command and returns nil.
func (d *DryRunController) Send(ctx context.Context, cmd Command, dur time.Duration, velocity int) error {
	velocity = clampVelocity(velocity)
	d.logger.Info("command",
		"cmd", string(cmd),
		"action", cmd.Description(),
		"dur_ms", dur.Milliseconds(),
		"vel", velocity)

	d.mu.Lock()
	d.sent = append(d.sent, SentCommand{Command: cmd, Duration: dur, Velocity: velocity})
	d.mu.Unlock()
	return nil
}

// Sent returns a copy of every command accepted so far.
func (d *DryRunController) Sent() []SentCommand {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]SentCommand, len(d.sent))
	copy(out, d.sent)
	return out
}
