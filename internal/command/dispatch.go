package command

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ErrorNotice is sent to the user when a command handler fails.
const ErrorNotice = "Sorry, something went wrong while running that command."

// Dispatcher runs commands from a Registry and contains their failures.
type Dispatcher struct {
	registry *Registry
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher over reg.
func NewDispatcher(reg *Registry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{registry: reg, logger: logger}
}

// Registry returns the registry the dispatcher resolves names against.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch looks up name and runs its handler. It reports whether a command
// was found. Handler errors and panics are logged and answered with
// ErrorNotice; they never reach the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, cc *CommandContext) bool {
	cmd, ok := d.registry.Lookup(name)
	if !ok || cmd.Handler == nil {
		return false
	}

	if err := d.run(ctx, cmd, cc); err != nil {
		d.logger.Error("command failed",
			zap.String("command", cmd.Name),
			zap.String("from", cc.SenderID),
			zap.Error(err))
		d.notifyBestEffort(ctx, cc, ErrorNotice)
	}
	return true
}

func (d *Dispatcher) run(ctx context.Context, cmd *Command, cc *CommandContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in /%s: %v", cmd.Name, r)
		}
	}()
	return cmd.Handler(ctx, cc)
}

// notifyBestEffort makes one attempt to tell the user about a failure.
// If that send fails too, the error is logged and dropped.
func (d *Dispatcher) notifyBestEffort(ctx context.Context, cc *CommandContext, text string) {
	if cc.Out == nil {
		return
	}
	if err := cc.Reply(ctx, text); err != nil {
		d.logger.Debug("failure notice not delivered",
			zap.String("to", cc.SenderID), zap.Error(err))
	}
}
