package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrRunDispatchSweepCommandIsNotConstructed = errors.New(
	"RunDispatchSweepCommand must be created via NewRunDispatchSweepCommand constructor",
)

// RunDispatchSweepCommand triggers one reconciliation pass. It carries no input:
// everything the sweep needs is read fresh from storage and configuration.
type RunDispatchSweepCommand struct {
	trigger string
	guard   guard.ConstructorGuard
}

// NewRunDispatchSweepCommand names what triggered the sweep (cron, http, order_created) for logging.
func NewRunDispatchSweepCommand(trigger string) RunDispatchSweepCommand {
	if trigger == "" {
		trigger = "unspecified"
	}
	return RunDispatchSweepCommand{
		trigger: trigger,
		guard:   guard.NewConstructorGuard(),
	}
}

func (c RunDispatchSweepCommand) Validate() error {
	return c.guard.Validate(ErrRunDispatchSweepCommandIsNotConstructed)
}

func (c RunDispatchSweepCommand) Trigger() string {
	return c.trigger
}
