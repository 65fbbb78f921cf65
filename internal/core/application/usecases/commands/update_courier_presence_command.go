package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateCourierPresenceCommandIsNotConstructed = errors.New(
	"UpdateCourierPresenceCommand must be created via NewUpdateCourierPresenceCommand constructor",
)

// UpdateCourierPresenceCommand reports whether a courier is online and, optionally,
// where they are. A nil location keeps the last known position.
type UpdateCourierPresenceCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	online    bool
	location  *kernel.Location

	guard guard.ConstructorGuard
}

func NewUpdateCourierPresenceCommand(
	courierID kernel.UUID,
	online bool,
	location *kernel.Location,
) (UpdateCourierPresenceCommand, error) {
	if err := courierID.Validate(); err != nil {
		return UpdateCourierPresenceCommand{}, err
	}

	cmd := UpdateCourierPresenceCommand{
		courierID: courierID,
		online:    online,
		guard:     guard.NewConstructorGuard(),
	}
	if location != nil {
		if err := location.Validate(); err != nil {
			return UpdateCourierPresenceCommand{}, err
		}
		loc := *location
		cmd.location = &loc
	}

	return cmd, nil
}

func (c UpdateCourierPresenceCommand) Validate() error {
	return c.guard.Validate(ErrUpdateCourierPresenceCommandIsNotConstructed)
}

func (c UpdateCourierPresenceCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c UpdateCourierPresenceCommand) Online() bool {
	return c.online
}

func (c UpdateCourierPresenceCommand) Location() *kernel.Location {
	return c.location
}
