package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateCourierCommandIsNotConstructed = errors.New(
		"CreateCourierCommand must be created via NewCreateCourierCommand constructor",
	)
	ErrNameIsRequired = errors.New("name is required")
)

// CreateCourierCommand registers a courier. New couriers start offline; they become
// eligible for offers once they report presence with a location.
//
// Example:
//
//	cmd, err := NewCreateCourierCommand(kernel.NewUUID(), "Kim")
//	if err != nil {
//	    return fmt.Errorf("invalid courier data: %w", err)
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create courier: %w", err)
//	}
type CreateCourierCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	name      string

	guard guard.ConstructorGuard
}

func NewCreateCourierCommand(courierID kernel.UUID, name string) (CreateCourierCommand, error) {
	command := CreateCourierCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setCourierID(courierID),
		command.setName(name),
	); err != nil {
		return CreateCourierCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateCourierCommand) Validate() error {
	return c.guard.Validate(ErrCreateCourierCommandIsNotConstructed)
}

func (c CreateCourierCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c CreateCourierCommand) Name() string {
	return c.name
}

func (c *CreateCourierCommand) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.courierID = id
	return nil
}

func (c *CreateCourierCommand) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}

	c.name = name
	return nil
}
