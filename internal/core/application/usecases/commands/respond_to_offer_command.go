package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRespondToOfferCommandIsNotConstructed = errors.New(
	"RespondToOfferCommand must be created via NewRespondToOfferCommand constructor",
)

// RespondToOfferCommand carries a courier's accept or reject for one offer,
// optionally with the courier's current position.
type RespondToOfferCommand struct { //nolint:recvcheck //using for validation
	offerID   kernel.UUID
	courierID kernel.UUID
	accept    bool
	location  *kernel.Location

	guard guard.ConstructorGuard
}

func NewRespondToOfferCommand(
	offerID, courierID kernel.UUID,
	accept bool,
	location *kernel.Location,
) (RespondToOfferCommand, error) {
	cmd := RespondToOfferCommand{
		accept: accept,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setIDs(offerID, courierID),
		cmd.setLocation(location),
	); err != nil {
		return RespondToOfferCommand{}, err
	}

	return cmd, nil
}

func (c RespondToOfferCommand) Validate() error {
	return c.guard.Validate(ErrRespondToOfferCommandIsNotConstructed)
}

func (c RespondToOfferCommand) OfferID() kernel.UUID {
	return c.offerID
}

func (c RespondToOfferCommand) CourierID() kernel.UUID {
	return c.courierID
}

func (c RespondToOfferCommand) Accept() bool {
	return c.accept
}

// Location is nil when the courier did not report a position.
func (c RespondToOfferCommand) Location() *kernel.Location {
	return c.location
}

func (c *RespondToOfferCommand) setIDs(offerID, courierID kernel.UUID) error {
	if err := errors.Join(offerID.Validate(), courierID.Validate()); err != nil {
		return err
	}

	c.offerID = offerID
	c.courierID = courierID
	return nil
}

func (c *RespondToOfferCommand) setLocation(location *kernel.Location) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}

	loc := *location
	c.location = &loc
	return nil
}
