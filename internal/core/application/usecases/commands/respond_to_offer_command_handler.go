package commands

import (
	"context"

	"dispatch/internal/core/application/lifecycle"
	"dispatch/internal/core/domain/model/kernel"
)

// Responder resolves offers with a courier's answer.
type Responder interface {
	Respond(
		ctx context.Context,
		offerID, courierID kernel.UUID,
		accept bool,
		location *kernel.Location,
	) (lifecycle.Result, error)
}

// RespondToOfferCommandHandler forwards courier responses to the offer lifecycle.
type RespondToOfferCommandHandler struct {
	responder Responder
}

func NewRespondToOfferCommandHandler(responder Responder) RespondToOfferCommandHandler {
	return RespondToOfferCommandHandler{responder: responder}
}

// Handle returns the resolution. A lost race yields a Result with
// lifecycle.OutcomeLostRace together with an errs.ConflictError.
func (h *RespondToOfferCommandHandler) Handle(ctx context.Context, cmd RespondToOfferCommand) (lifecycle.Result, error) {
	if err := cmd.Validate(); err != nil {
		return lifecycle.Result{}, err
	}

	return h.responder.Respond(ctx, cmd.OfferID(), cmd.CourierID(), cmd.Accept(), cmd.Location())
}
