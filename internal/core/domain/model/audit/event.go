package audit

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// Kind names a dispatch decision worth keeping in the audit trail.
type Kind string

const (
	KindOfferCreated     Kind = "offer_created"
	KindOfferExpired     Kind = "offer_expired"
	KindOfferAccepted    Kind = "offer_accepted"
	KindOfferRejected    Kind = "offer_rejected"
	KindOfferLostRace    Kind = "offer_lost_race"
	KindOffersSuperseded Kind = "offers_superseded"
	KindOrderExhausted   Kind = "order_exhausted"
	KindOrderCancelled   Kind = "order_cancelled"
	KindBatchConfirmed   Kind = "batch_confirmed"
)

// Event is an append-only record of one dispatch decision.
type Event struct {
	ID         kernel.UUID
	Kind       Kind
	OrderID    kernel.UUID
	OfferID    *kernel.UUID
	CourierID  *kernel.UUID
	Attempt    int
	Detail     string
	OccurredAt time.Time
}

// NewEvent stamps a fresh id on an order-level event.
func NewEvent(kind Kind, orderID kernel.UUID, attempt int, detail string, occurredAt time.Time) (Event, error) {
	if kind == "" {
		return Event{}, errs.NewValueIsRequiredError("kind")
	}
	if err := orderID.Validate(); err != nil {
		return Event{}, err
	}

	return Event{
		ID:         kernel.NewUUID(),
		Kind:       kind,
		OrderID:    orderID,
		Attempt:    attempt,
		Detail:     detail,
		OccurredAt: occurredAt,
	}, nil
}

// WithOffer attaches the offer and its courier.
func (e Event) WithOffer(offerID, courierID kernel.UUID) Event {
	e.OfferID = &offerID
	e.CourierID = &courierID
	return e
}

// WithCourier attaches a courier without an offer, as for batch confirmation.
func (e Event) WithCourier(courierID kernel.UUID) Event {
	e.CourierID = &courierID
	return e
}

func (e Event) Validate() error {
	return errors.Join(e.ID.Validate(), e.OrderID.Validate())
}
