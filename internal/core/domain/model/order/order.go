package order

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrNotRequester is returned when someone other than the customer tries to cancel.
	ErrNotRequester = errors.New("only the requester can cancel the order")
)

// Order is the aggregate root of a delivery request.
//
// Order follows these invariants:
//   - Must have a valid id and a valid requester (customer) id
//   - Pickup and dropoff must be geocoded
//   - Price is expressed in minor currency units and must not be negative
//   - Only an Accepted order carries a courier; only batch members carry a batch id
//   - Pending -> Accepted happens at most once
type Order struct {
	id         kernel.UUID
	customerID kernel.UUID

	pickup  Address
	dropoff Address

	// price in minor currency units
	price int64

	status    Status
	courierID *kernel.UUID

	// batchID and batchSequence are set together when the order joins a confirmed batch.
	batchID       *kernel.UUID
	batchSequence int

	createdAt time.Time

	isConstructed bool
}

// NewOrder creates a Pending order with no courier assigned.
//
// Example:
//
//	pickup, _ := order.NewAddress(pickupLocation, "12 Baker St")
//	dropoff, _ := order.NewAddress(dropoffLocation, "221 King Rd")
//	o, err := order.NewOrder(kernel.NewUUID(), customerID, pickup, dropoff, 1250, time.Now())
func NewOrder(
	id, customerID kernel.UUID,
	pickup, dropoff Address,
	price int64,
	createdAt time.Time,
) (*Order, error) {
	order := &Order{
		status:        Pending,
		createdAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setCustomerID(customerID),
		order.setPickup(pickup),
		order.setDropoff(dropoff),
		order.setPrice(price),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder rebuilds an Order from persisted state.
func RestoreOrder(
	id, customerID kernel.UUID,
	pickup, dropoff Address,
	price int64,
	status Status,
	courierID *kernel.UUID,
	batchID *kernel.UUID,
	batchSequence int,
	createdAt time.Time,
) (*Order, error) {
	order := &Order{
		createdAt:     createdAt,
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setCustomerID(customerID),
		order.setPickup(pickup),
		order.setDropoff(dropoff),
		order.setPrice(price),
		order.setStatus(status, courierID),
		order.setBatch(batchID, batchSequence),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

func (o *Order) Pickup() Address {
	return o.pickup
}

func (o *Order) Dropoff() Address {
	return o.dropoff
}

func (o *Order) Price() int64 {
	return o.price
}

func (o *Order) Status() Status {
	return o.status
}

// Courier returns the assigned courier's ID, or nil while unassigned.
func (o *Order) Courier() *kernel.UUID {
	return o.courierID
}

// Batch returns the confirmed batch id and the visiting sequence, or nil and 0.
func (o *Order) Batch() (*kernel.UUID, int) {
	return o.batchID, o.batchSequence
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// TripDistanceKm is the straight-line pickup to dropoff distance.
func (o *Order) TripDistanceKm() float64 {
	return o.pickup.Location().DistanceKm(o.dropoff.Location())
}

// IsUnassigned reports whether the order is Pending and no courier holds it.
func (o *Order) IsUnassigned() bool {
	return o.status == Pending && o.courierID == nil
}

// Accept assigns the order to the courier whose offer won.
func (o *Order) Accept(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if o.courierID != nil {
		return errs.NewConflictError("order", o.id, "already assigned")
	}

	newStatus, err := o.status.Accept()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.courierID = &courierID
	return nil
}

// JoinBatch assigns the order to a courier as the sequence-th stop of a batch.
func (o *Order) JoinBatch(batchID, courierID kernel.UUID, sequence int) error {
	if err := errors.Join(batchID.Validate(), courierID.Validate()); err != nil {
		return err
	}
	if sequence < 1 {
		return errs.NewValueIsInvalidErrorWithCause("sequence", fmt.Errorf("%d is not greater than 0", sequence))
	}
	if err := o.Accept(courierID); err != nil {
		return err
	}

	o.batchID = &batchID
	o.batchSequence = sequence
	return nil
}

// MarkNoCourierAvailable ends the order after dispatch attempts ran out.
func (o *Order) MarkNoCourierAvailable() error {
	newStatus, err := o.status.Exhaust()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Cancel withdraws the order. Only the requester may cancel, and only while unassigned.
func (o *Order) Cancel(requesterID kernel.UUID) error {
	if !o.customerID.IsEqual(requesterID) {
		return ErrNotRequester
	}
	if o.courierID != nil {
		return errs.NewConflictError("order", o.id, "already assigned")
	}
	if o.status != Pending {
		return errs.NewConflictError("order", o.id, o.status.String())
	}

	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerID", err)
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setPickup(pickup Address) error {
	if err := pickup.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("pickup", err)
	}
	o.pickup = pickup
	return nil
}

func (o *Order) setDropoff(dropoff Address) error {
	if err := dropoff.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("dropoff", err)
	}
	o.dropoff = dropoff
	return nil
}

func (o *Order) setPrice(price int64) error {
	if price < 0 {
		return errs.NewValueIsInvalidErrorWithCause("price is invalid", fmt.Errorf("%d is negative", price))
	}
	o.price = price
	return nil
}

func (o *Order) setStatus(status Status, courierID *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return err
		}
	}
	if err := status.ValidateCanHaveCourier(courierID != nil); err != nil {
		return err
	}

	o.status = status
	o.courierID = courierID
	return nil
}

func (o *Order) setBatch(batchID *kernel.UUID, sequence int) error {
	if batchID == nil {
		return nil
	}
	if err := batchID.Validate(); err != nil {
		return err
	}
	if sequence < 1 {
		return errs.NewValueIsInvalidErrorWithCause("sequence", fmt.Errorf("%d is not greater than 0", sequence))
	}

	o.batchID = batchID
	o.batchSequence = sequence
	return nil
}
