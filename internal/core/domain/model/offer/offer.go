package offer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrOfferIsNotConstructed = errors.New("Offer must be created via NewOffer constructor")

	// ErrOfferNotActive is wrapped into a ConflictError when an offer is no longer pending
	// or its deadline passed by the server clock.
	ErrOfferNotActive = errors.New("offer is not pending or has expired")
)

// Offer is a time-boxed proposal that one courier delivers one order.
// Offers are never reopened: a retry is a new Offer with a higher attempt.
type Offer struct {
	id        kernel.UUID
	orderID   kernel.UUID
	courierID kernel.UUID

	distanceToPickupKm float64
	attempt            int

	status        Status
	failureReason FailureReason

	offeredAt   time.Time
	expiresAt   time.Time
	respondedAt *time.Time

	guard guard.ConstructorGuard
}

// NewOffer creates a Pending offer expiring timeout after offeredAt.
func NewOffer(
	id, orderID, courierID kernel.UUID,
	distanceToPickupKm float64,
	attempt int,
	offeredAt time.Time,
	timeout time.Duration,
) (*Offer, error) {
	if timeout <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("timeout", timeout, "1s", "unbounded")
	}

	return RestoreOffer(id, orderID, courierID, distanceToPickupKm, attempt,
		Pending, ReasonNone, offeredAt, offeredAt.Add(timeout), nil)
}

// RestoreOffer rebuilds an Offer from persisted state.
func RestoreOffer(
	id, orderID, courierID kernel.UUID,
	distanceToPickupKm float64,
	attempt int,
	status Status,
	failureReason FailureReason,
	offeredAt, expiresAt time.Time,
	respondedAt *time.Time,
) (*Offer, error) {
	o := &Offer{
		status:        status,
		failureReason: failureReason,
		offeredAt:     offeredAt,
		expiresAt:     expiresAt,
		respondedAt:   respondedAt,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		validateIDs(id, orderID, courierID),
		o.setDistance(distanceToPickupKm),
		o.setAttempt(attempt),
		status.Validate(),
		failureReason.Validate(),
		validateWindow(offeredAt, expiresAt),
	); err != nil {
		return nil, err
	}

	o.id, o.orderID, o.courierID = id, orderID, courierID
	return o, nil
}

func (o *Offer) Validate() error {
	if o == nil {
		return ErrOfferIsNotConstructed
	}
	return o.guard.Validate(ErrOfferIsNotConstructed)
}

func (o *Offer) ID() kernel.UUID              { return o.id }
func (o *Offer) OrderID() kernel.UUID         { return o.orderID }
func (o *Offer) CourierID() kernel.UUID       { return o.courierID }
func (o *Offer) DistanceToPickupKm() float64  { return o.distanceToPickupKm }
func (o *Offer) Attempt() int                 { return o.attempt }
func (o *Offer) Status() Status               { return o.status }
func (o *Offer) FailureReason() FailureReason { return o.failureReason }
func (o *Offer) OfferedAt() time.Time         { return o.offeredAt }
func (o *Offer) ExpiresAt() time.Time         { return o.expiresAt }

// RespondedAt is nil while the offer is pending.
func (o *Offer) RespondedAt() *time.Time { return o.respondedAt }

// IsActive reports whether the offer is Pending and its deadline is still ahead of now.
func (o *Offer) IsActive(now time.Time) bool {
	return o.status == Pending && o.expiresAt.After(now)
}

// IsStale reports whether the offer is Pending but its deadline is not ahead of now.
func (o *Offer) IsStale(now time.Time) bool {
	return o.status == Pending && !o.expiresAt.After(now)
}

// Accept resolves an active offer as accepted.
func (o *Offer) Accept(now time.Time) error {
	if !o.IsActive(now) {
		return o.notActive()
	}
	o.resolve(Accepted, ReasonNone, now)
	return nil
}

// Reject resolves an active offer with one of the non-timeout reasons.
func (o *Offer) Reject(now time.Time, reason FailureReason) error {
	if reason == ReasonNone || reason == ReasonTimeout {
		return errs.NewValueIsInvalidErrorWithCause("failure reason", fmt.Errorf("%q cannot reject an offer", string(reason)))
	}
	if o.status != Pending {
		return o.notActive()
	}
	// An explicit answer after the deadline loses to expiry.
	if reason == ReasonExplicitReject && !o.IsActive(now) {
		return o.notActive()
	}
	o.resolve(Rejected, reason, now)
	return nil
}

// Expire resolves a stale offer as timed out.
func (o *Offer) Expire(now time.Time) error {
	if !o.IsStale(now) {
		return errs.NewConflictError("offer", o.id, "not stale")
	}
	o.resolve(ReasonTimeout.TerminalStatus(), ReasonTimeout, now)
	return nil
}

func (o *Offer) resolve(status Status, reason FailureReason, now time.Time) {
	o.status = status
	o.failureReason = reason
	respondedAt := now
	o.respondedAt = &respondedAt
}

func (o *Offer) notActive() error {
	return fmt.Errorf("%w: %w", errs.NewConflictError("offer", o.id, o.status.String()), ErrOfferNotActive)
}

func validateIDs(ids ...kernel.UUID) error {
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (o *Offer) setDistance(km float64) error {
	if km < 0 || math.IsNaN(km) {
		return errs.NewValueIsOutOfRangeError("distanceToPickupKm", km, 0, "unbounded")
	}
	o.distanceToPickupKm = km
	return nil
}

func (o *Offer) setAttempt(attempt int) error {
	if attempt < 1 {
		return errs.NewValueIsOutOfRangeError("attempt", attempt, 1, "unbounded")
	}
	o.attempt = attempt
	return nil
}

func validateWindow(offeredAt, expiresAt time.Time) error {
	if !expiresAt.After(offeredAt) {
		return errs.NewValueIsInvalidErrorWithCause("expiresAt", fmt.Errorf("%s is not after %s", expiresAt, offeredAt))
	}
	return nil
}
