package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
)

// OfferRepository defines the persistence contract for offers.
type OfferRepository interface {
	// AddIfCourierFree inserts a Pending offer unless the courier already holds one
	// that is Pending with expiresAt after now. Concurrent calls for the same courier
	// are serialized; the loser gets errs.ConflictError.
	AddIfCourierFree(ctx context.Context, o *offer.Offer, now time.Time) error

	Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error)

	// Resolve persists the terminal state of o only if the stored row is still
	// Pending. An accepted offer is written only if its deadline is after the
	// response time.
	Resolve(ctx context.Context, o *offer.Offer) (bool, error)

	// ResolvePendingForOrder closes every Pending offer of the order except the given one.
	ResolvePendingForOrder(
		ctx context.Context,
		orderID kernel.UUID,
		except *kernel.UUID,
		reason offer.FailureReason,
		now time.Time,
	) ([]*offer.Offer, error)

	// ResolvePendingForCourier closes every Pending offer held by the courier.
	ResolvePendingForCourier(
		ctx context.Context,
		courierID kernel.UUID,
		reason offer.FailureReason,
		now time.Time,
	) ([]*offer.Offer, error)

	// ListStale returns Pending offers whose deadline is not after now.
	ListStale(ctx context.Context, now time.Time) ([]*offer.Offer, error)

	// LastAttempt returns the highest attempt number of the order, 0 if none.
	LastAttempt(ctx context.Context, orderID kernel.UUID) (int, error)

	CourierIDsWithActiveOffers(ctx context.Context, now time.Time) ([]kernel.UUID, error)

	// CourierIDsRefusedOrder returns couriers that rejected or let expire an offer for the order.
	CourierIDsRefusedOrder(ctx context.Context, orderID kernel.UUID) ([]kernel.UUID, error)

	ListActiveByCourier(ctx context.Context, courierID kernel.UUID, now time.Time) ([]*offer.Offer, error)

	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*offer.Offer, error)
}
