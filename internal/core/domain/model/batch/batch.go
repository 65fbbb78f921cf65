package batch

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// MinSize is the smallest group worth batching.
const MinSize = 2

var ErrBatchIsNotConstructed = errors.New("Batch must be created via NewBatch constructor")

// Stop is one order of a batch with its 1-based visiting sequence.
type Stop struct {
	OrderID  kernel.UUID
	Sequence int
}

// Batch is a set of orders assigned together to one courier, visited in a fixed sequence.
// The courier's work unit points at the batch id, not at any member order.
type Batch struct {
	id        kernel.UUID
	courierID kernel.UUID
	stops     []Stop

	totalPrice      int64
	totalDistanceKm float64

	createdAt time.Time

	guard guard.ConstructorGuard
}

// NewBatch numbers the given orders 1..N in the order they are passed.
func NewBatch(
	id, courierID kernel.UUID,
	orderIDs []kernel.UUID,
	totalPrice int64,
	totalDistanceKm float64,
	createdAt time.Time,
) (*Batch, error) {
	stops := make([]Stop, 0, len(orderIDs))
	for i, orderID := range orderIDs {
		stops = append(stops, Stop{OrderID: orderID, Sequence: i + 1})
	}

	return RestoreBatch(id, courierID, stops, totalPrice, totalDistanceKm, createdAt)
}

// RestoreBatch rebuilds a Batch from persisted stops. Stops must carry the sequence 1..N.
func RestoreBatch(
	id, courierID kernel.UUID,
	stops []Stop,
	totalPrice int64,
	totalDistanceKm float64,
	createdAt time.Time,
) (*Batch, error) {
	b := &Batch{
		totalPrice:      totalPrice,
		totalDistanceKm: totalDistanceKm,
		createdAt:       createdAt,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		id.Validate(),
		courierID.Validate(),
		b.setStops(stops),
		validateTotals(totalPrice, totalDistanceKm),
	); err != nil {
		return nil, err
	}

	b.id, b.courierID = id, courierID
	return b, nil
}

func (b *Batch) Validate() error {
	if b == nil {
		return ErrBatchIsNotConstructed
	}
	return b.guard.Validate(ErrBatchIsNotConstructed)
}

func (b *Batch) ID() kernel.UUID {
	return b.id
}

func (b *Batch) CourierID() kernel.UUID {
	return b.courierID
}

// Stops returns a copy of the stops ordered by sequence.
func (b *Batch) Stops() []Stop {
	out := make([]Stop, len(b.stops))
	copy(out, b.stops)
	return out
}

func (b *Batch) OrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(b.stops))
	for _, s := range b.stops {
		ids = append(ids, s.OrderID)
	}
	return ids
}

func (b *Batch) Size() int {
	return len(b.stops)
}

func (b *Batch) TotalPrice() int64 {
	return b.totalPrice
}

func (b *Batch) TotalDistanceKm() float64 {
	return b.totalDistanceKm
}

func (b *Batch) CreatedAt() time.Time {
	return b.createdAt
}

func (b *Batch) setStops(stops []Stop) error {
	if len(stops) < MinSize {
		return errs.NewValueIsOutOfRangeError("orders", len(stops), MinSize, "unbounded")
	}

	seen := make(map[kernel.UUID]struct{}, len(stops))
	ordered := make([]Stop, len(stops))
	for _, s := range stops {
		if err := s.OrderID.Validate(); err != nil {
			return err
		}
		if _, dup := seen[s.OrderID]; dup {
			return errs.NewValueIsInvalidErrorWithCause("orders", fmt.Errorf("order %s listed twice", s.OrderID))
		}
		seen[s.OrderID] = struct{}{}

		if s.Sequence < 1 || s.Sequence > len(stops) || ordered[s.Sequence-1].Sequence != 0 {
			return errs.NewValueIsInvalidErrorWithCause("sequence", fmt.Errorf("%d is not a free slot in 1..%d", s.Sequence, len(stops)))
		}
		ordered[s.Sequence-1] = s
	}

	b.stops = ordered
	return nil
}

func validateTotals(price int64, distanceKm float64) error {
	if price < 0 {
		return errs.NewValueIsInvalidErrorWithCause("totalPrice", fmt.Errorf("%d is negative", price))
	}
	if distanceKm < 0 {
		return errs.NewValueIsInvalidErrorWithCause("totalDistanceKm", fmt.Errorf("%f is negative", distanceKm))
	}
	return nil
}
