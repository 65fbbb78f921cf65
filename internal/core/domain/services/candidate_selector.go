package services

import (
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/order"
)

// CandidateSelector computes the candidate set of an order.
type CandidateSelector struct{}

func NewCandidateSelector() CandidateSelector {
	return CandidateSelector{}
}

// Select keeps couriers that are online, free, located and within maxPickupDistanceKm
// of the pickup. Couriers holding an active offer for any order, and couriers that
// already rejected or let expire an offer for this order, are excluded.
// The result is in input order; ranking is PriorityModel's job.
func (CandidateSelector) Select(
	o *order.Order,
	couriers []*courier.Courier,
	withActiveOffer CourierSet,
	refusedOrder CourierSet,
	maxPickupDistanceKm float64,
) []Candidate {
	pickup := o.Pickup().Location()
	candidates := make([]Candidate, 0, len(couriers))

	for _, c := range couriers {
		if c.Validate() != nil || !c.IsAvailable() {
			continue
		}
		if withActiveOffer.Has(c.ID()) || refusedOrder.Has(c.ID()) {
			continue
		}

		distance, err := c.DistanceToKm(pickup)
		if err != nil || distance > maxPickupDistanceKm {
			continue
		}

		candidates = append(candidates, Candidate{Courier: c, DistanceKm: distance})
	}

	return candidates
}
