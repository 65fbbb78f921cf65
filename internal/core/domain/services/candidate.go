package services

import (
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// Candidate is a courier eligible for an offer together with its distance to the pickup.
type Candidate struct {
	Courier    *courier.Courier
	DistanceKm float64
}

// CourierSet is a set of courier ids used for exclusions.
type CourierSet map[kernel.UUID]struct{}

func NewCourierSet(ids ...kernel.UUID) CourierSet {
	set := make(CourierSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s CourierSet) Has(id kernel.UUID) bool {
	_, ok := s[id]
	return ok
}
