package services

import (
	"cmp"
	"slices"

	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// Proposal is an advisory batch: orders whose pickups lie close together.
type Proposal struct {
	OrderIDs []kernel.UUID
	// TotalPrice is the sum of member prices in minor units.
	TotalPrice int64
	// TotalDistanceKm is the sum of pickup to dropoff distances of the members.
	TotalDistanceKm float64
	// AvgPairwisePickupKm is the mean distance between every pair of member pickups.
	AvgPairwisePickupKm float64
}

// BatchClusterer groups nearby orders by pickup proximity.
type BatchClusterer struct{}

func NewBatchClusterer() BatchClusterer {
	return BatchClusterer{}
}

// Suggest runs greedy seed clustering. Orders are taken oldest first as seeds; each
// seed collects the still unclustered orders whose pickup is within radiusKm of its
// own, nearest first, up to maxSize members. Groups smaller than batch.MinSize are
// dropped. Suggest does not mutate the orders.
func (BatchClusterer) Suggest(orders []*order.Order, radiusKm float64, maxSize int) []Proposal {
	if maxSize < batch.MinSize {
		return nil
	}

	pool := slices.Clone(orders)
	slices.SortStableFunc(pool, func(a, b *order.Order) int {
		if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
			return c
		}
		return a.ID().Compare(b.ID())
	})

	clustered := make(map[kernel.UUID]bool, len(pool))
	var proposals []Proposal

	for _, seed := range pool {
		if clustered[seed.ID()] {
			continue
		}
		seedPickup := seed.Pickup().Location()

		type neighbour struct {
			order    *order.Order
			distance float64
		}
		var near []neighbour
		for _, other := range pool {
			if other == seed || clustered[other.ID()] {
				continue
			}
			if d := seedPickup.DistanceKm(other.Pickup().Location()); d <= radiusKm {
				near = append(near, neighbour{order: other, distance: d})
			}
		}
		if len(near)+1 < batch.MinSize {
			continue
		}
		slices.SortStableFunc(near, func(a, b neighbour) int {
			return cmp.Compare(a.distance, b.distance)
		})

		members := []*order.Order{seed}
		for _, n := range near {
			if len(members) == maxSize {
				break
			}
			members = append(members, n.order)
		}

		for _, m := range members {
			clustered[m.ID()] = true
		}
		proposals = append(proposals, newProposal(members))
	}

	return proposals
}

func newProposal(members []*order.Order) Proposal {
	p := Proposal{OrderIDs: make([]kernel.UUID, 0, len(members))}

	var pairSum float64
	var pairs int
	for i, m := range members {
		p.OrderIDs = append(p.OrderIDs, m.ID())
		p.TotalPrice += m.Price()
		p.TotalDistanceKm += m.TripDistanceKm()

		for _, other := range members[i+1:] {
			pairSum += m.Pickup().Location().DistanceKm(other.Pickup().Location())
			pairs++
		}
	}
	if pairs > 0 {
		p.AvgPairwisePickupKm = pairSum / float64(pairs)
	}

	return p
}
