package services

import (
	"cmp"
	"fmt"
	"slices"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/errs"
)

// PriorityModel ranks candidates and computes penalties for unanswered or refused offers.
// It never resets counters; resets are owned by an external daily job.
type PriorityModel struct{}

func NewPriorityModel() PriorityModel {
	return PriorityModel{}
}

// Penalty returns the increment for a penalized failure: a timeout costs half of
// rejectionPenaltyPoints, an explicit reject the full amount, and both count one rejection.
// Non-penalized reasons (lost race, superseded, cancelled) are rejected with an error.
func (PriorityModel) Penalty(reason offer.FailureReason, rejectionPenaltyPoints float64) (courier.Penalty, error) {
	switch reason {
	case offer.ReasonTimeout:
		return courier.Penalty{Points: rejectionPenaltyPoints / 2, Rejections: 1}, nil
	case offer.ReasonExplicitReject:
		return courier.Penalty{Points: rejectionPenaltyPoints, Rejections: 1}, nil
	default:
		return courier.Penalty{}, errs.NewValueIsInvalidErrorWithCause(
			"failure reason", fmt.Errorf("%q is not penalized", string(reason)))
	}
}

// Rank orders candidates by ascending priority score, then ascending distance to
// pickup, then courier id. The input slice is left untouched.
func (PriorityModel) Rank(candidates []Candidate) []Candidate {
	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b Candidate) int {
		if c := cmp.Compare(a.Courier.PriorityScore(), b.Courier.PriorityScore()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return a.Courier.ID().Compare(b.Courier.ID())
	})
	return ranked
}
