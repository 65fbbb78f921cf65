package services_test

import (
	"testing"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityModel_Penalty(t *testing.T) {
	model := services.NewPriorityModel()

	tests := []struct {
		reason  offer.FailureReason
		want    courier.Penalty
		wantErr bool
	}{
		{reason: offer.ReasonTimeout, want: courier.Penalty{Points: 5, Rejections: 1}},
		{reason: offer.ReasonExplicitReject, want: courier.Penalty{Points: 10, Rejections: 1}},
		{reason: offer.ReasonLostRace, wantErr: true},
		{reason: offer.ReasonSuperseded, wantErr: true},
		{reason: offer.ReasonCancelled, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			got, err := model.Penalty(tt.reason, 10)

			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrValueIsInvalid)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriorityModel_Rank(t *testing.T) {
	model := services.NewPriorityModel()
	low := newCourierAt(t, "low", 0, 0, 1)
	highNear := newCourierAt(t, "high-near", 0, 0, 5)
	highFar := newCourierAt(t, "high-far", 0, 0, 5)

	input := []services.Candidate{
		{Courier: highFar, DistanceKm: 4},
		{Courier: highNear, DistanceKm: 1},
		{Courier: low, DistanceKm: 4.9},
	}

	ranked := model.Rank(input)

	require.Len(t, ranked, 3)
	assert.Same(t, low, ranked[0].Courier, "lower score wins over distance")
	assert.Same(t, highNear, ranked[1].Courier, "ties broken by distance")
	assert.Same(t, highFar, ranked[2].Courier)
	assert.Same(t, highFar, input[0].Courier, "input is not reordered")
}

func TestPriorityModel_RankTieOnEverything(t *testing.T) {
	model := services.NewPriorityModel()
	a := newCourierAt(t, "a", 0, 0, 0)
	b := newCourierAt(t, "b", 0, 0, 0)

	first := model.Rank([]services.Candidate{{Courier: a, DistanceKm: 1}, {Courier: b, DistanceKm: 1}})
	second := model.Rank([]services.Candidate{{Courier: b, DistanceKm: 1}, {Courier: a, DistanceKm: 1}})

	assert.Same(t, first[0].Courier, second[0].Courier, "courier id breaks the final tie")
	assert.Empty(t, model.Rank(nil))
}
