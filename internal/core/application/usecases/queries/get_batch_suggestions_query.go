package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetBatchSuggestionsQueryIsNotConstructed = errors.New(
		"GetBatchSuggestionsQuery must be created via NewGetBatchSuggestionsQuery constructor",
	)
)

// GetBatchSuggestionsQuery asks for advisory batches over the orders that are
// waiting for a courier. Nothing is reserved; confirmation goes through
// ConfirmBatchCommand.
type GetBatchSuggestionsQuery struct {
	guard guard.ConstructorGuard
}

func NewGetBatchSuggestionsQuery() GetBatchSuggestionsQuery {
	return GetBatchSuggestionsQuery{guard: guard.NewConstructorGuard()}
}

func (q GetBatchSuggestionsQuery) Validate() error {
	return q.guard.Validate(ErrGetBatchSuggestionsQueryIsNotConstructed)
}

type GetBatchSuggestionsQueryResponse struct {
	OrderIDs            []kernel.UUID
	TotalPrice          int64
	TotalDistanceKm     float64
	AvgPairwisePickupKm float64
}
