package batch_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBatch(t *testing.T) {
	orders := []kernel.UUID{kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()}

	b, err := batch.NewBatch(kernel.NewUUID(), kernel.NewUUID(), orders, 4200, 12.5, time.Now())

	require.NoError(t, err)
	require.NoError(t, b.Validate())
	assert.Equal(t, 3, b.Size())
	assert.Equal(t, orders, b.OrderIDs())
	for i, stop := range b.Stops() {
		assert.Equal(t, i+1, stop.Sequence)
	}
	assert.Equal(t, int64(4200), b.TotalPrice())
	assert.Equal(t, 12.5, b.TotalDistanceKm())
}

func TestNewBatch_Invalid(t *testing.T) {
	dup := kernel.NewUUID()

	tests := []struct {
		name    string
		orders  []kernel.UUID
		price   int64
		wantErr error
	}{
		{name: "single order", orders: []kernel.UUID{kernel.NewUUID()}, wantErr: errs.ErrValueIsOutOfRange},
		{name: "duplicate order", orders: []kernel.UUID{dup, dup}, wantErr: errs.ErrValueIsInvalid},
		{name: "negative price", orders: []kernel.UUID{kernel.NewUUID(), kernel.NewUUID()}, price: -5, wantErr: errs.ErrValueIsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := batch.NewBatch(kernel.NewUUID(), kernel.NewUUID(), tt.orders, tt.price, 0, time.Now())

			assert.Nil(t, b)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRestoreBatch_OrdersStopsBySequence(t *testing.T) {
	first, second := kernel.NewUUID(), kernel.NewUUID()

	b, err := batch.RestoreBatch(kernel.NewUUID(), kernel.NewUUID(), []batch.Stop{
		{OrderID: second, Sequence: 2},
		{OrderID: first, Sequence: 1},
	}, 100, 1, time.Now())

	require.NoError(t, err)
	assert.Equal(t, []kernel.UUID{first, second}, b.OrderIDs())

	_, err = batch.RestoreBatch(kernel.NewUUID(), kernel.NewUUID(), []batch.Stop{
		{OrderID: first, Sequence: 1},
		{OrderID: second, Sequence: 1},
	}, 100, 1, time.Now())
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
