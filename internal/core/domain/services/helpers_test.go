package services_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

// kmNorth returns the latitude offset of roughly km kilometres.
func kmNorth(km float64) float64 {
	return km / 111.195
}

func location(t *testing.T, lat, lon float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lon)
	require.NoError(t, err)
	return loc
}

func newOrderAt(t *testing.T, lat, lon float64, price int64, createdAt time.Time) *order.Order {
	t.Helper()
	pickup, err := order.NewAddress(location(t, lat, lon), "pickup")
	require.NoError(t, err)
	dropoff, err := order.NewAddress(location(t, lat+kmNorth(1), lon), "dropoff")
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), pickup, dropoff, price, createdAt)
	require.NoError(t, err)
	return o
}

func newCourierAt(t *testing.T, name string, lat, lon, score float64) *courier.Courier {
	t.Helper()
	loc := location(t, lat, lon)
	c, err := courier.RestoreCourier(kernel.NewUUID(), name, true, &loc, score, 0, nil)
	require.NoError(t, err)
	return c
}
