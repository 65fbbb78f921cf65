package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	EarthRadiusKm = 6371.0

	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0
)

var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// DistanceKm returns the great-circle (haversine) distance in kilometres between
// two points given in decimal degrees. It is pure; NaN inputs propagate, so
// callers validate coordinates before calling it.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Location is a geocoded point. Addresses reach the service already geocoded,
// so a Location is always built from known latitude and longitude.
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	lon   float64
	guard guard.ConstructorGuard
}

// NewLocation validates the coordinate ranges and rejects NaN.
func NewLocation(lat, lon float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLon(lon)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

func (l Location) Lat() float64 {
	return l.lat
}

func (l Location) Lon() float64 {
	return l.lon
}

func (l Location) String() string {
	return fmt.Sprintf("Location(%.6f,%.6f)", l.lat, l.lon)
}

func (l Location) IsEqual(other Location) bool {
	return l.lat == other.lat && l.lon == other.lon
}

// DistanceKm is the haversine distance between two validated locations.
func (l Location) DistanceKm(other Location) float64 {
	return DistanceKm(l.lat, l.lon, other.lat, other.lon)
}

func (l *Location) setLat(lat float64) error {
	if math.IsNaN(lat) {
		return errs.NewValueIsInvalidError("lat")
	}
	if lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("lat", lat, LatitudeMin, LatitudeMax)
	}

	l.lat = lat
	return nil
}

func (l *Location) setLon(lon float64) error {
	if math.IsNaN(lon) {
		return errs.NewValueIsInvalidError("lon")
	}
	if lon < LongitudeMin || lon > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("lon", lon, LongitudeMin, LongitudeMax)
	}

	l.lon = lon
	return nil
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
