// Package kernel provides the domain primitives shared by every aggregate of the
// dispatch engine.
//
// The package includes:
//   - UUID: identifier value object for orders, offers, couriers and batches
//   - Location: a validated geocoded point
//   - DistanceKm: the haversine great-circle distance used wherever proximity matters
//
// Values are immutable and safe for concurrent use.
package kernel
