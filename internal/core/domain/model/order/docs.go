// Package order contains the Order aggregate: a delivery request with a pickup and
// a dropoff, a price and a status that leaves Pending exactly once.
//
// Orders are created by the order-creation path, then claimed by at most one
// courier (directly through an accepted offer or as a member of a confirmed
// batch), exhausted when no courier takes them, or cancelled by the requester.
package order
