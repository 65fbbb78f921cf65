// Package courier contains the Courier aggregate as seen by the dispatcher.
//
// A courier reports presence and location, holds at most one work unit (a single
// order or a confirmed batch) and accumulates ranking penalties whenever an offer
// times out or is rejected. Daily counter resets happen outside this service.
package courier
