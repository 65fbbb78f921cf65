// Package services provides the pure domain services of the dispatch engine.
//
// The package includes:
//   - PriorityModel: candidate ranking and penalty computation
//   - CandidateSelector: the eligibility rules for offering an order to a courier
//   - BatchClusterer: advisory grouping of nearby orders into batch proposals
//
// Services hold no state and perform no I/O; persistence is left to the
// application layer.
package services
