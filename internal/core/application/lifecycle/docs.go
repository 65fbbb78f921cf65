// Package lifecycle manages offers from creation to resolution: creating an offer
// under the one-active-offer-per-courier rule, expiring stale offers lazily, and
// resolving courier responses, including the atomic claim of the order and the
// closing of sibling offers in broadcast mode.
package lifecycle
