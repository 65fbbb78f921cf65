// Package policy holds the dispatch configuration snapshot: distribution mode,
// pickup radius, offer timeout, attempt cap, penalty points and clustering limits.
package policy
