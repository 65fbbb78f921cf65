// Package audit defines the dispatch audit trail record.
package audit
