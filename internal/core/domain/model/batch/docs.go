// Package batch contains the Batch aggregate: orders confirmed together for a
// single courier with a fixed visiting sequence.
package batch
