package ports

import "time"

// DispatchMetrics records dispatch activity for monitoring.
type DispatchMetrics interface {
	OfferCreated(mode string)
	OfferResolved(status, reason string)
	OrderExhausted()
	SweepCompleted(duration time.Duration, expired, distributed, failed, errors int)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) OfferCreated(string)                              {}
func (NopMetrics) OfferResolved(string, string)                     {}
func (NopMetrics) OrderExhausted()                                  {}
func (NopMetrics) SweepCompleted(time.Duration, int, int, int, int) {}
