package policy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/pkg/errs"
)

// Mode selects how the sweep distributes an order.
type Mode string

const (
	// ModeAll offers an order to every eligible courier at once.
	ModeAll Mode = "ALL"
	// ModeOneByOne offers an order to the best ranked courier only.
	ModeOneByOne Mode = "ONE_BY_ONE"
	// ModeManual stops automatic distribution; the sweep only expires offers.
	ModeManual Mode = "MANUAL"
)

// ParseMode accepts the configured spelling case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case ModeAll, ModeOneByOne, ModeManual:
		return m, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("distribution mode", fmt.Errorf("%q is not one of ALL, ONE_BY_ONE, MANUAL", s))
	}
}

// Default values, used when the configuration leaves a key unset.
const (
	DefaultMode                   = ModeOneByOne
	DefaultMaxPickupDistanceKm    = 5.0
	DefaultOfferTimeout           = 60 * time.Second
	DefaultMaxOfferAttempts       = 3
	DefaultRejectionPenaltyPoints = 10.0
	DefaultClusterRadiusKm        = 3.0
	DefaultMaxBatchSize           = 5
)

// Policy is one snapshot of the dispatch configuration. A sweep reads a fresh
// snapshot and uses it for its whole run.
type Policy struct {
	Mode                   Mode
	MaxPickupDistanceKm    float64
	OfferTimeout           time.Duration
	MaxOfferAttempts       int
	RejectionPenaltyPoints float64
	ClusterRadiusKm        float64
	MaxBatchSize           int
}

func Default() Policy {
	return Policy{
		Mode:                   DefaultMode,
		MaxPickupDistanceKm:    DefaultMaxPickupDistanceKm,
		OfferTimeout:           DefaultOfferTimeout,
		MaxOfferAttempts:       DefaultMaxOfferAttempts,
		RejectionPenaltyPoints: DefaultRejectionPenaltyPoints,
		ClusterRadiusKm:        DefaultClusterRadiusKm,
		MaxBatchSize:           DefaultMaxBatchSize,
	}
}

func (p Policy) Validate() error {
	var errList []error

	if _, err := ParseMode(string(p.Mode)); err != nil {
		errList = append(errList, err)
	}
	if p.MaxPickupDistanceKm <= 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("MAX_PICKUP_DISTANCE_KM", p.MaxPickupDistanceKm, "> 0", "unbounded"))
	}
	if p.OfferTimeout < time.Second {
		errList = append(errList, errs.NewValueIsOutOfRangeError("OFFER_TIMEOUT_SECONDS", p.OfferTimeout, time.Second, "unbounded"))
	}
	if p.MaxOfferAttempts < 1 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("MAX_OFFER_ATTEMPTS", p.MaxOfferAttempts, 1, "unbounded"))
	}
	if p.RejectionPenaltyPoints < 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("REJECTION_PENALTY_POINTS", p.RejectionPenaltyPoints, 0, "unbounded"))
	}
	if p.ClusterRadiusKm <= 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("CLUSTER_RADIUS_KM", p.ClusterRadiusKm, "> 0", "unbounded"))
	}
	if p.MaxBatchSize < 2 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("MAX_BATCH_SIZE", p.MaxBatchSize, 2, "unbounded"))
	}

	return errors.Join(errList...)
}

// Automatic reports whether the sweep should create offers.
func (p Policy) Automatic() bool {
	return p.Mode != ModeManual
}
