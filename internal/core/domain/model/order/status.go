package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──┬──> Accepted
//	          ├──> NoCourierAvailable
//	          └──> Cancelled
//
// "Awaiting assignment" is not a stored state: it is a Pending order with no
// courier and no active offer. Every transition out of Pending is final.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Pending is the initial status. The order waits for offers.
	Pending

	// Accepted means exactly one courier (or a confirmed batch) claimed the order.
	Accepted

	// NoCourierAvailable means dispatch attempts were exhausted.
	NoCourierAvailable

	// Cancelled means the requester withdrew the order before it was claimed.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:            "Unknown",
		Pending:            "Pending",
		Accepted:           "Accepted",
		NoCourierAvailable: "NoCourierAvailable",
		Cancelled:          "Cancelled",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:            "Pending",
		Accepted:           "Accepted",
		NoCourierAvailable: "NoCourierAvailable",
		Cancelled:          "Cancelled",
	}
}

// Validate checks that a Status read from an external source is one of the known values.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsFinal reports whether no further transition is possible.
func (s Status) IsFinal() bool {
	return s == Accepted || s == NoCourierAvailable || s == Cancelled
}

// ValidateCanHaveCourier checks that only accepted orders carry a courier.
func (s Status) ValidateCanHaveCourier(courier bool) error {
	if courier && s != Accepted {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a courier", s.String()),
		)
	}

	if !courier && s == Accepted {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no courier", s.String()),
		)
	}

	return nil
}

// Accept transitions Pending to Accepted.
func (s Status) Accept() (Status, error) {
	return s.leavePending(Accepted, "accept")
}

// Exhaust transitions Pending to NoCourierAvailable.
func (s Status) Exhaust() (Status, error) {
	return s.leavePending(NoCourierAvailable, "exhaust")
}

// Cancel transitions Pending to Cancelled.
func (s Status) Cancel() (Status, error) {
	return s.leavePending(Cancelled, "cancel")
}

func (s Status) leavePending(target Status, action string) (Status, error) {
	if s != Pending {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to %s", s.String(), action),
		)
	}

	return target, nil
}
