package offer

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status of an offer. Pending moves to exactly one of Accepted, Rejected or
// Expired; all three are terminal.
type Status int

const (
	Unknown Status = iota
	Pending
	Accepted
	Rejected
	Expired
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:  "Unknown",
		Pending:  "Pending",
		Accepted: "Accepted",
		Rejected: "Rejected",
		Expired:  "Expired",
	}
}

func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok || s == Unknown {
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

func (s Status) IsTerminal() bool {
	return s == Accepted || s == Rejected || s == Expired
}

// FailureReason explains why an offer did not end in acceptance.
type FailureReason string

const (
	ReasonNone           FailureReason = ""
	ReasonTimeout        FailureReason = "timeout"
	ReasonExplicitReject FailureReason = "explicit_reject"
	// ReasonLostRace marks an accept that arrived after another courier claimed the order.
	ReasonLostRace FailureReason = "lost_race"
	// ReasonSuperseded marks sibling offers closed because the order was claimed elsewhere.
	ReasonSuperseded FailureReason = "superseded"
	ReasonCancelled  FailureReason = "cancelled"
)

func (r FailureReason) Validate() error {
	switch r {
	case ReasonNone, ReasonTimeout, ReasonExplicitReject, ReasonLostRace, ReasonSuperseded, ReasonCancelled:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("failure reason", fmt.Errorf("%q is unknown", string(r)))
	}
}

// IsPenalized reports whether the courier is charged for this outcome.
func (r FailureReason) IsPenalized() bool {
	return r == ReasonTimeout || r == ReasonExplicitReject
}

// TerminalStatus maps a failure reason to the terminal status it produces.
func (r FailureReason) TerminalStatus() Status {
	if r == ReasonTimeout {
		return Expired
	}
	return Rejected
}
