package courier

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	ErrNameIsRequired          = errs.NewValueIsRequiredError("name")
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
	ErrLocationIsUnknown       = errors.New("courier location is unknown")
)

// Courier is the aggregate root for a delivery courier as the dispatcher sees it:
// presence, last known location, ranking counters and the current work unit.
//
// Business rules:
//   - A courier with a work unit is never offered a new order
//   - A courier without a known location is never a candidate
//   - priorityScore and rejectionsToday only grow through penalties
type Courier struct {
	id   kernel.UUID
	name string

	online   bool
	location *kernel.Location

	// lower score is preferred by ranking
	priorityScore   float64
	rejectionsToday int

	workUnit *WorkUnit

	guard guard.ConstructorGuard
}

// NewCourier registers an offline courier with no known location and zero counters.
//
// Example:
//
//	c, err := courier.NewCourier(kernel.NewUUID(), "Alice")
//	if err != nil {
//	    return err
//	}
//	c.ReportPresence(true, &currentLocation)
func NewCourier(id kernel.UUID, name string) (*Courier, error) {
	courier := &Courier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// RestoreCourier reconstructs a Courier aggregate from persistent storage.
func RestoreCourier(
	id kernel.UUID,
	name string,
	online bool,
	location *kernel.Location,
	priorityScore float64,
	rejectionsToday int,
	workUnit *WorkUnit,
) (*Courier, error) {
	courier := &Courier{
		online: online,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setLocation(location),
		courier.setCounters(priorityScore, rejectionsToday),
		courier.setWorkUnit(workUnit),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

func (c *Courier) ID() kernel.UUID {
	return c.id
}

func (c *Courier) Name() string {
	return c.name
}

func (c *Courier) IsOnline() bool {
	return c.online
}

// Location returns the last reported position, or nil when it was never reported.
func (c *Courier) Location() *kernel.Location {
	return c.location
}

func (c *Courier) PriorityScore() float64 {
	return c.priorityScore
}

func (c *Courier) RejectionsToday() int {
	return c.rejectionsToday
}

// WorkUnit returns the order or batch the courier is busy with, or nil when free.
func (c *Courier) WorkUnit() *WorkUnit {
	return c.workUnit
}

// IsAvailable reports whether the courier can receive an offer at all:
// online, free and with a known location.
func (c *Courier) IsAvailable() bool {
	return c.online && c.workUnit == nil && c.location != nil
}

// DistanceToKm returns the distance from the courier's last location to target.
func (c *Courier) DistanceToKm(target kernel.Location) (float64, error) {
	if c.location == nil {
		return 0, ErrLocationIsUnknown
	}
	return c.location.DistanceKm(target), nil
}

// ReportPresence records an online/offline report. A nil location keeps the previous one.
func (c *Courier) ReportPresence(online bool, location *kernel.Location) error {
	if err := c.setLocation(location); err != nil {
		return err
	}
	c.online = online
	return nil
}

// MoveTo updates the last known location.
func (c *Courier) MoveTo(location kernel.Location) error {
	return c.setLocation(&location)
}

// Occupy binds the courier to a work unit. A busy courier cannot take a second one.
func (c *Courier) Occupy(unit WorkUnit) error {
	if err := unit.ID().Validate(); err != nil {
		return err
	}
	if c.workUnit != nil {
		return errs.NewConflictError("courier", c.id, "already busy with "+c.workUnit.String())
	}
	c.workUnit = &unit
	return nil
}

// ApplyPenalty adds the penalty to the ranking counters.
func (c *Courier) ApplyPenalty(p Penalty) {
	c.priorityScore += p.Points
	c.rejectionsToday += p.Rejections
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *Courier) setLocation(location *kernel.Location) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	loc := *location
	c.location = &loc
	return nil
}

func (c *Courier) setCounters(priorityScore float64, rejectionsToday int) error {
	if rejectionsToday < 0 {
		return errs.NewValueIsOutOfRangeError("rejectionsToday", rejectionsToday, 0, "unbounded")
	}
	c.priorityScore = priorityScore
	c.rejectionsToday = rejectionsToday
	return nil
}

func (c *Courier) setWorkUnit(unit *WorkUnit) error {
	if unit == nil {
		return nil
	}
	if _, err := RestoreWorkUnit(unit.kind, unit.id); err != nil {
		return err
	}
	c.workUnit = unit
	return nil
}
