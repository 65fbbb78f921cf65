package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// Outcome of a courier response.
type Outcome int

const (
	OutcomeAccepted Outcome = iota + 1
	OutcomeRejected
	// OutcomeLostRace means the courier accepted but another courier had already claimed the order.
	OutcomeLostRace
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeLostRace:
		return "lost_race"
	default:
		return "unknown"
	}
}

// Result describes how a response resolved its offer.
type Result struct {
	OfferID     kernel.UUID
	OrderID     kernel.UUID
	CourierID   kernel.UUID
	Outcome     Outcome
	Superseded  int
	RespondedAt time.Time
}

// Manager creates, expires and resolves offers. It keeps no state between calls;
// every mutation is a conditional write inside its own unit of work.
type Manager struct {
	uowFactory UoWFactory
	notifier   ports.NotificationGateway
	policies   ports.PolicyProvider
	clock      ports.Clock
	metrics    ports.DispatchMetrics
	priority   services.PriorityModel
	logger     *slog.Logger
}

func NewManager(
	uowFactory UoWFactory,
	notifier ports.NotificationGateway,
	policies ports.PolicyProvider,
	clock ports.Clock,
	metrics ports.DispatchMetrics,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		uowFactory: uowFactory,
		notifier:   notifier,
		policies:   policies,
		clock:      clock,
		metrics:    metrics,
		priority:   services.NewPriorityModel(),
		logger:     logger.With("component", "offer_lifecycle"),
	}
}

// CreateOffer offers the order to the candidate. It fails with errs.ConflictError
// when the courier already holds an active offer, including one created concurrently.
func (m *Manager) CreateOffer(
	ctx context.Context,
	o *order.Order,
	candidate services.Candidate,
	attempt int,
	timeout time.Duration,
	now time.Time,
) (*offer.Offer, error) {
	courierID := candidate.Courier.ID()
	created, err := offer.NewOffer(kernel.NewUUID(), o.ID(), courierID, candidate.DistanceKm, attempt, now, timeout)
	if err != nil {
		return nil, err
	}

	uow := m.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OfferRepository().AddIfCourierFree(ctx, created, now); err != nil {
		return nil, err
	}

	event, err := audit.NewEvent(audit.KindOfferCreated, o.ID(), attempt,
		fmt.Sprintf("distance %.2f km, expires %s", candidate.DistanceKm, created.ExpiresAt().Format(time.RFC3339)), now)
	if err != nil {
		return nil, err
	}
	if err = uow.AuditLog().Append(ctx, event.WithOffer(created.ID(), courierID)); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	m.notify(ctx, courierID, offerMessage(o, created))
	return created, nil
}

// ExpireStaleOffers expires every Pending offer whose deadline is not after now and
// penalizes its courier for the timeout. Offers resolved concurrently are skipped,
// so repeated calls have no further effect. Failures of single offers are joined
// into the returned error; the count covers the offers that did expire.
func (m *Manager) ExpireStaleOffers(ctx context.Context, now time.Time) (int, error) {
	stale, err := m.uowFactory.Create().OfferRepository().ListStale(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list stale offers: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	pol, err := m.policies.Current(ctx)
	if err != nil {
		return 0, fmt.Errorf("read policy: %w", err)
	}

	var (
		expired int
		errList []error
	)
	for _, o := range stale {
		ok, expireErr := m.expireOne(ctx, o, now, pol.RejectionPenaltyPoints)
		if expireErr != nil {
			m.logger.ErrorContext(ctx, "failed to expire offer", "offer_id", o.ID().String(), "error", expireErr)
			errList = append(errList, expireErr)
			continue
		}
		if ok {
			expired++
		}
	}

	return expired, errors.Join(errList...)
}

func (m *Manager) expireOne(ctx context.Context, o *offer.Offer, now time.Time, penaltyPoints float64) (bool, error) {
	uow := m.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ok, err := m.expireInTx(ctx, uow, o, now, penaltyPoints)
	if err != nil || !ok {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}
	m.metrics.OfferResolved(offer.Expired.String(), string(offer.ReasonTimeout))
	return true, nil
}

// expireInTx resolves o as timed out and charges the courier. false means another
// writer resolved the offer first.
func (m *Manager) expireInTx(ctx context.Context, uow UoW, o *offer.Offer, now time.Time, penaltyPoints float64) (bool, error) {
	if err := o.Expire(now); err != nil {
		return false, nil //nolint:nilerr // not stale any more, nothing to do
	}

	ok, err := uow.OfferRepository().Resolve(ctx, o)
	if err != nil || !ok {
		return false, err
	}

	if err = m.penalize(ctx, uow, o.CourierID(), offer.ReasonTimeout, penaltyPoints); err != nil {
		return false, err
	}

	event, err := audit.NewEvent(audit.KindOfferExpired, o.OrderID(), o.Attempt(), "no response before deadline", now)
	if err != nil {
		return false, err
	}
	if err = uow.AuditLog().Append(ctx, event.WithOffer(o.ID(), o.CourierID())); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) penalize(ctx context.Context, uow UoW, courierID kernel.UUID, reason offer.FailureReason, points float64) error {
	penalty, err := m.priority.Penalty(reason, points)
	if err != nil {
		return err
	}
	return uow.CourierRepository().AddPenalty(ctx, courierID, penalty)
}

// Respond resolves the offer with the courier's answer, evaluated against the
// server clock. A response to an offer that is no longer Pending, or whose
// deadline has passed, fails with errs.ConflictError wrapping offer.ErrOfferNotActive;
// a stale offer is expired on the spot. An accept that loses to another courier
// returns OutcomeLostRace together with a ConflictError.
func (m *Manager) Respond(
	ctx context.Context,
	offerID, courierID kernel.UUID,
	accept bool,
	location *kernel.Location,
) (Result, error) {
	now := m.clock.Now()

	uow := m.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return Result{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OfferRepository().Get(ctx, offerID)
	if err != nil {
		return Result{}, err
	}
	if !o.CourierID().IsEqual(courierID) {
		return Result{}, errs.NewObjectNotFoundError("offer", offerID.String())
	}

	if location != nil {
		// Written outside the transaction: the position is kept even when the
		// response itself loses and rolls back.
		if err = m.uowFactory.Create().CourierRepository().UpdateLocation(ctx, courierID, *location); err != nil {
			return Result{}, err
		}
	}

	if o.IsStale(now) {
		return Result{}, m.loseToExpiry(ctx, uow, o, now)
	}

	if accept {
		return m.accept(ctx, uow, o, now)
	}
	return m.reject(ctx, uow, o, now)
}

// loseToExpiry expires the stale offer on the spot. Only a completed expiry
// is reported as a conflict; failing to record it is an infrastructure error.
func (m *Manager) loseToExpiry(ctx context.Context, uow UoW, o *offer.Offer, now time.Time) error {
	pol, err := m.policies.Current(ctx)
	if err != nil {
		return fmt.Errorf("read dispatch policy: %w", err)
	}
	ok, err := m.expireInTx(ctx, uow, o, now, pol.RejectionPenaltyPoints)
	if err != nil {
		return fmt.Errorf("expire offer %s: %w", o.ID(), err)
	}
	if ok {
		if err = uow.Commit(ctx); err != nil {
			return fmt.Errorf("commit offer expiry %s: %w", o.ID(), err)
		}
		m.metrics.OfferResolved(offer.Expired.String(), string(offer.ReasonTimeout))
	}
	return offerNotActive(o, "deadline passed")
}

func (m *Manager) accept(ctx context.Context, uow UoW, o *offer.Offer, now time.Time) (Result, error) {
	result := Result{OfferID: o.ID(), OrderID: o.OrderID(), CourierID: o.CourierID(), RespondedAt: now}

	if o.Status() != offer.Pending {
		return Result{}, o.Accept(now)
	}

	claimed, err := uow.OrderRepository().Claim(ctx, o.OrderID(), o.CourierID())
	if err != nil {
		return Result{}, err
	}
	if !claimed {
		return m.loseRace(ctx, uow, o, now, result)
	}

	if err = o.Accept(now); err != nil {
		return Result{}, err
	}
	resolved, err := uow.OfferRepository().Resolve(ctx, o)
	if err != nil {
		return Result{}, err
	}
	if !resolved {
		return Result{}, offerNotActive(o, "resolved concurrently")
	}

	unit, err := courier.NewOrderWorkUnit(o.OrderID())
	if err != nil {
		return Result{}, err
	}
	occupied, err := uow.CourierRepository().Occupy(ctx, o.CourierID(), unit)
	if err != nil {
		return Result{}, err
	}
	if !occupied {
		return Result{}, errs.NewConflictError("courier", o.CourierID(), "already busy")
	}

	oid := o.ID()
	superseded, err := uow.OfferRepository().ResolvePendingForOrder(ctx, o.OrderID(), &oid, offer.ReasonSuperseded, now)
	if err != nil {
		return Result{}, err
	}
	result.Superseded = len(superseded)

	events, err := acceptanceEvents(o, superseded, now)
	if err != nil {
		return Result{}, err
	}
	if err = uow.AuditLog().Append(ctx, events...); err != nil {
		return Result{}, err
	}

	claimedOrder, err := uow.OrderRepository().Get(ctx, o.OrderID())
	if err != nil {
		return Result{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return Result{}, err
	}

	m.metrics.OfferResolved(offer.Accepted.String(), string(offer.ReasonNone))
	for range superseded {
		m.metrics.OfferResolved(offer.Rejected.String(), string(offer.ReasonSuperseded))
	}
	m.logger.InfoContext(ctx, "offer accepted",
		"offer_id", o.ID().String(), "order_id", o.OrderID().String(),
		"courier_id", o.CourierID().String(), "superseded", len(superseded))

	m.notify(ctx, claimedOrder.CustomerID(), acceptedMessage(claimedOrder, o))
	for _, s := range superseded {
		m.notify(ctx, s.CourierID(), withdrawnMessage(s))
	}

	result.Outcome = OutcomeAccepted
	return result, nil
}

func (m *Manager) loseRace(ctx context.Context, uow UoW, o *offer.Offer, now time.Time, result Result) (Result, error) {
	if err := o.Reject(now, offer.ReasonLostRace); err != nil {
		return Result{}, err
	}
	resolved, err := uow.OfferRepository().Resolve(ctx, o)
	if err != nil {
		return Result{}, err
	}
	if !resolved {
		return Result{}, offerNotActive(o, "resolved concurrently")
	}

	event, err := audit.NewEvent(audit.KindOfferLostRace, o.OrderID(), o.Attempt(), "order already claimed", now)
	if err != nil {
		return Result{}, err
	}
	if err = uow.AuditLog().Append(ctx, event.WithOffer(o.ID(), o.CourierID())); err != nil {
		return Result{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return Result{}, err
	}

	m.metrics.OfferResolved(offer.Rejected.String(), string(offer.ReasonLostRace))
	result.Outcome = OutcomeLostRace
	return result, errs.NewConflictError("order", o.OrderID(), "already claimed by another courier")
}

func (m *Manager) reject(ctx context.Context, uow UoW, o *offer.Offer, now time.Time) (Result, error) {
	if err := o.Reject(now, offer.ReasonExplicitReject); err != nil {
		return Result{}, err
	}

	resolved, err := uow.OfferRepository().Resolve(ctx, o)
	if err != nil {
		return Result{}, err
	}
	if !resolved {
		return Result{}, offerNotActive(o, "resolved concurrently")
	}

	pol, err := m.policies.Current(ctx)
	if err != nil {
		return Result{}, err
	}
	if err = m.penalize(ctx, uow, o.CourierID(), offer.ReasonExplicitReject, pol.RejectionPenaltyPoints); err != nil {
		return Result{}, err
	}

	event, err := audit.NewEvent(audit.KindOfferRejected, o.OrderID(), o.Attempt(), "rejected by courier", now)
	if err != nil {
		return Result{}, err
	}
	if err = uow.AuditLog().Append(ctx, event.WithOffer(o.ID(), o.CourierID())); err != nil {
		return Result{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return Result{}, err
	}

	m.metrics.OfferResolved(offer.Rejected.String(), string(offer.ReasonExplicitReject))
	return Result{
		OfferID:     o.ID(),
		OrderID:     o.OrderID(),
		CourierID:   o.CourierID(),
		Outcome:     OutcomeRejected,
		RespondedAt: now,
	}, nil
}

func acceptanceEvents(accepted *offer.Offer, superseded []*offer.Offer, now time.Time) ([]audit.Event, error) {
	event, err := audit.NewEvent(audit.KindOfferAccepted, accepted.OrderID(), accepted.Attempt(), "order claimed", now)
	if err != nil {
		return nil, err
	}
	events := []audit.Event{event.WithOffer(accepted.ID(), accepted.CourierID())}

	for _, s := range superseded {
		e, err := audit.NewEvent(audit.KindOffersSuperseded, s.OrderID(), s.Attempt(), "closed after sibling acceptance", now)
		if err != nil {
			return nil, err
		}
		events = append(events, e.WithOffer(s.ID(), s.CourierID()))
	}
	return events, nil
}

func offerNotActive(o *offer.Offer, reason string) error {
	return fmt.Errorf("%w: %w", errs.NewConflictError("offer", o.ID(), reason), offer.ErrOfferNotActive)
}

// notify delivers best effort: failures are logged and never returned.
func (m *Manager) notify(ctx context.Context, userID kernel.UUID, msg ports.Message) {
	if err := m.notifier.Send(ctx, userID, msg); err != nil {
		m.logger.WarnContext(ctx, "notification not delivered", "user_id", userID.String(), "error", err)
	}
}
