package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/policy"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// OfferLifecycle is the part of the offer lifecycle manager the sweep drives.
type OfferLifecycle interface {
	ExpireStaleOffers(ctx context.Context, now time.Time) (int, error)
	CreateOffer(
		ctx context.Context,
		o *order.Order,
		candidate services.Candidate,
		attempt int,
		timeout time.Duration,
		now time.Time,
	) (*offer.Offer, error)
}

// SweepSummary aggregates one sweep. Per-order failures are counted, not returned.
type SweepSummary struct {
	Mode          policy.Mode
	Expired       int
	Distributed   int
	Failed        int
	Waiting       int
	Errors        int
	TotalOrders   int
	OffersCreated int
}

type orderOutcome int

const (
	outcomeWaiting orderOutcome = iota
	outcomeDistributed
	outcomeExhausted
	// outcomeSkipped covers lost races: another writer already moved the order on.
	outcomeSkipped
)

// sweepState is read once per sweep and updated as offers are created, so later
// orders in the same sweep do not pick couriers that just received an offer.
type sweepState struct {
	available []*courier.Courier
	busy      services.CourierSet
}

// RunDispatchSweepCommandHandler runs the dispatch reconciliation: expire stale
// offers, read the policy, and distribute every order awaiting assignment.
// It keeps no state between runs and is safe to run concurrently with itself
// and with courier responses; every write it causes is conditional.
type RunDispatchSweepCommandHandler struct {
	uowFactory DispatchUoWFactory
	offers     OfferLifecycle
	policies   ports.PolicyProvider
	escalation *Escalation
	clock      ports.Clock
	metrics    ports.DispatchMetrics
	selector   services.CandidateSelector
	priority   services.PriorityModel
	logger     *slog.Logger
}

func NewRunDispatchSweepCommandHandler(
	uowFactory DispatchUoWFactory,
	offers OfferLifecycle,
	policies ports.PolicyProvider,
	escalation *Escalation,
	clock ports.Clock,
	metrics ports.DispatchMetrics,
	logger *slog.Logger,
) *RunDispatchSweepCommandHandler {
	return &RunDispatchSweepCommandHandler{
		uowFactory: uowFactory,
		offers:     offers,
		policies:   policies,
		escalation: escalation,
		clock:      clock,
		metrics:    metrics,
		selector:   services.NewCandidateSelector(),
		priority:   services.NewPriorityModel(),
		logger:     logger.With("component", "dispatch_sweep"),
	}
}

// Handle runs one sweep. It returns an error only when the sweep cannot start
// distributing at all (policy or order listing unavailable).
func (h *RunDispatchSweepCommandHandler) Handle(ctx context.Context, cmd RunDispatchSweepCommand) (SweepSummary, error) {
	if err := cmd.Validate(); err != nil {
		return SweepSummary{}, err
	}

	started := time.Now()
	now := h.clock.Now()
	var summary SweepSummary

	expired, err := h.offers.ExpireStaleOffers(ctx, now)
	summary.Expired = expired
	if err != nil {
		summary.Errors++
		h.logger.ErrorContext(ctx, "expiring stale offers failed", "error", err)
	}

	pol, err := h.policies.Current(ctx)
	if err != nil {
		return summary, fmt.Errorf("read dispatch policy: %w", err)
	}
	summary.Mode = pol.Mode

	if pol.Automatic() {
		if err = h.distribute(ctx, pol, now, &summary); err != nil {
			return summary, err
		}
	}

	h.metrics.SweepCompleted(time.Since(started), summary.Expired, summary.Distributed, summary.Failed, summary.Errors)
	h.logger.InfoContext(ctx, "dispatch sweep finished",
		"trigger", cmd.Trigger(),
		"mode", string(summary.Mode),
		"expired", summary.Expired,
		"total_orders", summary.TotalOrders,
		"distributed", summary.Distributed,
		"failed", summary.Failed,
		"waiting", summary.Waiting,
		"offers_created", summary.OffersCreated,
		"errors", summary.Errors,
	)
	return summary, nil
}

func (h *RunDispatchSweepCommandHandler) distribute(
	ctx context.Context,
	pol policy.Policy,
	now time.Time,
	summary *SweepSummary,
) error {
	uow := h.uowFactory.Create()

	orders, err := uow.OrderRepository().ListAwaitingDistribution(ctx, now)
	if err = h.skipUnreadable(ctx, err, summary); err != nil {
		return fmt.Errorf("list orders awaiting distribution: %w", err)
	}
	summary.TotalOrders = len(orders)
	if len(orders) == 0 {
		return nil
	}

	available, err := uow.CourierRepository().ListAvailable(ctx)
	if err = h.skipUnreadable(ctx, err, summary); err != nil {
		return fmt.Errorf("list available couriers: %w", err)
	}
	busy, err := uow.OfferRepository().CourierIDsWithActiveOffers(ctx, now)
	if err != nil {
		return fmt.Errorf("list couriers with active offers: %w", err)
	}
	state := &sweepState{available: available, busy: services.NewCourierSet(busy...)}

	for _, o := range orders {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		outcome, created, orderErr := h.processOrder(ctx, o, pol, now, state)
		summary.OffersCreated += created
		if orderErr != nil {
			summary.Errors++
			h.logger.ErrorContext(ctx, "order distribution failed", "order_id", o.ID().String(), "error", orderErr)
		}

		switch outcome {
		case outcomeDistributed:
			summary.Distributed++
		case outcomeExhausted:
			summary.Failed++
		case outcomeWaiting:
			if orderErr == nil {
				summary.Waiting++
			}
		case outcomeSkipped:
		}
	}

	return nil
}

// skipUnreadable turns stored rows that failed validation into per-entity
// errors: they are logged and counted, and the sweep goes on with the rest.
func (h *RunDispatchSweepCommandHandler) skipUnreadable(ctx context.Context, err error, summary *SweepSummary) error {
	var skipped *errs.SkippedRecordsError
	if !errors.As(err, &skipped) {
		return err
	}

	summary.Errors += len(skipped.IDs)
	h.logger.ErrorContext(ctx, "unreadable records skipped",
		"entity", skipped.Entity, "ids", skipped.IDs, "error", skipped.Cause)
	return nil
}

// processOrder computes the next attempt for one order and either offers it or
// escalates it. Its errors never affect other orders.
func (h *RunDispatchSweepCommandHandler) processOrder(
	ctx context.Context,
	o *order.Order,
	pol policy.Policy,
	now time.Time,
	state *sweepState,
) (orderOutcome, int, error) {
	offers := h.uowFactory.Create().OfferRepository()

	last, err := offers.LastAttempt(ctx, o.ID())
	if err != nil {
		return outcomeWaiting, 0, err
	}
	attempt := last + 1

	if attempt > pol.MaxOfferAttempts {
		return h.exhaust(ctx, o, last, now)
	}

	refused, err := offers.CourierIDsRefusedOrder(ctx, o.ID())
	if err != nil {
		return outcomeWaiting, 0, err
	}

	candidates := h.selector.Select(o, state.available, state.busy, services.NewCourierSet(refused...), pol.MaxPickupDistanceKm)
	if len(candidates) == 0 {
		if attempt >= pol.MaxOfferAttempts {
			return h.exhaust(ctx, o, last, now)
		}
		return outcomeWaiting, 0, nil
	}

	ranked := h.priority.Rank(candidates)
	if pol.Mode == policy.ModeOneByOne {
		ranked = ranked[:1]
	}

	var (
		created int
		errList []error
	)
	for _, candidate := range ranked {
		courierID := candidate.Courier.ID()

		_, offerErr := h.offers.CreateOffer(ctx, o, candidate, attempt, pol.OfferTimeout, now)
		switch {
		case offerErr == nil:
			created++
			state.busy[courierID] = struct{}{}
			h.metrics.OfferCreated(string(pol.Mode))
		case errors.Is(offerErr, errs.ErrConflict):
			// The courier got an offer elsewhere in the meantime; re-evaluated next sweep.
			state.busy[courierID] = struct{}{}
			h.logger.DebugContext(ctx, "offer not created", "order_id", o.ID().String(),
				"courier_id", courierID.String(), "reason", offerErr.Error())
		default:
			errList = append(errList, offerErr)
		}
	}

	if created > 0 {
		return outcomeDistributed, created, errors.Join(errList...)
	}
	return outcomeWaiting, 0, errors.Join(errList...)
}

// exhaust moves the order to NoCourierAvailable. Only the sweep that wins the
// conditional transition records the event and notifies, so a race between two
// sweeps produces a single fan-out.
func (h *RunDispatchSweepCommandHandler) exhaust(
	ctx context.Context,
	o *order.Order,
	attemptsMade int,
	now time.Time,
) (orderOutcome, int, error) {
	won, err := h.escalation.Exhaust(ctx, h.uowFactory.Create(), o, attemptsMade, now)
	if err != nil {
		return outcomeWaiting, 0, err
	}
	if !won {
		return outcomeSkipped, 0, nil
	}

	h.metrics.OrderExhausted()
	return outcomeExhausted, 0, nil
}
