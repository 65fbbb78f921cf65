package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/metrics"
	"dispatch/internal/adapters/out/notify"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/operatorrepo"
	"dispatch/internal/adapters/out/settings"
	"dispatch/internal/core/application/lifecycle"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters to use cases. Stateful collaborators are built
// once; handlers are created on demand.
type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	operators  *operatorrepo.GormOperatorDirectory
	policies   ports.PolicyProvider
	notifier   ports.NotificationGateway
	metrics    ports.DispatchMetrics
	registry   *prometheus.Registry
	clock      ports.Clock
	logger     *slog.Logger

	offers     *lifecycle.Manager
	escalation *commands.Escalation
}

func NewCompositionRoot(ctx context.Context, cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	policies, err := settings.NewPolicyProvider(cfg.PolicyFile, logger)
	if err != nil {
		return nil, err
	}

	operators := operatorrepo.NewGormOperatorDirectory(gormDB)
	notifier, err := newNotifier(ctx, cfg, operators, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		operators:  operators,
		policies:   policies,
		notifier:   notifier,
		metrics:    metrics.NewPrometheus(registry),
		registry:   registry,
		clock:      ports.ClockFunc(time.Now),
		logger:     logger,
	}

	c.offers = lifecycle.NewManager(c.lifecycleUoWFactory(), c.notifier, c.policies, c.clock, c.metrics, logger)
	c.escalation = commands.NewEscalation(c.notifier, c.operators, logger)
	return c, nil
}

// newNotifier routes operators to SES and everyone else to FCM. A channel
// without credentials logs its messages instead.
func newNotifier(ctx context.Context, cfg Config, operators ports.OperatorDirectory, logger *slog.Logger) (ports.NotificationGateway, error) {
	fallback := notify.NewLogGateway(logger)

	var push ports.NotificationGateway = fallback
	if cfg.FirebaseCredentialsFile != "" {
		client, err := notify.NewFCMClient(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		push = notify.NewFCMGateway(client, logger)
	} else {
		logger.Warn("FIREBASE_CREDENTIALS_FILE not set, push notifications are logged only")
	}

	var email notify.OperatorSender = fallback
	if cfg.SESFromEmail != "" {
		client, err := notify.NewSESClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		email = notify.NewSESSender(client, cfg.SESFromEmail, logger)
	} else {
		logger.Warn("SES_FROM_EMAIL not set, operator e-mails are logged only")
	}

	return notify.NewRouter(push, email, operators, logger), nil
}

// SeedOperators registers the configured operator accounts.
func (c *CompositionRoot) SeedOperators(ctx context.Context) error {
	accounts, err := c.cfg.OperatorAccounts()
	if err != nil {
		return err
	}
	for _, op := range accounts {
		if err = c.operators.Register(ctx, op); err != nil {
			return fmt.Errorf("register operator %s: %w", op.Email, err)
		}
	}
	return nil
}

func (c *CompositionRoot) MetricsGatherer() prometheus.Gatherer {
	return c.registry
}

func (c *CompositionRoot) CreateRunDispatchSweepCommandHandler() *commands.RunDispatchSweepCommandHandler {
	return commands.NewRunDispatchSweepCommandHandler(
		c.dispatchUoWFactory(), c.offers, c.policies, c.escalation, c.clock, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateRespondToOfferCommandHandler() commands.RespondToOfferCommandHandler {
	return commands.NewRespondToOfferCommandHandler(c.offers)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() *commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.dispatchUoWFactory(), c.notifier, c.clock, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateConfirmBatchCommandHandler() *commands.ConfirmBatchCommandHandler {
	return commands.NewConfirmBatchCommandHandler(c.dispatchUoWFactory(), c.policies, c.notifier, c.clock, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	return commands.NewCreateCourierCommandHandler(c.courierUoWFactory())
}

func (c *CompositionRoot) CreateUpdateCourierPresenceCommandHandler() commands.UpdateCourierPresenceCommandHandler {
	return commands.NewUpdateCourierPresenceCommandHandler(c.courierUoWFactory())
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateGetAllCouriersQueryHandler() queries.GetAllCouriersQueryHandler {
	return queries.NewGetAllCouriersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.gormDB, c.clock)
}

func (c *CompositionRoot) CreateGetCourierOffersQueryHandler() queries.GetCourierOffersQueryHandler {
	return queries.NewGetCourierOffersQueryHandler(c.gormDB, c.clock)
}

func (c *CompositionRoot) CreateGetBatchSuggestionsQueryHandler() queries.GetBatchSuggestionsQueryHandler {
	return queries.NewGetBatchSuggestionsQueryHandler(c.gormDB, c.policies, c.clock)
}

// CreateHTTPHandlers collects the handlers the API server drives.
func (c *CompositionRoot) CreateHTTPHandlers() httpadapter.Handlers {
	createCourier := c.CreateCreateCourierCommandHandler()
	updatePresence := c.CreateUpdateCourierPresenceCommandHandler()
	createOrder := c.CreateCreateOrderCommandHandler()
	respond := c.CreateRespondToOfferCommandHandler()

	return httpadapter.Handlers{
		CreateCourier:       &createCourier,
		UpdatePresence:      &updatePresence,
		CreateOrder:         &createOrder,
		CancelOrder:         c.CreateCancelOrderCommandHandler(),
		RespondToOffer:      &respond,
		ConfirmBatch:        c.CreateConfirmBatchCommandHandler(),
		RunSweep:            c.CreateRunDispatchSweepCommandHandler(),
		GetAllCouriers:      c.CreateGetAllCouriersQueryHandler(),
		GetActiveOrders:     c.CreateGetActiveOrdersQueryHandler(),
		GetCourierOffers:    c.CreateGetCourierOffersQueryHandler(),
		GetBatchSuggestions: c.CreateGetBatchSuggestionsQueryHandler(),
	}
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	sweep := jobs.NewDispatchSweepJob(c.CreateRunDispatchSweepCommandHandler(), c.cfg.SweepSchedule, c.cfg.SweepTimeout, c.logger)
	return jobs.NewJobManager(sweep)
}

func (c *CompositionRoot) dispatchUoWFactory() commands.DispatchUoWFactory {
	return FuncDispatchUoWFactory(func() commands.DispatchUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) courierUoWFactory() commands.CourierUoWFactory {
	return FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) lifecycleUoWFactory() lifecycle.UoWFactory {
	return FuncLifecycleUoWFactory(func() lifecycle.UoW {
		return c.uowFactory.Create()
	})
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncDispatchUoWFactory func() commands.DispatchUoW

func (f FuncDispatchUoWFactory) Create() commands.DispatchUoW {
	return f()
}

type FuncLifecycleUoWFactory func() lifecycle.UoW

func (f FuncLifecycleUoWFactory) Create() lifecycle.UoW {
	return f()
}
