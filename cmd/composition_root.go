package cmd

import (
	"context"
	"errors"

	"sameday/internal/adapters/in/http"
	inqueue "sameday/internal/adapters/in/queue"
	"sameday/internal/adapters/out/eventlog"
	"sameday/internal/adapters/out/postgres"
	"sameday/internal/adapters/out/queue"
	"sameday/internal/adapters/out/rabbitmq"
	rediscache "sameday/internal/adapters/out/redis"
	"sameday/internal/core/application/usecases/commands"
	"sameday/internal/core/application/usecases/queries"
	"sameday/internal/core/domain/model/kernel"
	"sameday/internal/core/domain/services"
	"sameday/internal/core/ports"
	"sameday/internal/jobs"
	"sameday/internal/pkg/keylock"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters to use cases. Optional infrastructure falls
// back to in-process stand-ins: no Redis means no rate cache and inline
// dispatch, no RabbitMQ means events go to the log.
type CompositionRoot struct {
	cfg        Config
	logger     *zap.Logger
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	rateCache  ports.RateCache
	publisher  ports.EventPublisher
	scheduler  ports.AssignmentScheduler
	rt         commands.Runtime
	closers    []func() error
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *zap.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:        cfg,
		logger:     logger,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		c.closers = append(c.closers, client.Close)
		c.rateCache = rediscache.NewRateCache(client, cfg.Redis.Prefix, cfg.Redis.RateTTL)
	}

	if cfg.RabbitMQ.Enabled {
		conn, err := rabbitmq.Dial(rabbitmq.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RetryCount: cfg.RabbitMQ.RetryCount,
			RetryDelay: cfg.RabbitMQ.RetryDelay,
		}, logger)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.closers = append(c.closers, conn.Close)
		c.publisher = rabbitmq.NewEventPublisher(conn, conn.Exchange())
	} else {
		c.publisher = eventlog.NewPublisher(logger)
	}

	c.rt = commands.NewRuntime(clockz.RealClock, keylock.New(), c.publisher, logger)

	if cfg.Queue.Enabled {
		client := asynq.NewClient(queue.RedisOpt(c.queueConfig()))
		c.closers = append(c.closers, client.Close)
		c.scheduler = queue.NewScheduler(client, c.queueConfig())
	} else {
		assign := c.CreateAssignDelivererCommandHandler()
		c.scheduler = queue.NewInlineScheduler(func(ctx context.Context, id kernel.UUID) error {
			cmd, err := commands.NewAssignDelivererCommand(id, nil)
			if err != nil {
				return err
			}
			return assign.Handle(ctx, cmd)
		}, logger)
	}

	return c, nil
}

func (c *CompositionRoot) queueConfig() queue.Config {
	return queue.Config{
		RedisAddr:     c.cfg.Redis.Addr,
		RedisPassword: c.cfg.Redis.Password,
		RedisDB:       c.cfg.Redis.DB,
		Queue:         c.cfg.Queue.Name,
		Concurrency:   c.cfg.Queue.Concurrency,
		MaxRetry:      c.cfg.Queue.MaxRetry,
	}
}

// Close releases connections in reverse order of opening.
func (c *CompositionRoot) Close() error {
	var errList []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errList = append(errList, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errList...)
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateShipmentCommandHandler() commands.CreateShipmentCommandHandler {
	return commands.NewCreateShipmentCommandHandler(c.uow(), services.NewDistanceCalculator(), c.rateCache, c.rt)
}

func (c *CompositionRoot) CreateConfirmPaymentCommandHandler() commands.ConfirmPaymentCommandHandler {
	return commands.NewConfirmPaymentCommandHandler(c.uow(), c.scheduler, c.rt)
}

func (c *CompositionRoot) CreateAssignDelivererCommandHandler() commands.AssignDelivererCommandHandler {
	return commands.NewAssignDelivererCommandHandler(c.uow(), c.rt)
}

func (c *CompositionRoot) CreateReassignShipmentCommandHandler() commands.ReassignShipmentCommandHandler {
	return commands.NewReassignShipmentCommandHandler(c.uow(), c.rt)
}

func (c *CompositionRoot) CreateStartTransitCommandHandler() commands.StartTransitCommandHandler {
	return commands.NewStartTransitCommandHandler(c.uow(), c.rt)
}

func (c *CompositionRoot) CreateCompleteShipmentCommandHandler() commands.CompleteShipmentCommandHandler {
	return commands.NewCompleteShipmentCommandHandler(c.uow(), c.rt)
}

func (c *CompositionRoot) CreateCancelShipmentCommandHandler() commands.CancelShipmentCommandHandler {
	return commands.NewCancelShipmentCommandHandler(c.uow(), c.rt)
}

func (c *CompositionRoot) CreateReportIncidentCommandHandler() commands.ReportIncidentCommandHandler {
	return commands.NewReportIncidentCommandHandler(c.uow(), c.rt)
}

func (c *CompositionRoot) CreateResolveIncidentCommandHandler() commands.ResolveIncidentCommandHandler {
	return commands.NewResolveIncidentCommandHandler(c.uow(), c.rt)
}

func (c *CompositionRoot) CreateRegisterDelivererCommandHandler() commands.RegisterDelivererCommandHandler {
	var f commands.DelivererUoWFactory = FuncDelivererUoWFactory(func() commands.DelivererUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRegisterDelivererCommandHandler(f, c.rt)
}

func (c *CompositionRoot) CreateChangeDelivererStatusCommandHandler() commands.ChangeDelivererStatusCommandHandler {
	var f commands.DelivererUoWFactory = FuncDelivererUoWFactory(func() commands.DelivererUoW {
		return c.uowFactory.Create()
	})
	return commands.NewChangeDelivererStatusCommandHandler(f, c.rt)
}

func (c *CompositionRoot) CreateActivateRateCommandHandler() commands.ActivateRateCommandHandler {
	var f commands.RateUoWFactory = FuncRateUoWFactory(func() commands.RateUoW {
		return c.uowFactory.Create()
	})
	return commands.NewActivateRateCommandHandler(f, c.rateCache, c.rt)
}

func (c *CompositionRoot) CreateAssignAwaitingShipmentsCommandHandler() commands.AssignAwaitingShipmentsCommandHandler {
	return commands.NewAssignAwaitingShipmentsCommandHandler(c.uow(), c.rt)
}

func (c *CompositionRoot) CreateGetShipmentQueryHandler() queries.GetShipmentQueryHandler {
	return queries.NewGetShipmentQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListCustomerShipmentsQueryHandler() queries.ListCustomerShipmentsQueryHandler {
	return queries.NewListCustomerShipmentsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListPendingShipmentsByZoneQueryHandler() queries.ListPendingShipmentsByZoneQueryHandler {
	return queries.NewListPendingShipmentsByZoneQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListDeliverersByMinimumRatingQueryHandler() queries.ListDeliverersByMinimumRatingQueryHandler {
	return queries.NewListDeliverersByMinimumRatingQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetDelivererWorkloadQueryHandler() queries.GetDelivererWorkloadQueryHandler {
	return queries.NewGetDelivererWorkloadQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveRateQueryHandler() queries.GetActiveRateQueryHandler {
	return queries.NewGetActiveRateQueryHandler(c.gormDB, c.rateCache)
}

// CreateHTTPServer returns the API handler set.
func (c *CompositionRoot) CreateHTTPServer() *http.Server {
	return http.NewServer(http.Handlers{
		CreateShipment:          c.CreateCreateShipmentCommandHandler(),
		ConfirmPayment:          c.CreateConfirmPaymentCommandHandler(),
		AssignDeliverer:         c.CreateAssignDelivererCommandHandler(),
		ReassignShipment:        c.CreateReassignShipmentCommandHandler(),
		StartTransit:            c.CreateStartTransitCommandHandler(),
		CompleteShipment:        c.CreateCompleteShipmentCommandHandler(),
		CancelShipment:          c.CreateCancelShipmentCommandHandler(),
		ReportIncident:          c.CreateReportIncidentCommandHandler(),
		ResolveIncident:         c.CreateResolveIncidentCommandHandler(),
		RegisterDeliverer:       c.CreateRegisterDelivererCommandHandler(),
		ChangeDelivererStatus:   c.CreateChangeDelivererStatusCommandHandler(),
		ActivateRate:            c.CreateActivateRateCommandHandler(),
		AssignAwaitingShipments: c.CreateAssignAwaitingShipmentsCommandHandler(),

		GetShipment:                c.CreateGetShipmentQueryHandler(),
		ListCustomerShipments:      c.CreateListCustomerShipmentsQueryHandler(),
		ListPendingShipmentsByZone: c.CreateListPendingShipmentsByZoneQueryHandler(),
		ListDeliverersByMinRating:  c.CreateListDeliverersByMinimumRatingQueryHandler(),
		GetDelivererWorkload:       c.CreateGetDelivererWorkloadQueryHandler(),
		GetActiveRate:              c.CreateGetActiveRateQueryHandler(),
	}, c.logger)
}

// CreateJobManager returns nil when background jobs are disabled.
func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	if !c.cfg.Jobs.Enabled {
		return nil, nil
	}
	return jobs.NewJobManager(c.CreateAssignAwaitingShipmentsCommandHandler(), jobs.Config{
		Schedule: c.cfg.Jobs.AssignAwaitingEvery,
		Limit:    c.cfg.Jobs.AssignAwaitingLimit,
		Timeout:  c.cfg.Jobs.AssignAwaitingTimeout,
	}, c.logger)
}

// CreateQueueServer returns nil when the task queue is disabled.
func (c *CompositionRoot) CreateQueueServer() *inqueue.Server {
	if !c.cfg.Queue.Enabled {
		return nil
	}
	consumer := inqueue.NewConsumer(c.CreateAssignDelivererCommandHandler(), c.logger.With(zap.String("component", "queue")))
	return inqueue.NewServer(c.queueConfig(), consumer, c.logger.Sugar())
}

type FuncDelivererUoWFactory func() commands.DelivererUoW

func (f FuncDelivererUoWFactory) Create() commands.DelivererUoW {
	return f()
}

type FuncRateUoWFactory func() commands.RateUoW

func (f FuncRateUoWFactory) Create() commands.RateUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
