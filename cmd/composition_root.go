package cmd

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"crabor/internal/adapters/in/auth"
	httpin "crabor/internal/adapters/in/http"
	"crabor/internal/adapters/in/ws"
	"crabor/internal/adapters/out/postgres"
	"crabor/internal/adapters/out/postgres/presencerepo"
	"crabor/internal/core/application/usecases/commands"
	"crabor/internal/core/application/usecases/queries"
	"crabor/internal/core/domain/services"
	"crabor/internal/jobs"
	"crabor/internal/realtime"
)

type CompositionRoot struct {
	config Config
	gormDB *gorm.DB
	logger *slog.Logger

	uowFactory postgres.GormUnitOfWorkFactory
	estimator  services.DeliveryEstimator
	authorizer services.TransitionAuthorizer
	verifier   auth.JWTVerifier
	hub        *realtime.Hub
	dispatcher *realtime.Dispatcher
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (CompositionRoot, error) {
	estimator, err := services.NewDeliveryEstimator(services.DefaultEstimatorConfig())
	if err != nil {
		return CompositionRoot{}, err
	}

	verifier, err := auth.NewJWTVerifier(config.JWTSecret)
	if err != nil {
		return CompositionRoot{}, err
	}

	presence := presencerepo.NewGormShipperPresence(gormDB)
	hub := realtime.NewHub(presence, logger)

	return CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		logger:     logger,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		estimator:  estimator,
		authorizer: services.NewTransitionAuthorizer(),
		verifier:   verifier,
		hub:        hub,
		dispatcher: realtime.NewDispatcher(hub, logger),
	}, nil
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.estimator, c.dispatcher)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(c.orderUoWFactory(), c.authorizer, c.dispatcher)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoWFactory(), c.authorizer, c.dispatcher)
}

func (c *CompositionRoot) CreateClaimOrderCommandHandler() commands.ClaimOrderCommandHandler {
	return commands.NewClaimOrderCommandHandler(c.orderUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateReportLocationCommandHandler() commands.ReportLocationCommandHandler {
	return commands.NewReportLocationCommandHandler(c.orderUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAvailableOrdersQueryHandler() queries.GetAvailableOrdersQueryHandler {
	return queries.NewGetAvailableOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateTransitionOrderCommandHandler(),
		c.CreateCancelOrderCommandHandler(),
		c.CreateClaimOrderCommandHandler(),
		c.CreateReportLocationCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateGetAvailableOrdersQueryHandler(),
	)
}

func (c *CompositionRoot) CreateAuthMiddleware() echo.MiddlewareFunc {
	return httpin.AuthMiddleware(c.verifier)
}

func (c *CompositionRoot) CreateSocketGateway() *ws.Gateway {
	return ws.NewGateway(
		c.hub,
		c.verifier,
		c.CreateReportLocationCommandHandler(),
		c.config.AllowedOrigins,
		c.logger,
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.hub, c.logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
