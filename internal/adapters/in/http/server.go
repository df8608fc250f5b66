// Package http exposes the order lifecycle over a REST surface. Handlers
// translate requests into commands and queries, and translate domain errors
// into status codes; no business rules live here.
package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"crabor/internal/core/application/usecases/commands"
	"crabor/internal/core/application/usecases/queries"
	"crabor/internal/core/domain/model/actor"
	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/core/domain/model/order"
	"crabor/internal/core/ports"
	"crabor/internal/pkg/errs"
)

const actorContextKey = "actor"

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler     commands.CreateOrderCommandHandler
	transitionOrderHandler commands.TransitionOrderCommandHandler
	cancelOrderHandler     commands.CancelOrderCommandHandler
	claimOrderHandler      commands.ClaimOrderCommandHandler
	reportLocationHandler  commands.ReportLocationCommandHandler

	// Query handlers
	getOrderHandler           queries.GetOrderQueryHandler
	getAvailableOrdersHandler queries.GetAvailableOrdersQueryHandler
}

// NewServer creates a new HTTP server with the required command and query
// handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	transitionOrderHandler commands.TransitionOrderCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	claimOrderHandler commands.ClaimOrderCommandHandler,
	reportLocationHandler commands.ReportLocationCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getAvailableOrdersHandler queries.GetAvailableOrdersQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:     createOrderHandler,
		transitionOrderHandler: transitionOrderHandler,
		cancelOrderHandler:     cancelOrderHandler,
		claimOrderHandler:      claimOrderHandler,
		reportLocationHandler:  reportLocationHandler,

		getOrderHandler:           getOrderHandler,
		getAvailableOrdersHandler: getAvailableOrdersHandler,
	}
}

// RegisterRoutes mounts the API under /api/v1. Every route requires a verified
// bearer credential.
func (s *Server) RegisterRoutes(e *echo.Echo, authMW echo.MiddlewareFunc) {
	api := e.Group("/api/v1", authMW)

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/available", s.GetAvailableOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.PUT("/orders/:id/status", s.TransitionOrder)
	api.POST("/orders/:id/cancel", s.CancelOrder)
	api.POST("/orders/:id/claim", s.ClaimOrder)
	api.POST("/orders/:id/tracking", s.ReportLocation)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type geoPointRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type orderItemRequest struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unitPrice"`
	Instructions string `json:"instructions"`
}

type createOrderRequest struct {
	PartnerID     string             `json:"partnerId"`
	Items         []orderItemRequest `json:"items"`
	Discount      int64              `json:"discount"`
	Tax           int64              `json:"tax"`
	ServiceFee    int64              `json:"serviceFee"`
	PaymentMethod string             `json:"paymentMethod"`
	DeliveryType  string             `json:"deliveryType"`
	Pickup        geoPointRequest    `json:"pickup"`
	Dropoff       geoPointRequest    `json:"dropoff"`
	Notes         string             `json:"notes"`
}

type transitionOrderRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

type claimOrderRequest struct {
	ShipperID string `json:"shipperId"`
}

// orderResponse is the mutation-side order view returned by the command
// endpoints. The richer read model with full history lives in the queries
// package.
type orderResponse struct {
	ID            string  `json:"id"`
	Number        string  `json:"number"`
	CustomerID    string  `json:"customerId"`
	PartnerID     *string `json:"partnerId,omitempty"`
	ShipperID     *string `json:"shipperId,omitempty"`
	Status        string  `json:"status"`
	PaymentMethod string  `json:"paymentMethod"`
	PaymentStatus string  `json:"paymentStatus"`
	DeliveryType  string  `json:"deliveryType"`
	Total         int64   `json:"total"`
	DistanceKm    float64 `json:"distanceKm"`
	EtaMinutes    int     `json:"etaMinutes"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID().String(),
		Number:        o.Number(),
		CustomerID:    o.CustomerID().String(),
		Status:        o.Status().String(),
		PaymentMethod: string(o.PaymentMethod()),
		PaymentStatus: string(o.PaymentStatus()),
		DeliveryType:  string(o.DeliveryType()),
		Total:         o.Pricing().Total(),
		DistanceKm:    o.DistanceKm(),
		EtaMinutes:    o.EtaMinutes(),
	}
	if partnerID := o.PartnerID(); partnerID != nil {
		v := partnerID.String()
		resp.PartnerID = &v
	}
	if shipperID := o.ShipperID(); shipperID != nil {
		v := shipperID.String()
		resp.ShipperID = &v
	}
	return resp
}

// CreateOrder handles POST /api/v1/orders. The customer is taken from the
// verified credential, never from the body.
func (s *Server) CreateOrder(ctx echo.Context) error {
	requester, err := requestActor(ctx)
	if err != nil {
		return errorJSON(ctx, err)
	}

	var req createOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	draft := commands.CreateOrderDraft{
		CustomerID:    requester.UserID(),
		Discount:      req.Discount,
		Tax:           req.Tax,
		ServiceFee:    req.ServiceFee,
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		DeliveryType:  order.DeliveryType(req.DeliveryType),
		Notes:         req.Notes,
	}

	if req.PartnerID != "" {
		partnerID, parseErr := kernel.UUIDFromString(req.PartnerID)
		if parseErr != nil {
			return badRequest(ctx, "invalid partnerId")
		}
		draft.PartnerID = &partnerID
	}

	if draft.Pickup, err = kernel.NewGeoPoint(req.Pickup.Lat, req.Pickup.Lng); err != nil {
		return errorJSON(ctx, err)
	}
	if draft.Dropoff, err = kernel.NewGeoPoint(req.Dropoff.Lat, req.Dropoff.Lng); err != nil {
		return errorJSON(ctx, err)
	}

	for _, item := range req.Items {
		productID, parseErr := kernel.UUIDFromString(item.ProductID)
		if parseErr != nil {
			return badRequest(ctx, "invalid productId: "+item.ProductID)
		}
		draft.Items = append(draft.Items, commands.CreateOrderItem{
			ProductID:    productID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Instructions: item.Instructions,
		})
	}

	cmd, err := commands.NewCreateOrderCommand(draft)
	if err != nil {
		return errorJSON(ctx, err)
	}

	created, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toOrderResponse(created))
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := pathOrderID(ctx)
	if err != nil {
		return badRequest(ctx, "invalid order id")
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return errorJSON(ctx, err)
	}

	response, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetAvailableOrders handles GET /api/v1/orders/available, the claimable pool
// shippers poll for work.
func (s *Server) GetAvailableOrders(ctx echo.Context) error {
	query := queries.NewGetAvailableOrdersQuery()

	orders, err := s.getAvailableOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return errorJSON(ctx, err)
	}

	if orders == nil {
		orders = []queries.GetAvailableOrdersQueryResponse{}
	}
	return ctx.JSON(http.StatusOK, orders)
}

// TransitionOrder handles PUT /api/v1/orders/:id/status.
func (s *Server) TransitionOrder(ctx echo.Context) error {
	requester, err := requestActor(ctx)
	if err != nil {
		return errorJSON(ctx, err)
	}

	orderID, err := pathOrderID(ctx)
	if err != nil {
		return badRequest(ctx, "invalid order id")
	}

	var req transitionOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	target, err := order.StatusFromString(req.Status)
	if err != nil {
		return errorJSON(ctx, err)
	}

	cmd, err := commands.NewTransitionOrderCommand(orderID, requester, target, req.Note)
	if err != nil {
		return errorJSON(ctx, err)
	}

	updated, err := s.transitionOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderResponse(updated))
}

// CancelOrder handles POST /api/v1/orders/:id/cancel.
func (s *Server) CancelOrder(ctx echo.Context) error {
	requester, err := requestActor(ctx)
	if err != nil {
		return errorJSON(ctx, err)
	}

	orderID, err := pathOrderID(ctx)
	if err != nil {
		return badRequest(ctx, "invalid order id")
	}

	var req cancelOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, requester, req.Reason)
	if err != nil {
		return errorJSON(ctx, err)
	}

	cancelled, err := s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderResponse(cancelled))
}

// ClaimOrder handles POST /api/v1/orders/:id/claim. Shippers claim for
// themselves; admins may name any shipper in the body.
func (s *Server) ClaimOrder(ctx echo.Context) error {
	requester, err := requestActor(ctx)
	if err != nil {
		return errorJSON(ctx, err)
	}

	orderID, err := pathOrderID(ctx)
	if err != nil {
		return badRequest(ctx, "invalid order id")
	}

	var req claimOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	shipperID := requester.UserID()
	if req.ShipperID != "" {
		if shipperID, err = kernel.UUIDFromString(req.ShipperID); err != nil {
			return badRequest(ctx, "invalid shipperId")
		}
	}

	cmd, err := commands.NewClaimOrderCommand(orderID, requester, shipperID)
	if err != nil {
		return errorJSON(ctx, err)
	}

	claimed, err := s.claimOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrderResponse(claimed))
}

// ReportLocation handles POST /api/v1/orders/:id/tracking, the HTTP fallback
// for shippers whose socket connection dropped.
func (s *Server) ReportLocation(ctx echo.Context) error {
	requester, err := requestActor(ctx)
	if err != nil {
		return errorJSON(ctx, err)
	}

	orderID, err := pathOrderID(ctx)
	if err != nil {
		return badRequest(ctx, "invalid order id")
	}

	var req geoPointRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	position, err := kernel.NewGeoPoint(req.Lat, req.Lng)
	if err != nil {
		return errorJSON(ctx, err)
	}

	cmd, err := commands.NewReportLocationCommand(orderID, requester, position)
	if err != nil {
		return errorJSON(ctx, err)
	}

	if err = s.reportLocationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return errorJSON(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AuthMiddleware verifies the bearer credential and stores the resulting
// actor on the request context.
func AuthMiddleware(verifier ports.CredentialVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			credential, found := strings.CutPrefix(header, "Bearer ")
			if !found || credential == "" {
				return ctx.JSON(http.StatusUnauthorized, errorResponse{
					Code:    http.StatusUnauthorized,
					Message: "missing bearer credential",
				})
			}

			verified, err := verifier.Verify(credential)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, errorResponse{
					Code:    http.StatusUnauthorized,
					Message: "invalid or expired credential",
				})
			}

			ctx.Set(actorContextKey, verified)
			return next(ctx)
		}
	}
}

func requestActor(ctx echo.Context) (actor.Actor, error) {
	verified, ok := ctx.Get(actorContextKey).(actor.Actor)
	if !ok {
		return actor.Actor{}, errs.NewUnauthorizedError("no verified actor on request", nil)
	}
	return verified, nil
}

func pathOrderID(ctx echo.Context) (kernel.UUID, error) {
	return kernel.UUIDFromString(ctx.Param("id"))
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// errorJSON maps domain errors onto the REST surface. Authorization denials
// map to 403 because the credential itself was valid; impossible status edges
// map to 422, while lost races and duplicate claims map to 409.
func errorJSON(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	}

	return ctx.JSON(status, errorResponse{Code: status, Message: err.Error()})
}
