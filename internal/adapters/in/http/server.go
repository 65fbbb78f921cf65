package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"dispatch/internal/core/application/lifecycle"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/batch"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Use case ports the server drives. The application handlers satisfy them.
type (
	CourierCreator interface {
		Handle(ctx context.Context, cmd commands.CreateCourierCommand) error
	}
	PresenceUpdater interface {
		Handle(ctx context.Context, cmd commands.UpdateCourierPresenceCommand) error
	}
	OrderCreator interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
	}
	OrderCanceller interface {
		Handle(ctx context.Context, cmd commands.CancelOrderCommand) error
	}
	OfferResponder interface {
		Handle(ctx context.Context, cmd commands.RespondToOfferCommand) (lifecycle.Result, error)
	}
	BatchConfirmer interface {
		Handle(ctx context.Context, cmd commands.ConfirmBatchCommand) (*batch.Batch, error)
	}
	Sweeper interface {
		Handle(ctx context.Context, cmd commands.RunDispatchSweepCommand) (commands.SweepSummary, error)
	}
	CouriersReader interface {
		Handle(ctx context.Context, query queries.GetAllCouriersQuery) ([]queries.GetAllCouriersQueryResponse, error)
	}
	ActiveOrdersReader interface {
		Handle(ctx context.Context, query queries.GetActiveOrdersQuery) ([]queries.GetActiveOrdersQueryResponse, error)
	}
	CourierOffersReader interface {
		Handle(ctx context.Context, query queries.GetCourierOffersQuery) ([]queries.GetCourierOffersQueryResponse, error)
	}
	BatchSuggestionsReader interface {
		Handle(ctx context.Context, query queries.GetBatchSuggestionsQuery) ([]queries.GetBatchSuggestionsQueryResponse, error)
	}
)

// Handlers groups the command and query handlers behind the API.
type Handlers struct {
	// Command handlers
	CreateCourier  CourierCreator
	UpdatePresence PresenceUpdater
	CreateOrder    OrderCreator
	CancelOrder    OrderCanceller
	RespondToOffer OfferResponder
	ConfirmBatch   BatchConfirmer
	RunSweep       Sweeper

	// Query handlers
	GetAllCouriers      CouriersReader
	GetActiveOrders     ActiveOrdersReader
	GetCourierOffers    CourierOffersReader
	GetBatchSuggestions BatchSuggestionsReader
}

// Server handles HTTP requests and coordinates between handlers and the
// application use cases.
type Server struct {
	h        Handlers
	validate *validator.Validate
	logger   *slog.Logger
}

func NewServer(h Handlers, logger *slog.Logger) *Server {
	return &Server{
		h:        h,
		validate: validator.New(),
		logger:   logger.With("component", "http"),
	}
}

// GetCouriers handles GET /api/v1/couriers.
func (s *Server) GetCouriers(c echo.Context) error {
	couriers, err := s.h.GetAllCouriers.Handle(c.Request().Context(), queries.NewGetAllCouriersQuery())
	if err != nil {
		return err
	}

	response := make([]Courier, len(couriers))
	for i, courier := range couriers {
		response[i] = courierFrom(courier)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateCourier handles POST /api/v1/couriers. New couriers start offline.
func (s *Server) CreateCourier(c echo.Context) error {
	var req NewCourier
	if err := s.bind(c, &req); err != nil {
		return err
	}

	courierID := kernel.NewUUID()
	cmd, err := commands.NewCreateCourierCommand(courierID, req.Name)
	if err != nil {
		return err
	}
	if err = s.h.CreateCourier.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, Created{ID: courierID.Bytes()})
}

// UpdateCourierPresence handles PUT /api/v1/couriers/{courierId}/presence.
func (s *Server) UpdateCourierPresence(c echo.Context) error {
	courierID, err := pathUUID(c, "courierId")
	if err != nil {
		return err
	}

	var req Presence
	if err = s.bind(c, &req); err != nil {
		return err
	}
	location, err := req.Location.toKernel()
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateCourierPresenceCommand(courierID, *req.Online, location)
	if err != nil {
		return err
	}
	if err = s.h.UpdatePresence.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// GetCourierOffers handles GET /api/v1/couriers/{courierId}/offers.
func (s *Server) GetCourierOffers(c echo.Context) error {
	courierID, err := pathUUID(c, "courierId")
	if err != nil {
		return err
	}

	query, err := queries.NewGetCourierOffersQuery(courierID)
	if err != nil {
		return err
	}
	offers, err := s.h.GetCourierOffers.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]CourierOffer, len(offers))
	for i, of := range offers {
		response[i] = courierOfferFrom(of)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateOrder handles POST /api/v1/orders. The order is stored Pending and a
// sweep runs right away so couriers see it without waiting for the next tick.
func (s *Server) CreateOrder(c echo.Context) error {
	var req NewOrder
	if err := s.bind(c, &req); err != nil {
		return err
	}

	customerID, err := kernel.UUIDFromBytes(req.CustomerID[:])
	if err != nil {
		return err
	}
	pickup, err := req.Pickup.toDomain()
	if err != nil {
		return err
	}
	dropoff, err := req.Dropoff.toDomain()
	if err != nil {
		return err
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, customerID, pickup, dropoff, *req.Price)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err = s.h.CreateOrder.Handle(ctx, cmd); err != nil {
		return err
	}

	if _, sweepErr := s.h.RunSweep.Handle(ctx, commands.NewRunDispatchSweepCommand("order_created")); sweepErr != nil {
		s.logger.WarnContext(ctx, "post-create sweep failed", "order_id", orderID.String(), "error", sweepErr)
	}

	return c.JSON(http.StatusCreated, Created{ID: orderID.Bytes()})
}

// GetActiveOrders handles GET /api/v1/orders/active.
func (s *Server) GetActiveOrders(c echo.Context) error {
	orders, err := s.h.GetActiveOrders.Handle(c.Request().Context(), queries.NewGetActiveOrdersQuery())
	if err != nil {
		return err
	}

	response := make([]Order, len(orders))
	for i, o := range orders {
		response[i] = orderFrom(o)
	}
	return c.JSON(http.StatusOK, response)
}

// CancelOrder handles POST /api/v1/orders/{orderId}/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "orderId")
	if err != nil {
		return err
	}

	var req CancelOrder
	if err = s.bind(c, &req); err != nil {
		return err
	}
	requesterID, err := kernel.UUIDFromBytes(req.RequesterID[:])
	if err != nil {
		return err
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, requesterID)
	if err != nil {
		return err
	}
	if err = s.h.CancelOrder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RespondToOffer handles POST /api/v1/offers/{offerId}/response. A response
// that arrives after the offer closed, or loses the order to another courier,
// gets 409.
func (s *Server) RespondToOffer(c echo.Context) error {
	offerID, err := pathUUID(c, "offerId")
	if err != nil {
		return err
	}

	var req OfferResponse
	if err = s.bind(c, &req); err != nil {
		return err
	}
	courierID, err := kernel.UUIDFromBytes(req.CourierID[:])
	if err != nil {
		return err
	}
	location, err := req.Location.toKernel()
	if err != nil {
		return err
	}

	cmd, err := commands.NewRespondToOfferCommand(offerID, courierID, *req.Accept, location)
	if err != nil {
		return err
	}
	result, err := s.h.RespondToOffer.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resolutionFrom(result))
}

// GetBatchSuggestions handles GET /api/v1/batches/suggestions.
func (s *Server) GetBatchSuggestions(c echo.Context) error {
	suggestions, err := s.h.GetBatchSuggestions.Handle(c.Request().Context(), queries.NewGetBatchSuggestionsQuery())
	if err != nil {
		return err
	}

	response := make([]BatchSuggestion, len(suggestions))
	for i, suggestion := range suggestions {
		response[i] = suggestionFrom(suggestion)
	}
	return c.JSON(http.StatusOK, response)
}

// ConfirmBatch handles POST /api/v1/batches.
func (s *Server) ConfirmBatch(c echo.Context) error {
	var req NewBatch
	if err := s.bind(c, &req); err != nil {
		return err
	}

	courierID, err := kernel.UUIDFromBytes(req.CourierID[:])
	if err != nil {
		return err
	}
	orderIDs, err := idsToKernel(req.OrderIDs)
	if err != nil {
		return err
	}

	cmd, err := commands.NewConfirmBatchCommand(kernel.NewUUID(), courierID, orderIDs)
	if err != nil {
		return err
	}
	b, err := s.h.ConfirmBatch.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, batchFrom(b))
}

// RunDispatchSweep handles POST /api/v1/dispatch/sweep.
func (s *Server) RunDispatchSweep(c echo.Context) error {
	const trigger = "http"

	summary, err := s.h.RunSweep.Handle(c.Request().Context(), commands.NewRunDispatchSweepCommand(trigger))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaryFrom(trigger, summary))
}

func (s *Server) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Validation failed: "+err.Error())
	}
	return nil
}

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return kernel.UUIDFromBytes(id[:])
}
