package controllers

import (
	"context"
	"errors"

	"cafeteria-orders/src/controllers/models"
	"cafeteria-orders/src/services/order/domain"
	"cafeteria-orders/src/services/order/domain/persistence"
	"cafeteria-orders/src/services/placement"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderLookup is the archive read side for single orders.
type OrderLookup interface {
	GetOrderByID(ctx context.Context, id string) (*persistence.OrderDocument, error)
}

type OrderController struct {
	placementService placement.PlacementService
	orders           OrderLookup
	validator        *validator.Validate
}

// NewOrderController takes a nil lookup when the archive is disabled.
func NewOrderController(placementService placement.PlacementService, orders OrderLookup) *OrderController {
	return &OrderController{
		placementService: placementService,
		orders:           orders,
		validator:        validator.New(),
	}
}

func (c *OrderController) Route(app *fiber.App) {
	api := app.Group("/api/v1/orders")
	api.Post("/", c.CreateOrder)
	api.Post("/replay-failed-events", c.ReplayFailedEvents)
	api.Get("/:id", c.GetOrder)
}

// CreateOrder godoc
// @Summary      Place an order
// @Description  Validates, prices and records an order, debiting student credit when paid with credit
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        order  body  models.OrderRequest  true  "Order payload"
// @Success      201  {object}  models.OrderResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      422  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/v1/orders [post]
func (c *OrderController) CreateOrder(ctx *fiber.Ctx) error {
	var request models.OrderRequest
	if err := ctx.BodyParser(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "Invalid request"})
	}
	if err := c.validator.Struct(request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(validationError(err))
	}

	order, err := c.placementService.PlaceOrder(ctx.UserContext(), request.ToDomain())
	if err != nil {
		return ctx.Status(orderErrorStatus(err)).JSON(models.ErrorResponse{Error: err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(models.NewOrderResponse(order))
}

// GetOrder godoc
// @Summary      Get an archived order
// @Description  Reads an order back from the archive
// @Tags         orders
// @Produce      json
// @Param        id  path  string  true  "Order id"
// @Success      200  {object}  persistence.OrderDocument
// @Failure      404  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /api/v1/orders/{id} [get]
func (c *OrderController) GetOrder(ctx *fiber.Ctx) error {
	if c.orders == nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: "order archive is not configured"})
	}
	order, err := c.orders.GetOrderByID(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: err.Error()})
	}
	if order == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "Order not found"})
	}
	return ctx.JSON(order)
}

// ReplayFailedEvents godoc
// @Summary      Replay failed order events
// @Description  Republishes order events that could not be delivered to the broker
// @Tags         orders
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /api/v1/orders/replay-failed-events [post]
func (c *OrderController) ReplayFailedEvents(ctx *fiber.Ctx) error {
	err := c.placementService.ReplayFailedEvents(ctx.UserContext())
	if errors.Is(err, placement.ErrReplayUnavailable) {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: err.Error()})
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "Replay complete"})
}

func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		return fiber.StatusNotFound
	case domain.IsRejection(err):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func validationError(err error) models.ErrorResponse {
	response := models.ErrorResponse{Error: "Invalid request"}
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) {
		for _, fieldError := range fieldErrors {
			response.Details = append(response.Details, fieldError.Namespace()+" failed on "+fieldError.Tag())
		}
	}
	return response
}
