package controllers

import (
	"context"
	"strconv"

	"cafeteria-orders/src/controllers/models"
	"cafeteria-orders/src/services/catalog"
	"cafeteria-orders/src/services/order/domain"
	"cafeteria-orders/src/services/order/domain/persistence"

	"github.com/gofiber/fiber/v2"
)

// OrderHistory is the archive read side used for customer order listings.
type OrderHistory interface {
	ListOrdersByCustomer(ctx context.Context, category, customerID string, limit int64) ([]persistence.OrderDocument, error)
}

type CustomerController struct {
	orderService domain.OrderService
	history      OrderHistory
}

// NewCustomerController takes a nil history when the archive is disabled.
func NewCustomerController(orderService domain.OrderService, history OrderHistory) *CustomerController {
	return &CustomerController{
		orderService: orderService,
		history:      history,
	}
}

func (c *CustomerController) Route(app *fiber.App) {
	api := app.Group("/api/v1/customers")
	api.Get("/:category/:id", c.GetCustomer)
	api.Get("/:category/:id/orders", c.GetCustomerOrders)
}

// GetCustomer godoc
// @Summary      Get a customer
// @Description  Looks up a student, instructor or staff member by public id
// @Tags         customers
// @Produce      json
// @Param        category  path  string  true  "student, instructor or staff"
// @Param        id        path  string  true  "Customer public id"
// @Success      200  {object}  models.CustomerResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/v1/customers/{category}/{id} [get]
func (c *CustomerController) GetCustomer(ctx *fiber.Ctx) error {
	customer, ok := c.lookup(ctx)
	if !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: domain.ErrCustomerNotFound.Error()})
	}
	return ctx.JSON(models.NewCustomerResponse(customer))
}

// GetCustomerOrders godoc
// @Summary      List a customer's archived orders
// @Description  Returns the most recent archived orders of a customer, newest first
// @Tags         customers
// @Produce      json
// @Param        category  path   string  true   "student, instructor or staff"
// @Param        id        path   string  true   "Customer public id"
// @Param        limit     query  int     false  "Maximum number of orders (default 20)"
// @Success      200  {array}   persistence.OrderDocument
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      503  {object}  models.ErrorResponse
// @Router       /api/v1/customers/{category}/{id}/orders [get]
func (c *CustomerController) GetCustomerOrders(ctx *fiber.Ctx) error {
	if c.history == nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: "order archive is not configured"})
	}

	limit := int64(20)
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return ctx.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = parsed
	}

	customer, ok := c.lookup(ctx)
	if !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: domain.ErrCustomerNotFound.Error()})
	}

	orders, err := c.history.ListOrdersByCustomer(ctx.UserContext(), string(customer.Category()), customer.PublicID(), limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: err.Error()})
	}
	if orders == nil {
		orders = []persistence.OrderDocument{}
	}
	return ctx.JSON(orders)
}

func (c *CustomerController) lookup(ctx *fiber.Ctx) (catalog.Customer, bool) {
	category, ok := catalog.ParseCategory(ctx.Params("category"))
	if !ok {
		return nil, false
	}
	return c.orderService.FindCustomer(category, ctx.Params("id"))
}
