package controllers

import (
	"cafeteria-orders/src/controllers/models"
	"cafeteria-orders/src/services/order/domain"

	"github.com/gofiber/fiber/v2"
)

type MenuController struct {
	orderService domain.OrderService
}

func NewMenuController(orderService domain.OrderService) *MenuController {
	return &MenuController{
		orderService: orderService,
	}
}

func (c *MenuController) Route(app *fiber.App) {
	app.Get("/api/v1/menu", c.GetMenu)
}

// GetMenu godoc
// @Summary      List the menu
// @Description  Returns the menu items in catalog order with their unit prices
// @Tags         menu
// @Produce      json
// @Success      200  {array}  models.MenuItemResponse
// @Router       /api/v1/menu [get]
func (c *MenuController) GetMenu(ctx *fiber.Ctx) error {
	return ctx.JSON(models.NewMenuResponse(c.orderService.ListMenu()))
}
