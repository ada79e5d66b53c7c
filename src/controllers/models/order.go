package models

import (
	"cafeteria-orders/src/services/catalog"
	"cafeteria-orders/src/services/order/domain"
)

// OrderRequest is the POST /api/v1/orders payload. Business rules such as
// a missing classroom or an unsupported payment method are left to the
// order service so they surface as rejections.
type OrderRequest struct {
	Category   string      `json:"category" validate:"required"`
	CustomerID string      `json:"customerId" validate:"required"`
	Items      []OrderItem `json:"items" validate:"dive"`
	Payment    string      `json:"paymentMethod" validate:"required"`
	Delivery   string      `json:"deliveryMode" validate:"required"`
	Classroom  string      `json:"classroom"`
}

// OrderItem quantities of zero or less are accepted here and dropped by the
// order service; the upper bound mirrors domain.MaxLineQuantity.
type OrderItem struct {
	Key      string `json:"key" validate:"required"`
	Quantity int    `json:"quantity" validate:"lte=1000"`
}

// ToDomain converts the payload. Unknown categories are passed through
// unchanged and resolve to no customer.
func (r OrderRequest) ToDomain() domain.OrderRequest {
	category, ok := catalog.ParseCategory(r.Category)
	if !ok {
		category = catalog.Category(r.Category)
	}
	items := make([]domain.RawItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.RawItem{Key: item.Key, Quantity: item.Quantity})
	}
	return domain.OrderRequest{
		Category:   category,
		CustomerID: r.CustomerID,
		Items:      items,
		Payment:    domain.PaymentMethod(r.Payment),
		Delivery:   domain.DeliveryMode(r.Delivery),
		Classroom:  r.Classroom,
	}
}

type OrderLineResponse struct {
	Key      string `json:"key"`
	Quantity int    `json:"quantity"`
}

type OrderResponse struct {
	OrderID            string              `json:"orderId"`
	CustomerCategory   string              `json:"customerCategory"`
	CustomerID         string              `json:"customerId"`
	Lines              []OrderLineResponse `json:"lines"`
	RequestDate        string              `json:"requestDate"`
	RequestTime        string              `json:"requestTime"`
	PaymentMethod      string              `json:"paymentMethod"`
	Total              string              `json:"total"`
	EstimatedMinutes   int                 `json:"estimatedMinutes"`
	EstimatedReadyTime string              `json:"estimatedReadyTime"`
	DeliveryMode       string              `json:"deliveryMode"`
	Classroom          string              `json:"classroom,omitempty"`
}

func NewOrderResponse(order domain.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderLineResponse{Key: line.ItemKey, Quantity: line.Quantity})
	}
	return OrderResponse{
		OrderID:            order.ID,
		CustomerCategory:   string(order.CustomerCategory),
		CustomerID:         order.CustomerID,
		Lines:              lines,
		RequestDate:        order.RequestDate(),
		RequestTime:        order.RequestTime(),
		PaymentMethod:      string(order.Payment),
		Total:              order.TotalString(),
		EstimatedMinutes:   order.EstimatedMinutes,
		EstimatedReadyTime: order.EstimatedReadyTime(),
		DeliveryMode:       string(order.Delivery),
		Classroom:          order.Classroom,
	}
}
