package events

import (
	"errors"
	"time"

	"cafeteria-orders/src/services/order/domain"
)

const (
	// Event types
	OrderPlaced    = "order.placed"
	OrderPlacedDLQ = "order.placed.dlq"
)

// Queues lists every event queue the broker topology declares.
var Queues = []string{OrderPlaced}

type OrderLine struct {
	Key      string `json:"key"`
	Quantity int    `json:"quantity"`
}

// OrderPlacedEvent announces an order that has been created and recorded.
type OrderPlacedEvent struct {
	OrderID            string      `json:"orderId"`
	CustomerCategory   string      `json:"customerCategory"`
	CustomerID         string      `json:"customerId"`
	Lines              []OrderLine `json:"lines"`
	Total              string      `json:"total"`
	PaymentMethod      string      `json:"paymentMethod"`
	DeliveryMode       string      `json:"deliveryMode"`
	Classroom          string      `json:"classroom,omitempty"`
	EstimatedMinutes   int         `json:"estimatedMinutes"`
	EstimatedReadyTime string      `json:"estimatedReadyTime"`
	Version            int         `json:"version"`
	TimeStamp          time.Time   `json:"timestamp"`
}

func NewOrderPlacedEvent(order domain.Order, at time.Time) OrderPlacedEvent {
	lines := make([]OrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderLine{Key: line.ItemKey, Quantity: line.Quantity})
	}
	return OrderPlacedEvent{
		OrderID:            order.ID,
		CustomerCategory:   string(order.CustomerCategory),
		CustomerID:         order.CustomerID,
		Lines:              lines,
		Total:              order.TotalString(),
		PaymentMethod:      string(order.Payment),
		DeliveryMode:       string(order.Delivery),
		Classroom:          order.Classroom,
		EstimatedMinutes:   order.EstimatedMinutes,
		EstimatedReadyTime: order.EstimatedReadyTime(),
		Version:            1,
		TimeStamp:          at,
	}
}

func (e *OrderPlacedEvent) Validate() error {
	if e.OrderID == "" || e.CustomerID == "" || len(e.Lines) == 0 || e.DeliveryMode == "" {
		return errors.New("missing required fields in OrderPlacedEvent")
	}
	if e.DeliveryMode == string(domain.DeliveryClassroom) && e.Classroom == "" {
		return errors.New("classroom is required in OrderPlacedEvent for classroom delivery")
	}
	for _, line := range e.Lines {
		if line.Key == "" || line.Quantity <= 0 {
			return errors.New("invalid line in OrderPlacedEvent")
		}
	}
	return nil
}
