package events

import (
	"testing"
	"time"

	"cafeteria-orders/src/services/catalog"
	"cafeteria-orders/src/services/order/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewOrderPlacedEvent(t *testing.T) {
	at := time.Date(2024, time.March, 5, 12, 31, 0, 0, time.UTC)
	order := domain.Order{
		ID:               "ORD-20240305123045-2023001",
		CustomerCategory: catalog.CategoryStudent,
		CustomerID:       "2023001",
		Lines:            []domain.OrderLine{{ItemKey: "A01", Quantity: 2}, {ItemKey: "B01", Quantity: 1}},
		RequestedAt:      time.Date(2024, time.March, 5, 12, 30, 45, 0, time.UTC),
		Payment:          domain.PaymentCredit,
		Total:            decimal.RequireFromString("45"),
		EstimatedMinutes: 14,
		Delivery:         domain.DeliveryClassroom,
		Classroom:        "B-203",
	}

	event := NewOrderPlacedEvent(order, at)

	assert.NoError(t, event.Validate())
	assert.Equal(t, "45.00", event.Total)
	assert.Equal(t, "12:44", event.EstimatedReadyTime)
	assert.Equal(t, []OrderLine{{Key: "A01", Quantity: 2}, {Key: "B01", Quantity: 1}}, event.Lines)
	assert.Equal(t, 1, event.Version)
	assert.Equal(t, at, event.TimeStamp)
}

func TestOrderPlacedEvent_Validate(t *testing.T) {
	valid := func() OrderPlacedEvent {
		return OrderPlacedEvent{
			OrderID:      "ORD-1",
			CustomerID:   "2023001",
			Lines:        []OrderLine{{Key: "A01", Quantity: 1}},
			DeliveryMode: "counter",
		}
	}

	testCases := []struct {
		name        string
		mutate      func(e *OrderPlacedEvent)
		expectError bool
	}{
		{name: "valid event", mutate: func(e *OrderPlacedEvent) {}},
		{name: "missing order ID", mutate: func(e *OrderPlacedEvent) { e.OrderID = "" }, expectError: true},
		{name: "missing customer", mutate: func(e *OrderPlacedEvent) { e.CustomerID = "" }, expectError: true},
		{name: "no lines", mutate: func(e *OrderPlacedEvent) { e.Lines = nil }, expectError: true},
		{name: "zero quantity", mutate: func(e *OrderPlacedEvent) { e.Lines[0].Quantity = 0 }, expectError: true},
		{name: "classroom delivery without classroom", mutate: func(e *OrderPlacedEvent) { e.DeliveryMode = "classroom" }, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			event := valid()
			tc.mutate(&event)
			err := event.Validate()
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
