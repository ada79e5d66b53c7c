package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cafeteria-orders/src/infrastructure/log"
	"cafeteria-orders/src/services/events"
	"cafeteria-orders/src/services/notification"
	"cafeteria-orders/src/services/order/domain"
)

// OrderPlacedEventHandler tells the kitchen and the delivery side about a
// placed order.
type OrderPlacedEventHandler struct {
	notificationService notification.NotificationService
	logger              log.Logger
}

func NewOrderPlacedEventHandler(
	notificationService notification.NotificationService,
	logger log.Logger,
) *OrderPlacedEventHandler {
	return &OrderPlacedEventHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// Handle processes an order.placed message. A returned error makes the
// listener reject the delivery so the broker dead-letters it.
func (h *OrderPlacedEventHandler) Handle(ctx context.Context, msgBody []byte) error {
	var event events.OrderPlacedEvent
	if err := json.Unmarshal(msgBody, &event); err != nil {
		h.logger.Exception(ctx, "Failed to unmarshal OrderPlacedEvent", err)
		return fmt.Errorf("failed to unmarshal OrderPlacedEvent: %w", err)
	}
	if err := event.Validate(); err != nil {
		h.logger.Exception(ctx, "Invalid OrderPlacedEvent", err)
		return err
	}

	channels := []notification.NotificationChannel{notification.ChannelKitchenTicket}
	destination := "pickup counter"
	if event.DeliveryMode == string(domain.DeliveryClassroom) {
		channels = append(channels, notification.ChannelClassroomRunner)
		destination = event.Classroom
	} else {
		channels = append(channels, notification.ChannelCounterBoard)
	}

	request := notification.NotificationRequest{
		OrderID:     event.OrderID,
		CustomerID:  event.CustomerID,
		Message:     orderMessage(event, destination),
		Destination: destination,
		MessageType: "order_placed",
	}

	if err := h.notificationService.SendMultiChannelNotification(ctx, request, channels); err != nil {
		h.logger.Exception(ctx, "Failed to send order placed notification", err)
		return err
	}

	h.logger.Info(ctx, "Notifications sent for order: "+event.OrderID)
	return nil
}

func orderMessage(event events.OrderPlacedEvent, destination string) string {
	items := make([]string, 0, len(event.Lines))
	for _, line := range event.Lines {
		items = append(items, fmt.Sprintf("%dx %s", line.Quantity, line.Key))
	}
	return fmt.Sprintf("Order %s: %s for %s, ready at %s (%s)",
		event.OrderID, strings.Join(items, ", "), destination, event.EstimatedReadyTime, event.PaymentMethod)
}
