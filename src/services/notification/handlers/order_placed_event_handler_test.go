package handlers

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"cafeteria-orders/src/infrastructure/log"
	"cafeteria-orders/src/services/events"
	"cafeteria-orders/src/services/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	request  notification.NotificationRequest
	channels []notification.NotificationChannel
}

func (r *recordingNotifier) SendNotification(_ context.Context, request notification.NotificationRequest) error {
	r.request = request
	return nil
}

func (r *recordingNotifier) SendMultiChannelNotification(_ context.Context, request notification.NotificationRequest, channels []notification.NotificationChannel) error {
	r.request = request
	r.channels = channels
	return nil
}

func placedEvent(delivery, classroom string) []byte {
	body, _ := json.Marshal(events.OrderPlacedEvent{
		OrderID:            "ORD-20240305123045-2023001",
		CustomerCategory:   "student",
		CustomerID:         "2023001",
		Lines:              []events.OrderLine{{Key: "A01", Quantity: 2}, {Key: "B01", Quantity: 1}},
		Total:              "45.00",
		PaymentMethod:      "credit",
		DeliveryMode:       delivery,
		Classroom:          classroom,
		EstimatedMinutes:   14,
		EstimatedReadyTime: "12:44",
		Version:            1,
	})
	return body
}

func TestOrderPlacedEventHandler_ClassroomDelivery(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := NewOrderPlacedEventHandler(notifier, log.NewLoggerWithOutput(io.Discard))

	err := handler.Handle(context.Background(), placedEvent("classroom", "B-203"))

	require.NoError(t, err)
	assert.Equal(t, []notification.NotificationChannel{
		notification.ChannelKitchenTicket,
		notification.ChannelClassroomRunner,
	}, notifier.channels)
	assert.Equal(t, "B-203", notifier.request.Destination)
	assert.Equal(t, "Order ORD-20240305123045-2023001: 2x A01, 1x B01 for B-203, ready at 12:44 (credit)", notifier.request.Message)
}

func TestOrderPlacedEventHandler_CounterDelivery(t *testing.T) {
	notifier := &recordingNotifier{}
	handler := NewOrderPlacedEventHandler(notifier, log.NewLoggerWithOutput(io.Discard))

	err := handler.Handle(context.Background(), placedEvent("counter", ""))

	require.NoError(t, err)
	assert.Equal(t, notification.ChannelCounterBoard, notifier.channels[1])
	assert.Equal(t, "pickup counter", notifier.request.Destination)
}

func TestOrderPlacedEventHandler_RejectsBadMessages(t *testing.T) {
	handler := NewOrderPlacedEventHandler(&recordingNotifier{}, log.NewLoggerWithOutput(io.Discard))

	assert.Error(t, handler.Handle(context.Background(), []byte("not json")))
	assert.Error(t, handler.Handle(context.Background(), placedEvent("classroom", "")))
}
