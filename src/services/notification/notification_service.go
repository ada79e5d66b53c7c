package notification

import (
	"context"
	"fmt"

	"cafeteria-orders/src/infrastructure/log"
)

// NotificationChannel is where kitchen staff learn about a placed order.
type NotificationChannel string

const (
	ChannelCounterBoard    NotificationChannel = "counter_board"
	ChannelClassroomRunner NotificationChannel = "classroom_runner"
	ChannelKitchenTicket   NotificationChannel = "kitchen_ticket"
)

// NotificationRequest represents a notification to be sent
type NotificationRequest struct {
	OrderID     string              `json:"orderId"`
	CustomerID  string              `json:"customerId"`
	Message     string              `json:"message"`
	Channel     NotificationChannel `json:"channel"`
	Destination string              `json:"destination"` // classroom label or pickup counter
	MessageType string              `json:"messageType"`
}

type NotificationService interface {
	SendNotification(ctx context.Context, request NotificationRequest) error
	SendMultiChannelNotification(ctx context.Context, request NotificationRequest, channels []NotificationChannel) error
}

type NotificationServiceImpl struct {
	logger log.Logger
}

func NewNotificationService(logger log.Logger) NotificationService {
	return &NotificationServiceImpl{
		logger: logger,
	}
}

// SendNotification sends a notification through the specified channel
func (n *NotificationServiceImpl) SendNotification(ctx context.Context, request NotificationRequest) error {
	switch request.Channel {
	case ChannelCounterBoard, ChannelClassroomRunner, ChannelKitchenTicket:
		n.logger.InfoWithExtra(ctx, notificationTitle(request.Channel)+" - OrderID: "+request.OrderID, map[string]any{
			"OrderId":     request.OrderID,
			"CustomerId":  request.CustomerID,
			"Channel":     string(request.Channel),
			"Destination": request.Destination,
			"MessageType": request.MessageType,
			"Message":     request.Message,
		})
		return nil
	default:
		return fmt.Errorf("unknown notification channel: %s", request.Channel)
	}
}

// SendMultiChannelNotification keeps going when one channel fails and
// reports the first failure.
func (n *NotificationServiceImpl) SendMultiChannelNotification(ctx context.Context, request NotificationRequest, channels []NotificationChannel) error {
	var firstErr error
	for _, channel := range channels {
		request.Channel = channel
		if err := n.SendNotification(ctx, request); err != nil {
			n.logger.Exception(ctx, "Failed to send notification via "+string(channel), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func notificationTitle(channel NotificationChannel) string {
	switch channel {
	case ChannelCounterBoard:
		return "COUNTER BOARD"
	case ChannelClassroomRunner:
		return "CLASSROOM RUNNER"
	default:
		return "KITCHEN TICKET"
	}
}
