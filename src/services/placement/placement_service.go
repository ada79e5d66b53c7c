package placement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cafeteria-orders/src/infrastructure/log"
	"cafeteria-orders/src/services/events"
	"cafeteria-orders/src/services/order/domain"
	"cafeteria-orders/src/services/order/domain/persistence"
)

// OrderSink is the primary record of placed orders.
type OrderSink interface {
	Append(ctx context.Context, order domain.Order) error
}

// OrderArchive is the optional secondary store for orders and for events
// that could not be published.
type OrderArchive interface {
	InsertOrder(ctx context.Context, order domain.Order) error
	StoreEventForReplay(ctx context.Context, orderID, topic string, eventData []byte) error
	GetUnreplayedEvents(ctx context.Context, limit int64) ([]persistence.OrderEvent, error)
	MarkEventAsReplaying(ctx context.Context, eventID string) error
	MarkEventAsCompleted(ctx context.Context, eventID string) error
	MarkEventAsFailed(ctx context.Context, eventID string) error
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

type PlacementService interface {
	PlaceOrder(ctx context.Context, request domain.OrderRequest) (domain.Order, error)
	ReplayFailedEvents(ctx context.Context) error
}

type placementService struct {
	logger     log.Logger
	orders     domain.OrderService
	sink       OrderSink
	archive    OrderArchive
	publisher  EventPublisher
	retryDelay time.Duration
}

// NewPlacementService wires the order workflow. archive and publisher may
// be nil when MongoDB or RabbitMQ are not configured.
func NewPlacementService(
	logger log.Logger,
	orders domain.OrderService,
	sink OrderSink,
	archive OrderArchive,
	publisher EventPublisher,
) PlacementService {
	return &placementService{
		logger:     logger,
		orders:     orders,
		sink:       sink,
		archive:    archive,
		publisher:  publisher,
		retryDelay: time.Second,
	}
}

// PlaceOrder creates the order and records it. The CSV sink is the system
// of record: if it cannot be written the credit debit is refunded and the
// order is reported as failed. Archive and event failures are logged only.
func (s *placementService) PlaceOrder(ctx context.Context, request domain.OrderRequest) (domain.Order, error) {
	order, err := s.orders.CreateOrder(ctx, request)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.sink.Append(ctx, order); err != nil {
		s.logger.Exception(ctx, fmt.Sprintf("Failed to record order %s", order.ID), err)
		if refundErr := s.orders.RefundOrder(ctx, order); refundErr != nil {
			s.logger.Exception(ctx, fmt.Sprintf("Failed to refund order %s", order.ID), refundErr)
			err = errors.Join(err, refundErr)
		}
		return domain.Order{}, fmt.Errorf("failed to record order: %w", err)
	}

	if s.archive != nil {
		if err := s.archive.InsertOrder(ctx, order); err != nil {
			s.logger.Exception(ctx, fmt.Sprintf("Failed to archive order %s", order.ID), err)
		}
	}

	if s.publisher != nil {
		s.publishOrderPlaced(ctx, order)
	}

	s.logger.Info(ctx, fmt.Sprintf("Order %s placed", order.ID))
	return order, nil
}

func (s *placementService) publishOrderPlaced(ctx context.Context, order domain.Order) {
	event := events.NewOrderPlacedEvent(order, time.Now().Local())
	if err := event.Validate(); err != nil {
		s.logger.Exception(ctx, "Order placed event validation failed", err)
		return
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		s.logger.Exception(ctx, "failed to marshal order placed event", err)
		return
	}

	if err := s.publishWithRetry(ctx, events.OrderPlaced, eventJSON, 2); err != nil {
		s.logger.Exception(ctx, fmt.Sprintf("failed to publish order placed event for order %s", order.ID), err)
		if s.archive == nil {
			return
		}
		if err := s.archive.StoreEventForReplay(ctx, order.ID, events.OrderPlaced, eventJSON); err != nil {
			s.logger.Exception(ctx, fmt.Sprintf("failed to store order placed event for replay, order %s", order.ID), err)
		}
		return
	}

	s.logger.Info(ctx, fmt.Sprintf("OrderPlaced event published successfully for order: %s", order.ID))
}

func (s *placementService) publishWithRetry(ctx context.Context, topic string, body []byte, maxRetries int) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = s.publisher.Publish(topic, body)
		if err == nil {
			return nil
		}
		s.logger.Warn(ctx, fmt.Sprintf("Publish %s failed, attempt %d/%d: %v", topic, attempt, maxRetries, err))

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * s.retryDelay)
		}
	}
	return err
}

// ReplayFailedEvents republishes events stored after publish failures.
func (s *placementService) ReplayFailedEvents(ctx context.Context) error {
	const batchSize = 100
	const maxRetries = 3

	if s.archive == nil || s.publisher == nil {
		return ErrReplayUnavailable
	}

	pending, err := s.archive.GetUnreplayedEvents(ctx, batchSize)
	if err != nil {
		s.logger.Exception(ctx, "failed to fetch unreplayed events", err)
		return fmt.Errorf("failed to fetch unreplayed events: %w", err)
	}
	if len(pending) == 0 {
		s.logger.Info(ctx, "No events to replay")
		return nil
	}

	s.logger.Info(ctx, fmt.Sprintf("Starting replay of %d failed events", len(pending)))

	failureCount := 0
	for _, evt := range pending {
		if err := s.archive.MarkEventAsReplaying(ctx, evt.ID); err != nil {
			s.logger.Warn(ctx, fmt.Sprintf("Failed to mark event %s as replaying: %v", evt.ID, err))
		}

		topic := evt.Topic
		if topic == "" {
			topic = events.OrderPlaced
		}

		if err := s.publishWithRetry(ctx, topic, evt.EventData, maxRetries); err != nil {
			s.logger.Exception(ctx, fmt.Sprintf("Replay failed for event %s after %d retries", evt.ID, maxRetries), err)
			if err := s.archive.MarkEventAsFailed(ctx, evt.ID); err != nil {
				s.logger.Warn(ctx, fmt.Sprintf("Failed to mark event %s as failed: %v", evt.ID, err))
			}
			failureCount++
			continue
		}

		if err := s.archive.MarkEventAsCompleted(ctx, evt.ID); err != nil {
			s.logger.Warn(ctx, fmt.Sprintf("Failed to mark event %s as completed: %v", evt.ID, err))
		}
	}

	s.logger.Info(ctx, fmt.Sprintf("Replay completed: %d successful, %d failed", len(pending)-failureCount, failureCount))

	if failureCount > 0 {
		return fmt.Errorf("replay completed with %d failures out of %d events", failureCount, len(pending))
	}
	return nil
}

var ErrReplayUnavailable = errors.New("event replay requires both the order archive and the event broker")
