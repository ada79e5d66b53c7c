package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cafeteria-orders/src/infrastructure/log"

	"github.com/streadway/amqp"
)

// Consumer opens a delivery stream for a queue.
type Consumer interface {
	Consume(queueName string) (<-chan amqp.Delivery, error)
}

// EventHandler processes one message body. A returned error dead-letters
// the message instead of acknowledging it.
type EventHandler interface {
	Handle(ctx context.Context, msgBody []byte) error
}

type EventListener struct {
	consumer   Consumer
	logger     log.Logger
	handlers   map[string]EventHandler
	maxRetries int
	retryDelay time.Duration
}

func NewEventListener(consumer Consumer, logger log.Logger) *EventListener {
	return &EventListener{
		consumer:   consumer,
		logger:     logger,
		handlers:   make(map[string]EventHandler),
		maxRetries: 5,
		retryDelay: 2 * time.Second,
	}
}

// RegisterHandler registers an event handler for a specific event type
func (el *EventListener) RegisterHandler(eventType string, handler EventHandler) {
	el.handlers[eventType] = handler
}

// StartListening consumes every registered queue until ctx is cancelled.
func (el *EventListener) StartListening(ctx context.Context) error {
	var wg sync.WaitGroup

	for eventType, handler := range el.handlers {
		wg.Add(1)
		go func(evtType string, h EventHandler) {
			defer wg.Done()
			el.listenToQueue(ctx, evtType, h)
		}(eventType, handler)
	}

	wg.Wait()
	return nil
}

// listenToQueue consumes queueName until ctx ends. Every failed Consume
// counts against maxRetries with doubling backoff; a successful Consume
// resets both, so only consecutive failures make the listener give up.
func (el *EventListener) listenToQueue(ctx context.Context, queueName string, handler EventHandler) {
	retryDelay := el.retryDelay
	failures := 0

	el.logger.Info(ctx, "Starting to listen for events on queue: "+queueName)

	for {
		msgs, err := el.consumer.Consume(queueName)
		if err != nil {
			failures++
			el.logger.Exception(ctx, fmt.Sprintf("Failed to start consuming queue: %s (attempt %d/%d)", queueName, failures, el.maxRetries), err)
			if failures >= el.maxRetries {
				el.logger.Exception(ctx, "Max retries reached for queue: "+queueName+", giving up", err)
				return
			}

			select {
			case <-ctx.Done():
				el.logger.Info(ctx, "Stopping event listener for queue: "+queueName)
				return
			case <-time.After(retryDelay):
			}
			retryDelay *= 2
			continue
		}

		failures = 0
		retryDelay = el.retryDelay
		el.logger.Info(ctx, "Successfully started consuming queue: "+queueName)
		if !el.drain(ctx, queueName, msgs, handler) {
			return
		}

		select {
		case <-ctx.Done():
			el.logger.Info(ctx, "Stopping event listener for queue: "+queueName)
			return
		case <-time.After(el.retryDelay):
		}
	}
}

// drain dispatches deliveries until ctx ends (false) or the channel closes
// and a reconnect should be attempted (true).
func (el *EventListener) drain(ctx context.Context, queueName string, msgs <-chan amqp.Delivery, handler EventHandler) bool {
	for {
		select {
		case <-ctx.Done():
			el.logger.Info(ctx, "Stopping event listener for queue: "+queueName)
			return false
		case msg, ok := <-msgs:
			if !ok {
				el.logger.Warn(ctx, "Message channel closed for queue: "+queueName+", attempting to reconnect...")
				return true
			}
			go el.dispatch(ctx, queueName, handler, msg)
		}
	}
}

func (el *EventListener) dispatch(ctx context.Context, queueName string, handler EventHandler, msg amqp.Delivery) {
	if err := handler.Handle(ctx, msg.Body); err != nil {
		el.logger.Exception(ctx, "Handler failed for queue: "+queueName+", dead-lettering message", err)
		if nackErr := msg.Nack(false, false); nackErr != nil {
			el.logger.Exception(ctx, "Failed to nack message on queue: "+queueName, nackErr)
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		el.logger.Exception(ctx, "Failed to ack message on queue: "+queueName, err)
	}
}
