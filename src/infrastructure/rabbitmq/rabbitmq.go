package rabbitmq

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// RabbitMQServiceImpl publishes and consumes cafeteria events on a topic
// exchange where every event queue is bound by its own name.
type RabbitMQServiceImpl struct {
	host        string
	exchange    string
	queueName   string
	eventQueues []string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool
}

var ErrServiceClosed = errors.New("rabbitmq service is closed")

// NewRabbitMQService dials host and declares the topology: the topic
// exchange, a fanout dead-letter exchange feeding queueName+".dlq", and one
// durable queue plus ".dlq" companion for each name in eventQueues.
func NewRabbitMQService(host, exchange, queueName string, eventQueues []string) (*RabbitMQServiceImpl, error) {
	s := &RabbitMQServiceImpl{
		host:        host,
		exchange:    exchange,
		queueName:   queueName,
		eventQueues: eventQueues,
	}
	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

// connect dials and declares the topology. Callers hold s.mu or own s
// exclusively.
func (s *RabbitMQServiceImpl) connect() error {
	conn, err := amqp.Dial(s.host)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := declareTopology(ch, s.exchange, s.queueName, s.eventQueues); err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	s.conn = conn
	s.channel = ch
	return nil
}

// ensureConnected redials when the broker dropped the connection.
func (s *RabbitMQServiceImpl) ensureConnected() error {
	if s.closed {
		return ErrServiceClosed
	}
	if s.conn != nil && !s.conn.IsClosed() && s.channel != nil {
		return nil
	}
	if s.conn != nil && !s.conn.IsClosed() {
		s.conn.Close()
	}
	return s.connect()
}

// declareTopology uses queueName only to name the dead-letter queue; events
// themselves flow through the per-event queues.
func declareTopology(ch *amqp.Channel, exchange, queueName string, eventQueues []string) error {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare an exchange: %w", err)
	}

	dlxName := exchange + ".dlx"
	if err := ch.ExchangeDeclare(dlxName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare a dead-letter exchange: %w", err)
	}

	dlqName := queueName + ".dlq"
	if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare a dead-letter queue: %w", err)
	}
	if err := ch.QueueBind(dlqName, "", dlxName, false, nil); err != nil {
		return fmt.Errorf("failed to bind dead-letter queue: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": dlxName,
	}
	for _, eventQueue := range eventQueues {
		if _, err := ch.QueueDeclare(eventQueue, true, false, false, false, args); err != nil {
			return fmt.Errorf("failed to declare event queue %s: %w", eventQueue, err)
		}
		if err := ch.QueueBind(eventQueue, eventQueue, exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind event queue %s: %w", eventQueue, err)
		}

		eventDLQ := eventQueue + ".dlq"
		if _, err := ch.QueueDeclare(eventDLQ, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare DLQ %s: %w", eventDLQ, err)
		}
		if err := ch.QueueBind(eventDLQ, eventDLQ, exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind DLQ %s: %w", eventDLQ, err)
		}
	}
	return nil
}

// Publish sends a persistent JSON message to topic on the configured exchange.
func (s *RabbitMQServiceImpl) Publish(topic string, body []byte) error {
	if topic == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	if body == nil {
		return fmt.Errorf("message body cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureConnected(); err != nil {
		return fmt.Errorf("connection to RabbitMQ is closed: %w", err)
	}

	err := s.channel.Publish(
		s.exchange, // exchange
		topic,      // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
		},
	)
	if err != nil {
		s.dropClosedChannel(err)
		return fmt.Errorf("failed to publish message to topic '%s': %w", topic, err)
	}
	return nil
}

// Consume starts consuming messages from a queue with manual acks,
// redialing first when the connection was lost.
func (s *RabbitMQServiceImpl) Consume(queueName string) (<-chan amqp.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureConnected(); err != nil {
		return nil, err
	}

	msgs, err := s.channel.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		s.dropClosedChannel(err)
		return nil, fmt.Errorf("failed to start consuming queue: %w", err)
	}
	return msgs, nil
}

// dropClosedChannel forgets a channel the broker closed so the next call
// redials.
func (s *RabbitMQServiceImpl) dropClosedChannel(err error) {
	if errors.Is(err, amqp.ErrClosed) {
		s.channel = nil
	}
}

func (s *RabbitMQServiceImpl) IsHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil && !s.conn.IsClosed() && s.channel != nil
}

func (s *RabbitMQServiceImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		s.conn.Close()
	}
}
