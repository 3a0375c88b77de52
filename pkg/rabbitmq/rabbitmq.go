package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/multierr"

	"farmconnect/pkg/logger"
)

const (
	DefaultExchange = "farmconnect.orders"
	DefaultQueue    = "order_events"
	orderBindingKey = "order.#"
)

// ErrPermanent marks a handler failure that redelivery cannot fix.
var ErrPermanent = errors.New("permanent failure")

// Permanent wraps err so the consumer drops the message instead of requeueing it.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	log      *logger.Logger
	mu       sync.Mutex // guards channel.Publish
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
	Queue    string
}

// NewClient connects to RabbitMQ, declares the order topic exchange and binds the
// order event queue to it.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	if log == nil {
		log = logger.Nop()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		return nil, multierr.Combine(err, ch.Close(), conn.Close())
	}

	log.Info(context.Background(), "rabbitmq connected, order topology declared")

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		queue:    cfg.Queue,
		log:      log,
	}, nil
}

func declareTopology(ch *amqp.Channel, cfg Config) error {
	if err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}
	if _, err := ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}
	if err := ch.QueueBind(cfg.Queue, orderBindingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", cfg.Queue, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var err error
	if c.channel != nil {
		err = multierr.Append(err, c.channel.Close())
	}
	if c.conn != nil {
		err = multierr.Append(err, c.conn.Close())
	}
	return err
}

// Publish sends a persistent JSON message to the order exchange under routingKey.
func (c *Client) Publish(routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

// ConsumeOrderEvents starts a goroutine that hands every order event to handler.
// Messages are acked when handler returns nil. A failed message is requeued
// once; permanent failures and failures on redelivery are dropped.
func (c *Client) ConsumeOrderEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		ctx := context.Background()
		for msg := range msgs {
			c.settle(ctx, msg, handler(msg))
		}
	}()

	return nil
}

// settle acks or nacks msg according to the handler's result.
func (c *Client) settle(ctx context.Context, msg amqp.Delivery, handlerErr error) {
	if handlerErr == nil {
		if err := msg.Ack(false); err != nil {
			c.log.Error(ctx, "ack order event", err)
		}
		return
	}

	requeue := !msg.Redelivered && !errors.Is(handlerErr, ErrPermanent)
	if requeue {
		c.log.Warn(ctx, fmt.Sprintf("order event %d failed, requeueing", msg.DeliveryTag), handlerErr)
	} else {
		c.log.Error(ctx, fmt.Sprintf("order event %d failed, dropping", msg.DeliveryTag), handlerErr)
	}
	if err := msg.Nack(false, requeue); err != nil {
		c.log.Error(ctx, "nack order event", err)
	}
}
