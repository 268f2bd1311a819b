package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"littlelemon/logger"

	"github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the topic exchange order events go to. Routing keys are the
// event types, so consumers bind with "order.*" or a single type.
const ExchangeName = "orders_topic"

// Connection is a RabbitMQ connection plus one channel, redialled on demand.
type Connection struct {
	url string
	log *slog.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// Dial connects to url and declares the exchange, retrying a few times.
func Dial(url string, log *slog.Logger) (*Connection, error) {
	c := &Connection{url: url, log: log}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Connection) connect() error {
	const maxRetries = 5
	var err error

	for i := 0; i < maxRetries; i++ {
		if err = c.dialOnce(); err == nil {
			return nil
		}
		if i < maxRetries-1 {
			wait := time.Duration(i+1) * time.Second
			c.log.Warn("rabbitmq connect failed, retrying", "attempt", i+1, "wait", wait, logger.Err(err))
			time.Sleep(wait)
		}
	}
	return fmt.Errorf("connect to rabbitmq after %d attempts: %w", maxRetries, err)
}

func (c *Connection) dialOnce() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare %s: %w", ExchangeName, err)
	}
	c.conn, c.channel = conn, ch
	return nil
}

// channelLocked returns a live channel, redialling once if the old one died.
func (c *Connection) channelLocked() (*amqp091.Channel, error) {
	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	c.closeLocked()
	if err := c.dialOnce(); err != nil {
		return nil, fmt.Errorf("reconnect rabbitmq: %w", err)
	}
	return c.channel, nil
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Connection) closeLocked() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// AMQPPublisher publishes events to ExchangeName.
type AMQPPublisher struct {
	conn *Connection
	log  *slog.Logger
}

func NewAMQPPublisher(conn *Connection, log *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{conn: conn, log: log}
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	routingKey, msg, err := buildPublishing(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.conn.mu.Lock()
	defer p.conn.mu.Unlock()

	ch, err := p.conn.channelLocked()
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, ExchangeName, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s for order %d: %w", routingKey, ev.OrderID, err)
	}

	p.log.Debug("event published", "routing_key", routingKey, "order_id", ev.OrderID, "bytes", len(msg.Body))
	return nil
}

func buildPublishing(ev Event) (string, amqp091.Publishing, error) {
	if ev.Type == "" {
		return "", amqp091.Publishing{}, fmt.Errorf("event for order %d has no type", ev.OrderID)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return "", amqp091.Publishing{}, fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}
	return string(ev.Type), amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    fmt.Sprintf("%s-%d-%d", ev.Type, ev.OrderID, ev.At.UnixNano()),
		Timestamp:    ev.At,
		Type:         string(ev.Type),
		Body:         body,
	}, nil
}
