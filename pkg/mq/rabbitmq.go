package mq

import (
	"context"
	"fmt"

	"quote-engine/pkg/quote"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

const (
	QuotesExchange  = "quotes.exchange"
	DLXExchange     = "quotes.dlx"
	DeadLetterQueue = "quotes.dead_letter.queue"
)

func New(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	return &Client{conn: conn, ch: ch}, nil
}

func queueName(t quote.EventType) string {
	return fmt.Sprintf("quotes.queue.%s", t)
}

// SetupTopology declares all necessary exchanges and queues. Idempotent.
func (c *Client) SetupTopology() error {
	// Main exchange for quote change events, routed by event type.
	if err := c.ch.ExchangeDeclare(QuotesExchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}
	// Dead-letter exchange for malformed deliveries.
	if err := c.ch.ExchangeDeclare(DLXExchange, "fanout", true, false, false, false, nil); err != nil {
		return err
	}

	if _, err := c.ch.QueueDeclare(DeadLetterQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := c.ch.QueueBind(DeadLetterQueue, "", DLXExchange, false, nil); err != nil {
		return err
	}

	// One queue per event type so creation, deletion and update handlers run
	// independently, as the platform delivers them.
	for _, t := range quote.EventTypes() {
		_, err := c.ch.QueueDeclare(queueName(t), true, false, false, false, amqp.Table{
			"x-dead-letter-exchange": DLXExchange,
		})
		if err != nil {
			return err
		}
		if err := c.ch.QueueBind(queueName(t), string(t), QuotesExchange, false, nil); err != nil {
			return err
		}
	}

	return nil
}

// Publish sends one change event body to the feed, routed by event type.
func (c *Client) Publish(ctx context.Context, eventType string, body []byte) error {
	return c.ch.PublishWithContext(ctx,
		QuotesExchange,
		eventType,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
}

// ConsumeEvents opens a manual-ack delivery channel for one event type.
func (c *Client) ConsumeEvents(t quote.EventType) (<-chan amqp.Delivery, error) {
	return c.ch.Consume(
		queueName(t),
		"",    // consumer
		false, // auto-ack is false. We will manually ack.
		false,
		false,
		false,
		nil,
	)
}

func (c *Client) Close() {
	c.ch.Close()
	c.conn.Close()
}
