package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is the subset of *amqp.Channel used for delivery.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPTransport publishes each message as JSON for an external mail worker.
type AMQPTransport struct {
	pub        Publisher
	exchange   string
	routingKey string
}

func NewAMQPTransport(pub Publisher, exchange, routingKey string) *AMQPTransport {
	return &AMQPTransport{pub: pub, exchange: exchange, routingKey: routingKey}
}

func (a *AMQPTransport) Deliver(ctx context.Context, e Email) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}
	err = a.pub.PublishWithContext(ctx, a.exchange, a.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.NotificationID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish email: %w", err)
	}
	return nil
}

// DialAMQP connects to the broker and declares a durable topic exchange.
// The returned close function releases the channel and connection.
func DialAMQP(url, exchange, routingKey string) (*AMQPTransport, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	closeFn := func() error {
		return errors.Join(ch.Close(), conn.Close())
	}
	return NewAMQPTransport(ch, exchange, routingKey), closeFn, nil
}
