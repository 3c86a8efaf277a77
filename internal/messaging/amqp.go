package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AmqpPublisher publishes JSON events to a durable topic exchange
type AmqpPublisher struct {
	mu         sync.Mutex
	connection *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	logger     logrus.FieldLogger
}

// NewAmqpPublisher dials the broker and declares the exchange
func NewAmqpPublisher(url, exchange string, logger logrus.FieldLogger) (*AmqpPublisher, error) {
	con, err := amqp091.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to broker")
	}

	ch, err := con.Channel()
	if err != nil {
		con.Close()
		return nil, errors.Wrap(err, "failed to open channel")
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		con.Close()
		return nil, errors.Wrapf(err, "failed to declare exchange %s", exchange)
	}

	return &AmqpPublisher{
		connection: con,
		channel:    ch,
		exchange:   exchange,
		logger:     logger,
	}, nil
}

func (p *AmqpPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	msg, err := newPublishing(payload, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return errors.Wrapf(err, "failed to publish %s", routingKey)
	}

	p.logger.WithFields(logrus.Fields{
		"routing_key": routingKey,
		"message_id":  msg.MessageId,
	}).Debug("Event published")
	return nil
}

// Close closes the channel and the connection
func (p *AmqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		p.logger.WithError(err).Warn("Failed to close channel")
	}
	return p.connection.Close()
}

func newPublishing(payload interface{}, now time.Time) (amqp091.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp091.Publishing{}, errors.Wrap(err, "failed to encode event")
	}

	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now,
		Body:         body,
	}, nil
}
