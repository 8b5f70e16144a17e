package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/thermopolio/thermopolio/internal/models"
)

// Publisher publishes mail jobs to the mail exchange.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher wraps an already set up channel.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// PublishMail enqueues one mail job as a persistent JSON message.
func (p *Publisher) PublishMail(job models.MailJob) error {
	const op = "rabbitmq.PublishMail"

	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		MailExchange,
		MailRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
