package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Names of the mail topology.
const (
	MailExchange   = "mail"
	MailQueue      = "mail.outbound"
	MailRoutingKey = "outbound"
)

// SetupChannel opens a channel and declares the mail exchange, queue
// and binding. Declarations are idempotent, so publisher and consumer
// both call this.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		MailExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = ch.QueueDeclare(
		MailQueue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, MailQueue, err)
	}

	err = ch.QueueBind(
		MailQueue,
		MailRoutingKey,
		MailExchange,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, MailQueue, err)
	}

	return ch, nil
}
