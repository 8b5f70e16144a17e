// Package mailer wires the outbound mail worker: it consumes mail jobs
// from the queue and delivers them over SMTP.
package mailer

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/thermopolio/thermopolio/internal/config"
	"github.com/thermopolio/thermopolio/internal/lib/smtp"
	"github.com/thermopolio/thermopolio/internal/rabbitmq"
	senderservice "github.com/thermopolio/thermopolio/internal/services/sender"
)

type App struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	sender *senderservice.Service
	logger *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	sender := senderservice.New(transport, logger, cfg.EmailEnabled)

	return &App{
		conn:   conn,
		ch:     ch,
		sender: sender,
		logger: logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if err := rabbitmq.ConsumeMessages(ctx, a.ch, rabbitmq.MailQueue, a.sender.HandleMailJob); err != nil {
		a.logger.Error("failed to start mail consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("mailer shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
