// Package sender delivers queued mail jobs over SMTP. With email
// disabled it logs the message instead of dialing the server.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/thermopolio/thermopolio/internal/lib/sl"
	"github.com/thermopolio/thermopolio/internal/lib/smtp"
	"github.com/thermopolio/thermopolio/internal/models"
)

// Service consumes mail jobs from the queue and sends them.
type Service struct {
	transport    smtp.TransportInterface
	log          *slog.Logger
	emailEnabled bool
}

// New creates the sender service.
func New(transport smtp.TransportInterface, log *slog.Logger, emailEnabled bool) *Service {
	return &Service{
		transport:    transport,
		log:          log,
		emailEnabled: emailEnabled,
	}
}

// HandleMailJob is the queue handler: it unmarshals one job and
// delivers it.
func (s *Service) HandleMailJob(body []byte) error {
	var job models.MailJob
	if err := json.Unmarshal(body, &job); err != nil {
		s.log.Error("failed to unmarshal mail job", sl.Err(err))
		return fmt.Errorf("error unmarshalling mail job: %w", err)
	}
	return s.Send(job)
}

// Send delivers one mail job. With email disabled the message is only
// logged.
func (s *Service) Send(job models.MailJob) error {
	if !s.emailEnabled {
		s.log.Info("email disabled, logging message instead",
			slog.String("to", job.To),
			slog.String("subject", job.Subject),
			slog.String("body", job.Body))
		return nil
	}
	return s.sendEmail([]string{job.To}, job.Subject, job.Body)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
