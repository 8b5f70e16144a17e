// Package smtp provides the outbound mail transport.
package smtp

import "io"

// Client is the subset of an SMTP connection the sender needs.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface abstracts the SMTP transport for the sender.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
