package models

// MailJob is the message published to the mail queue for the sender
// worker to deliver.
type MailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
