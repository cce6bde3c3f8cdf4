package mailer

import "errors"

// MessageType is the AMQP Type header set on queued email jobs.
const MessageType = "email_job"

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// Validate requires a recipient and either a template or some body.
func (j EmailJob) Validate() error {
	if j.To == "" {
		return errors.New("email job: missing recipient")
	}
	if j.Template == "" && j.Text == "" && j.HTML == "" {
		return errors.New("email job: no template or body")
	}
	return nil
}
