package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template+Data or Subject with Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome", "password_changed"
	Data     map[string]any `json:"data,omitempty"`
}

// Sendable reports whether the job carries enough to build a message.
func (j EmailJob) Sendable() bool {
	if j.To == "" {
		return false
	}
	if j.Template != "" {
		return true
	}
	return j.Subject != "" && (j.Text != "" || j.HTML != "")
}
