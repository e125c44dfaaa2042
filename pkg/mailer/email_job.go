package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Attachment is base64-encoded on the wire (encoding/json handles []byte);
// Filename names it in the outgoing message.
type EmailJob struct {
	To         string `json:"to"`
	Subject    string `json:"subject,omitempty"`
	Text       string `json:"text,omitempty"`
	HTML       string `json:"html,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Attachment []byte `json:"attachment,omitempty"`
}
