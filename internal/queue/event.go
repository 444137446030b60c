// Package queue defines the mail event bus.  The API never talks SMTP;
// whenever a user action requires an email (verification link, password
// reset), an event is published to RabbitMQ and an out-of-process mailer
// owns delivery.  The in-repo consumer only logs what would be sent.
package queue

// Mail event kinds carried in MailEvent.Kind.
const (
    MailKindVerification  = "verification"
    MailKindPasswordReset = "password_reset"
)

// MailEvent is published to the mail.outbound queue when the application
// needs an email delivered.  It carries the token the mail must embed so
// consumers never need to call back into the API.
type MailEvent struct {
    Kind      string `json:"kind"`      // verification | password_reset
    Username  string `json:"username"`  // addressee's display name
    Email     string `json:"email"`     // destination address
    Token     string `json:"token"`     // signed token to embed in the link
    BaseURL   string `json:"base_url"`  // public base URL for building links
    CreatedAt string `json:"created_at"`
}
