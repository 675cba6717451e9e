package access

import (
	"context"
	"fmt"
)

// MailMessage is an outbound notification
type MailMessage struct {
	To      string
	Subject string
	Body    string
}

// Mailer dispatches notifications. The reset flow awaits the send: when it
// fails the operation fails with ErrDeliveryFailed and the pending code stays
// on the record so calling again retries with a fresh code.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, msg MailMessage) error

// Send implements Mailer.
func (f MailerFunc) Send(ctx context.Context, msg MailMessage) error {
	if f == nil {
		return nil
	}
	return f(ctx, msg)
}

type stdoutMailer struct{}

func (stdoutMailer) Send(_ context.Context, msg MailMessage) error {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("to: %s\n", msg.To)
	fmt.Printf("subject: %s\n", msg.Subject)
	fmt.Printf("body: %s\n", msg.Body)
	return nil
}

func normalizeMailer(m Mailer) Mailer {
	if m == nil {
		return stdoutMailer{}
	}
	return m
}

func recoveryCodeMessage(to, code string) MailMessage {
	return MailMessage{
		To:      to,
		Subject: "Password Recovery",
		Body:    fmt.Sprintf("Your password recovery code is: %s. It expires in 10 minutes.", code),
	}
}
