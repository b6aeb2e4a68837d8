package smtp

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Notifier delivers verification codes over SMTP. It satisfies the
// goVerify.Notifier interface.
type Notifier struct {
	dialer dialer
	from   string
}

// New creates an SMTP notifier with its own dialer.
func New(host string, port int, user, password, from string) *Notifier {
	return &Notifier{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

// NewWithDialer creates an SMTP notifier around an existing dialer. Intended
// for tests and callers that pool SMTP connections themselves.
func NewWithDialer(d dialer, from string) *Notifier {
	return &Notifier{
		dialer: d,
		from:   from,
	}
}

// SendCode renders the localized message for the recipient and sends it.
// The context is consulted before dialing; gomail itself does not support
// cancellation mid-send.
func (n *Notifier) SendCode(ctx context.Context, recipient, code, locale string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tpl := templateFor(locale)

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", tpl.subject)
	m.SetBody("text/html", fmt.Sprintf(tpl.body, code))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}
