// Package mail delivers the links the auth service sends by email. There is
// no SMTP transport: LogMailer writes deliveries to the log and Outbox keeps
// them in memory so the CLI and tests can read the tokens back.
package mail

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/logging"
)

type Kind string

const (
	KindPasswordReset     Kind = "password_reset"
	KindEmailVerification Kind = "email_verification"
)

type Message struct {
	To     string
	Kind   Kind
	Token  string
	SentAt time.Time
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("component", "mail")}
}

// Send logs the delivery. The token itself is only written at debug level.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info(ctx, "mail sent", "to", msg.To, "kind", string(msg.Kind))
	m.logger.Debug(ctx, "mail token", "to", msg.To, "kind", string(msg.Kind), "token", msg.Token)
	return nil
}

// Outbox records every message it is given.
type Outbox struct {
	mu       sync.RWMutex
	messages []Message
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Send(_ context.Context, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	return nil
}

// Messages returns a copy of all messages in delivery order.
func (o *Outbox) Messages() []Message {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]Message(nil), o.messages...)
}

// Last returns the most recent message of kind sent to the address,
// compared case-insensitively.
func (o *Outbox) Last(to string, kind Kind) (Message, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for i := len(o.messages) - 1; i >= 0; i-- {
		m := o.messages[i]
		if m.Kind == kind && strings.EqualFold(m.To, to) {
			return m, true
		}
	}
	return Message{}, false
}

// Multi fans a message out to every mailer and joins their errors.
type Multi []Mailer

func (mm Multi) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, m := range mm {
		if err := m.Send(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
