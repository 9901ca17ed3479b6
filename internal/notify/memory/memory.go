// Package memory provides a recording Messenger for tests and for running
// without SMTP configured.
package memory

import (
	"context"
	"sync"

	"healthstack/internal/notify"
)

// Messenger records every message it is asked to send. FailWith forces the
// next sends to fail, exercising dispatch error paths.
type Messenger struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

// New constructs an empty recording messenger.
func New() *Messenger {
	return &Messenger{}
}

func (m *Messenger) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	copied := msg
	copied.Recipients = append([]string(nil), msg.Recipients...)
	m.sent = append(m.sent, copied)
	return nil
}

// Sent returns a snapshot of recorded messages.
func (m *Messenger) Sent() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notify.Message, len(m.sent))
	copy(out, m.sent)
	return out
}

// FailWith makes subsequent Send calls return err. Pass nil to restore
// normal behavior.
func (m *Messenger) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
