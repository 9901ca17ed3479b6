// Package notify defines the outbound messaging boundary. The SOS
// dispatcher and appointment flows depend on the Messenger interface, never
// on a concrete transport, so tests can substitute fakes.
package notify

import "context"

// Message is one outbound notification. Recipients are addressed in a
// single batched send: a transport failure fails the whole batch with no
// partial-success reporting.
type Message struct {
	Recipients []string
	Subject    string
	Body       string
}

// Messenger delivers messages over some channel.
type Messenger interface {
	Send(ctx context.Context, msg Message) error
}
