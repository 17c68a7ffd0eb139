// Package sse reads and writes Server-Sent Events. The API streams session
// document events with Write and Comment, and "adgen events" consumes them
// with Reader.
//
// See https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event is one SSE event, delimited by a blank line on the wire.
type Event struct {
	// Type is the "event:" field. Empty means the default "message" type.
	Type string

	// Data is every "data:" line of the event joined with "\n".
	Data string

	// ID is the "id:" field, if present.
	ID string
}
