package protocol

import "github.com/renato0307/duet/internal/domain"

// Decoder turns a structured agent's raw output into normalized events.
// The parsing strategy is picked once from the descriptor.
type Decoder struct {
	observe   func(line []byte)
	parse     lineParser
	sessionID string
	splitter  LineSplitter
}

// NewDecoder returns a decoder for the descriptor's output format, or nil
// when the agent writes raw terminal output
func NewDecoder(desc *domain.AgentDescriptor, sessionID string) *Decoder {
	var parse lineParser
	switch desc.Output {
	case domain.OutputStreamJSON:
		dialect := desc.Dialect
		parse = func(sid string, line []byte) []domain.Event {
			return ParseStreamLine(dialect, sid, line)
		}
	case domain.OutputACP:
		parse = ParseACPMessage
	default:
		return nil
	}
	return &Decoder{parse: parse, sessionID: sessionID}
}

// Observe registers a hook called with every complete line before parsing
func (d *Decoder) Observe(fn func(line []byte)) {
	d.observe = fn
}

// Push feeds a raw chunk and returns the events of every completed line
func (d *Decoder) Push(chunk []byte) []domain.Event {
	var events []domain.Event
	for _, line := range d.splitter.Push(chunk) {
		events = append(events, d.line(line)...)
	}
	return events
}

// Flush parses a trailing line that had no newline
func (d *Decoder) Flush() []domain.Event {
	line := d.splitter.Flush()
	if line == nil {
		return nil
	}
	return d.line(line)
}

func (d *Decoder) line(line []byte) []domain.Event {
	if d.observe != nil {
		d.observe(line)
	}
	return d.parse(d.sessionID, line)
}
