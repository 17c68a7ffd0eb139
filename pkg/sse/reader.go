package sse

import (
	"bufio"
	"io"
	"strings"
)

// Reader parses SSE events from a stream.
type Reader struct {
	scanner *bufio.Scanner

	current Event
	hasData bool
}

// NewReader returns a Reader over src.
func NewReader(src io.Reader) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &Reader{scanner: scanner}
}

// Next blocks until a complete event is available. It returns nil, nil once
// the stream ends. Comment lines, such as keep-alives, are skipped.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		raw := r.scanner.Text()

		if raw == "" {
			if r.hasData {
				return r.take(), nil
			}
			continue
		}

		if strings.HasPrefix(raw, ":") {
			continue
		}

		r.parseLine(raw)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// The stream ended without a trailing blank line.
	if r.hasData {
		return r.take(), nil
	}
	return nil, nil
}

// parseLine accumulates one "field: value" line. A single space after the
// colon is stripped.
func (r *Reader) parseLine(line string) {
	field, value, ok := strings.Cut(line, ":")
	if ok {
		value = strings.TrimPrefix(value, " ")
	}

	switch field {
	case "data":
		if r.hasData && r.current.Data != "" {
			r.current.Data += "\n"
		}
		r.current.Data += value
		r.hasData = true
	case "event":
		r.current.Type = value
		r.hasData = true
	case "id":
		r.current.ID = value
		r.hasData = true
	}
}

func (r *Reader) take() *Event {
	ev := r.current
	r.current = Event{}
	r.hasData = false
	return &ev
}
