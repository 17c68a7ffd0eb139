package sse

import (
	"fmt"
	"io"
	"strings"
)

// Write encodes ev onto w. Multi-line data is split across "data:" lines.
func Write(w io.Writer, ev Event) error {
	var b strings.Builder
	if ev.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", ev.ID)
	}
	if ev.Type != "" {
		fmt.Fprintf(&b, "event: %s\n", ev.Type)
	}
	for line := range strings.SplitSeq(ev.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// Comment writes a comment line. Readers ignore it; it keeps idle
// connections open through proxies.
func Comment(w io.Writer, text string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", text)
	return err
}
