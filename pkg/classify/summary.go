package classify

import (
	"fmt"
	"strings"

	"github.com/adgenius/adgen/pkg/canvas"
)

// ElementSummary describes one element by role and relative geometry.
type ElementSummary struct {
	Key     string      `json:"key"`
	ID      string      `json:"id,omitempty"`
	Kind    canvas.Kind `json:"kind"`
	Role    Role        `json:"role"`
	Text    string      `json:"text,omitempty"`
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
	W       float64     `json:"w"`
	H       float64     `json:"h"`
	Fill    string      `json:"fill,omitempty"`
	Visible bool        `json:"visible"`
}

// Summary is the classified, size-independent view of a document handed to
// the AI collaborator and the compliance checker.
type Summary struct {
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Background string           `json:"background"`
	Palette    canvas.Palette   `json:"palette"`
	Elements   []ElementSummary `json:"elements"`
}

// Summarize classifies every top-level element of doc.
func Summarize(doc *canvas.Document) Summary {
	w, h := float64(doc.Width), float64(doc.Height)
	s := Summary{
		Width:      doc.Width,
		Height:     doc.Height,
		Background: doc.Background,
		Palette:    doc.Palette,
		Elements:   make([]ElementSummary, 0, len(doc.Elements)),
	}
	for _, e := range doc.Elements {
		es := ElementSummary{
			Key:     e.Key,
			ID:      e.ID,
			Kind:    e.Kind,
			Role:    Classify(e),
			Text:    e.Text,
			Fill:    e.Style.Fill,
			Visible: e.Visible(),
		}
		g := e.Geometry
		if g.IsRelative() {
			es.X, es.Y, es.W, es.H = g.X, g.Y, g.W, g.H
		} else {
			es.X, es.Y = g.Left/w, g.Top/h
			es.W, es.H = g.ScaledWidth()/w, g.ScaledHeight()/h
		}
		s.Elements = append(s.Elements, es)
	}
	return s
}

// Find returns the first element with the given role.
func (s Summary) Find(r Role) (ElementSummary, bool) {
	for _, e := range s.Elements {
		if e.Role == r {
			return e, true
		}
	}
	return ElementSummary{}, false
}

// Colors returns the distinct colours in use: background, palette and
// element fills, lower-cased.
func (s Summary) Colors() []string {
	seen := map[string]bool{}
	var out []string
	add := func(c string) {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}
	add(s.Background)
	add(s.Palette.Primary)
	add(s.Palette.Secondary)
	add(s.Palette.Text)
	for _, e := range s.Elements {
		add(e.Fill)
	}
	return out
}

// String renders the summary as a compact text block for prompts.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Canvas %dx%d, background %s\n", s.Width, s.Height, s.Background)
	fmt.Fprintf(&b, "Palette: primary %s, secondary %s, text %s\n", s.Palette.Primary, s.Palette.Secondary, s.Palette.Text)
	if len(s.Elements) == 0 {
		b.WriteString("No elements.\n")
		return b.String()
	}
	b.WriteString("Elements (bottom to top):\n")
	for _, e := range s.Elements {
		name := e.ID
		if name == "" {
			name = string(e.Kind)
		}
		fmt.Fprintf(&b, "- %s [%s] at x=%.2f y=%.2f w=%.2f h=%.2f", name, e.Role, e.X, e.Y, e.W, e.H)
		if e.Text != "" {
			fmt.Fprintf(&b, " text=%q", e.Text)
		}
		if !e.Visible {
			b.WriteString(" (hidden)")
		}
		b.WriteString("\n")
	}
	return b.String()
}
