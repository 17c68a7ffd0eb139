package layout

import (
	"fmt"
	"strings"

	"github.com/adgenius/adgen/pkg/canvas"
)

// Template is a starter layout in relative geometry.
type Template struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Background string         `json:"background"`
	Palette    canvas.Palette `json:"palette"`
	Slots      []Slot         `json:"slots"`
}

// Slot is one templated element: a kind, a relative box and optional text.
type Slot struct {
	Kind canvas.Kind `json:"kind"`
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
	W    float64     `json:"w"`
	H    float64     `json:"h"`
	Text string      `json:"text,omitempty"`
}

func palette(primary, text string) canvas.Palette {
	return canvas.Palette{Primary: primary, Secondary: primary, Text: text}
}

// Templates are the built-in starter layouts.
var Templates = []Template{
	{
		ID: "sale", Name: "Flash Sale", Background: "#FF4444", Palette: palette("#FFFFFF", "#FFFFFF"),
		Slots: []Slot{
			{Kind: canvas.KindHeadline, X: 0.1, Y: 0.35, W: 0.8, H: 0.15, Text: "FLASH SALE!"},
			{Kind: canvas.KindSubtext, X: 0.15, Y: 0.52, W: 0.7, H: 0.1, Text: "Up to 50% OFF"},
			{Kind: canvas.KindCta, X: 0.25, Y: 0.7, W: 0.5, H: 0.1, Text: "Shop Now"},
		},
	},
	{
		ID: "product", Name: "Product Hero", Background: "#FFFFFF", Palette: palette("#3B82F6", "#1F2937"),
		Slots: []Slot{
			{Kind: canvas.KindLogo, X: 0.05, Y: 0.03, W: 0.15, H: 0.08},
			{Kind: canvas.KindPackshot, X: 0.2, Y: 0.15, W: 0.6, H: 0.45},
			{Kind: canvas.KindHeadline, X: 0.1, Y: 0.65, W: 0.8, H: 0.1, Text: "Premium Quality"},
			{Kind: canvas.KindCta, X: 0.3, Y: 0.8, W: 0.4, H: 0.08, Text: "Buy Now"},
		},
	},
	{
		ID: "minimal", Name: "Minimal Clean", Background: "#F9FAFB", Palette: palette("#111827", "#374151"),
		Slots: []Slot{
			{Kind: canvas.KindHeadline, X: 0.1, Y: 0.4, W: 0.8, H: 0.1, Text: "Less is More"},
			{Kind: canvas.KindSubtext, X: 0.2, Y: 0.55, W: 0.6, H: 0.08, Text: "Discover simplicity"},
			{Kind: canvas.KindCta, X: 0.35, Y: 0.75, W: 0.3, H: 0.08, Text: "Explore"},
		},
	},
	{
		ID: "grocery", Name: "Grocery Store", Background: "#E41C2A", Palette: palette("#FFFFFF", "#FFFFFF"),
		Slots: []Slot{
			{Kind: canvas.KindLogo, X: 0.35, Y: 0.02, W: 0.3, H: 0.1},
			{Kind: canvas.KindHeadline, X: 0.1, Y: 0.2, W: 0.8, H: 0.12, Text: "Weekly Deals!"},
			{Kind: canvas.KindPackshot, X: 0.15, Y: 0.35, W: 0.7, H: 0.35},
			{Kind: canvas.KindCta, X: 0.25, Y: 0.78, W: 0.5, H: 0.1, Text: "Shop Deals"},
		},
	},
	{
		ID: "fashion", Name: "Fashion Style", Background: "#FDF2F8", Palette: palette("#DB2777", "#831843"),
		Slots: []Slot{
			{Kind: canvas.KindHeadline, X: 0.1, Y: 0.1, W: 0.8, H: 0.1, Text: "New Collection"},
			{Kind: canvas.KindPackshot, X: 0.1, Y: 0.25, W: 0.8, H: 0.45},
			{Kind: canvas.KindSubtext, X: 0.15, Y: 0.72, W: 0.7, H: 0.08, Text: "Spring Collection"},
			{Kind: canvas.KindCta, X: 0.3, Y: 0.85, W: 0.4, H: 0.08, Text: "Shop Now"},
		},
	},
	{
		ID: "tech", Name: "Tech Launch", Background: "#0F172A", Palette: palette("#3B82F6", "#F8FAFC"),
		Slots: []Slot{
			{Kind: canvas.KindHeadline, X: 0.1, Y: 0.15, W: 0.8, H: 0.12, Text: "Next Level Innovation"},
			{Kind: canvas.KindPackshot, X: 0.2, Y: 0.3, W: 0.6, H: 0.4},
			{Kind: canvas.KindSubtext, X: 0.15, Y: 0.73, W: 0.7, H: 0.08, Text: "The future is here"},
			{Kind: canvas.KindCta, X: 0.3, Y: 0.85, W: 0.4, H: 0.08, Text: "Pre-order"},
		},
	},
}

// LookupTemplate finds a built-in template by id.
func LookupTemplate(id string) (Template, bool) {
	for _, t := range Templates {
		if strings.EqualFold(t.ID, id) {
			return t, true
		}
	}
	return Template{}, false
}

// Starter returns the default layout for a fresh canvas: logo left of the
// headline on wide canvases, stacked otherwise.
func Starter(width, height int) Template {
	t := Template{
		ID:         "starter",
		Name:       "Starter",
		Background: canvas.DefaultBackground,
		Palette:    canvas.DefaultPalette(),
	}
	if ClassifyAspect(width, height) == Landscape {
		t.Slots = []Slot{
			{Kind: canvas.KindLogo, X: 0.05, Y: 0.1, W: 0.15, H: 0.15},
			{Kind: canvas.KindHeadline, X: 0.25, Y: 0.1, W: 0.5, H: 0.15, Text: "Your Headline Here"},
			{Kind: canvas.KindPackshot, X: 0.35, Y: 0.3, W: 0.3, H: 0.4},
			{Kind: canvas.KindCta, X: 0.35, Y: 0.75, W: 0.3, H: 0.15, Text: "Shop Now"},
		}
		return t
	}
	t.Slots = []Slot{
		{Kind: canvas.KindLogo, X: 0.05, Y: 0.05, W: 0.2, H: 0.08},
		{Kind: canvas.KindPackshot, X: 0.15, Y: 0.25, W: 0.7, H: 0.4},
		{Kind: canvas.KindHeadline, X: 0.1, Y: 0.7, W: 0.8, H: 0.1, Text: "Your Headline Here"},
		{Kind: canvas.KindCta, X: 0.25, Y: 0.85, W: 0.5, H: 0.08, Text: "Shop Now"},
	}
	return t
}

// Instantiate builds a document of the given size from t, with every slot
// materialized to pixels.
func Instantiate(t Template, width, height int) (*canvas.Document, error) {
	doc, err := canvas.New(width, height)
	if err != nil {
		return nil, fmt.Errorf("instantiating template %s: %w", t.ID, err)
	}
	doc.Background = t.Background
	doc.Palette = t.Palette
	h := float64(height)

	for _, s := range t.Slots {
		e := canvas.Element{
			ID:       string(s.Kind),
			Kind:     s.Kind,
			Text:     s.Text,
			Geometry: canvas.Geometry{Mode: canvas.Relative, X: s.X, Y: s.Y, W: s.W, H: s.H},
		}
		boxH := s.H * h
		switch s.Kind {
		case canvas.KindLogo:
			e.Text = "Logo"
			e.Style = canvas.Style{Fill: t.Palette.Primary, FontSize: clamp(boxH*0.4, 12, 14)}
		case canvas.KindHeadline:
			if e.Text == "" {
				e.Text = "Your Headline Here"
			}
			e.Style = canvas.Style{Fill: textColor(t.Palette), FontFamily: "Arial", FontWeight: "bold",
				FontSize: clamp(boxH*0.8, 16, 28), TextAlign: "center"}
		case canvas.KindSubtext:
			if e.Text == "" {
				e.Text = "Subtext here"
			}
			e.Style = canvas.Style{Fill: textColor(t.Palette), FontFamily: "Arial",
				FontSize: clamp(boxH*0.8, 12, 20), TextAlign: "center"}
		case canvas.KindCta:
			if e.Text == "" {
				e.Text = "Shop Now"
			}
			e.Style = canvas.Style{Fill: t.Palette.Primary, FontWeight: "bold", FontSize: clamp(boxH*0.5, 12, 16)}
		case canvas.KindPackshot:
			e.Style = canvas.Style{Fill: "#f3f4f6", Stroke: "#d1d5db", StrokeWidth: 2}
		}
		doc.Add(e)
	}
	doc.Materialize()
	return doc, nil
}

func textColor(p canvas.Palette) string {
	if p.Text != "" {
		return p.Text
	}
	return canvas.DefaultTextColor
}
